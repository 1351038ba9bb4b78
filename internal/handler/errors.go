package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/simplesats/ticket-sales/internal/domain"
	"github.com/simplesats/ticket-sales/pkg/logger"
	"github.com/simplesats/ticket-sales/pkg/response"
)

// respondError maps a service error onto the HTTP error taxonomy.
// Anything unmapped is logged and becomes an opaque 500.
func respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		fields := make([]response.FieldError, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, response.FieldError{Field: f.Field, Message: f.Message})
		}
		response.Validation(c, fields)
		return
	}

	var sendErr *domain.EmailSendError
	if errors.As(err, &sendErr) {
		response.DependencyFailure(c, "email-send-failed", sendErr.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrEventNotFound):
		response.NotFound(c, "event-not-found", "Event not found")
	case errors.Is(err, domain.ErrTicketTypeNotFound):
		response.NotFound(c, "ticket-type-not-found", "Ticket type not found")
	case errors.Is(err, domain.ErrTicketNotFound):
		response.NotFound(c, "ticket-not-found", "Ticket not found")
	case errors.Is(err, domain.ErrOrderNotFound):
		response.NotFound(c, "order-not-found", "Order not found")
	case errors.Is(err, domain.ErrNoTickets):
		response.NotFound(c, "no-tickets", "No tickets have been sold for this event")
	case errors.Is(err, domain.ErrNoTicketTypes):
		response.Conflict(c, "no-ticket-types", "The event needs at least one ticket type before it can be activated")
	case errors.Is(err, domain.ErrEventHasActiveTickets):
		response.Conflict(c, "event-has-active-tickets", "The event has sold tickets and has not started yet")
	case errors.Is(err, domain.ErrTicketTypeHasTickets):
		response.Conflict(c, "ticket-type-has-tickets", "The ticket type has settled tickets and cannot be deleted")
	case errors.Is(err, domain.ErrEmailNotConfigured):
		response.Conflict(c, "email-not-configured", "Email delivery is not configured for this store")
	case errors.Is(err, domain.ErrLogoUploadFailed):
		response.Conflict(c, "logo-upload-failed", err.Error())
	default:
		logger.Get().Error("unhandled service error",
			zap.String("path", c.FullPath()), zap.Error(err))
		response.InternalError(c, "An internal error occurred")
	}
}
