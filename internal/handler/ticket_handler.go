package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simplesats/ticket-sales/internal/dto"
	"github.com/simplesats/ticket-sales/internal/service"
	"github.com/simplesats/ticket-sales/pkg/response"
)

// TicketHandler handles ticket ledger and check-in HTTP requests
type TicketHandler struct {
	ticketService  service.TicketService
	checkinService service.CheckinService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(ticketService service.TicketService, checkinService service.CheckinService) *TicketHandler {
	return &TicketHandler{
		ticketService:  ticketService,
		checkinService: checkinService,
	}
}

// List handles GET /stores/:storeId/events/:eventId/tickets
func (h *TicketHandler) List(c *gin.Context) {
	var filter dto.TicketListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	tickets, err := h.ticketService.ListTickets(c.Request.Context(), c.Param("storeId"), c.Param("eventId"), filter.SearchText)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, dto.NewTicketListResponse(tickets))
}

// Export handles GET /stores/:storeId/events/:eventId/tickets/export
func (h *TicketHandler) Export(c *gin.Context) {
	export, err := h.ticketService.ExportTicketsCSV(c.Request.Context(), c.Param("storeId"), c.Param("eventId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", export.Content)
}

// Checkin handles POST /stores/:storeId/events/:eventId/tickets/:ticketNumber/check-in
func (h *TicketHandler) Checkin(c *gin.Context) {
	result, err := h.checkinService.Checkin(c.Request.Context(), c.Param("storeId"), c.Param("eventId"), c.Param("ticketNumber"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, dto.NewCheckinResponse(result))
}
