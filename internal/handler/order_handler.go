package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/simplesats/ticket-sales/internal/dto"
	"github.com/simplesats/ticket-sales/internal/service"
	"github.com/simplesats/ticket-sales/pkg/response"
)

// OrderHandler handles order ledger HTTP requests
type OrderHandler struct {
	ticketService service.TicketService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(ticketService service.TicketService) *OrderHandler {
	return &OrderHandler{ticketService: ticketService}
}

// List handles GET /stores/:storeId/events/:eventId/orders
func (h *OrderHandler) List(c *gin.Context) {
	var filter dto.TicketListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	orders, err := h.ticketService.ListOrders(c.Request.Context(), c.Param("storeId"), c.Param("eventId"), filter.SearchText)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, dto.NewOrderListResponse(orders))
}

// SendReminder handles POST /stores/:storeId/events/:eventId/orders/:orderId/tickets/:ticketId/send-reminder
func (h *OrderHandler) SendReminder(c *gin.Context) {
	err := h.ticketService.ResendConfirmation(
		c.Request.Context(),
		c.Param("storeId"),
		c.Param("eventId"),
		c.Param("orderId"),
		c.Param("ticketId"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"sent": true})
}
