package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/simplesats/ticket-sales/internal/dto"
	"github.com/simplesats/ticket-sales/internal/service"
	"github.com/simplesats/ticket-sales/pkg/response"
)

// TicketTypeHandler handles ticket tier HTTP requests
type TicketTypeHandler struct {
	ticketTypeService service.TicketTypeService
}

// NewTicketTypeHandler creates a new TicketTypeHandler
func NewTicketTypeHandler(ticketTypeService service.TicketTypeService) *TicketTypeHandler {
	return &TicketTypeHandler{ticketTypeService: ticketTypeService}
}

// List handles GET /stores/:storeId/events/:eventId/ticket-types
func (h *TicketTypeHandler) List(c *gin.Context) {
	var filter dto.TicketTypeListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	types, err := h.ticketTypeService.ListTicketTypes(c.Request.Context(), c.Param("storeId"), c.Param("eventId"), &filter)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, dto.NewTicketTypeListResponse(types))
}

// Get handles GET /stores/:storeId/events/:eventId/ticket-types/:ticketTypeId
func (h *TicketTypeHandler) Get(c *gin.Context) {
	tt, err := h.ticketTypeService.GetTicketType(c.Request.Context(), c.Param("storeId"), c.Param("eventId"), c.Param("ticketTypeId"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, dto.NewTicketTypeResponse(tt))
}

// Create handles POST /stores/:storeId/events/:eventId/ticket-types
func (h *TicketTypeHandler) Create(c *gin.Context) {
	var req dto.CreateTicketTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	tt, err := h.ticketTypeService.CreateTicketType(c.Request.Context(), c.Param("storeId"), c.Param("eventId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, dto.NewTicketTypeResponse(tt))
}

// Update handles PUT /stores/:storeId/events/:eventId/ticket-types/:ticketTypeId
func (h *TicketTypeHandler) Update(c *gin.Context) {
	var req dto.UpdateTicketTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	tt, err := h.ticketTypeService.UpdateTicketType(c.Request.Context(), c.Param("storeId"), c.Param("eventId"), c.Param("ticketTypeId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, dto.NewTicketTypeResponse(tt))
}

// Delete handles DELETE /stores/:storeId/events/:eventId/ticket-types/:ticketTypeId
func (h *TicketTypeHandler) Delete(c *gin.Context) {
	if err := h.ticketTypeService.DeleteTicketType(c.Request.Context(), c.Param("storeId"), c.Param("eventId"), c.Param("ticketTypeId")); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// Toggle handles PUT /stores/:storeId/events/:eventId/ticket-types/:ticketTypeId/toggle
func (h *TicketTypeHandler) Toggle(c *gin.Context) {
	tt, err := h.ticketTypeService.ToggleTicketType(c.Request.Context(), c.Param("storeId"), c.Param("eventId"), c.Param("ticketTypeId"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, dto.NewTicketTypeResponse(tt))
}
