package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/simplesats/ticket-sales/internal/dto"
	"github.com/simplesats/ticket-sales/internal/service"
	"github.com/simplesats/ticket-sales/pkg/response"
)

// EventHandler handles event catalog HTTP requests
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List handles GET /stores/:storeId/events
func (h *EventHandler) List(c *gin.Context) {
	var filter dto.EventListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	events, err := h.eventService.ListEvents(c.Request.Context(), c.Param("storeId"), &filter)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, dto.NewEventListResponse(events))
}

// Get handles GET /stores/:storeId/events/:eventId
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.eventService.GetEvent(c.Request.Context(), c.Param("storeId"), c.Param("eventId"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, dto.NewEventResponse(event))
}

// Create handles POST /stores/:storeId/events
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	req.StoreID = c.Param("storeId")

	event, err := h.eventService.CreateEvent(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, dto.NewEventResponse(event))
}

// Update handles PUT /stores/:storeId/events/:eventId
func (h *EventHandler) Update(c *gin.Context) {
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), c.Param("storeId"), c.Param("eventId"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, dto.NewEventResponse(event))
}

// Delete handles DELETE /stores/:storeId/events/:eventId
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.eventService.DeleteEvent(c.Request.Context(), c.Param("storeId"), c.Param("eventId")); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// Toggle handles PUT /stores/:storeId/events/:eventId/toggle
func (h *EventHandler) Toggle(c *gin.Context) {
	event, err := h.eventService.ToggleEvent(c.Request.Context(), c.Param("storeId"), c.Param("eventId"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, dto.NewEventResponse(event))
}

// UploadLogo handles POST /stores/:storeId/events/:eventId/logo
func (h *EventHandler) UploadLogo(c *gin.Context) {
	file, err := c.FormFile("logo")
	if err != nil {
		response.BadRequest(c, "A logo file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "Could not read the uploaded file")
		return
	}
	defer src.Close()

	event, err := h.eventService.UploadLogo(c.Request.Context(), c.Param("storeId"), c.Param("eventId"), file.Filename, src)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, dto.NewEventResponse(event))
}

// ClearLogo handles DELETE /stores/:storeId/events/:eventId/logo
func (h *EventHandler) ClearLogo(c *gin.Context) {
	if err := h.eventService.ClearLogo(c.Request.Context(), c.Param("storeId"), c.Param("eventId")); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}
