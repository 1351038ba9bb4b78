package dto

import (
	"time"

	"github.com/simplesats/ticket-sales/internal/domain"
)

// CreateEventRequest represents the request to create a new event
type CreateEventRequest struct {
	Title                string     `json:"title" binding:"required,min=1,max=255"`
	Description          string     `json:"description"`
	Location             string     `json:"location" binding:"max=255"`
	EventType            string     `json:"event_type" binding:"required"`
	StartDate            time.Time  `json:"start_date" binding:"required"`
	EndDate              *time.Time `json:"end_date"`
	Currency             string     `json:"currency"`
	RedirectURL          string     `json:"redirect_url"`
	EmailSubject         string     `json:"email_subject"`
	EmailBody            string     `json:"email_body"`
	HasMaximumCapacity   bool       `json:"has_maximum_capacity"`
	MaximumEventCapacity *int       `json:"maximum_event_capacity"`
	StoreID              string     `json:"-"` // Set from path
}

// Validate validates the CreateEventRequest
func (r *CreateEventRequest) Validate() *domain.ValidationError {
	verr := &domain.ValidationError{}
	if r.Title == "" {
		verr.Add("title", "is required")
	}
	if _, err := domain.ParseEventType(r.EventType); err != nil {
		verr.Add("event_type", "must be virtual or physical")
	}
	if r.StartDate.IsZero() {
		verr.Add("start_date", "is required")
	} else if !r.StartDate.After(time.Now()) {
		verr.Add("start_date", "must be in the future")
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		verr.Add("end_date", "must not be before the start date")
	}
	if r.HasMaximumCapacity && (r.MaximumEventCapacity == nil || *r.MaximumEventCapacity <= 0) {
		verr.Add("maximum_event_capacity", "must be positive when capacity is enabled")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// UpdateEventRequest represents the request to update an event.
// LogoFileID is tri-state: absent keeps the current logo, empty string
// clears it, a value replaces it.
type UpdateEventRequest struct {
	Title                string     `json:"title" binding:"required,min=1,max=255"`
	Description          string     `json:"description"`
	Location             string     `json:"location" binding:"max=255"`
	EventType            string     `json:"event_type"`
	StartDate            time.Time  `json:"start_date" binding:"required"`
	EndDate              *time.Time `json:"end_date"`
	Currency             string     `json:"currency"`
	RedirectURL          string     `json:"redirect_url"`
	EmailSubject         string     `json:"email_subject"`
	EmailBody            string     `json:"email_body"`
	HasMaximumCapacity   bool       `json:"has_maximum_capacity"`
	MaximumEventCapacity *int       `json:"maximum_event_capacity"`
	LogoFileID           *string    `json:"logo_file_id"`
}

// Validate validates the UpdateEventRequest. Unlike create, an already
// started event may still be edited, so no future-start check.
func (r *UpdateEventRequest) Validate() *domain.ValidationError {
	verr := &domain.ValidationError{}
	if r.Title == "" {
		verr.Add("title", "is required")
	}
	if r.EventType != "" {
		if _, err := domain.ParseEventType(r.EventType); err != nil {
			verr.Add("event_type", "must be virtual or physical")
		}
	}
	if r.StartDate.IsZero() {
		verr.Add("start_date", "is required")
	}
	if r.EndDate != nil && r.EndDate.Before(r.StartDate) {
		verr.Add("end_date", "must not be before the start date")
	}
	if r.HasMaximumCapacity && (r.MaximumEventCapacity == nil || *r.MaximumEventCapacity <= 0) {
		verr.Add("maximum_event_capacity", "must be positive when capacity is enabled")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// EventListFilter represents filters for listing events
type EventListFilter struct {
	Expired *bool `form:"expired"`
}

// EventResponse represents the response for an event
type EventResponse struct {
	ID                   string     `json:"id"`
	StoreID              string     `json:"store_id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Location             string     `json:"location"`
	EventType            string     `json:"event_type"`
	StartDate            time.Time  `json:"start_date"`
	EndDate              *time.Time `json:"end_date,omitempty"`
	Currency             string     `json:"currency"`
	RedirectURL          string     `json:"redirect_url,omitempty"`
	EmailSubject         string     `json:"email_subject,omitempty"`
	EmailBody            string     `json:"email_body,omitempty"`
	HasMaximumCapacity   bool       `json:"has_maximum_capacity"`
	MaximumEventCapacity *int       `json:"maximum_event_capacity,omitempty"`
	State                string     `json:"state"`
	LogoFileID           string     `json:"logo_file_id,omitempty"`
	TicketsSold          int        `json:"tickets_sold"`
	CreatedAt            time.Time  `json:"created_at"`
}

// NewEventResponse maps a domain event to its response shape
func NewEventResponse(e *domain.Event) *EventResponse {
	return &EventResponse{
		ID:                   e.ID,
		StoreID:              e.StoreID,
		Title:                e.Title,
		Description:          e.Description,
		Location:             e.Location,
		EventType:            string(e.EventType),
		StartDate:            e.StartDate,
		EndDate:              e.EndDate,
		Currency:             e.Currency,
		RedirectURL:          e.RedirectURL,
		EmailSubject:         e.EmailSubject,
		EmailBody:            e.EmailBody,
		HasMaximumCapacity:   e.HasMaximumCapacity,
		MaximumEventCapacity: e.MaximumEventCapacity,
		State:                string(e.State),
		LogoFileID:           e.LogoFileID,
		TicketsSold:          e.TicketsSold,
		CreatedAt:            e.CreatedAt,
	}
}

// NewEventListResponse maps a slice of domain events
func NewEventListResponse(events []*domain.Event) []*EventResponse {
	out := make([]*EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, NewEventResponse(e))
	}
	return out
}
