package dto

import (
	"time"

	"github.com/simplesats/ticket-sales/internal/domain"
)

// CreateTicketTypeRequest represents the request to create a ticket tier
type CreateTicketTypeRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=255"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	IsDefault   bool    `json:"is_default"`
}

// Validate validates the CreateTicketTypeRequest. The quantity bound
// against event capacity is enforced by the service inside the event
// transaction, not here.
func (r *CreateTicketTypeRequest) Validate() *domain.ValidationError {
	verr := &domain.ValidationError{}
	if r.Name == "" {
		verr.Add("name", "is required")
	}
	if r.Price <= 0 {
		verr.Add("price", "must be positive")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// UpdateTicketTypeRequest represents the request to update a ticket tier
type UpdateTicketTypeRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=255"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	IsDefault   bool    `json:"is_default"`
}

// Validate validates the UpdateTicketTypeRequest
func (r *UpdateTicketTypeRequest) Validate() *domain.ValidationError {
	verr := &domain.ValidationError{}
	if r.Name == "" {
		verr.Add("name", "is required")
	}
	if r.Price <= 0 {
		verr.Add("price", "must be positive")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// TicketTypeListFilter represents the sort options for listing tiers
type TicketTypeListFilter struct {
	SortBy  string `form:"sortBy"`  // name, price
	SortDir string `form:"sortDir"` // asc, desc
}

// Normalize folds the sort options onto the supported set, defaulting
// to name ascending
func (f *TicketTypeListFilter) Normalize() {
	switch f.SortBy {
	case "price":
	default:
		f.SortBy = "name"
	}
	switch f.SortDir {
	case "desc":
	default:
		f.SortDir = "asc"
	}
}

// TicketTypeResponse represents the response for a ticket tier
type TicketTypeResponse struct {
	ID                string    `json:"id"`
	EventID           string    `json:"event_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	Price             float64   `json:"price"`
	Quantity          int       `json:"quantity"`
	QuantitySold      int       `json:"quantity_sold"`
	QuantityAvailable int       `json:"quantity_available"`
	IsDefault         bool      `json:"is_default"`
	State             string    `json:"state"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewTicketTypeResponse maps a domain tier to its response shape
func NewTicketTypeResponse(tt *domain.TicketType) *TicketTypeResponse {
	return &TicketTypeResponse{
		ID:                tt.ID,
		EventID:           tt.EventID,
		Name:              tt.Name,
		Description:       tt.Description,
		Price:             tt.Price,
		Quantity:          tt.Quantity,
		QuantitySold:      tt.QuantitySold,
		QuantityAvailable: tt.QuantityAvailable(),
		IsDefault:         tt.IsDefault,
		State:             string(tt.State),
		CreatedAt:         tt.CreatedAt,
	}
}

// NewTicketTypeListResponse maps a slice of domain tiers
func NewTicketTypeListResponse(types []*domain.TicketType) []*TicketTypeResponse {
	out := make([]*TicketTypeResponse, 0, len(types))
	for _, tt := range types {
		out = append(out, NewTicketTypeResponse(tt))
	}
	return out
}
