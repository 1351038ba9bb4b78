package dto

import (
	"time"

	"github.com/simplesats/ticket-sales/internal/domain"
)

// OrderResponse represents the response for a settled order with its
// tickets
type OrderResponse struct {
	ID            string            `json:"id"`
	EventID       string            `json:"event_id"`
	TotalAmount   float64           `json:"total_amount"`
	Currency      string            `json:"currency"`
	InvoiceID     string            `json:"invoice_id"`
	PaymentStatus string            `json:"payment_status"`
	InvoiceStatus string            `json:"invoice_status,omitempty"`
	EmailSent     bool              `json:"email_sent"`
	PurchaseDate  time.Time         `json:"purchase_date"`
	Tickets       []*TicketResponse `json:"tickets"`
}

// NewOrderResponse maps a domain order to its response shape
func NewOrderResponse(o *domain.Order) *OrderResponse {
	return &OrderResponse{
		ID:            o.ID,
		EventID:       o.EventID,
		TotalAmount:   o.TotalAmount,
		Currency:      o.Currency,
		InvoiceID:     o.InvoiceID,
		PaymentStatus: string(o.PaymentStatus),
		InvoiceStatus: o.InvoiceStatus,
		EmailSent:     o.EmailSent,
		PurchaseDate:  o.PurchaseDate,
		Tickets:       NewTicketListResponse(o.Tickets),
	}
}

// NewOrderListResponse maps a slice of domain orders
func NewOrderListResponse(orders []*domain.Order) []*OrderResponse {
	out := make([]*OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, NewOrderResponse(o))
	}
	return out
}
