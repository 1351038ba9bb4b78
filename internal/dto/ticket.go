package dto

import (
	"time"

	"github.com/simplesats/ticket-sales/internal/domain"
)

// TicketListFilter represents the search options for listing tickets
// and orders. SearchText is a case-sensitive substring match.
type TicketListFilter struct {
	SearchText string `form:"searchText"`
}

// TicketResponse represents the response for a ticket
type TicketResponse struct {
	ID             string     `json:"id"`
	EventID        string     `json:"event_id"`
	OrderID        string     `json:"order_id"`
	TicketTypeID   string     `json:"ticket_type_id"`
	TicketTypeName string     `json:"ticket_type_name"`
	Amount         float64    `json:"amount"`
	Currency       string     `json:"currency"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	TicketNumber   string     `json:"ticket_number"`
	TxnNumber      string     `json:"txn_number,omitempty"`
	PaymentStatus  string     `json:"payment_status"`
	UsedAt         *time.Time `json:"used_at,omitempty"`
	AttendedEvent  bool       `json:"attended_event"`
	EmailSent      bool       `json:"email_sent"`
	PurchaseDate   time.Time  `json:"purchase_date"`
}

// NewTicketResponse maps a domain ticket to its response shape
func NewTicketResponse(t *domain.Ticket) *TicketResponse {
	return &TicketResponse{
		ID:             t.ID,
		EventID:        t.EventID,
		OrderID:        t.OrderID,
		TicketTypeID:   t.TicketTypeID,
		TicketTypeName: t.TicketTypeName,
		Amount:         t.Amount,
		Currency:       t.Currency,
		FirstName:      t.FirstName,
		LastName:       t.LastName,
		Email:          t.Email,
		TicketNumber:   t.TicketNumber,
		TxnNumber:      t.TxnNumber,
		PaymentStatus:  string(t.PaymentStatus),
		UsedAt:         t.UsedAt,
		AttendedEvent:  t.AttendedEvent(),
		EmailSent:      t.EmailSent,
		PurchaseDate:   t.PurchaseDate,
	}
}

// NewTicketListResponse maps a slice of domain tickets
func NewTicketListResponse(tickets []*domain.Ticket) []*TicketResponse {
	out := make([]*TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, NewTicketResponse(t))
	}
	return out
}

// CheckinResponse represents the outcome of a check-in attempt
type CheckinResponse struct {
	Success      bool            `json:"success"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Ticket       *TicketResponse `json:"ticket,omitempty"`
}

// NewCheckinResponse maps a domain check-in result
func NewCheckinResponse(res *domain.CheckinResult) *CheckinResponse {
	out := &CheckinResponse{
		Success:      res.Success,
		ErrorMessage: res.ErrorMessage,
	}
	if res.Ticket != nil {
		out.Ticket = NewTicketResponse(res.Ticket)
	}
	return out
}
