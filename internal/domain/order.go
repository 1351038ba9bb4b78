package domain

import (
	"fmt"
	"time"
)

// TransactionStatus is the settlement status of an order or ticket
// (matches DB ENUM)
type TransactionStatus string

const (
	StatusNew     TransactionStatus = "new"
	StatusPending TransactionStatus = "pending"
	StatusSettled TransactionStatus = "settled"
	StatusExpired TransactionStatus = "expired"
	StatusInvalid TransactionStatus = "invalid"
)

// ParseTransactionStatus rejects anything outside the closed set
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch TransactionStatus(s) {
	case StatusNew, StatusPending, StatusSettled, StatusExpired, StatusInvalid:
		return TransactionStatus(s), nil
	}
	return "", fmt.Errorf("unknown transaction status %q", s)
}

// Order groups the tickets settled by a single invoice
type Order struct {
	ID            string            `json:"id"`
	StoreID       string            `json:"store_id"`
	EventID       string            `json:"event_id"`
	TotalAmount   float64           `json:"total_amount"`
	Currency      string            `json:"currency"`
	InvoiceID     string            `json:"invoice_id"`
	PaymentStatus TransactionStatus `json:"payment_status"`
	InvoiceStatus string            `json:"invoice_status,omitempty"`
	EmailSent     bool              `json:"email_sent"`
	PurchaseDate  time.Time         `json:"purchase_date"`
	CreatedAt     time.Time         `json:"created_at"`

	Tickets []*Ticket `json:"tickets,omitempty"`
}

// Ticket is a single admission, carrying a snapshot of the tier it was
// sold under so later tier edits don't rewrite history
type Ticket struct {
	ID             string            `json:"id"`
	StoreID        string            `json:"store_id"`
	EventID        string            `json:"event_id"`
	OrderID        string            `json:"order_id"`
	TicketTypeID   string            `json:"ticket_type_id"`
	TicketTypeName string            `json:"ticket_type_name"`
	Amount         float64           `json:"amount"`
	Currency       string            `json:"currency"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	Email          string            `json:"email"`
	TicketNumber   string            `json:"ticket_number"`
	TxnNumber      string            `json:"txn_number,omitempty"`
	PaymentStatus  TransactionStatus `json:"payment_status"`
	UsedAt         *time.Time        `json:"used_at,omitempty"`
	EmailSent      bool              `json:"email_sent"`
	PurchaseDate   time.Time         `json:"purchase_date"`
	CreatedAt      time.Time         `json:"created_at"`
}

// IsSettled reports whether the ticket's payment has settled
func (t *Ticket) IsSettled() bool {
	return t.PaymentStatus == StatusSettled
}

// AttendedEvent reports whether the ticket was checked in
func (t *Ticket) AttendedEvent() bool {
	return t.UsedAt != nil
}

// CheckinResult is the outcome of a check-in attempt. A miss or an
// already-used ticket is a failed check-in, not an error.
type CheckinResult struct {
	Success      bool    `json:"success"`
	ErrorMessage string  `json:"error_message,omitempty"`
	Ticket       *Ticket `json:"ticket,omitempty"`
}
