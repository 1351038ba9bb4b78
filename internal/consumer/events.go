package consumer

import "time"

// Settlement event types published by the payment pipeline
const (
	EventTypeInvoiceSettled = "invoice.settled"
)

// SettlementEvent is the wire envelope on the settlement topic
type SettlementEvent struct {
	EventID    string       `json:"event_id"`
	EventType  string       `json:"event_type"`
	OccurredAt time.Time    `json:"occurred_at"`
	Version    int          `json:"version"`
	Invoice    *InvoiceData `json:"invoice"`
}

// InvoiceData describes the settled invoice
type InvoiceData struct {
	InvoiceID   string        `json:"invoice_id"`
	Status      string        `json:"status"`
	StoreID     string        `json:"store_id"`
	EventID     string        `json:"event_id"`
	Currency    string        `json:"currency"`
	TotalAmount float64       `json:"total_amount"`
	SettledAt   time.Time     `json:"settled_at"`
	Lines       []InvoiceLine `json:"lines"`
}

// InvoiceLine is one admission bought on the invoice
type InvoiceLine struct {
	TicketTypeID string `json:"ticket_type_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	TxnNumber    string `json:"txn_number"`
}
