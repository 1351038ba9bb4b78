package service

import (
	"context"
	"io"
	"time"

	"github.com/simplesats/ticket-sales/internal/domain"
	"github.com/simplesats/ticket-sales/internal/dto"
)

// EventService manages the event catalog
type EventService interface {
	ListEvents(ctx context.Context, storeID string, filter *dto.EventListFilter) ([]*domain.Event, error)
	GetEvent(ctx context.Context, storeID, eventID string) (*domain.Event, error)
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*domain.Event, error)
	UpdateEvent(ctx context.Context, storeID, eventID string, req *dto.UpdateEventRequest) (*domain.Event, error)
	DeleteEvent(ctx context.Context, storeID, eventID string) error
	// ToggleEvent flips Disabled↔Active; enabling requires at least one tier
	ToggleEvent(ctx context.Context, storeID, eventID string) (*domain.Event, error)
	UploadLogo(ctx context.Context, storeID, eventID, filename string, content io.Reader) (*domain.Event, error)
	ClearLogo(ctx context.Context, storeID, eventID string) error
}

// TicketTypeService manages tier inventory under an event
type TicketTypeService interface {
	ListTicketTypes(ctx context.Context, storeID, eventID string, filter *dto.TicketTypeListFilter) ([]*domain.TicketType, error)
	GetTicketType(ctx context.Context, storeID, eventID, id string) (*domain.TicketType, error)
	CreateTicketType(ctx context.Context, storeID, eventID string, req *dto.CreateTicketTypeRequest) (*domain.TicketType, error)
	UpdateTicketType(ctx context.Context, storeID, eventID, id string, req *dto.UpdateTicketTypeRequest) (*domain.TicketType, error)
	DeleteTicketType(ctx context.Context, storeID, eventID, id string) error
	ToggleTicketType(ctx context.Context, storeID, eventID, id string) (*domain.TicketType, error)
}

// TicketExport is a rendered CSV download
type TicketExport struct {
	Filename string
	Content  []byte
}

// TicketService reads the settled order/ticket ledger
type TicketService interface {
	ListTickets(ctx context.Context, storeID, eventID, searchText string) ([]*domain.Ticket, error)
	ListOrders(ctx context.Context, storeID, eventID, searchText string) ([]*domain.Order, error)
	ExportTicketsCSV(ctx context.Context, storeID, eventID string) (*TicketExport, error)
	// ResendConfirmation re-sends the purchase email for one ticket and
	// marks the owning order's email as sent
	ResendConfirmation(ctx context.Context, storeID, eventID, orderID, ticketID string) error
}

// CheckinService performs at-the-door check-in
type CheckinService interface {
	Checkin(ctx context.Context, storeID, eventID, ticketNumber string) (*domain.CheckinResult, error)
}

// SettlementTicket is one admission line of a settled invoice
type SettlementTicket struct {
	TicketTypeID string
	FirstName    string
	LastName     string
	Email        string
	TxnNumber    string
}

// Settlement is a settled invoice reported by the payment pipeline
type Settlement struct {
	StoreID       string
	EventID       string
	InvoiceID     string
	InvoiceStatus string
	Currency      string
	TotalAmount   float64
	PurchaseDate  time.Time
	Tickets       []SettlementTicket
}

// SettlementService turns settled invoices into ledger rows
type SettlementService interface {
	// RecordSettlement creates the order and its tickets atomically.
	// Replays of the same invoice id are no-ops.
	RecordSettlement(ctx context.Context, settlement *Settlement) error
}
