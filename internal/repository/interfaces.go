package repository

import (
	"context"

	"github.com/simplesats/ticket-sales/internal/domain"
)

// TicketTypeSort controls tier list ordering
type TicketTypeSort struct {
	By  string // name, price
	Dir string // asc, desc
}

// EventRepository defines data access for events.
// Lookups return (nil, nil) when no row matches.
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	// GetByID returns the event with its live settled-ticket count
	GetByID(ctx context.Context, storeID, id string) (*domain.Event, error)
	// GetForUpdate locks the event row for the rest of the ambient
	// transaction. Serializes tier mutations per event aggregate.
	GetForUpdate(ctx context.Context, storeID, id string) (*domain.Event, error)
	// List returns all events for a store; expired filters on whether
	// the start date has passed
	List(ctx context.Context, storeID string, expired *bool) ([]*domain.Event, error)
	Update(ctx context.Context, event *domain.Event) error
	UpdateState(ctx context.Context, storeID, id string, state domain.EntityState) error
	// SetLogoFileID overwrites the logo reference; empty string clears it
	SetLogoFileID(ctx context.Context, storeID, id, logoFileID string) error
	Delete(ctx context.Context, storeID, id string) error
}

// TicketTypeRepository defines data access for ticket tiers
type TicketTypeRepository interface {
	Create(ctx context.Context, tt *domain.TicketType) error
	GetByID(ctx context.Context, eventID, id string) (*domain.TicketType, error)
	List(ctx context.Context, eventID string, sort TicketTypeSort) ([]*domain.TicketType, error)
	Update(ctx context.Context, tt *domain.TicketType) error
	UpdateState(ctx context.Context, eventID, id string, state domain.EntityState) error
	Delete(ctx context.Context, eventID, id string) error
	DeleteByEvent(ctx context.Context, eventID string) error
	// CountByEvent counts all tiers of an event
	CountByEvent(ctx context.Context, eventID string) (int, error)
	// SumQuantities sums tier quantities for an event, optionally
	// excluding one tier (excludeID may be empty)
	SumQuantities(ctx context.Context, eventID, excludeID string) (int, error)
	// ClearDefault drops the default flag from every tier of the event
	// except exceptID (may be empty)
	ClearDefault(ctx context.Context, eventID, exceptID string) error
	// HasDefault reports whether any tier of the event is the default
	HasDefault(ctx context.Context, eventID string) (bool, error)
	// PromoteFirstToDefault makes the first remaining tier (name asc)
	// the default. No-op when the event has no tiers.
	PromoteFirstToDefault(ctx context.Context, eventID string) error
	// SettledTicketCount counts settled tickets sold under the tier
	SettledTicketCount(ctx context.Context, ticketTypeID string) (int, error)
}

// OrderRepository defines data access for the settled order/ticket ledger
type OrderRepository interface {
	// CreateOrder inserts the order and all its tickets
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, storeID, eventID, id string) (*domain.Order, error)
	// GetOrderByInvoiceID backs settlement idempotency
	GetOrderByInvoiceID(ctx context.Context, storeID, invoiceID string) (*domain.Order, error)
	// ListOrders returns settled orders with nested tickets; searchText
	// matches invoice id or any owned ticket's holder fields
	ListOrders(ctx context.Context, storeID, eventID, searchText string) ([]*domain.Order, error)
	SetOrderEmailSent(ctx context.Context, orderID string, sent bool) error

	GetTicketByID(ctx context.Context, orderID, ticketID string) (*domain.Ticket, error)
	GetTicketByNumber(ctx context.Context, storeID, eventID, ticketNumber string) (*domain.Ticket, error)
	// ListTickets returns settled tickets; searchText matches txn
	// number, names, email or ticket number (case-sensitive substring)
	ListTickets(ctx context.Context, storeID, eventID, searchText string) ([]*domain.Ticket, error)
	// CheckinTicket sets used_at only when it is still NULL. Returns
	// false when the ticket was already checked in.
	CheckinTicket(ctx context.Context, ticketID string) (bool, error)
	// CountTicketsByEvent counts tickets of any status for the event
	CountTicketsByEvent(ctx context.Context, eventID string) (int, error)
	// TicketNumberExists reports whether a number is taken within the event
	TicketNumberExists(ctx context.Context, eventID, ticketNumber string) (bool, error)
	DeleteByEvent(ctx context.Context, eventID string) error
}
