package domain

import (
	"fmt"
	"time"
)

// EventType says where an event takes place (matches DB ENUM)
type EventType string

const (
	EventTypeVirtual  EventType = "virtual"
	EventTypePhysical EventType = "physical"
)

// ParseEventType rejects anything outside the closed set
func ParseEventType(s string) (EventType, error) {
	switch EventType(s) {
	case EventTypeVirtual, EventTypePhysical:
		return EventType(s), nil
	}
	return "", fmt.Errorf("unknown event type %q", s)
}

// EntityState is the enabled/disabled lifecycle shared by events and
// ticket types (matches DB ENUM)
type EntityState string

const (
	StateDisabled EntityState = "disabled"
	StateActive   EntityState = "active"
)

// ParseEntityState rejects anything outside the closed set
func ParseEntityState(s string) (EntityState, error) {
	switch EntityState(s) {
	case StateDisabled, StateActive:
		return EntityState(s), nil
	}
	return "", fmt.Errorf("unknown entity state %q", s)
}

// Event represents a scheduled event in a store's catalog
type Event struct {
	ID                   string      `json:"id"`
	StoreID              string      `json:"store_id"`
	Title                string      `json:"title"`
	Description          string      `json:"description,omitempty"`
	Location             string      `json:"location,omitempty"`
	EventType            EventType   `json:"event_type"`
	StartDate            time.Time   `json:"start_date"`
	EndDate              *time.Time  `json:"end_date,omitempty"`
	Currency             string      `json:"currency"`
	RedirectURL          string      `json:"redirect_url,omitempty"`
	EmailSubject         string      `json:"email_subject,omitempty"`
	EmailBody            string      `json:"email_body,omitempty"`
	HasMaximumCapacity   bool        `json:"has_maximum_capacity"`
	MaximumEventCapacity *int        `json:"maximum_event_capacity,omitempty"`
	State                EntityState `json:"state"`
	LogoFileID           string      `json:"logo_file_id,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`

	// TicketsSold is computed live from settled tickets, never stored.
	TicketsSold int `json:"tickets_sold"`
}

// IsExpired reports whether the event's start date has passed
func (e *Event) IsExpired(now time.Time) bool {
	return !e.StartDate.After(now)
}

// IsActive reports whether the event is accepting sales
func (e *Event) IsActive() bool {
	return e.State == StateActive
}
