package domain

import "time"

// TicketType is a priced tier of an event with finite inventory
type TicketType struct {
	ID          string      `json:"id"`
	EventID     string      `json:"event_id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Price       float64     `json:"price"`
	Quantity    int         `json:"quantity"`
	IsDefault   bool        `json:"is_default"`
	State       EntityState `json:"state"`
	CreatedAt   time.Time   `json:"created_at"`

	// QuantitySold is computed live from settled tickets, never stored.
	QuantitySold int `json:"quantity_sold"`
}

// QuantityAvailable derives the remaining inventory at read time
func (t *TicketType) QuantityAvailable() int {
	return t.Quantity - t.QuantitySold
}
