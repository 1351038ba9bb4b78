package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simplesats/ticket-sales/internal/domain"
)

// PostgresTicketTypeRepository implements TicketTypeRepository using PostgreSQL
type PostgresTicketTypeRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketTypeRepository creates a new PostgresTicketTypeRepository
func NewPostgresTicketTypeRepository(pool *pgxpool.Pool) *PostgresTicketTypeRepository {
	return &PostgresTicketTypeRepository{pool: pool}
}

// quantity_sold is always computed live from settled tickets
const ticketTypeColumns = `tt.id, tt.event_id, tt.name,
	COALESCE(tt.description, '') as description,
	tt.price, tt.quantity, tt.is_default, tt.state, tt.created_at,
	(SELECT COUNT(*) FROM tickets t
		WHERE t.ticket_type_id = tt.id AND t.payment_status = 'settled') as quantity_sold`

func scanTicketType(row pgx.Row) (*domain.TicketType, error) {
	tt := &domain.TicketType{}
	err := row.Scan(
		&tt.ID,
		&tt.EventID,
		&tt.Name,
		&tt.Description,
		&tt.Price,
		&tt.Quantity,
		&tt.IsDefault,
		&tt.State,
		&tt.CreatedAt,
		&tt.QuantitySold,
	)
	if err != nil {
		return nil, err
	}
	return tt, nil
}

func scanTicketTypes(rows pgx.Rows) ([]*domain.TicketType, error) {
	var types []*domain.TicketType
	for rows.Next() {
		tt, err := scanTicketType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, tt)
	}
	return types, rows.Err()
}

// Create inserts a new ticket type
func (r *PostgresTicketTypeRepository) Create(ctx context.Context, tt *domain.TicketType) error {
	query := `
		INSERT INTO ticket_types (
			id, event_id, name, description, price, quantity, is_default, state, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`
	_, err := db(ctx, r.pool).Exec(ctx, query,
		tt.ID,
		tt.EventID,
		tt.Name,
		tt.Description,
		tt.Price,
		tt.Quantity,
		tt.IsDefault,
		tt.State,
		tt.CreatedAt,
	)
	return err
}

// GetByID retrieves a ticket type scoped by event
func (r *PostgresTicketTypeRepository) GetByID(ctx context.Context, eventID, id string) (*domain.TicketType, error) {
	query := fmt.Sprintf(`SELECT %s FROM ticket_types tt WHERE tt.id = $1 AND tt.event_id = $2`, ticketTypeColumns)
	tt, err := scanTicketType(db(ctx, r.pool).QueryRow(ctx, query, id, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, nil
		}
		return nil, err
	}
	return tt, nil
}

// List retrieves the tiers of an event in the requested order
func (r *PostgresTicketTypeRepository) List(ctx context.Context, eventID string, sort TicketTypeSort) ([]*domain.TicketType, error) {
	orderBy := "tt.name"
	if sort.By == "price" {
		orderBy = "tt.price"
	}
	dir := "ASC"
	if sort.Dir == "desc" {
		dir = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT %s FROM ticket_types tt
		WHERE tt.event_id = $1
		ORDER BY %s %s, tt.created_at ASC
	`, ticketTypeColumns, orderBy, dir)

	rows, err := db(ctx, r.pool).Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTicketTypes(rows)
}

// Update overwrites the mutable fields of a ticket type
func (r *PostgresTicketTypeRepository) Update(ctx context.Context, tt *domain.TicketType) error {
	query := `
		UPDATE ticket_types SET
			name = $3, description = $4, price = $5, quantity = $6, is_default = $7
		WHERE id = $1 AND event_id = $2
	`
	result, err := db(ctx, r.pool).Exec(ctx, query,
		tt.ID,
		tt.EventID,
		tt.Name,
		tt.Description,
		tt.Price,
		tt.Quantity,
		tt.IsDefault,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrTicketTypeNotFound
	}
	return nil
}

// UpdateState flips the tier lifecycle state
func (r *PostgresTicketTypeRepository) UpdateState(ctx context.Context, eventID, id string, state domain.EntityState) error {
	result, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE ticket_types SET state = $3 WHERE id = $1 AND event_id = $2`,
		id, eventID, state,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrTicketTypeNotFound
	}
	return nil
}

// Delete removes a ticket type
func (r *PostgresTicketTypeRepository) Delete(ctx context.Context, eventID, id string) error {
	result, err := db(ctx, r.pool).Exec(ctx,
		`DELETE FROM ticket_types WHERE id = $1 AND event_id = $2`,
		id, eventID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrTicketTypeNotFound
	}
	return nil
}

// DeleteByEvent removes every tier of an event
func (r *PostgresTicketTypeRepository) DeleteByEvent(ctx context.Context, eventID string) error {
	_, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM ticket_types WHERE event_id = $1`, eventID)
	return err
}

// CountByEvent counts all tiers of an event
func (r *PostgresTicketTypeRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	var count int
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM ticket_types WHERE event_id = $1`, eventID,
	).Scan(&count)
	return count, err
}

// SumQuantities sums tier quantities for an event, optionally excluding
// one tier
func (r *PostgresTicketTypeRepository) SumQuantities(ctx context.Context, eventID, excludeID string) (int, error) {
	var sum int
	var err error
	if excludeID == "" {
		err = db(ctx, r.pool).QueryRow(ctx,
			`SELECT COALESCE(SUM(quantity), 0) FROM ticket_types WHERE event_id = $1`,
			eventID,
		).Scan(&sum)
	} else {
		err = db(ctx, r.pool).QueryRow(ctx,
			`SELECT COALESCE(SUM(quantity), 0) FROM ticket_types WHERE event_id = $1 AND id <> $2`,
			eventID, excludeID,
		).Scan(&sum)
	}
	return sum, err
}

// ClearDefault drops the default flag from every tier of the event
// except exceptID
func (r *PostgresTicketTypeRepository) ClearDefault(ctx context.Context, eventID, exceptID string) error {
	var err error
	if exceptID == "" {
		_, err = db(ctx, r.pool).Exec(ctx,
			`UPDATE ticket_types SET is_default = false WHERE event_id = $1 AND is_default`,
			eventID,
		)
	} else {
		_, err = db(ctx, r.pool).Exec(ctx,
			`UPDATE ticket_types SET is_default = false WHERE event_id = $1 AND is_default AND id <> $2`,
			eventID, exceptID,
		)
	}
	return err
}

// HasDefault reports whether any tier of the event is the default
func (r *PostgresTicketTypeRepository) HasDefault(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM ticket_types WHERE event_id = $1 AND is_default)`,
		eventID,
	).Scan(&exists)
	return exists, err
}

// PromoteFirstToDefault makes the first remaining tier (name asc) the
// default. No-op when the event has no tiers.
func (r *PostgresTicketTypeRepository) PromoteFirstToDefault(ctx context.Context, eventID string) error {
	query := `
		UPDATE ticket_types SET is_default = true
		WHERE id = (
			SELECT id FROM ticket_types
			WHERE event_id = $1
			ORDER BY name ASC, created_at ASC
			LIMIT 1
		)
	`
	_, err := db(ctx, r.pool).Exec(ctx, query, eventID)
	return err
}

// SettledTicketCount counts settled tickets sold under the tier
func (r *PostgresTicketTypeRepository) SettledTicketCount(ctx context.Context, ticketTypeID string) (int, error) {
	var count int
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM tickets WHERE ticket_type_id = $1 AND payment_status = 'settled'`,
		ticketTypeID,
	).Scan(&count)
	return count, err
}
