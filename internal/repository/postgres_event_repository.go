package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simplesats/ticket-sales/internal/domain"
)

// PostgresEventRepository implements EventRepository using PostgreSQL
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

// eventColumns defines the columns to select for events.
// Using COALESCE for nullable string columns to avoid scan errors.
// tickets_sold is always computed live from settled tickets.
const eventColumns = `e.id, e.store_id, e.title,
	COALESCE(e.description, '') as description,
	COALESCE(e.location, '') as location,
	e.event_type, e.start_date, e.end_date, e.currency,
	COALESCE(e.redirect_url, '') as redirect_url,
	COALESCE(e.email_subject, '') as email_subject,
	COALESCE(e.email_body, '') as email_body,
	e.has_maximum_capacity, e.maximum_event_capacity, e.state,
	COALESCE(e.logo_file_id, '') as logo_file_id,
	e.created_at,
	(SELECT COUNT(*) FROM tickets t
		WHERE t.event_id = e.id AND t.payment_status = 'settled') as tickets_sold`

func scanEvent(row pgx.Row) (*domain.Event, error) {
	event := &domain.Event{}
	err := row.Scan(
		&event.ID,
		&event.StoreID,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.EventType,
		&event.StartDate,
		&event.EndDate,
		&event.Currency,
		&event.RedirectURL,
		&event.EmailSubject,
		&event.EmailBody,
		&event.HasMaximumCapacity,
		&event.MaximumEventCapacity,
		&event.State,
		&event.LogoFileID,
		&event.CreatedAt,
		&event.TicketsSold,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}

func scanEvents(rows pgx.Rows) ([]*domain.Event, error) {
	var events []*domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// Create inserts a new event
func (r *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (
			id, store_id, title, description, location, event_type,
			start_date, end_date, currency, redirect_url, email_subject,
			email_body, has_maximum_capacity, maximum_event_capacity,
			state, logo_file_id, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		)
	`

	_, err := db(ctx, r.pool).Exec(ctx, query,
		event.ID,
		event.StoreID,
		event.Title,
		event.Description,
		event.Location,
		event.EventType,
		event.StartDate,
		event.EndDate,
		event.Currency,
		event.RedirectURL,
		event.EmailSubject,
		event.EmailBody,
		event.HasMaximumCapacity,
		event.MaximumEventCapacity,
		event.State,
		nullable(event.LogoFileID),
		event.CreatedAt,
	)
	return err
}

// GetByID retrieves an event scoped by store
func (r *PostgresEventRepository) GetByID(ctx context.Context, storeID, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events e WHERE e.id = $1 AND e.store_id = $2`, eventColumns)
	event, err := scanEvent(db(ctx, r.pool).QueryRow(ctx, query, id, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, nil
		}
		return nil, err
	}
	return event, nil
}

// GetForUpdate retrieves an event and locks its row for the rest of the
// ambient transaction
func (r *PostgresEventRepository) GetForUpdate(ctx context.Context, storeID, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events e WHERE e.id = $1 AND e.store_id = $2 FOR UPDATE OF e`, eventColumns)
	event, err := scanEvent(db(ctx, r.pool).QueryRow(ctx, query, id, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, nil
		}
		return nil, err
	}
	return event, nil
}

// List retrieves events for a store, optionally filtered on whether the
// start date has passed
func (r *PostgresEventRepository) List(ctx context.Context, storeID string, expired *bool) ([]*domain.Event, error) {
	conditions := []string{"e.store_id = $1"}
	args := []interface{}{storeID}

	if expired != nil {
		if *expired {
			conditions = append(conditions, "e.start_date <= NOW()")
		} else {
			conditions = append(conditions, "e.start_date > NOW()")
		}
	}

	query := fmt.Sprintf(`
		SELECT %s FROM events e
		WHERE %s
		ORDER BY e.start_date ASC, e.created_at ASC
	`, eventColumns, strings.Join(conditions, " AND "))

	rows, err := db(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Update overwrites the mutable fields of an event
func (r *PostgresEventRepository) Update(ctx context.Context, event *domain.Event) error {
	query := `
		UPDATE events SET
			title = $3, description = $4, location = $5, event_type = $6,
			start_date = $7, end_date = $8, currency = $9, redirect_url = $10,
			email_subject = $11, email_body = $12, has_maximum_capacity = $13,
			maximum_event_capacity = $14, logo_file_id = $15
		WHERE id = $1 AND store_id = $2
	`

	result, err := db(ctx, r.pool).Exec(ctx, query,
		event.ID,
		event.StoreID,
		event.Title,
		event.Description,
		event.Location,
		event.EventType,
		event.StartDate,
		event.EndDate,
		event.Currency,
		event.RedirectURL,
		event.EmailSubject,
		event.EmailBody,
		event.HasMaximumCapacity,
		event.MaximumEventCapacity,
		nullable(event.LogoFileID),
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// UpdateState flips the event lifecycle state
func (r *PostgresEventRepository) UpdateState(ctx context.Context, storeID, id string, state domain.EntityState) error {
	result, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE events SET state = $3 WHERE id = $1 AND store_id = $2`,
		id, storeID, state,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// SetLogoFileID overwrites the logo reference; empty string clears it
func (r *PostgresEventRepository) SetLogoFileID(ctx context.Context, storeID, id, logoFileID string) error {
	result, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE events SET logo_file_id = $3 WHERE id = $1 AND store_id = $2`,
		id, storeID, nullable(logoFileID),
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// Delete removes the event row. Owned tiers and tickets are removed by
// their own repositories inside the same transaction.
func (r *PostgresEventRepository) Delete(ctx context.Context, storeID, id string) error {
	result, err := db(ctx, r.pool).Exec(ctx,
		`DELETE FROM events WHERE id = $1 AND store_id = $2`,
		id, storeID,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

// nullable maps the empty string to NULL for optional text columns
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
