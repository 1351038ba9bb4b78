package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simplesats/ticket-sales/internal/domain"
)

// PostgresOrderRepository implements OrderRepository using PostgreSQL.
// Orders and their tickets form one aggregate, so both live here.
type PostgresOrderRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderRepository creates a new PostgresOrderRepository
func NewPostgresOrderRepository(pool *pgxpool.Pool) *PostgresOrderRepository {
	return &PostgresOrderRepository{pool: pool}
}

const orderColumns = `o.id, o.store_id, o.event_id, o.total_amount, o.currency,
	o.invoice_id,
	o.payment_status,
	COALESCE(o.invoice_status, '') as invoice_status,
	o.email_sent, o.purchase_date, o.created_at`

const ticketColumns = `t.id, t.store_id, t.event_id, t.order_id, t.ticket_type_id,
	t.ticket_type_name, t.amount, t.currency, t.first_name, t.last_name,
	t.email, t.ticket_number,
	COALESCE(t.txn_number, '') as txn_number,
	t.payment_status, t.used_at, t.email_sent, t.purchase_date, t.created_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	order := &domain.Order{}
	err := row.Scan(
		&order.ID,
		&order.StoreID,
		&order.EventID,
		&order.TotalAmount,
		&order.Currency,
		&order.InvoiceID,
		&order.PaymentStatus,
		&order.InvoiceStatus,
		&order.EmailSent,
		&order.PurchaseDate,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	ticket := &domain.Ticket{}
	err := row.Scan(
		&ticket.ID,
		&ticket.StoreID,
		&ticket.EventID,
		&ticket.OrderID,
		&ticket.TicketTypeID,
		&ticket.TicketTypeName,
		&ticket.Amount,
		&ticket.Currency,
		&ticket.FirstName,
		&ticket.LastName,
		&ticket.Email,
		&ticket.TicketNumber,
		&ticket.TxnNumber,
		&ticket.PaymentStatus,
		&ticket.UsedAt,
		&ticket.EmailSent,
		&ticket.PurchaseDate,
		&ticket.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func scanTickets(rows pgx.Rows) ([]*domain.Ticket, error) {
	var tickets []*domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}

// CreateOrder inserts the order and all its tickets
func (r *PostgresOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	q := db(ctx, r.pool)

	_, err := q.Exec(ctx, `
		INSERT INTO orders (
			id, store_id, event_id, total_amount, currency, invoice_id,
			payment_status, invoice_status, email_sent, purchase_date, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		)
	`,
		order.ID,
		order.StoreID,
		order.EventID,
		order.TotalAmount,
		order.Currency,
		order.InvoiceID,
		order.PaymentStatus,
		order.InvoiceStatus,
		order.EmailSent,
		order.PurchaseDate,
		order.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, ticket := range order.Tickets {
		_, err := q.Exec(ctx, `
			INSERT INTO tickets (
				id, store_id, event_id, order_id, ticket_type_id,
				ticket_type_name, amount, currency, first_name, last_name,
				email, ticket_number, txn_number, payment_status, used_at,
				email_sent, purchase_date, created_at
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
			)
		`,
			ticket.ID,
			ticket.StoreID,
			ticket.EventID,
			ticket.OrderID,
			ticket.TicketTypeID,
			ticket.TicketTypeName,
			ticket.Amount,
			ticket.Currency,
			ticket.FirstName,
			ticket.LastName,
			ticket.Email,
			ticket.TicketNumber,
			ticket.TxnNumber,
			ticket.PaymentStatus,
			ticket.UsedAt,
			ticket.EmailSent,
			ticket.PurchaseDate,
			ticket.CreatedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// GetOrderByID retrieves an order with its tickets, scoped by store and event
func (r *PostgresOrderRepository) GetOrderByID(ctx context.Context, storeID, eventID, id string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders o WHERE o.id = $1 AND o.store_id = $2 AND o.event_id = $3`, orderColumns)
	order, err := scanOrder(db(ctx, r.pool).QueryRow(ctx, query, id, storeID, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadTickets(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrderByInvoiceID backs settlement idempotency
func (r *PostgresOrderRepository) GetOrderByInvoiceID(ctx context.Context, storeID, invoiceID string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders o WHERE o.invoice_id = $1 AND o.store_id = $2`, orderColumns)
	order, err := scanOrder(db(ctx, r.pool).QueryRow(ctx, query, invoiceID, storeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return order, nil
}

func (r *PostgresOrderRepository) loadTickets(ctx context.Context, order *domain.Order) error {
	query := fmt.Sprintf(`SELECT %s FROM tickets t WHERE t.order_id = $1 ORDER BY t.created_at ASC`, ticketColumns)
	rows, err := db(ctx, r.pool).Query(ctx, query, order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return err
	}
	order.Tickets = tickets
	return nil
}

// ListOrders returns settled orders with nested tickets, newest first.
// searchText matches the invoice id or any owned ticket's holder fields
// (case-sensitive substring).
func (r *PostgresOrderRepository) ListOrders(ctx context.Context, storeID, eventID, searchText string) ([]*domain.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM orders o
		WHERE o.store_id = $1 AND o.event_id = $2 AND o.payment_status = 'settled'
	`, orderColumns)
	args := []interface{}{storeID, eventID}

	if searchText != "" {
		query += `
		AND (POSITION($3 IN o.invoice_id) > 0 OR EXISTS (
			SELECT 1 FROM tickets t WHERE t.order_id = o.id AND (
				POSITION($3 IN COALESCE(t.txn_number, '')) > 0 OR
				POSITION($3 IN t.first_name) > 0 OR
				POSITION($3 IN t.last_name) > 0 OR
				POSITION($3 IN t.email) > 0 OR
				POSITION($3 IN t.ticket_number) > 0
			)
		))`
		args = append(args, searchText)
	}
	query += ` ORDER BY o.purchase_date DESC, o.created_at DESC`

	rows, err := db(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		if err := r.loadTickets(ctx, order); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// SetOrderEmailSent flips the order-level confirmation flag
func (r *PostgresOrderRepository) SetOrderEmailSent(ctx context.Context, orderID string, sent bool) error {
	result, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE orders SET email_sent = $2 WHERE id = $1`, orderID, sent,
	)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// GetTicketByID retrieves a ticket scoped by its order
func (r *PostgresOrderRepository) GetTicketByID(ctx context.Context, orderID, ticketID string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets t WHERE t.id = $1 AND t.order_id = $2`, ticketColumns)
	ticket, err := scanTicket(db(ctx, r.pool).QueryRow(ctx, query, ticketID, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, nil
		}
		return nil, err
	}
	return ticket, nil
}

// GetTicketByNumber retrieves a ticket by its attendee-facing number,
// scoped by store and event
func (r *PostgresOrderRepository) GetTicketByNumber(ctx context.Context, storeID, eventID, ticketNumber string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets t WHERE t.ticket_number = $1 AND t.store_id = $2 AND t.event_id = $3`, ticketColumns)
	ticket, err := scanTicket(db(ctx, r.pool).QueryRow(ctx, query, ticketNumber, storeID, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, nil
		}
		return nil, err
	}
	return ticket, nil
}

// ListTickets returns settled tickets, newest first. searchText matches
// holder fields as a case-sensitive substring.
func (r *PostgresOrderRepository) ListTickets(ctx context.Context, storeID, eventID, searchText string) ([]*domain.Ticket, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM tickets t
		WHERE t.store_id = $1 AND t.event_id = $2 AND t.payment_status = 'settled'
	`, ticketColumns)
	args := []interface{}{storeID, eventID}

	if searchText != "" {
		query += `
		AND (
			POSITION($3 IN COALESCE(t.txn_number, '')) > 0 OR
			POSITION($3 IN t.first_name) > 0 OR
			POSITION($3 IN t.last_name) > 0 OR
			POSITION($3 IN t.email) > 0 OR
			POSITION($3 IN t.ticket_number) > 0
		)`
		args = append(args, searchText)
	}
	query += ` ORDER BY t.created_at DESC`

	rows, err := db(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTickets(rows)
}

// CheckinTicket sets used_at only when it is still NULL. The WHERE
// clause is the whole race: of two concurrent scans exactly one
// affects a row.
func (r *PostgresOrderRepository) CheckinTicket(ctx context.Context, ticketID string) (bool, error) {
	result, err := db(ctx, r.pool).Exec(ctx,
		`UPDATE tickets SET used_at = NOW() WHERE id = $1 AND used_at IS NULL`,
		ticketID,
	)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// CountTicketsByEvent counts tickets of any status for the event
func (r *PostgresOrderRepository) CountTicketsByEvent(ctx context.Context, eventID string) (int, error) {
	var count int
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM tickets WHERE event_id = $1`, eventID,
	).Scan(&count)
	return count, err
}

// TicketNumberExists reports whether a number is taken within the event
func (r *PostgresOrderRepository) TicketNumberExists(ctx context.Context, eventID, ticketNumber string) (bool, error) {
	var exists bool
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM tickets WHERE event_id = $1 AND ticket_number = $2)`,
		eventID, ticketNumber,
	).Scan(&exists)
	return exists, err
}

// DeleteByEvent removes every ticket and order of an event
func (r *PostgresOrderRepository) DeleteByEvent(ctx context.Context, eventID string) error {
	q := db(ctx, r.pool)
	if _, err := q.Exec(ctx, `DELETE FROM tickets WHERE event_id = $1`, eventID); err != nil {
		return err
	}
	_, err := q.Exec(ctx, `DELETE FROM orders WHERE event_id = $1`, eventID)
	return err
}
