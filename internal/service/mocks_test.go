package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/simplesats/ticket-sales/internal/domain"
	"github.com/simplesats/ticket-sales/internal/gateway"
	"github.com/simplesats/ticket-sales/internal/repository"
)

// fakeTx runs the function directly; the mock repositories have no
// transaction semantics to join
type fakeTx struct{}

func (fakeTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockEventRepository is a map-backed EventRepository
type MockEventRepository struct {
	events    map[string]*domain.Event
	createErr error
	updateErr error
}

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{events: make(map[string]*domain.Event)}
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.events[event.ID] = event
	return nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, storeID, id string) (*domain.Event, error) {
	event, ok := m.events[id]
	if !ok || event.StoreID != storeID {
		return nil, nil
	}
	return event, nil
}

func (m *MockEventRepository) GetForUpdate(ctx context.Context, storeID, id string) (*domain.Event, error) {
	return m.GetByID(ctx, storeID, id)
}

func (m *MockEventRepository) List(ctx context.Context, storeID string, expired *bool) ([]*domain.Event, error) {
	now := time.Now()
	var events []*domain.Event
	for _, e := range m.events {
		if e.StoreID != storeID {
			continue
		}
		if expired != nil && e.IsExpired(now) != *expired {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func (m *MockEventRepository) Update(ctx context.Context, event *domain.Event) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.events[event.ID]; !ok {
		return domain.ErrEventNotFound
	}
	m.events[event.ID] = event
	return nil
}

func (m *MockEventRepository) UpdateState(ctx context.Context, storeID, id string, state domain.EntityState) error {
	event, ok := m.events[id]
	if !ok || event.StoreID != storeID {
		return domain.ErrEventNotFound
	}
	event.State = state
	return nil
}

func (m *MockEventRepository) SetLogoFileID(ctx context.Context, storeID, id, logoFileID string) error {
	event, ok := m.events[id]
	if !ok || event.StoreID != storeID {
		return domain.ErrEventNotFound
	}
	event.LogoFileID = logoFileID
	return nil
}

func (m *MockEventRepository) Delete(ctx context.Context, storeID, id string) error {
	event, ok := m.events[id]
	if !ok || event.StoreID != storeID {
		return domain.ErrEventNotFound
	}
	delete(m.events, id)
	return nil
}

// MockTicketTypeRepository is a map-backed TicketTypeRepository
type MockTicketTypeRepository struct {
	types   map[string]*domain.TicketType
	settled map[string]int // ticketTypeID -> settled ticket count
}

func NewMockTicketTypeRepository() *MockTicketTypeRepository {
	return &MockTicketTypeRepository{
		types:   make(map[string]*domain.TicketType),
		settled: make(map[string]int),
	}
}

func (m *MockTicketTypeRepository) Create(ctx context.Context, tt *domain.TicketType) error {
	m.types[tt.ID] = tt
	return nil
}

func (m *MockTicketTypeRepository) GetByID(ctx context.Context, eventID, id string) (*domain.TicketType, error) {
	tt, ok := m.types[id]
	if !ok || tt.EventID != eventID {
		return nil, nil
	}
	return tt, nil
}

func (m *MockTicketTypeRepository) List(ctx context.Context, eventID string, sortBy repository.TicketTypeSort) ([]*domain.TicketType, error) {
	var types []*domain.TicketType
	for _, tt := range m.types {
		if tt.EventID == eventID {
			types = append(types, tt)
		}
	}
	sort.Slice(types, func(i, j int) bool {
		less := types[i].Name < types[j].Name
		if sortBy.By == "price" {
			less = types[i].Price < types[j].Price
		}
		if sortBy.Dir == "desc" {
			return !less
		}
		return less
	})
	return types, nil
}

func (m *MockTicketTypeRepository) Update(ctx context.Context, tt *domain.TicketType) error {
	if _, ok := m.types[tt.ID]; !ok {
		return domain.ErrTicketTypeNotFound
	}
	m.types[tt.ID] = tt
	return nil
}

func (m *MockTicketTypeRepository) UpdateState(ctx context.Context, eventID, id string, state domain.EntityState) error {
	tt, ok := m.types[id]
	if !ok || tt.EventID != eventID {
		return domain.ErrTicketTypeNotFound
	}
	tt.State = state
	return nil
}

func (m *MockTicketTypeRepository) Delete(ctx context.Context, eventID, id string) error {
	tt, ok := m.types[id]
	if !ok || tt.EventID != eventID {
		return domain.ErrTicketTypeNotFound
	}
	delete(m.types, id)
	return nil
}

func (m *MockTicketTypeRepository) DeleteByEvent(ctx context.Context, eventID string) error {
	for id, tt := range m.types {
		if tt.EventID == eventID {
			delete(m.types, id)
		}
	}
	return nil
}

func (m *MockTicketTypeRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	count := 0
	for _, tt := range m.types {
		if tt.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (m *MockTicketTypeRepository) SumQuantities(ctx context.Context, eventID, excludeID string) (int, error) {
	sum := 0
	for _, tt := range m.types {
		if tt.EventID == eventID && tt.ID != excludeID {
			sum += tt.Quantity
		}
	}
	return sum, nil
}

func (m *MockTicketTypeRepository) ClearDefault(ctx context.Context, eventID, exceptID string) error {
	for _, tt := range m.types {
		if tt.EventID == eventID && tt.ID != exceptID {
			tt.IsDefault = false
		}
	}
	return nil
}

func (m *MockTicketTypeRepository) HasDefault(ctx context.Context, eventID string) (bool, error) {
	for _, tt := range m.types {
		if tt.EventID == eventID && tt.IsDefault {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockTicketTypeRepository) PromoteFirstToDefault(ctx context.Context, eventID string) error {
	var first *domain.TicketType
	for _, tt := range m.types {
		if tt.EventID != eventID {
			continue
		}
		if first == nil || tt.Name < first.Name {
			first = tt
		}
	}
	if first != nil {
		first.IsDefault = true
	}
	return nil
}

func (m *MockTicketTypeRepository) SettledTicketCount(ctx context.Context, ticketTypeID string) (int, error) {
	return m.settled[ticketTypeID], nil
}

// MockOrderRepository is a map-backed OrderRepository
type MockOrderRepository struct {
	orders         map[string]*domain.Order
	tickets        map[string]*domain.Ticket
	createOrderErr error

	// ticketReadErr fails GetTicketByNumber once ticketReadErrAfter
	// successful reads have happened
	ticketReads        int
	ticketReadErr      error
	ticketReadErrAfter int
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders:  make(map[string]*domain.Order),
		tickets: make(map[string]*domain.Ticket),
	}
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	if m.createOrderErr != nil {
		return m.createOrderErr
	}
	m.orders[order.ID] = order
	for _, t := range order.Tickets {
		m.tickets[t.ID] = t
	}
	return nil
}

func (m *MockOrderRepository) GetOrderByID(ctx context.Context, storeID, eventID, id string) (*domain.Order, error) {
	order, ok := m.orders[id]
	if !ok || order.StoreID != storeID || order.EventID != eventID {
		return nil, nil
	}
	return order, nil
}

func (m *MockOrderRepository) GetOrderByInvoiceID(ctx context.Context, storeID, invoiceID string) (*domain.Order, error) {
	for _, order := range m.orders {
		if order.StoreID == storeID && order.InvoiceID == invoiceID {
			return order, nil
		}
	}
	return nil, nil
}

func (m *MockOrderRepository) ListOrders(ctx context.Context, storeID, eventID, searchText string) ([]*domain.Order, error) {
	var orders []*domain.Order
	for _, order := range m.orders {
		if order.StoreID != storeID || order.EventID != eventID {
			continue
		}
		if order.PaymentStatus != domain.StatusSettled {
			continue
		}
		if searchText != "" && !strings.Contains(order.InvoiceID, searchText) {
			continue
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (m *MockOrderRepository) SetOrderEmailSent(ctx context.Context, orderID string, sent bool) error {
	order, ok := m.orders[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.EmailSent = sent
	return nil
}

func (m *MockOrderRepository) GetTicketByID(ctx context.Context, orderID, ticketID string) (*domain.Ticket, error) {
	ticket, ok := m.tickets[ticketID]
	if !ok || ticket.OrderID != orderID {
		return nil, nil
	}
	return ticket, nil
}

func (m *MockOrderRepository) GetTicketByNumber(ctx context.Context, storeID, eventID, ticketNumber string) (*domain.Ticket, error) {
	m.ticketReads++
	if m.ticketReadErr != nil && m.ticketReads > m.ticketReadErrAfter {
		return nil, m.ticketReadErr
	}
	for _, t := range m.tickets {
		if t.StoreID == storeID && t.EventID == eventID && t.TicketNumber == ticketNumber {
			return t, nil
		}
	}
	return nil, nil
}

func (m *MockOrderRepository) ListTickets(ctx context.Context, storeID, eventID, searchText string) ([]*domain.Ticket, error) {
	var tickets []*domain.Ticket
	for _, t := range m.tickets {
		if t.StoreID != storeID || t.EventID != eventID {
			continue
		}
		if t.PaymentStatus != domain.StatusSettled {
			continue
		}
		if searchText != "" &&
			!strings.Contains(t.TxnNumber, searchText) &&
			!strings.Contains(t.FirstName, searchText) &&
			!strings.Contains(t.LastName, searchText) &&
			!strings.Contains(t.Email, searchText) &&
			!strings.Contains(t.TicketNumber, searchText) {
			continue
		}
		tickets = append(tickets, t)
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].TicketNumber < tickets[j].TicketNumber })
	return tickets, nil
}

func (m *MockOrderRepository) CheckinTicket(ctx context.Context, ticketID string) (bool, error) {
	ticket, ok := m.tickets[ticketID]
	if !ok || ticket.UsedAt != nil {
		return false, nil
	}
	now := time.Now()
	ticket.UsedAt = &now
	return true, nil
}

func (m *MockOrderRepository) CountTicketsByEvent(ctx context.Context, eventID string) (int, error) {
	count := 0
	for _, t := range m.tickets {
		if t.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (m *MockOrderRepository) TicketNumberExists(ctx context.Context, eventID, ticketNumber string) (bool, error) {
	for _, t := range m.tickets {
		if t.EventID == eventID && t.TicketNumber == ticketNumber {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockOrderRepository) DeleteByEvent(ctx context.Context, eventID string) error {
	for id, t := range m.tickets {
		if t.EventID == eventID {
			delete(m.tickets, id)
		}
	}
	for id, o := range m.orders {
		if o.EventID == eventID {
			delete(m.orders, id)
		}
	}
	return nil
}

// MockEmailSender records sent messages
type MockEmailSender struct {
	configured bool
	sendErr    error
	sent       []*gateway.EmailMessage
}

func (m *MockEmailSender) Configured() bool {
	return m.configured
}

func (m *MockEmailSender) Send(ctx context.Context, msg *gateway.EmailMessage) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

// MockFileStore records stored files
type MockFileStore struct {
	files   map[string]string // fileID -> original filename
	saveErr error
	deleted []string
}

func NewMockFileStore() *MockFileStore {
	return &MockFileStore{files: make(map[string]string)}
}

func (m *MockFileStore) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	id := "file-" + filename
	m.files[id] = filename
	return id, nil
}

func (m *MockFileStore) Delete(ctx context.Context, fileID string) error {
	delete(m.files, fileID)
	m.deleted = append(m.deleted, fileID)
	return nil
}

// MockStoreGateway returns a fixed default currency
type MockStoreGateway struct {
	currency string
}

func (m *MockStoreGateway) DefaultCurrency(ctx context.Context, storeID string) (string, error) {
	return m.currency, nil
}
