package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/simplesats/ticket-sales/internal/domain"
	"github.com/simplesats/ticket-sales/internal/gateway"
	"github.com/simplesats/ticket-sales/internal/repository"
)

// csvDateFormat renders purchase dates as MM/dd/yy HH:mm
const csvDateFormat = "01/02/06 15:04"

// exportFilenameFormat stamps the download filename
const exportFilenameFormat = "2006_01_02-15_04_05"

var csvHeader = []string{
	"Purchase Date", "Ticket Number", "First Name", "Last Name",
	"Email", "Ticket Tier", "Amount", "Currency", "Attended Event",
}

// ticketService implements TicketService
type ticketService struct {
	eventRepo repository.EventRepository
	orderRepo repository.OrderRepository
	email     gateway.EmailSender
}

// NewTicketService creates a new TicketService
func NewTicketService(
	eventRepo repository.EventRepository,
	orderRepo repository.OrderRepository,
	email gateway.EmailSender,
) TicketService {
	return &ticketService{
		eventRepo: eventRepo,
		orderRepo: orderRepo,
		email:     email,
	}
}

// ListTickets lists the event's settled tickets
func (s *ticketService) ListTickets(ctx context.Context, storeID, eventID, searchText string) ([]*domain.Ticket, error) {
	if err := s.requireEvent(ctx, storeID, eventID); err != nil {
		return nil, err
	}
	return s.orderRepo.ListTickets(ctx, storeID, eventID, searchText)
}

// ListOrders lists the event's settled orders with nested tickets
func (s *ticketService) ListOrders(ctx context.Context, storeID, eventID, searchText string) ([]*domain.Order, error) {
	if err := s.requireEvent(ctx, storeID, eventID); err != nil {
		return nil, err
	}
	return s.orderRepo.ListOrders(ctx, storeID, eventID, searchText)
}

// ExportTicketsCSV renders the settled tickets of an event as a CSV
// download
func (s *ticketService) ExportTicketsCSV(ctx context.Context, storeID, eventID string) (*TicketExport, error) {
	event, err := s.eventRepo.GetByID(ctx, storeID, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}

	tickets, err := s.orderRepo.ListTickets(ctx, storeID, eventID, "")
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, domain.ErrNoTickets
	}

	records := lo.Map(tickets, func(t *domain.Ticket, _ int) []string {
		return []string{
			t.PurchaseDate.Format(csvDateFormat),
			t.TicketNumber,
			t.FirstName,
			t.LastName,
			t.Email,
			t.TicketTypeName,
			strconv.FormatFloat(t.Amount, 'f', 2, 64),
			t.Currency,
			strconv.FormatBool(t.AttendedEvent()),
		}
	})

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}

	return &TicketExport{
		Filename: fmt.Sprintf("%s_Tickets-%s.csv", event.Title, time.Now().Format(exportFilenameFormat)),
		Content:  buf.Bytes(),
	}, nil
}

// ResendConfirmation re-sends the purchase email for one ticket and
// marks the owning order's confirmation as sent
func (s *ticketService) ResendConfirmation(ctx context.Context, storeID, eventID, orderID, ticketID string) error {
	event, err := s.eventRepo.GetByID(ctx, storeID, eventID)
	if err != nil {
		return err
	}
	if event == nil {
		return domain.ErrEventNotFound
	}

	order, err := s.orderRepo.GetOrderByID(ctx, storeID, eventID, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return domain.ErrOrderNotFound
	}

	ticket, err := s.orderRepo.GetTicketByID(ctx, orderID, ticketID)
	if err != nil {
		return err
	}
	if ticket == nil {
		return domain.ErrTicketNotFound
	}

	if !s.email.Configured() {
		return domain.ErrEmailNotConfigured
	}

	msg := buildConfirmationEmail(event, ticket)
	if err := s.email.Send(ctx, msg); err != nil {
		return &domain.EmailSendError{Err: err}
	}

	return s.orderRepo.SetOrderEmailSent(ctx, orderID, true)
}

// buildConfirmationEmail renders the event's email templates for one
// ticket, falling back to a plain default when the organizer wrote none
func buildConfirmationEmail(event *domain.Event, ticket *domain.Ticket) *gateway.EmailMessage {
	subject := event.EmailSubject
	if subject == "" {
		subject = fmt.Sprintf("Your ticket for %s", event.Title)
	}

	body := event.EmailBody
	html := body != ""
	if body == "" {
		body = "Hi {FirstName},\n\nHere is your ticket for {Title}.\n\nTicket number: {TicketNumber}\nDate: {EventDate}\nLocation: {Location}\n"
	}

	replacer := strings.NewReplacer(
		"{Title}", event.Title,
		"{EventDate}", event.StartDate.Format("Jan 2, 2006 15:04"),
		"{Location}", event.Location,
		"{TicketNumber}", ticket.TicketNumber,
		"{FirstName}", ticket.FirstName,
		"{LastName}", ticket.LastName,
	)

	return &gateway.EmailMessage{
		To:      ticket.Email,
		Subject: replacer.Replace(subject),
		Body:    replacer.Replace(body),
		HTML:    html,
	}
}

func (s *ticketService) requireEvent(ctx context.Context, storeID, eventID string) error {
	event, err := s.eventRepo.GetByID(ctx, storeID, eventID)
	if err != nil {
		return err
	}
	if event == nil {
		return domain.ErrEventNotFound
	}
	return nil
}
