package service

import (
	"context"

	"github.com/simplesats/ticket-sales/internal/domain"
	"github.com/simplesats/ticket-sales/internal/repository"
)

// checkinService implements CheckinService
type checkinService struct {
	eventRepo repository.EventRepository
	orderRepo repository.OrderRepository
}

// NewCheckinService creates a new CheckinService
func NewCheckinService(
	eventRepo repository.EventRepository,
	orderRepo repository.OrderRepository,
) CheckinService {
	return &checkinService{
		eventRepo: eventRepo,
		orderRepo: orderRepo,
	}
}

// Checkin marks a ticket as used. A missing or unsettled ticket and a
// repeat scan all come back as failed results, not errors: the scanner
// at the door needs a message, not a stack trace.
func (s *checkinService) Checkin(ctx context.Context, storeID, eventID, ticketNumber string) (*domain.CheckinResult, error) {
	event, err := s.eventRepo.GetByID(ctx, storeID, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}

	ticket, err := s.orderRepo.GetTicketByNumber(ctx, storeID, eventID, ticketNumber)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return &domain.CheckinResult{
			ErrorMessage: "Ticket not found for this event",
		}, nil
	}
	if !ticket.IsSettled() {
		return &domain.CheckinResult{
			ErrorMessage: "Ticket payment has not settled",
			Ticket:       ticket,
		}, nil
	}

	// atomic set-once: of two racing scans exactly one flips used_at
	checkedIn, err := s.orderRepo.CheckinTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	if !checkedIn {
		return &domain.CheckinResult{
			ErrorMessage: "Ticket has already been used",
			Ticket:       ticket,
		}, nil
	}

	// re-read so the result carries the recorded timestamp. The check-in
	// already committed, so a failed re-read falls back to the pre-read
	// ticket instead of reporting an error for a successful scan.
	if updated, err := s.orderRepo.GetTicketByNumber(ctx, storeID, eventID, ticketNumber); err == nil && updated != nil {
		ticket = updated
	}
	return &domain.CheckinResult{
		Success: true,
		Ticket:  ticket,
	}, nil
}
