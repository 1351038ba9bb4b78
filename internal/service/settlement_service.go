package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v3"
	"go.uber.org/zap"

	"github.com/simplesats/ticket-sales/internal/domain"
	"github.com/simplesats/ticket-sales/internal/repository"
	"github.com/simplesats/ticket-sales/pkg/logger"
)

// settlementService implements SettlementService
type settlementService struct {
	tx             repository.TxManager
	eventRepo      repository.EventRepository
	ticketTypeRepo repository.TicketTypeRepository
	orderRepo      repository.OrderRepository
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	tx repository.TxManager,
	eventRepo repository.EventRepository,
	ticketTypeRepo repository.TicketTypeRepository,
	orderRepo repository.OrderRepository,
) SettlementService {
	return &settlementService{
		tx:             tx,
		eventRepo:      eventRepo,
		ticketTypeRepo: ticketTypeRepo,
		orderRepo:      orderRepo,
	}
}

// RecordSettlement turns a settled invoice into one order row plus one
// ticket per line item, snapshotting tier name and price. Replays of
// the same invoice id are no-ops.
func (s *settlementService) RecordSettlement(ctx context.Context, settlement *Settlement) error {
	if settlement.InvoiceID == "" {
		return errors.New("settlement is missing an invoice id")
	}
	if settlement.StoreID == "" || settlement.EventID == "" {
		return errors.New("settlement is missing store or event id")
	}
	if len(settlement.Tickets) == 0 {
		return errors.New("settlement has no ticket lines")
	}

	existing, err := s.orderRepo.GetOrderByInvoiceID(ctx, settlement.StoreID, settlement.InvoiceID)
	if err != nil {
		return err
	}
	if existing != nil {
		logger.Get().Debug("settlement already recorded",
			zap.String("invoice_id", settlement.InvoiceID))
		return nil
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetForUpdate(ctx, settlement.StoreID, settlement.EventID)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}

		currency := settlement.Currency
		if currency == "" {
			currency = event.Currency
		}

		now := time.Now().UTC()
		purchaseDate := settlement.PurchaseDate
		if purchaseDate.IsZero() {
			purchaseDate = now
		}

		order := &domain.Order{
			ID:            uuid.New().String(),
			StoreID:       settlement.StoreID,
			EventID:       settlement.EventID,
			Currency:      currency,
			InvoiceID:     settlement.InvoiceID,
			PaymentStatus: domain.StatusSettled,
			InvoiceStatus: settlement.InvoiceStatus,
			PurchaseDate:  purchaseDate,
			CreatedAt:     now,
		}

		var total float64
		sold := make(map[string]int)
		for _, line := range settlement.Tickets {
			tt, err := s.ticketTypeRepo.GetByID(ctx, settlement.EventID, line.TicketTypeID)
			if err != nil {
				return err
			}
			if tt == nil {
				return fmt.Errorf("%w: %s", domain.ErrTicketTypeNotFound, line.TicketTypeID)
			}

			// the invoice already settled upstream, so an oversold tier is
			// recorded anyway and flagged for the organizer
			if tt.Quantity > 0 {
				if _, ok := sold[tt.ID]; !ok {
					n, err := s.ticketTypeRepo.SettledTicketCount(ctx, tt.ID)
					if err != nil {
						return err
					}
					sold[tt.ID] = n
				}
				sold[tt.ID]++
				if sold[tt.ID] > tt.Quantity {
					logger.Get().Warn("settlement oversells ticket type",
						zap.String("invoice_id", settlement.InvoiceID),
						zap.String("ticket_type_id", tt.ID),
						zap.Int("quantity", tt.Quantity),
						zap.Int("settled", sold[tt.ID]))
				}
			}

			number, err := s.newTicketNumber(ctx, settlement.EventID)
			if err != nil {
				return err
			}

			order.Tickets = append(order.Tickets, &domain.Ticket{
				ID:             uuid.New().String(),
				StoreID:        settlement.StoreID,
				EventID:        settlement.EventID,
				OrderID:        order.ID,
				TicketTypeID:   tt.ID,
				TicketTypeName: tt.Name,
				Amount:         tt.Price,
				Currency:       currency,
				FirstName:      line.FirstName,
				LastName:       line.LastName,
				Email:          line.Email,
				TicketNumber:   number,
				TxnNumber:      line.TxnNumber,
				PaymentStatus:  domain.StatusSettled,
				PurchaseDate:   purchaseDate,
				CreatedAt:      now,
			})
			total += tt.Price
		}

		order.TotalAmount = settlement.TotalAmount
		if order.TotalAmount == 0 {
			order.TotalAmount = total
		}

		return s.orderRepo.CreateOrder(ctx, order)
	})
	if err != nil {
		// two consumers racing on the same invoice: the unique index on
		// invoice_id lets exactly one insert win
		if repository.IsUniqueViolation(err) {
			logger.Get().Debug("settlement raced a duplicate",
				zap.String("invoice_id", settlement.InvoiceID))
			return nil
		}
		return err
	}

	logger.Get().Info("settlement recorded",
		zap.String("invoice_id", settlement.InvoiceID),
		zap.String("event_id", settlement.EventID),
		zap.Int("tickets", len(settlement.Tickets)))
	return nil
}

// newTicketNumber draws short ids until one is free within the event
func (s *settlementService) newTicketNumber(ctx context.Context, eventID string) (string, error) {
	for i := 0; i < 5; i++ {
		number := shortuuid.New()
		taken, err := s.orderRepo.TicketNumberExists(ctx, eventID, number)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
	}
	return "", errors.New("could not allocate a unique ticket number")
}
