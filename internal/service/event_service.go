package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simplesats/ticket-sales/internal/domain"
	"github.com/simplesats/ticket-sales/internal/dto"
	"github.com/simplesats/ticket-sales/internal/gateway"
	"github.com/simplesats/ticket-sales/internal/repository"
	"github.com/simplesats/ticket-sales/pkg/logger"
)

// eventService implements EventService
type eventService struct {
	tx             repository.TxManager
	eventRepo      repository.EventRepository
	ticketTypeRepo repository.TicketTypeRepository
	orderRepo      repository.OrderRepository
	fileStore      gateway.FileStore
	stores         gateway.StoreGateway
}

// NewEventService creates a new EventService
func NewEventService(
	tx repository.TxManager,
	eventRepo repository.EventRepository,
	ticketTypeRepo repository.TicketTypeRepository,
	orderRepo repository.OrderRepository,
	fileStore gateway.FileStore,
	stores gateway.StoreGateway,
) EventService {
	return &eventService{
		tx:             tx,
		eventRepo:      eventRepo,
		ticketTypeRepo: ticketTypeRepo,
		orderRepo:      orderRepo,
		fileStore:      fileStore,
		stores:         stores,
	}
}

// ListEvents lists a store's events, optionally filtered on whether
// they already started
func (s *eventService) ListEvents(ctx context.Context, storeID string, filter *dto.EventListFilter) ([]*domain.Event, error) {
	var expired *bool
	if filter != nil {
		expired = filter.Expired
	}
	return s.eventRepo.List(ctx, storeID, expired)
}

// GetEvent retrieves one event with its live settled-ticket count
func (s *eventService) GetEvent(ctx context.Context, storeID, eventID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, storeID, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}
	return event, nil
}

// CreateEvent creates a new event. New events always start disabled so
// they never sell before tiers exist.
func (s *eventService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*domain.Event, error) {
	if verr := req.Validate(); verr != nil {
		return nil, verr
	}

	currency, err := s.resolveCurrency(ctx, req.StoreID, req.Currency)
	if err != nil {
		return nil, err
	}

	eventType, err := domain.ParseEventType(req.EventType)
	if err != nil {
		return nil, domain.Validation("event_type", "must be virtual or physical")
	}

	event := &domain.Event{
		ID:                   uuid.New().String(),
		StoreID:              req.StoreID,
		Title:                req.Title,
		Description:          req.Description,
		Location:             req.Location,
		EventType:            eventType,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		Currency:             currency,
		RedirectURL:          req.RedirectURL,
		EmailSubject:         req.EmailSubject,
		EmailBody:            req.EmailBody,
		HasMaximumCapacity:   req.HasMaximumCapacity,
		MaximumEventCapacity: req.MaximumEventCapacity,
		State:                domain.StateDisabled,
		CreatedAt:            time.Now().UTC(),
	}
	if !event.HasMaximumCapacity {
		event.MaximumEventCapacity = nil
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// UpdateEvent overwrites an event's mutable fields. Runs under the
// event row lock so a capacity shrink can't race a tier creation.
func (s *eventService) UpdateEvent(ctx context.Context, storeID, eventID string, req *dto.UpdateEventRequest) (*domain.Event, error) {
	if verr := req.Validate(); verr != nil {
		return nil, verr
	}

	var updated *domain.Event
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetForUpdate(ctx, storeID, eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}

		if req.HasMaximumCapacity {
			allocated, err := s.ticketTypeRepo.SumQuantities(ctx, eventID, "")
			if err != nil {
				return err
			}
			if *req.MaximumEventCapacity < allocated {
				return domain.Validation("maximum_event_capacity",
					fmt.Sprintf("must not be below the %d seats already allocated to ticket types", allocated))
			}
		}

		event.Title = req.Title
		event.Description = req.Description
		event.Location = req.Location
		event.StartDate = req.StartDate
		event.EndDate = req.EndDate
		event.RedirectURL = req.RedirectURL
		event.EmailSubject = req.EmailSubject
		event.EmailBody = req.EmailBody
		event.HasMaximumCapacity = req.HasMaximumCapacity
		if req.HasMaximumCapacity {
			event.MaximumEventCapacity = req.MaximumEventCapacity
		} else {
			event.MaximumEventCapacity = nil
		}
		if req.EventType != "" {
			eventType, err := domain.ParseEventType(req.EventType)
			if err != nil {
				return domain.Validation("event_type", "must be virtual or physical")
			}
			event.EventType = eventType
		}
		if strings.TrimSpace(req.Currency) != "" {
			event.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
		}
		if req.LogoFileID != nil {
			event.LogoFileID = *req.LogoFileID
		}

		if err := s.eventRepo.Update(ctx, event); err != nil {
			return err
		}
		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteEvent removes the event with its tiers and tickets. An upcoming
// event that already sold tickets cannot be deleted.
func (s *eventService) DeleteEvent(ctx context.Context, storeID, eventID string) error {
	var logoFileID string
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetForUpdate(ctx, storeID, eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}
		logoFileID = event.LogoFileID

		ticketCount, err := s.orderRepo.CountTicketsByEvent(ctx, eventID)
		if err != nil {
			return err
		}
		if ticketCount > 0 && event.StartDate.After(time.Now()) {
			return domain.ErrEventHasActiveTickets
		}

		if err := s.orderRepo.DeleteByEvent(ctx, eventID); err != nil {
			return err
		}
		if err := s.ticketTypeRepo.DeleteByEvent(ctx, eventID); err != nil {
			return err
		}
		return s.eventRepo.Delete(ctx, storeID, eventID)
	})
	if err != nil {
		return err
	}

	if logoFileID != "" {
		if err := s.fileStore.Delete(ctx, logoFileID); err != nil {
			logger.Get().Warn("failed to delete event logo",
				zap.String("event_id", eventID), zap.Error(err))
		}
	}
	return nil
}

// ToggleEvent flips the event state. Enabling requires at least one
// ticket type so an active event is always sellable.
func (s *eventService) ToggleEvent(ctx context.Context, storeID, eventID string) (*domain.Event, error) {
	var updated *domain.Event
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetForUpdate(ctx, storeID, eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}

		next := domain.StateDisabled
		if event.State == domain.StateDisabled {
			count, err := s.ticketTypeRepo.CountByEvent(ctx, eventID)
			if err != nil {
				return err
			}
			if count == 0 {
				return domain.ErrNoTicketTypes
			}
			next = domain.StateActive
		}

		if err := s.eventRepo.UpdateState(ctx, storeID, eventID, next); err != nil {
			return err
		}
		event.State = next
		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UploadLogo stores a new logo and points the event at it
func (s *eventService) UploadLogo(ctx context.Context, storeID, eventID, filename string, content io.Reader) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, storeID, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}

	fileID, err := s.fileStore.Save(ctx, filename, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLogoUploadFailed, err)
	}

	if err := s.eventRepo.SetLogoFileID(ctx, storeID, eventID, fileID); err != nil {
		return nil, err
	}

	if event.LogoFileID != "" && event.LogoFileID != fileID {
		if err := s.fileStore.Delete(ctx, event.LogoFileID); err != nil {
			logger.Get().Warn("failed to delete replaced logo",
				zap.String("event_id", eventID), zap.Error(err))
		}
	}
	event.LogoFileID = fileID
	return event, nil
}

// ClearLogo detaches and removes the event's logo
func (s *eventService) ClearLogo(ctx context.Context, storeID, eventID string) error {
	event, err := s.eventRepo.GetByID(ctx, storeID, eventID)
	if err != nil {
		return err
	}
	if event == nil {
		return domain.ErrEventNotFound
	}
	if event.LogoFileID == "" {
		return nil
	}

	if err := s.eventRepo.SetLogoFileID(ctx, storeID, eventID, ""); err != nil {
		return err
	}
	if err := s.fileStore.Delete(ctx, event.LogoFileID); err != nil {
		logger.Get().Warn("failed to delete cleared logo",
			zap.String("event_id", eventID), zap.Error(err))
	}
	return nil
}

func (s *eventService) resolveCurrency(ctx context.Context, storeID, requested string) (string, error) {
	currency := strings.ToUpper(strings.TrimSpace(requested))
	if currency != "" {
		return currency, nil
	}
	currency, err := s.stores.DefaultCurrency(ctx, storeID)
	if err != nil {
		return "", err
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	return currency, nil
}
