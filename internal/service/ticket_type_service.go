package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/simplesats/ticket-sales/internal/domain"
	"github.com/simplesats/ticket-sales/internal/dto"
	"github.com/simplesats/ticket-sales/internal/repository"
)

// ticketTypeService implements TicketTypeService
type ticketTypeService struct {
	tx             repository.TxManager
	eventRepo      repository.EventRepository
	ticketTypeRepo repository.TicketTypeRepository
}

// NewTicketTypeService creates a new TicketTypeService
func NewTicketTypeService(
	tx repository.TxManager,
	eventRepo repository.EventRepository,
	ticketTypeRepo repository.TicketTypeRepository,
) TicketTypeService {
	return &ticketTypeService{
		tx:             tx,
		eventRepo:      eventRepo,
		ticketTypeRepo: ticketTypeRepo,
	}
}

// ListTicketTypes lists an event's tiers with live sold counts
func (s *ticketTypeService) ListTicketTypes(ctx context.Context, storeID, eventID string, filter *dto.TicketTypeListFilter) ([]*domain.TicketType, error) {
	if err := s.requireEvent(ctx, storeID, eventID); err != nil {
		return nil, err
	}

	sort := dto.TicketTypeListFilter{}
	if filter != nil {
		sort = *filter
	}
	sort.Normalize()

	return s.ticketTypeRepo.List(ctx, eventID, repository.TicketTypeSort{By: sort.SortBy, Dir: sort.SortDir})
}

// GetTicketType retrieves one tier
func (s *ticketTypeService) GetTicketType(ctx context.Context, storeID, eventID, id string) (*domain.TicketType, error) {
	if err := s.requireEvent(ctx, storeID, eventID); err != nil {
		return nil, err
	}

	tt, err := s.ticketTypeRepo.GetByID(ctx, eventID, id)
	if err != nil {
		return nil, err
	}
	if tt == nil {
		return nil, domain.ErrTicketTypeNotFound
	}
	return tt, nil
}

// CreateTicketType creates a tier under the event row lock so two
// concurrent creations can't both pass the capacity check
func (s *ticketTypeService) CreateTicketType(ctx context.Context, storeID, eventID string, req *dto.CreateTicketTypeRequest) (*domain.TicketType, error) {
	if verr := req.Validate(); verr != nil {
		return nil, verr
	}

	var created *domain.TicketType
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetForUpdate(ctx, storeID, eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}

		if err := s.checkCapacity(ctx, event, req.Quantity, ""); err != nil {
			return err
		}

		isDefault := req.IsDefault
		hasDefault, err := s.ticketTypeRepo.HasDefault(ctx, eventID)
		if err != nil {
			return err
		}
		if isDefault && hasDefault {
			if err := s.ticketTypeRepo.ClearDefault(ctx, eventID, ""); err != nil {
				return err
			}
		}
		// the event must never end up without a default tier
		if !isDefault && !hasDefault {
			isDefault = true
		}

		tt := &domain.TicketType{
			ID:          uuid.New().String(),
			EventID:     eventID,
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Quantity:    req.Quantity,
			IsDefault:   isDefault,
			State:       domain.StateActive,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.ticketTypeRepo.Create(ctx, tt); err != nil {
			return err
		}
		created = tt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateTicketType updates a tier under the event row lock. Clearing
// the default on the only default tier is forced back; setting it
// clears any other default in the same transaction.
func (s *ticketTypeService) UpdateTicketType(ctx context.Context, storeID, eventID, id string, req *dto.UpdateTicketTypeRequest) (*domain.TicketType, error) {
	if verr := req.Validate(); verr != nil {
		return nil, verr
	}

	var updated *domain.TicketType
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetForUpdate(ctx, storeID, eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}

		tt, err := s.ticketTypeRepo.GetByID(ctx, eventID, id)
		if err != nil {
			return err
		}
		if tt == nil {
			return domain.ErrTicketTypeNotFound
		}

		if err := s.checkCapacity(ctx, event, req.Quantity, id); err != nil {
			return err
		}

		isDefault := req.IsDefault
		if isDefault {
			if err := s.ticketTypeRepo.ClearDefault(ctx, eventID, id); err != nil {
				return err
			}
		} else if tt.IsDefault {
			// this tier is the default; clearing it would leave none
			isDefault = true
		}

		tt.Name = req.Name
		tt.Description = req.Description
		tt.Price = req.Price
		tt.Quantity = req.Quantity
		tt.IsDefault = isDefault

		if err := s.ticketTypeRepo.Update(ctx, tt); err != nil {
			return err
		}
		updated = tt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTicketType removes a tier. Tiers with settled tickets are kept
// so the ledger stays explainable; deleting the default promotes the
// first remaining tier.
func (s *ticketTypeService) DeleteTicketType(ctx context.Context, storeID, eventID, id string) error {
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetForUpdate(ctx, storeID, eventID)
		if err != nil {
			return err
		}
		if event == nil {
			return domain.ErrEventNotFound
		}

		tt, err := s.ticketTypeRepo.GetByID(ctx, eventID, id)
		if err != nil {
			return err
		}
		if tt == nil {
			return domain.ErrTicketTypeNotFound
		}

		sold, err := s.ticketTypeRepo.SettledTicketCount(ctx, id)
		if err != nil {
			return err
		}
		if sold > 0 {
			return domain.ErrTicketTypeHasTickets
		}

		if err := s.ticketTypeRepo.Delete(ctx, eventID, id); err != nil {
			return err
		}
		if tt.IsDefault {
			return s.ticketTypeRepo.PromoteFirstToDefault(ctx, eventID)
		}
		return nil
	})
}

// ToggleTicketType flips the tier state
func (s *ticketTypeService) ToggleTicketType(ctx context.Context, storeID, eventID, id string) (*domain.TicketType, error) {
	if err := s.requireEvent(ctx, storeID, eventID); err != nil {
		return nil, err
	}

	tt, err := s.ticketTypeRepo.GetByID(ctx, eventID, id)
	if err != nil {
		return nil, err
	}
	if tt == nil {
		return nil, domain.ErrTicketTypeNotFound
	}

	next := domain.StateActive
	if tt.State == domain.StateActive {
		next = domain.StateDisabled
	}
	if err := s.ticketTypeRepo.UpdateState(ctx, eventID, id, next); err != nil {
		return nil, err
	}
	tt.State = next
	return tt, nil
}

// checkCapacity enforces the tier quantity rules against the event
// ceiling. Must run while the event row is locked.
func (s *ticketTypeService) checkCapacity(ctx context.Context, event *domain.Event, quantity int, excludeID string) error {
	// a flagged event without a stored ceiling is treated as unlimited
	if !event.HasMaximumCapacity || event.MaximumEventCapacity == nil {
		// non-positive quantity means unlimited when no ceiling is set
		return nil
	}
	if quantity <= 0 {
		return domain.Validation("quantity", "must be positive when the event has a maximum capacity")
	}

	allocated, err := s.ticketTypeRepo.SumQuantities(ctx, event.ID, excludeID)
	if err != nil {
		return err
	}
	remaining := *event.MaximumEventCapacity - allocated
	if quantity > remaining {
		return domain.Validation("quantity",
			fmt.Sprintf("exceeds the event capacity; only %d seats remain unallocated", remaining))
	}
	return nil
}

func (s *ticketTypeService) requireEvent(ctx context.Context, storeID, eventID string) error {
	event, err := s.eventRepo.GetByID(ctx, storeID, eventID)
	if err != nil {
		return err
	}
	if event == nil {
		return domain.ErrEventNotFound
	}
	return nil
}
