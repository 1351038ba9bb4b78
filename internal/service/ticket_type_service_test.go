package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/simplesats/ticket-sales/internal/domain"
	"github.com/simplesats/ticket-sales/internal/dto"
)

func seedCapEvent(eventRepo *MockEventRepository, capacity *int) {
	eventRepo.events["event-1"] = &domain.Event{
		ID:                   "event-1",
		StoreID:              "store-1",
		Title:                "Lightning Summit",
		StartDate:            time.Now().Add(24 * time.Hour),
		HasMaximumCapacity:   capacity != nil,
		MaximumEventCapacity: capacity,
	}
}

func TestTicketTypeService_CreateTicketType_DefaultInvariant(t *testing.T) {
	ctx := context.Background()
	eventRepo := NewMockEventRepository()
	ttRepo := NewMockTicketTypeRepository()
	svc := NewTicketTypeService(fakeTx{}, eventRepo, ttRepo)
	seedCapEvent(eventRepo, nil)

	// the first tier becomes the default even when not asked to
	first, err := svc.CreateTicketType(ctx, "store-1", "event-1", &dto.CreateTicketTypeRequest{
		Name: "General", Price: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.IsDefault {
		t.Error("first tier must become the default")
	}

	// a second non-default tier leaves the default alone
	second, err := svc.CreateTicketType(ctx, "store-1", "event-1", &dto.CreateTicketTypeRequest{
		Name: "Balcony", Price: 15,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.IsDefault {
		t.Error("second tier must not steal the default")
	}

	// a new default tier displaces the old one
	third, err := svc.CreateTicketType(ctx, "store-1", "event-1", &dto.CreateTicketTypeRequest{
		Name: "VIP", Price: 50, IsDefault: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !third.IsDefault {
		t.Error("requested default must stick")
	}
	if ttRepo.types[first.ID].IsDefault {
		t.Error("old default must be cleared")
	}
}

func TestTicketTypeService_CreateTicketType_FlaggedEventWithoutCeiling(t *testing.T) {
	ctx := context.Background()
	eventRepo := NewMockEventRepository()
	ttRepo := NewMockTicketTypeRepository()
	svc := NewTicketTypeService(fakeTx{}, eventRepo, ttRepo)

	// a row with the capacity flag set but no stored ceiling is treated
	// as unlimited rather than dereferenced
	eventRepo.events["event-1"] = &domain.Event{
		ID:                 "event-1",
		StoreID:            "store-1",
		Title:              "Lightning Summit",
		StartDate:          time.Now().Add(24 * time.Hour),
		HasMaximumCapacity: true,
	}

	tt, err := svc.CreateTicketType(ctx, "store-1", "event-1", &dto.CreateTicketTypeRequest{
		Name: "General", Price: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tt == nil {
		t.Fatal("expected the tier to be created")
	}
}

func TestTicketTypeService_CreateTicketType_Capacity(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		capacity  *int
		existing  int // quantity already allocated to another tier
		quantity  int
		wantErr   bool
		wantField string
	}{
		{
			name:     "no ceiling allows unlimited quantity",
			capacity: nil,
			quantity: 0,
		},
		{
			name:      "ceiling requires positive quantity",
			capacity:  intPtr(100),
			quantity:  0,
			wantErr:   true,
			wantField: "quantity",
		},
		{
			name:     "within remaining seats",
			capacity: intPtr(100),
			existing: 60,
			quantity: 40,
		},
		{
			name:      "over remaining seats",
			capacity:  intPtr(100),
			existing:  60,
			quantity:  41,
			wantErr:   true,
			wantField: "quantity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eventRepo := NewMockEventRepository()
			ttRepo := NewMockTicketTypeRepository()
			svc := NewTicketTypeService(fakeTx{}, eventRepo, ttRepo)
			seedCapEvent(eventRepo, tt.capacity)
			if tt.existing > 0 {
				ttRepo.types["existing"] = &domain.TicketType{
					ID: "existing", EventID: "event-1", Name: "Existing", Quantity: tt.existing, IsDefault: true,
				}
			}

			_, err := svc.CreateTicketType(ctx, "store-1", "event-1", &dto.CreateTicketTypeRequest{
				Name: "General", Price: 10, Quantity: tt.quantity,
			})
			if tt.wantErr {
				var verr *domain.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if verr.Fields[0].Field != tt.wantField {
					t.Errorf("expected field %q, got %q", tt.wantField, verr.Fields[0].Field)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestTicketTypeService_UpdateTicketType_DefaultInvariant(t *testing.T) {
	ctx := context.Background()
	eventRepo := NewMockEventRepository()
	ttRepo := NewMockTicketTypeRepository()
	svc := NewTicketTypeService(fakeTx{}, eventRepo, ttRepo)
	seedCapEvent(eventRepo, nil)

	ttRepo.types["tier-1"] = &domain.TicketType{
		ID: "tier-1", EventID: "event-1", Name: "General", Price: 10, IsDefault: true,
	}
	ttRepo.types["tier-2"] = &domain.TicketType{
		ID: "tier-2", EventID: "event-1", Name: "VIP", Price: 50,
	}

	// clearing the default on the only default tier is forced back
	updated, err := svc.UpdateTicketType(ctx, "store-1", "event-1", "tier-1", &dto.UpdateTicketTypeRequest{
		Name: "General", Price: 10, IsDefault: false,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.IsDefault {
		t.Error("the only default tier cannot lose the flag")
	}

	// setting the default elsewhere clears tier-1 in the same pass
	updated, err = svc.UpdateTicketType(ctx, "store-1", "event-1", "tier-2", &dto.UpdateTicketTypeRequest{
		Name: "VIP", Price: 50, IsDefault: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.IsDefault {
		t.Error("requested default must stick")
	}
	if ttRepo.types["tier-1"].IsDefault {
		t.Error("old default must be cleared")
	}
}

func TestTicketTypeService_DeleteTicketType(t *testing.T) {
	ctx := context.Background()

	t.Run("tier with settled tickets is protected", func(t *testing.T) {
		eventRepo := NewMockEventRepository()
		ttRepo := NewMockTicketTypeRepository()
		svc := NewTicketTypeService(fakeTx{}, eventRepo, ttRepo)
		seedCapEvent(eventRepo, nil)

		ttRepo.types["tier-1"] = &domain.TicketType{ID: "tier-1", EventID: "event-1", Name: "General"}
		ttRepo.settled["tier-1"] = 3

		err := svc.DeleteTicketType(ctx, "store-1", "event-1", "tier-1")
		if !errors.Is(err, domain.ErrTicketTypeHasTickets) {
			t.Fatalf("expected ErrTicketTypeHasTickets, got %v", err)
		}
	})

	t.Run("deleting the default promotes the first remaining tier", func(t *testing.T) {
		eventRepo := NewMockEventRepository()
		ttRepo := NewMockTicketTypeRepository()
		svc := NewTicketTypeService(fakeTx{}, eventRepo, ttRepo)
		seedCapEvent(eventRepo, nil)

		ttRepo.types["tier-1"] = &domain.TicketType{ID: "tier-1", EventID: "event-1", Name: "General", IsDefault: true}
		ttRepo.types["tier-2"] = &domain.TicketType{ID: "tier-2", EventID: "event-1", Name: "Balcony"}
		ttRepo.types["tier-3"] = &domain.TicketType{ID: "tier-3", EventID: "event-1", Name: "VIP"}

		if err := svc.DeleteTicketType(ctx, "store-1", "event-1", "tier-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ttRepo.types["tier-2"].IsDefault {
			t.Error("Balcony sorts first by name and must become the default")
		}
		if ttRepo.types["tier-3"].IsDefault {
			t.Error("VIP must not become the default")
		}
	})

	t.Run("deleting a non-default tier promotes nothing", func(t *testing.T) {
		eventRepo := NewMockEventRepository()
		ttRepo := NewMockTicketTypeRepository()
		svc := NewTicketTypeService(fakeTx{}, eventRepo, ttRepo)
		seedCapEvent(eventRepo, nil)

		ttRepo.types["tier-1"] = &domain.TicketType{ID: "tier-1", EventID: "event-1", Name: "General", IsDefault: true}
		ttRepo.types["tier-2"] = &domain.TicketType{ID: "tier-2", EventID: "event-1", Name: "VIP"}

		if err := svc.DeleteTicketType(ctx, "store-1", "event-1", "tier-2"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ttRepo.types["tier-1"].IsDefault {
			t.Error("the default must be untouched")
		}
	})

	t.Run("missing tier", func(t *testing.T) {
		eventRepo := NewMockEventRepository()
		svc := NewTicketTypeService(fakeTx{}, eventRepo, NewMockTicketTypeRepository())
		seedCapEvent(eventRepo, nil)

		err := svc.DeleteTicketType(ctx, "store-1", "event-1", "nope")
		if !errors.Is(err, domain.ErrTicketTypeNotFound) {
			t.Fatalf("expected ErrTicketTypeNotFound, got %v", err)
		}
	})
}

func TestTicketTypeService_ToggleTicketType(t *testing.T) {
	ctx := context.Background()
	eventRepo := NewMockEventRepository()
	ttRepo := NewMockTicketTypeRepository()
	svc := NewTicketTypeService(fakeTx{}, eventRepo, ttRepo)
	seedCapEvent(eventRepo, nil)

	ttRepo.types["tier-1"] = &domain.TicketType{
		ID: "tier-1", EventID: "event-1", Name: "General", State: domain.StateActive,
	}

	tt, err := svc.ToggleTicketType(ctx, "store-1", "event-1", "tier-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tt.State != domain.StateDisabled {
		t.Errorf("expected disabled, got %q", tt.State)
	}

	tt, err = svc.ToggleTicketType(ctx, "store-1", "event-1", "tier-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tt.State != domain.StateActive {
		t.Errorf("expected active, got %q", tt.State)
	}
}

func TestTicketTypeService_ListTicketTypes_Sorting(t *testing.T) {
	ctx := context.Background()
	eventRepo := NewMockEventRepository()
	ttRepo := NewMockTicketTypeRepository()
	svc := NewTicketTypeService(fakeTx{}, eventRepo, ttRepo)
	seedCapEvent(eventRepo, nil)

	ttRepo.types["tier-1"] = &domain.TicketType{ID: "tier-1", EventID: "event-1", Name: "VIP", Price: 50}
	ttRepo.types["tier-2"] = &domain.TicketType{ID: "tier-2", EventID: "event-1", Name: "General", Price: 10}

	// default sort is name ascending
	types, err := svc.ListTicketTypes(ctx, "store-1", "event-1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(types) != 2 || types[0].Name != "General" {
		t.Errorf("expected General first, got %+v", types)
	}

	types, err = svc.ListTicketTypes(ctx, "store-1", "event-1", &dto.TicketTypeListFilter{SortBy: "price", SortDir: "desc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(types) != 2 || types[0].Name != "VIP" {
		t.Errorf("expected VIP first on price desc, got %+v", types)
	}
}
