package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/simplesats/ticket-sales/internal/domain"
	"github.com/simplesats/ticket-sales/internal/dto"
)

func newEventServiceForTest(eventRepo *MockEventRepository, ttRepo *MockTicketTypeRepository, orderRepo *MockOrderRepository, fileStore *MockFileStore) EventService {
	return NewEventService(fakeTx{}, eventRepo, ttRepo, orderRepo, fileStore, &MockStoreGateway{currency: " usd "})
}

func intPtr(i int) *int { return &i }

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()
	future := time.Now().Add(48 * time.Hour)

	tests := []struct {
		name      string
		req       *dto.CreateEventRequest
		wantErr   bool
		wantField string
	}{
		{
			name: "valid request",
			req: &dto.CreateEventRequest{
				StoreID:   "store-1",
				Title:     "Lightning Summit",
				EventType: "physical",
				StartDate: future,
			},
		},
		{
			name: "missing title",
			req: &dto.CreateEventRequest{
				StoreID:   "store-1",
				EventType: "physical",
				StartDate: future,
			},
			wantErr:   true,
			wantField: "title",
		},
		{
			name: "start date in the past",
			req: &dto.CreateEventRequest{
				StoreID:   "store-1",
				Title:     "Lightning Summit",
				EventType: "physical",
				StartDate: time.Now().Add(-time.Hour),
			},
			wantErr:   true,
			wantField: "start_date",
		},
		{
			name: "unknown event type",
			req: &dto.CreateEventRequest{
				StoreID:   "store-1",
				Title:     "Lightning Summit",
				EventType: "hybrid",
				StartDate: future,
			},
			wantErr:   true,
			wantField: "event_type",
		},
		{
			name: "capacity flag without a positive ceiling",
			req: &dto.CreateEventRequest{
				StoreID:            "store-1",
				Title:              "Lightning Summit",
				EventType:          "physical",
				StartDate:          future,
				HasMaximumCapacity: true,
			},
			wantErr:   true,
			wantField: "maximum_event_capacity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newEventServiceForTest(NewMockEventRepository(), NewMockTicketTypeRepository(), NewMockOrderRepository(), NewMockFileStore())

			event, err := svc.CreateEvent(ctx, tt.req)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got nil")
				}
				var verr *domain.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("expected validation error, got %v", err)
				}
				if tt.wantField != "" && verr.Fields[0].Field != tt.wantField {
					t.Errorf("expected field %q, got %q", tt.wantField, verr.Fields[0].Field)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if event.State != domain.StateDisabled {
				t.Errorf("new event should start disabled, got %q", event.State)
			}
		})
	}
}

func TestEventService_CreateEvent_CurrencyDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newEventServiceForTest(NewMockEventRepository(), NewMockTicketTypeRepository(), NewMockOrderRepository(), NewMockFileStore())

	// no currency in the request: store default, trimmed and uppercased
	event, err := svc.CreateEvent(ctx, &dto.CreateEventRequest{
		StoreID:   "store-1",
		Title:     "Lightning Summit",
		EventType: "virtual",
		StartDate: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Currency != "USD" {
		t.Errorf("expected store default USD, got %q", event.Currency)
	}

	// explicit currency wins over the store default
	event, err = svc.CreateEvent(ctx, &dto.CreateEventRequest{
		StoreID:   "store-1",
		Title:     "Lightning Summit",
		EventType: "virtual",
		StartDate: time.Now().Add(24 * time.Hour),
		Currency:  " eur ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.Currency != "EUR" {
		t.Errorf("expected EUR, got %q", event.Currency)
	}
}

func TestEventService_CreateEvent_CapacityDroppedWhenFlagOff(t *testing.T) {
	ctx := context.Background()
	svc := newEventServiceForTest(NewMockEventRepository(), NewMockTicketTypeRepository(), NewMockOrderRepository(), NewMockFileStore())

	event, err := svc.CreateEvent(ctx, &dto.CreateEventRequest{
		StoreID:              "store-1",
		Title:                "Lightning Summit",
		EventType:            "physical",
		StartDate:            time.Now().Add(24 * time.Hour),
		HasMaximumCapacity:   false,
		MaximumEventCapacity: intPtr(100),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.MaximumEventCapacity != nil {
		t.Error("capacity value should be dropped when the flag is off")
	}
}

func TestEventService_UpdateEvent_CapacityBelowAllocation(t *testing.T) {
	ctx := context.Background()
	eventRepo := NewMockEventRepository()
	ttRepo := NewMockTicketTypeRepository()
	svc := newEventServiceForTest(eventRepo, ttRepo, NewMockOrderRepository(), NewMockFileStore())

	eventRepo.events["event-1"] = &domain.Event{
		ID:        "event-1",
		StoreID:   "store-1",
		Title:     "Lightning Summit",
		EventType: domain.EventTypePhysical,
		StartDate: time.Now().Add(24 * time.Hour),
		Currency:  "USD",
		State:     domain.StateDisabled,
	}
	ttRepo.types["tier-1"] = &domain.TicketType{
		ID: "tier-1", EventID: "event-1", Name: "General", Price: 10, Quantity: 80, IsDefault: true,
	}

	_, err := svc.UpdateEvent(ctx, "store-1", "event-1", &dto.UpdateEventRequest{
		Title:                "Lightning Summit",
		StartDate:            time.Now().Add(24 * time.Hour),
		HasMaximumCapacity:   true,
		MaximumEventCapacity: intPtr(50),
	})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Fields[0].Field != "maximum_event_capacity" {
		t.Errorf("expected maximum_event_capacity failure, got %q", verr.Fields[0].Field)
	}

	// a ceiling at or above the allocation is fine
	updated, err := svc.UpdateEvent(ctx, "store-1", "event-1", &dto.UpdateEventRequest{
		Title:                "Lightning Summit",
		StartDate:            time.Now().Add(24 * time.Hour),
		HasMaximumCapacity:   true,
		MaximumEventCapacity: intPtr(80),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.MaximumEventCapacity == nil || *updated.MaximumEventCapacity != 80 {
		t.Error("expected the ceiling to be stored")
	}
}

func TestEventService_UpdateEvent_LogoTriState(t *testing.T) {
	ctx := context.Background()
	eventRepo := NewMockEventRepository()
	svc := newEventServiceForTest(eventRepo, NewMockTicketTypeRepository(), NewMockOrderRepository(), NewMockFileStore())

	base := &dto.UpdateEventRequest{
		Title:     "Lightning Summit",
		StartDate: time.Now().Add(24 * time.Hour),
	}

	eventRepo.events["event-1"] = &domain.Event{
		ID: "event-1", StoreID: "store-1", Title: "Lightning Summit",
		EventType: domain.EventTypePhysical, StartDate: time.Now().Add(24 * time.Hour),
		Currency: "USD", LogoFileID: "logo-old",
	}

	// absent keeps the current logo
	updated, err := svc.UpdateEvent(ctx, "store-1", "event-1", base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.LogoFileID != "logo-old" {
		t.Errorf("absent logo_file_id should keep the logo, got %q", updated.LogoFileID)
	}

	// empty string clears it
	empty := ""
	req := *base
	req.LogoFileID = &empty
	updated, err = svc.UpdateEvent(ctx, "store-1", "event-1", &req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.LogoFileID != "" {
		t.Errorf("empty logo_file_id should clear the logo, got %q", updated.LogoFileID)
	}
}

func TestEventService_ToggleEvent(t *testing.T) {
	ctx := context.Background()
	eventRepo := NewMockEventRepository()
	ttRepo := NewMockTicketTypeRepository()
	svc := newEventServiceForTest(eventRepo, ttRepo, NewMockOrderRepository(), NewMockFileStore())

	eventRepo.events["event-1"] = &domain.Event{
		ID: "event-1", StoreID: "store-1", State: domain.StateDisabled,
	}

	// enabling without a single tier is refused
	_, err := svc.ToggleEvent(ctx, "store-1", "event-1")
	if !errors.Is(err, domain.ErrNoTicketTypes) {
		t.Fatalf("expected ErrNoTicketTypes, got %v", err)
	}

	ttRepo.types["tier-1"] = &domain.TicketType{ID: "tier-1", EventID: "event-1", Name: "General"}

	event, err := svc.ToggleEvent(ctx, "store-1", "event-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.State != domain.StateActive {
		t.Errorf("expected active, got %q", event.State)
	}

	// disabling needs no precondition
	event, err = svc.ToggleEvent(ctx, "store-1", "event-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if event.State != domain.StateDisabled {
		t.Errorf("expected disabled, got %q", event.State)
	}
}

func TestEventService_DeleteEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("upcoming event with tickets is protected", func(t *testing.T) {
		eventRepo := NewMockEventRepository()
		orderRepo := NewMockOrderRepository()
		svc := newEventServiceForTest(eventRepo, NewMockTicketTypeRepository(), orderRepo, NewMockFileStore())

		eventRepo.events["event-1"] = &domain.Event{
			ID: "event-1", StoreID: "store-1", StartDate: time.Now().Add(24 * time.Hour),
		}
		orderRepo.tickets["ticket-1"] = &domain.Ticket{
			ID: "ticket-1", EventID: "event-1", PaymentStatus: domain.StatusSettled,
		}

		err := svc.DeleteEvent(ctx, "store-1", "event-1")
		if !errors.Is(err, domain.ErrEventHasActiveTickets) {
			t.Fatalf("expected ErrEventHasActiveTickets, got %v", err)
		}
	})

	t.Run("past event deletes with its tiers and tickets", func(t *testing.T) {
		eventRepo := NewMockEventRepository()
		ttRepo := NewMockTicketTypeRepository()
		orderRepo := NewMockOrderRepository()
		fileStore := NewMockFileStore()
		svc := newEventServiceForTest(eventRepo, ttRepo, orderRepo, fileStore)

		eventRepo.events["event-1"] = &domain.Event{
			ID: "event-1", StoreID: "store-1", StartDate: time.Now().Add(-24 * time.Hour),
			LogoFileID: "logo-1",
		}
		ttRepo.types["tier-1"] = &domain.TicketType{ID: "tier-1", EventID: "event-1", Name: "General"}
		orderRepo.orders["order-1"] = &domain.Order{ID: "order-1", EventID: "event-1"}
		orderRepo.tickets["ticket-1"] = &domain.Ticket{ID: "ticket-1", EventID: "event-1", OrderID: "order-1"}

		if err := svc.DeleteEvent(ctx, "store-1", "event-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(eventRepo.events) != 0 || len(ttRepo.types) != 0 || len(orderRepo.tickets) != 0 {
			t.Error("expected event, tiers and tickets to be gone")
		}
		if len(fileStore.deleted) != 1 || fileStore.deleted[0] != "logo-1" {
			t.Errorf("expected the logo to be deleted, got %v", fileStore.deleted)
		}
	})

	t.Run("missing event", func(t *testing.T) {
		svc := newEventServiceForTest(NewMockEventRepository(), NewMockTicketTypeRepository(), NewMockOrderRepository(), NewMockFileStore())
		err := svc.DeleteEvent(ctx, "store-1", "nope")
		if !errors.Is(err, domain.ErrEventNotFound) {
			t.Fatalf("expected ErrEventNotFound, got %v", err)
		}
	})
}

func TestEventService_GetEvent_WrongStore(t *testing.T) {
	ctx := context.Background()
	eventRepo := NewMockEventRepository()
	svc := newEventServiceForTest(eventRepo, NewMockTicketTypeRepository(), NewMockOrderRepository(), NewMockFileStore())

	eventRepo.events["event-1"] = &domain.Event{ID: "event-1", StoreID: "store-1"}

	if _, err := svc.GetEvent(ctx, "store-2", "event-1"); !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("another store's event must look missing, got %v", err)
	}
}
