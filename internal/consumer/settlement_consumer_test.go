package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/simplesats/ticket-sales/internal/service"
	"github.com/simplesats/ticket-sales/pkg/retry"
)

// MockSettlementService records what it was handed
type MockSettlementService struct {
	recorded []*service.Settlement
	err      error
}

func (m *MockSettlementService) RecordSettlement(ctx context.Context, settlement *service.Settlement) error {
	if m.err != nil {
		return m.err
	}
	m.recorded = append(m.recorded, settlement)
	return nil
}

func testConsumer(settlements service.SettlementService) *SettlementConsumer {
	cfg := DefaultConfig()
	cfg.ProcessRetry = &retry.Config{MaxRetries: 0, InitialInterval: time.Millisecond}
	return &SettlementConsumer{
		settlements: settlements,
		config:      cfg,
		stopCh:      make(chan struct{}),
	}
}

func settledEventJSON(t *testing.T) []byte {
	t.Helper()
	payload, err := json.Marshal(&SettlementEvent{
		EventID:   "evt-1",
		EventType: EventTypeInvoiceSettled,
		Version:   1,
		Invoice: &InvoiceData{
			InvoiceID:   "inv-100",
			Status:      "Settled",
			StoreID:     "store-1",
			EventID:     "event-1",
			Currency:    "USD",
			TotalAmount: 70,
			SettledAt:   time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
			Lines: []InvoiceLine{
				{TicketTypeID: "tier-1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", TxnNumber: "txn-1"},
				{TicketTypeID: "tier-2", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", TxnNumber: "txn-1"},
			},
		},
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return payload
}

func TestProcessRecord(t *testing.T) {
	ctx := context.Background()

	t.Run("settled invoice reaches the service", func(t *testing.T) {
		svc := &MockSettlementService{}
		c := testConsumer(svc)

		if err := c.processRecord(ctx, &kgo.Record{Value: settledEventJSON(t)}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(svc.recorded) != 1 {
			t.Fatalf("expected 1 settlement, got %d", len(svc.recorded))
		}

		s := svc.recorded[0]
		if s.InvoiceID != "inv-100" || s.StoreID != "store-1" || s.EventID != "event-1" {
			t.Errorf("ids mapped wrong: %+v", s)
		}
		if s.TotalAmount != 70 || s.Currency != "USD" || s.InvoiceStatus != "Settled" {
			t.Errorf("invoice fields mapped wrong: %+v", s)
		}
		if len(s.Tickets) != 2 {
			t.Fatalf("expected 2 lines, got %d", len(s.Tickets))
		}
		if s.Tickets[0].TicketTypeID != "tier-1" || s.Tickets[0].Email != "ada@example.com" {
			t.Errorf("line mapped wrong: %+v", s.Tickets[0])
		}
	})

	t.Run("malformed payload is dropped, not retried", func(t *testing.T) {
		svc := &MockSettlementService{}
		c := testConsumer(svc)

		if err := c.processRecord(ctx, &kgo.Record{Value: []byte("not json")}); err != nil {
			t.Fatalf("a poison message must not surface an error, got %v", err)
		}
		if len(svc.recorded) != 0 {
			t.Error("nothing should reach the service")
		}
	})

	t.Run("other event types are ignored", func(t *testing.T) {
		svc := &MockSettlementService{}
		c := testConsumer(svc)

		payload, _ := json.Marshal(&SettlementEvent{EventType: "invoice.created"})
		if err := c.processRecord(ctx, &kgo.Record{Value: payload}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(svc.recorded) != 0 {
			t.Error("nothing should reach the service")
		}
	})

	t.Run("settled event without invoice is dropped", func(t *testing.T) {
		svc := &MockSettlementService{}
		c := testConsumer(svc)

		payload, _ := json.Marshal(&SettlementEvent{EventType: EventTypeInvoiceSettled})
		if err := c.processRecord(ctx, &kgo.Record{Value: payload}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(svc.recorded) != 0 {
			t.Error("nothing should reach the service")
		}
	})

	t.Run("service failure surfaces so the batch is not committed", func(t *testing.T) {
		svc := &MockSettlementService{err: errors.New("db down")}
		c := testConsumer(svc)

		err := c.processRecord(ctx, &kgo.Record{Value: settledEventJSON(t)})
		if err == nil {
			t.Fatal("expected error but got nil")
		}
	})
}
