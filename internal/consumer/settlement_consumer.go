package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/simplesats/ticket-sales/internal/service"
	"github.com/simplesats/ticket-sales/pkg/logger"
	"github.com/simplesats/ticket-sales/pkg/retry"
)

// Config contains settlement consumer configuration
type Config struct {
	Brokers        []string
	GroupID        string
	ClientID       string
	Topic          string
	ProcessRetry   *retry.Config
	PollTimeout    time.Duration
	ProcessTimeout time.Duration
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Brokers:        []string{"localhost:9092"},
		GroupID:        "ticket-sales",
		ClientID:       "ticket-sales",
		Topic:          EventTypeInvoiceSettled,
		ProcessRetry:   retry.DefaultConfig(),
		PollTimeout:    5 * time.Second,
		ProcessTimeout: 30 * time.Second,
	}
}

// SettlementConsumer consumes settled invoices and hands them to the
// settlement service. Offsets are committed only after the batch is
// recorded, so a crash replays instead of losing invoices; replay is
// safe because settlement intake is idempotent on the invoice id.
type SettlementConsumer struct {
	client      *kgo.Client
	settlements service.SettlementService
	config      *Config

	wg      sync.WaitGroup
	stopCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewSettlementConsumer creates a new SettlementConsumer
func NewSettlementConsumer(cfg *Config, settlements service.SettlementService) (*SettlementConsumer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(cfg.GroupID),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ClientID(cfg.ClientID),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	return &SettlementConsumer{
		client:      client,
		settlements: settlements,
		config:      cfg,
		stopCh:      make(chan struct{}),
	}, nil
}

// Start begins consuming in the background
func (c *SettlementConsumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("consumer is already running")
	}
	c.running = true
	c.mu.Unlock()

	logger.Get().Info("starting settlement consumer",
		zap.Strings("brokers", c.config.Brokers),
		zap.String("topic", c.config.Topic),
		zap.String("group", c.config.GroupID))

	c.wg.Add(1)
	go c.run(ctx)
	return nil
}

func (c *SettlementConsumer) run(ctx context.Context) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		default:
		}

		pollCtx, cancel := context.WithTimeout(ctx, c.config.PollTimeout)
		fetches := c.client.PollFetches(pollCtx)
		cancel()

		if fetches.IsClientClosed() || ctx.Err() != nil {
			return
		}
		if errs := fetches.Errors(); len(errs) > 0 {
			for _, fe := range errs {
				if fe.Err == context.DeadlineExceeded || fe.Err == context.Canceled {
					continue
				}
				logger.Get().Error("settlement fetch error",
					zap.String("topic", fe.Topic), zap.Error(fe.Err))
			}
		}

		failed := false
		fetches.EachRecord(func(record *kgo.Record) {
			if failed {
				return
			}
			if err := c.processRecord(ctx, record); err != nil {
				logger.Get().Error("failed to process settlement record",
					zap.Int64("offset", record.Offset), zap.Error(err))
				failed = true
			}
		})

		// commit only clean batches; a failed batch is re-fetched and
		// replayed from the last committed offset
		if !failed {
			if err := c.client.CommitUncommittedOffsets(ctx); err != nil && ctx.Err() == nil {
				logger.Get().Error("failed to commit offsets", zap.Error(err))
			}
		}
	}
}

// processRecord handles one Kafka record. Malformed payloads are logged
// and dropped so a poison message can't wedge the partition.
func (c *SettlementConsumer) processRecord(ctx context.Context, record *kgo.Record) error {
	var event SettlementEvent
	if err := json.Unmarshal(record.Value, &event); err != nil {
		logger.Get().Error("dropping malformed settlement event",
			zap.Int64("offset", record.Offset), zap.Error(err))
		return nil
	}

	if event.EventType != EventTypeInvoiceSettled {
		return nil
	}
	if event.Invoice == nil {
		logger.Get().Error("dropping settlement event without invoice",
			zap.String("event_id", event.EventID))
		return nil
	}

	settlement := toSettlement(event.Invoice)

	ctx, cancel := context.WithTimeout(ctx, c.config.ProcessTimeout)
	defer cancel()

	result := retry.Do(ctx, c.config.ProcessRetry, func(ctx context.Context) error {
		return c.settlements.RecordSettlement(ctx, settlement)
	})
	if result.Err != nil {
		return fmt.Errorf("record settlement %s after %d attempts: %w",
			settlement.InvoiceID, result.Attempts, result.LastError)
	}
	return nil
}

func toSettlement(inv *InvoiceData) *service.Settlement {
	settlement := &service.Settlement{
		StoreID:       inv.StoreID,
		EventID:       inv.EventID,
		InvoiceID:     inv.InvoiceID,
		InvoiceStatus: inv.Status,
		Currency:      inv.Currency,
		TotalAmount:   inv.TotalAmount,
		PurchaseDate:  inv.SettledAt,
	}
	for _, line := range inv.Lines {
		settlement.Tickets = append(settlement.Tickets, service.SettlementTicket{
			TicketTypeID: line.TicketTypeID,
			FirstName:    line.FirstName,
			LastName:     line.LastName,
			Email:        line.Email,
			TxnNumber:    line.TxnNumber,
		})
	}
	return settlement
}

// Stop shuts the consumer down and waits for in-flight work
func (c *SettlementConsumer) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.mu.Unlock()

	close(c.stopCh)
	c.wg.Wait()
	c.client.Close()

	logger.Get().Info("settlement consumer stopped")
}
