package di

import (
	"github.com/simplesats/ticket-sales/internal/consumer"
	"github.com/simplesats/ticket-sales/internal/gateway"
	"github.com/simplesats/ticket-sales/internal/handler"
	"github.com/simplesats/ticket-sales/internal/repository"
	"github.com/simplesats/ticket-sales/internal/service"
	"github.com/simplesats/ticket-sales/pkg/config"
	"github.com/simplesats/ticket-sales/pkg/database"
	"github.com/simplesats/ticket-sales/pkg/redis"
)

// Container holds all dependencies for the ticket sales service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Gateways
	Email     gateway.EmailSender
	FileStore gateway.FileStore
	Stores    gateway.StoreGateway

	// Repositories
	EventRepo      repository.EventRepository
	TicketTypeRepo repository.TicketTypeRepository
	OrderRepo      repository.OrderRepository

	// Services
	EventService      service.EventService
	TicketTypeService service.TicketTypeService
	TicketService     service.TicketService
	CheckinService    service.CheckinService
	SettlementService service.SettlementService

	// Handlers
	HealthHandler     *handler.HealthHandler
	EventHandler      *handler.EventHandler
	TicketTypeHandler *handler.TicketTypeHandler
	TicketHandler     *handler.TicketHandler
	OrderHandler      *handler.OrderHandler

	// Consumers
	SettlementConsumer *consumer.SettlementConsumer
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Config *config.Config
	DB     *database.PostgresDB
	Redis  *redis.Client
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) (*Container, error) {
	c := &Container{
		DB:    cfg.DB,
		Redis: cfg.Redis,
	}

	// Gateways
	fileStore, err := gateway.NewLocalFileStore(cfg.Config.Store.LogoDir)
	if err != nil {
		return nil, err
	}
	c.FileStore = fileStore
	c.Email = gateway.NewSMTPEmailSender(cfg.Config.SMTP)
	c.Stores = gateway.NewConfigStoreGateway(cfg.Config.Store.DefaultCurrency)

	// Repositories
	pool := c.DB.Pool()
	tx := repository.NewTxManager(pool)
	c.EventRepo = repository.NewPostgresEventRepository(pool)
	c.TicketTypeRepo = repository.NewPostgresTicketTypeRepository(pool)
	c.OrderRepo = repository.NewPostgresOrderRepository(pool)

	// Services
	c.EventService = service.NewEventService(tx, c.EventRepo, c.TicketTypeRepo, c.OrderRepo, c.FileStore, c.Stores)
	c.TicketTypeService = service.NewTicketTypeService(tx, c.EventRepo, c.TicketTypeRepo)
	c.TicketService = service.NewTicketService(c.EventRepo, c.OrderRepo, c.Email)
	c.CheckinService = service.NewCheckinService(c.EventRepo, c.OrderRepo)
	c.SettlementService = service.NewSettlementService(tx, c.EventRepo, c.TicketTypeRepo, c.OrderRepo)

	// Handlers. Redis is optional, so a down Redis must not keep the
	// service from reporting ready.
	checks := map[string]handler.HealthChecker{
		"database": c.DB,
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis
	}
	c.HealthHandler = handler.NewHealthHandler(cfg.Config.App.Version, checks)
	c.EventHandler = handler.NewEventHandler(c.EventService)
	c.TicketTypeHandler = handler.NewTicketTypeHandler(c.TicketTypeService)
	c.TicketHandler = handler.NewTicketHandler(c.TicketService, c.CheckinService)
	c.OrderHandler = handler.NewOrderHandler(c.TicketService)

	// Consumers
	consumerCfg := consumer.DefaultConfig()
	consumerCfg.Brokers = cfg.Config.Kafka.Brokers
	consumerCfg.GroupID = cfg.Config.Kafka.ConsumerGroup
	consumerCfg.ClientID = cfg.Config.Kafka.ClientID
	consumerCfg.Topic = cfg.Config.Kafka.SettlementTopic
	settlementConsumer, err := consumer.NewSettlementConsumer(consumerCfg, c.SettlementService)
	if err != nil {
		return nil, err
	}
	c.SettlementConsumer = settlementConsumer

	return c, nil
}
