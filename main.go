package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simplesats/ticket-sales/internal/di"
	"github.com/simplesats/ticket-sales/migrations"
	"github.com/simplesats/ticket-sales/pkg/config"
	"github.com/simplesats/ticket-sales/pkg/database"
	"github.com/simplesats/ticket-sales/pkg/logger"
	"github.com/simplesats/ticket-sales/pkg/middleware"
	"github.com/simplesats/ticket-sales/pkg/redis"
	"github.com/simplesats/ticket-sales/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if cfg.IsDevelopment() {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting ticket sales service...")

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.App.Name,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	} else if telemetryCfg.Enabled {
		appLog.Info(fmt.Sprintf("Telemetry initialized (collector: %s)", telemetryCfg.CollectorAddr))
	}
	defer telemetry.Shutdown(ctx)

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	if err := migrations.Apply(ctx, db.Pool()); err != nil {
		appLog.Fatal(fmt.Sprintf("Migrations failed: %v", err))
	}

	// Initialize Redis connection (optional - idempotency falls back to
	// pass-through if it is unavailable)
	redisCfg := &redis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
		MaxRetries:    3,
		RetryInterval: time.Second,
	}
	redisClient, err := redis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed (idempotency disabled): %v", err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLog.Info(fmt.Sprintf("Redis connected (%s)", redisCfg.Addr()))
	}

	// Build dependency injection container
	container, err := di.NewContainer(&di.ContainerConfig{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
	})
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to build container: %v", err))
	}

	// Start the settlement consumer
	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	if err := container.SettlementConsumer.Start(consumerCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start settlement consumer: %v", err))
	}

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.App.Name))
	}

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	jwtConfig := middleware.JWTConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
	}

	// API routes: everything is scoped to a store and restricted to its
	// operators
	v1 := router.Group("/api/v1")
	stores := v1.Group("/stores/:storeId")
	stores.Use(middleware.Auth(jwtConfig))
	stores.Use(middleware.RequireRole("admin", "organizer"))
	if redisClient != nil {
		stores.Use(middleware.Idempotency(middleware.DefaultIdempotencyConfig(redisClient)))
	}
	{
		events := stores.Group("/events")
		{
			events.GET("", container.EventHandler.List)
			events.POST("", container.EventHandler.Create)
			events.GET("/:eventId", container.EventHandler.Get)
			events.PUT("/:eventId", container.EventHandler.Update)
			events.DELETE("/:eventId", container.EventHandler.Delete)
			events.PUT("/:eventId/toggle", container.EventHandler.Toggle)
			events.POST("/:eventId/logo", container.EventHandler.UploadLogo)
			events.DELETE("/:eventId/logo", container.EventHandler.ClearLogo)

			ticketTypes := events.Group("/:eventId/ticket-types")
			{
				ticketTypes.GET("", container.TicketTypeHandler.List)
				ticketTypes.POST("", container.TicketTypeHandler.Create)
				ticketTypes.GET("/:ticketTypeId", container.TicketTypeHandler.Get)
				ticketTypes.PUT("/:ticketTypeId", container.TicketTypeHandler.Update)
				ticketTypes.DELETE("/:ticketTypeId", container.TicketTypeHandler.Delete)
				ticketTypes.PUT("/:ticketTypeId/toggle", container.TicketTypeHandler.Toggle)
			}

			tickets := events.Group("/:eventId/tickets")
			{
				tickets.GET("", container.TicketHandler.List)
				tickets.GET("/export", container.TicketHandler.Export)
				tickets.POST("/:ticketNumber/check-in", container.TicketHandler.Checkin)
			}

			orders := events.Group("/:eventId/orders")
			{
				orders.GET("", container.OrderHandler.List)
				orders.POST("/:orderId/tickets/:ticketId/send-reminder", container.OrderHandler.SendReminder)
			}
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Ticket sales service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down...")

	// Stop consuming before draining HTTP so no settlement is half-recorded
	stopConsumer()
	container.SettlementConsumer.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
