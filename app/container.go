package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"bloom-monitor/broadcast"
	"bloom-monitor/config"
	"bloom-monitor/database"
	"bloom-monitor/handlers"
	"bloom-monitor/logging"
	"bloom-monitor/mqtt"
	"bloom-monitor/realtime"
	"bloom-monitor/redis"
	"bloom-monitor/services"

	"github.com/labstack/echo/v4"
)

// Container holds every long-lived component of the service.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure
	Database *database.Database
	Redis    *redis.RedisClient
	Relay    *redis.Relay
	MQTT     *mqtt.Client
	Hub      *realtime.Hub

	// Broadcast
	Gateway   *broadcast.Gateway
	Broadcast *broadcast.Manager

	// Business services
	AlertService     *services.AlertService
	IngestionService *services.IngestionService
	HealthService    *services.HealthService

	// Servers
	API      *echo.Echo
	Realtime *http.Server
}

// NewContainer wires the service in stages. Each stage only depends on the
// ones before it.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{Config: cfg}

	// 1. Core
	c.initCoreServices()

	// 2. Infrastructure
	if err := c.initInfraServices(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to init infra services: %w", err)
	}

	// 3. Business services
	c.initBusinessServices()

	// 4. Broadcast transports
	if err := c.initTransports(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to init transports: %w", err)
	}

	// 5. Handlers and servers
	c.initHandlers()

	return c, nil
}

func (c *Container) initCoreServices() {
	c.Logger = logging.NewLogger(c.Config.LogLevel)
	slog.SetDefault(c.Logger)
}

func (c *Container) initInfraServices(ctx context.Context) error {
	db, err := database.NewDatabase(ctx, c.Config, c.Logger)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	c.Database = db

	if c.Config.RedisEnabled {
		rc, err := redis.NewRedisClient(ctx, c.Config, c.Logger)
		if err != nil {
			return fmt.Errorf("redis init failed: %w", err)
		}
		c.Redis = rc
		c.Relay = redis.NewRelay(rc)
	}

	c.Hub = realtime.NewHub(c.Logger)
	return nil
}

func (c *Container) initBusinessServices() {
	c.Gateway = broadcast.NewGateway(c.Logger)
	c.AlertService = services.NewAlertService(c.Database.AlertRepo, c.Gateway, c.Logger)

	var debouncer services.Debouncer
	if c.Redis != nil && c.Config.AlertDebounce > 0 {
		debouncer = redis.NewAlertDebouncer(c.Redis, c.Config.AlertDebounce)
		c.Logger.Info("Alert debounce enabled", "window", c.Config.AlertDebounce)
	}

	c.IngestionService = services.NewIngestionService(
		c.Database.AssetRepo,
		c.Database.UoW,
		c.AlertService,
		debouncer,
		c.Logger,
	)
	c.HealthService = services.NewHealthService(c.Database.AssetRepo, c.Database.AlertRepo)

	// mark-alert-read control frames go through the alert service
	c.Hub.SetControlHandler(c.AlertService)
}

func (c *Container) initTransports() error {
	c.Broadcast = broadcast.NewManager(c.Logger)
	c.Broadcast.Register("websocket", c.Hub)

	if c.Relay != nil {
		c.Broadcast.Register("redis", c.Relay)
	}

	if c.Config.MQTTEnabled() {
		client, err := mqtt.NewClient(c.Config, c.IngestionService, c.Logger)
		if err != nil {
			return fmt.Errorf("mqtt init failed: %w", err)
		}
		c.MQTT = client
		c.Broadcast.Register("mqtt", client)
		client.LogSubscribedTopics()
	}

	c.Gateway.SetHandle(c.Broadcast)
	c.Logger.Info("Broadcast transports registered", "transports", c.Broadcast.Names())
	return nil
}

func (c *Container) initHandlers() {
	c.API = handlers.NewRouter(handlers.Handlers{
		API:        handlers.NewAPIHandler(c.Database.Connector),
		Datacenter: handlers.NewDatacenterHandler(c.Database.AssetRepo, c.IngestionService, c.HealthService),
		Alerts:     handlers.NewAlertHandler(c.AlertService),
	}, c.Logger)
	c.API.Server.ReadTimeout = 15 * time.Second
	c.API.Server.WriteTimeout = 15 * time.Second
	c.API.Server.IdleTimeout = 60 * time.Second
}

// Run serves until ctx is done, a server fails or the database cannot be
// recovered, then shuts everything down.
func (c *Container) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.Database.Connector.Start(runCtx)
	go c.Hub.Run(runCtx)

	if c.Relay != nil {
		go func() {
			if err := c.Relay.Run(runCtx, c.Hub); err != nil && !errors.Is(err, context.Canceled) {
				c.Logger.Error("Redis relay stopped", slog.Any("error", err))
			}
		}()
	}

	c.Realtime = &http.Server{
		Addr:        ":" + c.Config.RealtimePort,
		Handler:     realtime.NewRouter(runCtx, c.Hub),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	serverErr := make(chan error, 2)
	go func() {
		c.Logger.Info("Starting HTTP server", "port", c.Config.HTTPPort)
		if err := c.API.Start(":" + c.Config.HTTPPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()
	go func() {
		c.Logger.Info("Starting realtime server", "port", c.Config.RealtimePort)
		if err := c.Realtime.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("realtime server failed: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		c.Logger.Info("Shutdown signal received")
	case runErr = <-serverErr:
	case err := <-c.Database.Connector.ReconnectFailed():
		runErr = fmt.Errorf("database connection lost: %w", err)
	}

	c.shutdown()
	cancel()
	c.Close()
	return runErr
}

func (c *Container) shutdown() {
	c.Logger.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), c.Config.Timeout)
	defer cancel()

	if err := c.API.Shutdown(ctx); err != nil {
		c.Logger.Error("HTTP server shutdown error", slog.Any("error", err))
	}
	if c.Realtime != nil {
		if err := c.Realtime.Shutdown(ctx); err != nil {
			c.Logger.Error("Realtime server shutdown error", slog.Any("error", err))
		}
	}
}

// Close releases transports, Redis and the database.
func (c *Container) Close() {
	if c.Broadcast != nil {
		if err := c.Broadcast.Close(); err != nil {
			c.Logger.Warn("Failed to close broadcast transports", slog.Any("error", err))
		}
	}
	if c.Redis != nil {
		c.Redis.Close()
	}
	if c.Database != nil {
		if err := c.Database.Close(); err != nil {
			c.Logger.Warn("Failed to close database", slog.Any("error", err))
		}
	}
}
