package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sign-up-admin/safe-room-sub007/internal/apiclient"
	"github.com/Sign-up-admin/safe-room-sub007/internal/appstate"
	"github.com/Sign-up-admin/safe-room-sub007/internal/config"
	"github.com/Sign-up-admin/safe-room-sub007/internal/crud"
	"github.com/Sign-up-admin/safe-room-sub007/internal/database"
	"github.com/Sign-up-admin/safe-room-sub007/internal/events"
	"github.com/Sign-up-admin/safe-room-sub007/internal/logging"
	"github.com/Sign-up-admin/safe-room-sub007/internal/middleware"
	"github.com/Sign-up-admin/safe-room-sub007/internal/repository"
	"github.com/Sign-up-admin/safe-room-sub007/internal/routes"
	"github.com/Sign-up-admin/safe-room-sub007/internal/tracing"
	paymentws "github.com/Sign-up-admin/safe-room-sub007/internal/websocket"
	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	serviceName        = "gym-console"
	serviceSessionID   = "gym-console-service"
	serviceLoginModule = "users"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.SetupGlobalHandler(serviceName, cfg.IsDevelopment())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracing.InitTracerProvider(ctx, serviceName, cfg.OtelEndpoint)
	if err != nil {
		slog.Error("Failed to initialize OpenTelemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			slog.Warn("Error shutting down tracer provider", "error", err)
		}
	}()

	// 2. Connect to Database
	if cfg.DBUrl == "" {
		slog.Error("DB_URL is required")
		os.Exit(1)
	}
	if err := database.ConnectDB(ctx, cfg.DBUrl); err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.CloseDB()

	stateStore := newStateStore(ctx, cfg)
	paymentHub := paymentws.NewHub()
	go paymentHub.Run(ctx)
	publisher := newPublisher(cfg)
	if closer, ok := publisher.(*events.NatsPublisher); ok {
		defer closer.Close()
	}

	// 3. Setup Fiber
	app := fiber.New()

	// Middleware
	app.Use(cors.New())
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(otelfiber.Middleware())
	app.Use(middleware.Prometheus())

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if err := routes.RegisterRoutes(app, routes.Dependencies{
		Config:      cfg,
		CRUD:        crud.NewService(newBackend(ctx, cfg, stateStore)),
		DB:          database.DB,
		StateStore:  stateStore,
		Publisher:   events.MultiPublisher{publisher, paymentHub},
		PaymentHub:  paymentHub,
		CSRFEnabled: true,
	}); err != nil {
		slog.Error("Failed to register routes", "error", err)
		os.Exit(1)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			slog.Warn("Server shutdown failed", "error", err)
		}
	}()

	// 4. Start Server
	slog.Info("Server starting", "port", cfg.Port, "env", cfg.AppEnv, "remote_api", cfg.UsesRemoteAPI())
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("Server failed to start", "error", err)
		os.Exit(1)
	}
}

// newBackend picks where module records live: the external module API when
// one is configured, otherwise the local module_records table.
func newBackend(ctx context.Context, cfg *config.Config, stateStore appstate.Store) crud.Backend {
	if !cfg.UsesRemoteAPI() {
		return repository.NewModuleRepository(database.DB)
	}

	session := appstate.NewSession(stateStore, serviceSessionID)
	client := apiclient.New(cfg.GymAPIURL,
		apiclient.WithRetryDelay(cfg.HTTPRetryDelay),
		apiclient.WithTokenSource(session),
		apiclient.WithUnauthorizedHook(func(ctx context.Context, _ string) {
			slog.WarnContext(ctx, "Module API rejected the service token", "user", cfg.GymAPIUser)
		}),
	)
	if cfg.GymAPIUser != "" {
		if _, err := client.Login(ctx, serviceLoginModule, cfg.GymAPIUser, cfg.GymAPIPass); err != nil {
			slog.Warn("Module API login failed, continuing without a token", "user", cfg.GymAPIUser, "error", err)
		}
	}
	return crud.NewRemoteBackend(client)
}

func newStateStore(ctx context.Context, cfg *config.Config) appstate.Store {
	if cfg.RedisAddr == "" {
		return appstate.NewMemoryStore()
	}
	store := appstate.NewRedisStore(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := store.Ping(ctx); err != nil {
		slog.Warn("Redis unavailable, keeping session state in memory", "addr", cfg.RedisAddr, "error", err)
		_ = store.Close()
		return appstate.NewMemoryStore()
	}
	slog.Info("Connected to Redis", "addr", cfg.RedisAddr)
	return store
}

func newPublisher(cfg *config.Config) events.EventPublisher {
	if cfg.NatsURL == "" {
		return events.NoopPublisher{}
	}
	publisher, err := events.NewNatsPublisher(cfg.NatsURL)
	if err != nil {
		slog.Warn("NATS unavailable, payment events will not be published", "url", cfg.NatsURL, "error", err)
		return events.NoopPublisher{}
	}
	slog.Info("Connected to NATS", "url", cfg.NatsURL)
	return publisher
}
