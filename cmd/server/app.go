package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/slotswap-api/internal/config"
	"github.com/phrazzld/slotswap-api/internal/events"
	"github.com/phrazzld/slotswap-api/internal/notify"
	"github.com/phrazzld/slotswap-api/internal/platform/memory"
	"github.com/phrazzld/slotswap-api/internal/platform/postgres"
	"github.com/phrazzld/slotswap-api/internal/service"
	"github.com/phrazzld/slotswap-api/internal/service/auth"
	"github.com/phrazzld/slotswap-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB // nil for the memory driver

	// Persistence
	tx store.Transactor

	// Auth
	jwtService auth.JWTService
	hasher     auth.PasswordHasher

	// Event system
	eventEmitter *events.InMemoryEventEmitter
	hub          *notify.Hub

	// Service interfaces
	swapService service.SwapService
	slotService service.SlotService
	userService service.UserService
}

// newApplication creates a new application instance with all dependencies initialized.
// The postgres driver opens and pings the database here.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	switch cfg.Store.Driver {
	case config.DriverMemory:
		app.tx = memory.NewStore(logger)
		logger.Warn("Using in-memory store; data is lost on restart")
	case config.DriverPostgres:
		db, err := setupAppDatabase(context.Background(), cfg, logger)
		if err != nil {
			return nil, err
		}
		app.db = db
		app.tx = postgres.NewPostgresTransactor(db, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if err := app.wireServices(); err != nil {
		app.cleanup()
		return nil, err
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// wireServices builds everything above the store. app.tx must be set.
func (app *application) wireServices() error {
	var err error
	cfg := app.config

	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.hasher = auth.NewBcryptHasher(cfg.Auth.BCryptCost)

	app.eventEmitter = events.NewInMemoryEventEmitter(app.logger)
	app.hub = notify.NewHub(app.logger)
	app.eventEmitter.RegisterHandler(app.hub)

	app.swapService, err = service.NewSwapService(app.tx, app.eventEmitter, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create swap service: %w", err)
	}

	app.slotService, err = service.NewSlotService(app.tx, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create slot service: %w", err)
	}

	app.userService, err = service.NewUserService(app.tx, app.hasher, app.jwtService, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create user service: %w", err)
	}

	return nil
}

// Run starts the notification hub and the HTTP server, returning once the
// server has shut down.
func (app *application) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go app.hub.Run(hubCtx)

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Handler exposes the configured router, chiefly for tests.
func (app *application) Handler() http.Handler {
	return app.setupRouter()
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
