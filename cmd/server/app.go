package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/proteccion/taskboard-api/internal/config"
	"github.com/proteccion/taskboard-api/internal/events"
	"github.com/proteccion/taskboard-api/internal/platform/postgres"
	"github.com/proteccion/taskboard-api/internal/service"
	"github.com/proteccion/taskboard-api/internal/service/auth"
	"github.com/proteccion/taskboard-api/internal/store"
)

// application holds the shared dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore
	taskStore store.TaskStore

	tokenService     auth.TokenService
	passwordVerifier auth.PasswordVerifier
	eventEmitter     *events.InMemoryEventEmitter
	taskService      service.TaskService
}

// newApplication wires the Postgres stores and services around db.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	app := &application{
		config:           cfg,
		logger:           logger,
		db:               db,
		userStore:        postgres.NewPostgresUserStore(db, logger),
		taskStore:        postgres.NewPostgresTaskStore(db, logger),
		tokenService:     tokens,
		passwordVerifier: auth.NewBcryptVerifier(),
	}
	if err := app.wireServices(); err != nil {
		return nil, err
	}

	logger.Info("application initialized",
		slog.Duration("token_lifetime", tokens.Lifetime()))
	return app, nil
}

// wireServices builds the service layer from the stores already set on app.
// Task lifecycle events are written to the debug log.
func (app *application) wireServices() error {
	app.eventEmitter = events.NewInMemoryEventEmitter(app.logger)
	app.eventEmitter.RegisterHandler(events.NewLogHandler(app.logger))

	resolver, err := service.NewUserLookup(app.userStore, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create principal resolver: %w", err)
	}

	app.taskService, err = service.NewTaskService(
		service.NewTaskRepositoryAdapter(app.taskStore, app.db),
		app.userStore,
		resolver,
		app.logger,
		service.WithEventEmitter(app.eventEmitter),
	)
	if err != nil {
		return fmt.Errorf("failed to create task service: %w", err)
	}
	return nil
}

// cleanup releases the database pool.
func (app *application) cleanup() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", slog.String("error", err.Error()))
	}
}
