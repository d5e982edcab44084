// Package main runs the taskboard API server. With -migrate it applies
// database migrations and exits instead of serving.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/proteccion/taskboard-api/internal/platform/logger"
	"github.com/proteccion/taskboard-api/internal/platform/postgres"
)

func main() {
	migrate := flag.String("migrate", "", "run a migration command and exit (up, down, reset, status, version)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *migrate); err != nil {
		log.Fatalf("taskboard-api: %v", err)
	}
}

func run(ctx context.Context, migrate string) error {
	if err := validateMigrateCommand(migrate); err != nil {
		return err
	}

	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	logAppConfig(cfg, l)

	db, err := setupAppDatabase(ctx, cfg.Database, l)
	if err != nil {
		return err
	}

	if migrate != "" {
		defer func() { _ = db.Close() }()
		return postgres.Migrate(ctx, db, migrate, l)
	}

	app, err := newApplication(cfg, l, db)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer app.cleanup()

	return app.serve(ctx, app.setupRouter())
}

// validateMigrateCommand accepts "" (serve) or a known migration command.
func validateMigrateCommand(command string) error {
	if command == "" || slices.Contains(postgres.MigrateCommands, command) {
		return nil
	}
	slog.Error("unknown migration command", slog.String("command", command))
	return fmt.Errorf("unknown migration command %q (expected one of %v)", command, postgres.MigrateCommands)
}
