package main

import (
	"fmt"
	"log/slog"

	"github.com/proteccion/taskboard-api/internal/config"
)

// loadAppConfig loads the application configuration from environment variables or config file.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// logAppConfig records the non-secret configuration at startup.
func logAppConfig(cfg *config.Config, logger *slog.Logger) {
	logger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	logger.Debug("database configuration",
		slog.Bool("url_present", cfg.Database.URL != ""),
		slog.Int("max_open_conns", cfg.Database.MaxOpenConns))
}
