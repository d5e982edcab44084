package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/proteccion/taskboard-api/internal/domain"
	"github.com/proteccion/taskboard-api/internal/platform/logger"
	"github.com/proteccion/taskboard-api/internal/store"
)

// PrincipalResolver maps an authenticated username to its user record.
type PrincipalResolver interface {
	// Resolve returns ErrPrincipalNotFound when no user has that username.
	Resolve(ctx context.Context, username string) (*domain.User, error)
}

// UserLookup resolves principals through a store.UserStore.
type UserLookup struct {
	users  store.UserStore
	logger *slog.Logger
}

var _ PrincipalResolver = (*UserLookup)(nil)

// NewUserLookup creates a resolver backed by users.
func NewUserLookup(users store.UserStore, logger *slog.Logger) (*UserLookup, error) {
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserLookup{
		users:  users,
		logger: logger.With(slog.String("component", "principal_resolver")),
	}, nil
}

// Resolve implements PrincipalResolver.
func (r *UserLookup) Resolve(ctx context.Context, username string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)

	user, err := r.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Warn("authenticated principal has no user record", slog.String("username", username))
			return nil, ErrPrincipalNotFound
		}
		log.Error("failed to resolve principal",
			slog.String("username", username),
			slog.String("error", err.Error()))
		return nil, NewTaskServiceError("resolve_principal", "failed to look up user", err)
	}
	return user, nil
}
