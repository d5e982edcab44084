package store

import (
	"context"
	"database/sql"

	"github.com/proteccion/taskboard-api/internal/domain"
)

// UserStore defines the interface for user lookups. Users are owned by an
// external subsystem; Create exists for the bootstrap tool only.
type UserStore interface {
	// Create inserts user and its roles and sets user.ID.
	// Returns ErrUsernameExists if the username is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user and its roles.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByUsername retrieves a user and its roles by exact username.
	// Returns ErrUserNotFound if the user does not exist.
	GetByUsername(ctx context.Context, username string) (*domain.User, error)

	// WithTx returns a UserStore bound to tx.
	WithTx(tx *sql.Tx) UserStore
}
