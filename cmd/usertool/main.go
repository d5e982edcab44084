// Command usertool creates a user account with a bcrypt-hashed password and
// a set of roles. Accounts are otherwise managed outside the API.
//
//	usertool -username alice -password 's3cret' -roles ROLE_USER,ROLE_ADMIN
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/proteccion/taskboard-api/internal/authz"
	"github.com/proteccion/taskboard-api/internal/config"
	"github.com/proteccion/taskboard-api/internal/domain"
	"github.com/proteccion/taskboard-api/internal/platform/logger"
	"github.com/proteccion/taskboard-api/internal/platform/postgres"
	"github.com/proteccion/taskboard-api/internal/service/auth"
	"github.com/proteccion/taskboard-api/internal/store"
)

func main() {
	username := flag.String("username", "", "username of the new account")
	password := flag.String("password", "", "plaintext password; hashed before storage")
	roles := flag.String("roles", authz.RoleUser, "comma-separated role names")
	flag.Parse()

	if err := run(context.Background(), *username, *password, *roles); err != nil {
		log.Fatalf("usertool: %v", err)
	}
}

func run(ctx context.Context, username, password, roleList string) error {
	if password == "" {
		return errors.New("password is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	hash, err := auth.HashPassword(password, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	user, err := domain.NewUser(username, hash, parseRoles(roleList))
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := createUser(ctx, db, postgres.NewPostgresUserStore(db, l), user); err != nil {
		return err
	}

	l.Info("user created", slog.Int64("user_id", user.ID), slog.String("username", user.Username))
	_, err = fmt.Fprintf(os.Stdout, "created user %q with id %d\n", user.Username, user.ID)
	return err
}

// createUser inserts user and its roles in one transaction.
func createUser(ctx context.Context, db *sql.DB, users store.UserStore, user *domain.User) error {
	return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		if err := users.WithTx(tx).Create(ctx, user); err != nil {
			if errors.Is(err, store.ErrUsernameExists) {
				return fmt.Errorf("username %q is already taken", user.Username)
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

// parseRoles splits a comma-separated list, dropping blanks and duplicates.
func parseRoles(list string) []string {
	var roles []string
	seen := make(map[string]bool)
	for _, r := range strings.Split(list, ",") {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		roles = append(roles, r)
	}
	return roles
}
