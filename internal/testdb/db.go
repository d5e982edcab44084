package testdb

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx driver
	"github.com/proteccion/taskboard-api/internal/redact"
	"github.com/proteccion/taskboard-api/internal/store"
)

const pingTimeout = 5 * time.Second

var errRollback = errors.New("testdb: rollback")

// Open connects to the test database and registers a cleanup that closes it.
// The test is skipped when no database URL is configured.
func Open(t testing.TB) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		t.Skip("no test database URL configured")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		t.Fatalf("open test database: %s", redact.Error(err))
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("ping test database: %s", redact.Error(err))
	}
	return db
}

// WithTx runs fn inside a transaction that is always rolled back, so tests
// never leave rows behind.
func WithTx(t testing.TB, db *sql.DB, fn func(ctx context.Context, tx *sql.Tx)) {
	t.Helper()

	err := store.RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
		fn(ctx, tx)
		return errRollback
	})
	if !errors.Is(err, errRollback) {
		t.Fatalf("test transaction: %v", err)
	}
}
