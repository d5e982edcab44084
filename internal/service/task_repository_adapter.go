package service

import (
	"context"
	"database/sql"

	"github.com/proteccion/taskboard-api/internal/domain"
	"github.com/proteccion/taskboard-api/internal/store"
)

// TaskRepository is the task store as seen by the service, plus the pool
// used to open transactions.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id int64) (*domain.Task, error)
	List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id int64) error

	// WithTx returns a repository bound to tx.
	WithTx(tx *sql.Tx) TaskRepository

	// DB returns the connection pool transactions are started on.
	DB() *sql.DB
}

// NewTaskRepositoryAdapter lets a store.TaskStore serve as a TaskRepository.
func NewTaskRepositoryAdapter(taskStore store.TaskStore, db *sql.DB) TaskRepository {
	return &taskRepositoryAdapter{TaskStore: taskStore, db: db}
}

type taskRepositoryAdapter struct {
	store.TaskStore
	db *sql.DB
}

// WithTx implements TaskRepository.WithTx.
func (a *taskRepositoryAdapter) WithTx(tx *sql.Tx) TaskRepository {
	return &taskRepositoryAdapter{TaskStore: a.TaskStore.WithTx(tx), db: a.db}
}

// DB implements TaskRepository.DB.
func (a *taskRepositoryAdapter) DB() *sql.DB {
	return a.db
}
