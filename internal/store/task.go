package store

import (
	"context"
	"database/sql"

	"github.com/proteccion/taskboard-api/internal/domain"
)

// TaskFilter narrows List. A nil field applies no restriction.
type TaskFilter struct {
	// VisibleTo limits results to tasks created by or assigned to this user id.
	VisibleTo *int64
	// Status limits results to tasks in this status.
	Status *domain.TaskStatus
}

// TaskStore defines the interface for task persistence.
type TaskStore interface {
	// Create inserts task and sets its ID, CreatedAt and UpdatedAt.
	// Returns ErrReferenceViolation if the creator or assignee does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task with its creator and assignee usernames.
	// Returns ErrTaskNotFound if no task has that id.
	GetByID(ctx context.Context, id int64) (*domain.Task, error)

	// List returns tasks matching filter ordered by id.
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// Update writes the mutable fields of task: title, description, due date,
	// status and assignee. The creator is never written.
	// Returns ErrTaskNotFound if the task does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete permanently removes a task.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id int64) error

	// WithTx returns a TaskStore bound to tx.
	WithTx(tx *sql.Tx) TaskStore
}
