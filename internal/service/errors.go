package service

import (
	"errors"
	"fmt"

	"github.com/proteccion/taskboard-api/internal/domain"
	"github.com/proteccion/taskboard-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// The API layer maps every ErrNotFound variant to 404 and uses the same
// client message for ErrTaskNotFound and ErrAccessDenied.
var (
	// ErrNotFound is the category shared by every "not found" condition.
	ErrNotFound = errors.New("not found")

	// ErrTaskNotFound indicates no task has the requested id.
	ErrTaskNotFound = fmt.Errorf("task %w", ErrNotFound)

	// ErrAccessDenied indicates the principal may not perform the operation on
	// the task. It deliberately wraps ErrTaskNotFound.
	ErrAccessDenied = fmt.Errorf("%w: access denied", ErrTaskNotFound)

	// ErrAssigneeNotFound indicates the requested assignee id does not match a user.
	ErrAssigneeNotFound = fmt.Errorf("assigned user %w", ErrNotFound)

	// ErrPrincipalNotFound indicates the authenticated username has no user record.
	ErrPrincipalNotFound = fmt.Errorf("user %w", ErrNotFound)
)

// TaskServiceError is a custom error type for unexpected task service failures.
type TaskServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError returns expected conditions (service sentinels and
// validation failures) and errors it already wrapped unchanged, and wraps
// everything else.
func NewTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	var serviceErr *TaskServiceError
	switch {
	case errors.As(err, &serviceErr):
		return err
	case errors.Is(err, ErrNotFound), errors.Is(err, domain.ErrValidation):
		return err
	case errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, store.ErrReferenceViolation):
		return ErrAssigneeNotFound
	}

	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
