package domain

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// TaskStatus is the workflow state of a Task.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
)

// TaskStatuses lists every valid status in workflow order.
var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted}

// IsValid reports whether s is one of the enumerated statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

func (s TaskStatus) String() string { return string(s) }

// ParseTaskStatus converts the symbolic name of a status into a TaskStatus.
// Matching is exact and case-sensitive: "todo" is rejected.
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.IsValid() {
		return "", NewValidationError("status", "must be one of TODO, IN_PROGRESS, COMPLETED", ErrInvalidStatus)
	}
	return status, nil
}

// Task is a unit of work owned by its creator and optionally assigned to a user.
//
// CreatorID is set once when the task is created and never changes.
// AssigneeID defaults to the creator but may be nil for rows written by other tools.
// The username fields are read-only projections filled in by the store.
type Task struct {
	ID               int64
	Title            string
	Description      *string
	DueDate          civil.Date
	Status           TaskStatus
	CreatorID        int64
	CreatorUsername  string
	AssigneeID       *int64
	AssigneeUsername string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewTask builds a task created by creatorID. The assignee defaults to the
// creator and the status to TODO.
func NewTask(title string, description *string, dueDate civil.Date, creatorID int64) (*Task, error) {
	assignee := creatorID
	task := &Task{
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Status:      TaskStatusTodo,
		CreatorID:   creatorID,
		AssigneeID:  &assignee,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks the invariants every persisted task must satisfy.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("title", "must not be blank", nil)
	}
	if !t.DueDate.IsValid() {
		return NewValidationError("dueDate", "is required", nil)
	}
	if !t.Status.IsValid() {
		return NewValidationError("status", "must be one of TODO, IN_PROGRESS, COMPLETED", ErrInvalidStatus)
	}
	if t.CreatorID <= 0 {
		return NewValidationError("creator", "is required", nil)
	}
	return nil
}

// IsAssignedTo reports whether userID is the task's assignee. A task with no
// assignee is assigned to nobody.
func (t *Task) IsAssignedTo(userID int64) bool {
	return t.AssigneeID != nil && *t.AssigneeID == userID
}

// IsCreatedBy reports whether userID created the task.
func (t *Task) IsCreatedBy(userID int64) bool {
	return t.CreatorID == userID
}
