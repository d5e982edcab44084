// Package transfer converts between persisted tasks and the flat JSON
// representation exchanged with clients.
package transfer

import (
	"cloud.google.com/go/civil"
	"github.com/proteccion/taskboard-api/internal/domain"
	"github.com/proteccion/taskboard-api/internal/optional"
)

// Task is the external view of a task. Relationships are flattened to
// id/username pairs and absent values are omitted.
type Task struct {
	ID                 int64       `json:"id,omitempty"`
	Title              string      `json:"title,omitempty"`
	Description        *string     `json:"description,omitempty"`
	DueDate            *civil.Date `json:"dueDate,omitempty"`
	Status             string      `json:"status,omitempty"`
	CreatedByID        int64       `json:"createdById,omitempty"`
	CreatedByUsername  string      `json:"createdByUsername,omitempty"`
	AssignedToID       *int64      `json:"assignedToId,omitempty"`
	AssignedToUsername string      `json:"assignedToUsername,omitempty"`
}

// TaskInput is a create or update payload. Each field records whether it
// was absent, null or set. Server-owned fields (id, creator) are not accepted.
type TaskInput struct {
	Title        optional.Value[string]     `json:"title"`
	Description  optional.Value[string]     `json:"description"`
	DueDate      optional.Value[civil.Date] `json:"dueDate"`
	Status       optional.Value[string]     `json:"status"`
	AssignedToID optional.Value[int64]      `json:"assignedToId"`
}

// FromEntity maps a persisted task to its transfer representation.
func FromEntity(t *domain.Task) Task {
	out := Task{
		ID:                t.ID,
		Title:             t.Title,
		Status:            string(t.Status),
		CreatedByID:       t.CreatorID,
		CreatedByUsername: t.CreatorUsername,
	}
	if t.Description != nil {
		d := *t.Description
		out.Description = &d
	}
	if t.DueDate.IsValid() {
		d := t.DueDate
		out.DueDate = &d
	}
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		out.AssignedToID = &id
		out.AssignedToUsername = t.AssigneeUsername
	}
	return out
}

// FromEntities maps a slice of tasks, never returning nil.
func FromEntities(tasks []*domain.Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, FromEntity(t))
	}
	return out
}

// ToEntity copies the client-settable fields of in onto a new task. It never
// sets the id, the creator or any default; an absent status stays empty.
// The only failure is a status that does not exactly name a TaskStatus.
func ToEntity(in TaskInput) (*domain.Task, error) {
	t := &domain.Task{}
	if v, ok := in.Title.Get(); ok {
		t.Title = v
	}
	if v, ok := in.Description.Get(); ok {
		t.Description = &v
	}
	if v, ok := in.DueDate.Get(); ok {
		t.DueDate = v
	}
	if v, ok := in.Status.Get(); ok {
		status, err := domain.ParseTaskStatus(v)
		if err != nil {
			return nil, err
		}
		t.Status = status
	}
	if v, ok := in.AssignedToID.Get(); ok {
		t.AssigneeID = &v
	}
	return t, nil
}
