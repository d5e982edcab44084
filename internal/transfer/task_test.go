package transfer

import (
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/proteccion/taskboard-api/internal/domain"
	"github.com/proteccion/taskboard-api/internal/optional"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var due = civil.Date{Year: 2025, Month: time.April, Day: 2}

func strPtr(s string) *string { return &s }
func idPtr(v int64) *int64    { return &v }

func TestFromEntity_JSONShape(t *testing.T) {
	t.Parallel()

	task := &domain.Task{
		ID:               10,
		Title:            "Prepare demo",
		Description:      strPtr("slides and script"),
		DueDate:          due,
		Status:           domain.TaskStatusInProgress,
		CreatorID:        1,
		CreatorUsername:  "alice",
		AssigneeID:       idPtr(2),
		AssigneeUsername: "bob",
	}

	out, err := json.Marshal(FromEntity(task))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 10,
		"title": "Prepare demo",
		"description": "slides and script",
		"dueDate": "2025-04-02",
		"status": "IN_PROGRESS",
		"createdById": 1,
		"createdByUsername": "alice",
		"assignedToId": 2,
		"assignedToUsername": "bob"
	}`, string(out))
}

func TestFromEntity_OmitsAbsentFields(t *testing.T) {
	t.Parallel()

	task := &domain.Task{
		ID:              11,
		Title:           "No extras",
		DueDate:         due,
		Status:          domain.TaskStatusTodo,
		CreatorID:       1,
		CreatorUsername: "alice",
	}

	out, err := json.Marshal(FromEntity(task))
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(out, &fields))
	assert.NotContains(t, fields, "description")
	assert.NotContains(t, fields, "assignedToId")
	assert.NotContains(t, fields, "assignedToUsername")
	assert.Equal(t, "2025-04-02", fields["dueDate"])
}

func TestFromEntity_DoesNotAlias(t *testing.T) {
	t.Parallel()

	task := &domain.Task{Description: strPtr("original"), AssigneeID: idPtr(4), DueDate: due}
	out := FromEntity(task)

	*out.Description = "changed"
	*out.AssignedToID = 9
	assert.Equal(t, "original", *task.Description)
	assert.Equal(t, int64(4), *task.AssigneeID)
}

func TestFromEntities_EmptyIsNotNil(t *testing.T) {
	t.Parallel()

	out := FromEntities(nil)
	require.NotNil(t, out)
	b, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestToEntity(t *testing.T) {
	t.Parallel()

	in := TaskInput{
		Title:        optional.Of("Draft"),
		Description:  optional.Of("first pass"),
		DueDate:      optional.Of(due),
		Status:       optional.Of("COMPLETED"),
		AssignedToID: optional.Of[int64](5),
	}

	task, err := ToEntity(in)
	require.NoError(t, err)
	assert.Equal(t, "Draft", task.Title)
	assert.Equal(t, "first pass", *task.Description)
	assert.Equal(t, due, task.DueDate)
	assert.Equal(t, domain.TaskStatusCompleted, task.Status)
	assert.Equal(t, int64(5), *task.AssigneeID)

	assert.Zero(t, task.ID, "id is server-assigned")
	assert.Zero(t, task.CreatorID, "creator is set from the caller")
}

func TestToEntity_AbsentAndNullLeaveZeroValues(t *testing.T) {
	t.Parallel()

	task, err := ToEntity(TaskInput{Description: optional.Null[string](), Status: optional.Null[string]()})
	require.NoError(t, err)
	assert.Empty(t, task.Title)
	assert.Nil(t, task.Description)
	assert.False(t, task.DueDate.IsValid())
	assert.Empty(t, task.Status, "status default is applied by the service")
	assert.Nil(t, task.AssigneeID)
}

func TestToEntity_InvalidStatus(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"done", "todo", "In_Progress"} {
		_, err := ToEntity(TaskInput{Status: optional.Of(s)})
		assert.ErrorIs(t, err, domain.ErrInvalidStatus, s)
		assert.ErrorIs(t, err, domain.ErrValidation, s)
	}
}

// A task serialized for a client and sent back unchanged yields the same
// client-settable fields.
func TestRoundTrip_EntityTransferEntity(t *testing.T) {
	t.Parallel()

	originals := []*domain.Task{
		{ID: 1, Title: "A", Description: strPtr("desc"), DueDate: due, Status: domain.TaskStatusTodo, CreatorID: 3, CreatorUsername: "c"},
		{ID: 2, Title: "B", DueDate: due.AddDays(30), Status: domain.TaskStatusInProgress, CreatorID: 3, AssigneeID: idPtr(4)},
		{ID: 3, Title: "C", Description: strPtr(""), DueDate: due, Status: domain.TaskStatusCompleted, CreatorID: 5},
	}

	for _, orig := range originals {
		body, err := json.Marshal(FromEntity(orig))
		require.NoError(t, err)

		var in TaskInput
		require.NoError(t, json.Unmarshal(body, &in))

		back, err := ToEntity(in)
		require.NoError(t, err)

		assert.Equal(t, orig.Title, back.Title)
		assert.Equal(t, orig.Description, back.Description)
		assert.Equal(t, orig.DueDate, back.DueDate)
		assert.Equal(t, orig.Status, back.Status)
		assert.Equal(t, orig.AssigneeID, back.AssigneeID)
		assert.Zero(t, back.ID)
		assert.Zero(t, back.CreatorID)
	}
}

func TestRoundTrip_MissingStatusDefaultsToEmpty(t *testing.T) {
	t.Parallel()

	var in TaskInput
	require.NoError(t, json.Unmarshal([]byte(`{"title":"x","dueDate":"2025-04-02"}`), &in))

	back, err := ToEntity(in)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatus(""), back.Status)
	assert.Equal(t, due, back.DueDate)
}
