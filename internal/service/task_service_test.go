package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/proteccion/taskboard-api/internal/authz"
	"github.com/proteccion/taskboard-api/internal/domain"
	"github.com/proteccion/taskboard-api/internal/events"
	"github.com/proteccion/taskboard-api/internal/mocks"
	"github.com/proteccion/taskboard-api/internal/optional"
	"github.com/proteccion/taskboard-api/internal/service"
	"github.com/proteccion/taskboard-api/internal/store"
	"github.com/proteccion/taskboard-api/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	march1 = civil.Date{Year: 2025, Month: time.March, Day: 1}
	april2 = civil.Date{Year: 2025, Month: time.April, Day: 2}
)

type fixture struct {
	svc     service.TaskService
	tasks   *mocks.MockTaskStore
	users   *mocks.MockUserStore
	db      sqlmock.Sqlmock
	emitted *eventRecorder

	alice, bob, carol, admin *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)

	users := mocks.NewMockUserStore()
	f := &fixture{
		users:   users,
		tasks:   mocks.NewMockTaskStore(users),
		db:      dbMock,
		emitted: &eventRecorder{},
		alice:   users.AddUser("alice", authz.RoleUser),
		bob:     users.AddUser("bob", authz.RoleUser),
		carol:   users.AddUser("carol", authz.RoleUser),
		admin:   users.AddUser("admin", authz.RoleAdmin, authz.RoleUser),
	}

	resolver, err := service.NewUserLookup(users, nil)
	require.NoError(t, err)
	emitter := events.NewInMemoryEventEmitter(nil)
	emitter.RegisterHandler(f.emitted)
	f.svc, err = service.NewTaskService(
		service.NewTaskRepositoryAdapter(f.tasks, db), users, resolver, nil,
		service.WithEventEmitter(emitter),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, dbMock.ExpectationsWereMet())
		_ = db.Close()
	})
	return f
}

func principal(u *domain.User) domain.Principal {
	return domain.Principal{Username: u.Username, Roles: u.Roles}
}

func (f *fixture) expectCommit() {
	f.db.ExpectBegin()
	f.db.ExpectCommit()
}

func (f *fixture) expectRollback() {
	f.db.ExpectBegin()
	f.db.ExpectRollback()
}

// seed stores a task created by creator and assigned to assignee.
func (f *fixture) seed(title string, status domain.TaskStatus, creator, assignee *domain.User) int64 {
	task := domain.Task{
		Title:     title,
		DueDate:   march1,
		Status:    status,
		CreatorID: creator.ID,
	}
	if assignee != nil {
		id := assignee.ID
		task.AssigneeID = &id
	}
	return f.tasks.Seed(task)
}

func (f *fixture) stored(t *testing.T, id int64) *domain.Task {
	t.Helper()
	task, err := f.tasks.GetByID(context.Background(), id)
	require.NoError(t, err)
	return task
}

func ids(tasks []transfer.Task) []int64 {
	out := make([]int64, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.ID)
	}
	return out
}

func TestNewTaskService_NilDependencies(t *testing.T) {
	users := mocks.NewMockUserStore()
	resolver, err := service.NewUserLookup(users, nil)
	require.NoError(t, err)
	repo := service.NewTaskRepositoryAdapter(mocks.NewMockTaskStore(users), nil)

	_, err = service.NewTaskService(nil, users, resolver, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = service.NewTaskService(repo, nil, resolver, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = service.NewTaskService(repo, users, nil, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTaskService_Get(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.seed("write report", domain.TaskStatusTodo, f.alice, f.bob)

	for _, u := range []*domain.User{f.alice, f.bob, f.admin} {
		t.Run(u.Username+" can read", func(t *testing.T) {
			got, err := f.svc.Get(ctx, principal(u), id)
			require.NoError(t, err)
			assert.Equal(t, id, got.ID)
			assert.Equal(t, "alice", got.CreatedByUsername)
			assert.Equal(t, "bob", got.AssignedToUsername)
		})
	}

	t.Run("unrelated user gets not found", func(t *testing.T) {
		_, err := f.svc.Get(ctx, principal(f.carol), id)
		assert.ErrorIs(t, err, service.ErrTaskNotFound)
		assert.ErrorIs(t, err, service.ErrAccessDenied)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("missing task", func(t *testing.T) {
		_, err := f.svc.Get(ctx, principal(f.admin), 999)
		assert.ErrorIs(t, err, service.ErrTaskNotFound)
		assert.NotErrorIs(t, err, service.ErrAccessDenied)
	})
}

func TestTaskService_UnknownPrincipal(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.List(context.Background(), domain.Principal{Username: "ghost", Roles: []string{authz.RoleAdmin}})
	assert.ErrorIs(t, err, service.ErrPrincipalNotFound)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestTaskService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults assignee and status", func(t *testing.T) {
		f := newFixture(t)
		f.expectCommit()

		got, err := f.svc.Create(ctx, principal(f.alice), transfer.TaskInput{
			Title:   optional.Of("write report"),
			DueDate: optional.Of(march1),
		})
		require.NoError(t, err)

		assert.NotZero(t, got.ID)
		assert.Equal(t, f.alice.ID, got.CreatedByID)
		require.NotNil(t, got.AssignedToID)
		assert.Equal(t, f.alice.ID, *got.AssignedToID)
		assert.Equal(t, "alice", got.AssignedToUsername)
		assert.Equal(t, "TODO", got.Status)
		assert.Nil(t, got.Description)
		require.NotNil(t, got.DueDate)
		assert.Equal(t, march1, *got.DueDate)
	})

	t.Run("explicit assignee and status", func(t *testing.T) {
		f := newFixture(t)
		f.expectCommit()

		got, err := f.svc.Create(ctx, principal(f.alice), transfer.TaskInput{
			Title:        optional.Of("review"),
			Description:  optional.Of("second pass"),
			DueDate:      optional.Of(april2),
			Status:       optional.Of("IN_PROGRESS"),
			AssignedToID: optional.Of(f.bob.ID),
		})
		require.NoError(t, err)

		assert.Equal(t, f.alice.ID, got.CreatedByID)
		require.NotNil(t, got.AssignedToID)
		assert.Equal(t, f.bob.ID, *got.AssignedToID)
		assert.Equal(t, "bob", got.AssignedToUsername)
		assert.Equal(t, "IN_PROGRESS", got.Status)
		require.NotNil(t, got.Description)
		assert.Equal(t, "second pass", *got.Description)
	})

	t.Run("null assignee defaults to caller", func(t *testing.T) {
		f := newFixture(t)
		f.expectCommit()

		got, err := f.svc.Create(ctx, principal(f.bob), transfer.TaskInput{
			Title:        optional.Of("x"),
			DueDate:      optional.Of(march1),
			AssignedToID: optional.Null[int64](),
		})
		require.NoError(t, err)
		require.NotNil(t, got.AssignedToID)
		assert.Equal(t, f.bob.ID, *got.AssignedToID)
	})

	t.Run("unknown assignee", func(t *testing.T) {
		f := newFixture(t)
		f.expectRollback()

		_, err := f.svc.Create(ctx, principal(f.alice), transfer.TaskInput{
			Title:        optional.Of("x"),
			DueDate:      optional.Of(march1),
			AssignedToID: optional.Of(int64(4242)),
		})
		assert.ErrorIs(t, err, service.ErrAssigneeNotFound)
		assert.ErrorIs(t, err, service.ErrNotFound)
		assert.Zero(t, f.tasks.Len())
	})

	validationCases := []struct {
		name  string
		input transfer.TaskInput
		field string
	}{
		{"missing title", transfer.TaskInput{DueDate: optional.Of(march1)}, "title"},
		{"empty title", transfer.TaskInput{Title: optional.Of(""), DueDate: optional.Of(march1)}, "title"},
		{"blank title", transfer.TaskInput{Title: optional.Of("   "), DueDate: optional.Of(march1)}, "title"},
		{"missing due date", transfer.TaskInput{Title: optional.Of("x")}, "dueDate"},
		{"null due date", transfer.TaskInput{Title: optional.Of("x"), DueDate: optional.Null[civil.Date]()}, "dueDate"},
		{
			"lowercase status",
			transfer.TaskInput{Title: optional.Of("x"), DueDate: optional.Of(march1), Status: optional.Of("todo")},
			"status",
		},
	}
	for _, tc := range validationCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.svc.Create(ctx, principal(f.alice), tc.input)
			require.ErrorIs(t, err, domain.ErrValidation)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Zero(t, f.tasks.Len())
		})
	}
}

func TestTaskService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("only description changes", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed("write report", domain.TaskStatusInProgress, f.alice, f.bob)
		before := f.stored(t, id)
		f.expectCommit()

		got, err := f.svc.Update(ctx, principal(f.alice), id, transfer.TaskInput{
			Description: optional.Of("with charts"),
		})
		require.NoError(t, err)

		after := f.stored(t, id)
		require.NotNil(t, after.Description)
		assert.Equal(t, "with charts", *after.Description)
		assert.Equal(t, before.Title, after.Title)
		assert.Equal(t, before.DueDate, after.DueDate)
		assert.Equal(t, before.Status, after.Status)
		assert.Equal(t, before.AssigneeID, after.AssigneeID)
		assert.Equal(t, before.CreatorID, after.CreatorID)
		assert.Equal(t, "with charts", *got.Description)
	})

	t.Run("null fields are untouched", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed("write report", domain.TaskStatusTodo, f.alice, f.alice)
		f.expectCommit()

		_, err := f.svc.Update(ctx, principal(f.alice), id, transfer.TaskInput{
			Title:        optional.Null[string](),
			DueDate:      optional.Null[civil.Date](),
			Status:       optional.Null[string](),
			AssignedToID: optional.Null[int64](),
			Description:  optional.Of("note"),
		})
		require.NoError(t, err)

		after := f.stored(t, id)
		assert.Equal(t, "write report", after.Title)
		assert.Equal(t, march1, after.DueDate)
		assert.Equal(t, domain.TaskStatusTodo, after.Status)
		require.NotNil(t, after.AssigneeID)
		assert.Equal(t, f.alice.ID, *after.AssigneeID)
	})

	t.Run("empty description clears it", func(t *testing.T) {
		f := newFixture(t)
		desc := "old"
		id := f.tasks.Seed(domain.Task{
			Title: "t", Description: &desc, DueDate: march1,
			Status: domain.TaskStatusTodo, CreatorID: f.alice.ID,
		})
		f.expectCommit()

		got, err := f.svc.Update(ctx, principal(f.alice), id, transfer.TaskInput{Description: optional.Of("")})
		require.NoError(t, err)
		assert.Nil(t, got.Description)
		assert.Nil(t, f.stored(t, id).Description)
	})

	t.Run("assignee cannot reassign but can edit", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed("write report", domain.TaskStatusTodo, f.alice, f.bob)
		f.expectCommit()

		got, err := f.svc.Update(ctx, principal(f.bob), id, transfer.TaskInput{
			Status:       optional.Of("COMPLETED"),
			AssignedToID: optional.Of(f.carol.ID),
		})
		require.NoError(t, err)

		after := f.stored(t, id)
		require.NotNil(t, after.AssigneeID)
		assert.Equal(t, f.bob.ID, *after.AssigneeID)
		assert.Equal(t, domain.TaskStatusCompleted, after.Status)
		assert.Equal(t, "bob", got.AssignedToUsername)
	})

	for _, who := range []string{"creator", "admin"} {
		t.Run(who+" reassigns", func(t *testing.T) {
			f := newFixture(t)
			id := f.seed("write report", domain.TaskStatusTodo, f.alice, f.bob)
			caller := f.alice
			if who == "admin" {
				caller = f.admin
			}
			f.expectCommit()

			got, err := f.svc.Update(ctx, principal(caller), id, transfer.TaskInput{
				AssignedToID: optional.Of(f.carol.ID),
			})
			require.NoError(t, err)
			require.NotNil(t, got.AssignedToID)
			assert.Equal(t, f.carol.ID, *got.AssignedToID)
			assert.Equal(t, "carol", got.AssignedToUsername)
			assert.Equal(t, f.alice.ID, f.stored(t, id).CreatorID)
		})
	}

	t.Run("reassign to unknown user", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed("write report", domain.TaskStatusTodo, f.alice, f.bob)
		f.expectRollback()

		_, err := f.svc.Update(ctx, principal(f.alice), id, transfer.TaskInput{
			AssignedToID: optional.Of(int64(777)),
		})
		assert.ErrorIs(t, err, service.ErrAssigneeNotFound)
		assert.Equal(t, 0, f.tasks.UpdateCalls)
	})

	t.Run("unrelated user is denied", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed("write report", domain.TaskStatusTodo, f.alice, f.bob)
		f.expectRollback()

		_, err := f.svc.Update(ctx, principal(f.carol), id, transfer.TaskInput{Title: optional.Of("mine now")})
		assert.ErrorIs(t, err, service.ErrAccessDenied)
		assert.ErrorIs(t, err, service.ErrTaskNotFound)
		assert.Equal(t, 0, f.tasks.UpdateCalls)
		assert.Equal(t, "write report", f.stored(t, id).Title)
	})

	t.Run("missing task", func(t *testing.T) {
		f := newFixture(t)
		f.expectRollback()

		_, err := f.svc.Update(ctx, principal(f.admin), 404, transfer.TaskInput{Title: optional.Of("x")})
		assert.ErrorIs(t, err, service.ErrTaskNotFound)
		assert.NotErrorIs(t, err, service.ErrAccessDenied)
	})

	t.Run("invalid status rejected before any write", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed("write report", domain.TaskStatusTodo, f.alice, f.alice)

		_, err := f.svc.Update(ctx, principal(f.alice), id, transfer.TaskInput{Status: optional.Of("DONE")})
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, 0, f.tasks.UpdateCalls)
	})

	t.Run("blank title rejected", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed("write report", domain.TaskStatusTodo, f.alice, f.alice)
		f.expectRollback()

		_, err := f.svc.Update(ctx, principal(f.alice), id, transfer.TaskInput{Title: optional.Of(" ")})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Equal(t, "write report", f.stored(t, id).Title)
	})
}

func TestTaskService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("assignee only is denied", func(t *testing.T) {
		f := newFixture(t)
		id := f.seed("write report", domain.TaskStatusTodo, f.alice, f.bob)
		f.expectRollback()

		err := f.svc.Delete(ctx, principal(f.bob), id)
		assert.ErrorIs(t, err, service.ErrAccessDenied)
		assert.ErrorIs(t, err, service.ErrNotFound)
		assert.Equal(t, 1, f.tasks.Len())
	})

	for _, who := range []string{"creator", "admin"} {
		t.Run(who+" deletes", func(t *testing.T) {
			f := newFixture(t)
			id := f.seed("write report", domain.TaskStatusTodo, f.alice, f.bob)
			caller := f.alice
			if who == "admin" {
				caller = f.admin
			}
			f.expectCommit()

			require.NoError(t, f.svc.Delete(ctx, principal(caller), id))
			assert.Zero(t, f.tasks.Len())
		})
	}

	t.Run("missing task", func(t *testing.T) {
		f := newFixture(t)
		f.expectRollback()

		err := f.svc.Delete(ctx, principal(f.alice), 12)
		assert.ErrorIs(t, err, service.ErrTaskNotFound)
	})
}

func TestTaskService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	byAlice := f.seed("a1", domain.TaskStatusTodo, f.alice, f.alice)
	toAlice := f.seed("b1", domain.TaskStatusCompleted, f.bob, f.alice)
	aliceToBob := f.seed("a2", domain.TaskStatusCompleted, f.alice, f.bob)
	bobOnly := f.seed("b2", domain.TaskStatusCompleted, f.bob, f.bob)
	unassigned := f.seed("c1", domain.TaskStatusInProgress, f.carol, nil)

	t.Run("non-admin sees created and assigned", func(t *testing.T) {
		got, err := f.svc.List(ctx, principal(f.alice))
		require.NoError(t, err)
		assert.Equal(t, []int64{byAlice, toAlice, aliceToBob}, ids(got))
	})

	t.Run("admin sees all", func(t *testing.T) {
		got, err := f.svc.List(ctx, principal(f.admin))
		require.NoError(t, err)
		assert.Equal(t, []int64{byAlice, toAlice, aliceToBob, bobOnly, unassigned}, ids(got))
	})

	t.Run("empty result is not nil", func(t *testing.T) {
		stranger := f.users.AddUser("dave", authz.RoleUser)
		got, err := f.svc.List(ctx, principal(stranger))
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("filter by status intersects visibility", func(t *testing.T) {
		got, err := f.svc.ListByStatus(ctx, principal(f.alice), "COMPLETED")
		require.NoError(t, err)
		assert.Equal(t, []int64{toAlice, aliceToBob}, ids(got))
		for _, task := range got {
			assert.Equal(t, "COMPLETED", task.Status)
		}
	})

	t.Run("admin filter by status", func(t *testing.T) {
		got, err := f.svc.ListByStatus(ctx, principal(f.admin), "COMPLETED")
		require.NoError(t, err)
		assert.Equal(t, []int64{toAlice, aliceToBob, bobOnly}, ids(got))
	})

	t.Run("unrecognized status", func(t *testing.T) {
		_, err := f.svc.ListByStatus(ctx, principal(f.alice), "completed")
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestTaskService_StoreFailure(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("connection reset")
	f.tasks.ListFn = func(context.Context, store.TaskFilter) ([]*domain.Task, error) {
		return nil, boom
	}

	_, err := f.svc.List(context.Background(), principal(f.alice))
	require.Error(t, err)
	var serviceErr *service.TaskServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, "list_tasks", serviceErr.Operation)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, service.ErrNotFound)
}
