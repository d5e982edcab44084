package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/proteccion/taskboard-api/internal/domain"
	"github.com/proteccion/taskboard-api/internal/store"
)

// MockTaskStore implements store.TaskStore in memory. Username projections
// are filled from the linked MockUserStore the way the SQL join would.
type MockTaskStore struct {
	CreateFn  func(ctx context.Context, task *domain.Task) error
	GetByIDFn func(ctx context.Context, id int64) (*domain.Task, error)
	ListFn    func(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error)
	UpdateFn  func(ctx context.Context, task *domain.Task) error
	DeleteFn  func(ctx context.Context, id int64) error

	// UpdateCalls counts successful and failed Update invocations.
	UpdateCalls int

	users  *MockUserStore
	mu     sync.Mutex
	tasks  map[int64]*domain.Task
	nextID int64
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates an empty store whose referential checks use users.
func NewMockTaskStore(users *MockUserStore) *MockTaskStore {
	return &MockTaskStore{users: users, tasks: make(map[int64]*domain.Task)}
}

// Seed stores task as-is, assigning an id when it has none, and returns the id.
func (m *MockTaskStore) Seed(task domain.Task) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task.ID == 0 {
		m.nextID++
		task.ID = m.nextID
	} else if task.ID > m.nextID {
		m.nextID = task.ID
	}
	m.tasks[task.ID] = cloneTask(&task)
	return task.ID
}

// Create implements store.TaskStore.Create.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}
	if err := m.checkRefs(task); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	now := time.Now().UTC()
	task.ID = m.nextID
	task.CreatedAt, task.UpdatedAt = now, now
	m.tasks[task.ID] = cloneTask(task)
	return nil
}

// GetByID implements store.TaskStore.GetByID.
func (m *MockTaskStore) GetByID(ctx context.Context, id int64) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	t, ok := m.tasks[id]
	m.mu.Unlock()
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return m.project(t), nil
}

// List implements store.TaskStore.List.
func (m *MockTaskStore) List(ctx context.Context, filter store.TaskFilter) ([]*domain.Task, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter)
	}

	m.mu.Lock()
	var matched []*domain.Task
	for _, t := range m.tasks {
		if filter.VisibleTo != nil && !t.IsCreatedBy(*filter.VisibleTo) && !t.IsAssignedTo(*filter.VisibleTo) {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		matched = append(matched, t)
	}
	m.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	out := make([]*domain.Task, 0, len(matched))
	for _, t := range matched {
		out = append(out, m.project(t))
	}
	return out, nil
}

// Update implements store.TaskStore.Update.
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	m.UpdateCalls++
	m.mu.Unlock()

	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	if err := task.Validate(); err != nil {
		return err
	}
	if err := m.checkRefs(task); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	updated := cloneTask(task)
	updated.CreatorID = existing.CreatorID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	m.tasks[task.ID] = updated
	return nil
}

// Delete implements store.TaskStore.Delete.
func (m *MockTaskStore) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

// WithTx returns the same store; transactions are not simulated.
func (m *MockTaskStore) WithTx(*sql.Tx) store.TaskStore {
	return m
}

// Len returns the number of stored tasks.
func (m *MockTaskStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *MockTaskStore) checkRefs(task *domain.Task) error {
	if m.users == nil {
		return nil
	}
	if m.users.usernameOf(task.CreatorID) == "" {
		return store.ErrReferenceViolation
	}
	if task.AssigneeID != nil && m.users.usernameOf(*task.AssigneeID) == "" {
		return store.ErrReferenceViolation
	}
	return nil
}

func (m *MockTaskStore) project(t *domain.Task) *domain.Task {
	cp := cloneTask(t)
	if m.users != nil {
		cp.CreatorUsername = m.users.usernameOf(cp.CreatorID)
		cp.AssigneeUsername = ""
		if cp.AssigneeID != nil {
			cp.AssigneeUsername = m.users.usernameOf(*cp.AssigneeID)
		}
	}
	return cp
}

func cloneTask(t *domain.Task) *domain.Task {
	cp := *t
	if t.Description != nil {
		d := *t.Description
		cp.Description = &d
	}
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		cp.AssigneeID = &id
	}
	return &cp
}
