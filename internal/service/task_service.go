package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/proteccion/taskboard-api/internal/authz"
	"github.com/proteccion/taskboard-api/internal/domain"
	"github.com/proteccion/taskboard-api/internal/events"
	"github.com/proteccion/taskboard-api/internal/platform/logger"
	"github.com/proteccion/taskboard-api/internal/store"
	"github.com/proteccion/taskboard-api/internal/transfer"
)

// TaskService provides the task operations exposed by the API. Every method
// takes the authenticated principal explicitly.
type TaskService interface {
	// List returns every task the principal may see.
	List(ctx context.Context, p domain.Principal) ([]transfer.Task, error)

	// Get returns a single task. Missing and invisible tasks both yield
	// ErrTaskNotFound.
	Get(ctx context.Context, p domain.Principal, id int64) (transfer.Task, error)

	// Create stores a new task owned by the principal.
	Create(ctx context.Context, p domain.Principal, in transfer.TaskInput) (transfer.Task, error)

	// Update applies the fields present in in to an existing task.
	Update(ctx context.Context, p domain.Principal, id int64, in transfer.TaskInput) (transfer.Task, error)

	// Delete removes a task permanently.
	Delete(ctx context.Context, p domain.Principal, id int64) error

	// ListByStatus returns the visible tasks in the named status.
	ListByStatus(ctx context.Context, p domain.Principal, status string) ([]transfer.Task, error)
}

type taskServiceImpl struct {
	tasks    TaskRepository
	users    store.UserStore
	resolver PrincipalResolver
	emitter  events.EventEmitter
	logger   *slog.Logger
}

// TaskServiceOption configures optional TaskService behavior.
type TaskServiceOption func(*taskServiceImpl)

// WithEventEmitter makes the service publish a TaskEvent after every
// committed create, update and delete.
func WithEventEmitter(emitter events.EventEmitter) TaskServiceOption {
	return func(s *taskServiceImpl) {
		s.emitter = emitter
	}
}

// NewTaskService creates a TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	tasks TaskRepository,
	users store.UserStore,
	resolver PrincipalResolver,
	logger *slog.Logger,
	opts ...TaskServiceOption,
) (TaskService, error) {
	if tasks == nil {
		return nil, domain.NewValidationError("tasks", "cannot be nil", domain.ErrValidation)
	}
	if users == nil {
		return nil, domain.NewValidationError("users", "cannot be nil", domain.ErrValidation)
	}
	if resolver == nil {
		return nil, domain.NewValidationError("resolver", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	svc := &taskServiceImpl{
		tasks:    tasks,
		users:    users,
		resolver: resolver,
		logger:   logger.With(slog.String("component", "task_service")),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// emit publishes a task event. The mutation has already been committed, so
// failures are logged and otherwise ignored.
func (s *taskServiceImpl) emit(ctx context.Context, eventType string, taskID int64, actor string, payload interface{}) {
	if s.emitter == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewTaskEvent(eventType, taskID, actor, payload)
	if err != nil {
		log.Error("failed to build task event",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType),
			slog.Int64("task_id", taskID))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("task event handler failed",
			slog.String("error", err.Error()),
			slog.String("event_type", eventType),
			slog.Int64("task_id", taskID))
	}
}

// subject resolves p to the authorization subject. Roles come from the
// token; the user id comes from the user record.
func (s *taskServiceImpl) subject(ctx context.Context, p domain.Principal) (authz.Subject, error) {
	user, err := s.resolver.Resolve(ctx, p.Username)
	if err != nil {
		return authz.Subject{}, err
	}
	return authz.Subject{UserID: user.ID, Roles: p.Roles}, nil
}

func resourceOf(t *domain.Task) authz.Resource {
	return authz.Resource{CreatorID: t.CreatorID, AssigneeID: t.AssigneeID}
}

// List implements TaskService.List.
func (s *taskServiceImpl) List(ctx context.Context, p domain.Principal) ([]transfer.Task, error) {
	return s.list(ctx, p, nil)
}

// ListByStatus implements TaskService.ListByStatus.
func (s *taskServiceImpl) ListByStatus(
	ctx context.Context,
	p domain.Principal,
	status string,
) ([]transfer.Task, error) {
	parsed, err := domain.ParseTaskStatus(status)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, p, &parsed)
}

func (s *taskServiceImpl) list(
	ctx context.Context,
	p domain.Principal,
	status *domain.TaskStatus,
) ([]transfer.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	subj, err := s.subject(ctx, p)
	if err != nil {
		return nil, err
	}

	filter := store.TaskFilter{Status: status}
	if !authz.SeesAll(subj) {
		filter.VisibleTo = &subj.UserID
	}

	tasks, err := s.tasks.List(ctx, filter)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("username", p.Username))
		return nil, NewTaskServiceError("list_tasks", "failed to load tasks", err)
	}

	log.Debug("listed tasks",
		slog.String("username", p.Username),
		slog.Bool("all", filter.VisibleTo == nil),
		slog.Int("count", len(tasks)))
	return transfer.FromEntities(tasks), nil
}

// Get implements TaskService.Get.
func (s *taskServiceImpl) Get(ctx context.Context, p domain.Principal, id int64) (transfer.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	subj, err := s.subject(ctx, p)
	if err != nil {
		return transfer.Task{}, err
	}

	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to retrieve task",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))
		}
		return transfer.Task{}, NewTaskServiceError("get_task", "failed to load task", err)
	}

	if !authz.Allows(subj, authz.Read, resourceOf(task)) {
		log.Debug("read denied",
			slog.String("username", p.Username),
			slog.Int64("task_id", id))
		return transfer.Task{}, ErrAccessDenied
	}

	return transfer.FromEntity(task), nil
}

// Create implements TaskService.Create.
func (s *taskServiceImpl) Create(
	ctx context.Context,
	p domain.Principal,
	in transfer.TaskInput,
) (transfer.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	fields, err := transfer.ToEntity(in)
	if err != nil {
		return transfer.Task{}, err
	}
	if strings.TrimSpace(fields.Title) == "" {
		return transfer.Task{}, domain.NewValidationError("title", "must not be blank", nil)
	}
	if !fields.DueDate.IsValid() {
		return transfer.Task{}, domain.NewValidationError("dueDate", "is required", nil)
	}

	subj, err := s.subject(ctx, p)
	if err != nil {
		return transfer.Task{}, err
	}

	description := fields.Description
	if description != nil && *description == "" {
		description = nil
	}
	task, err := domain.NewTask(fields.Title, description, fields.DueDate, subj.UserID)
	if err != nil {
		return transfer.Task{}, err
	}
	if fields.Status != "" {
		task.Status = fields.Status
	}

	var created *domain.Task
	err = store.RunInTransaction(ctx, s.tasks.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		if fields.AssigneeID != nil {
			if err := s.requireUser(ctx, s.users.WithTx(tx), *fields.AssigneeID); err != nil {
				return err
			}
			task.AssigneeID = fields.AssigneeID
		}

		if err := txTasks.Create(ctx, task); err != nil {
			log.Error("failed to create task",
				slog.String("error", err.Error()),
				slog.String("username", p.Username))
			return NewTaskServiceError("create_task", "failed to save task", err)
		}

		var err error
		created, err = txTasks.GetByID(ctx, task.ID)
		if err != nil {
			return NewTaskServiceError("create_task", "failed to reload task", err)
		}
		return nil
	})
	if err != nil {
		return transfer.Task{}, NewTaskServiceError("create_task", "transaction failed", err)
	}

	log.Info("created task",
		slog.Int64("task_id", created.ID),
		slog.String("username", p.Username))
	out := transfer.FromEntity(created)
	s.emit(ctx, events.TaskCreated, created.ID, p.Username, out)
	return out, nil
}

// Update implements TaskService.Update.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	p domain.Principal,
	id int64,
	in transfer.TaskInput,
) (transfer.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	fields, err := transfer.ToEntity(in)
	if err != nil {
		return transfer.Task{}, err
	}

	subj, err := s.subject(ctx, p)
	if err != nil {
		return transfer.Task{}, err
	}

	var updated *domain.Task
	err = store.RunInTransaction(ctx, s.tasks.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		task, err := txTasks.GetByID(ctx, id)
		if err != nil {
			return NewTaskServiceError("update_task", "failed to load task", err)
		}
		res := resourceOf(task)
		if !authz.Allows(subj, authz.Update, res) {
			log.Debug("update denied",
				slog.String("username", p.Username),
				slog.Int64("task_id", id))
			return ErrAccessDenied
		}

		if _, ok := in.Title.Get(); ok {
			task.Title = fields.Title
		}
		if _, ok := in.Description.Get(); ok {
			task.Description = fields.Description
			if *fields.Description == "" {
				task.Description = nil
			}
		}
		if _, ok := in.DueDate.Get(); ok {
			task.DueDate = fields.DueDate
		}
		if _, ok := in.Status.Get(); ok {
			task.Status = fields.Status
		}
		if fields.AssigneeID != nil {
			if authz.Allows(subj, authz.Reassign, res) {
				if err := s.requireUser(ctx, s.users.WithTx(tx), *fields.AssigneeID); err != nil {
					return err
				}
				task.AssigneeID = fields.AssigneeID
			} else {
				log.Debug("ignoring reassignment without permission",
					slog.String("username", p.Username),
					slog.Int64("task_id", id))
			}
		}

		if err := task.Validate(); err != nil {
			return err
		}
		if err := txTasks.Update(ctx, task); err != nil {
			log.Error("failed to update task",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))
			return NewTaskServiceError("update_task", "failed to save task", err)
		}

		updated, err = txTasks.GetByID(ctx, id)
		if err != nil {
			return NewTaskServiceError("update_task", "failed to reload task", err)
		}
		return nil
	})
	if err != nil {
		return transfer.Task{}, NewTaskServiceError("update_task", "transaction failed", err)
	}

	log.Info("updated task", slog.Int64("task_id", id), slog.String("username", p.Username))
	out := transfer.FromEntity(updated)
	s.emit(ctx, events.TaskUpdated, id, p.Username, out)
	return out, nil
}

// Delete implements TaskService.Delete.
func (s *taskServiceImpl) Delete(ctx context.Context, p domain.Principal, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	subj, err := s.subject(ctx, p)
	if err != nil {
		return err
	}

	err = store.RunInTransaction(ctx, s.tasks.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txTasks := s.tasks.WithTx(tx)

		task, err := txTasks.GetByID(ctx, id)
		if err != nil {
			return NewTaskServiceError("delete_task", "failed to load task", err)
		}
		if !authz.Allows(subj, authz.Delete, resourceOf(task)) {
			log.Debug("delete denied",
				slog.String("username", p.Username),
				slog.Int64("task_id", id))
			return ErrAccessDenied
		}

		if err := txTasks.Delete(ctx, id); err != nil {
			log.Error("failed to delete task",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))
			return NewTaskServiceError("delete_task", "failed to delete task", err)
		}
		return nil
	})
	if err != nil {
		return NewTaskServiceError("delete_task", "transaction failed", err)
	}

	log.Info("deleted task", slog.Int64("task_id", id), slog.String("username", p.Username))
	s.emit(ctx, events.TaskDeleted, id, p.Username, nil)
	return nil
}

// requireUser returns ErrAssigneeNotFound unless a user with id exists.
func (s *taskServiceImpl) requireUser(ctx context.Context, users store.UserStore, id int64) error {
	if _, err := users.GetByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrAssigneeNotFound
		}
		return NewTaskServiceError("lookup_user", "failed to load assignee", err)
	}
	return nil
}
