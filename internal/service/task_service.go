package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/platform/logger"
	"github.com/taskboard/taskboard-api/internal/store"
)

// CreateTaskInput carries the fields a client may supply when creating a task.
// Priority defaults to medium and AssignedTo defaults to the acting user.
type CreateTaskInput struct {
	Title       string
	Description string
	DueDate     time.Time
	Priority    domain.Priority
	AssignedTo  uuid.UUID
}

// UpdateTaskInput is the whitelisted patch for task field edits. Only non-nil
// fields are applied; createdBy, id and timestamps are never client-writable.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *domain.Priority
	AssignedTo  *uuid.UUID
}

// IsEmpty reports whether the patch contains no fields at all.
func (p UpdateTaskInput) IsEmpty() bool {
	return p.Title == nil &&
		p.Description == nil &&
		p.DueDate == nil &&
		p.Priority == nil &&
		p.AssignedTo == nil
}

// TaskService provides the task lifecycle operations, enforcing the
// authorization policy on every task-scoped call. The order of checks is
// always: task existence first, then policy, so a missing task yields a
// not-found error rather than leaking a policy decision.
type TaskService interface {
	// Create validates the input, fills defaults and persists a new task.
	Create(ctx context.Context, actor *domain.User, input CreateTaskInput) (*domain.TaskDetail, error)

	// Get returns a single task visible to the actor.
	Get(ctx context.Context, actor *domain.User, id uuid.UUID) (*domain.TaskDetail, error)

	// List returns the tasks visible to the actor, newest-created first.
	// Admins see every task; other users see tasks they created or are
	// assigned to.
	List(ctx context.Context, actor *domain.User) ([]*domain.TaskDetail, error)

	// Update applies a whitelisted field patch to a task the actor created.
	Update(ctx context.Context, actor *domain.User, id uuid.UUID, patch UpdateTaskInput) (*domain.TaskDetail, error)

	// UpdateStatus moves a task to a new status. Allowed for the creator and
	// the assignee.
	UpdateStatus(ctx context.Context, actor *domain.User, id uuid.UUID, status domain.Status) (*domain.TaskDetail, error)

	// UpdatePriority changes a task's priority. Allowed for the creator only.
	UpdatePriority(ctx context.Context, actor *domain.User, id uuid.UUID, priority domain.Priority) (*domain.TaskDetail, error)

	// Delete hard-deletes a task the actor created.
	Delete(ctx context.Context, actor *domain.User, id uuid.UUID) error
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	taskStore store.TaskStore
	userStore store.UserStore
	logger    *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(
	taskStore store.TaskStore,
	userStore store.UserStore,
	log *slog.Logger,
) (TaskService, error) {
	if taskStore == nil {
		return nil, errors.New("task store cannot be nil")
	}
	if userStore == nil {
		return nil, errors.New("user store cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &taskServiceImpl{
		taskStore: taskStore,
		userStore: userStore,
		logger:    log.With(slog.String("component", "task_service")),
	}, nil
}

// Create implements TaskService.Create.
func (s *taskServiceImpl) Create(
	ctx context.Context,
	actor *domain.User,
	input CreateTaskInput,
) (*domain.TaskDetail, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.Allowed(actor, nil, domain.ActionCreate) {
		return nil, domain.ErrForbidden
	}

	// An explicitly named assignee must reference an existing user.
	if input.AssignedTo != uuid.Nil && input.AssignedTo != actor.ID {
		if _, err := s.userStore.GetByID(ctx, input.AssignedTo); err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return nil, domain.NewValidationError("assigned_to", "does not reference an existing user", nil)
			}
			return nil, NewTaskServiceError("create", "failed to resolve assignee", err)
		}
	}

	task, err := domain.NewTask(
		input.Title,
		input.Description,
		input.DueDate,
		input.Priority,
		input.AssignedTo,
		actor.ID,
	)
	if err != nil {
		return nil, err
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		return nil, NewTaskServiceError("create", "failed to persist task", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("created_by", actor.ID.String()),
		slog.String("assigned_to", task.AssignedTo.String()))

	detail, err := s.taskStore.GetByID(ctx, task.ID)
	if err != nil {
		return nil, NewTaskServiceError("create", "failed to load created task", err)
	}
	return detail, nil
}

// Get implements TaskService.Get.
func (s *taskServiceImpl) Get(
	ctx context.Context,
	actor *domain.User,
	id uuid.UUID,
) (*domain.TaskDetail, error) {
	detail, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.Allowed(actor, &detail.Task, domain.ActionReadOne) {
		return nil, domain.ErrForbidden
	}

	return detail, nil
}

// List implements TaskService.List.
func (s *taskServiceImpl) List(
	ctx context.Context,
	actor *domain.User,
) ([]*domain.TaskDetail, error) {
	if !domain.Allowed(actor, nil, domain.ActionReadMany) {
		return nil, domain.ErrForbidden
	}

	if actor.IsAdmin() {
		return s.taskStore.ListAll(ctx)
	}
	return s.taskStore.ListForUser(ctx, actor.ID)
}

// Update implements TaskService.Update.
func (s *taskServiceImpl) Update(
	ctx context.Context,
	actor *domain.User,
	id uuid.UUID,
	patch UpdateTaskInput,
) (*domain.TaskDetail, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if patch.IsEmpty() {
		return nil, domain.NewValidationError("patch", "must contain at least one field", nil)
	}

	detail, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.Allowed(actor, &detail.Task, domain.ActionUpdateFields) {
		return nil, domain.ErrForbidden
	}

	task := detail.Task
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.DueDate != nil {
		task.DueDate = *patch.DueDate
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.AssignedTo != nil {
		if _, err := s.userStore.GetByID(ctx, *patch.AssignedTo); err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return nil, domain.NewValidationError("assigned_to", "does not reference an existing user", nil)
			}
			return nil, NewTaskServiceError("update", "failed to resolve assignee", err)
		}
		task.AssignedTo = *patch.AssignedTo
	}
	task.UpdatedAt = time.Now().UTC()

	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.taskStore.Update(ctx, &task); err != nil {
		return nil, NewTaskServiceError("update", "failed to persist task", err)
	}

	log.Info("task updated",
		slog.String("task_id", task.ID.String()),
		slog.String("actor_id", actor.ID.String()))

	return s.taskStore.GetByID(ctx, id)
}

// UpdateStatus implements TaskService.UpdateStatus.
func (s *taskServiceImpl) UpdateStatus(
	ctx context.Context,
	actor *domain.User,
	id uuid.UUID,
	status domain.Status,
) (*domain.TaskDetail, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !status.IsValid() {
		return nil, domain.NewValidationError(
			"status",
			fmt.Sprintf("must be one of pending, in-progress, completed, rejected; got %q", status),
			nil,
		)
	}

	detail, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.Allowed(actor, &detail.Task, domain.ActionUpdateStatus) {
		return nil, domain.ErrForbidden
	}

	task := detail.Task
	task.Status = status
	task.UpdatedAt = time.Now().UTC()

	if err := s.taskStore.Update(ctx, &task); err != nil {
		return nil, NewTaskServiceError("update_status", "failed to persist task", err)
	}

	log.Info("task status updated",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(status)),
		slog.String("actor_id", actor.ID.String()))

	return s.taskStore.GetByID(ctx, id)
}

// UpdatePriority implements TaskService.UpdatePriority.
func (s *taskServiceImpl) UpdatePriority(
	ctx context.Context,
	actor *domain.User,
	id uuid.UUID,
	priority domain.Priority,
) (*domain.TaskDetail, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !priority.IsValid() {
		return nil, domain.NewValidationError(
			"priority",
			fmt.Sprintf("must be one of low, medium, high; got %q", priority),
			nil,
		)
	}

	detail, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.Allowed(actor, &detail.Task, domain.ActionUpdatePriority) {
		return nil, domain.ErrForbidden
	}

	task := detail.Task
	task.Priority = priority
	task.UpdatedAt = time.Now().UTC()

	if err := s.taskStore.Update(ctx, &task); err != nil {
		return nil, NewTaskServiceError("update_priority", "failed to persist task", err)
	}

	log.Info("task priority updated",
		slog.String("task_id", task.ID.String()),
		slog.String("priority", string(priority)),
		slog.String("actor_id", actor.ID.String()))

	return s.taskStore.GetByID(ctx, id)
}

// Delete implements TaskService.Delete.
func (s *taskServiceImpl) Delete(
	ctx context.Context,
	actor *domain.User,
	id uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	detail, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !domain.Allowed(actor, &detail.Task, domain.ActionDelete) {
		return domain.ErrForbidden
	}

	if err := s.taskStore.Delete(ctx, id); err != nil {
		return NewTaskServiceError("delete", "failed to delete task", err)
	}

	log.Info("task deleted",
		slog.String("task_id", id.String()),
		slog.String("actor_id", actor.ID.String()))

	return nil
}
