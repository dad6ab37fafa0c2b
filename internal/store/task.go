package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/taskboard/taskboard-api/internal/domain"
)

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity if the creator or assignee does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task with its creator and assignee expanded.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskDetail, error)

	// ListAll returns every task, newest-created first.
	ListAll(ctx context.Context) ([]*domain.TaskDetail, error)

	// ListForUser returns the tasks the user created or is assigned to,
	// newest-created first.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.TaskDetail, error)

	// Update persists the task's mutable fields (title, description, due
	// date, priority, status, assignee) and bumps updated_at.
	// Returns ErrTaskNotFound if the task does not exist and
	// ErrInvalidEntity if the new assignee does not exist.
	Update(ctx context.Context, task *domain.Task) error

	// Delete hard-deletes a task by its ID.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a TaskStore bound to the provided transaction.
	WithTx(tx *sql.Tx) TaskStore
}
