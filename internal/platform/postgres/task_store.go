package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/platform/logger"
	"github.com/taskboard/taskboard-api/internal/redact"
	"github.com/taskboard/taskboard-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. The connection (or transaction) is managed by the
// caller. If logger is nil, the default logger is used.
func NewPostgresTaskStore(db store.DBTX, log *slog.Logger) *PostgresTaskStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: log.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create.
// Returns store.ErrInvalidEntity if the creator or assignee does not exist
// (foreign key violation).
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, title, description, due_date, priority, status, assigned_to, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		task.DueDate,
		task.Priority,
		task.Status,
		task.AssignedTo,
		task.CreatedBy,
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task creation",
				slog.String("task_id", task.ID.String()),
				slog.String("assigned_to", task.AssignedTo.String()))
			return fmt.Errorf("%w: referenced user not found", store.ErrInvalidEntity)
		}

		log.Error("failed to create task",
			slog.String("error", redact.Error(err)),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("created_by", task.CreatedBy.String()))
	return nil
}

// taskDetailQuery selects task rows with the creator and assignee expanded.
// The two joins are on NOT NULL foreign keys, so inner joins are safe.
const taskDetailQuery = `
	SELECT t.id, t.title, t.description, t.due_date, t.priority, t.status,
	       t.assigned_to, t.created_by, t.created_at, t.updated_at,
	       c.id, c.username, c.email,
	       a.id, a.username, a.email
	FROM tasks t
	JOIN users c ON c.id = t.created_by
	JOIN users a ON a.id = t.assigned_to
`

// scanTaskDetail scans a single joined task row.
func scanTaskDetail(row interface{ Scan(dest ...any) error }) (*domain.TaskDetail, error) {
	var detail domain.TaskDetail
	var priority, status string

	err := row.Scan(
		&detail.ID,
		&detail.Title,
		&detail.Description,
		&detail.DueDate,
		&priority,
		&status,
		&detail.AssignedTo,
		&detail.CreatedBy,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.Creator.ID,
		&detail.Creator.Username,
		&detail.Creator.Email,
		&detail.Assignee.ID,
		&detail.Assignee.Username,
		&detail.Assignee.Email,
	)
	if err != nil {
		return nil, err
	}

	detail.Priority = domain.Priority(priority)
	detail.Status = domain.Status(status)
	return &detail, nil
}

// GetByID implements store.TaskStore.GetByID.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskDetail, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := taskDetailQuery + ` WHERE t.id = $1`

	detail, err := scanTaskDetail(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", redact.Error(err)),
			slog.String("task_id", id.String()))
		return nil, MapError(err)
	}

	return detail, nil
}

// ListAll implements store.TaskStore.ListAll.
func (s *PostgresTaskStore) ListAll(ctx context.Context) ([]*domain.TaskDetail, error) {
	query := taskDetailQuery + ` ORDER BY t.created_at DESC`
	return s.queryTasks(ctx, query)
}

// ListForUser implements store.TaskStore.ListForUser.
func (s *PostgresTaskStore) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.TaskDetail, error) {
	query := taskDetailQuery + `
	WHERE t.created_by = $1 OR t.assigned_to = $1
	ORDER BY t.created_at DESC`
	return s.queryTasks(ctx, query, userID)
}

// queryTasks runs a task-detail query and scans all rows.
func (s *PostgresTaskStore) queryTasks(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.TaskDetail, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.TaskDetail
	for rows.Next() {
		detail, err := scanTaskDetail(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", redact.Error(err)))
			return nil, MapError(err)
		}
		tasks = append(tasks, detail)
	}

	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", redact.Error(err)))
		return nil, MapError(err)
	}

	return tasks, nil
}

// Update implements store.TaskStore.Update.
// created_by and created_at are deliberately absent from the SET list;
// the creator is immutable after creation.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, due_date = $3, priority = $4,
		    status = $5, assigned_to = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.DueDate,
		task.Priority,
		task.Status,
		task.AssignedTo,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during task update",
				slog.String("task_id", task.ID.String()),
				slog.String("assigned_to", task.AssignedTo.String()))
			return fmt.Errorf("%w: referenced user not found", store.ErrInvalidEntity)
		}

		log.Error("failed to update task",
			slog.String("error", redact.Error(err)),
			slog.String("task_id", task.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		return store.ErrTaskNotFound
	}

	log.Info("task updated", slog.String("task_id", task.ID.String()))
	return nil
}

// Delete implements store.TaskStore.Delete.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", redact.Error(err)),
			slog.String("task_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, "task"); err != nil {
		return store.ErrTaskNotFound
	}

	log.Info("task deleted", slog.String("task_id", id.String()))
	return nil
}

// WithTx implements store.TaskStore.WithTx.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}
