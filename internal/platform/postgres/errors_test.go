package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/taskboard/taskboard-api/internal/platform/postgres"
	"github.com/taskboard/taskboard-api/internal/store"
)

func pgError(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ConstraintName: constraint}
}

func TestMapError(t *testing.T) {
	t.Parallel()

	t.Run("nil passes through", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, postgres.MapError(nil))
	})

	t.Run("no rows becomes not found", func(t *testing.T) {
		t.Parallel()

		err := postgres.MapError(fmt.Errorf("query user: %w", sql.ErrNoRows))
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("unique violation becomes duplicate", func(t *testing.T) {
		t.Parallel()

		err := postgres.MapError(pgError("23505", "users_email_key"))
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("foreign key violation becomes invalid entity", func(t *testing.T) {
		t.Parallel()

		err := postgres.MapError(pgError("23503", "tasks_assigned_to_fkey"))
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
		assert.Contains(t, err.Error(), "tasks_assigned_to_fkey")
	})

	t.Run("check violation becomes invalid entity", func(t *testing.T) {
		t.Parallel()

		err := postgres.MapError(pgError("23514", "tasks_status_check"))
		assert.ErrorIs(t, err, store.ErrInvalidEntity)
	})

	t.Run("unrelated errors pass through unchanged", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("connection reset")
		assert.Equal(t, cause, postgres.MapError(cause))
	})
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	emailErr := fmt.Errorf("insert user: %w", pgError("23505", "users_email_key"))

	assert.True(t, postgres.IsUniqueViolation(emailErr, ""))
	assert.True(t, postgres.IsUniqueViolation(emailErr, "users_email_key"))
	assert.False(t, postgres.IsUniqueViolation(emailErr, "users_username_key"))
	assert.False(t, postgres.IsUniqueViolation(pgError("23503", ""), ""))
	assert.False(t, postgres.IsUniqueViolation(errors.New("boom"), ""))
}

func TestIsForeignKeyViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, postgres.IsForeignKeyViolation(pgError("23503", "tasks_created_by_fkey")))
	assert.False(t, postgres.IsForeignKeyViolation(pgError("23505", "")))
	assert.False(t, postgres.IsForeignKeyViolation(errors.New("boom")))
}

// fakeResult implements sql.Result for CheckRowsAffected tests.
type fakeResult struct {
	rows int64
	err  error
}

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return r.rows, r.err }

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	t.Run("rows affected is fine", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, postgres.CheckRowsAffected(fakeResult{rows: 1}, "task"))
	})

	t.Run("zero rows is not found", func(t *testing.T) {
		t.Parallel()

		err := postgres.CheckRowsAffected(fakeResult{rows: 0}, "task")
		assert.ErrorIs(t, err, store.ErrNotFound)
		assert.Contains(t, err.Error(), "task")
	})

	t.Run("nil result errors", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, postgres.CheckRowsAffected(nil, "task"))
	})

	t.Run("rows affected failure surfaces", func(t *testing.T) {
		t.Parallel()

		err := postgres.CheckRowsAffected(fakeResult{err: errors.New("driver quirk")}, "task")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, store.ErrNotFound)
	})
}
