package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskboard/taskboard-api/internal/store"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	t.Run("specific errors wrap their category", func(t *testing.T) {
		t.Parallel()

		assert.ErrorIs(t, store.ErrUserNotFound, store.ErrNotFound)
		assert.ErrorIs(t, store.ErrTaskNotFound, store.ErrNotFound)
		assert.ErrorIs(t, store.ErrEmailExists, store.ErrDuplicate)
		assert.ErrorIs(t, store.ErrUsernameExists, store.ErrDuplicate)
	})

	t.Run("IsNotFoundError", func(t *testing.T) {
		t.Parallel()

		assert.True(t, store.IsNotFoundError(store.ErrUserNotFound))
		assert.True(t, store.IsNotFoundError(fmt.Errorf("lookup: %w", store.ErrTaskNotFound)))
		assert.False(t, store.IsNotFoundError(store.ErrEmailExists))
		assert.False(t, store.IsNotFoundError(errors.New("boom")))
		assert.False(t, store.IsNotFoundError(nil))
	})

	t.Run("IsDuplicateError", func(t *testing.T) {
		t.Parallel()

		assert.True(t, store.IsDuplicateError(store.ErrEmailExists))
		assert.True(t, store.IsDuplicateError(fmt.Errorf("insert: %w", store.ErrUsernameExists)))
		assert.False(t, store.IsDuplicateError(store.ErrUserNotFound))
		assert.False(t, store.IsDuplicateError(nil))
	})
}
