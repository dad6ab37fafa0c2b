package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/taskboard-api/internal/domain"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	t.Run("valid user gets defaults", func(t *testing.T) {
		t.Parallel()

		user, err := domain.NewUser("alice", "Alice@Example.COM", "password123")
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, "alice@example.com", user.Email, "email should be normalized to lowercase")
		assert.Equal(t, domain.RoleUser, user.Role, "registration never grants admin")
		assert.True(t, user.Active)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("whitespace is trimmed", func(t *testing.T) {
		t.Parallel()

		user, err := domain.NewUser("  bob  ", "  bob@example.com  ", "password123")
		require.NoError(t, err)
		assert.Equal(t, "bob", user.Username)
		assert.Equal(t, "bob@example.com", user.Email)
	})

	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  error
	}{
		{"empty username", "", "a@example.com", "password123", domain.ErrEmptyUsername},
		{"empty email", "alice", "", "password123", domain.ErrEmptyEmail},
		{"email without at", "alice", "example.com", "password123", domain.ErrInvalidEmail},
		{"email without domain dot", "alice", "a@example", "password123", domain.ErrInvalidEmail},
		{"empty password", "alice", "a@example.com", "", domain.ErrEmptyPassword},
		{"short password", "alice", "a@example.com", "short", domain.ErrPasswordTooShort},
		{
			"overlong password",
			"alice",
			"a@example.com",
			strings.Repeat("x", 73),
			domain.ErrPasswordTooLong,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := domain.NewUser(tc.username, tc.email, tc.password)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	t.Run("stored user with hash only is valid", func(t *testing.T) {
		t.Parallel()

		user := &domain.User{
			ID:             uuid.New(),
			Username:       "carol",
			Email:          "carol@example.com",
			HashedPassword: "$2a$10$abcdefghijklmnopqrstuv",
			Role:           domain.RoleAdmin,
			Active:         true,
		}
		assert.NoError(t, user.Validate())
	})

	t.Run("stored user without hash is invalid", func(t *testing.T) {
		t.Parallel()

		user := &domain.User{
			ID:       uuid.New(),
			Username: "carol",
			Email:    "carol@example.com",
			Role:     domain.RoleUser,
		}
		assert.ErrorIs(t, user.Validate(), domain.ErrEmptyPassword)
	})

	t.Run("unknown role is invalid", func(t *testing.T) {
		t.Parallel()

		user := &domain.User{
			ID:             uuid.New(),
			Username:       "carol",
			Email:          "carol@example.com",
			HashedPassword: "hash",
			Role:           domain.Role("superuser"),
		}
		err := user.Validate()
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidRole))
	})
}

func TestUserIsAdmin(t *testing.T) {
	t.Parallel()

	assert.True(t, (&domain.User{Role: domain.RoleAdmin}).IsAdmin())
	assert.False(t, (&domain.User{Role: domain.RoleUser}).IsAdmin())
}
