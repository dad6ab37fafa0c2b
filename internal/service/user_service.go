package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskboard/taskboard-api/internal/domain"
	"github.com/taskboard/taskboard-api/internal/platform/logger"
	"github.com/taskboard/taskboard-api/internal/redact"
	"github.com/taskboard/taskboard-api/internal/service/auth"
	"github.com/taskboard/taskboard-api/internal/store"
)

// UserService provides registration, authentication and admin-only user
// management.
type UserService interface {
	// Register creates a new account with the default user role. The
	// client-supplied role, if any, is ignored; elevation is a separate
	// admin-only operation. Returns store.ErrEmailExists or
	// store.ErrUsernameExists on duplicates.
	Register(ctx context.Context, username, email, password string) (*domain.User, error)

	// Authenticate verifies an email/password pair. Every failure mode
	// (unknown email, wrong password, deactivated account) yields
	// domain.ErrUnauthorized so callers cannot enumerate accounts.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// List returns every user. Admin only.
	List(ctx context.Context, actor *domain.User) ([]*domain.User, error)

	// SetRole changes a user's role. Admin only.
	SetRole(ctx context.Context, actor *domain.User, userID uuid.UUID, role domain.Role) (*domain.User, error)

	// SetActive deactivates or reactivates an account. Admin only.
	SetActive(ctx context.Context, actor *domain.User, userID uuid.UUID, active bool) (*domain.User, error)

	// Delete hard-deletes an account. Admin only; admins cannot delete
	// themselves. The user's tasks are removed with the account.
	Delete(ctx context.Context, actor *domain.User, userID uuid.UUID) error
}

// userServiceImpl implements the UserService interface.
type userServiceImpl struct {
	userStore store.UserStore
	hasher    auth.PasswordHasher
	verifier  auth.PasswordVerifier
	db        *sql.DB
	logger    *slog.Logger
}

// NewUserService creates a new UserService.
// It returns an error if any of the required dependencies are nil.
func NewUserService(
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	db *sql.DB,
	log *slog.Logger,
) (UserService, error) {
	if userStore == nil {
		return nil, errors.New("user store cannot be nil")
	}
	if hasher == nil {
		return nil, errors.New("password hasher cannot be nil")
	}
	if verifier == nil {
		return nil, errors.New("password verifier cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &userServiceImpl{
		userStore: userStore,
		hasher:    hasher,
		verifier:  verifier,
		db:        db,
		logger:    log.With(slog.String("component", "user_service")),
	}, nil
}

// Register implements UserService.Register.
func (s *userServiceImpl) Register(
	ctx context.Context,
	username, email, password string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(username, email, password)
	if err != nil {
		return nil, err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	create := func(ctx context.Context, st store.UserStore) error {
		return st.Create(ctx, user)
	}

	// Use a transaction when a real database is wired; unit tests inject a
	// nil *sql.DB alongside an in-memory store.
	if s.db != nil {
		err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			return create(ctx, s.userStore.WithTx(tx))
		})
	} else {
		err = create(ctx, s.userStore)
	}

	if err != nil {
		if store.IsDuplicateError(err) {
			log.Debug("registration rejected: duplicate identity",
				slog.String("username", username))
		} else {
			log.Error("failed to create user", slog.String("error", redact.Error(err)))
		}
		return nil, err
	}

	log.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username))

	return user, nil
}

// Authenticate implements UserService.Authenticate.
func (s *userServiceImpl) Authenticate(
	ctx context.Context,
	email, password string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Debug("login rejected: unknown email")
			return nil, domain.ErrUnauthorized
		}
		log.Error("failed to look up user for login", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login rejected: password mismatch",
			slog.String("user_id", user.ID.String()))
		return nil, domain.ErrUnauthorized
	}

	if !user.Active {
		log.Warn("login rejected: account deactivated",
			slog.String("user_id", user.ID.String()))
		return nil, domain.ErrUnauthorized
	}

	return user, nil
}

// GetByID implements UserService.GetByID.
func (s *userServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userStore.GetByID(ctx, id)
}

// List implements UserService.List.
func (s *userServiceImpl) List(ctx context.Context, actor *domain.User) ([]*domain.User, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.userStore.List(ctx)
}

// SetRole implements UserService.SetRole.
func (s *userServiceImpl) SetRole(
	ctx context.Context,
	actor *domain.User,
	userID uuid.UUID,
	role domain.Role,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if actor == nil || !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if !role.IsValid() {
		return nil, domain.NewValidationError("role", "must be user or admin", nil)
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	user.UpdatedAt = time.Now().UTC()
	if err := s.userStore.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Info("user role changed",
		slog.String("user_id", userID.String()),
		slog.String("role", string(role)),
		slog.String("actor_id", actor.ID.String()))

	return user, nil
}

// SetActive implements UserService.SetActive.
func (s *userServiceImpl) SetActive(
	ctx context.Context,
	actor *domain.User,
	userID uuid.UUID,
	active bool,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if actor == nil || !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Active = active
	user.UpdatedAt = time.Now().UTC()
	if err := s.userStore.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Info("user active flag changed",
		slog.String("user_id", userID.String()),
		slog.Bool("active", active),
		slog.String("actor_id", actor.ID.String()))

	return user, nil
}

// Delete implements UserService.Delete.
func (s *userServiceImpl) Delete(
	ctx context.Context,
	actor *domain.User,
	userID uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if actor == nil || !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	if actor.ID == userID {
		return domain.NewValidationError("id", "cannot delete your own account", nil)
	}

	if err := s.userStore.Delete(ctx, userID); err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to delete user",
				slog.String("error", redact.Error(err)),
				slog.String("user_id", userID.String()))
		}
		return err
	}

	log.Info("user deleted",
		slog.String("user_id", userID.String()),
		slog.String("actor_id", actor.ID.String()))

	return nil
}
