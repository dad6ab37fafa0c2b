package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role identifies the authorization level of a user.
type Role string

// Valid user roles.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid reports whether the role is one of the known values.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User validation errors. All wrap ErrValidation so callers can classify
// them with a single errors.Is check.
var (
	ErrEmptyUserID      = fmt.Errorf("%w: user ID cannot be empty", ErrValidation)
	ErrEmptyUsername    = fmt.Errorf("%w: username cannot be empty", ErrValidation)
	ErrEmptyEmail       = fmt.Errorf("%w: email cannot be empty", ErrValidation)
	ErrInvalidEmail     = fmt.Errorf("%w: invalid email format", ErrValidation)
	ErrEmptyPassword    = fmt.Errorf("%w: password cannot be empty", ErrValidation)
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least 8 characters long", ErrValidation)
	ErrPasswordTooLong  = fmt.Errorf("%w: password must be at most 72 characters long", ErrValidation)
	ErrInvalidRole      = fmt.Errorf("%w: invalid role", ErrValidation)
)

// User represents a registered user of the task board.
// The plaintext Password field is only populated transiently during
// registration; it is never serialized or persisted.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext, must be hashed before storage
	HashedPassword string    `json:"-"` // Never expose the hash in JSON
	Role           Role      `json:"role"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a User with a fresh ID, the default role and an active
// account. The caller is responsible for hashing the password before storage.
func NewUser(username, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Username:  strings.TrimSpace(username),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Password:  password,
		Role:      RoleUser,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Validate checks that the User carries valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Username == "" {
		return ErrEmptyUsername
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !validEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if !u.Role.IsValid() {
		return ErrInvalidRole
	}

	if u.Password != "" {
		if len(u.Password) < 8 {
			return ErrPasswordTooShort
		}
		// bcrypt silently truncates beyond 72 bytes
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		// Existing users loaded from storage must carry a hash.
		return ErrEmptyPassword
	}

	return nil
}

// validEmailFormat performs a minimal structural check: a single local part,
// an @, and a domain containing an interior dot.
func validEmailFormat(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
