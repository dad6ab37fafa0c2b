// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when no valid identity accompanies a request.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when an authenticated user is denied by policy.
	ErrForbidden = errors.New("forbidden")

	// ErrAccountDeactivated is returned when the resolved account is inactive.
	ErrAccountDeactivated = errors.New("account deactivated")
)

// ValidationError carries the offending field along with a reason.
// It wraps a sentinel error so callers can use errors.Is.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Unwrap returns the wrapped sentinel error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
// If err is nil the generic ErrValidation sentinel is used.
func NewValidationError(field, reason string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Reason: reason, Err: err}
}
