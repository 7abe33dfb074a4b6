package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = fmt.Errorf("%w: invalid ID", ErrValidation)

	// ErrInvalidEmail is returned when an email address is malformed.
	ErrInvalidEmail = fmt.Errorf("%w: invalid email format", ErrValidation)

	// ErrInvalidStatus is returned when a task or subtask status is not one
	// of the allowed enum values.
	ErrInvalidStatus = fmt.Errorf("%w: invalid status", ErrValidation)

	// ErrInvalidPriority is returned when a task priority is not one of the
	// allowed enum values.
	ErrInvalidPriority = fmt.Errorf("%w: invalid priority", ErrValidation)

	// ErrUnauthorized is returned when a request carries no authenticated
	// principal.
	ErrUnauthorized = errors.New("authentication required")

	// ErrForbidden is returned when an authenticated principal lacks
	// ownership or role for an operation.
	ErrForbidden = errors.New("operation not permitted")

	// ErrImmutableField is returned when an update attempts to change a field
	// that is fixed at creation time (task creator, user task base task or
	// assignee).
	ErrImmutableField = errors.New("field cannot be changed")
)

// ValidationError carries the per-field messages produced when an entity or
// request payload fails validation. It unwraps to ErrValidation so callers
// can classify it with errors.Is.
type ValidationError struct {
	Messages []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// Unwrap returns ErrValidation to support errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a ValidationError from one or more messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}
