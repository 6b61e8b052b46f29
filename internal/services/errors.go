package services

import (
	"errors"
	"fmt"

	"github.com/deskspace/deskspace/internal/store"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrUpstream        = errors.New("upstream failure")

	// ErrBadCredentials covers both an unknown email and a wrong password.
	ErrBadCredentials = fmt.Errorf("invalid email or password: %w", ErrUnauthenticated)
)

// ValidationError is a client mistake with a human-readable message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// UpstreamError wraps a storage or database failure. Public, when set, is
// safe to show to the client; Err never is.
type UpstreamError struct {
	Op     string
	Public string
	Err    error
}

func (e *UpstreamError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *UpstreamError) Unwrap() []error { return []error{ErrUpstream, e.Err} }

func upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

// storeErr maps store.ErrNotFound to ErrNotFound and anything else to an
// upstream failure.
func storeErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return upstream(op, err)
}
