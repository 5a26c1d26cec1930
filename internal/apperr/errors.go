// Package apperr defines the error taxonomy shared by services and handlers.
// Services wrap these sentinels with context; handlers map them to HTTP
// statuses with errors.Is instead of matching on message text.
package apperr

import "errors"

var (
	// ErrNotAuthenticated - no session token, or the session expired.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrNotAuthorized - role or ownership check failed.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotFound - a referenced entity is absent.
	ErrNotFound = errors.New("not found")

	// ErrConflict - an entity is not in the expected state for the
	// operation (booking not pending, tier/event mismatch, role already
	// selected).
	ErrConflict = errors.New("invalid state")

	// ErrValidation - malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrInsufficientInventory - requested quantity exceeds the tier's
	// remaining availability.
	ErrInsufficientInventory = errors.New("not enough tickets available")

	// ErrUpstream - the identity or payment provider call failed or
	// returned unparseable data.
	ErrUpstream = errors.New("upstream provider error")
)
