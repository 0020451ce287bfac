// Package apperror defines the error taxonomy shared by services and handlers.
// Repositories and services return these (optionally wrapped) so handlers can
// translate them into HTTP status codes with errors.Is / errors.As.
package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors for the broad failure categories.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrAuthentication    = errors.New("authentication failed")
	ErrAuthorization     = errors.New("authorization failed")
	ErrIllegalTransition = errors.New("illegal transition")
)

// ValidationError reports malformed or inconsistent input. The caller is
// expected to correct the request and resubmit.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validation builds a field-scoped ValidationError
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// AuthorizationError reports an actor whose role is insufficient for the
// requested action.
type AuthorizationError struct {
	Role   string
	Action string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("role %q may not perform %q", e.Role, e.Action)
}

func (e *AuthorizationError) Unwrap() error { return ErrAuthorization }

// IllegalTransitionError reports a transition request against a requisition
// whose current status has no edge to the requested one. It names both states
// so the caller can see exactly what was refused.
type IllegalTransitionError struct {
	From string
	To   string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %q to %q", e.From, e.To)
}

func (e *IllegalTransitionError) Unwrap() error { return ErrIllegalTransition }
