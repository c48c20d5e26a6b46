package dcf

import (
	"errors"
	"fmt"
)

// Validation failure reasons. A ValidationError wraps exactly one of these,
// so callers can branch with errors.Is.
var (
	ErrMissing                  = errors.New("value is missing")
	ErrNotNumeric               = errors.New("value is not a number")
	ErrNotFinite                = errors.New("value is not finite")
	ErrNotInteger               = errors.New("value is not an integer")
	ErrNotPositive              = errors.New("value must be greater than zero")
	ErrDiscountNotAboveTerminal = errors.New("discount rate must be greater than terminal growth")
	ErrOutOfBounds              = errors.New("value is outside the configured bounds")
)

// ErrInvariantViolation is wrapped by every InvariantViolation.
var ErrInvariantViolation = errors.New("invariant violation")

// ValidationError reports a single rejected input field.
type ValidationError struct {
	Field  string
	Reason error
	Value  interface{}
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("invalid %s: %v (%s)", e.Field, e.Reason, e.Detail)
	}
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// InvariantViolation is returned by Compute when it receives assumptions that
// could never have passed validation. It signals a caller bug, not bad user
// input.
type InvariantViolation struct {
	Field  string
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("%v: %s: %s", ErrInvariantViolation, e.Field, e.Detail)
}

func (e *InvariantViolation) Unwrap() error {
	return ErrInvariantViolation
}
