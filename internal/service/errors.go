package service

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for the core operations. Callers classify failures
// with errors.Is; the HTTP layer maps each kind to a status code.
var (
	// ErrNotFound indicates an unknown activity, user, score, or invitation.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the acting user is not allowed to perform the
	// operation, typically because they are not a participant.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict indicates the operation contradicts current state, such
	// as adding a participant twice or writing in the wrong activity mode.
	ErrConflict = errors.New("conflict")
	// ErrValidation indicates malformed input, such as a non-positive
	// point value.
	ErrValidation = errors.New("validation failed")
)

func notFound(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func forbidden(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrForbidden)...)
}

func conflict(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}
