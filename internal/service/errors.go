package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package for a caller mistake wraps
// exactly one of these so the transport layer can map it to a status code.
var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

// kindError carries a caller-facing message and the kind it belongs to.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// --- Error Definitions ---
var (
	ErrMissingFields      = newError(ErrValidation, "all fields are required")
	ErrPasswordTooLong    = newError(ErrValidation, "password is too long")
	ErrInvalidCredentials = newError(ErrUnauthenticated, "invalid email or password")
	ErrInvalidInvite      = newError(ErrConflict, "invalid or already used invite code")
	ErrEmailTaken         = newError(ErrConflict, "email is already registered")
	ErrInvalidRole        = newError(ErrValidation, "invalid role")
	ErrSelfDemotion       = newError(ErrValidation, "you cannot remove your own admin role")
	ErrSelfDeletion       = newError(ErrValidation, "you cannot delete yourself")
	ErrUserNotFound       = newError(ErrNotFound, "user not found")
	ErrTrainingNotFound   = newError(ErrNotFound, "training not found")
	ErrExerciseNotFound   = newError(ErrNotFound, "exercise not found")
	ErrMissingFile        = newError(ErrValidation, "no file uploaded")
	ErrUnsupportedType    = newError(ErrValidation, "unsupported file type")
	ErrFileTooLarge       = newError(ErrValidation, "file is too large")

	ErrHashingFailed = errors.New("failed to hash password")
)

// internal wraps an unexpected failure with the operation that hit it.
func internal(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
