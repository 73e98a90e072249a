package service

import (
	"errors"
	"sort"
	"strings"
)

// Error kinds. Every error a service returns on purpose wraps one of these,
// so transports can classify with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

var (
	// ErrInvalidCredentials deliberately does not say whether the user exists.
	ErrInvalidCredentials = newError(ErrUnauthorized, "Invalid username or password")
	ErrInvalidToken       = newError(ErrUnauthorized, "Unauthorized: Invalid token")
	ErrTokenExpired       = newError(ErrUnauthorized, "Unauthorized: Token expired")
	ErrUnknownTokenUser   = newError(ErrUnauthorized, "User not found")

	ErrUserNotFound    = newError(ErrNotFound, "User not found")
	ErrTaskNotFound    = newError(ErrNotFound, "Task not found")
	ErrTrackerNotFound = newError(ErrNotFound, "Tracker not found")

	ErrNotYourAccount = newError(ErrForbidden, "Forbidden: Not your account")
	ErrNotYourTask    = newError(ErrForbidden, "Forbidden: Not your task")
	ErrNotYourTracker = newError(ErrForbidden, "Forbidden: Not your tracker")
	ErrTaskNotOwned   = newError(ErrForbidden, "Forbidden: Task not found or not yours")

	ErrUsernameTaken = newError(ErrConflict, "Username already exists")
	ErrEmailTaken    = newError(ErrConflict, "Email already registered")
)

// Error is a classified error whose message is safe to show to API clients.
type Error struct {
	kind error
	msg  string
}

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// ValidationError lists invalid input fields keyed by JSON path.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation failed: " + strings.Join(keys, ", ")
}

// invalid builds a ValidationError for a single field.
func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}
