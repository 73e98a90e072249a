package repository

import "errors"

var (
	// ErrNotFound is returned when a lookup by identifier matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is matched by every ConflictError.
	ErrConflict = errors.New("record already exists")
)

// ConflictError reports a unique constraint violation on Field.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	if e.Field == "" {
		return ErrConflict.Error()
	}
	return e.Field + " already exists"
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
