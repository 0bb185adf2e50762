package store

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a unique constraint.
var ErrConflict = errors.New("conflict")

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"

	ConstraintUsername = "users_username_key"
	ConstraintEmail    = "users_email_key"
)

// ConflictError names the unique constraint a write collided with.
type ConflictError struct {
	Constraint string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s", e.Constraint)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// translateError maps driver errors onto store sentinels.
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return &ConflictError{Constraint: pqErr.Constraint}
		case pqForeignKeyViolation:
			return ErrNotFound
		}
	}
	return err
}
