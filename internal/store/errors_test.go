package store

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	err := translateError(&pq.Error{Code: pqUniqueViolation, Constraint: ConstraintEmail})
	assert.ErrorIs(t, err, ErrConflict)

	var conflict *ConflictError
	assert.True(t, errors.As(err, &conflict))
	assert.Equal(t, ConstraintEmail, conflict.Constraint)

	assert.ErrorIs(t, translateError(&pq.Error{Code: pqForeignKeyViolation}), ErrNotFound)

	plain := errors.New("boom")
	assert.Equal(t, plain, translateError(plain))
}
