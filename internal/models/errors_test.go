package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesByCode(t *testing.T) {
	t.Parallel()

	err := NewValidationError("text is required")
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrConstraintViolation)

	wrapped := fmt.Errorf("create message: %w", NewNotFoundError("User", 7))
	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, CodeNotFound, Code(wrapped))
}

func TestAppError_UnwrapsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("duplicate key value violates unique constraint")
	err := NewConstraintViolationError("Username already taken", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrConstraintViolation)
	assert.Contains(t, err.Error(), "Username already taken")
}

func TestCode_DefaultsToInternal(t *testing.T) {
	t.Parallel()

	assert.Equal(t, CodeInternal, Code(errors.New("boom")))
	assert.Equal(t, CodeUnauthorized, Code(NewUnauthorizedError("nope")))
}

func TestUser_String(t *testing.T) {
	t.Parallel()

	u := User{ID: 3, Username: "u1", Email: "u1@email.com"}
	assert.Equal(t, "<User #3: u1, u1@email.com>", fmt.Sprint(u))
}
