package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorsUnwrapToBase(t *testing.T) {
	tests := []struct {
		err  error
		base error
	}{
		{ErrEventNotFound, ErrResourceNotFound},
		{ErrEventFull, ErrConflict},
		{ErrAlreadyRegistered, ErrConflict},
		{ErrRegistrationClosed, ErrBadRequest},
		{ErrInvalidDateRange, ErrValidationFailed},
		{ErrInvalidCredentials, ErrUnauthorized},
		{ErrEmailAlreadyExists, ErrConflict},
		{ErrNewsletterAlreadySent, ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.base)
			assert.ErrorIs(t, fmt.Errorf("wrapped: %w", tt.err), tt.base)
		})
	}
}

func TestWithHelpersDoNotMutateOriginal(t *testing.T) {
	custom := ErrEventFull.WithDetails(map[string]interface{}{"maxAttendees": 10})

	assert.Nil(t, ErrEventFull.Details)
	assert.Equal(t, 10, custom.Details["maxAttendees"])
	assert.ErrorIs(t, custom, ErrEventFull)
	assert.ErrorIs(t, custom, ErrConflict)
	assert.Equal(t, CodeEventFull, custom.Code)

	field := ErrEmailAlreadyExists.WithField("contactEmail")
	assert.Equal(t, "email", ErrEmailAlreadyExists.Field)
	assert.Equal(t, "contactEmail", field.Field)
	assert.ErrorIs(t, field, ErrEmailAlreadyExists)
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("load: %w", ErrJobNotFound)

	assert.True(t, Is(err, ErrEventNotFound, ErrJobNotFound))
	assert.False(t, Is(err, ErrEventNotFound, ErrPostNotFound))
	assert.True(t, Is(err, ErrResourceNotFound))
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("score", "score must not exceed maxScore")

	var custom *CustomError
	assert.True(t, errors.As(err, &custom))
	assert.Equal(t, "score", custom.Field)
	assert.Equal(t, CodeValidationFailed, custom.Code)
	assert.ErrorIs(t, err, ErrValidationFailed)
}
