package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrUnauthorized", ErrUnauthorized},
		{"ErrForbidden", ErrForbidden},
		{"ErrConflict", ErrConflict},
		{"ErrAlreadySigned", ErrAlreadySigned},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUpstream", ErrUpstream},
		{"ErrNotConfigured", ErrNotConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrAlreadySigned_IsConflict(t *testing.T) {
	wrapped := fmt.Errorf("sign: %w", ErrAlreadySigned)

	assert.ErrorIs(t, wrapped, ErrConflict)
	assert.ErrorIs(t, wrapped, ErrAlreadySigned)
	assert.NotErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, "already signed", ErrAlreadySigned.Error())
}

func TestConflictError(t *testing.T) {
	err := &ConflictError{Msg: "user already exists"}

	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrAlreadySigned)
	assert.Equal(t, "user already exists", err.Error())
}

func TestValidationError(t *testing.T) {
	err := Invalid("title", "is required")

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "title: is required", err.Error())

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Equal(t, "title", verr.Field)

	assert.Equal(t, "missing signature data", Invalid("", "missing signature data").Error())
}

func TestErrors_Distinct(t *testing.T) {
	all := []error{ErrNotFound, ErrUnauthorized, ErrForbidden, ErrConflict, ErrInvalidInput, ErrUpstream, ErrNotConfigured}
	for i, a := range all {
		for j, b := range all {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
			}
		}
	}
}
