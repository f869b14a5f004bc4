package validation

import (
	"errors"
	"testing"
	"time"

	"campus-events/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name    string    `json:"name" validate:"required,min=2"`
	Email   string    `json:"email" validate:"required,email"`
	Message string    `json:"message" validate:"min=10,max=50"`
	Start   time.Time `json:"starts_at"`
	End     time.Time `json:"ends_at" validate:"gtefield=Start"`
}

func validSample() sample {
	now := time.Now()
	return sample{Name: "Ada", Email: "ada@example.edu", Message: "hello there, team", Start: now, End: now.Add(time.Hour)}
}

func TestStructAcceptsValidInput(t *testing.T) {
	assert.NoError(t, Struct(validSample()))
}

func TestStructReportsJSONFieldName(t *testing.T) {
	s := validSample()
	s.Message = "too short"

	err := Struct(s)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "message", appErr.Field)
	assert.Equal(t, "message must be at least 10 characters", appErr.Message)
}

func TestStructEmail(t *testing.T) {
	s := validSample()
	s.Email = "not-an-email"

	err := Struct(s)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "email", appErr.Field)
}

func TestStructFieldOrdering(t *testing.T) {
	s := validSample()
	s.End = s.Start.Add(-time.Minute)

	err := Struct(s)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "ends_at", appErr.Field)
	assert.Equal(t, "ends_at must not be before start", appErr.Message)
}
