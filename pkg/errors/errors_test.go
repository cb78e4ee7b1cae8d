package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_ErrorIncludesCause(t *testing.T) {
	cause := errors.New("dial tcp: i/o timeout")
	err := NewConnectionError("failed to reach mongo", cause)

	assert.Equal(t, "CONNECTION: failed to reach mongo (caused by: dial tcp: i/o timeout)", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.NotEmpty(t, err.StackTrace)
}

func TestAppError_WithDetail(t *testing.T) {
	err := NewTransformError("resource data has no Id").
		WithDetail("stage", "Transformed").
		WithDetail("user_id", "u1")

	assert.Equal(t, "Transformed", err.Details["stage"])
	assert.Equal(t, "u1", err.Details["user_id"])
}

func TestIsType(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"config load", NewConfigLoadError("x", nil), IsConfigLoad, true},
		{"connection", NewConnectionError("x", nil), IsConnection, true},
		{"transform", NewTransformError("x"), IsTransform, true},
		{"upsert", NewUpsertError("updateOne", nil), IsUpsert, true},
		{"validation", NewValidationError("x"), IsValidation, true},
		{"wrapped upsert", fmt.Errorf("invocation failed: %w", NewUpsertError("updateOne", nil)), IsUpsert, true},
		{"plain error", errors.New("boom"), IsUpsert, false},
		{"nil", nil, IsTransform, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, ErrorTypeUpsert, TypeOf(NewUpsertError("updateOne", nil)))
	assert.Equal(t, ErrorTypeInternal, TypeOf(errors.New("boom")))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	appErr := Wrap(NewConfigLoadError("bad json", nil), "ensure config")
	require.True(t, IsConfigLoad(appErr))
	assert.Equal(t, "ensure config: bad json", GetAppError(appErr).Message)

	plain := errors.New("boom")
	wrapped := Wrapf(plain, "step %d", 3)
	assert.True(t, IsType(wrapped, ErrorTypeInternal))
	assert.ErrorIs(t, wrapped, plain)
}
