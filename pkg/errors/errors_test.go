package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	plain := New("TEST", "something failed", http.StatusBadRequest)
	assert.Equal(t, "something failed", plain.Error())

	withCause := plain.WithInternal(stdErrors.New("boom"))
	assert.Equal(t, "something failed: boom", withCause.Error())

	var nilErr *AppError
	assert.Equal(t, "<nil>", nilErr.Error())
}

func TestWithInternalLeavesSentinelUntouched(t *testing.T) {
	cause := stdErrors.New("oops")
	clone := ErrConflict.WithInternal(cause)

	require.NotSame(t, ErrConflict, clone)
	assert.Nil(t, ErrConflict.Internal)
	assert.Same(t, cause, clone.Internal)
	assert.Equal(t, ErrConflict.Code, clone.Code)
	assert.Equal(t, ErrConflict.StatusCode, clone.StatusCode)
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := stdErrors.New("root cause")
	err := ErrNotFound.WithInternal(cause)

	assert.True(t, stdErrors.Is(err, cause))

	var nilErr *AppError
	assert.Nil(t, nilErr.Unwrap())
}

func TestFromError(t *testing.T) {
	t.Run("passes AppError through", func(t *testing.T) {
		assert.Same(t, ErrNotFound, FromError(ErrNotFound))
	})

	t.Run("finds AppError behind wrapping", func(t *testing.T) {
		wrapped := stdErrors.Join(stdErrors.New("context"), ErrRateLimited)
		assert.Same(t, ErrRateLimited, FromError(wrapped))
	})

	t.Run("coerces unknown errors", func(t *testing.T) {
		raw := stdErrors.New("raw")
		out := FromError(raw)
		require.NotNil(t, out)
		assert.Equal(t, ErrInternalServer.Code, out.Code)
		assert.Same(t, raw, out.Internal)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, FromError(nil))
	})
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("invalid payload")

	assert.Equal(t, ErrBadRequest.Code, err.Code)
	assert.Equal(t, "invalid payload", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
}

func TestSentinelStatusCodes(t *testing.T) {
	tests := []struct {
		err    *AppError
		code   string
		status int
	}{
		{ErrUnauthorized, "UNAUTHORIZED", http.StatusUnauthorized},
		{ErrNotFound, "NOT_FOUND", http.StatusNotFound},
		{ErrBadRequest, "BAD_REQUEST", http.StatusBadRequest},
		{ErrConflict, "CONFLICT", http.StatusConflict},
		{ErrRateLimited, "RATE_LIMITED", http.StatusTooManyRequests},
		{ErrInternalServer, "INTERNAL_SERVER_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.StatusCode)
		})
	}
}
