package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the error shape rendered to API consumers. StatusCode and
// Internal never leave the process; Code and Message map onto the response
// envelope.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Sentinels shared across handlers, middleware and services.
var (
	ErrUnauthorized   = New("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
	ErrNotFound       = New("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrBadRequest     = New("BAD_REQUEST", "Invalid request", http.StatusBadRequest)
	ErrConflict       = New("CONFLICT", "Resource already exists", http.StatusConflict)
	ErrRateLimited    = New("RATE_LIMITED", "Too many requests", http.StatusTooManyRequests)
	ErrInternalServer = New("INTERNAL_SERVER_ERROR", "Internal server error", http.StatusInternalServerError)
)

// New builds an AppError with the given wire code, client message and HTTP
// status.
func New(code, message string, statusCode int) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusCode}
}

// NewBadRequest carries a request-specific message under the BAD_REQUEST code.
func NewBadRequest(message string) *AppError {
	return New(ErrBadRequest.Code, message, ErrBadRequest.StatusCode)
}

func (e *AppError) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Internal != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	default:
		return e.Message
	}
}

// Unwrap keeps errors.Is and errors.As working through the internal cause.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal clones e with an attached cause. Sentinels stay immutable; the
// clone is what gets logged and unwrapped.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Internal = err
	return &clone
}

// FromError coerces err into an AppError for rendering, treating anything
// unrecognised as an internal server error.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternalServer.WithInternal(err)
}
