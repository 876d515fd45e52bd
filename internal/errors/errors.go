package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a Quill error code.
type ErrorCode string

const (
	ErrInvalidInput  ErrorCode = "INVALID_INPUT" // 400
	ErrNotFound      ErrorCode = "NOT_FOUND"     // 404
	ErrRateLimited   ErrorCode = "RATE_LIMITED"  // 429
	ErrConfiguration ErrorCode = "CONFIGURATION" // 500
	ErrUpstream      ErrorCode = "UPSTREAM"      // 500
	ErrInternal      ErrorCode = "INTERNAL"      // 500
	ErrTimeout       ErrorCode = "TIMEOUT"       // 504
	ErrStorage       ErrorCode = "STORAGE"       // never surfaced, logged only
)

// QuillError represents a structured error with code, status, and details.
type QuillError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *QuillError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidInput creates a 400 error for user-correctable input problems.
func NewInvalidInput(msg string) *QuillError {
	return &QuillError{
		Code:    ErrInvalidInput,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing history entry.
func NewNotFound(id string) *QuillError {
	return &QuillError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("history entry not found: %s", id),
		Details: map[string]any{"id": id},
	}
}

// NewRateLimited creates a 429 error. retryAfter is in whole seconds.
func NewRateLimited(retryAfter int) *QuillError {
	return &QuillError{
		Code:    ErrRateLimited,
		Status:  429,
		Message: "Too many requests. Please wait a moment and try again.",
		Details: map[string]any{"retry_after": retryAfter},
	}
}

// NewConfiguration creates a 500 error for operator-correctable setup problems.
func NewConfiguration(msg string) *QuillError {
	return &QuillError{
		Code:    ErrConfiguration,
		Status:  500,
		Message: msg,
	}
}

// NewUpstream creates a 500 error when the provider answered with a failure status.
func NewUpstream(msg string) *QuillError {
	if msg == "" {
		msg = "provider request failed"
	}
	return &QuillError{
		Code:    ErrUpstream,
		Status:  500,
		Message: msg,
	}
}

// NewTimeout creates a 504 error when the provider exceeded its deadline.
func NewTimeout() *QuillError {
	return &QuillError{
		Code:    ErrTimeout,
		Status:  504,
		Message: "The provider took too long to respond.",
	}
}

// NewStorage wraps a byte store failure. These are logged, never returned to users.
func NewStorage(op string, err error) *QuillError {
	msg := op
	if err != nil {
		msg = fmt.Sprintf("%s: %v", op, err)
	}
	return &QuillError{
		Code:    ErrStorage,
		Status:  500,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *QuillError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &QuillError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a QuillError with the given code.
func Is(err error, code ErrorCode) bool {
	var qErr *QuillError
	if stderrors.As(err, &qErr) {
		return qErr.Code == code
	}
	return false
}

// As returns err as a QuillError, wrapping anything else as internal.
func As(err error) *QuillError {
	var qErr *QuillError
	if stderrors.As(err, &qErr) {
		return qErr
	}
	return NewInternal(err)
}

// RetryAfter returns the retry-after seconds carried by a rate limit error, or 0.
func RetryAfter(err error) int {
	var qErr *QuillError
	if !stderrors.As(err, &qErr) || qErr.Code != ErrRateLimited {
		return 0
	}
	if v, ok := qErr.Details["retry_after"].(int); ok {
		return v
	}
	return 0
}
