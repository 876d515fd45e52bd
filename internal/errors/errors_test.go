package errors

import (
	"fmt"
	"testing"
)

func TestQuillError_Error(t *testing.T) {
	err := &QuillError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "history entry not found",
	}

	expected := "NOT_FOUND: history entry not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestConstructors_Status(t *testing.T) {
	tests := []struct {
		name   string
		err    *QuillError
		code   ErrorCode
		status int
	}{
		{"invalid input", NewInvalidInput("input is required"), ErrInvalidInput, 400},
		{"not found", NewNotFound("01ABC"), ErrNotFound, 404},
		{"rate limited", NewRateLimited(12), ErrRateLimited, 429},
		{"configuration", NewConfiguration("Missing API key"), ErrConfiguration, 500},
		{"upstream", NewUpstream("quota exceeded"), ErrUpstream, 500},
		{"timeout", NewTimeout(), ErrTimeout, 504},
		{"internal", NewInternal(fmt.Errorf("boom")), ErrInternal, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.code)
			}
			if tt.err.Status != tt.status {
				t.Errorf("Status = %d, want %d", tt.err.Status, tt.status)
			}
			if tt.err.Message == "" {
				t.Error("Message should not be empty")
			}
		})
	}
}

func TestNewUpstream_FallbackMessage(t *testing.T) {
	err := NewUpstream("")
	if err.Message != "provider request failed" {
		t.Errorf("Message = %q, want fallback", err.Message)
	}
}

func TestNewInternal_NilError(t *testing.T) {
	err := NewInternal(nil)
	if err.Message != "internal error" {
		t.Errorf("Message = %q, want %q", err.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	err := NewTimeout()
	if !Is(err, ErrTimeout) {
		t.Error("Is(timeout, ErrTimeout) = false, want true")
	}
	if Is(err, ErrUpstream) {
		t.Error("Is(timeout, ErrUpstream) = true, want false")
	}

	wrapped := fmt.Errorf("dispatch: %w", err)
	if !Is(wrapped, ErrTimeout) {
		t.Error("Is should see through wrapping")
	}

	if Is(fmt.Errorf("plain"), ErrInternal) {
		t.Error("Is(plain error) = true, want false")
	}
}

func TestAs_WrapsUnknownErrors(t *testing.T) {
	got := As(fmt.Errorf("socket closed"))
	if got.Code != ErrInternal {
		t.Errorf("Code = %q, want %q", got.Code, ErrInternal)
	}

	orig := NewInvalidInput("bad")
	if As(orig) != orig {
		t.Error("As should return the original QuillError")
	}
}

func TestRetryAfter(t *testing.T) {
	if got := RetryAfter(NewRateLimited(42)); got != 42 {
		t.Errorf("RetryAfter = %d, want 42", got)
	}
	if got := RetryAfter(NewTimeout()); got != 0 {
		t.Errorf("RetryAfter(timeout) = %d, want 0", got)
	}
}
