package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidTarget, "namespace is not a DNS label")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeInvalidTarget {
		t.Errorf("expected code %s, got %s", ErrCodeInvalidTarget, err.Code)
	}
	if err.Message != "namespace is not a DNS label" {
		t.Errorf("unexpected message: %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeApply, "manifest rejected", cause)

	if err.Code != ErrCodeApply {
		t.Errorf("expected code %s, got %s", ErrCodeApply, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("connection refused")
	ctx := map[string]interface{}{
		"path":      "/healthz",
		"namespace": "podinfo",
	}

	err := WrapWithContext(ErrCodeHealthCheckExhausted, "smoke check failed", cause, ctx)

	if err.Code != ErrCodeHealthCheckExhausted {
		t.Errorf("expected code %s, got %s", ErrCodeHealthCheckExhausted, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["path"] != "/healthz" {
		t.Errorf("expected path to be /healthz")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "without cause",
			err:      New(ErrCodeInvalidTarget, "bad input"),
			expected: "[INVALID_TARGET] bad input",
		},
		{
			name:     "with cause",
			err:      Wrap(ErrCodeRolloutFailed, "rollout failed", errors.New("image pull error")),
			expected: "[ROLLOUT_FAILED] rollout failed: image pull error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
	}{
		{ErrCodeInvalidTarget, false},
		{ErrCodeApply, false},
		{ErrCodeRolloutFailed, false},
		{ErrCodeRolloutTimeout, true},
		{ErrCodeHealthCheckExhausted, true},
		{ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.Retryable(); got != tt.retryable {
				t.Errorf("%s: expected retryable=%v, got %v", tt.code, tt.retryable, got)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	plain := errors.New("plain")
	if got := CodeOf(plain); got != ErrCodeInternal {
		t.Errorf("expected %s for plain error, got %s", ErrCodeInternal, got)
	}

	wrapped := Wrap(ErrCodeRolloutTimeout, "deadline exceeded", plain)
	if got := CodeOf(wrapped); got != ErrCodeRolloutTimeout {
		t.Errorf("expected %s, got %s", ErrCodeRolloutTimeout, got)
	}

	// Codes survive further fmt wrapping.
	outer := errors.Join(errors.New("outer"), wrapped)
	if got := CodeOf(outer); got != ErrCodeRolloutTimeout {
		t.Errorf("expected %s through join, got %s", ErrCodeRolloutTimeout, got)
	}

	if !IsRetryable(wrapped) {
		t.Error("expected wrapped timeout to be retryable")
	}
	if IsRetryable(plain) {
		t.Error("expected plain error to be non-retryable")
	}
}
