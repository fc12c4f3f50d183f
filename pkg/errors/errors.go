// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a structured error classification.
type ErrorCode string

const (
	// ErrCodeInvalidTarget indicates a deployment request that failed validation.
	// Non-retryable: the input has to be corrected by the caller.
	ErrCodeInvalidTarget ErrorCode = "INVALID_TARGET"
	// ErrCodeApply indicates a manifest was rejected by the cluster.
	// Non-retryable without an operator fix.
	ErrCodeApply ErrorCode = "APPLY_ERROR"
	// ErrCodeRolloutFailed indicates the platform reported an unrecoverable
	// rollout error (e.g., image pull failure, progress deadline exceeded).
	ErrCodeRolloutFailed ErrorCode = "ROLLOUT_FAILED"
	// ErrCodeRolloutTimeout indicates the rollout deadline elapsed while the
	// deployment was still progressing. Retryable by re-invocation.
	ErrCodeRolloutTimeout ErrorCode = "ROLLOUT_TIMEOUT"
	// ErrCodeHealthCheckExhausted indicates a smoke check failed for all of its
	// allotted attempts. Retryable by re-invocation.
	ErrCodeHealthCheckExhausted ErrorCode = "HEALTHCHECK_EXHAUSTED"
	// ErrCodeInternal indicates an internal system error.
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Retryable reports whether re-invoking the whole rollout sequence can
// plausibly succeed for this error class. Bad input and platform-rejected
// operations are not retryable; deadline and health-check exhaustion are.
func (c ErrorCode) Retryable() bool {
	switch c {
	case ErrCodeRolloutTimeout, ErrCodeHealthCheckExhausted:
		return true
	default:
		return false
	}
}

// StructuredError provides structured error information for better observability.
// It includes an error code for programmatic handling, a human-readable message,
// the underlying cause, and optional context for debugging.
type StructuredError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// New creates a new StructuredError with the given code and message.
func New(code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
	}
}

// NewWithContext creates a new StructuredError with context information.
func NewWithContext(code ErrorCode, message string, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Context: context,
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(code ErrorCode, message string, cause error) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapWithContext wraps an error with additional context information.
func WrapWithContext(code ErrorCode, message string, cause error, context map[string]any) *StructuredError {
	return &StructuredError{
		Code:    code,
		Message: message,
		Cause:   cause,
		Context: context,
	}
}

// CodeOf extracts the ErrorCode from err, walking the wrap chain.
// Returns ErrCodeInternal when err carries no StructuredError.
func CodeOf(err error) ErrorCode {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}

// IsRetryable reports whether err classifies as retryable by re-invocation.
func IsRetryable(err error) bool {
	return CodeOf(err).Retryable()
}
