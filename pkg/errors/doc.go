// Package errors provides structured error types for better observability
// and programmatic error handling across the rollout orchestrator.
//
// Every terminal failure of a rollout attempt maps to one of the error codes
// defined here; the code determines whether re-invoking the whole sequence is
// worthwhile (see ErrorCode.Retryable).
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeApply,
//	    "failed to apply manifest",
//	    applyErr,
//	    map[string]interface{}{
//	        "manifest":  path,
//	        "namespace": ns,
//	    },
//	)
package errors
