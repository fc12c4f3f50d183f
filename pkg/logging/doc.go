// Package logging provides structured logging utilities for the rollout
// orchestrator.
//
// # Overview
//
// This package wraps the standard library slog package with project defaults
// and conventions for consistent logging across the CLI and library packages.
// It supports environment-based log level configuration, module/version
// context injection, and automatic source location tracking for debug logs.
//
// # Log Levels
//
// Supported log levels (case-insensitive):
//   - DEBUG: Detailed diagnostic information with source location
//   - INFO: General informational messages (default)
//   - WARN/WARNING: Warning messages for potentially problematic situations
//   - ERROR: Error messages for failures requiring attention
//
// # Usage
//
// Setting the default logger (recommended):
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("rollout", version)
//
//	    slog.Info("starting rollout", "namespace", ns, "image", image)
//	    slog.Error("stage failed", "error", err, "stage", stage)
//	}
//
// Setting explicit log level:
//
//	logging.SetDefaultStructuredLoggerWithLevel("rollout", "v1.0.0", "warn")
//
// # Environment Configuration
//
// The LOG_LEVEL environment variable controls logging verbosity when no
// explicit level is supplied:
//
//	LOG_LEVEL=debug rollout deploy --image ghcr.io/org/app:42
package logging
