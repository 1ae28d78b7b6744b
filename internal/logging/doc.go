// Package logging provides structured logging utilities for the schedly
// application.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - PII sanitization (participant id anonymization)
//   - Consistent attribute naming across the codebase
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "timetable.refresh")
//	logger.Info("grid rebuilt",
//	    logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("collection completed",
//	    logging.ParticipantHash(string(participant)))
//
// # Security Considerations
//
// Participant ids are typically email addresses. They are hashed before
// logging to prevent PII leakage while still allowing correlation, and
// tokens are never logged directly.
package logging
