package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error (e.g. a worker failed to start).
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the run was interrupted (e.g., SIGINT).
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It is always surfaced before any worker starts.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// InvariantError reports an internal invariant violation inside a single
// task iteration, such as multiplying matrices of mismatched shapes. It
// aborts that iteration only; the run carries on.
type InvariantError struct {
	// Operation is the name of the task or function that detected the violation.
	Operation string
	// Message describes the violated invariant.
	Message string
}

// Error returns a formatted message describing the violation.
func (e InvariantError) Error() string {
	return fmt.Sprintf("invariant violation in %s: %s", e.Operation, e.Message)
}

// NewInvariantError creates an InvariantError with a formatted message.
func NewInvariantError(operation, format string, a ...any) error {
	return InvariantError{Operation: operation, Message: fmt.Sprintf(format, a...)}
}

// WorkerError reports a worker that could not start. A WorkerError is fatal
// for the whole run.
type WorkerError struct {
	// Worker is the index of the failing worker.
	Worker int
	// Cause is the underlying error.
	Cause error
}

// Error returns a formatted message including the worker index.
func (e WorkerError) Error() string {
	return fmt.Sprintf("worker %d failed to start: %v", e.Worker, e.Cause)
}

// Unwrap returns the original wrapped error.
func (e WorkerError) Unwrap() error { return e.Cause }

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps an error returned by a run to the process exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var configErr ConfigError
	if errors.As(err, &configErr) {
		return ExitErrorConfig
	}
	if IsContextError(err) {
		return ExitErrorCanceled
	}
	return ExitErrorGeneric
}
