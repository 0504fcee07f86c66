package observability

import (
	"errors"
	"fmt"
)

// ObservabilityErrorCode represents error codes specific to observability operations.
type ObservabilityErrorCode string

const (
	// ErrExporterConnection indicates failure to connect to an observability exporter.
	ErrExporterConnection ObservabilityErrorCode = "OBSERVABILITY_EXPORTER_CONNECTION"

	// ErrInvalidLogConfig indicates the logging configuration could not be applied.
	ErrInvalidLogConfig ObservabilityErrorCode = "OBSERVABILITY_INVALID_LOG_CONFIG"

	// ErrShutdownTimeout indicates a timeout occurred during graceful shutdown.
	ErrShutdownTimeout ObservabilityErrorCode = "OBSERVABILITY_SHUTDOWN_TIMEOUT"
)

// ObservabilityError represents a structured error for observability operations.
type ObservabilityError struct {
	Code    ObservabilityErrorCode
	Message string
	Cause   error
}

// Error implements the error interface, returning a formatted error message.
// Format: "[CODE] message" or "[CODE] message: cause" if cause exists.
func (e *ObservabilityError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error for error unwrapping chains.
func (e *ObservabilityError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error matches this error by error code.
func (e *ObservabilityError) Is(target error) bool {
	var obsErr *ObservabilityError
	if errors.As(target, &obsErr) {
		return e.Code == obsErr.Code
	}
	return false
}

// NewObservabilityError creates a new ObservabilityError without a cause.
func NewObservabilityError(code ObservabilityErrorCode, message string) *ObservabilityError {
	return &ObservabilityError{
		Code:    code,
		Message: message,
	}
}

// WrapObservabilityError creates a new ObservabilityError wrapping a cause.
func WrapObservabilityError(code ObservabilityErrorCode, message string, cause error) *ObservabilityError {
	return &ObservabilityError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewExporterConnectionError creates an error for a failed exporter connection.
func NewExporterConnectionError(endpoint string, cause error) *ObservabilityError {
	return &ObservabilityError{
		Code:    ErrExporterConnection,
		Message: fmt.Sprintf("failed to connect to exporter at %s", endpoint),
		Cause:   cause,
	}
}
