package internal

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planloom/planloom/internal/plangraph"
)

// Exit code constants for the CLI
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitError indicates a general error
	ExitError = 1
	// ExitInvalidPlan indicates a plan that failed validation or verification
	ExitInvalidPlan = 2
	// ExitTimeout indicates the operation timed out
	ExitTimeout = 3
	// ExitCancelled indicates the operation was cancelled
	ExitCancelled = 4
	// ExitConfigError indicates a configuration or usage error
	ExitConfigError = 10
)

// CLIError represents a CLI-specific error with an exit code
type CLIError struct {
	Code    int
	Message string
	Cause   error
}

// Error implements the error interface
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// WrapError creates a new CLIError wrapping an existing error
func WrapError(code int, message string, err error) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// NewCLIError creates a new CLIError with the given code and message
func NewCLIError(code int, message string) *CLIError {
	return &CLIError{
		Code:    code,
		Message: message,
	}
}

// HandleError handles an error and returns the appropriate exit code.
// It also prints the error message to the command's error output.
func HandleError(cmd *cobra.Command, err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, context.Canceled) {
		cmd.PrintErrln("Operation cancelled")
		return ExitCancelled
	}

	if errors.Is(err, context.DeadlineExceeded) {
		cmd.PrintErrln("Operation timed out")
		return ExitTimeout
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		cmd.PrintErrln("Error:", cliErr.Message)
		if cliErr.Cause != nil {
			verboseFlag := cmd.Flag("verbose")
			if verboseFlag != nil && verboseFlag.Changed {
				cmd.PrintErrln("Cause:", cliErr.Cause)
			}
		}
		return cliErr.Code
	}

	var defErr *plangraph.DefinitionError
	if errors.As(err, &defErr) {
		cmd.PrintErrln("Error:", defErr.Error())
		return ExitInvalidPlan
	}

	var graphErr *plangraph.GraphError
	if errors.As(err, &graphErr) {
		cmd.PrintErrln("Error:", graphErr.Error())
		return mapGraphErrorToExitCode(graphErr)
	}

	// Generic error
	cmd.PrintErrln("Error:", err)
	return ExitError
}

// mapGraphErrorToExitCode maps engine error codes to CLI exit codes.
// Graph-rule violations exit with ExitInvalidPlan; lookup and approval
// failures exit with the general error code.
func mapGraphErrorToExitCode(err *plangraph.GraphError) int {
	switch err.Code {
	case plangraph.ErrCodeCycleDetected,
		plangraph.ErrCodeInvalidSpec,
		plangraph.ErrCodeDateRange,
		plangraph.ErrCodeSnapshotInvalid,
		plangraph.ErrCodeInvalidTransition:
		return ExitInvalidPlan
	case plangraph.ErrCodeNodeNotFound,
		plangraph.ErrCodeEdgeNotFound,
		plangraph.ErrCodeSourceNodeNotFound,
		plangraph.ErrCodeTargetNodeNotFound,
		plangraph.ErrCodeUnauthorizedApprover,
		plangraph.ErrCodeDuplicateApproval:
		return ExitError
	default:
		return ExitError
	}
}

// IsVerbose checks if verbose mode is enabled via environment variable or flag.
// This is used for panic recovery to determine if stack traces should be shown.
func IsVerbose() bool {
	if os.Getenv("PLANLOOM_VERBOSE") != "" {
		return true
	}

	for _, arg := range os.Args {
		if arg == "-v" || arg == "--verbose" {
			return true
		}
	}

	return false
}
