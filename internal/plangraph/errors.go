package plangraph

import (
	"errors"
	"fmt"
	"time"

	"github.com/planloom/planloom/internal/types"
)

// GraphErrorCode identifies the specific failure class of an engine
// operation.
type GraphErrorCode string

const (
	// ErrCodeDateRange indicates a scheduled time outside the plan window.
	ErrCodeDateRange GraphErrorCode = "date_range"

	// ErrCodeNodeNotFound indicates an unknown node id.
	ErrCodeNodeNotFound GraphErrorCode = "node_not_found"

	// ErrCodeEdgeNotFound indicates an unknown edge id.
	ErrCodeEdgeNotFound GraphErrorCode = "edge_not_found"

	// ErrCodeSourceNodeNotFound indicates an edge whose source endpoint
	// does not exist.
	ErrCodeSourceNodeNotFound GraphErrorCode = "source_node_not_found"

	// ErrCodeTargetNodeNotFound indicates an edge whose target endpoint
	// does not exist.
	ErrCodeTargetNodeNotFound GraphErrorCode = "target_node_not_found"

	// ErrCodeCycleDetected indicates an edge that would close a
	// depends_on cycle.
	ErrCodeCycleDetected GraphErrorCode = "cycle_detected"

	// ErrCodeInvalidTransition indicates a plan status transition outside
	// the allowed table.
	ErrCodeInvalidTransition GraphErrorCode = "invalid_transition"

	// ErrCodeUnauthorizedApprover indicates a milestone approval by a
	// user not in the approver list.
	ErrCodeUnauthorizedApprover GraphErrorCode = "unauthorized_approver"

	// ErrCodeDuplicateApproval indicates a repeated milestone approval by
	// the same user.
	ErrCodeDuplicateApproval GraphErrorCode = "duplicate_approval"

	// ErrCodeInvalidSpec indicates a node, edge, or update specification
	// that failed validation.
	ErrCodeInvalidSpec GraphErrorCode = "invalid_spec"

	// ErrCodeSnapshotInvalid indicates a snapshot that cannot be
	// restored, such as one with edges referencing missing nodes.
	ErrCodeSnapshotInvalid GraphErrorCode = "snapshot_invalid"
)

// GraphError is the error type returned by every engine operation.
// It carries a machine-readable code plus the ids involved, and supports
// errors.Is/As matching by code.
type GraphError struct {
	// Code identifies the failure class.
	Code GraphErrorCode

	// Message is a human-readable description.
	Message string

	// NodeID is the node involved, when applicable.
	NodeID types.ID

	// EdgeID is the edge involved, when applicable.
	EdgeID types.ID

	// Cause is the underlying error, when this error wraps one.
	Cause error
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *GraphError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a GraphError with the same code.
func (e *GraphError) Is(target error) bool {
	var graphErr *GraphError
	if errors.As(target, &graphErr) {
		return e.Code == graphErr.Code
	}
	return false
}

// NewGraphError creates a GraphError with the given code and message.
func NewGraphError(code GraphErrorCode, message string) *GraphError {
	return &GraphError{
		Code:    code,
		Message: message,
	}
}

// WrapGraphError wraps an existing error with an engine error code.
func WrapGraphError(code GraphErrorCode, message string, cause error) *GraphError {
	return &GraphError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper constructors for the specific failure classes

// NewDateRangeError creates the error for a scheduled time outside the
// plan window.
func NewDateRangeError(scheduledAt time.Time, startDate, endDate *time.Time) *GraphError {
	return NewGraphError(
		ErrCodeDateRange,
		fmt.Sprintf("scheduled time %s is outside plan date range %s",
			scheduledAt.Format(time.RFC3339), formatWindow(startDate, endDate)),
	)
}

// formatWindow renders a plan window with open bounds shown as "...".
func formatWindow(startDate, endDate *time.Time) string {
	start, end := "...", "..."
	if startDate != nil {
		start = startDate.Format(time.RFC3339)
	}
	if endDate != nil {
		end = endDate.Format(time.RFC3339)
	}
	return fmt.Sprintf("[%s, %s]", start, end)
}

// NewNodeNotFoundError creates an unknown node id error.
func NewNodeNotFoundError(nodeID types.ID) *GraphError {
	err := NewGraphError(ErrCodeNodeNotFound, fmt.Sprintf("node not found: %s", nodeID))
	err.NodeID = nodeID
	return err
}

// NewEdgeNotFoundError creates an unknown edge id error.
func NewEdgeNotFoundError(edgeID types.ID) *GraphError {
	err := NewGraphError(ErrCodeEdgeNotFound, fmt.Sprintf("edge not found: %s", edgeID))
	err.EdgeID = edgeID
	return err
}

// NewSourceNodeNotFoundError creates the error for an edge source that
// does not exist.
func NewSourceNodeNotFoundError(nodeID types.ID) *GraphError {
	err := NewGraphError(ErrCodeSourceNodeNotFound, fmt.Sprintf("edge source node not found: %s", nodeID))
	err.NodeID = nodeID
	return err
}

// NewTargetNodeNotFoundError creates the error for an edge target that
// does not exist.
func NewTargetNodeNotFoundError(nodeID types.ID) *GraphError {
	err := NewGraphError(ErrCodeTargetNodeNotFound, fmt.Sprintf("edge target node not found: %s", nodeID))
	err.NodeID = nodeID
	return err
}

// NewCycleError creates the error for an edge that would close a
// depends_on cycle.
func NewCycleError(sourceID, targetID types.ID) *GraphError {
	return NewGraphError(
		ErrCodeCycleDetected,
		fmt.Sprintf("edge %s -> %s would create a dependency cycle", sourceID, targetID),
	)
}

// NewInvalidTransitionError creates the error for a plan status
// transition outside the allowed table.
func NewInvalidTransitionError(from, to PlanStatus) *GraphError {
	return NewGraphError(
		ErrCodeInvalidTransition,
		fmt.Sprintf("invalid plan status transition from %s to %s", from, to),
	)
}

// NewUnauthorizedApproverError creates the error for a milestone
// approval by a user outside the approver list.
func NewUnauthorizedApproverError(nodeID types.ID, userID string) *GraphError {
	err := NewGraphError(
		ErrCodeUnauthorizedApprover,
		fmt.Sprintf("user %s is not an approver for milestone %s", userID, nodeID),
	)
	err.NodeID = nodeID
	return err
}

// NewDuplicateApprovalError creates the error for a repeated milestone
// approval by the same user.
func NewDuplicateApprovalError(nodeID types.ID, userID string) *GraphError {
	err := NewGraphError(
		ErrCodeDuplicateApproval,
		fmt.Sprintf("user %s already approved milestone %s", userID, nodeID),
	)
	err.NodeID = nodeID
	return err
}

// NewSpecError creates a specification validation error.
func NewSpecError(message string) *GraphError {
	return NewGraphError(ErrCodeInvalidSpec, message)
}

// NewSpecErrorf creates a specification validation error with a
// formatted message.
func NewSpecErrorf(format string, args ...any) *GraphError {
	return NewGraphError(ErrCodeInvalidSpec, fmt.Sprintf(format, args...))
}

// NewSnapshotError creates a snapshot restore error.
func NewSnapshotError(message string) *GraphError {
	return NewGraphError(ErrCodeSnapshotInvalid, message)
}

// IsNodeNotFound checks if an error is an unknown node id error.
func IsNodeNotFound(err error) bool {
	var graphErr *GraphError
	if errors.As(err, &graphErr) {
		return graphErr.Code == ErrCodeNodeNotFound
	}
	return false
}

// IsCycleError checks if an error is a dependency cycle error.
func IsCycleError(err error) bool {
	var graphErr *GraphError
	if errors.As(err, &graphErr) {
		return graphErr.Code == ErrCodeCycleDetected
	}
	return false
}

// IsInvalidTransition checks if an error is an invalid status transition
// error.
func IsInvalidTransition(err error) bool {
	var graphErr *GraphError
	if errors.As(err, &graphErr) {
		return graphErr.Code == ErrCodeInvalidTransition
	}
	return false
}

// IsDateRangeError checks if an error is a scheduling window error.
func IsDateRangeError(err error) bool {
	var graphErr *GraphError
	if errors.As(err, &graphErr) {
		return graphErr.Code == ErrCodeDateRange
	}
	return false
}

// IsSpecError checks if an error is a specification validation error.
func IsSpecError(err error) bool {
	var graphErr *GraphError
	if errors.As(err, &graphErr) {
		return graphErr.Code == ErrCodeInvalidSpec
	}
	return false
}
