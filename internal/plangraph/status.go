package plangraph

// PlanStatus represents the approval lifecycle status of a plan.
type PlanStatus string

const (
	// PlanStatusDraft indicates the plan is being drafted and not yet
	// submitted for approval.
	PlanStatusDraft PlanStatus = "draft"

	// PlanStatusPendingApproval indicates the plan is awaiting approval.
	PlanStatusPendingApproval PlanStatus = "pending_approval"

	// PlanStatusApproved indicates the plan has been approved and is
	// ready for execution.
	PlanStatusApproved PlanStatus = "approved"

	// PlanStatusRejected indicates the plan was rejected and needs
	// revision before another approval round.
	PlanStatusRejected PlanStatus = "rejected"

	// PlanStatusExecuting indicates the plan is currently being executed.
	PlanStatusExecuting PlanStatus = "executing"

	// PlanStatusCompleted indicates the plan finished executing.
	PlanStatusCompleted PlanStatus = "completed"

	// PlanStatusCancelled indicates the plan was abandoned.
	PlanStatusCancelled PlanStatus = "cancelled"
)

// String returns the string representation of the plan status.
func (s PlanStatus) String() string {
	return string(s)
}

// Valid returns true if the status is a known plan status.
func (s PlanStatus) Valid() bool {
	switch s {
	case PlanStatusDraft, PlanStatusPendingApproval, PlanStatusApproved,
		PlanStatusRejected, PlanStatusExecuting, PlanStatusCompleted,
		PlanStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if the status represents a terminal state
// (completed or cancelled). Rejected is not terminal: a rejected plan can
// be revised and resubmitted.
func (s PlanStatus) IsTerminal() bool {
	switch s {
	case PlanStatusCompleted, PlanStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo validates whether the current status can transition to
// the target status. It enforces the following state machine:
//
//	draft -> pending_approval, cancelled
//	pending_approval -> approved, rejected, draft, cancelled
//	approved -> executing, cancelled
//	rejected -> draft, cancelled
//	executing -> completed, cancelled
//
// Terminal states (completed, cancelled) cannot transition to any other
// state.
func (s PlanStatus) CanTransitionTo(target PlanStatus) bool {
	// Terminal states cannot transition
	if s.IsTerminal() {
		return false
	}

	allowedTransitions := map[PlanStatus][]PlanStatus{
		PlanStatusDraft: {
			PlanStatusPendingApproval,
			PlanStatusCancelled,
		},
		PlanStatusPendingApproval: {
			PlanStatusApproved,
			PlanStatusRejected,
			PlanStatusDraft,
			PlanStatusCancelled,
		},
		PlanStatusApproved: {
			PlanStatusExecuting,
			PlanStatusCancelled,
		},
		PlanStatusRejected: {
			PlanStatusDraft,
			PlanStatusCancelled,
		},
		PlanStatusExecuting: {
			PlanStatusCompleted,
			PlanStatusCancelled,
		},
	}

	allowedTargets, exists := allowedTransitions[s]
	if !exists {
		return false
	}

	for _, allowedTarget := range allowedTargets {
		if allowedTarget == target {
			return true
		}
	}

	return false
}
