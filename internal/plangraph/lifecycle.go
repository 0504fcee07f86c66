package plangraph

import "time"

// Submit moves the plan from draft to pending_approval and clears any
// approval or rejection metadata left over from a previous review
// round.
func (p *Plan) Submit() error {
	return p.transition(PlanStatusPendingApproval, func(time.Time) {
		p.approvedBy = ""
		p.approvedAt = nil
		p.approvalComment = ""
		p.rejectedBy = ""
		p.rejectedAt = nil
		p.rejectionReason = ""
	})
}

// Approve moves the plan from pending_approval to approved, recording
// the approving user, the approval time, and an optional comment.
func (p *Plan) Approve(userID, comment string) error {
	if userID == "" {
		return NewSpecError("approving user id is required")
	}
	return p.transition(PlanStatusApproved, func(now time.Time) {
		p.approvedBy = userID
		p.approvedAt = &now
		p.approvalComment = comment
	})
}

// Reject moves the plan from pending_approval to rejected, recording
// the rejecting user, the rejection time, and the reason.
func (p *Plan) Reject(userID, reason string) error {
	if userID == "" {
		return NewSpecError("rejecting user id is required")
	}
	return p.transition(PlanStatusRejected, func(now time.Time) {
		p.rejectedBy = userID
		p.rejectedAt = &now
		p.rejectionReason = reason
	})
}

// ReturnToDraft withdraws a submitted plan or reopens a rejected one
// for revision. Recorded approval and rejection metadata stays in place
// until the next Submit.
func (p *Plan) ReturnToDraft() error {
	return p.transition(PlanStatusDraft, nil)
}

// StartExecution moves the plan from approved to executing.
func (p *Plan) StartExecution() error {
	return p.transition(PlanStatusExecuting, nil)
}

// Complete moves the plan from executing to completed.
func (p *Plan) Complete() error {
	return p.transition(PlanStatusCompleted, nil)
}

// Cancel abandons the plan from any non-terminal status.
func (p *Plan) Cancel() error {
	return p.transition(PlanStatusCancelled, nil)
}

// transition attempts one edge of the status table. An attempt outside
// the table fails with InvalidTransition and changes nothing. An
// accepted transition applies the extra effect, increments the plan
// version by exactly one, and publishes status.changed.
func (p *Plan) transition(to PlanStatus, apply func(now time.Time)) error {
	from := p.status
	if !from.CanTransitionTo(to) {
		return NewInvalidTransitionError(from, to)
	}

	now := time.Now().UTC()
	p.status = to
	if apply != nil {
		apply(now)
	}
	p.version++
	p.updatedAt = now

	p.logger.Debug("plan status changed",
		"plan_id", p.id,
		"from", from,
		"to", to,
		"plan_version", p.version,
	)
	p.publishStatusChanged(to, from)

	return nil
}
