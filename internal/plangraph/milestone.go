package plangraph

import (
	"time"

	"github.com/planloom/planloom/internal/types"
)

// ApproveMilestoneNode records one approval on a milestone node and
// returns the resulting node value; the input node is not modified.
// The approval fails when userID is not in the approver list or has
// already approved. The milestone completes when every approver has
// approved (RequireAllApprovers) or on the first approval otherwise.
// The returned node carries Version+1 and, on completion,
// status completed.
func ApproveMilestoneNode(node *Node, userID, comment string) (*Node, error) {
	if node == nil {
		return nil, NewSpecError("milestone node is nil")
	}
	if node.Type != NodeTypeMilestone {
		return nil, NewSpecErrorf("node %s is not a milestone", node.ID)
	}

	if !containsString(node.Approvers, userID) {
		return nil, NewUnauthorizedApproverError(node.ID, userID)
	}
	for _, approval := range node.Approvals {
		if approval.UserID == userID {
			return nil, NewDuplicateApprovalError(node.ID, userID)
		}
	}

	now := time.Now().UTC()
	result := node.Clone()
	result.Approvals = append(result.Approvals, Approval{
		UserID:     userID,
		ApprovedAt: now,
		Comment:    comment,
	})
	if milestoneComplete(result) {
		result.Status = NodeStatusCompleted
	}
	result.Version++
	result.UpdatedAt = now

	return result, nil
}

// milestoneComplete applies the completion rule to the node's recorded
// approvals.
func milestoneComplete(node *Node) bool {
	if node.RequireAllApprovers {
		return len(node.Approvals) == len(node.Approvers)
	}
	return len(node.Approvals) > 0
}

// ApproveMilestone records an approval on the stored milestone node and
// publishes node.updated. Returns a copy of the updated node.
func (p *Plan) ApproveMilestone(id types.ID, userID, comment string) (*Node, error) {
	node, ok := p.nodes[id]
	if !ok {
		return nil, NewNodeNotFoundError(id)
	}

	result, err := ApproveMilestoneNode(node, userID, comment)
	if err != nil {
		return nil, err
	}
	p.nodes[id] = result

	p.logger.Debug("milestone approved",
		"plan_id", p.id,
		"node_id", id,
		"approved_by", userID,
		"completed", result.Status == NodeStatusCompleted,
	)

	changes := NodeUpdate{}
	if result.Status != node.Status {
		status := result.Status
		changes.Status = &status
	}
	p.publishNodeUpdated(result, changes)

	return result.Clone(), nil
}

// AutoApproveDue returns copies of the milestone nodes whose automatic
// approval deadline has passed without completion: AutoApproveAfterHours
// is set, the node is not completed, and now is at or past
// DueDate + AutoApproveAfterHours. The engine only reports; acting on
// the result is the caller's decision.
func (p *Plan) AutoApproveDue(now time.Time) []*Node {
	due := make([]*Node, 0)
	for _, node := range p.sortedNodes() {
		if node.Type != NodeTypeMilestone {
			continue
		}
		if node.AutoApproveAfterHours <= 0 || node.DueDate == nil {
			continue
		}
		if node.Status == NodeStatusCompleted {
			continue
		}
		deadline := node.DueDate.Add(time.Duration(node.AutoApproveAfterHours) * time.Hour)
		if !now.Before(deadline) {
			due = append(due, node.Clone())
		}
	}
	return due
}

// containsString reports whether list contains value.
func containsString(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
