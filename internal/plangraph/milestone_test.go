package plangraph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planloom/planloom/internal/events"
	"github.com/planloom/planloom/internal/types"
)

// addMilestoneNode inserts a milestone node with the given approvers.
func addMilestoneNode(t *testing.T, p *Plan, title string, approvers []string, requireAll bool) *Node {
	t.Helper()

	node, err := p.AddNode(NodeSpec{
		Type:  NodeTypeMilestone,
		Title: title,
		Milestone: &MilestoneSpec{
			DueDate:             dateUTC(2025, time.March, 1),
			Approvers:           approvers,
			RequireAllApprovers: requireAll,
		},
	})
	require.NoError(t, err)
	return node
}

// TestPlan_ApproveMilestone_RequireAll tests that all approvers must
// sign off before completion
func TestPlan_ApproveMilestone_RequireAll(t *testing.T) {
	p := newTestPlan(t)
	milestone := addMilestoneNode(t, p, "Creative sign-off", []string{"u1", "u2"}, true)

	first, err := p.ApproveMilestone(milestone.ID, "u1", "looks good")
	require.NoError(t, err)
	assert.Equal(t, NodeStatusPending, first.Status, "waiting on u2")
	assert.Equal(t, 2, first.Version)
	require.Len(t, first.Approvals, 1)
	assert.Equal(t, "u1", first.Approvals[0].UserID)
	assert.Equal(t, "looks good", first.Approvals[0].Comment)
	assert.False(t, first.Approvals[0].ApprovedAt.IsZero())

	second, err := p.ApproveMilestone(milestone.ID, "u2", "")
	require.NoError(t, err)
	assert.Equal(t, NodeStatusCompleted, second.Status)
	assert.Equal(t, 3, second.Version)
	require.Len(t, second.Approvals, 2)
	assert.Equal(t, "u2", second.Approvals[1].UserID)

	stored, err := p.GetNode(milestone.ID)
	require.NoError(t, err)
	assert.Equal(t, NodeStatusCompleted, stored.Status)
}

// TestPlan_ApproveMilestone_AnyApprover tests completion on the first
// approval when any approver suffices
func TestPlan_ApproveMilestone_AnyApprover(t *testing.T) {
	p := newTestPlan(t)
	milestone := addMilestoneNode(t, p, "Quick check", []string{"u1", "u2"}, false)

	node, err := p.ApproveMilestone(milestone.ID, "u2", "")
	require.NoError(t, err)
	assert.Equal(t, NodeStatusCompleted, node.Status)
	require.Len(t, node.Approvals, 1)
}

// TestPlan_ApproveMilestone_Guards tests authorization and duplicate
// rules
func TestPlan_ApproveMilestone_Guards(t *testing.T) {
	t.Run("unknown node", func(t *testing.T) {
		p := newTestPlan(t)
		_, err := p.ApproveMilestone(types.NewNodeID(), "u1", "")
		assert.True(t, IsNodeNotFound(err))
	})

	t.Run("not a milestone", func(t *testing.T) {
		p := newTestPlan(t)
		content := addContentNode(t, p, "Post", dateUTC(2025, time.February, 1))

		_, err := p.ApproveMilestone(content.ID, "u1", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is not a milestone")
	})

	t.Run("user outside the approver list", func(t *testing.T) {
		p := newTestPlan(t)
		milestone := addMilestoneNode(t, p, "Guarded", []string{"u1"}, false)

		_, err := p.ApproveMilestone(milestone.ID, "intruder", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not an approver")

		stored, getErr := p.GetNode(milestone.ID)
		require.NoError(t, getErr)
		assert.Empty(t, stored.Approvals)
		assert.Equal(t, 1, stored.Version)
	})

	t.Run("double approval", func(t *testing.T) {
		p := newTestPlan(t)
		milestone := addMilestoneNode(t, p, "Once only", []string{"u1", "u2"}, true)

		_, err := p.ApproveMilestone(milestone.ID, "u1", "")
		require.NoError(t, err)

		_, err = p.ApproveMilestone(milestone.ID, "u1", "again")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already approved")

		stored, getErr := p.GetNode(milestone.ID)
		require.NoError(t, getErr)
		assert.Len(t, stored.Approvals, 1)
		assert.Equal(t, 2, stored.Version)
	})
}

// TestApproveMilestoneNode_PureFunction tests that the detached
// approval helper leaves its input untouched
func TestApproveMilestoneNode_PureFunction(t *testing.T) {
	due := dateUTC(2025, time.March, 1)
	node := &Node{
		ID:        types.NewNodeID(),
		Type:      NodeTypeMilestone,
		Title:     "Detached",
		Status:    NodeStatusPending,
		Version:   1,
		DueDate:   &due,
		Approvers: []string{"u1"},
	}

	result, err := ApproveMilestoneNode(node, "u1", "ok")
	require.NoError(t, err)

	assert.Empty(t, node.Approvals, "input unchanged")
	assert.Equal(t, 1, node.Version)
	assert.Equal(t, NodeStatusPending, node.Status)

	assert.Len(t, result.Approvals, 1)
	assert.Equal(t, 2, result.Version)
	assert.Equal(t, NodeStatusCompleted, result.Status)
}

// TestPlan_ApproveMilestone_Events tests the node.updated notification
func TestPlan_ApproveMilestone_Events(t *testing.T) {
	rec := events.NewRecorder()
	p := newTestPlan(t, WithEventSink(rec))
	milestone := addMilestoneNode(t, p, "Tracked", []string{"u1", "u2"}, true)

	rec.Reset()
	_, err := p.ApproveMilestone(milestone.ID, "u1", "")
	require.NoError(t, err)

	recorded := rec.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, events.EventNodeUpdated, recorded[0].Type)

	payload, ok := recorded[0].Payload.(NodeUpdatedPayload)
	require.True(t, ok)
	assert.Nil(t, payload.Changes.Status, "status unchanged until completion")
	assert.Len(t, payload.Node.Approvals, 1)

	rec.Reset()
	_, err = p.ApproveMilestone(milestone.ID, "u2", "")
	require.NoError(t, err)

	recorded = rec.Events()
	require.Len(t, recorded, 1)
	payload, ok = recorded[0].Payload.(NodeUpdatedPayload)
	require.True(t, ok)
	require.NotNil(t, payload.Changes.Status)
	assert.Equal(t, NodeStatusCompleted, *payload.Changes.Status)
}

// TestPlan_AutoApproveDue tests the overdue milestone report
func TestPlan_AutoApproveDue(t *testing.T) {
	addAutoMilestone := func(t *testing.T, p *Plan, title string, due time.Time, hours int) *Node {
		t.Helper()
		node, err := p.AddNode(NodeSpec{
			Type:  NodeTypeMilestone,
			Title: title,
			Milestone: &MilestoneSpec{
				DueDate:               due,
				Approvers:             []string{"u1"},
				AutoApproveAfterHours: hours,
			},
		})
		require.NoError(t, err)
		return node
	}

	p := newTestPlan(t)
	overdue := addAutoMilestone(t, p, "Overdue", dateUTC(2025, time.February, 1), 48)
	addAutoMilestone(t, p, "Still waiting", dateUTC(2025, time.February, 1), 96)
	addMilestoneNode(t, p, "Manual only", []string{"u1"}, false)
	completed := addAutoMilestone(t, p, "Already done", dateUTC(2025, time.January, 1), 1)
	_, err := p.ApproveMilestone(completed.ID, "u1", "")
	require.NoError(t, err)

	// 72 hours past the due date: past the 48h deadline, short of 96h.
	now := dateUTC(2025, time.February, 4)
	due := p.AutoApproveDue(now)
	require.Len(t, due, 1)
	assert.Equal(t, overdue.ID, due[0].ID)

	// Exactly at the deadline counts as due.
	atDeadline := dateUTC(2025, time.February, 1).Add(48 * time.Hour)
	due = p.AutoApproveDue(atDeadline)
	require.Len(t, due, 1)
	assert.Equal(t, overdue.ID, due[0].ID)

	// One second earlier it is not due yet.
	due = p.AutoApproveDue(atDeadline.Add(-time.Second))
	assert.Empty(t, due)

	// The report does not modify the stored nodes.
	stored, err := p.GetNode(overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, NodeStatusPending, stored.Status)
}
