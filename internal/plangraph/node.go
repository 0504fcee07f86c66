package plangraph

import (
	"time"

	"github.com/planloom/planloom/internal/types"
)

// NodeType defines the type of plan node.
type NodeType string

const (
	NodeTypeContent   NodeType = "content"
	NodeTypeCampaign  NodeType = "campaign"
	NodeTypeSeries    NodeType = "series"
	NodeTypeMilestone NodeType = "milestone"
)

// String returns the string representation of the node type.
func (t NodeType) String() string {
	return string(t)
}

// Valid reports whether the node type is one of the known variants.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeContent, NodeTypeCampaign, NodeTypeSeries, NodeTypeMilestone:
		return true
	default:
		return false
	}
}

// NodeStatus labels the production state of a plan node. Unlike the plan
// status, node statuses are plain labels with no guarded transitions.
type NodeStatus string

const (
	NodeStatusPending    NodeStatus = "pending"
	NodeStatusReady      NodeStatus = "ready"
	NodeStatusInProgress NodeStatus = "in_progress"
	NodeStatusCompleted  NodeStatus = "completed"
	NodeStatusFailed     NodeStatus = "failed"
	NodeStatusSkipped    NodeStatus = "skipped"
)

// String returns the string representation of the node status.
func (s NodeStatus) String() string {
	return string(s)
}

// Valid reports whether the node status is one of the known labels.
func (s NodeStatus) Valid() bool {
	switch s {
	case NodeStatusPending, NodeStatusReady, NodeStatusInProgress,
		NodeStatusCompleted, NodeStatusFailed, NodeStatusSkipped:
		return true
	default:
		return false
	}
}

// Approval records one milestone approval.
type Approval struct {
	UserID     string    `json:"userId" yaml:"userId"`
	ApprovedAt time.Time `json:"approvedAt" yaml:"approvedAt"`
	Comment    string    `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Node represents a single node in a plan graph. It is a tagged union
// over four shapes sharing a common envelope; Type selects which of the
// optional field groups is populated.
type Node struct {
	// Core identity fields
	ID          types.ID   `json:"id" yaml:"id"`
	Type        NodeType   `json:"type" yaml:"type"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Status      NodeStatus `json:"status" yaml:"status"`
	Version     int        `json:"version" yaml:"version"`

	// Content node fields
	BlueprintID string     `json:"blueprintId,omitempty" yaml:"blueprintId,omitempty"`
	Platform    string     `json:"platform,omitempty" yaml:"platform,omitempty"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty" yaml:"scheduledAt,omitempty"`
	Caption     string     `json:"caption,omitempty" yaml:"caption,omitempty"`
	Hashtags    []string   `json:"hashtags,omitempty" yaml:"hashtags,omitempty"`
	OfferID     string     `json:"offerId,omitempty" yaml:"offerId,omitempty"`
	SeriesID    types.ID   `json:"seriesId,omitempty" yaml:"seriesId,omitempty"`
	SeriesIndex int        `json:"seriesIndex,omitempty" yaml:"seriesIndex,omitempty"`

	// Campaign and series window fields. Campaigns may leave either end
	// open; series require both.
	StartDate *time.Time `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty" yaml:"endDate,omitempty"`

	// Campaign node fields
	Budget         float64  `json:"budget,omitempty" yaml:"budget,omitempty"`
	Goals          []string `json:"goals,omitempty" yaml:"goals,omitempty"`
	TargetAudience string   `json:"targetAudience,omitempty" yaml:"targetAudience,omitempty"`

	// Series node fields. BlueprintID and the window fields above are
	// shared with the other variants.
	Platforms        []string    `json:"platforms,omitempty" yaml:"platforms,omitempty"`
	Recurrence       *Recurrence `json:"recurrence,omitempty" yaml:"recurrence,omitempty"`
	CaptionTemplate  string      `json:"captionTemplate,omitempty" yaml:"captionTemplate,omitempty"`
	HashtagTemplates []string    `json:"hashtagTemplates,omitempty" yaml:"hashtagTemplates,omitempty"`

	// Milestone node fields
	DueDate               *time.Time `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Approvers             []string   `json:"approvers,omitempty" yaml:"approvers,omitempty"`
	RequireAllApprovers   bool       `json:"requireAllApprovers,omitempty" yaml:"requireAllApprovers,omitempty"`
	AutoApproveAfterHours int        `json:"autoApproveAfterHours,omitempty" yaml:"autoApproveAfterHours,omitempty"`
	Approvals             []Approval `json:"approvals,omitempty" yaml:"approvals,omitempty"`

	// Additional metadata
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Clone returns a deep copy of the node. The aggregate hands out clones
// so callers can never alias its internal storage.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	clone := *n
	clone.ScheduledAt = cloneTime(n.ScheduledAt)
	clone.StartDate = cloneTime(n.StartDate)
	clone.EndDate = cloneTime(n.EndDate)
	clone.DueDate = cloneTime(n.DueDate)
	clone.Hashtags = cloneStrings(n.Hashtags)
	clone.Goals = cloneStrings(n.Goals)
	clone.Platforms = cloneStrings(n.Platforms)
	clone.HashtagTemplates = cloneStrings(n.HashtagTemplates)
	clone.Approvers = cloneStrings(n.Approvers)
	if n.Recurrence != nil {
		r := n.Recurrence.clone()
		clone.Recurrence = &r
	}
	if n.Approvals != nil {
		clone.Approvals = make([]Approval, len(n.Approvals))
		copy(clone.Approvals, n.Approvals)
	}
	clone.Metadata = cloneMetadata(n.Metadata)
	return &clone
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}

// cloneMetadata shallow-copies a metadata map. Values are treated as
// immutable by convention.
func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
