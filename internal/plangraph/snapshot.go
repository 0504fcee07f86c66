package plangraph

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/planloom/planloom/internal/types"
)

// Snapshot is the wire shape of a serialized plan graph. Every
// timestamp, top-level and embedded, is encoded as RFC 3339.
type Snapshot struct {
	ID          types.ID   `json:"id" yaml:"id"`
	ClientID    string     `json:"clientId" yaml:"clientId"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Status      PlanStatus `json:"status" yaml:"status"`
	StartDate   *time.Time `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty" yaml:"endDate,omitempty"`

	Nodes []*Node `json:"nodes" yaml:"nodes"`
	Edges []*Edge `json:"edges" yaml:"edges"`

	ApprovedBy      string     `json:"approvedBy,omitempty" yaml:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty" yaml:"approvedAt,omitempty"`
	ApprovalComment string     `json:"approvalComment,omitempty" yaml:"approvalComment,omitempty"`
	RejectedBy      string     `json:"rejectedBy,omitempty" yaml:"rejectedBy,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty" yaml:"rejectedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty" yaml:"rejectionReason,omitempty"`

	Version   int       `json:"version" yaml:"version"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Export produces a snapshot of the full aggregate. Nodes and edges are
// deep copies in creation order; mutating the snapshot cannot affect
// the plan.
func (p *Plan) Export() *Snapshot {
	return &Snapshot{
		ID:          p.id,
		ClientID:    p.clientID,
		Name:        p.name,
		Description: p.description,
		Status:      p.status,
		StartDate:   cloneTime(p.startDate),
		EndDate:     cloneTime(p.endDate),

		Nodes: p.Nodes(),
		Edges: p.Edges(),

		ApprovedBy:      p.approvedBy,
		ApprovedAt:      cloneTime(p.approvedAt),
		ApprovalComment: p.approvalComment,
		RejectedBy:      p.rejectedBy,
		RejectedAt:      cloneTime(p.rejectedAt),
		RejectionReason: p.rejectionReason,

		Version:   p.version,
		CreatedAt: p.createdAt,
		UpdatedAt: p.updatedAt,
	}
}

// Import reconstructs a plan from a snapshot. Restore is trusted: node
// and edge records are bulk-loaded without re-running AddNode/AddEdge
// validation, and no events are published. Structural integrity is
// still enforced; a snapshot with duplicate ids or edges referencing
// missing nodes is rejected.
func Import(snapshot *Snapshot, opts ...Option) (*Plan, error) {
	if snapshot == nil {
		return nil, NewSnapshotError("snapshot is nil")
	}
	if err := snapshot.validate(); err != nil {
		return nil, err
	}

	p, err := New(PlanConfig{
		ClientID:    snapshot.ClientID,
		Name:        snapshot.Name,
		Description: snapshot.Description,
		StartDate:   snapshot.StartDate,
		EndDate:     snapshot.EndDate,
	}, opts...)
	if err != nil {
		return nil, WrapGraphError(ErrCodeSnapshotInvalid, "snapshot plan shell is invalid", err)
	}

	p.id = snapshot.ID
	p.status = snapshot.Status
	p.version = snapshot.Version
	p.createdAt = snapshot.CreatedAt
	p.updatedAt = snapshot.UpdatedAt
	p.approvedBy = snapshot.ApprovedBy
	p.approvedAt = cloneTime(snapshot.ApprovedAt)
	p.approvalComment = snapshot.ApprovalComment
	p.rejectedBy = snapshot.RejectedBy
	p.rejectedAt = cloneTime(snapshot.RejectedAt)
	p.rejectionReason = snapshot.RejectionReason

	for _, node := range snapshot.Nodes {
		p.nodes[node.ID] = node.Clone()
	}
	for _, edge := range snapshot.Edges {
		p.edges[edge.ID] = edge.Clone()
	}

	return p, nil
}

// validate checks the structural integrity a restore depends on:
// usable identity, unique ids, and edges whose endpoints exist in the
// snapshot.
func (s *Snapshot) validate() error {
	if s.ID.IsZero() {
		return NewSnapshotError("snapshot has no plan id")
	}

	nodeIDs := make(map[types.ID]bool, len(s.Nodes))
	for _, node := range s.Nodes {
		if node == nil || node.ID.IsZero() {
			return NewSnapshotError("snapshot contains a node without an id")
		}
		if nodeIDs[node.ID] {
			err := NewSnapshotError(fmt.Sprintf("duplicate node id: %s", node.ID))
			err.NodeID = node.ID
			return err
		}
		nodeIDs[node.ID] = true
	}

	edgeIDs := make(map[types.ID]bool, len(s.Edges))
	for _, edge := range s.Edges {
		if edge == nil || edge.ID.IsZero() {
			return NewSnapshotError("snapshot contains an edge without an id")
		}
		if edgeIDs[edge.ID] {
			err := NewSnapshotError(fmt.Sprintf("duplicate edge id: %s", edge.ID))
			err.EdgeID = edge.ID
			return err
		}
		edgeIDs[edge.ID] = true

		if !nodeIDs[edge.SourceID] {
			err := NewSnapshotError(fmt.Sprintf("edge %s references missing source node %s", edge.ID, edge.SourceID))
			err.EdgeID = edge.ID
			err.NodeID = edge.SourceID
			return err
		}
		if !nodeIDs[edge.TargetID] {
			err := NewSnapshotError(fmt.Sprintf("edge %s references missing target node %s", edge.ID, edge.TargetID))
			err.EdgeID = edge.ID
			err.NodeID = edge.TargetID
			return err
		}
	}

	return nil
}

// ToJSON serializes the snapshot as indented JSON.
func (s *Snapshot) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, WrapGraphError(ErrCodeSnapshotInvalid, "failed to encode snapshot as JSON", err)
	}
	return data, nil
}

// ToYAML serializes the snapshot as YAML.
func (s *Snapshot) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, WrapGraphError(ErrCodeSnapshotInvalid, "failed to encode snapshot as YAML", err)
	}
	return data, nil
}

// SnapshotFromJSON parses a snapshot from JSON.
func SnapshotFromJSON(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, WrapGraphError(ErrCodeSnapshotInvalid, "failed to decode snapshot JSON", err)
	}
	return &s, nil
}

// SnapshotFromYAML parses a snapshot from YAML.
func SnapshotFromYAML(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, WrapGraphError(ErrCodeSnapshotInvalid, "failed to decode snapshot YAML", err)
	}
	return &s, nil
}
