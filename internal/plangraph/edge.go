package plangraph

import (
	"time"

	"github.com/planloom/planloom/internal/types"
)

// EdgeType defines the relationship an edge encodes.
type EdgeType string

const (
	// EdgeTypeDependsOn marks the target node as a prerequisite of the
	// source node. Only depends_on edges participate in cycle prevention
	// and dependency traversal.
	EdgeTypeDependsOn EdgeType = "depends_on"

	// EdgeTypeRepurposes marks the source node as derived from the
	// target node's material.
	EdgeTypeRepurposes EdgeType = "repurposes"

	// EdgeTypeFollows marks the source node as sequenced after the
	// target node.
	EdgeTypeFollows EdgeType = "follows"

	// EdgeTypePartOf marks the source node as contained in the target
	// node, typically content inside a campaign.
	EdgeTypePartOf EdgeType = "part_of"
)

// String returns the string representation of the edge type.
func (t EdgeType) String() string {
	return string(t)
}

// Valid reports whether the edge type is one of the known relationships.
func (t EdgeType) Valid() bool {
	switch t {
	case EdgeTypeDependsOn, EdgeTypeRepurposes, EdgeTypeFollows, EdgeTypePartOf:
		return true
	default:
		return false
	}
}

// Edge represents a directed, typed relationship between two plan nodes.
// Edges are immutable once created.
type Edge struct {
	ID       types.ID       `json:"id" yaml:"id"`
	SourceID types.ID       `json:"sourceId" yaml:"sourceId"`
	TargetID types.ID       `json:"targetId" yaml:"targetId"`
	Type     EdgeType       `json:"type" yaml:"type"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Clone returns a deep copy of the edge.
func (e *Edge) Clone() *Edge {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Metadata = cloneMetadata(e.Metadata)
	return &clone
}

// Touches reports whether the edge has the given node as either
// endpoint.
func (e *Edge) Touches(nodeID types.ID) bool {
	return e.SourceID == nodeID || e.TargetID == nodeID
}
