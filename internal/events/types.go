package events

import (
	"time"

	"github.com/planloom/planloom/internal/types"
)

// EventType identifies the category and nature of a plan graph event.
type EventType string

// Node mutation events.
// These events track the lifecycle of individual plan nodes.
const (
	EventNodeCreated EventType = "node.created"
	EventNodeUpdated EventType = "node.updated"
	EventNodeRemoved EventType = "node.removed"
)

// Edge mutation events.
// These events track the creation and removal of graph edges, including
// edges removed by a node-removal cascade.
const (
	EventEdgeCreated EventType = "edge.created"
	EventEdgeRemoved EventType = "edge.removed"
)

// Plan lifecycle events.
const (
	EventStatusChanged EventType = "status.changed"
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	return string(t)
}

// Event represents a single plan graph mutation notification.
//
// The Payload carries a typed struct specific to the event type (defined
// next to the plan graph engine); consumers use a type assertion to access
// it. Events are JSON-serializable for audit logs.
type Event struct {
	// Type identifies the category and nature of the event.
	Type EventType `json:"type"`

	// Timestamp records when the mutation was applied.
	Timestamp time.Time `json:"timestamp"`

	// PlanID associates the event with the owning plan aggregate.
	PlanID types.ID `json:"plan_id,omitempty"`

	// Payload contains event-specific typed data (use type assertion to access).
	Payload any `json:"payload,omitempty"`
}

// Filter defines criteria for filtering events in subscriptions.
// All filter fields use AND logic; empty fields act as wildcards.
type Filter struct {
	// Types filters by event types (empty = all types).
	Types []EventType `json:"types,omitempty"`

	// PlanID filters by plan (empty = all plans).
	PlanID types.ID `json:"plan_id,omitempty"`
}

// Matches determines if the given event matches this filter's criteria.
// Empty filter fields act as wildcards that match any value.
func (f *Filter) Matches(event Event) bool {
	if len(f.Types) > 0 {
		matched := false
		for _, t := range f.Types {
			if event.Type == t {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if !f.PlanID.IsZero() && event.PlanID != f.PlanID {
		return false
	}

	return true
}
