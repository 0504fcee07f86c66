package plangraph

import (
	"time"

	"github.com/planloom/planloom/internal/events"
	"github.com/planloom/planloom/internal/types"
)

// Event payload shapes. These are a stability contract for audit and
// visualization consumers; nodes and edges inside payloads are copies,
// never aggregate internals.

// NodeCreatedPayload accompanies node.created.
type NodeCreatedPayload struct {
	Node *Node `json:"node"`
}

// NodeUpdatedPayload accompanies node.updated. Changes carries the
// patch that was applied.
type NodeUpdatedPayload struct {
	Node    *Node      `json:"node"`
	Changes NodeUpdate `json:"changes"`
}

// NodeRemovedPayload accompanies node.removed.
type NodeRemovedPayload struct {
	NodeID types.ID `json:"nodeId"`
}

// EdgeCreatedPayload accompanies edge.created.
type EdgeCreatedPayload struct {
	Edge *Edge `json:"edge"`
}

// EdgeRemovedPayload accompanies edge.removed.
type EdgeRemovedPayload struct {
	EdgeID types.ID `json:"edgeId"`
}

// StatusChangedPayload accompanies status.changed.
type StatusChangedPayload struct {
	New PlanStatus `json:"new"`
	Old PlanStatus `json:"old"`
}

// publish wraps a payload in the event envelope and hands it to the
// sink. Callers publish strictly after the mutation is applied.
func (p *Plan) publish(eventType events.EventType, payload any) {
	p.sink.Publish(events.Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		PlanID:    p.id,
		Payload:   payload,
	})
}

func (p *Plan) publishNodeCreated(node *Node) {
	p.publish(events.EventNodeCreated, NodeCreatedPayload{Node: node.Clone()})
}

func (p *Plan) publishNodeUpdated(node *Node, changes NodeUpdate) {
	p.publish(events.EventNodeUpdated, NodeUpdatedPayload{Node: node.Clone(), Changes: changes})
}

func (p *Plan) publishNodeRemoved(nodeID types.ID) {
	p.publish(events.EventNodeRemoved, NodeRemovedPayload{NodeID: nodeID})
}

func (p *Plan) publishEdgeCreated(edge *Edge) {
	p.publish(events.EventEdgeCreated, EdgeCreatedPayload{Edge: edge.Clone()})
}

func (p *Plan) publishEdgeRemoved(edgeID types.ID) {
	p.publish(events.EventEdgeRemoved, EdgeRemovedPayload{EdgeID: edgeID})
}

func (p *Plan) publishStatusChanged(newStatus, oldStatus PlanStatus) {
	p.publish(events.EventStatusChanged, StatusChangedPayload{New: newStatus, Old: oldStatus})
}
