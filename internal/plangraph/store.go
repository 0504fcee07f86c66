package plangraph

import (
	"sort"
	"time"

	"github.com/planloom/planloom/internal/types"
)

// AddNode validates the spec, materializes the node, and stores it.
// Content nodes with a scheduled time are checked against the plan
// window. The node is stored with status pending at version 1; the
// returned value is a copy.
func (p *Plan) AddNode(spec NodeSpec) (*Node, error) {
	if err := spec.Validate(p.limits); err != nil {
		return nil, err
	}
	if spec.Type == NodeTypeContent && spec.Content.ScheduledAt != nil {
		if !p.withinWindow(*spec.Content.ScheduledAt) {
			return nil, NewDateRangeError(*spec.Content.ScheduledAt, p.startDate, p.endDate)
		}
	}

	now := time.Now().UTC()
	node := spec.buildNode(types.NewNodeID(), now)
	p.nodes[node.ID] = node

	p.logger.Debug("node added",
		"plan_id", p.id,
		"node_id", node.ID,
		"node_type", node.Type,
	)
	p.publishNodeCreated(node)

	return node.Clone(), nil
}

// UpdateNode merges the set fields of the update into the stored node,
// increments the node version, and refreshes UpdatedAt. Rescheduling a
// content node re-checks the plan window.
func (p *Plan) UpdateNode(id types.ID, update NodeUpdate) error {
	node, ok := p.nodes[id]
	if !ok {
		return NewNodeNotFoundError(id)
	}
	if err := update.Validate(); err != nil {
		return err
	}
	if update.ScheduledAt != nil && !p.withinWindow(*update.ScheduledAt) {
		return NewDateRangeError(*update.ScheduledAt, p.startDate, p.endDate)
	}

	update.applyTo(node)
	node.Version++
	node.UpdatedAt = time.Now().UTC()

	p.logger.Debug("node updated",
		"plan_id", p.id,
		"node_id", node.ID,
		"node_version", node.Version,
	)
	p.publishNodeUpdated(node, update)

	return nil
}

// RemoveNode deletes the node and exactly the edges incident to it. The
// cascade is atomic from the caller's perspective: the only failure is
// an unknown id, checked before anything is touched.
func (p *Plan) RemoveNode(id types.ID) error {
	if _, ok := p.nodes[id]; !ok {
		return NewNodeNotFoundError(id)
	}

	incident := make([]*Edge, 0)
	for _, edge := range p.edges {
		if edge.Touches(id) {
			incident = append(incident, edge)
		}
	}
	sort.Slice(incident, func(i, j int) bool {
		return incident[i].ID < incident[j].ID
	})

	for _, edge := range incident {
		delete(p.edges, edge.ID)
		p.publishEdgeRemoved(edge.ID)
	}
	delete(p.nodes, id)

	p.logger.Debug("node removed",
		"plan_id", p.id,
		"node_id", id,
		"cascaded_edges", len(incident),
	)
	p.publishNodeRemoved(id)

	return nil
}

// AddEdge validates the spec, checks both endpoints exist, and for
// depends_on candidates consults the cycle guard before storing the
// edge. A rejected edge leaves the graph untouched.
func (p *Plan) AddEdge(spec EdgeSpec) (*Edge, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if _, ok := p.nodes[spec.SourceID]; !ok {
		return nil, NewSourceNodeNotFoundError(spec.SourceID)
	}
	if _, ok := p.nodes[spec.TargetID]; !ok {
		return nil, NewTargetNodeNotFoundError(spec.TargetID)
	}
	if spec.Type == EdgeTypeDependsOn && p.wouldCycle(spec.SourceID, spec.TargetID) {
		return nil, NewCycleError(spec.SourceID, spec.TargetID)
	}

	edge := &Edge{
		ID:        types.NewEdgeID(),
		SourceID:  spec.SourceID,
		TargetID:  spec.TargetID,
		Type:      spec.Type,
		Metadata:  cloneMetadata(spec.Metadata),
		CreatedAt: time.Now().UTC(),
	}
	p.edges[edge.ID] = edge

	p.logger.Debug("edge added",
		"plan_id", p.id,
		"edge_id", edge.ID,
		"edge_type", edge.Type,
	)
	p.publishEdgeCreated(edge)

	return edge.Clone(), nil
}

// RemoveEdge deletes the edge.
func (p *Plan) RemoveEdge(id types.ID) error {
	if _, ok := p.edges[id]; !ok {
		return NewEdgeNotFoundError(id)
	}
	delete(p.edges, id)

	p.logger.Debug("edge removed", "plan_id", p.id, "edge_id", id)
	p.publishEdgeRemoved(id)

	return nil
}

// GetNode returns a copy of the node.
func (p *Plan) GetNode(id types.ID) (*Node, error) {
	node, ok := p.nodes[id]
	if !ok {
		return nil, NewNodeNotFoundError(id)
	}
	return node.Clone(), nil
}

// GetEdge returns a copy of the edge.
func (p *Plan) GetEdge(id types.ID) (*Edge, error) {
	edge, ok := p.edges[id]
	if !ok {
		return nil, NewEdgeNotFoundError(id)
	}
	return edge.Clone(), nil
}

// Nodes returns copies of all nodes ordered by creation time.
func (p *Plan) Nodes() []*Node {
	nodes := p.sortedNodes()
	out := make([]*Node, len(nodes))
	for i, node := range nodes {
		out[i] = node.Clone()
	}
	return out
}

// Edges returns copies of all edges ordered by creation time.
func (p *Plan) Edges() []*Edge {
	edges := p.sortedEdges()
	out := make([]*Edge, len(edges))
	for i, edge := range edges {
		out[i] = edge.Clone()
	}
	return out
}

// NodeCount returns the number of nodes in the plan.
func (p *Plan) NodeCount() int {
	return len(p.nodes)
}

// EdgeCount returns the number of edges in the plan.
func (p *Plan) EdgeCount() int {
	return len(p.edges)
}

// sortedNodes returns internal node references ordered by creation time
// with id as the tie-break. Map iteration order is not deterministic;
// every read path sorts so output is stable.
func (p *Plan) sortedNodes() []*Node {
	nodes := make([]*Node, 0, len(p.nodes))
	for _, node := range p.nodes {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if !nodes[i].CreatedAt.Equal(nodes[j].CreatedAt) {
			return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
		}
		return nodes[i].ID < nodes[j].ID
	})
	return nodes
}

// sortedEdges returns internal edge references ordered by creation time
// with id as the tie-break.
func (p *Plan) sortedEdges() []*Edge {
	edges := make([]*Edge, 0, len(p.edges))
	for _, edge := range p.edges {
		edges = append(edges, edge)
	}
	sort.Slice(edges, func(i, j int) bool {
		if !edges[i].CreatedAt.Equal(edges[j].CreatedAt) {
			return edges[i].CreatedAt.Before(edges[j].CreatedAt)
		}
		return edges[i].ID < edges[j].ID
	})
	return edges
}
