package plangraph

import "github.com/planloom/planloom/internal/types"

// Dependencies returns copies of the nodes the given node depends on:
// the targets of its outgoing depends_on edges.
func (p *Plan) Dependencies(id types.ID) ([]*Node, error) {
	if _, ok := p.nodes[id]; !ok {
		return nil, NewNodeNotFoundError(id)
	}

	deps := make([]*Node, 0)
	for _, depID := range p.dependsOnAdjacency()[id] {
		if node, ok := p.nodes[depID]; ok {
			deps = append(deps, node.Clone())
		}
	}
	return deps, nil
}

// Dependents returns copies of the nodes that depend on the given node:
// the sources of depends_on edges pointing at it.
func (p *Plan) Dependents(id types.ID) ([]*Node, error) {
	if _, ok := p.nodes[id]; !ok {
		return nil, NewNodeNotFoundError(id)
	}

	dependents := make([]*Node, 0)
	for _, depID := range p.dependsOnReverse()[id] {
		if node, ok := p.nodes[depID]; ok {
			dependents = append(dependents, node.Clone())
		}
	}
	return dependents, nil
}

// TopologicalSort returns copies of all nodes in dependency order: for
// any node, its transitive depends_on prerequisites appear before it.
// The relative order of unrelated nodes is unspecified but stable for a
// given graph. Depth-first postorder over the depends_on subgraph with a
// single global visited set, O(V+E).
func (p *Plan) TopologicalSort() []*Node {
	adjacency := p.dependsOnAdjacency()
	visited := make(map[types.ID]bool, len(p.nodes))
	order := make([]*Node, 0, len(p.nodes))

	var visit func(node *Node)
	visit = func(node *Node) {
		if visited[node.ID] {
			return
		}
		visited[node.ID] = true
		for _, depID := range adjacency[node.ID] {
			if dep, ok := p.nodes[depID]; ok {
				visit(dep)
			}
		}
		order = append(order, node.Clone())
	}

	for _, node := range p.sortedNodes() {
		visit(node)
	}

	return order
}

// ReadyNodes returns copies of the nodes that are ready to produce:
// status pending with every dependency completed. A node with no
// dependencies is ready as soon as it is pending. Computed fresh on
// every call.
func (p *Plan) ReadyNodes() []*Node {
	adjacency := p.dependsOnAdjacency()
	ready := make([]*Node, 0)

	for _, node := range p.sortedNodes() {
		if node.Status != NodeStatusPending {
			continue
		}
		if p.dependenciesCompleted(adjacency[node.ID]) {
			ready = append(ready, node.Clone())
		}
	}

	return ready
}

// dependenciesCompleted reports whether every listed dependency exists
// and is completed. Vacuously true for an empty list.
func (p *Plan) dependenciesCompleted(depIDs []types.ID) bool {
	for _, depID := range depIDs {
		dep, ok := p.nodes[depID]
		if !ok {
			return false
		}
		if dep.Status != NodeStatusCompleted {
			return false
		}
	}
	return true
}
