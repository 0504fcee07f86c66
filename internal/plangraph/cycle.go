package plangraph

import "github.com/planloom/planloom/internal/types"

// wouldCycle reports whether adding a depends_on edge from sourceID to
// targetID would close a cycle: true when targetID already reaches
// sourceID through existing depends_on edges. Depth-first search with a
// per-call visited set, O(V+E).
func (p *Plan) wouldCycle(sourceID, targetID types.ID) bool {
	if sourceID == targetID {
		return true
	}

	adjacency := p.dependsOnAdjacency()
	visited := make(map[types.ID]bool, len(p.nodes))
	stack := []types.ID{targetID}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current == sourceID {
			return true
		}
		if visited[current] {
			continue
		}
		visited[current] = true

		stack = append(stack, adjacency[current]...)
	}

	return false
}

// dependsOnAdjacency builds the outgoing adjacency of the depends_on
// subgraph: node id to the prerequisites it points at. Neighbor lists
// follow edge creation order so traversal output is deterministic.
func (p *Plan) dependsOnAdjacency() map[types.ID][]types.ID {
	adjacency := make(map[types.ID][]types.ID)
	for _, edge := range p.sortedEdges() {
		if edge.Type != EdgeTypeDependsOn {
			continue
		}
		adjacency[edge.SourceID] = append(adjacency[edge.SourceID], edge.TargetID)
	}
	return adjacency
}

// dependsOnReverse builds the incoming adjacency of the depends_on
// subgraph: node id to the dependents pointing at it.
func (p *Plan) dependsOnReverse() map[types.ID][]types.ID {
	reverse := make(map[types.ID][]types.ID)
	for _, edge := range p.sortedEdges() {
		if edge.Type != EdgeTypeDependsOn {
			continue
		}
		reverse[edge.TargetID] = append(reverse[edge.TargetID], edge.SourceID)
	}
	return reverse
}
