package graph

import "math"

// Infinity is the distance of a node that has not been reached.
const Infinity uint32 = math.MaxUint32

// SaturatingAdd returns a+b, clamped to Infinity on overflow.
func SaturatingAdd(a, b uint32) uint32 {
	sum := a + b
	if sum < a {
		return Infinity
	}
	return sum
}

// DijkstraState is the working state of one shortest-path computation.
//
// Invariants:
//   - Distances[source] == 0 after construction
//   - Visited[n] flips to true at most once
//   - Predecessors[n] changes only when a strictly shorter distance is found
type DijkstraState struct {
	Distances    []uint32
	Predecessors []NodeID
	Visited      []bool
}

// NewDijkstraState allocates state for n nodes rooted at source. A source
// outside 0..n-1 leaves every distance at Infinity.
func NewDijkstraState(n int, source NodeID) *DijkstraState {
	s := &DijkstraState{
		Distances:    make([]uint32, n),
		Predecessors: make([]NodeID, n),
		Visited:      make([]bool, n),
	}
	for i := range s.Distances {
		s.Distances[i] = Infinity
		s.Predecessors[i] = NoNode
	}
	if source >= 0 && int(source) < n {
		s.Distances[source] = 0
	}
	return s
}

// VisitedCount returns the number of settled nodes.
func (s *DijkstraState) VisitedCount() int {
	count := 0
	for _, v := range s.Visited {
		if v {
			count++
		}
	}
	return count
}

// Relax settles entry against g: it marks the node visited and improves
// every neighbour reachable through it, pushing improved neighbours onto q.
// Stale entries (already visited, or popped with a distance worse than the
// recorded one) are ignored. Relax reports whether the entry was settled.
func (s *DijkstraState) Relax(g *Graph, q *PriorityQueue, entry QueueNode) bool {
	node := entry.Node
	if int(node) >= len(s.Visited) || node < 0 {
		return false
	}
	if s.Visited[node] || entry.Distance > s.Distances[node] {
		return false
	}

	s.Visited[node] = true

	for _, edge := range g.Edges(node) {
		if int(edge.To) >= len(s.Distances) {
			continue
		}
		next := SaturatingAdd(entry.Distance, edge.Weight)
		if next < s.Distances[edge.To] {
			s.Distances[edge.To] = next
			s.Predecessors[edge.To] = node
			q.Push(QueueNode{Node: edge.To, Distance: next})
		}
	}
	return true
}
