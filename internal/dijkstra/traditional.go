package dijkstra

import "github.com/roach88/eventchains/internal/graph"

// Traditional computes the shortest path from source to target in one
// function call, stopping as soon as target is settled.
func Traditional(g *graph.Graph, source, target graph.NodeID) graph.ShortestPathResult {
	if !g.Contains(source) {
		return graph.Unreachable(source, target)
	}

	n := g.NodeCount()
	distances := make([]uint32, n)
	predecessors := make([]graph.NodeID, n)
	visited := make([]bool, n)
	for i := range distances {
		distances[i] = graph.Infinity
		predecessors[i] = graph.NoNode
	}
	distances[source] = 0

	q := graph.NewPriorityQueue(n)
	q.Push(graph.QueueNode{Node: source})

	for {
		entry, ok := q.Pop()
		if !ok {
			break
		}
		node := entry.Node
		if visited[node] || entry.Distance > distances[node] {
			continue
		}
		visited[node] = true
		if node == target {
			break
		}

		for _, edge := range g.Edges(node) {
			next := graph.SaturatingAdd(entry.Distance, edge.Weight)
			if next < distances[edge.To] {
				distances[edge.To] = next
				predecessors[edge.To] = node
				q.Push(graph.QueueNode{Node: edge.To, Distance: next})
			}
		}
	}

	state := &graph.DijkstraState{
		Distances:    distances,
		Predecessors: predecessors,
		Visited:      visited,
	}
	return graph.ReconstructPath(state, source, target)
}
