package graph

import (
	"errors"
	"fmt"
)

// ErrNodeOutOfRange indicates a NodeID outside 0..NodeCount()-1.
var ErrNodeOutOfRange = errors.New("graph: node out of range")

// NodeID identifies a vertex. IDs are dense: 0..N-1.
type NodeID int

// NoNode marks an absent NodeID (e.g. a node with no predecessor).
const NoNode NodeID = -1

// Edge is a directed weighted arc to To.
type Edge struct {
	To     NodeID
	Weight uint32
}

// Graph is an adjacency-list graph with a fixed node count.
//
// Edges are only added during construction. Once a Graph is handed to a chain
// run it must not be mutated; concurrent readers rely on that.
type Graph struct {
	adjacency [][]Edge
	edges     int
}

// New creates a graph of n nodes and no edges.
func New(n int) *Graph {
	if n < 0 {
		n = 0
	}
	return &Graph{adjacency: make([][]Edge, n)}
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.adjacency)
}

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// Contains reports whether n is a valid node of g.
func (g *Graph) Contains(n NodeID) bool {
	return n >= 0 && int(n) < len(g.adjacency)
}

// AddEdge adds a directed edge from -> to.
func (g *Graph) AddEdge(from, to NodeID, weight uint32) error {
	if !g.Contains(from) {
		return fmt.Errorf("add edge %d->%d: from: %w", from, to, ErrNodeOutOfRange)
	}
	if !g.Contains(to) {
		return fmt.Errorf("add edge %d->%d: to: %w", from, to, ErrNodeOutOfRange)
	}
	g.adjacency[from] = append(g.adjacency[from], Edge{To: to, Weight: weight})
	g.edges++
	return nil
}

// AddBidirectionalEdge adds from -> to and to -> from with the same weight.
func (g *Graph) AddBidirectionalEdge(from, to NodeID, weight uint32) error {
	if err := g.AddEdge(from, to, weight); err != nil {
		return err
	}
	return g.AddEdge(to, from, weight)
}

// Edges returns the outgoing edges of n. The returned slice must not be
// modified. Out-of-range nodes have no edges.
func (g *Graph) Edges(n NodeID) []Edge {
	if !g.Contains(n) {
		return nil
	}
	return g.adjacency[n]
}
