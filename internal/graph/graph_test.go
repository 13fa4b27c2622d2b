package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_AddEdge(t *testing.T) {
	g := New(3)
	require.NoError(t, g.AddEdge(0, 1, 5))
	require.NoError(t, g.AddBidirectionalEdge(1, 2, 7))

	assert.Equal(t, 3, g.NodeCount())
	assert.Equal(t, 3, g.EdgeCount())
	assert.Equal(t, []Edge{{To: 1, Weight: 5}}, g.Edges(0))
	assert.Equal(t, []Edge{{To: 2, Weight: 7}}, g.Edges(1))
	assert.Equal(t, []Edge{{To: 1, Weight: 7}}, g.Edges(2))
}

func TestGraph_AddEdgeOutOfRange(t *testing.T) {
	g := New(2)

	err := g.AddEdge(0, 2, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNodeOutOfRange)

	err = g.AddEdge(-1, 0, 1)
	assert.ErrorIs(t, err, ErrNodeOutOfRange)
	assert.Equal(t, 0, g.EdgeCount())
}

func TestGraph_EdgesOutOfRange(t *testing.T) {
	g := New(1)
	assert.Nil(t, g.Edges(5))
	assert.Nil(t, g.Edges(NoNode))
}

func TestSaturatingAdd(t *testing.T) {
	tests := []struct {
		name string
		a, b uint32
		want uint32
	}{
		{"small", 1, 2, 3},
		{"zero", 0, 0, 0},
		{"exact max", Infinity - 1, 1, Infinity},
		{"overflow clamps", Infinity - 1, 10, Infinity},
		{"infinity plus", Infinity, 1, Infinity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SaturatingAdd(tt.a, tt.b))
		})
	}
}

func TestNewDijkstraState(t *testing.T) {
	s := NewDijkstraState(3, 1)

	assert.Equal(t, []uint32{Infinity, 0, Infinity}, s.Distances)
	assert.Equal(t, []NodeID{NoNode, NoNode, NoNode}, s.Predecessors)
	assert.Equal(t, []bool{false, false, false}, s.Visited)
	assert.Equal(t, 0, s.VisitedCount())
}

func TestNewDijkstraState_SourceOutOfRange(t *testing.T) {
	s := NewDijkstraState(2, 7)
	assert.Equal(t, []uint32{Infinity, Infinity}, s.Distances)
}

func TestRelax_SkipsStaleEntries(t *testing.T) {
	g := New(2)
	require.NoError(t, g.AddEdge(0, 1, 3))

	s := NewDijkstraState(2, 0)
	q := NewPriorityQueue(2)

	assert.True(t, s.Relax(g, q, QueueNode{Node: 0, Distance: 0}))
	assert.Equal(t, uint32(3), s.Distances[1])
	assert.Equal(t, NodeID(0), s.Predecessors[1])
	assert.Equal(t, 1, q.Len())

	// Already visited.
	assert.False(t, s.Relax(g, q, QueueNode{Node: 0, Distance: 0}))

	// Popped distance worse than recorded.
	assert.False(t, s.Relax(g, q, QueueNode{Node: 1, Distance: 9}))
	assert.False(t, s.Visited[1])
}

func TestRelax_SaturatesHeavyEdges(t *testing.T) {
	g := New(3)
	require.NoError(t, g.AddEdge(0, 1, Infinity-1))
	require.NoError(t, g.AddEdge(1, 2, Infinity-1))

	s := NewDijkstraState(3, 0)
	q := NewPriorityQueue(3)
	s.Relax(g, q, QueueNode{Node: 0, Distance: 0})
	entry, ok := q.Pop()
	require.True(t, ok)
	s.Relax(g, q, entry)

	// Clamped sum equals Infinity, which is not strictly shorter.
	assert.Equal(t, Infinity, s.Distances[2])
	assert.Equal(t, NoNode, s.Predecessors[2])
}
