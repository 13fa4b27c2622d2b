package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomConnected_Deterministic(t *testing.T) {
	a := RandomConnected(50, 120, 100, DefaultSeed)
	b := RandomConnected(50, 120, 100, DefaultSeed)

	require.Equal(t, a.NodeCount(), b.NodeCount())
	for n := 0; n < a.NodeCount(); n++ {
		assert.Equal(t, a.Edges(NodeID(n)), b.Edges(NodeID(n)), "node %d", n)
	}
}

func TestRandomConnected_IsConnected(t *testing.T) {
	g := RandomConnected(100, 300, 50, 7)

	seen := make([]bool, g.NodeCount())
	stack := []NodeID{0}
	seen[0] = true
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range g.Edges(n) {
			if !seen[e.To] {
				seen[e.To] = true
				stack = append(stack, e.To)
			}
		}
	}
	for i, ok := range seen {
		assert.True(t, ok, "node %d unreachable", i)
	}
}

func TestRandomConnected_EdgeCountAndWeights(t *testing.T) {
	g := RandomConnected(20, 40, 10, 99)

	// Undirected edges are stored twice; the spanning tree alone is 19 of them.
	assert.Equal(t, 0, g.EdgeCount()%2)
	assert.GreaterOrEqual(t, g.EdgeCount(), 38)
	assert.LessOrEqual(t, g.EdgeCount(), 80)
	for n := 0; n < g.NodeCount(); n++ {
		for _, e := range g.Edges(NodeID(n)) {
			assert.NotEqual(t, NodeID(n), e.To, "self loop")
			assert.GreaterOrEqual(t, e.Weight, uint32(1))
			assert.LessOrEqual(t, e.Weight, uint32(10))
		}
	}
}

func TestRandomConnected_Empty(t *testing.T) {
	g := RandomConnected(0, 10, 10, 1)
	assert.Equal(t, 0, g.NodeCount())
}

func TestLCG_IntnStaysInRange(t *testing.T) {
	rng := &lcg{state: DefaultSeed}
	sawHighBit := false
	for i := 0; i < 10000; i++ {
		// Copy the generator to see the raw draw that intn will reduce.
		peek := *rng
		if peek.next() >= 1<<31 {
			sawHighBit = true
		}
		v := rng.intn(7)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 7)
	}
	assert.True(t, sawHighBit, "draws above MaxInt32 exercised")
}

func TestRandomConnected_MaxWeight(t *testing.T) {
	g := RandomConnected(20, 40, math.MaxUint32, DefaultSeed)
	for n := 0; n < g.NodeCount(); n++ {
		for _, e := range g.Edges(NodeID(n)) {
			assert.GreaterOrEqual(t, e.Weight, uint32(1))
		}
	}
}
