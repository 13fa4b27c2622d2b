package dijkstra

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eventchains/internal/chain"
	"github.com/roach88/eventchains/internal/graph"
)

// fourNodeGraph builds 0->1(4), 0->2(1), 2->1(2), 1->3(1), 2->3(5) with n
// nodes in total.
func fourNodeGraph(t *testing.T, n int) *graph.Graph {
	t.Helper()
	g := graph.New(n)
	for _, e := range []struct {
		from, to graph.NodeID
		w        uint32
	}{
		{0, 1, 4}, {0, 2, 1}, {2, 1, 2}, {1, 3, 1}, {2, 3, 5},
	} {
		require.NoError(t, g.AddEdge(e.from, e.to, e.w))
	}
	return g
}

func quiet(mode chain.FaultToleranceMode) Option {
	return WithChainOptions(
		chain.WithFaultTolerance(mode),
		chain.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func TestFineGrained_FourNodeScenario(t *testing.T) {
	g := fourNodeGraph(t, 4)

	result, outcome := Run(FineGrained(g, quiet(chain.Strict)), NewContext(g, 0, 3))

	require.True(t, outcome.Success)
	assert.Equal(t, chain.StatusCompleted, outcome.Status)
	require.True(t, result.Reachable)
	assert.Equal(t, uint32(4), result.Distance)
	assert.Equal(t, []graph.NodeID{0, 2, 1, 3}, result.Path)
}

func TestCoarseGrained_FourNodeScenario(t *testing.T) {
	g := fourNodeGraph(t, 4)

	result, outcome := Run(CoarseGrained(quiet(chain.Strict)), NewContext(g, 0, 3))

	require.True(t, outcome.Success)
	require.True(t, result.Reachable)
	assert.Equal(t, uint32(4), result.Distance)
	assert.Equal(t, []graph.NodeID{0, 2, 1, 3}, result.Path)
}

func TestRun_DisconnectedTarget(t *testing.T) {
	g := fourNodeGraph(t, 5)

	for name, c := range map[string]*chain.Chain{
		"fine":   FineGrained(g, quiet(chain.Strict)),
		"coarse": CoarseGrained(quiet(chain.Strict)),
	} {
		t.Run(name, func(t *testing.T) {
			result, outcome := Run(c, NewContext(g, 0, 4))

			assert.True(t, outcome.Success)
			assert.Equal(t, chain.StatusCompleted, outcome.Status)
			assert.Empty(t, outcome.Failures)
			assert.False(t, result.Reachable)
			assert.Empty(t, result.Path)
		})
	}
}

func TestRun_SourceIsTarget(t *testing.T) {
	g := fourNodeGraph(t, 4)

	result, _ := Run(CoarseGrained(quiet(chain.Strict)), NewContext(g, 2, 2))

	require.True(t, result.Reachable)
	assert.Equal(t, uint32(0), result.Distance)
	assert.Equal(t, []graph.NodeID{2}, result.Path)
}

func TestDecompositionEquivalence(t *testing.T) {
	cases := []struct {
		nodes, edges int
		seed         uint64
	}{
		{10, 20, 1},
		{50, 200, 7},
		{100, 500, graph.DefaultSeed},
	}
	for _, tc := range cases {
		g := graph.RandomConnected(tc.nodes, tc.edges, 100, tc.seed)
		target := graph.NodeID(tc.nodes - 1)

		fineCtx := NewContext(g, 0, target)
		fineResult, fineOutcome := Run(FineGrained(g, quiet(chain.Strict)), fineCtx)
		coarseCtx := NewContext(g, 0, target)
		coarseResult, coarseOutcome := Run(CoarseGrained(quiet(chain.Strict)), coarseCtx)

		require.True(t, fineOutcome.Success)
		require.True(t, coarseOutcome.Success)
		assert.Equal(t, coarseResult, fineResult)

		fineState, ok := chain.Get[*graph.DijkstraState](fineCtx, KeyState)
		require.True(t, ok)
		coarseState, ok := chain.Get[*graph.DijkstraState](coarseCtx, KeyState)
		require.True(t, ok)
		assert.Equal(t, coarseState.Distances, fineState.Distances)
		assert.Equal(t, coarseState.Predecessors, fineState.Predecessors)
		assert.Equal(t, coarseState.Visited, fineState.Visited)
		assert.Equal(t, tc.nodes, fineState.VisitedCount())
	}
}

func TestChainMatchesTraditional(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		g := graph.RandomConnected(60, 240, 50, seed)
		for _, target := range []graph.NodeID{1, 17, 42, 59} {
			want := Traditional(g, 0, target)

			got, outcome := Run(FineGrained(g, quiet(chain.Strict)), NewContext(g, 0, target))
			require.True(t, outcome.Success)
			assert.Equal(t, want, got, "fine seed=%d target=%d", seed, target)

			got, _ = Run(CoarseGrained(quiet(chain.Strict)), NewContext(g, 0, target))
			assert.Equal(t, want, got, "coarse seed=%d target=%d", seed, target)
		}
	}
}

func TestTraditional_FourNodeScenario(t *testing.T) {
	g := fourNodeGraph(t, 5)

	got := Traditional(g, 0, 3)
	assert.Equal(t, uint32(4), got.Distance)
	assert.Equal(t, []graph.NodeID{0, 2, 1, 3}, got.Path)

	got = Traditional(g, 0, 4)
	assert.False(t, got.Reachable)
	assert.Empty(t, got.Path)

	got = Traditional(g, 9, 3)
	assert.False(t, got.Reachable)
}

func TestRun_Deterministic(t *testing.T) {
	g := graph.RandomConnected(40, 120, 20, 99)

	r1, o1 := Run(FineGrained(g, quiet(chain.Strict)), NewContext(g, 3, 31))
	r2, o2 := Run(FineGrained(g, quiet(chain.Strict)), NewContext(g, 3, 31))

	assert.Equal(t, r1, r2)
	assert.Equal(t, o1, o2)
}

func TestRun_SameChainRepeated(t *testing.T) {
	g := fourNodeGraph(t, 4)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := CoarseGrained(quiet(chain.Lenient), WithChainOptions(chain.WithClock(func() time.Time { return fixed })))

	run := func() (graph.ShortestPathResult, chain.ChainResult) {
		ec := NewContext(g, 0, 3)
		ec.Set(KeyTarget, "three")
		return Run(c, ec)
	}
	r1, o1 := run()
	r2, o2 := run()

	assert.Equal(t, r1, r2)
	assert.Equal(t, o1, o2)
	require.Len(t, o2.Failures, 1)
	assert.Equal(t, NameFinalizeResult, o2.Failures[0].Event)
	assert.Equal(t, int64(1), o2.Failures[0].Seq)
}

func TestFineGrained_TooFewStepsIsBestEffort(t *testing.T) {
	g := fourNodeGraph(t, 4)
	ec := NewContext(g, 0, 1)

	result, outcome := Run(FineGrained(g, WithSteps(1), quiet(chain.Strict)), ec)

	// Only the source is settled, so node 1 still carries the direct edge.
	require.True(t, outcome.Success)
	require.True(t, result.Reachable)
	assert.Equal(t, uint32(4), result.Distance)
	assert.Equal(t, []graph.NodeID{0, 1}, result.Path)

	more, ok := chain.Get[bool](ec, KeyContinue)
	require.True(t, ok)
	assert.True(t, more)

	result, _ = Run(FineGrained(g, WithSteps(1), quiet(chain.Strict)), NewContext(g, 0, 3))
	assert.False(t, result.Reachable)
}

func TestFineGrained_StepCount(t *testing.T) {
	g := fourNodeGraph(t, 4)

	assert.Equal(t, 7, FineGrained(g).Len())
	assert.Equal(t, 3, FineGrained(g, WithSteps(0)).Len())
	assert.Equal(t, 4, CoarseGrained(WithSteps(10)).Len())
}

func TestBuilders_RegisterMiddlewareInOrder(t *testing.T) {
	var calls []string
	mw := func(name string) chain.Middleware {
		return chain.MiddlewareFunc(func(ev chain.Event, ec *chain.ExecContext, next chain.Next) error {
			if ev.Name() == NameInitializeState {
				calls = append(calls, name)
			}
			return next(ec)
		})
	}
	g := fourNodeGraph(t, 4)

	Run(CoarseGrained(WithMiddleware(mw("first"), mw("second")), quiet(chain.Strict)), NewContext(g, 0, 3))

	assert.Equal(t, []string{"second", "first"}, calls)
}

func TestProcessNode_ContinueFlag(t *testing.T) {
	g := fourNodeGraph(t, 4)
	ec := NewContext(g, 0, 3)
	require.NoError(t, InitializeState{}.Execute(ec))
	require.NoError(t, InitializePriorityQueue{}.Execute(ec))

	for i := 0; i < 4; i++ {
		require.NoError(t, ProcessNode{}.Execute(ec))
	}
	state, _ := chain.Get[*graph.DijkstraState](ec, KeyState)
	assert.Equal(t, 4, state.VisitedCount())

	// A fifth call drains whatever stale entries remain.
	require.NoError(t, ProcessNode{}.Execute(ec))
	more, ok := chain.Get[bool](ec, KeyContinue)
	require.True(t, ok)
	assert.False(t, more)
}

func TestProcessNode_DrainsStaleHead(t *testing.T) {
	g := fourNodeGraph(t, 4)
	ec := NewContext(g, 0, 3)
	require.NoError(t, InitializeState{}.Execute(ec))
	require.NoError(t, InitializePriorityQueue{}.Execute(ec))
	for i := 0; i < 3; i++ {
		require.NoError(t, ProcessNode{}.Execute(ec))
	}

	state, _ := chain.Get[*graph.DijkstraState](ec, KeyState)
	q, _ := chain.Get[*graph.PriorityQueue](ec, KeyQueue)
	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, graph.QueueNode{Node: 1, Distance: 4}, head)
	require.True(t, state.Visited[1], "head entry is stale")

	// One call skips the stale entry and still settles node 3.
	require.NoError(t, ProcessNode{}.Execute(ec))
	assert.True(t, state.Visited[3])
	assert.Equal(t, uint32(4), state.Distances[3])
}

func TestInitializeState_SourceOutOfRange(t *testing.T) {
	g := fourNodeGraph(t, 4)

	result, outcome := Run(CoarseGrained(quiet(chain.Strict)), NewContext(g, 10, 3))

	assert.False(t, outcome.Success)
	assert.Equal(t, chain.StatusFailed, outcome.Status)
	require.Len(t, outcome.Failures, 1)
	assert.Equal(t, NameInitializeState, outcome.Failures[0].Event)
	assert.ErrorIs(t, outcome.Failures[0], ErrSourceOutOfRange)
	assert.False(t, result.Reachable)
	assert.Equal(t, graph.NodeID(10), result.Source)
}

func TestMissingGraph(t *testing.T) {
	ec := chain.NewExecContext()
	ec.Set(KeySource, graph.NodeID(0))
	ec.Set(KeyTarget, graph.NodeID(1))

	_, outcome := Run(CoarseGrained(quiet(chain.Strict)), ec)

	require.Len(t, outcome.Failures, 1)
	assert.True(t, chain.IsMissingKey(outcome.Failures[0].Err))
}

func TestWrongTypedSourceIsMissing(t *testing.T) {
	g := fourNodeGraph(t, 4)
	ec := chain.NewExecContext()
	ec.Set(KeyGraph, g)
	ec.Set(KeySource, 0) // int, not graph.NodeID
	ec.Set(KeyTarget, graph.NodeID(3))

	_, outcome := Run(CoarseGrained(quiet(chain.Strict)), ec)

	require.Len(t, outcome.Failures, 1)
	assert.ErrorIs(t, outcome.Failures[0], chain.ErrMissingKey)
}

func TestFaultTolerance_CascadingFailures(t *testing.T) {
	g := fourNodeGraph(t, 4)

	t.Run("lenient records the cascade", func(t *testing.T) {
		_, outcome := Run(CoarseGrained(quiet(chain.Lenient)), NewContext(g, 10, 3))

		assert.True(t, outcome.Success)
		assert.Equal(t, chain.StatusCompletedWithWarnings, outcome.Status)
		assert.Equal(t, []string{NameInitializeState, NameProcessAllNodes, NameFinalizeResult}, outcome.FailedEvents())
		assert.Empty(t, outcome.Skipped)
	})

	t.Run("best effort skips dependents", func(t *testing.T) {
		_, outcome := Run(CoarseGrained(quiet(chain.BestEffort)), NewContext(g, 10, 3))

		assert.True(t, outcome.Success)
		assert.Equal(t, chain.StatusCompletedWithWarnings, outcome.Status)
		assert.Equal(t, []string{NameInitializeState}, outcome.FailedEvents())
		assert.Equal(t, []string{NameProcessAllNodes, NameFinalizeResult}, outcome.Skipped)
	})
}
