package bench

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eventchains/internal/dijkstra"
	"github.com/roach88/eventchains/internal/graph"
)

func testInput() Input {
	return Input{
		Graph:  graph.RandomConnected(50, 150, 100, graph.DefaultSeed),
		Source: 0,
		Target: 49,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestWorkloads_ReachConnectedTarget(t *testing.T) {
	in := testInput()
	workloads := map[string]Workload{
		"traditional":         TraditionalWorkload(in),
		"bare":                BareWorkload(in),
		"full":                FullWorkload(in),
		"optimized":           OptimizedWorkload(in),
		"instrumented":        InstrumentedWorkload(in),
		"noop x5":             NoOpWorkload(in, 5),
		"bare calls":          BareCallsWorkload(in),
		"manual instrumented": ManualInstrumentedWorkload(in),
		"manual logged":       ManualLoggedWorkload(in),
	}
	for name, w := range workloads {
		assert.True(t, w(), name)
	}
}

func TestBaselines_MatchTraditional(t *testing.T) {
	in := testInput()
	for _, target := range []graph.NodeID{0, 7, 23, 49} {
		want := dijkstra.Traditional(in.Graph, in.Source, target)

		assert.Equal(t, want, BareCalls(in.Graph, in.Source, target))

		got, err := ManualInstrumented(in.Graph, in.Source, target)
		require.NoError(t, err)
		assert.Equal(t, want, got)

		got, log := ManualLogged(in.Graph, in.Source, target, in.Logger)
		assert.Equal(t, want, got)
		assert.Len(t, log.Timings, 4)
	}
}

func TestManualInstrumented_SourceOutOfRange(t *testing.T) {
	in := testInput()

	result, err := ManualInstrumented(in.Graph, 500, 3)

	require.Error(t, err)
	assert.ErrorIs(t, err, dijkstra.ErrSourceOutOfRange)
	assert.Contains(t, err.Error(), dijkstra.NameInitializeState)
	assert.False(t, result.Reachable)
}

func TestManualLogged_SourceOutOfRange(t *testing.T) {
	in := testInput()

	result, log := ManualLogged(in.Graph, 500, 3, in.Logger)

	assert.False(t, result.Reachable)
	assert.Len(t, log.Timings, 4)
}
