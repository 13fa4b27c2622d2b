package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/eventchains/internal/chain"
	"github.com/roach88/eventchains/internal/dijkstra"
	"github.com/roach88/eventchains/internal/graph"
	"github.com/roach88/eventchains/internal/testutil"
)

func fourNodeGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New(4)
	require.NoError(t, g.AddEdge(0, 1, 4))
	require.NoError(t, g.AddEdge(0, 2, 1))
	require.NoError(t, g.AddEdge(2, 1, 2))
	require.NoError(t, g.AddEdge(1, 3, 1))
	require.NoError(t, g.AddEdge(2, 3, 5))
	return g
}

func TestSaveChainRun_RoundTrip(t *testing.T) {
	s := createTestStore(t,
		WithIDGenerator(testutil.NewFixedRunID("run-1")),
		WithClock(testutil.FixedNow(testutil.Epoch)),
	)
	ctx := context.Background()

	g := fourNodeGraph(t)
	path, res := dijkstra.Run(dijkstra.FineGrained(g), dijkstra.NewContext(g, 0, 3))
	require.True(t, res.Success)

	saved, err := s.SaveChainRun(ctx, NewChainRun(g.NodeCount(), "fine", chain.Strict, path, res))
	require.NoError(t, err)
	assert.Equal(t, "run-1", saved.ID)
	assert.True(t, saved.RecordedAt.Equal(testutil.Epoch))

	runs, err := s.ChainRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	got := runs[0]
	assert.Equal(t, "run-1", got.ID)
	assert.Equal(t, 4, got.Nodes)
	assert.Equal(t, "fine", got.Decomposition)
	assert.Equal(t, "strict", got.FaultTolerance)
	assert.Equal(t, "COMPLETED", got.Status)
	assert.True(t, got.Success)
	assert.Equal(t, res.Executed, got.Executed)
	assert.Empty(t, got.FailedEvents)
	assert.Empty(t, got.Skipped)
	assert.Equal(t, path, got.Result)
	assert.Equal(t, []graph.NodeID{0, 2, 1, 3}, got.Result.Path)
	assert.Equal(t, uint32(4), got.Result.Distance)
}

func TestSaveChainRun_Unreachable(t *testing.T) {
	s := createTestStore(t, WithIDGenerator(testutil.NewFixedRunID("run-1")))
	ctx := context.Background()

	run := ChainRun{
		Nodes:          3,
		Decomposition:  "coarse",
		FaultTolerance: "lenient",
		Status:         "COMPLETED_WITH_WARNINGS",
		Success:        true,
		Executed:       4,
		FailedEvents:   []string{dijkstra.NameProcessAllNodes},
		Result:         graph.Unreachable(0, 2),
	}
	_, err := s.SaveChainRun(ctx, run)
	require.NoError(t, err)

	var distance *int64
	require.NoError(t, s.db.QueryRow("SELECT distance FROM chain_runs").Scan(&distance))
	assert.Nil(t, distance, "unreachable runs store a NULL distance")

	runs, err := s.ChainRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.False(t, runs[0].Result.Reachable)
	assert.Equal(t, []graph.NodeID{}, runs[0].Result.Path)
	assert.Equal(t, []string{dijkstra.NameProcessAllNodes}, runs[0].FailedEvents)
	assert.Equal(t, []string{}, runs[0].Skipped)
}

func TestChainRuns_Limit(t *testing.T) {
	s := createTestStore(t, WithIDGenerator(testutil.NewSequentialRunIDs("run")))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.SaveChainRun(ctx, ChainRun{Result: graph.Unreachable(0, graph.NodeID(i))})
		require.NoError(t, err)
	}

	runs, err := s.ChainRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-000004", runs[0].ID, "most recent runs, oldest first")
	assert.Equal(t, "run-000005", runs[1].ID)
	assert.Equal(t, graph.NodeID(4), runs[1].Result.Target)

	all, err := s.ChainRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestChainRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ChainRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestUUIDv7Generator(t *testing.T) {
	gen := UUIDv7Generator{}
	a, b := gen.Generate(), gen.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}
