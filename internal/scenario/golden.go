package scenario

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/eventchains/internal/chain"
	"github.com/roach88/eventchains/internal/graph"
	"github.com/roach88/eventchains/internal/trace"
)

// snapshot is the golden-file view of a run. Wall-clock data is excluded.
type snapshot struct {
	Scenario     string                   `json:"scenario"`
	Trace        []trace.Entry            `json:"trace"`
	Result       graph.ShortestPathResult `json:"result"`
	Status       chain.ChainStatus        `json:"status"`
	Executed     int                      `json:"executed"`
	FailedEvents []string                 `json:"failed_events"`
	Skipped      []string                 `json:"skipped"`
}

// Snapshot renders a run as canonical JSON for golden comparison.
func Snapshot(name string, r *Result) ([]byte, error) {
	snap := snapshot{
		Scenario:     name,
		Trace:        r.Trace,
		Result:       r.Path,
		Status:       r.Chain.Status,
		Executed:     r.Chain.Executed,
		FailedEvents: r.Chain.FailedEvents(),
		Skipped:      r.Chain.Skipped,
	}
	if snap.Trace == nil {
		snap.Trace = []trace.Entry{}
	}
	if snap.Result.Path == nil {
		snap.Result.Path = []graph.NodeID{}
	}
	if snap.Skipped == nil {
		snap.Skipped = []string{}
	}
	return trace.MarshalCanonical(snap)
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/scenario -update
func RunWithGolden(t *testing.T, s *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(s)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, s.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
