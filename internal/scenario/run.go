package scenario

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/eventchains/internal/chain"
	"github.com/roach88/eventchains/internal/dijkstra"
	"github.com/roach88/eventchains/internal/graph"
	"github.com/roach88/eventchains/internal/middleware"
	"github.com/roach88/eventchains/internal/testutil"
	"github.com/roach88/eventchains/internal/trace"
)

// ErrInjected is the failure returned by events listed in inject_failures.
var ErrInjected = errors.New("injected failure")

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation held.
	Pass bool `json:"pass"`

	// Errors contains one message per failed expectation.
	Errors []string `json:"errors,omitempty"`

	// Trace is the recorded middleware and event call sequence.
	Trace []trace.Entry `json:"trace"`

	// Path is the shortest-path result read back from the context.
	Path graph.ShortestPathResult `json:"path"`

	// Chain is the orchestrator's outcome.
	Chain chain.ChainResult `json:"chain"`

	// Reference is the traditional implementation's result for the same
	// graph and endpoints. It is only set when the source is in range.
	Reference *graph.ShortestPathResult `json:"reference,omitempty"`
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Run executes a scenario and evaluates its expectations.
//
// An error is returned only if the scenario cannot be built; failed
// expectations are reported in Result.Errors.
func Run(s *Scenario) (*Result, error) {
	g, err := BuildGraph(s.Graph)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	mode, err := chain.ParseFaultToleranceMode(s.FaultTolerance)
	if err != nil {
		return nil, err
	}

	rec := trace.NewRecorder()
	clock := testutil.NewStepClock(testutil.Epoch, time.Millisecond)
	c := chain.New(
		chain.WithFaultTolerance(mode),
		chain.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		chain.WithClock(clock.Now),
		chain.WithSequence(chain.NewClock()),
	)

	for i, name := range s.Middleware {
		mw, err := newMiddleware(name, i, clock.Now)
		if err != nil {
			return nil, err
		}
		c.Use(rec.Around(name, mw))
	}

	inject := make(map[string]bool, len(s.InjectFailures))
	for _, name := range s.InjectFailures {
		inject[name] = true
	}
	for _, ev := range template(s, g).Events() {
		if inject[ev.Name()] {
			ev = failing(ev)
		}
		c.AddEvent(rec.Wrap(ev))
	}

	source, target := graph.NodeID(s.Source), graph.NodeID(s.Target)
	path, outcome := dijkstra.Run(c, dijkstra.NewContext(g, source, target))

	result := &Result{
		Pass:  true,
		Trace: rec.Entries(),
		Path:  path,
		Chain: outcome,
	}
	if g.Contains(source) {
		ref := dijkstra.Traditional(g, source, target)
		result.Reference = &ref
	}

	for _, msg := range evaluate(s.Expect, result) {
		result.AddError(msg)
	}
	return result, nil
}

// BuildGraph constructs the graph a GraphSpec describes.
func BuildGraph(spec GraphSpec) (*graph.Graph, error) {
	if r := spec.Random; r != nil {
		seed := r.Seed
		if seed == 0 {
			seed = graph.DefaultSeed
		}
		return graph.RandomConnected(r.Nodes, r.Edges, r.MaxWeight, seed), nil
	}

	g := graph.New(spec.Nodes)
	for i, e := range spec.Edges {
		from, to := graph.NodeID(e.From), graph.NodeID(e.To)
		var err error
		if spec.Bidirectional {
			err = g.AddBidirectionalEdge(from, to, e.Weight)
		} else {
			err = g.AddEdge(from, to, e.Weight)
		}
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}
	return g, nil
}

// template builds an unconfigured chain holding the scenario's event list.
func template(s *Scenario, g *graph.Graph) *chain.Chain {
	if s.Decomposition == DecompositionCoarse {
		return dijkstra.CoarseGrained()
	}
	var opts []dijkstra.Option
	if s.Steps != nil {
		opts = append(opts, dijkstra.WithSteps(*s.Steps))
	}
	return dijkstra.FineGrained(g, opts...)
}

func newMiddleware(name string, index int, now func() time.Time) (chain.Middleware, error) {
	switch name {
	case MiddlewareLogging:
		return middleware.Logging(slog.New(slog.NewTextHandler(io.Discard, nil))), nil
	case MiddlewareTiming:
		return middleware.Timing(now), nil
	case MiddlewareCounting:
		return middleware.NewCounter(), nil
	case MiddlewareNoOp:
		return middleware.NoOp(index), nil
	default:
		return nil, fmt.Errorf("unknown middleware %q", name)
	}
}

// failing replaces ev's execution with ErrInjected. Declared requirements
// are kept so BestEffort still skips it when inputs are missing.
func failing(ev chain.Event) chain.Event {
	f := failingEvent{name: ev.Name()}
	if dep, ok := ev.(chain.Dependent); ok {
		f.requires = dep.Requires()
	}
	return f
}

type failingEvent struct {
	name     string
	requires []string
}

func (e failingEvent) Name() string                     { return e.name }
func (e failingEvent) Requires() []string               { return e.requires }
func (e failingEvent) Execute(*chain.ExecContext) error { return ErrInjected }
