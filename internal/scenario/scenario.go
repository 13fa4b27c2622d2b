package scenario

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/eventchains/internal/chain"
	"github.com/roach88/eventchains/internal/dijkstra"
)

// Scenario defines a conformance test scenario: a graph, a chain
// configuration, and the expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	Graph  GraphSpec `yaml:"graph"`
	Source int       `yaml:"source"`
	Target int       `yaml:"target"`

	// Decomposition is "fine" (default) or "coarse".
	Decomposition string `yaml:"decomposition,omitempty"`

	// Steps overrides the number of ProcessNode events of a fine chain.
	Steps *int `yaml:"steps,omitempty"`

	// FaultTolerance is strict (default), lenient, or best_effort.
	FaultTolerance string `yaml:"fault_tolerance,omitempty"`

	// Middleware names in registration order.
	Middleware []string `yaml:"middleware,omitempty"`

	// InjectFailures lists event names whose execution always fails.
	InjectFailures []string `yaml:"inject_failures,omitempty"`

	Expect Expect `yaml:"expect"`
}

// GraphSpec is either an explicit edge list or a seeded random graph.
type GraphSpec struct {
	Nodes         int         `yaml:"nodes,omitempty"`
	Edges         []EdgeSpec  `yaml:"edges,omitempty"`
	Bidirectional bool        `yaml:"bidirectional,omitempty"`
	Random        *RandomSpec `yaml:"random,omitempty"`
}

// EdgeSpec is one weighted edge.
type EdgeSpec struct {
	From   int    `yaml:"from"`
	To     int    `yaml:"to"`
	Weight uint32 `yaml:"weight"`
}

// RandomSpec parameterizes graph.RandomConnected. A zero seed uses
// graph.DefaultSeed.
type RandomSpec struct {
	Nodes     int    `yaml:"nodes"`
	Edges     int    `yaml:"edges"`
	MaxWeight uint32 `yaml:"max_weight"`
	Seed      uint64 `yaml:"seed,omitempty"`
}

// Expect lists the checks applied after the chain runs. Unset fields are
// not checked.
type Expect struct {
	Distance       *uint32        `yaml:"distance,omitempty"`
	Unreachable    bool           `yaml:"unreachable,omitempty"`
	Path           []int          `yaml:"path,omitempty"`
	Status         string         `yaml:"status,omitempty"`
	Failures       *int           `yaml:"failures,omitempty"`
	FailedEvents   []string       `yaml:"failed_events,omitempty"`
	Skipped        []string       `yaml:"skipped,omitempty"`
	MatchReference bool           `yaml:"match_reference,omitempty"`
	TraceOrder     []string       `yaml:"trace_order,omitempty"`
	TraceCount     map[string]int `yaml:"trace_count,omitempty"`
}

// Decomposition values.
const (
	DecompositionFine   = "fine"
	DecompositionCoarse = "coarse"
)

// Middleware names accepted in Scenario.Middleware.
const (
	MiddlewareLogging  = "logging"
	MiddlewareTiming   = "timing"
	MiddlewareCounting = "counting"
	MiddlewareNoOp     = "noop"
)

var knownEvents = map[string]bool{
	dijkstra.NameInitializeState:         true,
	dijkstra.NameInitializePriorityQueue: true,
	dijkstra.NameProcessNode:             true,
	dijkstra.NameProcessAllNodes:         true,
	dijkstra.NameFinalizeResult:          true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if err := validateGraph(&s.Graph); err != nil {
		return err
	}
	if s.Source < 0 {
		return fmt.Errorf("source must be non-negative, got %d", s.Source)
	}
	if s.Target < 0 {
		return fmt.Errorf("target must be non-negative, got %d", s.Target)
	}

	switch s.Decomposition {
	case "", DecompositionFine:
	case DecompositionCoarse:
		if s.Steps != nil {
			return fmt.Errorf("steps only applies to the fine decomposition")
		}
	default:
		return fmt.Errorf("unknown decomposition %q: must be fine or coarse", s.Decomposition)
	}
	if s.Steps != nil && *s.Steps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d", *s.Steps)
	}

	if _, err := chain.ParseFaultToleranceMode(s.FaultTolerance); err != nil {
		return err
	}

	for i, name := range s.Middleware {
		switch name {
		case MiddlewareLogging, MiddlewareTiming, MiddlewareCounting, MiddlewareNoOp:
		default:
			return fmt.Errorf("middleware[%d]: unknown middleware %q", i, name)
		}
	}

	for i, name := range s.InjectFailures {
		if !knownEvents[name] {
			return fmt.Errorf("inject_failures[%d]: unknown event %q", i, name)
		}
	}

	if s.Expect.Unreachable && (s.Expect.Distance != nil || len(s.Expect.Path) > 0) {
		return fmt.Errorf("expect: unreachable conflicts with distance or path")
	}
	if s.Expect.Status != "" {
		if _, err := parseStatus(s.Expect.Status); err != nil {
			return fmt.Errorf("expect: %w", err)
		}
	}
	for label, n := range s.Expect.TraceCount {
		if n < 0 {
			return fmt.Errorf("expect.trace_count[%s]: count must be non-negative", label)
		}
	}

	return nil
}

func validateGraph(g *GraphSpec) error {
	if g.Random != nil {
		if g.Nodes != 0 || len(g.Edges) != 0 {
			return fmt.Errorf("graph: random conflicts with nodes and edges")
		}
		if g.Random.Nodes < 1 {
			return fmt.Errorf("graph.random: nodes must be positive")
		}
		if g.Random.Edges < g.Random.Nodes-1 {
			return fmt.Errorf("graph.random: edges (%d) must be at least nodes-1 (%d)", g.Random.Edges, g.Random.Nodes-1)
		}
		if g.Random.MaxWeight < 1 {
			return fmt.Errorf("graph.random: max_weight must be positive")
		}
		return nil
	}

	if g.Nodes < 1 {
		return fmt.Errorf("graph: nodes must be positive")
	}
	for i, e := range g.Edges {
		if e.From < 0 || e.From >= g.Nodes || e.To < 0 || e.To >= g.Nodes {
			return fmt.Errorf("graph.edges[%d]: endpoint out of range for %d nodes", i, g.Nodes)
		}
	}
	return nil
}

func parseStatus(s string) (chain.ChainStatus, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for _, st := range []chain.ChainStatus{chain.StatusCompleted, chain.StatusCompletedWithWarnings, chain.StatusFailed} {
		if st.String() == norm {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q: must be COMPLETED, COMPLETED_WITH_WARNINGS, or FAILED", s)
}
