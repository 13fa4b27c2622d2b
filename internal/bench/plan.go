package bench

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/eventchains/internal/graph"
)

//go:embed plan_schema.cue
var planSchema string

// Tier names a benchmark tier.
type Tier string

const (
	TierComparison Tier = "comparison"
	Tier1          Tier = "t1"
	Tier2          Tier = "t2"
	Tier3          Tier = "t3"
	Tier4          Tier = "t4"
)

// AllTiers lists every tier in report order.
var AllTiers = []Tier{TierComparison, Tier1, Tier2, Tier3, Tier4}

// Case is one graph configuration to benchmark.
type Case struct {
	Name      string `json:"name,omitempty"`
	Nodes     int    `json:"nodes"`
	Edges     int    `json:"edges"`
	Runs      int    `json:"runs"`
	MaxWeight uint32 `json:"max_weight"`
	Seed      uint64 `json:"seed"`
	Source    int    `json:"source"`
	Target    *int   `json:"target,omitempty"`
}

// Label returns Name, or "<nodes>n/<edges>e" when Name is empty.
func (c Case) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("%dn/%de", c.Nodes, c.Edges)
}

// Endpoints returns the source and target. The target defaults to the last
// node.
func (c Case) Endpoints() (graph.NodeID, graph.NodeID) {
	target := c.Nodes - 1
	if c.Target != nil {
		target = *c.Target
	}
	return graph.NodeID(c.Source), graph.NodeID(target)
}

// Graph builds the case's seeded random connected graph.
func (c Case) Graph() *graph.Graph {
	return graph.RandomConnected(c.Nodes, c.Edges, c.MaxWeight, c.Seed)
}

// Plan is a full benchmark configuration.
type Plan struct {
	Cases            []Case `json:"cases"`
	MiddlewareCounts []int  `json:"middleware_counts"`
	Parallelism      int    `json:"parallelism"`
	Warmup           bool   `json:"warmup"`
	Tiers            []Tier `json:"tiers"`
}

// Has reports whether the plan includes tier t.
func (p *Plan) Has(t Tier) bool {
	for _, have := range p.Tiers {
		if have == t {
			return true
		}
	}
	return false
}

// DefaultPlan returns the standard four graph sizes with every tier.
func DefaultPlan() *Plan {
	cases := []Case{
		{Nodes: 100, Edges: 500, Runs: 100},
		{Nodes: 500, Edges: 2500, Runs: 50},
		{Nodes: 1000, Edges: 5000, Runs: 30},
		{Nodes: 2000, Edges: 10000, Runs: 20},
	}
	for i := range cases {
		cases[i].MaxWeight = 100
		cases[i].Seed = graph.DefaultSeed
	}
	return &Plan{
		Cases:            cases,
		MiddlewareCounts: []int{0, 1, 3, 5, 10},
		Parallelism:      1,
		Warmup:           true,
		Tiers:            append([]Tier(nil), AllTiers...),
	}
}

// PlanError reports an invalid benchmark plan.
type PlanError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *PlanError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LoadPlan reads and parses a CUE plan file.
func LoadPlan(path string) (*Plan, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return ParsePlan(path, src)
}

// ParsePlan validates src against the #Plan schema and decodes it.
// Unset fields take their schema defaults.
func ParsePlan(filename string, src []byte) (*Plan, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(planSchema, cue.Filename("plan_schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile plan schema: %w", err)
	}

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Plan")).Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var plan Plan
	if err := unified.Decode(&plan); err != nil {
		return nil, formatCUEError(err)
	}
	if err := plan.validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// validate checks constraints the schema cannot express.
func (p *Plan) validate() error {
	for i, c := range p.Cases {
		field := fmt.Sprintf("cases[%d]", i)
		if c.Edges < c.Nodes-1 {
			return &PlanError{Field: field, Message: fmt.Sprintf("edges (%d) must be at least nodes-1 (%d) for a connected graph", c.Edges, c.Nodes-1)}
		}
		if c.Source >= c.Nodes {
			return &PlanError{Field: field, Message: fmt.Sprintf("source %d out of range for %d nodes", c.Source, c.Nodes)}
		}
		if c.Target != nil && *c.Target >= c.Nodes {
			return &PlanError{Field: field, Message: fmt.Sprintf("target %d out of range for %d nodes", *c.Target, c.Nodes)}
		}
	}
	if p.Has(Tier3) && len(p.MiddlewareCounts) == 0 {
		return &PlanError{Field: "middleware_counts", Message: "tier t3 needs at least one middleware count"}
	}
	return nil
}

// formatCUEError returns the first CUE error with its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	pe := &PlanError{Field: "cue", Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		pe.Pos = positions[0]
	}
	return pe
}
