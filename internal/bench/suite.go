package bench

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Measurement is one timed implementation within a tier.
type Measurement struct {
	Name       string `json:"name"`
	Middleware int    `json:"middleware,omitempty"`
	Stats      Stats  `json:"stats"`
}

// TierReport holds a tier's measurements. Measurements[0] is the baseline.
type TierReport struct {
	Tier         Tier          `json:"tier"`
	Title        string        `json:"title"`
	Measurements []Measurement `json:"measurements"`
}

// Baseline returns the first measurement.
func (t TierReport) Baseline() Measurement {
	if len(t.Measurements) == 0 {
		return Measurement{}
	}
	return t.Measurements[0]
}

// Overhead returns measurement i's time overhead against the baseline.
func (t TierReport) Overhead(i int) float64 {
	return t.Measurements[i].Stats.OverheadVs(t.Baseline().Stats)
}

// MemoryOverhead returns measurement i's allocation overhead against the
// baseline.
func (t TierReport) MemoryOverhead(i int) float64 {
	return t.Measurements[i].Stats.MemoryOverheadVs(t.Baseline().Stats)
}

// CostPerLayer returns measurement i's extra mean time per middleware layer,
// in microseconds. It is zero for measurements without middleware.
func (t TierReport) CostPerLayer(i int) float64 {
	m := t.Measurements[i]
	if m.Middleware == 0 {
		return 0
	}
	return (m.Stats.MeanMicros() - t.Baseline().Stats.MeanMicros()) / float64(m.Middleware)
}

// Finding is one line of the executive summary.
type Finding struct {
	Tier           Tier    `json:"tier"`
	Label          string  `json:"label"`
	Value          float64 `json:"value"`
	Unit           string  `json:"unit"`
	MemoryOverhead float64 `json:"memory_overhead"`
}

// CaseReport is the result of every tier for one case.
type CaseReport struct {
	Case     Case         `json:"case"`
	Tiers    []TierReport `json:"tiers"`
	Findings []Finding    `json:"findings"`
}

// Report is the result of a full plan.
type Report struct {
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Cases      []CaseReport `json:"cases"`
}

// Suite runs benchmark plans.
type Suite struct {
	logger  *slog.Logger
	now     func() time.Time
	observe Observer
}

// Observer is called after every measurement completes.
type Observer func(c Case, tier Tier, m Measurement)

// SuiteOption configures a Suite.
type SuiteOption func(*Suite)

// WithSuiteLogger sets the logger for progress messages and for the
// logging middleware under test. The latter logs at debug level only.
func WithSuiteLogger(logger *slog.Logger) SuiteOption {
	return func(s *Suite) {
		s.logger = logger
	}
}

// WithSuiteClock sets the wall clock for iteration timing and report
// timestamps.
func WithSuiteClock(now func() time.Time) SuiteOption {
	return func(s *Suite) {
		s.now = now
	}
}

// WithObserver registers fn to receive each measurement as it completes.
func WithObserver(fn Observer) SuiteOption {
	return func(s *Suite) {
		s.observe = fn
	}
}

// NewSuite creates a Suite.
func NewSuite(opts ...SuiteOption) *Suite {
	s := &Suite{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes every case of plan.
func (s *Suite) Run(ctx context.Context, plan *Plan) (*Report, error) {
	report := &Report{StartedAt: s.now()}
	for _, c := range plan.Cases {
		cr, err := s.RunCase(ctx, plan, c)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.Label(), err)
		}
		report.Cases = append(report.Cases, cr)
	}
	report.FinishedAt = s.now()
	return report, nil
}

// RunCase executes the plan's tiers against one case.
func (s *Suite) RunCase(ctx context.Context, plan *Plan, c Case) (CaseReport, error) {
	source, target := c.Endpoints()
	in := Input{Graph: c.Graph(), Source: source, Target: target, Logger: s.logger}
	runner := NewRunner(
		WithRuns(c.Runs),
		WithParallelism(plan.Parallelism),
		WithWarmup(plan.Warmup),
		WithNow(s.now),
	)

	s.logger.Info("benchmarking case",
		"case", c.Label(),
		"nodes", c.Nodes,
		"edges", in.Graph.EdgeCount(),
		"runs", c.Runs,
	)

	report := CaseReport{Case: c}
	for _, tier := range AllTiers {
		if !plan.Has(tier) {
			continue
		}
		tr, err := s.runTier(ctx, runner, c, tier, in, plan.MiddlewareCounts)
		if err != nil {
			return CaseReport{}, fmt.Errorf("tier %s: %w", tier, err)
		}
		report.Tiers = append(report.Tiers, tr)
	}
	report.Findings = executiveSummary(report.Tiers)
	return report, nil
}

type candidate struct {
	name       string
	middleware int
	workload   Workload
}

func (s *Suite) runTier(ctx context.Context, runner *Runner, c Case, tier Tier, in Input, counts []int) (TierReport, error) {
	tr := TierReport{Tier: tier}
	var candidates []candidate

	switch tier {
	case TierComparison:
		tr.Title = "Implementation Comparison"
		candidates = []candidate{
			{name: "Traditional (baseline)", workload: TraditionalWorkload(in)},
			{name: "EventChains (bare)", workload: BareWorkload(in)},
			{name: "EventChains (full middleware)", middleware: 3, workload: FullWorkload(in)},
			{name: "EventChains (optimized)", workload: OptimizedWorkload(in)},
		}
	case Tier1:
		tr.Title = "Minimal Baseline: Cost of Orchestration"
		candidates = []candidate{
			{name: "Bare function calls", workload: BareCallsWorkload(in)},
			{name: "EventChains (no middleware)", workload: OptimizedWorkload(in)},
		}
	case Tier2:
		tr.Title = "Feature-Parity Baseline: Cost of Abstraction"
		candidates = []candidate{
			{name: "Manual (instrumented)", workload: ManualInstrumentedWorkload(in)},
			{name: "EventChains (no middleware)", workload: OptimizedWorkload(in)},
		}
	case Tier3:
		tr.Title = "Middleware Scaling: Cost per Layer"
		if len(counts) == 0 || counts[0] != 0 {
			counts = append([]int{0}, counts...)
		}
		for _, n := range counts {
			candidates = append(candidates, candidate{
				name:       fmt.Sprintf("%d middleware", n),
				middleware: n,
				workload:   NoOpWorkload(in, n),
			})
		}
	case Tier4:
		tr.Title = "Real-World: Manual vs Middleware Instrumentation"
		candidates = []candidate{
			{name: "Manual (logging + timing)", workload: ManualLoggedWorkload(in)},
			{name: "EventChains (logging + timing)", middleware: 2, workload: InstrumentedWorkload(in)},
		}
	default:
		return TierReport{}, fmt.Errorf("unknown tier %q", tier)
	}

	for _, cand := range candidates {
		stats, err := runner.Measure(ctx, cand.workload)
		if err != nil {
			return TierReport{}, err
		}
		s.logger.Debug("measured",
			"tier", string(tier),
			"name", cand.name,
			"mean_us", stats.MeanMicros(),
			"success_rate", stats.SuccessRate(),
		)
		m := Measurement{
			Name:       cand.name,
			Middleware: cand.middleware,
			Stats:      stats,
		}
		if s.observe != nil {
			s.observe(c, tier, m)
		}
		tr.Measurements = append(tr.Measurements, m)
	}
	return tr, nil
}
