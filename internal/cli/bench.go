package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/eventchains/internal/bench"
	"github.com/roach88/eventchains/internal/store"
)

// BenchOptions holds flags for the bench command.
type BenchOptions struct {
	*RootOptions
	Plan        string
	Runs        int
	Parallel    int
	Tiers       []string
	NoWarmup    bool
	Database    string
	MetricsAddr string

	// IDs overrides the report ID generator (for testing).
	IDs store.IDGenerator
}

// BenchResult is the JSON payload of the bench command.
type BenchResult struct {
	ID     string        `json:"id,omitempty"`
	Report *bench.Report `json:"report"`
}

// NewBenchCommand creates the bench command.
func NewBenchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BenchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure event chain overhead against plain code",
		Long: `Run the tiered overhead benchmark.

Each case builds a seeded random graph and measures:
  comparison - traditional vs bare, full, and optimized chains
  t1         - bare function calls vs the optimized chain
  t2         - manual instrumented steps vs the optimized chain
  t3         - chain cost as no-op middleware layers are added
  t4         - manual logging and timing vs chain middleware

Without --plan the four standard graph sizes are used. A plan is a CUE
file with cases, middleware_counts, parallelism, warmup, and tiers.

Examples:
  eventchains bench
  eventchains bench --plan ./plans/quick.cue --db ./results.db
  eventchains bench --runs 10 --tiers t1,t3 --format json
  eventchains bench --metrics-addr :9090`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Plan, "plan", "", "CUE benchmark plan (default: the standard four cases)")
	cmd.Flags().IntVar(&opts.Runs, "runs", 0, "override the run count of every case")
	cmd.Flags().IntVar(&opts.Parallel, "parallel", 0, "override the plan's parallelism")
	cmd.Flags().StringSliceVar(&opts.Tiers, "tiers", nil, "restrict to these tiers (comparison|t1|t2|t3|t4)")
	cmd.Flags().BoolVar(&opts.NoWarmup, "no-warmup", false, "skip the warm-up run before each measurement")
	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database to store the report in")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve benchmark gauges on this address while running")

	return cmd
}

// loadPlan resolves the plan file and applies flag overrides.
func (o *BenchOptions) loadPlan() (*bench.Plan, error) {
	plan := bench.DefaultPlan()
	if o.Plan != "" {
		var err error
		if plan, err = bench.LoadPlan(o.Plan); err != nil {
			return nil, err
		}
	}

	if o.Runs < 0 {
		return nil, fmt.Errorf("--runs must not be negative, got %d", o.Runs)
	}
	if o.Runs > 0 {
		for i := range plan.Cases {
			plan.Cases[i].Runs = o.Runs
		}
	}
	if o.Parallel < 0 {
		return nil, fmt.Errorf("--parallel must not be negative, got %d", o.Parallel)
	}
	if o.Parallel > 0 {
		plan.Parallelism = o.Parallel
	}
	if o.NoWarmup {
		plan.Warmup = false
	}
	if len(o.Tiers) > 0 {
		tiers := make([]bench.Tier, 0, len(o.Tiers))
		for _, name := range o.Tiers {
			t := bench.Tier(name)
			if !slices.Contains(bench.AllTiers, t) {
				return nil, fmt.Errorf("unknown tier %q: must be one of %v", name, bench.AllTiers)
			}
			tiers = append(tiers, t)
		}
		plan.Tiers = tiers
	}
	return plan, nil
}

func runBench(opts *BenchOptions, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)

	plan, err := opts.loadPlan()
	if err != nil {
		var planErr *bench.PlanError
		if errors.As(err, &planErr) && out.JSON() {
			_ = out.Error(CodePlanInvalid, planErr.Error(), planErr.Field)
		}
		return WrapExitError(ExitCommandError, "invalid plan", err)
	}

	suiteOpts := []bench.SuiteOption{bench.WithSuiteLogger(slog.Default())}

	if opts.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		gauges, err := newBenchGauges(reg)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to register metrics", err)
		}
		metrics, err := startMetricsServer(opts.MetricsAddr, reg)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start metrics server", err)
		}
		defer func() {
			if err := metrics.Close(); err != nil {
				slog.Error("error stopping metrics server", "error", err)
			}
		}()
		suiteOpts = append(suiteOpts, bench.WithObserver(gauges.Observe))
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	out.VerboseLog("running %d case(s), tiers %v", len(plan.Cases), plan.Tiers)
	report, err := bench.NewSuite(suiteOpts...).Run(ctx, plan)
	if err != nil {
		return WrapExitError(ExitCommandError, "benchmark aborted", err)
	}

	result := BenchResult{Report: report}
	if opts.Database != "" {
		st, err := openStore(opts.Database, opts.IDs)
		if err != nil {
			return err
		}
		defer closeStore(st)

		id, err := st.SaveReport(ctx, plan, report)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to save report", err)
		}
		result.ID = id
		slog.Info("report saved", "id", id, "db", opts.Database)
	}

	if out.JSON() {
		return out.Success(result)
	}
	renderReport(out.Writer, result.ID, report)
	return nil
}
