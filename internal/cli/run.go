package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/eventchains/internal/chain"
	"github.com/roach88/eventchains/internal/dijkstra"
	"github.com/roach88/eventchains/internal/graph"
	"github.com/roach88/eventchains/internal/middleware"
	"github.com/roach88/eventchains/internal/store"
)

// Middleware names accepted by --middleware.
const (
	mwLogging  = "logging"
	mwTiming   = "timing"
	mwCounting = "counting"
	mwNoOp     = "noop"
	mwMetrics  = "metrics"
)

var validMiddleware = []string{mwLogging, mwTiming, mwCounting, mwNoOp, mwMetrics}

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Nodes         int
	Edges         int
	MaxWeight     uint32
	Seed          uint64
	Source        int
	Target        int // -1 selects the last node
	Decomposition string
	Steps         int // -1 selects one ProcessNode per node
	Mode          string
	Middleware    []string
	Repeat        int
	Database      string
	MetricsAddr   string

	// IDs overrides the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDs store.IDGenerator
}

// RunSummary is the outcome reported by the run command.
type RunSummary struct {
	Nodes            int                      `json:"nodes"`
	Edges            int                      `json:"edges"`
	Seed             uint64                   `json:"seed"`
	Decomposition    string                   `json:"decomposition"`
	FaultTolerance   string                   `json:"fault_tolerance"`
	Middleware       []string                 `json:"middleware"`
	Repeat           int                      `json:"repeat"`
	Path             graph.ShortestPathResult `json:"path"`
	Chain            chain.ChainResult        `json:"chain"`
	MatchesReference bool                     `json:"matches_reference"`
	EventsCounted    uint64                   `json:"events_counted,omitempty"`
	Elapsed          time.Duration            `json:"elapsed_ns"`
	RunIDs           []string                 `json:"run_ids,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run Dijkstra as an event chain on a random graph",
		Long: `Build a seeded random connected graph, run shortest-path as an event
chain wrapped in the requested middleware, and compare the result against
the traditional single-function implementation.

Middleware is applied in flag order, so the last one listed is outermost.

Exit codes:
  0 - Chain completed (possibly with warnings)
  1 - Chain failed
  2 - Command error (invalid flags, database errors, etc.)

Examples:
  eventchains run
  eventchains run --nodes 1000 --edges 5000 --middleware counting,timing,logging
  eventchains run --decomposition coarse --mode lenient --db ./runs.db
  eventchains run --middleware metrics --repeat 100 --metrics-addr :9090`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChain(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Nodes, "nodes", 100, "number of graph nodes")
	cmd.Flags().IntVar(&opts.Edges, "edges", 500, "number of undirected edges")
	cmd.Flags().Uint32Var(&opts.MaxWeight, "max-weight", 100, "maximum edge weight")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", graph.DefaultSeed, "graph generator seed")
	cmd.Flags().IntVar(&opts.Source, "source", 0, "source node")
	cmd.Flags().IntVar(&opts.Target, "target", -1, "target node (-1 for the last node)")
	cmd.Flags().StringVar(&opts.Decomposition, "decomposition", "fine", "event decomposition (fine|coarse)")
	cmd.Flags().IntVar(&opts.Steps, "steps", -1, "ProcessNode events in a fine chain (-1 for one per node)")
	cmd.Flags().StringVar(&opts.Mode, "mode", "strict", "fault tolerance (strict|lenient|best_effort)")
	cmd.Flags().StringSliceVar(&opts.Middleware, "middleware", nil,
		"middleware to apply, innermost first ("+strings.Join(validMiddleware, "|")+")")
	cmd.Flags().IntVar(&opts.Repeat, "repeat", 1, "number of chain executions")
	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database to record runs in")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address until interrupted")

	return cmd
}

func (o *RunOptions) validate() (chain.FaultToleranceMode, error) {
	if o.Nodes < 1 {
		return 0, fmt.Errorf("--nodes must be at least 1, got %d", o.Nodes)
	}
	if o.Edges < o.Nodes-1 {
		return 0, fmt.Errorf("--edges must be at least nodes-1 (%d) for a connected graph, got %d", o.Nodes-1, o.Edges)
	}
	if o.Source < 0 || o.Source >= o.Nodes {
		return 0, fmt.Errorf("--source %d out of range [0, %d)", o.Source, o.Nodes)
	}
	if o.Target < -1 || o.Target >= o.Nodes {
		return 0, fmt.Errorf("--target %d out of range [0, %d)", o.Target, o.Nodes)
	}
	if o.Decomposition != "fine" && o.Decomposition != "coarse" {
		return 0, fmt.Errorf("--decomposition must be fine or coarse, got %q", o.Decomposition)
	}
	if o.Repeat < 1 {
		return 0, fmt.Errorf("--repeat must be at least 1, got %d", o.Repeat)
	}
	for _, name := range o.Middleware {
		if !slices.Contains(validMiddleware, name) {
			return 0, fmt.Errorf("unknown middleware %q: must be one of %v", name, validMiddleware)
		}
	}
	return chain.ParseFaultToleranceMode(o.Mode)
}

func runChain(opts *RunOptions, cmd *cobra.Command) error {
	out := newFormatter(cmd, opts.RootOptions)

	mode, err := opts.validate()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid flags", err)
	}

	target := opts.Target
	if target < 0 {
		target = opts.Nodes - 1
	}
	source, dest := graph.NodeID(opts.Source), graph.NodeID(target)
	g := graph.RandomConnected(opts.Nodes, opts.Edges, opts.MaxWeight, opts.Seed)
	slog.Debug("graph generated", "nodes", g.NodeCount(), "edges", g.EdgeCount(), "seed", opts.Seed)

	reg := prometheus.NewRegistry()
	mws, counter, err := buildMiddleware(opts.Middleware, reg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build middleware", err)
	}

	var st *store.Store
	if opts.Database != "" {
		st, err = openStore(opts.Database, opts.IDs)
		if err != nil {
			return err
		}
		defer closeStore(st)
	}

	var metrics *metricsServer
	if opts.MetricsAddr != "" {
		metrics, err = startMetricsServer(opts.MetricsAddr, reg)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to start metrics server", err)
		}
		defer func() {
			if err := metrics.Close(); err != nil {
				slog.Error("error stopping metrics server", "error", err)
			}
		}()
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	chainOpts := []dijkstra.Option{
		dijkstra.WithMiddleware(mws...),
		dijkstra.WithChainOptions(chain.WithFaultTolerance(mode)),
	}
	if opts.Steps >= 0 {
		chainOpts = append(chainOpts, dijkstra.WithSteps(opts.Steps))
	}
	var c *chain.Chain
	if opts.Decomposition == "coarse" {
		c = dijkstra.CoarseGrained(chainOpts...)
	} else {
		c = dijkstra.FineGrained(g, chainOpts...)
	}

	summary := RunSummary{
		Nodes:          opts.Nodes,
		Edges:          g.EdgeCount() / 2,
		Seed:           opts.Seed,
		Decomposition:  opts.Decomposition,
		FaultTolerance: mode.String(),
		Middleware:     append([]string{}, opts.Middleware...),
	}

	start := time.Now()
	for i := 0; i < opts.Repeat; i++ {
		if err := ctx.Err(); err != nil {
			return WrapExitError(ExitCommandError, "interrupted", err)
		}
		summary.Path, summary.Chain = dijkstra.Run(c, dijkstra.NewContext(g, source, dest))
		summary.Repeat++

		if st != nil {
			run := store.NewChainRun(opts.Nodes, opts.Decomposition, mode, summary.Path, summary.Chain)
			saved, err := st.SaveChainRun(ctx, run)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to record run", err)
			}
			summary.RunIDs = append(summary.RunIDs, saved.ID)
		}
	}
	summary.Elapsed = time.Since(start)
	if counter != nil {
		summary.EventsCounted = counter.Count()
	}

	reference := dijkstra.Traditional(g, source, dest)
	summary.MatchesReference = samePath(summary.Path, reference)
	if !summary.MatchesReference {
		slog.Warn("chain result differs from traditional",
			"chain_distance", summary.Path.Distance,
			"reference_distance", reference.Distance,
		)
	}

	if out.JSON() {
		if err := out.Success(summary); err != nil {
			return err
		}
	} else {
		renderRun(out.Writer, summary)
	}

	if metrics != nil {
		fmt.Fprintf(out.GetErrWriter(), "Serving metrics on http://%s/metrics (Ctrl-C to stop)\n", metrics.Addr())
		waitForShutdown(ctx)
	}

	if summary.Chain.Status == chain.StatusFailed {
		return NewExitError(ExitFailure, fmt.Sprintf("chain failed: %s", strings.Join(summary.Chain.FailedEvents(), ", ")))
	}
	return nil
}

// buildMiddleware constructs the named middleware in order. The returned
// counter is non-nil when "counting" was requested.
func buildMiddleware(names []string, reg prometheus.Registerer) ([]chain.Middleware, *middleware.Counter, error) {
	var (
		mws     []chain.Middleware
		counter *middleware.Counter
	)
	for i, name := range names {
		switch name {
		case mwLogging:
			mws = append(mws, middleware.Logging(slog.Default()))
		case mwTiming:
			mws = append(mws, middleware.Timing(time.Now))
		case mwCounting:
			if counter == nil {
				counter = middleware.NewCounter()
			}
			mws = append(mws, counter)
		case mwNoOp:
			mws = append(mws, middleware.NoOp(i))
		case mwMetrics:
			m, err := middleware.NewMetrics(reg)
			if err != nil {
				return nil, nil, err
			}
			mws = append(mws, m)
		default:
			return nil, nil, fmt.Errorf("unknown middleware %q", name)
		}
	}
	return mws, counter, nil
}

func samePath(a, b graph.ShortestPathResult) bool {
	return a.Reachable == b.Reachable && a.Distance == b.Distance && slices.Equal(a.Path, b.Path)
}

func renderRun(w io.Writer, s RunSummary) {
	fmt.Fprintln(w, styles.Title.Render(fmt.Sprintf(
		"Dijkstra chain: %d nodes, %d edges (seed %d)", s.Nodes, s.Edges, s.Seed)))
	fmt.Fprintf(w, "  decomposition:   %s\n", s.Decomposition)
	fmt.Fprintf(w, "  fault tolerance: %s\n", s.FaultTolerance)
	if len(s.Middleware) > 0 {
		fmt.Fprintf(w, "  middleware:      %s\n", strings.Join(s.Middleware, " → "))
	}

	if s.Path.Reachable {
		fmt.Fprintf(w, "  distance:        %d\n", s.Path.Distance)
		fmt.Fprintf(w, "  path:            %s\n", formatPath(s.Path.Path))
	} else {
		fmt.Fprintf(w, "  distance:        %s\n", styles.Warning.Render("unreachable"))
	}

	status := s.Chain.Status.String()
	switch s.Chain.Status {
	case chain.StatusCompleted:
		status = styles.Success.Render(status)
	case chain.StatusCompletedWithWarnings:
		status = styles.Warning.Render(status)
	default:
		status = styles.Error.Render(status)
	}
	fmt.Fprintf(w, "  status:          %s (%d events executed)\n", status, s.Chain.Executed)
	for _, f := range s.Chain.Failures {
		fmt.Fprintf(w, "    ✗ %s (seq %d): %s\n", f.Event, f.Seq, f.Message)
	}
	for _, name := range s.Chain.Skipped {
		fmt.Fprintf(w, "    - %s skipped\n", name)
	}
	if s.EventsCounted > 0 {
		fmt.Fprintf(w, "  events counted:  %d\n", s.EventsCounted)
	}

	match := styles.Success.Render("✓ matches traditional")
	if !s.MatchesReference {
		match = styles.Error.Render("✗ differs from traditional")
	}
	fmt.Fprintf(w, "  %s\n", match)
	fmt.Fprintf(w, "  %d run(s) in %s\n", s.Repeat, s.Elapsed.Round(time.Microsecond))
	for _, id := range s.RunIDs {
		fmt.Fprintf(w, "  recorded %s\n", styles.Muted.Render(id))
	}
}

func formatPath(path []graph.NodeID) string {
	parts := make([]string, len(path))
	for i, n := range path {
		parts[i] = fmt.Sprint(int(n))
	}
	return strings.Join(parts, " → ")
}

// openStore opens the results database, mapping failures to a command error.
func openStore(path string, ids store.IDGenerator) (*store.Store, error) {
	var opts []store.Option
	if ids != nil {
		opts = append(opts, store.WithIDGenerator(ids))
	}
	st, err := store.Open(path, opts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	slog.Debug("database ready", "path", path)
	return st, nil
}

func closeStore(st *store.Store) {
	if err := st.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}
