package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/eventchains/internal/store"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	Database  string
	ID        string
	List      bool
	Samples   bool
	ChainRuns int
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show stored benchmark reports and chain runs",
		Long: `Read results recorded by "bench --db" and "run --db".

By default the latest benchmark report is rendered. Use --id to pick a
specific report, --list to enumerate reports, --samples to print the flat
per-measurement rows, and --chain-runs to show recent chain executions.

Examples:
  eventchains report --db ./results.db
  eventchains report --db ./results.db --list
  eventchains report --db ./results.db --id 0190f8a2-... --samples
  eventchains report --db ./runs.db --chain-runs 20 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "report ID (default: latest)")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list stored reports")
	cmd.Flags().BoolVar(&opts.Samples, "samples", false, "print per-measurement samples")
	cmd.Flags().IntVar(&opts.ChainRuns, "chain-runs", 0, "show the N most recent chain runs")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runReport(opts *ReportOptions, cmd *cobra.Command) error {
	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.Database))
	}
	if opts.ChainRuns < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("--chain-runs must not be negative, got %d", opts.ChainRuns))
	}

	st, err := openStore(opts.Database, nil)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := cmd.Context()
	out := newFormatter(cmd, opts.RootOptions)

	switch {
	case opts.ChainRuns > 0:
		runs, err := st.ChainRuns(ctx, opts.ChainRuns)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read chain runs", err)
		}
		if out.JSON() {
			return out.Success(runs)
		}
		renderChainRuns(out.Writer, runs)
		return nil

	case opts.List:
		reports, err := st.ListReports(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list reports", err)
		}
		if out.JSON() {
			return out.Success(reports)
		}
		renderReportList(out.Writer, reports)
		return nil
	}

	id, report, err := st.LoadReport(ctx, opts.ID)
	if errors.Is(err, store.ErrNotFound) {
		msg := "no reports stored"
		if opts.ID != "" {
			msg = fmt.Sprintf("report %s not found", opts.ID)
		}
		if out.JSON() {
			_ = out.Error(CodeReportNotFound, msg, nil)
		}
		return NewExitError(ExitCommandError, msg)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load report", err)
	}

	if opts.Samples {
		samples, err := st.Samples(ctx, id)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read samples", err)
		}
		if out.JSON() {
			return out.Success(samples)
		}
		renderSamples(out.Writer, samples)
		return nil
	}

	if out.JSON() {
		return out.Success(BenchResult{ID: id, Report: report})
	}
	renderReport(out.Writer, id, report)
	return nil
}

func renderReportList(w io.Writer, reports []store.ReportSummary) {
	if len(reports) == 0 {
		fmt.Fprintln(w, "No reports stored.")
		return
	}
	fmt.Fprintln(w, styles.Header.Render(fmt.Sprintf("%-36s  %-20s  %10s  %5s", "ID", "Started", "Duration", "Cases")))
	for _, r := range reports {
		fmt.Fprintf(w, "%-36s  %-20s  %10s  %5d\n",
			r.ID,
			r.StartedAt.Format(time.DateTime),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
			r.Cases,
		)
	}
}

func renderSamples(w io.Writer, samples []store.Sample) {
	fmt.Fprintln(w, styles.Header.Render(fmt.Sprintf("%-14s %-11s %-34s %12s %12s %12s",
		"Case", "Tier", "Implementation", "Mean (µs)", "P99 (µs)", "Bytes/run")))
	for _, s := range samples {
		fmt.Fprintf(w, "%-14s %-11s %-34s %12.2f %12.2f %12d\n",
			s.Case,
			s.Tier,
			s.Name,
			s.Stats.MeanMicros(),
			float64(s.Stats.P99.Nanoseconds())/1e3,
			s.Stats.AllocBytes,
		)
	}
}

func renderChainRuns(w io.Writer, runs []store.ChainRun) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No chain runs stored.")
		return
	}
	fmt.Fprintln(w, styles.Header.Render(fmt.Sprintf("%-36s  %-20s  %6s  %-6s  %-11s  %-23s  %8s",
		"ID", "Recorded", "Nodes", "Chain", "Mode", "Status", "Distance")))
	for _, r := range runs {
		distance := "-"
		if r.Result.Reachable {
			distance = fmt.Sprint(r.Result.Distance)
		}
		status := styles.Success.Render(fmt.Sprintf("%-23s", r.Status))
		if !r.Success {
			status = styles.Error.Render(fmt.Sprintf("%-23s", r.Status))
		}
		fmt.Fprintf(w, "%-36s  %-20s  %6d  %-6s  %-11s  %s  %8s\n",
			r.ID,
			r.RecordedAt.Format(time.DateTime),
			r.Nodes,
			r.Decomposition,
			r.FaultTolerance,
			status,
			distance,
		)
	}
}
