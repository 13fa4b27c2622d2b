package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/eventchains/internal/bench"
)

var (
	colorTitle   = lipgloss.Color("#5FAFFF")
	colorSuccess = lipgloss.Color("#2ECC71")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#7F8C8D")
)

// styles holds the console report styles.
var styles = struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colorTitle),
	Header:  lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	Success: lipgloss.NewStyle().Foreground(colorSuccess),
	Warning: lipgloss.NewStyle().Foreground(colorWarning),
	Error:   lipgloss.NewStyle().Foreground(colorError),
}

const ruleWidth = 96

// overheadStyle colors an overhead percentage: under 20% is green, under
// 50% yellow, anything else red.
func overheadStyle(pct float64) lipgloss.Style {
	switch {
	case pct < 20:
		return styles.Success
	case pct < 50:
		return styles.Warning
	default:
		return styles.Error
	}
}

func formatPercent(pct float64) string {
	return fmt.Sprintf("%+.2f%%", pct)
}

func rule(ch string) string {
	return styles.Muted.Render(strings.Repeat(ch, ruleWidth))
}

// renderReport writes a benchmark report as styled tables, one per tier,
// followed by each case's executive summary.
func renderReport(w io.Writer, id string, report *bench.Report) {
	if id != "" {
		fmt.Fprintln(w, styles.Muted.Render("report "+id))
	}
	for _, cr := range report.Cases {
		c := cr.Case
		fmt.Fprintln(w, rule("═"))
		fmt.Fprintln(w, styles.Title.Render(fmt.Sprintf(
			"Graph %s: %d nodes, %d edges, %d runs", c.Label(), c.Nodes, c.Edges, c.Runs)))
		fmt.Fprintln(w, rule("═"))

		for _, tr := range cr.Tiers {
			renderTier(w, tr)
		}
		renderFindings(w, cr.Findings)
	}
	fmt.Fprintf(w, "\nTotal time: %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
}

func renderTier(w io.Writer, tr bench.TierReport) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.Header.Render(tr.Title))
	fmt.Fprintf(w, "%-34s %12s %12s %12s %12s %12s\n",
		"Implementation", "Mean (µs)", "Median (µs)", "P95 (µs)", "Overhead", "Memory")
	fmt.Fprintln(w, rule("─"))

	for i, m := range tr.Measurements {
		s := m.Stats
		overhead := styles.Success.Render(fmt.Sprintf("%12s", "baseline"))
		memory := fmt.Sprintf("%12s", "")
		if i > 0 {
			pct := tr.Overhead(i)
			overhead = overheadStyle(pct).Render(fmt.Sprintf("%12s", formatPercent(pct)))
			mem := tr.MemoryOverhead(i)
			memory = overheadStyle(mem).Render(fmt.Sprintf("%12s", formatPercent(mem)))
		}
		fmt.Fprintf(w, "%-34s %12.2f %12.2f %12.2f %s %s\n",
			m.Name,
			s.MeanMicros(),
			float64(s.Median.Nanoseconds())/1e3,
			float64(s.P95.Nanoseconds())/1e3,
			overhead,
			memory,
		)
		if tr.Tier == bench.Tier3 && m.Middleware > 0 {
			fmt.Fprintln(w, styles.Muted.Render(fmt.Sprintf("  %.3f µs per layer", tr.CostPerLayer(i))))
		}
		if s.Successes < s.Runs {
			fmt.Fprintln(w, styles.Warning.Render(fmt.Sprintf("  %d/%d runs succeeded", s.Successes, s.Runs)))
		}
	}
}

func renderFindings(w io.Writer, findings []bench.Finding) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, styles.Header.Render("Executive summary"))
	for _, f := range findings {
		value := fmt.Sprintf("%.3f %s", f.Value, f.Unit)
		if f.Unit == "%" {
			value = overheadStyle(f.Value).Render(formatPercent(f.Value))
		}
		fmt.Fprintf(w, "  %-34s %s  (memory %s)\n", f.Label, value, formatPercent(f.MemoryOverhead))
	}
}
