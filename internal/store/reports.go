package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/eventchains/internal/bench"
)

// ReportSummary is a bench_reports row without the report body.
type ReportSummary struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Cases      int       `json:"cases"`
}

// Sample is one flattened measurement of a stored report.
type Sample struct {
	ReportID   string      `json:"report_id"`
	Case       string      `json:"case"`
	Tier       bench.Tier  `json:"tier"`
	Name       string      `json:"name"`
	Middleware int         `json:"middleware"`
	Stats      bench.Stats `json:"stats"`
}

// SaveReport stores a benchmark report and the plan that produced it, and
// returns the new report ID. Every measurement is also written to
// bench_samples in report order.
func (s *Store) SaveReport(ctx context.Context, plan *bench.Plan, report *bench.Report) (string, error) {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return "", fmt.Errorf("save report: marshal plan: %w", err)
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("save report: marshal report: %w", err)
	}

	id := s.ids.Generate()
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bench_reports (id, started_at, finished_at, cases, plan, report)
			VALUES (?, ?, ?, ?, ?, ?)
		`,
			id,
			formatTime(report.StartedAt),
			formatTime(report.FinishedAt),
			len(report.Cases),
			string(planJSON),
			string(reportJSON),
		)
		if err != nil {
			return fmt.Errorf("insert report: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO bench_samples
			(report_id, seq, case_label, tier, name, middleware, runs, successes,
			 mean_ns, median_ns, min_ns, max_ns, p95_ns, p99_ns, stddev_ns, alloc_bytes, allocs)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare sample insert: %w", err)
		}
		defer stmt.Close()

		seq := 0
		for _, cr := range report.Cases {
			for _, tr := range cr.Tiers {
				for _, m := range tr.Measurements {
					seq++
					st := m.Stats
					_, err := stmt.ExecContext(ctx,
						id, seq, cr.Case.Label(), string(tr.Tier), m.Name, m.Middleware,
						st.Runs, st.Successes,
						int64(st.Mean), int64(st.Median), int64(st.Min), int64(st.Max),
						int64(st.P95), int64(st.P99), st.StdDevNanos,
						st.AllocBytes, st.Allocs,
					)
					if err != nil {
						return fmt.Errorf("insert sample %d: %w", seq, err)
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return id, nil
}

// ListReports returns every stored report summary, oldest first.
//
// Returns an empty slice (not nil) if no reports exist.
func (s *Store) ListReports(ctx context.Context) ([]ReportSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, cases
		FROM bench_reports
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	summaries := []ReportSummary{}
	for rows.Next() {
		var (
			rs                ReportSummary
			started, finished string
		)
		if err := rows.Scan(&rs.ID, &started, &finished, &rs.Cases); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if rs.StartedAt, err = parseTime(started); err != nil {
			return nil, err
		}
		if rs.FinishedAt, err = parseTime(finished); err != nil {
			return nil, err
		}
		summaries = append(summaries, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return summaries, nil
}

// LoadReport returns the stored report with the given ID, or the most
// recent report when id is empty. Returns ErrNotFound if there is none.
func (s *Store) LoadReport(ctx context.Context, id string) (string, *bench.Report, error) {
	var row *sql.Row
	if id == "" {
		row = s.db.QueryRowContext(ctx, `
			SELECT id, report FROM bench_reports ORDER BY seq DESC LIMIT 1
		`)
	} else {
		row = s.db.QueryRowContext(ctx, `
			SELECT id, report FROM bench_reports WHERE id = ?
		`, id)
	}

	var gotID, body string
	if err := row.Scan(&gotID, &body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if id == "" {
				return "", nil, fmt.Errorf("load report: no reports stored: %w", ErrNotFound)
			}
			return "", nil, fmt.Errorf("load report %s: %w", id, ErrNotFound)
		}
		return "", nil, fmt.Errorf("load report: %w", err)
	}

	var report bench.Report
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return "", nil, fmt.Errorf("load report %s: decode: %w", gotID, err)
	}
	return gotID, &report, nil
}

// Samples returns the flattened measurements of a report in report order.
//
// Returns an empty slice (not nil) if the report has no samples.
func (s *Store) Samples(ctx context.Context, reportID string) ([]Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT case_label, tier, name, middleware, runs, successes,
		       mean_ns, median_ns, min_ns, max_ns, p95_ns, p99_ns, stddev_ns, alloc_bytes, allocs
		FROM bench_samples
		WHERE report_id = ?
		ORDER BY seq ASC
	`, reportID)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	samples := []Sample{}
	for rows.Next() {
		sm := Sample{ReportID: reportID}
		var (
			tier                           string
			mean, median, lo, hi, p95, p99 int64
		)
		err := rows.Scan(&sm.Case, &tier, &sm.Name, &sm.Middleware,
			&sm.Stats.Runs, &sm.Stats.Successes,
			&mean, &median, &lo, &hi, &p95, &p99,
			&sm.Stats.StdDevNanos, &sm.Stats.AllocBytes, &sm.Stats.Allocs)
		if err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		sm.Tier = bench.Tier(tier)
		sm.Stats.Mean = time.Duration(mean)
		sm.Stats.Median = time.Duration(median)
		sm.Stats.Min = time.Duration(lo)
		sm.Stats.Max = time.Duration(hi)
		sm.Stats.P95 = time.Duration(p95)
		sm.Stats.P99 = time.Duration(p99)
		samples = append(samples, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate samples: %w", err)
	}
	return samples, nil
}
