package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/eventchains/internal/chain"
	"github.com/roach88/eventchains/internal/graph"
	"github.com/roach88/eventchains/internal/trace"
)

// ChainRun is the recorded outcome of one chain execution.
type ChainRun struct {
	ID             string                   `json:"id"`
	RecordedAt     time.Time                `json:"recorded_at"`
	Nodes          int                      `json:"nodes"`
	Decomposition  string                   `json:"decomposition"`
	FaultTolerance string                   `json:"fault_tolerance"`
	Status         string                   `json:"status"`
	Success        bool                     `json:"success"`
	Executed       int                      `json:"executed"`
	FailedEvents   []string                 `json:"failed_events"`
	Skipped        []string                 `json:"skipped"`
	Result         graph.ShortestPathResult `json:"result"`
}

// NewChainRun builds a ChainRun from a path result and the chain outcome.
// ID and RecordedAt are assigned by SaveChainRun.
func NewChainRun(nodes int, decomposition string, mode chain.FaultToleranceMode, path graph.ShortestPathResult, res chain.ChainResult) ChainRun {
	return ChainRun{
		Nodes:          nodes,
		Decomposition:  decomposition,
		FaultTolerance: mode.String(),
		Status:         res.Status.String(),
		Success:        res.Success,
		Executed:       res.Executed,
		FailedEvents:   res.FailedEvents(),
		Skipped:        res.Skipped,
		Result:         path,
	}
}

// SaveChainRun stores run and returns it with ID and RecordedAt filled in.
//
// Path, failed events, and skipped events are stored as canonical JSON
// arrays so equal runs produce byte-identical rows.
func (s *Store) SaveChainRun(ctx context.Context, run ChainRun) (ChainRun, error) {
	path, err := canonicalList(run.Result.Path)
	if err != nil {
		return ChainRun{}, fmt.Errorf("save chain run: path: %w", err)
	}
	failed, err := canonicalList(run.FailedEvents)
	if err != nil {
		return ChainRun{}, fmt.Errorf("save chain run: failed events: %w", err)
	}
	skipped, err := canonicalList(run.Skipped)
	if err != nil {
		return ChainRun{}, fmt.Errorf("save chain run: skipped: %w", err)
	}

	run.ID = s.ids.Generate()
	run.RecordedAt = s.now().UTC()

	var distance sql.NullInt64
	if run.Result.Reachable {
		distance = sql.NullInt64{Int64: int64(run.Result.Distance), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chain_runs
		(id, recorded_at, nodes, source, target, decomposition, fault_tolerance,
		 status, success, executed, reachable, distance, path, failed_events, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		formatTime(run.RecordedAt),
		run.Nodes,
		int64(run.Result.Source),
		int64(run.Result.Target),
		run.Decomposition,
		run.FaultTolerance,
		run.Status,
		run.Success,
		run.Executed,
		run.Result.Reachable,
		distance,
		path,
		failed,
		skipped,
	)
	if err != nil {
		return ChainRun{}, fmt.Errorf("save chain run: %w", err)
	}
	return run, nil
}

// ChainRuns returns the most recent limit runs, oldest first. A limit of
// zero or less returns every run.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ChainRuns(ctx context.Context, limit int) ([]ChainRun, error) {
	const columns = `seq, id, recorded_at, nodes, source, target, decomposition, fault_tolerance,
		status, success, executed, reachable, distance, path, failed_events, skipped`
	query := `SELECT ` + columns + ` FROM chain_runs ORDER BY seq ASC`
	var args []any
	if limit > 0 {
		query = `SELECT * FROM (
			SELECT ` + columns + ` FROM chain_runs ORDER BY seq DESC LIMIT ?
		) ORDER BY seq ASC`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chain runs: %w", err)
	}
	defer rows.Close()

	runs := []ChainRun{}
	for rows.Next() {
		run, err := scanChainRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chain runs: %w", err)
	}
	return runs, nil
}

func scanChainRun(rows *sql.Rows) (ChainRun, error) {
	var (
		run                     ChainRun
		seq                     int64
		recordedAt              string
		source, target          int64
		distance                sql.NullInt64
		path, failed, skippedJS string
	)
	err := rows.Scan(
		&seq, &run.ID, &recordedAt, &run.Nodes, &source, &target,
		&run.Decomposition, &run.FaultTolerance, &run.Status,
		&run.Success, &run.Executed, &run.Result.Reachable, &distance,
		&path, &failed, &skippedJS,
	)
	if err != nil {
		return ChainRun{}, fmt.Errorf("scan chain run: %w", err)
	}

	if run.RecordedAt, err = parseTime(recordedAt); err != nil {
		return ChainRun{}, err
	}
	run.Result.Source = graph.NodeID(source)
	run.Result.Target = graph.NodeID(target)
	if distance.Valid {
		run.Result.Distance = uint32(distance.Int64)
	}

	if err := json.Unmarshal([]byte(path), &run.Result.Path); err != nil {
		return ChainRun{}, fmt.Errorf("decode path: %w", err)
	}
	if err := json.Unmarshal([]byte(failed), &run.FailedEvents); err != nil {
		return ChainRun{}, fmt.Errorf("decode failed events: %w", err)
	}
	if err := json.Unmarshal([]byte(skippedJS), &run.Skipped); err != nil {
		return ChainRun{}, fmt.Errorf("decode skipped: %w", err)
	}
	return run, nil
}

// canonicalList encodes a slice as a canonical JSON array. A nil slice
// encodes as [].
func canonicalList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := trace.MarshalCanonical(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
