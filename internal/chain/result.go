package chain

import (
	"fmt"
	"strings"
	"time"
)

// FaultToleranceMode decides whether a chain continues after a failure.
type FaultToleranceMode int

const (
	// Strict stops at the first failure.
	Strict FaultToleranceMode = iota
	// Lenient runs every event regardless of earlier failures.
	Lenient
	// BestEffort continues after failures but skips Dependent events whose
	// required keys are absent.
	BestEffort
)

func (m FaultToleranceMode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	case BestEffort:
		return "best_effort"
	default:
		return fmt.Sprintf("FaultToleranceMode(%d)", int(m))
	}
}

// ParseFaultToleranceMode parses "strict", "lenient", or "best_effort"
// (case-insensitive; "best-effort" and "besteffort" are accepted too).
func ParseFaultToleranceMode(s string) (FaultToleranceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict", "":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	case "best_effort", "best-effort", "besteffort":
		return BestEffort, nil
	default:
		return Strict, fmt.Errorf("unknown fault tolerance mode %q: must be strict, lenient, or best_effort", s)
	}
}

// ChainStatus is the terminal state of a chain run.
type ChainStatus int

const (
	StatusCompleted ChainStatus = iota
	StatusCompletedWithWarnings
	StatusFailed
)

func (s ChainStatus) String() string {
	switch s {
	case StatusCompleted:
		return "COMPLETED"
	case StatusCompletedWithWarnings:
		return "COMPLETED_WITH_WARNINGS"
	case StatusFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("ChainStatus(%d)", int(s))
	}
}

// MarshalText renders the status name, e.g. in JSON output.
func (s ChainStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EventFailure records one failed event.
type EventFailure struct {
	Event     string    `json:"event"`
	Message   string    `json:"message"`
	Seq       int64     `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Err       error     `json:"-"`
}

func (f EventFailure) Error() string {
	return f.Event + ": " + f.Message
}

// Unwrap exposes the underlying error.
func (f EventFailure) Unwrap() error {
	return f.Err
}

// ChainResult is the outcome of Chain.Execute.
//
// Status is StatusFailed iff Success is false, and
// StatusCompletedWithWarnings iff Success is true and Failures or Skipped is
// non-empty.
type ChainResult struct {
	Success  bool           `json:"success"`
	Status   ChainStatus    `json:"status"`
	Failures []EventFailure `json:"failures"`
	Skipped  []string       `json:"skipped,omitempty"`
	Executed int            `json:"executed"`
}

// FailedEvents returns the names of failed events in encounter order.
func (r ChainResult) FailedEvents() []string {
	names := make([]string, len(r.Failures))
	for i, f := range r.Failures {
		names[i] = f.Event
	}
	return names
}

func newResult(failures []EventFailure, skipped []string, executed int, aborted bool) ChainResult {
	r := ChainResult{
		Failures: failures,
		Skipped:  skipped,
		Executed: executed,
	}
	if r.Failures == nil {
		r.Failures = []EventFailure{}
	}

	switch {
	case aborted, executed > 0 && len(failures) == executed:
		r.Status = StatusFailed
	case len(failures) > 0 || len(skipped) > 0:
		r.Success = true
		r.Status = StatusCompletedWithWarnings
	default:
		r.Success = true
		r.Status = StatusCompleted
	}
	return r
}
