package bench

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Workload is one benchmarked call. It reports whether the call succeeded.
type Workload func() bool

// Runner times workloads.
type Runner struct {
	runs        int
	parallelism int
	warmup      bool
	now         func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRuns sets the number of timed iterations. Default: 100.
func WithRuns(n int) RunnerOption {
	return func(r *Runner) {
		r.runs = n
	}
}

// WithParallelism runs up to n iterations at once. Default: 1.
func WithParallelism(n int) RunnerOption {
	return func(r *Runner) {
		r.parallelism = n
	}
}

// WithWarmup enables or disables one untimed call before measuring.
// Default: enabled.
func WithWarmup(enabled bool) RunnerOption {
	return func(r *Runner) {
		r.warmup = enabled
	}
}

// WithNow sets the clock used to time iterations.
func WithNow(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		runs:        100,
		parallelism: 1,
		warmup:      true,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Runs returns the configured iteration count.
func (r *Runner) Runs() int {
	return r.runs
}

// Measure runs w r.runs times and summarizes the samples. Cancellation is
// checked between iterations; an iteration in progress always finishes.
func (r *Runner) Measure(ctx context.Context, w Workload) (Stats, error) {
	return r.measure(ctx, r.runs, w)
}

func (r *Runner) measure(ctx context.Context, runs int, w Workload) (Stats, error) {
	if runs < 1 {
		return Stats{}, fmt.Errorf("runs must be at least 1, got %d", runs)
	}
	if r.warmup {
		w()
	}

	samples := make([]time.Duration, runs)
	var successes atomic.Int64
	before := readAllocs()

	iterate := func(i int) {
		start := r.now()
		ok := w()
		samples[i] = r.now().Sub(start)
		if ok {
			successes.Add(1)
		}
	}

	if r.parallelism <= 1 {
		for i := 0; i < runs; i++ {
			if err := ctx.Err(); err != nil {
				return Stats{}, err
			}
			iterate(i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.parallelism)
		for i := 0; i < runs; i++ {
			if err := gctx.Err(); err != nil {
				break
			}
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				iterate(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Stats{}, err
		}
		if err := ctx.Err(); err != nil {
			return Stats{}, err
		}
	}

	return Summarize(samples, int(successes.Load()), before.since()), nil
}
