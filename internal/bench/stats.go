package bench

import (
	"math"
	"slices"
	"time"
)

// Stats summarizes repeated timings of one workload.
type Stats struct {
	Runs        int           `json:"runs"`
	Successes   int           `json:"successes"`
	Mean        time.Duration `json:"mean_ns"`
	Median      time.Duration `json:"median_ns"`
	Min         time.Duration `json:"min_ns"`
	Max         time.Duration `json:"max_ns"`
	P95         time.Duration `json:"p95_ns"`
	P99         time.Duration `json:"p99_ns"`
	StdDevNanos float64       `json:"stddev_ns"`

	// AllocBytes and Allocs are per-run averages.
	AllocBytes uint64 `json:"alloc_bytes"`
	Allocs     uint64 `json:"allocs"`
}

// Summarize computes Stats from raw samples. Empty input yields zero Stats.
func Summarize(samples []time.Duration, successes int, mem Allocation) Stats {
	runs := len(samples)
	if runs == 0 {
		return Stats{}
	}

	sorted := slices.Clone(samples)
	slices.Sort(sorted)

	var sum float64
	for _, d := range sorted {
		sum += float64(d)
	}
	mean := sum / float64(runs)

	var variance float64
	for _, d := range sorted {
		diff := float64(d) - mean
		variance += diff * diff
	}
	variance /= float64(runs)

	median := sorted[runs/2]
	if runs%2 == 0 {
		median = (sorted[runs/2-1] + sorted[runs/2]) / 2
	}

	return Stats{
		Runs:        runs,
		Successes:   successes,
		Mean:        time.Duration(mean),
		Median:      median,
		Min:         sorted[0],
		Max:         sorted[runs-1],
		P95:         percentile(sorted, 0.95),
		P99:         percentile(sorted, 0.99),
		StdDevNanos: math.Sqrt(variance),
		AllocBytes:  mem.Bytes / uint64(runs),
		Allocs:      mem.Objects / uint64(runs),
	}
}

// percentile uses nearest-rank on an ascending slice.
func percentile(sorted []time.Duration, p float64) time.Duration {
	i := int(float64(len(sorted)) * p)
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	return sorted[i]
}

// MeanMicros returns the mean in microseconds.
func (s Stats) MeanMicros() float64 {
	return float64(s.Mean) / float64(time.Microsecond)
}

// SuccessRate returns the percentage of successful runs.
func (s Stats) SuccessRate() float64 {
	if s.Runs == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Runs) * 100
}

// CoV returns the coefficient of variation as a percentage.
func (s Stats) CoV() float64 {
	if s.Mean == 0 {
		return 0
	}
	return s.StdDevNanos / float64(s.Mean) * 100
}

// OverheadVs returns the mean time overhead relative to base, in percent.
func (s Stats) OverheadVs(base Stats) float64 {
	if base.Mean == 0 {
		return 0
	}
	return (float64(s.Mean) - float64(base.Mean)) / float64(base.Mean) * 100
}

// MemoryOverheadVs returns the per-run allocation overhead relative to base,
// in percent.
func (s Stats) MemoryOverheadVs(base Stats) float64 {
	if base.AllocBytes == 0 {
		return 0
	}
	return (float64(s.AllocBytes) - float64(base.AllocBytes)) / float64(base.AllocBytes) * 100
}
