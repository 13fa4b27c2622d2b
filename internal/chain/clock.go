package chain

import "sync/atomic"

// Clock is a monotonic logical clock used to stamp EventFailures.
//
// Wall-clock timestamps can repeat or go backwards; Seq values from one Clock
// are strictly increasing, so failures from concurrent runs sharing a Clock
// can still be ordered.
//
// Thread-safety: Clock is safe for concurrent use.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0. The first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last sequence number handed out.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
