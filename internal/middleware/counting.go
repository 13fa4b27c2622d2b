package middleware

import (
	"sync"

	"github.com/roach88/eventchains/internal/chain"
)

// Counter counts events that pass through it. One Counter may be shared by
// chains executing concurrently.
type Counter struct {
	mu    sync.Mutex
	count uint64
}

// NewCounter returns a zeroed Counter.
func NewCounter() *Counter {
	return &Counter{}
}

// Handle implements chain.Middleware.
func (c *Counter) Handle(ev chain.Event, ec *chain.ExecContext, next chain.Next) error {
	c.mu.Lock()
	c.count++
	c.mu.Unlock()

	return next(ec)
}

// Count returns the number of events seen so far.
func (c *Counter) Count() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Reset sets the count back to zero.
func (c *Counter) Reset() {
	c.mu.Lock()
	c.count = 0
	c.mu.Unlock()
}
