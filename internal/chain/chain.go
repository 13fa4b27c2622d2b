package chain

import (
	"log/slog"
	"time"
)

// Chain is an ordered list of events executed under one fault-tolerance mode
// and one middleware stack.
//
// Build a chain with New, AddEvent, and Use, then call Execute. Execute
// snapshots the event and middleware lists on entry, so adding to a chain
// while a run is in progress never affects that run.
type Chain struct {
	events     []Event
	middleware []Middleware
	mode       FaultToleranceMode
	logger     *slog.Logger
	now        func() time.Time
	clock      *Clock
}

// Option configures a Chain.
type Option func(*Chain)

// WithFaultTolerance sets the fault-tolerance mode. Default: Strict.
func WithFaultTolerance(mode FaultToleranceMode) Option {
	return func(c *Chain) {
		c.mode = mode
	}
}

// WithLogger sets the logger used for failure and skip diagnostics.
// Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chain) {
		c.logger = logger
	}
}

// WithClock sets the wall clock used for EventFailure timestamps.
// Tests pass a fixed clock to make results comparable.
func WithClock(now func() time.Time) Option {
	return func(c *Chain) {
		c.now = now
	}
}

// WithSequence shares a logical clock for EventFailure.Seq across runs.
// Chains sharing a Clock produce globally ordered failures. Without it each
// Execute numbers its failures from 1.
func WithSequence(clock *Clock) Option {
	return func(c *Chain) {
		c.clock = clock
	}
}

// New creates an empty chain.
func New(opts ...Option) *Chain {
	c := &Chain{
		mode: Strict,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// AddEvent appends an event to the execution order.
func (c *Chain) AddEvent(ev Event) *Chain {
	c.events = append(c.events, ev)
	return c
}

// Use registers a middleware. Later registrations wrap earlier ones.
func (c *Chain) Use(mw Middleware) *Chain {
	c.middleware = append(c.middleware, mw)
	return c
}

// FaultTolerance returns the chain's mode.
func (c *Chain) FaultTolerance() FaultToleranceMode {
	return c.mode
}

// Len returns the number of events.
func (c *Chain) Len() int {
	return len(c.events)
}

// Events returns a copy of the event list in execution order.
func (c *Chain) Events() []Event {
	return append([]Event(nil), c.events...)
}

// Middleware returns a copy of the middleware list in registration order.
func (c *Chain) Middleware() []Middleware {
	return append([]Middleware(nil), c.middleware...)
}

// Execute runs every event against ec and returns the outcome.
//
// Execute never panics because of an event: failures, including recovered
// panics, are recorded in the returned ChainResult.
func (c *Chain) Execute(ec *ExecContext) ChainResult {
	if ec == nil {
		ec = NewExecContext()
	}
	events := c.Events()
	middleware := c.Middleware()
	seq := c.clock
	if seq == nil {
		seq = NewClock()
	}

	var (
		failures []EventFailure
		skipped  []string
		executed int
	)

	for _, ev := range events {
		if c.mode == BestEffort {
			if missing, ok := missingRequirement(ev, ec); ok {
				c.logger.Debug("event skipped",
					"event", ev.Name(),
					"missing_key", missing,
				)
				skipped = append(skipped, ev.Name())
				continue
			}
		}

		executed++
		err := invoke(ev, ec, middleware)
		if err == nil {
			continue
		}

		failure := EventFailure{
			Event:     ev.Name(),
			Message:   err.Error(),
			Seq:       seq.Next(),
			Timestamp: c.now(),
			Err:       err,
		}
		failures = append(failures, failure)
		c.logger.Warn("event failed",
			"event", failure.Event,
			"seq", failure.Seq,
			"mode", c.mode.String(),
			"error", err,
		)

		if c.mode == Strict {
			c.logger.Warn("chain aborted",
				"event", failure.Event,
				"executed", executed,
				"remaining", len(events)-executed-len(skipped),
			)
			return newResult(failures, skipped, executed, true)
		}
	}

	return newResult(failures, skipped, executed, false)
}

// Compose folds middleware around ev into a single Next. middleware[0] is the
// innermost wrapper and the last element is the outermost.
func Compose(ev Event, middleware []Middleware) Next {
	next := Next(ev.Execute)
	for _, mw := range middleware {
		mw, inner := mw, next
		next = func(ec *ExecContext) error {
			return mw.Handle(ev, ec, inner)
		}
	}
	return next
}

// invoke runs ev through the middleware stack, converting a panic into an
// error wrapping ErrEventPanicked.
func invoke(ev Event, ec *ExecContext, middleware []Middleware) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(ev.Name(), r)
		}
	}()

	if len(middleware) == 0 {
		return ev.Execute(ec)
	}
	return Compose(ev, middleware)(ec)
}

// missingRequirement returns the first key a Dependent event requires that is
// absent from ec.
func missingRequirement(ev Event, ec *ExecContext) (string, bool) {
	dep, ok := ev.(Dependent)
	if !ok {
		return "", false
	}
	for _, key := range dep.Requires() {
		if !ec.Has(key) {
			return key, true
		}
	}
	return "", false
}
