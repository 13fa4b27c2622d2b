package chain

// Event is a named unit of work executed against an ExecContext.
//
// Execute returns nil on success. A non-nil error is a failure; its message is
// recorded against Name. Side effects must go through the ExecContext only.
type Event interface {
	Name() string
	Execute(ec *ExecContext) error
}

// Dependent is implemented by events that declare the context keys they read.
// BestEffort chains skip a Dependent event whose keys are not all present.
type Dependent interface {
	Requires() []string
}

// Next continues the middleware stack: it runs the remaining inner middleware
// and finally the event itself.
type Next func(ec *ExecContext) error

// Middleware wraps an event call. It may act before and after calling next,
// inspect or replace the returned error, or not call next at all.
type Middleware interface {
	Handle(ev Event, ec *ExecContext, next Next) error
}

// MiddlewareFunc adapts a function to Middleware.
type MiddlewareFunc func(ev Event, ec *ExecContext, next Next) error

// Handle calls f.
func (f MiddlewareFunc) Handle(ev Event, ec *ExecContext, next Next) error {
	return f(ev, ec, next)
}

// EventFunc adapts a function to Event under the given name.
func EventFunc(name string, fn func(ec *ExecContext) error) Event {
	return funcEvent{name: name, fn: fn}
}

type funcEvent struct {
	name string
	fn   func(ec *ExecContext) error
}

func (e funcEvent) Name() string                  { return e.name }
func (e funcEvent) Execute(ec *ExecContext) error { return e.fn(ec) }
