package middleware

import (
	"time"

	"github.com/roach88/eventchains/internal/chain"
)

// DurationKey is the context key Timing writes for an event name.
func DurationKey(event string) string {
	return event + "_duration"
}

// Timing returns a middleware that measures each event and stores the
// time.Duration under DurationKey(event). Repeated events overwrite the
// previous measurement. A nil now uses time.Now.
func Timing(now func() time.Time) chain.Middleware {
	if now == nil {
		now = time.Now
	}
	return chain.MiddlewareFunc(func(ev chain.Event, ec *chain.ExecContext, next chain.Next) error {
		start := now()
		err := next(ec)
		ec.Set(DurationKey(ev.Name()), now().Sub(start))
		return err
	})
}
