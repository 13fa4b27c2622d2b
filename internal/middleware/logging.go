package middleware

import (
	"log/slog"

	"github.com/roach88/eventchains/internal/chain"
)

// Logging returns a middleware that logs event start and completion at debug
// level. A nil logger uses slog.Default().
func Logging(logger *slog.Logger) chain.Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return chain.MiddlewareFunc(func(ev chain.Event, ec *chain.ExecContext, next chain.Next) error {
		logger.Debug("event starting", "event", ev.Name())

		err := next(ec)
		if err != nil {
			logger.Debug("event failed", "event", ev.Name(), "error", err)
			return err
		}

		logger.Debug("event completed", "event", ev.Name())
		return nil
	})
}
