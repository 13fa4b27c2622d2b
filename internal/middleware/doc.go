// Package middleware provides the reference chain.Middleware kinds.
//
//   - Logging writes a debug line before and after each event.
//   - Timing stores each event's wall-clock duration in the context.
//   - Counter counts invocations across runs under a mutex.
//   - NoOp increments a per-instance counter in the context. It exists to
//     measure the cost of a middleware layer.
//   - Metrics records Prometheus counters and histograms per event.
//
// Every middleware here calls next exactly once and returns its error
// unchanged.
package middleware
