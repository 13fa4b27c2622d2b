package bench

import (
	"log/slog"

	"github.com/roach88/eventchains/internal/chain"
	"github.com/roach88/eventchains/internal/dijkstra"
	"github.com/roach88/eventchains/internal/graph"
	"github.com/roach88/eventchains/internal/middleware"
)

// Input is the graph and endpoints a workload runs against. The graph is
// shared read-only by every iteration.
type Input struct {
	Graph  *graph.Graph
	Source graph.NodeID
	Target graph.NodeID
	Logger *slog.Logger
}

func (in Input) logger() *slog.Logger {
	if in.Logger == nil {
		return slog.Default()
	}
	return in.Logger
}

func (in Input) run(c *chain.Chain) bool {
	result, _ := dijkstra.Run(c, dijkstra.NewContext(in.Graph, in.Source, in.Target))
	return result.Reachable
}

func (in Input) strict(mws ...chain.Middleware) []dijkstra.Option {
	return []dijkstra.Option{
		dijkstra.WithChainOptions(
			chain.WithFaultTolerance(chain.Strict),
			chain.WithLogger(in.logger()),
		),
		dijkstra.WithMiddleware(mws...),
	}
}

// TraditionalWorkload runs the unchained reference implementation.
func TraditionalWorkload(in Input) Workload {
	return func() bool {
		return dijkstra.Traditional(in.Graph, in.Source, in.Target).Reachable
	}
}

// BareWorkload runs a fine-grained chain without middleware.
func BareWorkload(in Input) Workload {
	return func() bool {
		return in.run(dijkstra.FineGrained(in.Graph, in.strict()...))
	}
}

// FullWorkload runs a fine-grained chain with counting, timing, and logging
// middleware.
func FullWorkload(in Input) Workload {
	return func() bool {
		mws := []chain.Middleware{
			middleware.NewCounter(),
			middleware.Timing(nil),
			middleware.Logging(in.logger()),
		}
		return in.run(dijkstra.FineGrained(in.Graph, in.strict(mws...)...))
	}
}

// OptimizedWorkload runs a coarse-grained chain without middleware.
func OptimizedWorkload(in Input) Workload {
	return func() bool {
		return in.run(dijkstra.CoarseGrained(in.strict()...))
	}
}

// InstrumentedWorkload runs a coarse-grained chain with logging and timing
// middleware.
func InstrumentedWorkload(in Input) Workload {
	return func() bool {
		mws := []chain.Middleware{
			middleware.Logging(in.logger()),
			middleware.Timing(nil),
		}
		return in.run(dijkstra.CoarseGrained(in.strict(mws...)...))
	}
}

// NoOpWorkload runs a coarse-grained chain wrapped in n no-op middleware.
func NoOpWorkload(in Input, n int) Workload {
	return func() bool {
		return in.run(dijkstra.CoarseGrained(in.strict(middleware.NoOps(n)...)...))
	}
}
