package bench

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/eventchains/internal/dijkstra"
	"github.com/roach88/eventchains/internal/graph"
)

// settleAll runs the pop and relax loop until the queue is empty.
func settleAll(g *graph.Graph, state *graph.DijkstraState, q *graph.PriorityQueue) {
	for {
		entry, ok := q.Pop()
		if !ok {
			return
		}
		state.Relax(g, q, entry)
	}
}

// BareCalls computes the path with direct function calls and no
// orchestration.
func BareCalls(g *graph.Graph, source, target graph.NodeID) graph.ShortestPathResult {
	state := graph.NewDijkstraState(g.NodeCount(), source)
	q := graph.NewPriorityQueue(g.NodeCount())
	q.Push(graph.QueueNode{Node: source})
	settleAll(g, state, q)
	return graph.ReconstructPath(state, source, target)
}

// ManualInstrumented computes the path with hand-written step tracking and
// error handling equivalent to a chain without middleware.
func ManualInstrumented(g *graph.Graph, source, target graph.NodeID) (graph.ShortestPathResult, error) {
	type step struct {
		name string
		err  error
	}
	steps := make([]step, 0, 4)

	if !g.Contains(source) {
		steps = append(steps, step{dijkstra.NameInitializeState, dijkstra.ErrSourceOutOfRange})
	} else {
		steps = append(steps, step{name: dijkstra.NameInitializeState})
	}
	state := graph.NewDijkstraState(g.NodeCount(), source)

	steps = append(steps, step{name: dijkstra.NameInitializePriorityQueue})
	q := graph.NewPriorityQueue(g.NodeCount())
	q.Push(graph.QueueNode{Node: source})

	steps = append(steps, step{name: dijkstra.NameProcessAllNodes})
	settleAll(g, state, q)

	for _, s := range steps {
		if s.err != nil {
			return graph.Unreachable(source, target), fmt.Errorf("step %q failed: %w", s.name, s.err)
		}
	}

	return graph.ReconstructPath(state, source, target), nil
}

// ManualLog holds the per-step timings ManualLogged collects.
type ManualLog struct {
	Timings map[string]time.Duration
}

// ManualLogged computes the path with hand-written logging and timing around
// each of the four steps.
func ManualLogged(g *graph.Graph, source, target graph.NodeID, logger *slog.Logger) (graph.ShortestPathResult, ManualLog) {
	log := ManualLog{Timings: make(map[string]time.Duration, 4)}
	step := func(name string, fn func() error) {
		logger.Debug("event starting", "event", name)
		start := time.Now()
		err := fn()
		log.Timings[name] = time.Since(start)
		if err != nil {
			logger.Debug("event failed", "event", name, "error", err)
			return
		}
		logger.Debug("event completed", "event", name)
	}

	var (
		state  *graph.DijkstraState
		q      *graph.PriorityQueue
		result = graph.Unreachable(source, target)
	)
	step(dijkstra.NameInitializeState, func() error {
		if !g.Contains(source) {
			return dijkstra.ErrSourceOutOfRange
		}
		state = graph.NewDijkstraState(g.NodeCount(), source)
		return nil
	})
	step(dijkstra.NameInitializePriorityQueue, func() error {
		q = graph.NewPriorityQueue(g.NodeCount())
		q.Push(graph.QueueNode{Node: source})
		return nil
	})
	step(dijkstra.NameProcessAllNodes, func() error {
		if state == nil {
			return errNoState
		}
		settleAll(g, state, q)
		return nil
	})
	step(dijkstra.NameFinalizeResult, func() error {
		if state == nil {
			return errNoState
		}
		result = graph.ReconstructPath(state, source, target)
		return nil
	})

	return result, log
}

var errNoState = errors.New("state not initialized")

// BareCallsWorkload wraps BareCalls.
func BareCallsWorkload(in Input) Workload {
	return func() bool {
		return BareCalls(in.Graph, in.Source, in.Target).Reachable
	}
}

// ManualInstrumentedWorkload wraps ManualInstrumented.
func ManualInstrumentedWorkload(in Input) Workload {
	return func() bool {
		_, err := ManualInstrumented(in.Graph, in.Source, in.Target)
		return err == nil
	}
}

// ManualLoggedWorkload wraps ManualLogged.
func ManualLoggedWorkload(in Input) Workload {
	return func() bool {
		result, _ := ManualLogged(in.Graph, in.Source, in.Target, in.logger())
		return result.Reachable
	}
}
