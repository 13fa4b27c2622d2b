package dijkstra

import (
	"errors"
	"fmt"

	"github.com/roach88/eventchains/internal/chain"
	"github.com/roach88/eventchains/internal/graph"
)

// Context keys shared by the Dijkstra events.
const (
	KeyGraph    = "graph"
	KeySource   = "source"
	KeyTarget   = "target"
	KeyState    = "state"
	KeyQueue    = "queue"
	KeyResult   = "result"
	KeyContinue = "continue"
)

// Event names as recorded in failures and traces.
const (
	NameInitializeState         = "InitializeState"
	NameInitializePriorityQueue = "InitializePriorityQueue"
	NameProcessNode             = "ProcessNode"
	NameProcessAllNodes         = "ProcessAllNodes"
	NameFinalizeResult          = "FinalizeResult"
)

// ErrSourceOutOfRange is returned by InitializeState when the source is not a
// node of the graph.
var ErrSourceOutOfRange = errors.New("source node out of range")

// InitializeState allocates a DijkstraState rooted at the source.
type InitializeState struct{}

func (InitializeState) Name() string { return NameInitializeState }

func (InitializeState) Requires() []string { return []string{KeyGraph, KeySource} }

func (InitializeState) Execute(ec *chain.ExecContext) error {
	g, err := chain.Require[*graph.Graph](ec, KeyGraph)
	if err != nil {
		return err
	}
	source, err := chain.Require[graph.NodeID](ec, KeySource)
	if err != nil {
		return err
	}
	if !g.Contains(source) {
		return fmt.Errorf("%w: %d (graph has %d nodes)", ErrSourceOutOfRange, source, g.NodeCount())
	}

	ec.Set(KeyState, graph.NewDijkstraState(g.NodeCount(), source))
	ec.Set(KeySource, source)
	return nil
}

// InitializePriorityQueue seeds a queue with (source, 0).
type InitializePriorityQueue struct{}

func (InitializePriorityQueue) Name() string { return NameInitializePriorityQueue }

func (InitializePriorityQueue) Requires() []string { return []string{KeySource} }

func (InitializePriorityQueue) Execute(ec *chain.ExecContext) error {
	source, err := chain.Require[graph.NodeID](ec, KeySource)
	if err != nil {
		return err
	}

	capacity := 0
	if g, ok := chain.Get[*graph.Graph](ec, KeyGraph); ok {
		capacity = g.NodeCount()
	}
	q := graph.NewPriorityQueue(capacity)
	q.Push(graph.QueueNode{Node: source, Distance: 0})
	ec.Set(KeyQueue, q)
	return nil
}

// ProcessNode settles at most one node.
//
// Stale entries at the head of the queue are discarded without touching the
// state. KeyContinue is set to whether entries remain queued afterwards.
type ProcessNode struct{}

func (ProcessNode) Name() string { return NameProcessNode }

func (ProcessNode) Requires() []string { return []string{KeyGraph, KeyState, KeyQueue} }

func (ProcessNode) Execute(ec *chain.ExecContext) error {
	g, state, q, err := workingSet(ec)
	if err != nil {
		return err
	}
	settleNext(g, state, q)
	ec.Set(KeyContinue, q.Len() > 0)
	return nil
}

// ProcessAllNodes settles nodes until the queue is empty.
type ProcessAllNodes struct{}

func (ProcessAllNodes) Name() string { return NameProcessAllNodes }

func (ProcessAllNodes) Requires() []string { return []string{KeyGraph, KeyState, KeyQueue} }

func (ProcessAllNodes) Execute(ec *chain.ExecContext) error {
	g, state, q, err := workingSet(ec)
	if err != nil {
		return err
	}
	for settleNext(g, state, q) {
	}
	ec.Set(KeyContinue, false)
	return nil
}

// FinalizeResult builds the ShortestPathResult from whatever state exists.
// If too few ProcessNode steps ran, the result reflects the partial state.
type FinalizeResult struct{}

func (FinalizeResult) Name() string { return NameFinalizeResult }

func (FinalizeResult) Requires() []string { return []string{KeyState, KeySource, KeyTarget} }

func (FinalizeResult) Execute(ec *chain.ExecContext) error {
	state, err := chain.Require[*graph.DijkstraState](ec, KeyState)
	if err != nil {
		return err
	}
	source, err := chain.Require[graph.NodeID](ec, KeySource)
	if err != nil {
		return err
	}
	target, err := chain.Require[graph.NodeID](ec, KeyTarget)
	if err != nil {
		return err
	}

	ec.Set(KeyResult, graph.ReconstructPath(state, source, target))
	return nil
}

func workingSet(ec *chain.ExecContext) (*graph.Graph, *graph.DijkstraState, *graph.PriorityQueue, error) {
	g, err := chain.Require[*graph.Graph](ec, KeyGraph)
	if err != nil {
		return nil, nil, nil, err
	}
	state, err := chain.Require[*graph.DijkstraState](ec, KeyState)
	if err != nil {
		return nil, nil, nil, err
	}
	q, err := chain.Require[*graph.PriorityQueue](ec, KeyQueue)
	if err != nil {
		return nil, nil, nil, err
	}
	return g, state, q, nil
}

// settleNext pops entries until one is settled or the queue is empty.
func settleNext(g *graph.Graph, state *graph.DijkstraState, q *graph.PriorityQueue) bool {
	for {
		entry, ok := q.Pop()
		if !ok {
			return false
		}
		if state.Relax(g, q, entry) {
			return true
		}
	}
}
