package dijkstra

import (
	"github.com/roach88/eventchains/internal/chain"
	"github.com/roach88/eventchains/internal/graph"
)

type config struct {
	steps        int
	middleware   []chain.Middleware
	chainOptions []chain.Option
}

// Option configures a chain built by FineGrained or CoarseGrained.
type Option func(*config)

// WithSteps overrides the number of ProcessNode events in a fine-grained
// chain. Fewer steps than reachable nodes leaves the result partial.
func WithSteps(n int) Option {
	return func(c *config) {
		c.steps = n
	}
}

// WithMiddleware registers middleware in the given order.
func WithMiddleware(mw ...chain.Middleware) Option {
	return func(c *config) {
		c.middleware = append(c.middleware, mw...)
	}
}

// WithChainOptions passes options through to chain.New.
func WithChainOptions(opts ...chain.Option) Option {
	return func(c *config) {
		c.chainOptions = append(c.chainOptions, opts...)
	}
}

func newConfig(opts []Option) *config {
	c := &config{steps: -1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *config) newChain() *chain.Chain {
	ch := chain.New(c.chainOptions...)
	for _, mw := range c.middleware {
		ch.Use(mw)
	}
	return ch
}

// NewContext returns a context seeded with the inputs every Dijkstra chain
// reads.
func NewContext(g *graph.Graph, source, target graph.NodeID) *chain.ExecContext {
	ec := chain.NewExecContext()
	ec.Set(KeyGraph, g)
	ec.Set(KeySource, source)
	ec.Set(KeyTarget, target)
	return ec
}

// FineGrained builds InitializeState, InitializePriorityQueue, one
// ProcessNode per node of g, and FinalizeResult.
func FineGrained(g *graph.Graph, opts ...Option) *chain.Chain {
	cfg := newConfig(opts)
	steps := cfg.steps
	if steps < 0 {
		steps = g.NodeCount()
	}

	ch := cfg.newChain()
	ch.AddEvent(InitializeState{})
	ch.AddEvent(InitializePriorityQueue{})
	for i := 0; i < steps; i++ {
		ch.AddEvent(ProcessNode{})
	}
	ch.AddEvent(FinalizeResult{})
	return ch
}

// CoarseGrained builds InitializeState, InitializePriorityQueue,
// ProcessAllNodes, and FinalizeResult. WithSteps is ignored.
func CoarseGrained(opts ...Option) *chain.Chain {
	ch := newConfig(opts).newChain()
	ch.AddEvent(InitializeState{})
	ch.AddEvent(InitializePriorityQueue{})
	ch.AddEvent(ProcessAllNodes{})
	ch.AddEvent(FinalizeResult{})
	return ch
}

// Result reads the ShortestPathResult stored by FinalizeResult.
func Result(ec *chain.ExecContext) (graph.ShortestPathResult, bool) {
	return chain.Get[graph.ShortestPathResult](ec, KeyResult)
}

// Run executes c against ec and extracts the path. When no result was
// stored, the returned path is unreachable for the seeded source and target.
func Run(c *chain.Chain, ec *chain.ExecContext) (graph.ShortestPathResult, chain.ChainResult) {
	outcome := c.Execute(ec)
	if result, ok := Result(ec); ok {
		return result, outcome
	}

	source, ok := chain.Get[graph.NodeID](ec, KeySource)
	if !ok {
		source = graph.NoNode
	}
	target, ok := chain.Get[graph.NodeID](ec, KeyTarget)
	if !ok {
		target = graph.NoNode
	}
	return graph.Unreachable(source, target), outcome
}
