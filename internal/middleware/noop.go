package middleware

import (
	"fmt"

	"github.com/roach88/eventchains/internal/chain"
)

// NoOpKey is the context key a NoOp middleware with the given id increments.
func NoOpKey(id int) string {
	return fmt.Sprintf("noop_middleware_%d_called", id)
}

// NoOp returns a middleware that does the least possible work: it bumps a
// uint32 counter under NoOpKey(id) and calls next.
func NoOp(id int) chain.Middleware {
	key := NoOpKey(id)
	return chain.MiddlewareFunc(func(ev chain.Event, ec *chain.ExecContext, next chain.Next) error {
		n, _ := chain.Get[uint32](ec, key)
		ec.Set(key, n+1)
		return next(ec)
	})
}

// NoOps returns n NoOp middleware with ids 0..n-1.
func NoOps(n int) []chain.Middleware {
	mws := make([]chain.Middleware, n)
	for i := range mws {
		mws[i] = NoOp(i)
	}
	return mws
}
