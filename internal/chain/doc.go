// Package chain implements the event-chain execution engine.
//
// A Chain runs an ordered list of Events against one ExecContext, the keyed
// store through which events (and middleware) exchange state. Each event call
// can be wrapped in a stack of Middleware.
//
// ARCHITECTURE:
//
// Sequential Execution:
// Events run one at a time, in the order they were added, on the caller's
// goroutine. No event may assume parallel execution and none blocks on I/O.
// A Chain keeps no per-run state, so one Chain may Execute concurrently
// against distinct ExecContexts.
//
// Middleware Nesting:
// The most recently registered middleware is the outermost wrapper. With
// M1, M2, M3 registered in that order the call sequence is
//
//	M3-before, M2-before, M1-before, event, M1-after, M2-after, M3-after
//
// The stack is built by folding the middleware list into one Next closure per
// event; there is no recursion over middleware indices.
//
// Fault Tolerance:
//   - Strict: the first failure stops the run; status is Failed.
//   - Lenient: every event runs; failures are recorded in encounter order.
//   - BestEffort: like Lenient, but an event implementing Dependent is
//     skipped when any key it Requires is absent from the context.
//
// Failures are values. An event returns an error; the orchestrator records
// it as an EventFailure and never propagates it or panics.
package chain
