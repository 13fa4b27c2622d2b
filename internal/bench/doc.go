// Package bench measures the cost of running Dijkstra through event chains.
//
// A Runner times a workload repeatedly and summarizes the samples as Stats.
// A Suite runs the tiers of a Plan against each graph case:
//
//	comparison  traditional vs bare, full, and optimized chains
//	t1          bare function calls vs optimized chain (framework cost)
//	t2          manual instrumented steps vs optimized chain (abstraction cost)
//	t3          optimized chain with 0..N no-op middleware (cost per layer)
//	t4          manual logging and timing vs chain middleware
//
// Plans are CUE documents validated against an embedded schema; see
// ParsePlan and DefaultPlan.
package bench
