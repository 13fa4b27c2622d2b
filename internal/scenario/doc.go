// Package scenario runs YAML conformance scenarios against the Dijkstra
// event chains.
//
// # Scenario Format
//
//	name: four_node_fine
//	description: "Fine-grained chain finds 0 -> 2 -> 1 -> 3"
//	graph:
//	  nodes: 4
//	  edges:
//	    - { from: 0, to: 1, weight: 4 }
//	    - { from: 0, to: 2, weight: 1 }
//	# or: random: { nodes: 100, edges: 500, max_weight: 100, seed: 12345 }
//	source: 0
//	target: 3
//	decomposition: fine        # fine | coarse
//	steps: 4                   # fine only; defaults to the node count
//	fault_tolerance: strict    # strict | lenient | best_effort
//	middleware: [logging, timing, counting, noop]
//	inject_failures: [ProcessNode]
//	expect:
//	  distance: 4
//	  path: [0, 2, 1, 3]
//	  status: COMPLETED
//	  failures: 0
//	  failed_events: []
//	  skipped: []
//	  match_reference: true
//	  trace_order: ["timing:before", "InitializeState"]
//	  trace_count: { ProcessNode: 4 }
//
// Middleware is registered in list order, so the last entry is outermost.
// Every injected event name fails each time it executes.
//
// # Deterministic Testing
//
// Each run uses a fresh trace.Recorder, a logical sequence clock, and a
// stepping wall clock starting at testutil.Epoch. Identical scenarios produce
// byte-identical snapshots for golden file comparison.
package scenario
