// Package dijkstra splits single-source shortest path into chain events.
//
// A run is seeded with NewContext, which stores the graph, source, and target
// under the exported Key constants. The events then communicate only through
// the context:
//
//	InitializeState          graph, source      -> state, source
//	InitializePriorityQueue  source             -> queue
//	ProcessNode              graph, state, queue -> continue
//	ProcessAllNodes          graph, state, queue
//	FinalizeResult           state, source, target -> result
//
// FineGrained chains use one ProcessNode event per node. CoarseGrained chains
// use a single ProcessAllNodes event. Both settle nodes through the same
// helper, so for the same input they leave identical state behind.
//
// Traditional is an unchained reference implementation used to check chain
// output and as the benchmark baseline.
package dijkstra
