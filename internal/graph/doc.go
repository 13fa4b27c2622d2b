// Package graph holds the weighted directed graph used by the shortest-path
// workload, together with the working state Dijkstra's algorithm mutates.
//
// A Graph is built once and then treated as read-only. Many concurrent chain
// runs may share one Graph; each run owns its own DijkstraState and queue.
//
// Distances are uint32. Infinity (math.MaxUint32) marks an unreached node, and
// SaturatingAdd clamps at Infinity instead of wrapping.
package graph
