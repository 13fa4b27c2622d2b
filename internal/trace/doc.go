// Package trace records the observable call sequence of a chain run.
//
// A Recorder hands out middleware layers and event wrappers that append an
// Entry each time control enters or leaves them. Entries carry a logical
// sequence number from chain.Clock, never wall-clock time, so two runs of the
// same chain produce byte-identical traces under MarshalCanonical.
package trace
