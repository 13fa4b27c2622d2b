// Package store provides SQLite-backed persistence for benchmark reports and
// chain-run outcomes.
//
// Tables:
//   - bench_reports: one row per benchmark plan execution, full report as JSON
//   - bench_samples: one row per measurement, flattened for querying
//   - chain_runs: one row per recorded chain execution
//
// Rows are identified by time-sortable UUIDv7 strings. Listings are ordered
// by insertion sequence (seq ASC), never by wall time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
