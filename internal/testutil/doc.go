// Package testutil provides deterministic time and identifier sources for
// tests. Nothing here is used outside _test.go files and the scenario harness.
package testutil
