// Package testutil provides test-only infrastructure for slotmap behavior
// and fuzz testing.
//
// It includes deterministic byte streams, an operation generator and a
// model-vs-real harness used by the slotmap tests.
package testutil
