// Package store provides SQLite-backed history of harness runs.
//
// Each recorded run keeps:
//   - Runs: one row per run with its module, counters and digest
//   - Results: one row per unit verdict, in discovery order
//
// # Ordering
//
// Runs are ordered by seq, an autoincrementing logical position, never by
// wall time. Results are ordered by position within their run, so a run
// read back renders exactly as it was recorded.
//
// # Digests
//
// A run's digest is SHA-256 over the report's canonical JSON with a
// domain prefix (see Digest). Two runs of the same module with equal
// digests produced identical reports, which is how repeated runs are
// checked for determinism.
//
// # Retention
//
// PruneRuns keeps the newest runs of a module and deletes the rest. A
// run's results are removed with it through ON DELETE CASCADE, which
// requires the foreign_keys connection option set by Open.
package store
