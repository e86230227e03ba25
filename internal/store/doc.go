// Package store provides the SQLite-backed trace journal of simulation runs.
//
// The store is an append-only log with:
//   - Runs: one row per simulation run (id, seed, effective config)
//   - Events: every trace event of a run, keyed by (run_id, seq)
//
// # Ordering
//
// All ordering uses the logical seq INTEGER assigned by the engine, never
// wall-clock time. Every query that returns events includes
// ORDER BY seq ASC, so a journal reads back identically every time.
// Runs are ordered by created_seq, a per-database insertion counter.
//
// # Idempotency
//
// Event inserts use ON CONFLICT DO NOTHING: re-recording the same
// (run_id, seq) is a no-op.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Events must belong to a recorded run
package store
