// Package store provides SQLite-backed storage for filterview runs.
//
// A run is one scenario execution. The store keeps:
//   - Runs: scenario name, outcome and the filter that was active at the end
//   - Events: the seq-stamped notification trace of source and view
//   - View rows: the final view snapshot with each row's source position
//
// # Ordering
//
// Events are ordered by seq (the recorder's logical clock), never by wall
// time, so a replayed scenario yields an identical trace. Runs are listed
// by run_id; UUIDv7 ids sort chronologically.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Events and rows are removed with their run
package store
