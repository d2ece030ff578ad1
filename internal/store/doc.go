// Package store provides SQLite-backed storage for resolution traces.
//
// The store is an append-only log:
//   - Scopes: one row per fixture scope (UUIDv7 id, fixture, label)
//   - Resolutions: one row per Resolve call, matched or not
//
// Ordering uses the logical seq stamped by the scope's clock, never wall
// time. Every read orders by seq ASC, id COLLATE BINARY ASC so traces
// compare byte-for-byte across runs.
//
// Resolution IDs are content-addressed (ir.ResolutionID); writing the same
// trace twice is a no-op.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
