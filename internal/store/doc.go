// Package store provides SQLite-backed durable storage for the local drawing.
//
// The store journals the device's anchor set so a drawing survives restarts
// and can be inspected offline:
//   - Anchors: every stroke in the local set, as its encoded wire record
//   - Session: the current session id and map provider
//   - Receive Events: payloads that arrived but could not be applied
//
// # Critical Patterns
//
// Atomic Adoption
//   - ReplaceAnchors swaps the whole anchor set in one transaction
//   - Readers see either the old set or the new set, never a mix
//
// Logical Time
//   - Anchors are keyed by seq (the engine's logical clock), NEVER timestamps
//   - All queries ORDER BY seq ASC for deterministic results
//
// No Dedup
//   - stroke_hash is indexed but not unique; the same stroke delivered twice
//     is two rows, matching what the renderer shows
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
