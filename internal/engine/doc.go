// Package engine implements stroke replication between peers.
//
// The engine owns the local stroke set. It appends locally generated strokes
// and broadcasts them, applies strokes received from peers, and adopts a
// peer's snapshot by replacing the whole set.
//
// REPLICATION MODEL:
//
// Strokes are immutable once added. Delivery is best-effort: there is no
// acknowledgement, no retry, no ordering across peers, and no deduplication.
// A stroke delivered twice is drawn twice. Received strokes are never
// rebroadcast.
//
// Snapshot adoption is destructive. The receiver's stroke set becomes exactly
// the snapshot's strokes, the sender becomes the map provider, and the tracker
// is restarted from the snapshot's map.
//
// CONCURRENCY:
//
// Local strokes arrive from the per-frame tick. Payloads from peers may arrive
// on any goroutine. All state is guarded by one mutex, and transports may hand
// payloads to Receive, which queues them for the single Run goroutine.
//
// Logical Clock:
// Every anchor and journaled receive event is stamped with a seq from Clock.
// NEVER use wall-clock timestamps for ordering.
package engine
