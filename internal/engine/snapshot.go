package engine

import (
	"context"

	"github.com/roach88/airdraw/internal/codec"
)

// ExportSnapshot captures the tracker's map together with the current stroke
// set and encodes it as a snapshot payload.
//
// If the map cannot be captured a *SnapshotUnavailableError is returned and
// no bytes are produced. The map and the strokes are taken together; an
// adoption cannot land between them.
func (e *Engine) ExportSnapshot(ctx context.Context) ([]byte, error) {
	e.adoptMu.Lock()
	m, err := e.tracker.CaptureMap(ctx)
	if err != nil {
		e.adoptMu.Unlock()
		return nil, &SnapshotUnavailableError{Stage: "capture", Err: err}
	}
	m.Strokes = e.Strokes()
	e.adoptMu.Unlock()

	payload, err := codec.EncodeSnapshot(m)
	if err != nil {
		return nil, &SnapshotUnavailableError{Stage: "encode", Err: err}
	}

	e.log.Debug("snapshot exported",
		"map_id", m.ID,
		"strokes", len(m.Strokes),
		"bytes", len(payload),
	)
	return payload, nil
}

// ShareSnapshot exports a snapshot and broadcasts it to every peer.
// A failed broadcast is returned as a *BroadcastError and not retried.
func (e *Engine) ShareSnapshot(ctx context.Context) error {
	payload, err := e.ExportSnapshot(ctx)
	if err != nil {
		e.log.Warn("snapshot export failed", "error", err)
		return err
	}

	if err := e.transport.Broadcast(payload); err != nil {
		e.mu.Lock()
		e.stats.BroadcastFailures++
		e.mu.Unlock()
		e.log.Warn("snapshot broadcast failed", "error", err)
		return &BroadcastError{Kind: "snapshot", Err: err}
	}

	e.log.Info("snapshot shared",
		"bytes", len(payload),
		"peers", len(e.transport.Peers()),
	)
	return nil
}
