package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/airdraw/internal/codec"
	"github.com/roach88/airdraw/internal/model"
	"github.com/roach88/airdraw/internal/store"
	"github.com/roach88/airdraw/internal/tracker"
)

// OnBytesReceived applies one payload from a peer.
//
// The payload is decoded once. A stroke is appended and never rebroadcast.
// A snapshot replaces the whole stroke set and makes from the map provider.
// Anything else is dropped, counted and returned as a *codec.DecodeError.
func (e *Engine) OnBytesReceived(ctx context.Context, payload []byte, from model.Peer) error {
	p, err := codec.Decode(payload)
	if err != nil {
		return e.dropUnrecognized(ctx, payload, from, err)
	}

	switch p.Kind {
	case codec.KindSnapshot:
		return e.adoptSnapshot(ctx, p.Snapshot, from)

	case codec.KindStroke:
		a, err := e.appendAnchor(ctx, model.Anchor{
			Origin: model.OriginRemote,
			PeerID: from.ID,
			Stroke: p.Stroke,
		})
		if err != nil {
			return fmt.Errorf("apply stroke from %s: %w", from.ID, err)
		}
		e.log.Debug("stroke received",
			"peer_id", from.ID,
			"seq", a.Seq,
		)
		return nil

	default:
		return e.dropUnrecognized(ctx, payload, from, &codec.DecodeError{
			Record: "envelope",
			Reason: "unexpected payload kind " + p.Kind.String(),
		})
	}
}

// dropUnrecognized counts and journals a payload that could not be applied.
func (e *Engine) dropUnrecognized(ctx context.Context, payload []byte, from model.Peer, cause error) error {
	e.mu.Lock()
	e.stats.Unrecognized++
	seq := e.clock.Next()
	var journalErr error
	if e.journal != nil {
		journalErr = e.journal.WriteReceiveEvent(ctx, store.ReceiveEvent{
			Seq:    seq,
			PeerID: from.ID,
			Kind:   "unrecognized",
			Size:   len(payload),
			Detail: cause.Error(),
		})
	}
	e.mu.Unlock()

	e.log.Warn("unrecognized payload dropped",
		"peer_id", from.ID,
		"seq", seq,
		"bytes", len(payload),
		"error", cause,
	)
	if journalErr != nil {
		e.log.Error("journal receive event failed",
			"peer_id", from.ID,
			"seq", seq,
			"error", journalErr,
		)
	}
	return cause
}

// adoptSnapshot replaces the stroke set with the snapshot's strokes and
// restarts the tracker from the snapshot's map. The swap and the resume
// happen under adoptMu, so concurrent adoptions apply one after the other.
func (e *Engine) adoptSnapshot(ctx context.Context, m model.WorldMap, from model.Peer) error {
	e.adoptMu.Lock()
	defer e.adoptMu.Unlock()

	discarded, err := e.replaceAnchors(ctx, m, from)
	if err != nil {
		return fmt.Errorf("adopt snapshot from %s: %w", from.ID, err)
	}

	e.tracker.Resume(m, tracker.ResumeOptions{
		ResetTracking:          true,
		DiscardExistingAnchors: true,
	})

	e.log.Info("snapshot adopted",
		"peer_id", from.ID,
		"map_id", m.ID,
		"strokes", len(m.Strokes),
		"discarded", discarded,
	)
	return nil
}

// replaceAnchors swaps the stroke set. On journal failure the old set is kept.
func (e *Engine) replaceAnchors(ctx context.Context, m model.WorldMap, from model.Peer) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	adopted := make([]model.Anchor, len(m.Strokes))
	for i, s := range m.Strokes {
		adopted[i] = model.Anchor{
			Seq:    e.clock.Next(),
			Origin: model.OriginSnapshot,
			PeerID: from.ID,
			Stroke: s,
		}
	}

	if e.journal != nil {
		if err := e.journal.ReplaceAnchors(ctx, adopted, from, m.ID); err != nil {
			return 0, err
		}
	}

	discarded := len(e.anchors)
	e.anchors = adopted
	e.provider = from
	e.stats.SnapshotsAdopted++

	e.renderer.Reset()
	for _, a := range adopted {
		e.renderer.AddStroke(a)
	}
	return discarded, nil
}

// Receive queues a payload for the Run loop. It never blocks and may be
// used directly as a transport.ReceiveFunc target.
//
// Returns false if the engine has been stopped.
func (e *Engine) Receive(payload []byte, from model.Peer) bool {
	return e.inbox.Enqueue(inbound{Payload: payload, From: from})
}

// QueueLen returns the number of payloads waiting for Run.
func (e *Engine) QueueLen() int {
	return e.inbox.Len()
}

// Run drains queued payloads until ctx is cancelled or Stop is called.
//
// CRITICAL: Must be called from exactly ONE goroutine.
//
// ERROR HANDLING: A payload that fails to apply is logged and dropped;
// processing continues with the next one.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info("engine starting")

	for {
		m, ok := e.inbox.TryDequeue()
		if ok {
			if err := e.OnBytesReceived(ctx, m.Payload, m.From); err != nil {
				logReceiveError(e.log, m, err)
			}
			continue
		}

		select {
		case <-ctx.Done():
			e.log.Info("engine stopping: context cancelled")
			e.inbox.Close()
			return ctx.Err()

		case <-e.inbox.Wait():
			// The signal channel closes when the inbox is closed.
			if e.stopped() {
				e.log.Info("engine stopping: inbox closed")
				return nil
			}
		}
	}
}

// Stop closes the inbox. Run returns once queued payloads are drained.
func (e *Engine) Stop() {
	e.inbox.Close()
}

func (e *Engine) stopped() bool {
	e.inbox.mu.Lock()
	defer e.inbox.mu.Unlock()
	return e.inbox.closed && len(e.inbox.pending) == 0
}

func logReceiveError(log *slog.Logger, m inbound, err error) {
	if codec.IsDecodeError(err) {
		// Already logged at warn by dropUnrecognized.
		return
	}
	log.Error("receive failed",
		"peer_id", m.From.ID,
		"bytes", len(m.Payload),
		"error", err,
	)
}
