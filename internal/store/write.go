package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/airdraw/internal/codec"
	"github.com/roach88/airdraw/internal/model"
)

// ReceiveEvent records a payload from a peer that was not applied.
type ReceiveEvent struct {
	Seq    int64
	PeerID string
	Kind   string // "unrecognized", "rejected"
	Size   int
	Detail string
}

// AppendAnchor inserts one anchor into the journal.
//
// The stroke is stored as its encoded wire record. Appending the same stroke
// twice produces two rows; only seq must be unique.
func (s *Store) AppendAnchor(ctx context.Context, a model.Anchor) error {
	if err := insertAnchor(ctx, s.db, a); err != nil {
		return fmt.Errorf("append anchor: %w", err)
	}
	return nil
}

// ReplaceAnchors atomically replaces the whole anchor set and records the map
// provider. Either every row is swapped or none is.
func (s *Store) ReplaceAnchors(ctx context.Context, anchors []model.Anchor, provider model.Peer, mapID string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM anchors`); err != nil {
			return fmt.Errorf("clear anchors: %w", err)
		}
		for _, a := range anchors {
			if err := insertAnchor(ctx, tx, a); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO session (id, session_id, map_provider_id, map_provider_name, map_id)
			VALUES (1, '', ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				map_provider_id = excluded.map_provider_id,
				map_provider_name = excluded.map_provider_name,
				map_id = excluded.map_id
		`, provider.ID, provider.DisplayName, mapID)
		if err != nil {
			return fmt.Errorf("set map provider: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace anchors: %w", err)
	}
	return nil
}

// ResetSession clears the anchor set and map provider and records a new
// session id.
func (s *Store) ResetSession(ctx context.Context, sessionID string) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM anchors`); err != nil {
			return fmt.Errorf("clear anchors: %w", err)
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO session (id, session_id, map_provider_id, map_provider_name, map_id)
			VALUES (1, ?, '', '', '')
			ON CONFLICT(id) DO UPDATE SET
				session_id = excluded.session_id,
				map_provider_id = '',
				map_provider_name = '',
				map_id = ''
		`, sessionID)
		if err != nil {
			return fmt.Errorf("write session: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

// WriteReceiveEvent records a payload that was dropped.
func (s *Store) WriteReceiveEvent(ctx context.Context, ev ReceiveEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO receive_events (seq, peer_id, kind, size, detail)
		VALUES (?, ?, ?, ?, ?)
	`, ev.Seq, ev.PeerID, ev.Kind, ev.Size, ev.Detail)
	if err != nil {
		return fmt.Errorf("write receive event: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertAnchor(ctx context.Context, db execer, a model.Anchor) error {
	record, err := codec.EncodeStroke(a.Stroke)
	if err != nil {
		return fmt.Errorf("encode anchor %d: %w", a.Seq, err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO anchors (seq, origin, peer_id, stroke_hash, record)
		VALUES (?, ?, ?, ?, ?)
	`, a.Seq, string(a.Origin), a.PeerID, model.StrokeHash(record), record)
	if err != nil {
		return fmt.Errorf("insert anchor %d: %w", a.Seq, err)
	}
	return nil
}
