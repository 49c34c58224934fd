package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/airdraw/internal/codec"
	"github.com/roach88/airdraw/internal/model"
)

// AnchorRow is a journaled anchor together with its stored hash.
type AnchorRow struct {
	Anchor     model.Anchor
	StrokeHash string
}

// SessionRecord is the persisted session row.
type SessionRecord struct {
	SessionID   string
	MapProvider model.Peer // Zero when no map was adopted
	MapID       string
}

// ReadAnchors returns the anchor set ordered by seq.
// Returns an empty slice (not nil) if the journal is empty.
func (s *Store) ReadAnchors(ctx context.Context) ([]model.Anchor, error) {
	rows, err := s.ReadAnchorRows(ctx)
	if err != nil {
		return nil, err
	}
	anchors := make([]model.Anchor, len(rows))
	for i, r := range rows {
		anchors[i] = r.Anchor
	}
	return anchors, nil
}

// ReadAnchorRows returns the anchor set with hashes, ordered by seq.
func (s *Store) ReadAnchorRows(ctx context.Context) ([]AnchorRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, origin, peer_id, stroke_hash, record
		FROM anchors
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query anchors: %w", err)
	}
	defer rows.Close()

	out := []AnchorRow{}
	for rows.Next() {
		var (
			row    AnchorRow
			origin string
			record []byte
		)
		if err := rows.Scan(&row.Anchor.Seq, &origin, &row.Anchor.PeerID, &row.StrokeHash, &record); err != nil {
			return nil, fmt.Errorf("scan anchor: %w", err)
		}
		stroke, err := codec.DecodeStroke(record)
		if err != nil {
			return nil, fmt.Errorf("decode anchor %d: %w", row.Anchor.Seq, err)
		}
		row.Anchor.Origin = model.Origin(origin)
		row.Anchor.Stroke = stroke
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate anchors: %w", err)
	}

	return out, nil
}

// CountAnchors returns the number of journaled anchors.
func (s *Store) CountAnchors(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM anchors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count anchors: %w", err)
	}
	return n, nil
}

// ReadSession returns the session row. A journal that has never recorded a
// session returns a zero SessionRecord.
func (s *Store) ReadSession(ctx context.Context) (SessionRecord, error) {
	var (
		rec          SessionRecord
		providerID   string
		providerName string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT session_id, map_provider_id, map_provider_name, map_id
		FROM session
		WHERE id = 1
	`).Scan(&rec.SessionID, &providerID, &providerName, &rec.MapID)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, nil
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("read session: %w", err)
	}
	if providerID != "" {
		rec.MapProvider = model.Peer{ID: providerID, DisplayName: providerName}
	}
	return rec, nil
}

// ReadReceiveEvents returns dropped-payload events ordered by seq.
func (s *Store) ReadReceiveEvents(ctx context.Context) ([]ReceiveEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, peer_id, kind, size, detail
		FROM receive_events
		ORDER BY seq ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query receive events: %w", err)
	}
	defer rows.Close()

	events := []ReceiveEvent{}
	for rows.Next() {
		var ev ReceiveEvent
		if err := rows.Scan(&ev.Seq, &ev.PeerID, &ev.Kind, &ev.Size, &ev.Detail); err != nil {
			return nil, fmt.Errorf("scan receive event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receive events: %w", err)
	}
	return events, nil
}

// MaxSeq returns the highest seq recorded in the journal, or 0.
// Used to resume the engine's logical clock after a restart.
func (s *Store) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := s.db.QueryRowContext(ctx, `
		SELECT MAX(
			COALESCE((SELECT MAX(seq) FROM anchors), 0),
			COALESCE((SELECT MAX(seq) FROM receive_events), 0)
		)
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("max seq: %w", err)
	}
	return seq, nil
}
