package store

import (
	"context"
	"testing"

	"github.com/roach88/airdraw/internal/codec"
	"github.com/roach88/airdraw/internal/geom"
	"github.com/roach88/airdraw/internal/model"
)

func testStroke(x float64) model.Stroke {
	return model.Stroke{
		Length:    0.05,
		Color:     model.Color{R: 0.25, G: 0.5, B: 1, A: 1},
		Placement: geom.Translation(geom.V(x, 0, -0.2)),
	}
}

func TestAppendAnchor_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	want := model.Anchor{Seq: 1, Origin: model.OriginLocal, Stroke: testStroke(0.1)}
	if err := s.AppendAnchor(ctx, want); err != nil {
		t.Fatalf("AppendAnchor() failed: %v", err)
	}

	got, err := s.ReadAnchors(ctx)
	if err != nil {
		t.Fatalf("ReadAnchors() failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0] != want {
		t.Errorf("anchor = %+v, want %+v", got[0], want)
	}
}

func TestAppendAnchor_DuplicateStrokeKeepsBoth(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	stroke := testStroke(0.1)
	for seq := int64(1); seq <= 2; seq++ {
		a := model.Anchor{Seq: seq, Origin: model.OriginRemote, PeerID: "peer-b", Stroke: stroke}
		if err := s.AppendAnchor(ctx, a); err != nil {
			t.Fatalf("AppendAnchor(%d) failed: %v", seq, err)
		}
	}

	rows, err := s.ReadAnchorRows(ctx)
	if err != nil {
		t.Fatalf("ReadAnchorRows() failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
	if rows[0].StrokeHash != rows[1].StrokeHash {
		t.Errorf("hashes differ for identical strokes: %s vs %s", rows[0].StrokeHash, rows[1].StrokeHash)
	}

	record, err := codec.EncodeStroke(stroke)
	if err != nil {
		t.Fatalf("EncodeStroke() failed: %v", err)
	}
	if rows[0].StrokeHash != model.StrokeHash(record) {
		t.Errorf("stored hash = %s, want %s", rows[0].StrokeHash, model.StrokeHash(record))
	}
}

func TestAppendAnchor_DuplicateSeqFails(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	a := model.Anchor{Seq: 7, Origin: model.OriginLocal, Stroke: testStroke(0)}
	if err := s.AppendAnchor(ctx, a); err != nil {
		t.Fatalf("first AppendAnchor() failed: %v", err)
	}
	if err := s.AppendAnchor(ctx, a); err == nil {
		t.Error("expected error for duplicate seq")
	}
}

func TestAppendAnchor_InvalidStroke(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	bad := testStroke(0)
	bad.Color.R = 2
	err := s.AppendAnchor(ctx, model.Anchor{Seq: 1, Origin: model.OriginLocal, Stroke: bad})
	if err == nil {
		t.Fatal("expected error for invalid stroke")
	}

	n, err := s.CountAnchors(ctx)
	if err != nil {
		t.Fatalf("CountAnchors() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestReplaceAnchors_SwapsSetAndProvider(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.ResetSession(ctx, "session-1"); err != nil {
		t.Fatalf("ResetSession() failed: %v", err)
	}
	for seq := int64(1); seq <= 3; seq++ {
		a := model.Anchor{Seq: seq, Origin: model.OriginLocal, Stroke: testStroke(float64(seq))}
		if err := s.AppendAnchor(ctx, a); err != nil {
			t.Fatalf("AppendAnchor() failed: %v", err)
		}
	}

	provider := model.Peer{ID: "peer-b", DisplayName: "Bob"}
	adopted := []model.Anchor{
		{Seq: 4, Origin: model.OriginSnapshot, PeerID: "peer-b", Stroke: testStroke(9)},
	}
	if err := s.ReplaceAnchors(ctx, adopted, provider, "map-1"); err != nil {
		t.Fatalf("ReplaceAnchors() failed: %v", err)
	}

	got, err := s.ReadAnchors(ctx)
	if err != nil {
		t.Fatalf("ReadAnchors() failed: %v", err)
	}
	if len(got) != 1 || got[0] != adopted[0] {
		t.Errorf("anchors = %+v, want %+v", got, adopted)
	}

	sess, err := s.ReadSession(ctx)
	if err != nil {
		t.Fatalf("ReadSession() failed: %v", err)
	}
	if sess.SessionID != "session-1" {
		t.Errorf("SessionID = %q, want session-1", sess.SessionID)
	}
	if sess.MapProvider != provider {
		t.Errorf("MapProvider = %+v, want %+v", sess.MapProvider, provider)
	}
	if sess.MapID != "map-1" {
		t.Errorf("MapID = %q, want map-1", sess.MapID)
	}
}

func TestReplaceAnchors_RollsBackOnBadStroke(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	orig := model.Anchor{Seq: 1, Origin: model.OriginLocal, Stroke: testStroke(0)}
	if err := s.AppendAnchor(ctx, orig); err != nil {
		t.Fatalf("AppendAnchor() failed: %v", err)
	}

	bad := testStroke(1)
	bad.Length = -1
	adopted := []model.Anchor{
		{Seq: 2, Origin: model.OriginSnapshot, Stroke: testStroke(2)},
		{Seq: 3, Origin: model.OriginSnapshot, Stroke: bad},
	}
	if err := s.ReplaceAnchors(ctx, adopted, model.Peer{ID: "p"}, "m"); err == nil {
		t.Fatal("expected error for invalid stroke")
	}

	got, err := s.ReadAnchors(ctx)
	if err != nil {
		t.Fatalf("ReadAnchors() failed: %v", err)
	}
	if len(got) != 1 || got[0] != orig {
		t.Errorf("anchors after rollback = %+v, want [%+v]", got, orig)
	}
}

func TestResetSession_ClearsAnchorsAndProvider(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	adopted := []model.Anchor{{Seq: 1, Origin: model.OriginSnapshot, Stroke: testStroke(0)}}
	if err := s.ReplaceAnchors(ctx, adopted, model.Peer{ID: "peer-b", DisplayName: "Bob"}, "map-1"); err != nil {
		t.Fatalf("ReplaceAnchors() failed: %v", err)
	}
	if err := s.ResetSession(ctx, "session-2"); err != nil {
		t.Fatalf("ResetSession() failed: %v", err)
	}

	n, err := s.CountAnchors(ctx)
	if err != nil {
		t.Fatalf("CountAnchors() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}

	sess, err := s.ReadSession(ctx)
	if err != nil {
		t.Fatalf("ReadSession() failed: %v", err)
	}
	if sess.SessionID != "session-2" || !sess.MapProvider.IsZero() || sess.MapID != "" {
		t.Errorf("session = %+v, want fresh session-2", sess)
	}
}
