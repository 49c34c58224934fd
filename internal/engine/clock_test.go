package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/airdraw/internal/codec"
	"github.com/roach88/airdraw/internal/model"
)

func TestClock_Observe(t *testing.T) {
	tests := []struct {
		name  string
		start int64
		seen  int64
		want  int64
	}{
		{"behind moves forward", 3, 10, 10},
		{"ahead stays", 12, 10, 12},
		{"equal stays", 7, 7, 7},
		{"zero journal", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClockAt(tt.start)
			c.Observe(tt.seen)
			assert.Equal(t, tt.want, c.Current())
			assert.Equal(t, tt.want+1, c.Next())
		})
	}
}

func TestClock_SeqOrderAcrossOrigins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.engine.ApplyLocalStroke(ctx, stroke(0)))

	remote, err := codec.EncodeStroke(stroke(1))
	require.NoError(t, err)
	require.NoError(t, f.engine.OnBytesReceived(ctx, remote, bob))

	// The dropped payload consumes a seq too.
	require.Error(t, f.engine.OnBytesReceived(ctx, []byte("noise"), bob))

	snap, err := codec.EncodeSnapshot(model.WorldMap{ID: "m", Strokes: []model.Stroke{stroke(2), stroke(3)}})
	require.NoError(t, err)
	require.NoError(t, f.engine.OnBytesReceived(ctx, snap, carol))

	require.NoError(t, f.engine.ApplyLocalStroke(ctx, stroke(4)))

	var seqs []int64
	var origins []model.Origin
	for _, a := range f.engine.Anchors() {
		seqs = append(seqs, a.Seq)
		origins = append(origins, a.Origin)
	}
	assert.Equal(t, []int64{4, 5, 6}, seqs)
	assert.Equal(t, []model.Origin{model.OriginSnapshot, model.OriginSnapshot, model.OriginLocal}, origins)
	assert.Equal(t, int64(6), f.engine.Seq())
}

func TestClock_RestoreNeverReissuesSeq(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	first := newFixture(t, WithJournal(s))
	for i := 0; i < 3; i++ {
		require.NoError(t, first.engine.ApplyLocalStroke(ctx, stroke(float64(i))))
	}
	require.Error(t, first.engine.OnBytesReceived(ctx, []byte{0xff, 0xff}, bob))

	maxSeq, err := s.MaxSeq(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(4), maxSeq)

	// A clock already ahead of the journal keeps its position.
	ahead := newFixture(t, WithJournal(s), WithClock(NewClockAt(20)))
	require.NoError(t, ahead.engine.Restore(ctx))
	assert.Equal(t, int64(20), ahead.engine.Seq())

	behind := newFixture(t, WithJournal(s))
	require.NoError(t, behind.engine.Restore(ctx))
	assert.Equal(t, maxSeq, behind.engine.Seq())
	require.NoError(t, behind.engine.ApplyLocalStroke(ctx, stroke(9)))
	anchors := behind.engine.Anchors()
	assert.Equal(t, maxSeq+1, anchors[len(anchors)-1].Seq)
}

func TestClock_ConcurrentAppendsGetDistinctSeqs(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	payload, err := codec.EncodeStroke(stroke(0))
	require.NoError(t, err)

	const peers, perPeer = 8, 25
	var wg sync.WaitGroup
	for i := 0; i < peers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perPeer; j++ {
				assert.NoError(t, f.engine.OnBytesReceived(ctx, payload, bob))
			}
		}()
	}
	wg.Wait()

	anchors := f.engine.Anchors()
	require.Len(t, anchors, peers*perPeer)
	for i, a := range anchors {
		assert.Equal(t, int64(i+1), a.Seq, "anchors must stay in seq order")
	}
}
