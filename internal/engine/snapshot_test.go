package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/airdraw/internal/codec"
	"github.com/roach88/airdraw/internal/geom"
	"github.com/roach88/airdraw/internal/model"
	"github.com/roach88/airdraw/internal/testutil"
	"github.com/roach88/airdraw/internal/tracker"
)

func mapped(f fixture) {
	f.tracker.Push(tracker.Frame{
		Pose:    geom.Pose{Transform: geom.Identity()},
		Quality: model.Normal(),
		Mapping: model.MappingMapped,
	})
	f.tracker.Advance()
}

func TestExportSnapshot_IncludesStrokeSet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.tracker.SetFeatures([]byte{1, 2, 3})
	mapped(f)

	require.NoError(t, f.engine.ApplyLocalStroke(ctx, stroke(0)))
	require.NoError(t, f.engine.ApplyLocalStroke(ctx, stroke(1)))

	payload, err := f.engine.ExportSnapshot(ctx)
	require.NoError(t, err)

	m, err := codec.DecodeSnapshot(payload)
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, []byte{1, 2, 3}, m.Features)
	assert.Equal(t, f.engine.Strokes(), m.Strokes)
}

func TestExportSnapshot_Unavailable(t *testing.T) {
	f := newFixture(t)

	payload, err := f.engine.ExportSnapshot(context.Background())
	require.Error(t, err)
	assert.Nil(t, payload)
	assert.True(t, IsSnapshotUnavailable(err))
	assert.ErrorIs(t, err, tracker.ErrMapNotReady)

	var sue *SnapshotUnavailableError
	require.True(t, errors.As(err, &sue))
	assert.Equal(t, "capture", sue.Stage)
}

func TestShareSnapshot_Broadcasts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mapped(f)
	require.NoError(t, f.engine.ApplyLocalStroke(ctx, stroke(0)))

	require.NoError(t, f.engine.ShareSnapshot(ctx))

	sent := f.transport.Sent()
	require.Len(t, sent, 2)
	p, err := codec.Decode(sent[1])
	require.NoError(t, err)
	assert.Equal(t, codec.KindSnapshot, p.Kind)
	assert.Len(t, p.Snapshot.Strokes, 1)

	// Sharing does not make this device its own provider.
	_, ok := f.engine.MapProvider()
	assert.False(t, ok)
}

func TestShareSnapshot_UnavailableSendsNothing(t *testing.T) {
	f := newFixture(t)

	err := f.engine.ShareSnapshot(context.Background())
	assert.True(t, IsSnapshotUnavailable(err))
	assert.Empty(t, f.transport.Sent())
}

func TestShareSnapshot_BroadcastFailure(t *testing.T) {
	f := newFixture(t)
	mapped(f)
	f.transport.FailWith(errors.New("no route"))

	err := f.engine.ShareSnapshot(context.Background())
	require.Error(t, err)
	assert.True(t, IsBroadcastError(err))
	assert.Equal(t, 1, f.engine.Stats().BroadcastFailures)
}

func TestSnapshot_RoundTripBetweenEngines(t *testing.T) {
	ctx := context.Background()
	alice := newFixture(t)
	mapped(alice)
	for i := 0; i < 4; i++ {
		require.NoError(t, alice.engine.ApplyLocalStroke(ctx, stroke(float64(i))))
	}
	payload, err := alice.engine.ExportSnapshot(ctx)
	require.NoError(t, err)

	receiver := newFixture(t)
	require.NoError(t, receiver.engine.ApplyLocalStroke(ctx, stroke(99)))
	require.NoError(t, receiver.engine.OnBytesReceived(ctx, payload, model.Peer{ID: "peer-a", DisplayName: "Alice"}))

	assert.Equal(t, alice.engine.Strokes(), receiver.engine.Strokes())
}

// slowCapture blocks CaptureMap until release is closed.
type slowCapture struct {
	*tracker.Scripted
	entered chan struct{}
	release chan struct{}
}

func (s *slowCapture) CaptureMap(ctx context.Context) (model.WorldMap, error) {
	close(s.entered)
	<-s.release
	return s.Scripted.CaptureMap(ctx)
}

func TestExportSnapshot_AdoptionWaitsForCapture(t *testing.T) {
	ctx := context.Background()
	tr := &slowCapture{
		Scripted: tracker.NewScripted(),
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	tr.Push(tracker.Frame{
		Pose:    geom.Pose{Transform: geom.Identity()},
		Quality: model.Normal(),
		Mapping: model.MappingMapped,
	})
	tr.Advance()
	e := New(testutil.NewRecordingTransport(bob), tr, WithLogger(discardLogger()))
	require.NoError(t, e.ApplyLocalStroke(ctx, stroke(0)))

	type exported struct {
		payload []byte
		err     error
	}
	exportDone := make(chan exported, 1)
	go func() {
		p, err := e.ExportSnapshot(ctx)
		exportDone <- exported{p, err}
	}()
	<-tr.entered

	incoming, err := codec.EncodeSnapshot(model.WorldMap{ID: "map-X", Strokes: []model.Stroke{stroke(5), stroke(6)}})
	require.NoError(t, err)
	adoptDone := make(chan error, 1)
	go func() { adoptDone <- e.OnBytesReceived(ctx, incoming, carol) }()
	assertBlocked(t, adoptDone, "incoming snapshot")

	close(tr.release)
	got := <-exportDone
	require.NoError(t, got.err)
	require.NoError(t, <-adoptDone)

	m, err := codec.DecodeSnapshot(got.payload)
	require.NoError(t, err)
	assert.NotEqual(t, "map-X", m.ID)
	assert.Equal(t, []model.Stroke{stroke(0)}, m.Strokes)
	assert.Equal(t, []model.Stroke{stroke(5), stroke(6)}, e.Strokes())
}
