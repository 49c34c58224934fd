package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/airdraw/internal/model"
)

func TestRecordingTransport_RecordsCopies(t *testing.T) {
	tr := NewRecordingTransport(model.Peer{ID: "b", DisplayName: "Bob"})

	buf := []byte{1, 2, 3}
	require.NoError(t, tr.Broadcast(buf))
	buf[0] = 9

	sent := tr.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, []byte{1, 2, 3}, sent[0])
	assert.Equal(t, []model.Peer{{ID: "b", DisplayName: "Bob"}}, tr.Peers())
}

func TestRecordingTransport_FailWith(t *testing.T) {
	tr := NewRecordingTransport()
	boom := errors.New("radio off")

	tr.FailWith(boom)
	assert.ErrorIs(t, tr.Broadcast([]byte{1}), boom)
	assert.Empty(t, tr.Sent())

	tr.FailWith(nil)
	assert.NoError(t, tr.Broadcast([]byte{1}))
	assert.Len(t, tr.Sent(), 1)
}

func TestRecordingRenderer_Reset(t *testing.T) {
	r := NewRecordingRenderer()
	r.AddStroke(model.Anchor{Seq: 1})
	r.AddStroke(model.Anchor{Seq: 2})
	assert.Len(t, r.Anchors(), 2)

	r.Reset()
	assert.Empty(t, r.Anchors())
	assert.Equal(t, 1, r.Resets())
}
