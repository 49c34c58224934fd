package tracker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/airdraw/internal/geom"
	"github.com/roach88/airdraw/internal/model"
)

func TestScripted_Defaults(t *testing.T) {
	s := NewScripted()

	assert.Equal(t, model.Normal(), s.TrackingQuality())
	assert.Equal(t, model.MappingNotAvailable, s.MappingStatus())
	assert.Equal(t, geom.Identity(), s.CurrentPose().Transform)
}

func TestScripted_AdvancePlaysFramesInOrder(t *testing.T) {
	s := NewScripted()
	first := Frame{Pose: geom.NewPose(geom.V(1, 0, 0), geom.V(0, 0, -1)), Quality: model.Normal(), Mapping: model.MappingLimited}
	second := Frame{Pose: geom.NewPose(geom.V(2, 0, 0), geom.V(0, 0, -1)), Quality: model.Limited(model.ReasonExcessiveMotion), Mapping: model.MappingMapped}
	s.Push(first, second)
	assert.Equal(t, 2, s.Pending())

	require.True(t, s.Advance())
	assert.Equal(t, 1.0, s.CurrentPose().Position().X)

	require.True(t, s.Advance())
	assert.Equal(t, model.Limited(model.ReasonExcessiveMotion), s.TrackingQuality())

	assert.False(t, s.Advance(), "empty queue keeps the last frame")
	assert.Equal(t, 2.0, s.CurrentPose().Position().X)
}

func TestScripted_CaptureMapRequiresMapping(t *testing.T) {
	s := NewScripted()
	_, err := s.CaptureMap(context.Background())
	assert.ErrorIs(t, err, ErrMapNotReady)

	s.Push(Frame{Pose: geom.Pose{Transform: geom.Identity()}, Quality: model.Normal(), Mapping: model.MappingExtending})
	s.Advance()
	s.SetFeatures([]byte("mesh"))

	m, err := s.CaptureMap(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, []byte("mesh"), m.Features)
}

func TestScripted_CaptureMapHonorsContext(t *testing.T) {
	s := NewScripted()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.CaptureMap(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScripted_Resume(t *testing.T) {
	s := NewScripted()
	opts := ResumeOptions{ResetTracking: true, DiscardExistingAnchors: true}
	s.Resume(model.WorldMap{ID: "m-1", Features: []byte{1, 2}}, opts)

	assert.Equal(t, model.Limited(model.ReasonRelocalizing), s.TrackingQuality())
	assert.Equal(t, []ResumeRecord{{MapID: "m-1", Options: opts}}, s.Resumes())
}
