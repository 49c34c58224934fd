package tracker

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/airdraw/internal/geom"
	"github.com/roach88/airdraw/internal/model"
)

// Frame is one scripted tracker sample.
type Frame struct {
	Pose    geom.Pose
	Quality model.TrackingQuality
	Mapping model.MappingStatus
}

// Scripted replays queued frames, one per Advance. When the queue is empty
// the last frame repeats, like a device held still.
//
// Thread-safety: all methods are safe for concurrent use; Resume is called
// from the receive path while the frame loop reads the pose.
type Scripted struct {
	mu       sync.Mutex
	queue    []Frame
	current  Frame
	features []byte
	resumed  []ResumeRecord
}

// ResumeRecord captures one Resume call for inspection.
type ResumeRecord struct {
	MapID   string
	Options ResumeOptions
}

// NewScripted returns a scripted tracker starting at the origin, looking
// down -Z, with normal tracking and no map.
func NewScripted() *Scripted {
	return &Scripted{
		current: Frame{
			Pose:    geom.Pose{Transform: geom.Identity()},
			Quality: model.Normal(),
			Mapping: model.MappingNotAvailable,
		},
	}
}

// Push queues frames to be played back by Advance.
func (s *Scripted) Push(frames ...Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, frames...)
}

// Advance moves to the next queued frame. Returns false if the queue was
// empty and the current frame was kept.
func (s *Scripted) Advance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return false
	}
	s.current = s.queue[0]
	s.queue[0] = Frame{}
	s.queue = s.queue[1:]
	return true
}

// Pending returns the number of queued frames.
func (s *Scripted) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// SetFeatures sets the opaque geometry returned by CaptureMap.
func (s *Scripted) SetFeatures(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.features = append([]byte(nil), b...)
}

func (s *Scripted) CurrentPose() geom.Pose {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Pose
}

func (s *Scripted) TrackingQuality() model.TrackingQuality {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Quality
}

func (s *Scripted) MappingStatus() model.MappingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Mapping
}

// Resume adopts the map's geometry and starts relocalizing against it.
// Queued frames are kept; the next Advance overrides the quality again.
func (s *Scripted) Resume(m model.WorldMap, opts ResumeOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.features = append([]byte(nil), m.Features...)
	if opts.ResetTracking {
		s.current.Quality = model.Limited(model.ReasonRelocalizing)
	}
	s.resumed = append(s.resumed, ResumeRecord{MapID: m.ID, Options: opts})
}

// Resumes returns every Resume call in order.
func (s *Scripted) Resumes() []ResumeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ResumeRecord, len(s.resumed))
	copy(out, s.resumed)
	return out
}

// CaptureMap returns the current geometry under a fresh UUIDv7 map id.
// Fails with ErrMapNotReady unless the space is extending or mapped.
func (s *Scripted) CaptureMap(ctx context.Context) (model.WorldMap, error) {
	if err := ctx.Err(); err != nil {
		return model.WorldMap{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.current.Mapping {
	case model.MappingExtending, model.MappingMapped:
	default:
		return model.WorldMap{}, fmt.Errorf("%w: mapping is %s", ErrMapNotReady, s.current.Mapping)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.WorldMap{}, fmt.Errorf("capture map: %w", err)
	}
	return model.WorldMap{
		ID:       id.String(),
		Features: append([]byte(nil), s.features...),
	}, nil
}
