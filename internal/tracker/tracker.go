// Package tracker defines the boundary to the spatial pose tracker and a
// scripted implementation used for simulation.
package tracker

import (
	"context"
	"errors"

	"github.com/roach88/airdraw/internal/geom"
	"github.com/roach88/airdraw/internal/model"
)

// ErrMapNotReady is returned by CaptureMap when the tracker has not mapped
// enough of the space to produce a world map.
var ErrMapNotReady = errors.New("world map not ready")

// ResumeOptions controls how the tracker restarts from a received map.
type ResumeOptions struct {
	ResetTracking          bool
	DiscardExistingAnchors bool
}

// Tracker supplies the device pose every frame and owns the spatial map.
type Tracker interface {
	// CurrentPose returns the device pose for this frame.
	CurrentPose() geom.Pose

	// TrackingQuality returns the coarse tracking quality.
	TrackingQuality() model.TrackingQuality

	// MappingStatus returns how completely the space has been mapped.
	MappingStatus() model.MappingStatus

	// Resume restarts tracking using m as the starting reference.
	Resume(m model.WorldMap, opts ResumeOptions)

	// CaptureMap captures the current spatial map. Strokes are filled in by
	// the caller; the tracker only supplies geometry.
	CaptureMap(ctx context.Context) (model.WorldMap, error)
}
