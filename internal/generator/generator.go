// Package generator turns a moving pose into discrete stroke segments.
//
// Sampling a continuous gesture once per frame and connecting consecutive
// sample points with oriented cylinders approximates a continuous stroke.
package generator

import (
	"github.com/roach88/airdraw/internal/geom"
	"github.com/roach88/airdraw/internal/model"
)

// DefaultDrawingDistance is how far in front of the device the drawn point sits.
const DefaultDrawingDistance = 0.2

// State is the generator state.
type State int

const (
	// StateIdle means no previous position has been recorded.
	StateIdle State = iota
	// StateTracking means a previous position is recorded.
	StateTracking
)

func (s State) String() string {
	if s == StateTracking {
		return "tracking"
	}
	return "idle"
}

// Input is the per-frame drawing configuration, sampled once per frame.
type Input struct {
	Color           model.Color
	DrawActive      bool
	DrawingDistance float64
}

// Generator is the stroke state machine. Not safe for concurrent use;
// it lives on the per-frame timeline.
type Generator struct {
	state    State
	previous geom.Vec3
}

// New returns a generator in the idle state.
func New() *Generator {
	return &Generator{}
}

// State returns the current state.
func (g *Generator) State() State {
	return g.state
}

// Previous returns the last sampled point and whether one is recorded.
func (g *Generator) Previous() (geom.Vec3, bool) {
	return g.previous, g.state == StateTracking
}

// Reset drops the recorded point and returns to idle.
func (g *Generator) Reset() {
	g.state = StateIdle
	g.previous = geom.Vec3{}
}

// Step consumes one frame and returns the stroke to emit, if any.
//
// The drawn point is the point DrawingDistance in front of the device. A
// stroke is emitted only when a previous point exists, drawing is active and
// the point moved; a zero-length segment is skipped. The previous point
// advances on every call regardless of emission.
func (g *Generator) Step(pose geom.Pose, in Input) (model.Stroke, bool) {
	distance := in.DrawingDistance
	if distance == 0 {
		distance = DefaultDrawingDistance
	}
	current := pose.PointAhead(distance)

	var (
		stroke  model.Stroke
		emitted bool
	)
	if g.state == StateTracking && in.DrawActive {
		delta := geom.Direction(g.previous, current)
		if length := delta.Length(); length > 0 {
			if placement, ok := geom.Placement(g.previous, current); ok {
				stroke = model.Stroke{
					Length:    length,
					Color:     in.Color,
					Placement: placement,
				}
				emitted = true
			}
		}
	}

	g.previous = current
	g.state = StateTracking
	return stroke, emitted
}
