package harness

import (
	"fmt"

	"github.com/roach88/airdraw/internal/geom"
	"github.com/roach88/airdraw/internal/model"
	"github.com/roach88/airdraw/internal/tracker"
)

func parseVec(v []float64, field string) (geom.Vec3, error) {
	if len(v) != 3 {
		return geom.Vec3{}, fmt.Errorf("%s: want 3 components, got %d", field, len(v))
	}
	out := geom.V(v[0], v[1], v[2])
	if !out.IsFinite() {
		return geom.Vec3{}, fmt.Errorf("%s: components must be finite", field)
	}
	return out, nil
}

func parseColor(c []float64) (model.Color, error) {
	if len(c) != 4 {
		return model.Color{}, fmt.Errorf("color: want [r, g, b, a], got %d components", len(c))
	}
	col := model.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
	if !col.Valid() {
		return model.Color{}, fmt.Errorf("color %s: channels must be in [0,1]", col)
	}
	return col, nil
}

func parseTracking(s string) (model.TrackingQuality, error) {
	return model.ParseTrackingQuality(s)
}

func parseMapping(s string) (model.MappingStatus, error) {
	return model.ParseMappingStatus(s)
}

func (f FrameSpec) pose() (geom.Pose, error) {
	pos, err := parseVec(f.Position, "position")
	if err != nil {
		return geom.Pose{}, err
	}
	fwd := geom.V(0, 0, -1)
	if f.Forward != nil {
		if fwd, err = parseVec(f.Forward, "forward"); err != nil {
			return geom.Pose{}, err
		}
	}
	return geom.NewPose(pos, fwd), nil
}

// trackerFrame converts a validated FrameSpec.
func (f FrameSpec) trackerFrame() tracker.Frame {
	pose, _ := f.pose()
	q, _ := parseTracking(f.Tracking)
	m, _ := parseMapping(f.Mapping)
	return tracker.Frame{Pose: pose, Quality: q, Mapping: m}
}
