package model

import (
	"fmt"

	"github.com/roach88/airdraw/internal/geom"
)

// Color is a normalized RGBA color. Each channel is in [0,1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Red is the default selected color.
var Red = Color{R: 1, G: 0, B: 0, A: 1}

// Valid reports whether every channel is inside [0,1].
func (c Color) Valid() bool {
	for _, ch := range [4]float64{c.R, c.G, c.B, c.A} {
		if !(ch >= 0 && ch <= 1) {
			return false
		}
	}
	return true
}

// String formats the color as "[r, g, b, a]".
func (c Color) String() string {
	return fmt.Sprintf("[%g, %g, %g, %g]", c.R, c.G, c.B, c.A)
}

// Stroke is one oriented cylindrical segment of the shared drawing.
//
// Placement is a rigid transform whose translation is the segment midpoint
// and whose +Y axis runs along the segment.
type Stroke struct {
	Length    float64   `json:"length"`
	Color     Color     `json:"color"`
	Placement geom.Mat4 `json:"placement"`
}

// Midpoint returns the translation of the stroke placement.
func (s Stroke) Midpoint() geom.Vec3 {
	return s.Placement.Translation()
}

// Axis returns the unit direction the cylinder's long axis points along.
func (s Stroke) Axis() geom.Vec3 {
	return s.Placement.AxisY()
}

// Cylinder is the rendered shape of a stroke.
type Cylinder struct {
	Radius         float64 `json:"radius"`
	Height         float64 `json:"height"`
	RadialSegments int     `json:"radial_segments"`
}

// Shape returns the cylinder drawn for s with the given radius and
// tessellation. The height is the stroke length.
func (s Stroke) Shape(radius float64, segments int) Cylinder {
	return Cylinder{Radius: radius, Height: s.Length, RadialSegments: segments}
}

// Origin records how an anchor entered the local stroke set.
type Origin string

const (
	// OriginLocal marks a stroke generated on this device.
	OriginLocal Origin = "local"
	// OriginRemote marks a stroke received from a peer.
	OriginRemote Origin = "remote"
	// OriginSnapshot marks a stroke adopted from a peer's snapshot.
	OriginSnapshot Origin = "snapshot"
)

// Anchor is a stroke held in the local stroke set.
type Anchor struct {
	Seq    int64  `json:"seq"`  // Local logical clock
	Origin Origin `json:"origin"`
	PeerID string `json:"peer_id,omitempty"` // Empty for local strokes
	Stroke Stroke `json:"stroke"`
}

// WorldMap is the content of a Snapshot: the sender's entire spatial map.
//
// Features is opaque tracker geometry. Strokes are the anchors known to the
// sender when the map was captured.
type WorldMap struct {
	ID       string   `json:"id"`
	Features []byte   `json:"features,omitempty"`
	Strokes  []Stroke `json:"strokes"`
}
