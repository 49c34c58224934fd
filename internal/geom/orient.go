package geom

import "math"

// Euler holds pitch (X), yaw (Y) and roll (Z) angles in radians.
type Euler struct {
	Pitch float64
	Yaw   float64
	Roll  float64
}

// Matrix composes Rz(roll)·Ry(yaw)·Rx(pitch): pitch is applied first.
func (e Euler) Matrix() Mat4 {
	return RotationZ(e.Roll).Mul(RotationY(e.Yaw)).Mul(RotationX(e.Pitch))
}

// OrientationFromDirection returns the Euler angles that align a cylinder's
// default +Y axis with d:
//
//	pitch = π/2            (lays the cylinder's Y axis onto +Z)
//	yaw   = acos(dz/|d|)   (tilts it away from +Z)
//	roll  = atan2(dy, dx)  (spins it about +Z)
//
// Returns false when d has zero length.
func OrientationFromDirection(d Vec3) (Euler, bool) {
	length := d.Length()
	if length == 0 || !isFinite(length) {
		return Euler{}, false
	}
	cos := d.Z / length
	// Rounding can push |cos| a hair past 1; acos would return NaN.
	cos = math.Max(-1, math.Min(1, cos))
	return Euler{
		Pitch: math.Pi / 2,
		Yaw:   math.Acos(cos),
		Roll:  math.Atan2(d.Y, d.X),
	}, true
}

// Placement returns the transform of a cylinder spanning from -> to:
// translated to the midpoint and oriented along the segment.
func Placement(from, to Vec3) (Mat4, bool) {
	e, ok := OrientationFromDirection(Direction(from, to))
	if !ok {
		return Mat4{}, false
	}
	return Translation(Midpoint(from, to)).Mul(e.Matrix()), true
}
