package geom

// Pose is the device's position and orientation in the shared world frame.
type Pose struct {
	Transform Mat4
}

// NewPose builds a pose at position looking along forward with +Y up.
// A zero or vertical forward falls back to looking down -Z.
func NewPose(position, forward Vec3) Pose {
	f, ok := forward.Normalize()
	if !ok {
		f = Vec3{0, 0, -1}
	}
	up := Vec3{0, 1, 0}
	right := cross(f, up)
	r, ok := right.Normalize()
	if !ok {
		// Looking straight up or down; pick +X as right.
		r = Vec3{1, 0, 0}
	}
	u := cross(r, f)
	back := f.Scale(-1)
	return Pose{Transform: Mat4{
		{r.X, u.X, back.X, position.X},
		{r.Y, u.Y, back.Y, position.Y},
		{r.Z, u.Z, back.Z, position.Z},
		{0, 0, 0, 1},
	}}
}

// Position returns the device position.
func (p Pose) Position() Vec3 {
	return p.Transform.Translation()
}

// Forward returns the direction the device is facing (its -Z axis).
func (p Pose) Forward() Vec3 {
	return p.Transform.AxisZ().Scale(-1)
}

// PointAhead returns the point distance units in front of the device.
func (p Pose) PointAhead(distance float64) Vec3 {
	return p.Position().Add(p.Forward().Scale(distance))
}

func cross(a, b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}
