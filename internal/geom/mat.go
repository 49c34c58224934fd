package geom

import "math"

// Mat4 is a 4x4 transform stored row-major: m[row][col].
type Mat4 [4][4]float64

// Identity returns the identity transform.
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translation returns a pure translation by t.
func Translation(t Vec3) Mat4 {
	m := Identity()
	m[0][3], m[1][3], m[2][3] = t.X, t.Y, t.Z
	return m
}

// RotationX returns a rotation of a radians about +X.
func RotationX(a float64) Mat4 {
	s, c := math.Sincos(a)
	return Mat4{
		{1, 0, 0, 0},
		{0, c, -s, 0},
		{0, s, c, 0},
		{0, 0, 0, 1},
	}
}

// RotationY returns a rotation of a radians about +Y.
func RotationY(a float64) Mat4 {
	s, c := math.Sincos(a)
	return Mat4{
		{c, 0, s, 0},
		{0, 1, 0, 0},
		{-s, 0, c, 0},
		{0, 0, 0, 1},
	}
}

// RotationZ returns a rotation of a radians about +Z.
func RotationZ(a float64) Mat4 {
	s, c := math.Sincos(a)
	return Mat4{
		{c, -s, 0, 0},
		{s, c, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Mul returns m·o.
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[i][k] * o[k][j]
			}
			r[i][j] = sum
		}
	}
	return r
}

// TransformPoint applies m to the point p.
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

// TransformDir applies the rotation part of m to the direction d.
func (m Mat4) TransformDir(d Vec3) Vec3 {
	return Vec3{
		m[0][0]*d.X + m[0][1]*d.Y + m[0][2]*d.Z,
		m[1][0]*d.X + m[1][1]*d.Y + m[1][2]*d.Z,
		m[2][0]*d.X + m[2][1]*d.Y + m[2][2]*d.Z,
	}
}

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[0][3], m[1][3], m[2][3]}
}

// AxisY returns the image of +Y, the second basis column.
func (m Mat4) AxisY() Vec3 {
	return Vec3{m[0][1], m[1][1], m[2][1]}
}

// AxisZ returns the image of +Z, the third basis column.
func (m Mat4) AxisZ() Vec3 {
	return Vec3{m[0][2], m[1][2], m[2][2]}
}

// Flatten returns the 16 elements in row-major order.
func (m Mat4) Flatten() [16]float64 {
	var out [16]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i*4+j] = m[i][j]
		}
	}
	return out
}

// FromFlat builds a Mat4 from 16 row-major elements.
func FromFlat(v [16]float64) Mat4 {
	var m Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m[i][j] = v[i*4+j]
		}
	}
	return m
}

// IsFinite reports whether every element is finite.
func (m Mat4) IsFinite() bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if !isFinite(m[i][j]) {
				return false
			}
		}
	}
	return true
}
