// Package geom implements the vector and rigid-transform arithmetic used by
// stroke generation.
//
// Conventions:
//   - Right-handed frame, column vectors, row-major Mat4 storage (m[row][col])
//   - Translation lives in the last column
//   - A device looks down its local -Z axis
//   - A cylinder's default long axis is +Y
package geom
