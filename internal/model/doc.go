// Package model provides the shared drawing types for airdraw.
//
// This package contains type definitions only. All other internal packages
// import model; model imports nothing internal except geom. This keeps the
// data model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - A Stroke is immutable once created and its Length is always > 0
//   - Strokes carry no identity; duplicates are distinct cylinders
//   - Anchor.Seq is a local logical clock value and never travels on the wire
//   - SessionState is recomputed every frame and never persisted
package model
