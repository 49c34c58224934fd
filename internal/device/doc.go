// Package device runs the per-frame timeline of one drawing device.
//
// Each Tick samples the draw control once, steps the stroke generator with
// the tracker pose, applies any emitted stroke through the replication
// engine, and resolves the session status for display.
package device
