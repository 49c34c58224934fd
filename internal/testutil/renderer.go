package testutil

import (
	"sync"

	"github.com/roach88/airdraw/internal/model"
)

// RecordingRenderer keeps the anchors currently displayed.
type RecordingRenderer struct {
	mu      sync.Mutex
	anchors []model.Anchor
	resets  int
}

// NewRecordingRenderer creates an empty renderer.
func NewRecordingRenderer() *RecordingRenderer {
	return &RecordingRenderer{}
}

// AddStroke displays a.
func (r *RecordingRenderer) AddStroke(a model.Anchor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.anchors = append(r.anchors, a)
}

// Reset clears the display.
func (r *RecordingRenderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.anchors = nil
	r.resets++
}

// Anchors returns the displayed anchors in the order they were added.
func (r *RecordingRenderer) Anchors() []model.Anchor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Anchor, len(r.anchors))
	copy(out, r.anchors)
	return out
}

// Resets returns how many times the display was cleared.
func (r *RecordingRenderer) Resets() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resets
}
