package device

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/roach88/airdraw/internal/model"
)

// DrawControl holds the user's drawing input. It is written by input events
// on any goroutine and sampled once per frame.
type DrawControl struct {
	active atomic.Bool

	mu    sync.Mutex
	color model.Color
}

// NewDrawControl returns a released control with the given color.
func NewDrawControl(c model.Color) *DrawControl {
	return &DrawControl{color: c}
}

// Press starts drawing.
func (c *DrawControl) Press() {
	c.active.Store(true)
}

// Release stops drawing.
func (c *DrawControl) Release() {
	c.active.Store(false)
}

// Active reports whether drawing is held.
func (c *DrawControl) Active() bool {
	return c.active.Load()
}

// SetColor changes the color of subsequent strokes.
func (c *DrawControl) SetColor(col model.Color) error {
	if !col.Valid() {
		return fmt.Errorf("color %s: channels must be in [0,1]", col)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.color = col
	return nil
}

// Color returns the selected color.
func (c *DrawControl) Color() model.Color {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.color
}

// sample reads the draw flag and color for one frame.
func (c *DrawControl) sample() (bool, model.Color) {
	return c.Active(), c.Color()
}
