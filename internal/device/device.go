package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/airdraw/internal/engine"
	"github.com/roach88/airdraw/internal/generator"
	"github.com/roach88/airdraw/internal/model"
	"github.com/roach88/airdraw/internal/status"
	"github.com/roach88/airdraw/internal/tracker"
	"github.com/roach88/airdraw/internal/transport"
)

// ErrExportDisabled is returned by ShareMap when the map is not ready or no
// peer is connected.
var ErrExportDisabled = errors.New("map export disabled")

// Frame is the outcome of one Tick.
type Frame struct {
	Stroke *model.Stroke      `json:"stroke,omitempty"` // Nil when no segment was emitted
	State  model.SessionState `json:"-"`
	Status status.Report      `json:"status"`
}

// Device is one participant: a tracker, a transport and the replication
// engine tied together by a per-frame tick.
//
// Tick must be called from a single goroutine. DrawControl may be written
// from any goroutine.
type Device struct {
	tracker   tracker.Tracker
	transport transport.Transport
	engine    *engine.Engine
	control   *DrawControl
	gen       *generator.Generator
	distance  float64
	log       *slog.Logger
}

// Option configures a Device.
type Option func(*Device)

// WithDrawingDistance sets how far in front of the device strokes are drawn.
func WithDrawingDistance(d float64) Option {
	return func(dev *Device) {
		dev.distance = d
	}
}

// WithColor sets the initial stroke color. Default: model.Red.
func WithColor(c model.Color) Option {
	return func(dev *Device) {
		dev.control = NewDrawControl(c)
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(dev *Device) {
		dev.log = l
	}
}

// New creates a device around an engine already bound to tr and t.
func New(tr tracker.Tracker, t transport.Transport, e *engine.Engine, opts ...Option) *Device {
	d := &Device{
		tracker:   tr,
		transport: t,
		engine:    e,
		control:   NewDrawControl(model.Red),
		gen:       generator.New(),
		distance:  generator.DefaultDrawingDistance,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Control returns the draw control for input events.
func (d *Device) Control() *DrawControl {
	return d.control
}

// Engine returns the replication engine.
func (d *Device) Engine() *engine.Engine {
	return d.engine
}

// Tick runs one frame.
//
// A stroke that was applied locally but failed to broadcast is reported in
// the returned error; the frame is still complete.
func (d *Device) Tick(ctx context.Context) (Frame, error) {
	active, color := d.control.sample()

	var (
		frame Frame
		err   error
	)
	s, ok := d.gen.Step(d.tracker.CurrentPose(), generator.Input{
		Color:           color,
		DrawActive:      active,
		DrawingDistance: d.distance,
	})
	if ok {
		if err = d.engine.ApplyLocalStroke(ctx, s); err != nil && !engine.IsBroadcastError(err) {
			return Frame{}, fmt.Errorf("tick: %w", err)
		}
		frame.Stroke = &s
	}

	frame.State = d.SessionState()
	frame.Status = status.Evaluate(frame.State)
	return frame, err
}

// SessionState gathers the status inputs for the current frame.
func (d *Device) SessionState() model.SessionState {
	state := model.SessionState{
		Tracking:   d.tracker.TrackingQuality(),
		Peers:      d.transport.Peers(),
		HasAnchors: d.engine.AnchorCount() > 0,
		Mapping:    d.tracker.MappingStatus(),
	}
	if p, ok := d.engine.MapProvider(); ok {
		state.MapProvider = &p
	}
	return state
}

// ShareMap sends the current map and stroke set to every peer. It is refused
// with ErrExportDisabled unless the map is extending or mapped and at least
// one peer is connected.
func (d *Device) ShareMap(ctx context.Context) error {
	state := d.SessionState()
	if !status.ExportEnabled(state) {
		return fmt.Errorf("%w: mapping %s, %d peers", ErrExportDisabled, state.Mapping, state.ConnectedPeerCount())
	}
	if err := d.engine.ShareSnapshot(ctx); err != nil {
		return fmt.Errorf("share map: %w", err)
	}
	return nil
}

// StartOver discards the stroke set and starts a fresh local session.
func (d *Device) StartOver(ctx context.Context) error {
	d.gen.Reset()
	if err := d.engine.StartLocalSession(ctx); err != nil {
		return err
	}
	d.log.Debug("device restarted")
	return nil
}
