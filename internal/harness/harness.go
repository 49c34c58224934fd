package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/airdraw/internal/codec"
	"github.com/roach88/airdraw/internal/config"
	"github.com/roach88/airdraw/internal/device"
	"github.com/roach88/airdraw/internal/engine"
	"github.com/roach88/airdraw/internal/model"
	"github.com/roach88/airdraw/internal/status"
	"github.com/roach88/airdraw/internal/store"
	"github.com/roach88/airdraw/internal/testutil"
	"github.com/roach88/airdraw/internal/tracker"
	"github.com/roach88/airdraw/internal/transport"
)

// Option configures a run.
type Option func(*Harness)

// WithConfig supplies device defaults. Default: config.Default().
func WithConfig(cfg config.Config) Option {
	return func(h *Harness) {
		h.cfg = cfg
	}
}

// WithLogger routes engine and mesh logs to l. Default: discarded.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.log = l
	}
}

// Harness executes one scenario.
type Harness struct {
	ctx     context.Context
	cfg     config.Config
	log     *slog.Logger
	mesh    *transport.Mesh
	devices map[string]*simDevice
	order   []string
	result  *Result
}

// simDevice is one device and everything wired to it.
type simDevice struct {
	id         string
	log        *slog.Logger
	distance   float64
	store      *store.Store
	tracker    *tracker.Scripted
	endpoint   *transport.Endpoint
	engine     *engine.Engine
	device     *device.Device
	lastStatus string
}

// Run executes a scenario and returns the result.
//
// Each device gets a fresh in-memory journal. An error is returned only when
// the run itself cannot proceed; failed assertions are reported in the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		ctx:     context.Background(),
		cfg:     config.Default(),
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
		devices: make(map[string]*simDevice),
		result:  NewResult(),
	}
	for _, opt := range opts {
		opt(h)
	}
	defer h.close()

	if err := h.setup(scenario); err != nil {
		return nil, fmt.Errorf("failed to set up devices: %w", err)
	}

	for i, step := range scenario.Steps {
		if err := h.execute(step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	if err := h.collect(); err != nil {
		return nil, fmt.Errorf("failed to collect final state: %w", err)
	}

	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions) {
		h.result.AddError(msg)
	}

	return h.result, nil
}

func (h *Harness) setup(s *Scenario) error {
	meshOpts := []transport.MeshOption{transport.WithLogger(h.log)}
	if s.Network.Duplicates > 0 {
		meshOpts = append(meshOpts, transport.WithDuplicates(s.Network.Duplicates))
	}
	if s.Network.DropEvery > 0 {
		meshOpts = append(meshOpts, transport.WithDropEvery(s.Network.DropEvery))
	}
	if s.Network.ShuffleSeed != nil {
		meshOpts = append(meshOpts, transport.WithShuffle(*s.Network.ShuffleSeed))
	}
	h.mesh = transport.NewMesh(meshOpts...)

	for _, spec := range s.Devices {
		if err := h.addDevice(spec); err != nil {
			return fmt.Errorf("device %s: %w", spec.ID, err)
		}
	}
	return nil
}

func (h *Harness) addDevice(spec DeviceSpec) error {
	name := spec.Name
	if name == "" {
		name = h.cfg.DeviceName
	}
	color := h.cfg.DefaultColor
	if spec.Color != nil {
		c, err := parseColor(spec.Color)
		if err != nil {
			return err
		}
		color = c
	}
	distance := h.cfg.DrawingDistance
	if spec.DrawingDistance > 0 {
		distance = spec.DrawingDistance
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return fmt.Errorf("failed to create in-memory store: %w", err)
	}

	sd := &simDevice{
		id:       spec.ID,
		log:      h.log.With("device", spec.ID),
		distance: distance,
		store:    st,
		tracker:  tracker.NewScripted(),
	}
	h.devices[spec.ID] = sd
	h.order = append(h.order, spec.ID)

	sd.endpoint = h.mesh.Join(model.NewPeer(spec.ID, name), h.receiver(sd))
	sd.start(color)
	return nil
}

// start builds a fresh engine and device on sd's journal, tracker and endpoint.
func (sd *simDevice) start(color model.Color) {
	sd.engine = engine.New(sd.endpoint, sd.tracker,
		engine.WithJournal(sd.store),
		engine.WithLogger(sd.log),
		engine.WithSessionIDs(testutil.NewFixedSessionID("session-"+sd.id)),
	)
	sd.device = device.New(sd.tracker, sd.endpoint, sd.engine,
		device.WithColor(color),
		device.WithDrawingDistance(sd.distance),
		device.WithLogger(sd.log),
	)
	sd.lastStatus = ""
}

// receiver applies delivered payloads synchronously and traces the outcome.
func (h *Harness) receiver(sd *simDevice) transport.ReceiveFunc {
	return func(payload []byte, from model.Peer) {
		before := sd.engine.Stats()
		err := sd.engine.OnBytesReceived(h.ctx, payload, from)
		after := sd.engine.Stats()

		kind := "unrecognized"
		switch {
		case after.SnapshotsAdopted > before.SnapshotsAdopted:
			kind = "snapshot"
		case after.RemoteStrokes > before.RemoteStrokes:
			kind = "stroke"
		case err != nil && !codec.IsDecodeError(err):
			kind = "failed"
		}
		h.record(sd, EventReceived, kind+" from "+from.ID)
	}
}

func (h *Harness) execute(step Step) error {
	sd := h.devices[step.Device]

	if len(step.Frames) > 0 {
		for _, f := range step.Frames {
			if err := h.tick(sd, f); err != nil {
				return err
			}
		}
		return nil
	}

	switch step.Action {
	case ActionShareMap:
		err := sd.device.ShareMap(h.ctx)
		switch {
		case err == nil:
			h.record(sd, EventShared, "")
		case errors.Is(err, device.ErrExportDisabled), engine.IsSnapshotUnavailable(err):
			h.record(sd, EventShareRefused, err.Error())
		case engine.IsBroadcastError(err):
			h.record(sd, EventBroadcastFailed, err.Error())
		default:
			return err
		}

	case ActionStartOver:
		if err := sd.device.StartOver(h.ctx); err != nil {
			return err
		}
		h.record(sd, EventStartOver, sd.engine.SessionID())

	case ActionLeave:
		sd.endpoint.Leave()
		h.record(sd, EventLeft, "")

	case ActionJoin:
		sd.endpoint.Rejoin()
		h.record(sd, EventJoined, "")

	case ActionGarbage:
		if err := sd.endpoint.Broadcast([]byte(step.Payload)); err != nil {
			h.record(sd, EventBroadcastFailed, err.Error())
			return nil
		}
		h.record(sd, EventGarbage, fmt.Sprintf("%d bytes", len(step.Payload)))

	case ActionRestart:
		sd.start(sd.device.Control().Color())
		if err := sd.engine.Restore(h.ctx); err != nil {
			return err
		}
		h.record(sd, EventRestarted, fmt.Sprintf("restored %d", sd.engine.AnchorCount()))

	case ActionColor:
		c, err := parseColor(step.Color)
		if err != nil {
			return err
		}
		if err := sd.device.Control().SetColor(c); err != nil {
			return err
		}
		h.record(sd, EventColor, c.String())

	default:
		return fmt.Errorf("unknown action %q", step.Action)
	}
	return nil
}

// tick plays one frame on sd.
func (h *Harness) tick(sd *simDevice, f FrameSpec) error {
	if f.Draw {
		sd.device.Control().Press()
	} else {
		sd.device.Control().Release()
	}
	sd.tracker.Push(f.trackerFrame())
	sd.tracker.Advance()

	frame, err := sd.device.Tick(h.ctx)
	if err != nil && !engine.IsBroadcastError(err) {
		return err
	}
	if frame.Stroke != nil {
		h.record(sd, EventStroke, fmt.Sprintf("%.3f %s", frame.Stroke.Length, frame.Stroke.Color))
	}
	if err != nil {
		h.record(sd, EventBroadcastFailed, err.Error())
	}
	if frame.Status.Message != sd.lastStatus {
		sd.lastStatus = frame.Status.Message
		h.record(sd, EventStatus, frame.Status.Message)
	}
	return nil
}

func (h *Harness) record(sd *simDevice, event, detail string) {
	h.result.addEvent(TraceEvent{
		Device:  sd.id,
		Event:   event,
		Detail:  detail,
		Anchors: sd.engine.AnchorCount(),
	})
}

// collect snapshots every device's final state into the result.
func (h *Harness) collect() error {
	for _, id := range h.order {
		sd := h.devices[id]

		state := sd.device.SessionState()
		report := status.Evaluate(state)
		journaled, err := sd.store.CountAnchors(h.ctx)
		if err != nil {
			return fmt.Errorf("device %s: %w", id, err)
		}

		ds := DeviceState{
			Anchors:       sd.engine.AnchorCount(),
			Status:        report.Message,
			ExportEnabled: report.ExportEnabled,
			Unrecognized:  sd.engine.Stats().Unrecognized,
			Journaled:     journaled,
		}
		if p, ok := sd.engine.MapProvider(); ok {
			ds.MapProvider = p.ID
		}
		for _, s := range sd.engine.Strokes() {
			record, err := codec.EncodeStroke(s)
			if err != nil {
				return fmt.Errorf("device %s: %w", id, err)
			}
			ds.strokes = append(ds.strokes, model.StrokeHash(record))
		}
		h.result.Devices[id] = ds
	}
	return nil
}

func (h *Harness) close() {
	for _, sd := range h.devices {
		sd.store.Close()
	}
}
