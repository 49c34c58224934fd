package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/airdraw/internal/codec"
	"github.com/roach88/airdraw/internal/model"
	"github.com/roach88/airdraw/internal/store"
	"github.com/roach88/airdraw/internal/tracker"
	"github.com/roach88/airdraw/internal/transport"
)

// Renderer displays the stroke set. Calls are made with the engine lock held,
// in seq order, so a renderer must not call back into the engine.
type Renderer interface {
	AddStroke(a model.Anchor)
	Reset()
}

type nopRenderer struct{}

func (nopRenderer) AddStroke(model.Anchor) {}
func (nopRenderer) Reset()                 {}

// Journal persists the stroke set so a restarted device can restore it.
// Implemented by *store.Store.
type Journal interface {
	AppendAnchor(ctx context.Context, a model.Anchor) error
	ReplaceAnchors(ctx context.Context, anchors []model.Anchor, provider model.Peer, mapID string) error
	ResetSession(ctx context.Context, sessionID string) error
	WriteReceiveEvent(ctx context.Context, ev store.ReceiveEvent) error
	ReadAnchors(ctx context.Context) ([]model.Anchor, error)
	ReadSession(ctx context.Context) (store.SessionRecord, error)
	MaxSeq(ctx context.Context) (int64, error)
}

var _ Journal = (*store.Store)(nil)

// Stats counts what the engine has applied since it was created.
type Stats struct {
	LocalStrokes      int `json:"local_strokes"`
	RemoteStrokes     int `json:"remote_strokes"`
	SnapshotsAdopted  int `json:"snapshots_adopted"`
	Unrecognized      int `json:"unrecognized"`
	BroadcastFailures int `json:"broadcast_failures"`
}

// Engine replicates the stroke set between this device and its peers.
//
// Thread-safety model:
//   - ApplyLocalStroke, OnBytesReceived, ExportSnapshot and accessors: safe
//     from any goroutine
//   - Receive: safe from any goroutine (queues for Run)
//   - Run: must be called from exactly one goroutine
//
// INVARIANTS:
//   - anchors is in seq order
//   - provider is zero until a snapshot is adopted
//   - the journal is written before in-memory state changes
//   - the tracker is resumed from the map whose strokes are in the set
//
// Lock order: adoptMu before mu. adoptMu is held across tracker calls that
// must agree with the stroke set (Resume on adoption, CaptureMap on export).
type Engine struct {
	adoptMu sync.Mutex
	mu      sync.Mutex

	anchors   []model.Anchor
	provider  model.Peer
	sessionID string
	stats     Stats
	clock     *Clock

	transport transport.Transport
	tracker   tracker.Tracker
	renderer  Renderer
	journal   Journal
	ids       SessionIDGenerator
	log       *slog.Logger
	inbox     *inbox
}

// EngineOption allows configuration of engine collaborators.
type EngineOption func(*Engine)

// WithRenderer sets the renderer notified of stroke set changes.
func WithRenderer(r Renderer) EngineOption {
	return func(e *Engine) {
		e.renderer = r
	}
}

// WithJournal persists every change to j.
func WithJournal(j Journal) EngineOption {
	return func(e *Engine) {
		e.journal = j
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// WithSessionIDs sets the session id generator. Default: UUIDv7Generator.
func WithSessionIDs(g SessionIDGenerator) EngineOption {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithClock starts the engine from a pre-configured clock.
func WithClock(c *Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// New creates an Engine that broadcasts on t and resumes tr when a snapshot
// is adopted. Both are required.
func New(t transport.Transport, tr tracker.Tracker, opts ...EngineOption) *Engine {
	e := &Engine{
		anchors:   []model.Anchor{},
		clock:     NewClock(),
		transport: t,
		tracker:   tr,
		renderer:  nopRenderer{},
		ids:       UUIDv7Generator{},
		log:       slog.Default(),
		inbox:     newInbox(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// ApplyLocalStroke adds a stroke generated on this device and broadcasts it.
//
// The stroke is applied locally before it is sent. If the broadcast fails the
// anchor stays and a *BroadcastError is returned; delivery is not retried.
func (e *Engine) ApplyLocalStroke(ctx context.Context, s model.Stroke) error {
	payload, err := codec.EncodeStroke(s)
	if err != nil {
		return fmt.Errorf("apply local stroke: %w", err)
	}

	a, err := e.appendAnchor(ctx, model.Anchor{Origin: model.OriginLocal, Stroke: s})
	if err != nil {
		return fmt.Errorf("apply local stroke: %w", err)
	}

	if err := e.transport.Broadcast(payload); err != nil {
		e.mu.Lock()
		e.stats.BroadcastFailures++
		e.mu.Unlock()
		e.log.Warn("stroke broadcast failed",
			"seq", a.Seq,
			"error", err,
		)
		return &BroadcastError{Kind: "stroke", Seq: a.Seq, Err: err}
	}

	e.log.Debug("stroke broadcast",
		"seq", a.Seq,
		"bytes", len(payload),
	)
	return nil
}

// appendAnchor stamps a with the next seq, journals it, adds it to the set
// and renders it. It waits for an adoption in progress to finish resuming
// the tracker.
func (e *Engine) appendAnchor(ctx context.Context, a model.Anchor) (model.Anchor, error) {
	e.adoptMu.Lock()
	defer e.adoptMu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()

	a.Seq = e.clock.Next()
	if e.journal != nil {
		if err := e.journal.AppendAnchor(ctx, a); err != nil {
			return model.Anchor{}, fmt.Errorf("journal anchor %d: %w", a.Seq, err)
		}
	}

	e.anchors = append(e.anchors, a)
	switch a.Origin {
	case model.OriginLocal:
		e.stats.LocalStrokes++
	case model.OriginRemote:
		e.stats.RemoteStrokes++
	}
	e.renderer.AddStroke(a)
	return a, nil
}

// StartLocalSession discards the stroke set and map provider and starts a
// fresh session under a new id.
func (e *Engine) StartLocalSession(ctx context.Context) error {
	id := e.ids.Generate()

	e.adoptMu.Lock()
	defer e.adoptMu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.journal != nil {
		if err := e.journal.ResetSession(ctx, id); err != nil {
			return fmt.Errorf("start local session: %w", err)
		}
	}

	discarded := len(e.anchors)
	e.anchors = []model.Anchor{}
	e.provider = model.Peer{}
	e.sessionID = id
	e.renderer.Reset()

	e.log.Info("local session started",
		"session_id", id,
		"discarded", discarded,
	)
	return nil
}

// Restore reloads the stroke set and map provider from the journal and
// resumes the clock after the highest journaled seq. Without a journal it
// does nothing.
func (e *Engine) Restore(ctx context.Context) error {
	if e.journal == nil {
		return nil
	}

	e.adoptMu.Lock()
	defer e.adoptMu.Unlock()

	anchors, err := e.journal.ReadAnchors(ctx)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	sess, err := e.journal.ReadSession(ctx)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	maxSeq, err := e.journal.MaxSeq(ctx)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.anchors = anchors
	e.provider = sess.MapProvider
	e.sessionID = sess.SessionID
	e.clock.Observe(maxSeq)
	e.renderer.Reset()
	for _, a := range anchors {
		e.renderer.AddStroke(a)
	}

	e.log.Info("stroke set restored",
		"session_id", sess.SessionID,
		"anchors", len(anchors),
		"seq", maxSeq,
	)
	return nil
}

// Anchors returns a copy of the stroke set in seq order.
func (e *Engine) Anchors() []model.Anchor {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Anchor, len(e.anchors))
	copy(out, e.anchors)
	return out
}

// Strokes returns the strokes of the stroke set in seq order.
func (e *Engine) Strokes() []model.Stroke {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]model.Stroke, len(e.anchors))
	for i, a := range e.anchors {
		out[i] = a.Stroke
	}
	return out
}

// AnchorCount returns the size of the stroke set.
func (e *Engine) AnchorCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.anchors)
}

// MapProvider returns the peer whose snapshot was last adopted.
func (e *Engine) MapProvider() (model.Peer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.provider, !e.provider.IsZero()
}

// SessionID returns the id of the current local session, or "" if none was
// started or restored.
func (e *Engine) SessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessionID
}

// Stats returns a copy of the engine counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Seq returns the logical clock position.
func (e *Engine) Seq() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clock.Current()
}
