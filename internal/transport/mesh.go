package transport

import (
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/roach88/airdraw/internal/model"
)

// Mesh is an in-process hub connecting endpoints. Every broadcast is fanned
// out to all other joined endpoints.
//
// Delivery is synchronous on the broadcasting goroutine unless Async is set.
// Options let tests reproduce the transport's weak guarantees: duplicated
// delivery, dropped messages and shuffled fan-out order.
type Mesh struct {
	mu        sync.Mutex
	endpoints map[string]*Endpoint
	order     []string // Join order, for deterministic fan-out
	rng       *rand.Rand
	sent      int
	log       *slog.Logger

	duplicates int
	dropEvery  int
	shuffle    bool
	async      bool
	wg         sync.WaitGroup
}

// MeshOption configures a Mesh.
type MeshOption func(*Mesh)

// WithDuplicates delivers every payload n extra times to each receiver.
func WithDuplicates(n int) MeshOption {
	return func(m *Mesh) {
		m.duplicates = n
	}
}

// WithDropEvery silently drops every nth broadcast (counting from 1).
func WithDropEvery(n int) MeshOption {
	return func(m *Mesh) {
		m.dropEvery = n
	}
}

// WithShuffle randomizes fan-out order using a seeded source.
func WithShuffle(seed uint64) MeshOption {
	return func(m *Mesh) {
		m.shuffle = true
		m.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithAsync delivers each payload on its own goroutine. Use Wait to drain.
func WithAsync() MeshOption {
	return func(m *Mesh) {
		m.async = true
	}
}

// WithLogger sets the mesh logger.
func WithLogger(l *slog.Logger) MeshOption {
	return func(m *Mesh) {
		m.log = l
	}
}

// NewMesh creates an empty mesh.
func NewMesh(opts ...MeshOption) *Mesh {
	m := &Mesh{
		endpoints: make(map[string]*Endpoint),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Join connects a peer. Joining with an ID already present replaces the
// previous endpoint, which is closed.
func (m *Mesh) Join(peer model.Peer, onReceive ReceiveFunc) *Endpoint {
	ep := &Endpoint{mesh: m, peer: peer, onReceive: onReceive}

	m.mu.Lock()
	if old, ok := m.endpoints[peer.ID]; ok {
		old.closed = true
	} else {
		m.order = append(m.order, peer.ID)
	}
	m.endpoints[peer.ID] = ep
	m.mu.Unlock()

	m.log.Debug("peer joined", "peer_id", peer.ID, "name", peer.DisplayName)
	return ep
}

// Wait blocks until all asynchronous deliveries have completed.
func (m *Mesh) Wait() {
	m.wg.Wait()
}

// Sent returns the number of broadcasts attempted on the mesh.
func (m *Mesh) Sent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent
}

func (m *Mesh) leave(ep *Endpoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.endpoints[ep.peer.ID]; ok && cur == ep {
		delete(m.endpoints, ep.peer.ID)
		for i, id := range m.order {
			if id == ep.peer.ID {
				m.order = append(m.order[:i], m.order[i+1:]...)
				break
			}
		}
	}
	ep.closed = true
}

func (m *Mesh) rejoin(ep *Endpoint) {
	m.mu.Lock()
	if !ep.closed {
		m.mu.Unlock()
		return
	}
	if old, ok := m.endpoints[ep.peer.ID]; ok {
		old.closed = true
	} else {
		m.order = append(m.order, ep.peer.ID)
	}
	m.endpoints[ep.peer.ID] = ep
	ep.closed = false
	m.mu.Unlock()

	m.log.Debug("peer rejoined", "peer_id", ep.peer.ID)
}

// peersOf returns the peers connected to ep, sorted by display name then ID.
// A closed endpoint has no peers.
func (m *Mesh) peersOf(ep *Endpoint) []model.Peer {
	m.mu.Lock()
	defer m.mu.Unlock()
	peers := make([]model.Peer, 0, len(m.endpoints))
	if ep.closed {
		return peers
	}
	for _, id := range m.order {
		if id != ep.peer.ID {
			peers = append(peers, m.endpoints[id].peer)
		}
	}
	sort.SliceStable(peers, func(i, j int) bool {
		if peers[i].DisplayName != peers[j].DisplayName {
			return peers[i].DisplayName < peers[j].DisplayName
		}
		return peers[i].ID < peers[j].ID
	})
	return peers
}

func (m *Mesh) broadcast(from *Endpoint, payload []byte) error {
	m.mu.Lock()
	if from.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	m.sent++
	if m.dropEvery > 0 && m.sent%m.dropEvery == 0 {
		m.mu.Unlock()
		m.log.Debug("broadcast dropped", "peer_id", from.peer.ID, "bytes", len(payload))
		return nil
	}
	targets := make([]*Endpoint, 0, len(m.order))
	for _, id := range m.order {
		if id != from.peer.ID {
			targets = append(targets, m.endpoints[id])
		}
	}
	if m.shuffle {
		m.rng.Shuffle(len(targets), func(i, j int) {
			targets[i], targets[j] = targets[j], targets[i]
		})
	}
	copies := 1 + m.duplicates
	m.mu.Unlock()

	// Receivers must not share the sender's buffer.
	data := append([]byte(nil), payload...)
	for _, to := range targets {
		for i := 0; i < copies; i++ {
			if m.async {
				m.wg.Add(1)
				go func(to *Endpoint) {
					defer m.wg.Done()
					to.deliver(data, from.peer)
				}(to)
				continue
			}
			to.deliver(data, from.peer)
		}
	}
	return nil
}

// Endpoint is one peer's connection to a Mesh. It implements Transport.
type Endpoint struct {
	mesh      *Mesh
	peer      model.Peer
	onReceive ReceiveFunc
	closed    bool // Guarded by mesh.mu
}

var _ Transport = (*Endpoint)(nil)

// Peer returns the local peer.
func (e *Endpoint) Peer() model.Peer {
	return e.peer
}

// Broadcast sends payload to every other endpoint on the mesh.
func (e *Endpoint) Broadcast(payload []byte) error {
	return e.mesh.broadcast(e, payload)
}

// Peers returns the other endpoints currently on the mesh.
func (e *Endpoint) Peers() []model.Peer {
	return e.mesh.peersOf(e)
}

// Leave disconnects the endpoint. Subsequent broadcasts fail with ErrClosed.
func (e *Endpoint) Leave() {
	e.mesh.leave(e)
}

// Rejoin reconnects an endpoint after Leave, keeping its receive callback.
func (e *Endpoint) Rejoin() {
	e.mesh.rejoin(e)
}

func (e *Endpoint) deliver(payload []byte, from model.Peer) {
	if e.onReceive == nil {
		return
	}
	e.onReceive(payload, from)
}
