package testutil

import (
	"sync"

	"github.com/roach88/airdraw/internal/model"
)

// RecordingTransport records every broadcast instead of sending it.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type RecordingTransport struct {
	mu    sync.Mutex
	peers []model.Peer
	sent  [][]byte
	err   error
}

// NewRecordingTransport creates a transport connected to peers.
func NewRecordingTransport(peers ...model.Peer) *RecordingTransport {
	return &RecordingTransport{peers: peers}
}

// Broadcast records a copy of payload, or returns the configured failure.
// A failed broadcast is not recorded.
func (t *RecordingTransport) Broadcast(payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.sent = append(t.sent, append([]byte(nil), payload...))
	return nil
}

// Peers returns the configured peers.
func (t *RecordingTransport) Peers() []model.Peer {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.Peer, len(t.peers))
	copy(out, t.peers)
	return out
}

// SetPeers replaces the connected peers.
func (t *RecordingTransport) SetPeers(peers ...model.Peer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peers = peers
}

// FailWith makes every later Broadcast return err. Pass nil to recover.
func (t *RecordingTransport) FailWith(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.err = err
}

// Sent returns the recorded payloads in broadcast order.
func (t *RecordingTransport) Sent() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([][]byte, len(t.sent))
	copy(out, t.sent)
	return out
}
