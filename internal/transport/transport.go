// Package transport defines the peer transport boundary and an in-process
// mesh used for simulation and tests.
//
// The transport promises nothing: no delivery guarantee, no ordering across
// peers or calls, and no deduplication. Receivers must tolerate all three.
package transport

import (
	"errors"

	"github.com/roach88/airdraw/internal/model"
)

// ErrClosed is returned when broadcasting on an endpoint that has left the mesh.
var ErrClosed = errors.New("transport closed")

// Transport sends payloads to every connected peer.
type Transport interface {
	// Broadcast hands payload to the transport for all connected peers.
	// It never waits for acknowledgement.
	Broadcast(payload []byte) error

	// Peers returns the currently connected peers.
	Peers() []model.Peer
}

// ReceiveFunc is called for each payload delivered from a peer. It may be
// called zero or more times per sent payload, from any goroutine.
type ReceiveFunc func(payload []byte, from model.Peer)
