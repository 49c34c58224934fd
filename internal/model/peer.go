package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Peer identifies a connected device. Owned by the transport.
type Peer struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// NewPeer creates a peer with an NFC-normalized display name.
// Names arrive from different platforms; normalizing keeps joins and
// comparisons stable regardless of how the name was composed.
func NewPeer(id, displayName string) Peer {
	name := norm.NFC.String(strings.TrimSpace(displayName))
	if name == "" {
		name = id
	}
	return Peer{ID: id, DisplayName: name}
}

// IsZero reports whether the peer is unset.
func (p Peer) IsZero() bool {
	return p.ID == ""
}

// JoinNames returns the display names joined with ", ".
func JoinNames(peers []Peer) string {
	names := make([]string, len(peers))
	for i, p := range peers {
		names[i] = p.DisplayName
	}
	return strings.Join(names, ", ")
}
