package model

import (
	"fmt"
	"strings"
)

// TrackingState is the coarse tracking quality reported by the tracker.
type TrackingState int

const (
	TrackingNormal TrackingState = iota
	TrackingLimited
	TrackingUnavailable
)

func (s TrackingState) String() string {
	switch s {
	case TrackingNormal:
		return "normal"
	case TrackingLimited:
		return "limited"
	case TrackingUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// LimitedReason explains why tracking is limited.
type LimitedReason int

const (
	ReasonNone LimitedReason = iota
	ReasonInitializing
	ReasonRelocalizing
	ReasonExcessiveMotion
	ReasonInsufficientFeatures
)

func (r LimitedReason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonInitializing:
		return "initializing"
	case ReasonRelocalizing:
		return "relocalizing"
	case ReasonExcessiveMotion:
		return "excessive_motion"
	case ReasonInsufficientFeatures:
		return "insufficient_features"
	default:
		return "unknown"
	}
}

// TrackingQuality pairs a tracking state with its limitation reason.
// Reason is only meaningful when State is TrackingLimited.
type TrackingQuality struct {
	State  TrackingState
	Reason LimitedReason
}

// Normal returns a normal tracking quality.
func Normal() TrackingQuality {
	return TrackingQuality{State: TrackingNormal}
}

// Limited returns a limited tracking quality with the given reason.
func Limited(reason LimitedReason) TrackingQuality {
	return TrackingQuality{State: TrackingLimited, Reason: reason}
}

// Unavailable returns an unavailable tracking quality.
func Unavailable() TrackingQuality {
	return TrackingQuality{State: TrackingUnavailable}
}

func (q TrackingQuality) String() string {
	if q.State == TrackingLimited {
		return q.State.String() + "(" + q.Reason.String() + ")"
	}
	return q.State.String()
}

// ParseTrackingQuality parses the String form: "normal", "unavailable" or
// "limited(<reason>)". "limited:<reason>" is accepted too. Empty means normal.
func ParseTrackingQuality(s string) (TrackingQuality, error) {
	if s == "" {
		return Normal(), nil
	}
	if reason, ok := strings.CutPrefix(s, "limited:"); ok {
		s = "limited(" + reason + ")"
	}
	candidates := []TrackingQuality{
		Normal(),
		Unavailable(),
		Limited(ReasonInitializing),
		Limited(ReasonRelocalizing),
		Limited(ReasonExcessiveMotion),
		Limited(ReasonInsufficientFeatures),
	}
	for _, q := range candidates {
		if q.String() == s {
			return q, nil
		}
	}
	return TrackingQuality{}, fmt.Errorf("unknown tracking %q", s)
}

// MappingStatus is a coarse signal of how well the space has been scanned.
type MappingStatus int

const (
	MappingNotAvailable MappingStatus = iota
	MappingLimited
	MappingExtending
	MappingMapped
)

func (m MappingStatus) String() string {
	switch m {
	case MappingNotAvailable:
		return "not_available"
	case MappingLimited:
		return "limited"
	case MappingExtending:
		return "extending"
	case MappingMapped:
		return "mapped"
	default:
		return "unknown"
	}
}

// ParseMappingStatus parses the String form. Empty means not_available.
func ParseMappingStatus(s string) (MappingStatus, error) {
	if s == "" {
		return MappingNotAvailable, nil
	}
	for m := MappingNotAvailable; m <= MappingMapped; m++ {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mapping %q", s)
}

// SessionState is the per-frame input to status resolution.
type SessionState struct {
	Tracking    TrackingQuality
	Peers       []Peer
	MapProvider *Peer // Set only by snapshot adoption
	HasAnchors  bool
	Mapping     MappingStatus
}

// ConnectedPeerCount returns the number of connected peers.
func (s SessionState) ConnectedPeerCount() int {
	return len(s.Peers)
}
