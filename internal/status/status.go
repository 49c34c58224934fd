// Package status derives the human-facing session message and the export
// gate from the per-frame session state.
package status

import (
	"github.com/roach88/airdraw/internal/model"
)

// Messages shown in the session banner.
const (
	MsgMapEnvironment       = "move around to map the environment, or wait to join a shared session."
	MsgTrackingUnavailable  = "tracking unavailable."
	MsgExcessiveMotion      = "move the device more slowly."
	MsgInsufficientFeatures = "point the device at an area with visible surface detail, or improve lighting."
	MsgRelocalizing         = "resuming session — move to where you were when interrupted."
	MsgInitializing         = "initializing AR session."
)

// Report is the resolved status for one frame.
type Report struct {
	Message       string `json:"message"`
	ShowBanner    bool   `json:"show_banner"`
	ExportEnabled bool   `json:"export_enabled"`
}

// Evaluate resolves the message and export gate together.
func Evaluate(s model.SessionState) Report {
	msg := Resolve(s)
	return Report{
		Message:       msg,
		ShowBanner:    msg != "",
		ExportEnabled: ExportEnabled(s),
	}
}

// Resolve returns the banner message for s. First match wins; the order
// matters because a NORMAL rule never matches a LIMITED state.
func Resolve(s model.SessionState) string {
	q := s.Tracking
	provider := s.MapProvider != nil

	switch {
	case q.State == model.TrackingNormal && !s.HasAnchors && len(s.Peers) == 0:
		return MsgMapEnvironment

	case q.State == model.TrackingNormal && len(s.Peers) > 0 && !provider:
		return "connected with " + model.JoinNames(s.Peers) + "."

	case q.State == model.TrackingUnavailable:
		return MsgTrackingUnavailable

	case isLimited(q, model.ReasonExcessiveMotion):
		return MsgExcessiveMotion

	case isLimited(q, model.ReasonInsufficientFeatures):
		return MsgInsufficientFeatures

	case provider && (isLimited(q, model.ReasonInitializing) || isLimited(q, model.ReasonRelocalizing)):
		return "received map from " + s.MapProvider.DisplayName + "."

	case isLimited(q, model.ReasonRelocalizing):
		return MsgRelocalizing

	case isLimited(q, model.ReasonInitializing):
		return MsgInitializing

	default:
		// Normal tracking with content visible needs no banner.
		return ""
	}
}

// ExportEnabled reports whether the share-map control is enabled: the map
// must be extending or mapped and at least one peer must be connected.
func ExportEnabled(s model.SessionState) bool {
	switch s.Mapping {
	case model.MappingExtending, model.MappingMapped:
		return len(s.Peers) > 0
	default:
		return false
	}
}

func isLimited(q model.TrackingQuality, reason model.LimitedReason) bool {
	return q.State == model.TrackingLimited && q.Reason == reason
}
