package engine

import (
	"errors"
	"fmt"
)

// ErrSnapshotUnavailable is returned when the tracker cannot capture its map.
// Match with errors.Is; the cause is available through errors.As or Unwrap.
var ErrSnapshotUnavailable = errors.New("snapshot unavailable")

// SnapshotUnavailableError reports why a snapshot could not be exported.
// No bytes are produced when this error is returned.
type SnapshotUnavailableError struct {
	// Stage is where export failed: "capture" or "encode".
	Stage string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *SnapshotUnavailableError) Error() string {
	return fmt.Sprintf("snapshot unavailable (%s): %v", e.Stage, e.Err)
}

// Unwrap exposes both the sentinel and the cause.
func (e *SnapshotUnavailableError) Unwrap() []error {
	return []error{ErrSnapshotUnavailable, e.Err}
}

// IsSnapshotUnavailable returns true if err is or wraps a snapshot export failure.
func IsSnapshotUnavailable(err error) bool {
	return errors.Is(err, ErrSnapshotUnavailable)
}

// BroadcastError reports a stroke or snapshot that was applied locally but
// could not be handed to the transport. The local state is unchanged by the
// failure; delivery is not retried.
type BroadcastError struct {
	Kind string // "stroke" or "snapshot"
	Seq  int64  // Anchor seq for strokes, 0 for snapshots
	Err  error
}

// Error implements the error interface.
func (e *BroadcastError) Error() string {
	if e.Seq > 0 {
		return fmt.Sprintf("broadcast %s %d: %v", e.Kind, e.Seq, e.Err)
	}
	return fmt.Sprintf("broadcast %s: %v", e.Kind, e.Err)
}

// Unwrap returns the transport error.
func (e *BroadcastError) Unwrap() error {
	return e.Err
}

// IsBroadcastError returns true if the error is a broadcast failure.
// Uses errors.As to handle wrapped errors.
func IsBroadcastError(err error) bool {
	var be *BroadcastError
	return errors.As(err, &be)
}
