package codec

import (
	"errors"
	"fmt"
)

// ErrDecode is the sentinel wrapped by every DecodeError.
var ErrDecode = errors.New("decode error")

// DecodeError reports a payload that could not be decoded.
// It is recovered locally: the payload is dropped and never surfaced to the user.
type DecodeError struct {
	// Record names what was being decoded ("envelope", "stroke", "snapshot").
	Record string

	// Reason is a human-readable description.
	Reason string

	// Err is the underlying error, if any.
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Record, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Record, e.Reason)
}

// Unwrap exposes both ErrDecode and the underlying cause to errors.Is.
func (e *DecodeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDecode, e.Err}
	}
	return []error{ErrDecode}
}

// IsDecodeError returns true if err is (or wraps) a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

func decodeErr(record, reason string, err error) *DecodeError {
	return &DecodeError{Record: record, Reason: reason, Err: err}
}
