package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/roach88/airdraw/internal/model"
)

// Version is the envelope version written by this package.
const Version = 1

// Envelope field numbers.
const (
	fieldVersion  protowire.Number = 1
	fieldStroke   protowire.Number = 2
	fieldSnapshot protowire.Number = 3
)

// Kind distinguishes the decoded payload variants.
type Kind int

const (
	// KindUnknown is never returned with a nil error.
	KindUnknown Kind = iota
	KindStroke
	KindSnapshot
)

func (k Kind) String() string {
	switch k {
	case KindStroke:
		return "stroke"
	case KindSnapshot:
		return "snapshot"
	default:
		return "unknown"
	}
}

// Payload is a decoded payload. Exactly one of Stroke or Snapshot is
// meaningful, selected by Kind.
type Payload struct {
	Kind     Kind
	Stroke   model.Stroke
	Snapshot model.WorldMap
}

// Decode decodes a payload once into its tagged variant.
//
// Callers match on Kind instead of probing with repeated decode attempts.
func Decode(b []byte) (Payload, error) {
	if len(b) == 0 {
		return Payload{}, decodeErr("envelope", "empty payload", nil)
	}

	var (
		version uint64
		sawVer  bool
		kind    Kind
		body    []byte
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Payload{}, decodeErr("envelope", "bad tag", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Payload{}, decodeErr("envelope", "bad version", protowire.ParseError(n))
			}
			version, sawVer = v, true
			b = b[n:]
		case (num == fieldStroke || num == fieldSnapshot) && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Payload{}, decodeErr("envelope", "truncated body", protowire.ParseError(n))
			}
			if kind != KindUnknown {
				return Payload{}, decodeErr("envelope", "more than one body", nil)
			}
			kind, body = KindStroke, v
			if num == fieldSnapshot {
				kind = KindSnapshot
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Payload{}, decodeErr("envelope", "bad field", protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if !sawVer {
		return Payload{}, decodeErr("envelope", "missing version", nil)
	}
	if version != Version {
		return Payload{}, decodeErr("envelope", fmt.Sprintf("unsupported version %d", version), nil)
	}

	switch kind {
	case KindStroke:
		s, err := decodeStrokeRecord(body)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Kind: KindStroke, Stroke: s}, nil
	case KindSnapshot:
		m, err := decodeSnapshotRecord(body)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Kind: KindSnapshot, Snapshot: m}, nil
	default:
		return Payload{}, decodeErr("envelope", "no recognized body", nil)
	}
}

func appendEnvelope(field protowire.Number, body []byte) []byte {
	b := make([]byte, 0, len(body)+8)
	b = protowire.AppendTag(b, fieldVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, Version)
	b = protowire.AppendTag(b, field, protowire.BytesType)
	b = protowire.AppendBytes(b, body)
	return b
}
