package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/roach88/airdraw/internal/model"
)

// Snapshot record field numbers.
const (
	fieldMapID       protowire.Number = 1
	fieldMapFeatures protowire.Number = 2
	fieldMapStroke   protowire.Number = 3
)

// EncodeSnapshot encodes a full spatial map as a self-identifying payload.
func EncodeSnapshot(m model.WorldMap) ([]byte, error) {
	var rec []byte
	rec = protowire.AppendTag(rec, fieldMapID, protowire.BytesType)
	rec = protowire.AppendString(rec, m.ID)
	if len(m.Features) > 0 {
		rec = protowire.AppendTag(rec, fieldMapFeatures, protowire.BytesType)
		rec = protowire.AppendBytes(rec, m.Features)
	}
	for i, s := range m.Strokes {
		sr, err := appendStrokeRecord(nil, s)
		if err != nil {
			return nil, fmt.Errorf("encode snapshot: stroke %d: %w", i, err)
		}
		rec = protowire.AppendTag(rec, fieldMapStroke, protowire.BytesType)
		rec = protowire.AppendBytes(rec, sr)
	}
	return appendEnvelope(fieldSnapshot, rec), nil
}

// DecodeSnapshot decodes a payload that must contain a snapshot.
func DecodeSnapshot(b []byte) (model.WorldMap, error) {
	p, err := Decode(b)
	if err != nil {
		return model.WorldMap{}, err
	}
	if p.Kind != KindSnapshot {
		return model.WorldMap{}, decodeErr("snapshot", "payload is a "+p.Kind.String(), nil)
	}
	return p.Snapshot, nil
}

func decodeSnapshotRecord(b []byte) (model.WorldMap, error) {
	m := model.WorldMap{Strokes: []model.Stroke{}}
	sawID := false
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return model.WorldMap{}, decodeErr("snapshot", "bad tag", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldMapID && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return model.WorldMap{}, decodeErr("snapshot", "truncated id", protowire.ParseError(n))
			}
			m.ID, sawID = v, true
			b = b[n:]
		case num == fieldMapFeatures && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return model.WorldMap{}, decodeErr("snapshot", "truncated features", protowire.ParseError(n))
			}
			m.Features = append([]byte(nil), v...)
			b = b[n:]
		case num == fieldMapStroke && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return model.WorldMap{}, decodeErr("snapshot", "truncated stroke", protowire.ParseError(n))
			}
			s, err := decodeStrokeRecord(v)
			if err != nil {
				return model.WorldMap{}, decodeErr("snapshot", fmt.Sprintf("stroke %d", len(m.Strokes)), err)
			}
			m.Strokes = append(m.Strokes, s)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return model.WorldMap{}, decodeErr("snapshot", "bad field", protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if !sawID {
		return model.WorldMap{}, decodeErr("snapshot", "missing map id", nil)
	}
	return m, nil
}
