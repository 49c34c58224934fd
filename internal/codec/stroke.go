package codec

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/roach88/airdraw/internal/geom"
	"github.com/roach88/airdraw/internal/model"
)

// Stroke record field numbers.
const (
	fieldStrokeName      protowire.Number = 1
	fieldStrokePlacement protowire.Number = 2
)

// placementLen is the number of float64 elements in a placement.
const placementLen = 16

// ErrInvalidStroke is returned when encoding a stroke that violates the
// stroke invariants (non-positive length, color outside [0,1], non-finite placement).
var ErrInvalidStroke = errors.New("invalid stroke")

// EncodeStroke encodes a stroke as a self-identifying payload.
func EncodeStroke(s model.Stroke) ([]byte, error) {
	rec, err := appendStrokeRecord(nil, s)
	if err != nil {
		return nil, err
	}
	return appendEnvelope(fieldStroke, rec), nil
}

// DecodeStroke decodes a payload that must contain a stroke.
func DecodeStroke(b []byte) (model.Stroke, error) {
	p, err := Decode(b)
	if err != nil {
		return model.Stroke{}, err
	}
	if p.Kind != KindStroke {
		return model.Stroke{}, decodeErr("stroke", "payload is a "+p.Kind.String(), nil)
	}
	return p.Stroke, nil
}

// StrokeName formats the stroke's length and color as "<length>=[<r>, <g>, <b>, <a>]".
func StrokeName(length float64, c model.Color) string {
	var sb strings.Builder
	sb.WriteString(formatFloat(length))
	sb.WriteString("=[")
	for i, ch := range [4]float64{c.R, c.G, c.B, c.A} {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(formatFloat(ch))
	}
	sb.WriteString("]")
	return sb.String()
}

// ParseStrokeName parses a name produced by StrokeName.
func ParseStrokeName(name string) (float64, model.Color, error) {
	lengthStr, colorStr, ok := strings.Cut(name, "=")
	if !ok {
		return 0, model.Color{}, fmt.Errorf("missing '=' in %q", name)
	}

	length, err := strconv.ParseFloat(strings.TrimSpace(lengthStr), 64)
	if err != nil {
		return 0, model.Color{}, fmt.Errorf("length: %w", err)
	}
	if !(length > 0) || math.IsInf(length, 0) {
		return 0, model.Color{}, fmt.Errorf("length %v must be positive and finite", length)
	}

	colorStr = strings.TrimSpace(colorStr)
	if !strings.HasPrefix(colorStr, "[") || !strings.HasSuffix(colorStr, "]") {
		return 0, model.Color{}, fmt.Errorf("color %q must be bracketed", colorStr)
	}
	parts := strings.Split(colorStr[1:len(colorStr)-1], ",")
	if len(parts) != 4 {
		return 0, model.Color{}, fmt.Errorf("color has %d channels, want 4", len(parts))
	}
	var ch [4]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return 0, model.Color{}, fmt.Errorf("color channel %d: %w", i, err)
		}
		ch[i] = v
	}
	c := model.Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}
	if !c.Valid() {
		return 0, model.Color{}, fmt.Errorf("color %v outside [0,1]", c)
	}

	return length, c, nil
}

func validateStroke(s model.Stroke) error {
	if !(s.Length > 0) || math.IsInf(s.Length, 0) {
		return fmt.Errorf("%w: length %v", ErrInvalidStroke, s.Length)
	}
	if !s.Color.Valid() {
		return fmt.Errorf("%w: color %v", ErrInvalidStroke, s.Color)
	}
	if !s.Placement.IsFinite() {
		return fmt.Errorf("%w: non-finite placement", ErrInvalidStroke)
	}
	return nil
}

func appendStrokeRecord(b []byte, s model.Stroke) ([]byte, error) {
	if err := validateStroke(s); err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, fieldStrokeName, protowire.BytesType)
	b = protowire.AppendString(b, StrokeName(s.Length, s.Color))
	for _, v := range s.Placement.Flatten() {
		b = protowire.AppendTag(b, fieldStrokePlacement, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(v))
	}
	return b, nil
}

func decodeStrokeRecord(b []byte) (model.Stroke, error) {
	var (
		name    string
		sawName bool
		flat    [placementLen]float64
		count   int
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return model.Stroke{}, decodeErr("stroke", "bad tag", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldStrokeName && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return model.Stroke{}, decodeErr("stroke", "truncated name", protowire.ParseError(n))
			}
			name, sawName = v, true
			b = b[n:]
		case num == fieldStrokePlacement && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return model.Stroke{}, decodeErr("stroke", "truncated placement", protowire.ParseError(n))
			}
			if count >= placementLen {
				return model.Stroke{}, decodeErr("stroke", "too many placement values", nil)
			}
			flat[count] = math.Float64frombits(v)
			count++
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return model.Stroke{}, decodeErr("stroke", "bad field", protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if !sawName {
		return model.Stroke{}, decodeErr("stroke", "missing name", nil)
	}
	if count != placementLen {
		return model.Stroke{}, decodeErr("stroke", fmt.Sprintf("placement has %d values, want %d", count, placementLen), nil)
	}

	length, color, err := ParseStrokeName(name)
	if err != nil {
		return model.Stroke{}, decodeErr("stroke", "bad name", err)
	}

	placement := geom.FromFlat(flat)
	if !placement.IsFinite() {
		return model.Stroke{}, decodeErr("stroke", "non-finite placement", nil)
	}

	return model.Stroke{Length: length, Color: color, Placement: placement}, nil
}

// formatFloat uses the shortest decimal form that round-trips exactly.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
