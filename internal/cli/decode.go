package cli

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/airdraw/internal/codec"
	"github.com/roach88/airdraw/internal/config"
	"github.com/roach88/airdraw/internal/geom"
	"github.com/roach88/airdraw/internal/model"
)

// DecodeOptions holds flags for the decode command.
type DecodeOptions struct {
	*RootOptions
	Hex bool // input is hex text rather than raw bytes
}

// StrokeView is the printable form of a decoded stroke.
type StrokeView struct {
	Name     string         `json:"name"`
	Length   float64        `json:"length"`
	Color    model.Color    `json:"color"`
	Midpoint geom.Vec3      `json:"midpoint"`
	Axis     geom.Vec3      `json:"axis"`
	Shape    model.Cylinder `json:"shape"`
	Hash     string         `json:"hash"`
}

// DecodeResult describes one payload.
type DecodeResult struct {
	Kind     string       `json:"kind"`
	Bytes    int          `json:"bytes"`
	MapID    string       `json:"map_id,omitempty"`
	Features int          `json:"features,omitempty"`
	Strokes  []StrokeView `json:"strokes"`
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DecodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "decode <payload-file>",
		Short: "Decode a captured payload",
		Long: `Decode a stroke or snapshot payload captured off the wire.

Use "-" to read from stdin. With --hex the input is hex text, whitespace
ignored.

Exit codes:
  0 - Payload decoded
  1 - Payload is not a recognized stroke or snapshot
  2 - Command error (file not found, bad hex)

Examples:
  airdraw decode ./capture.bin
  xxd -p capture.bin | airdraw decode --hex -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Hex, "hex", false, "input is hex-encoded")

	return cmd
}

func runDecode(opts *DecodeOptions, path string, cmd *cobra.Command) error {
	data, err := readPayload(path, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read payload", err)
	}
	if opts.Hex {
		clean := strings.Join(strings.Fields(string(data)), "")
		if data, err = hex.DecodeString(clean); err != nil {
			return WrapExitError(ExitCommandError, "invalid hex input", err)
		}
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	f := opts.formatter(cmd)
	p, err := codec.Decode(data)
	if err != nil {
		if outErr := f.Error("E_DECODE", err.Error(), map[string]int{"bytes": len(data)}); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "payload not recognized", err)
	}

	result := DecodeResult{
		Kind:    p.Kind.String(),
		Bytes:   len(data),
		Strokes: []StrokeView{},
	}
	switch p.Kind {
	case codec.KindStroke:
		sv, err := viewStroke(p.Stroke, cfg)
		if err != nil {
			return WrapExitError(ExitFailure, "stroke does not re-encode", err)
		}
		result.Strokes = append(result.Strokes, sv)
	case codec.KindSnapshot:
		result.MapID = p.Snapshot.ID
		result.Features = len(p.Snapshot.Features)
		for _, s := range p.Snapshot.Strokes {
			sv, err := viewStroke(s, cfg)
			if err != nil {
				return WrapExitError(ExitFailure, "stroke does not re-encode", err)
			}
			result.Strokes = append(result.Strokes, sv)
		}
	}

	return f.Success(result, func(w io.Writer) {
		fmt.Fprintf(w, "%s payload, %d bytes\n", result.Kind, result.Bytes)
		if result.MapID != "" {
			fmt.Fprintf(w, "map %s, %d feature bytes, %d strokes\n", result.MapID, result.Features, len(result.Strokes))
		}
		for i, sv := range result.Strokes {
			fmt.Fprintf(w, "  [%d] %s mid=(%g, %g, %g) r=%g segments=%d %s\n", i, sv.Name,
				sv.Midpoint.X, sv.Midpoint.Y, sv.Midpoint.Z, sv.Shape.Radius, sv.Shape.RadialSegments, sv.Hash[:12])
		}
	})
}

func readPayload(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func viewStroke(s model.Stroke, cfg config.Config) (StrokeView, error) {
	record, err := codec.EncodeStroke(s)
	if err != nil {
		return StrokeView{}, err
	}
	return StrokeView{
		Name:     codec.StrokeName(s.Length, s.Color),
		Length:   s.Length,
		Color:    s.Color,
		Midpoint: s.Midpoint(),
		Axis:     s.Axis(),
		Shape:    cfg.Shape(s),
		Hash:     model.StrokeHash(record),
	}, nil
}
