// Package config loads device configuration from CUE files.
//
// The schema in schema.cue is unified with the user's file, so every field
// is validated against its constraint and absent fields take their default.
// Unknown fields are rejected because #Config is a closed definition.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/airdraw/internal/model"
)

//go:embed schema.cue
var schemaCUE string

// Config is the resolved device configuration.
type Config struct {
	DeviceName      string      `json:"device_name"`
	Journal         string      `json:"journal"`
	DrawingDistance float64     `json:"drawing_distance"`
	StrokeWidth     float64     `json:"stroke_width"`
	RadialSegments  int         `json:"radial_segments"`
	DefaultColor    model.Color `json:"default_color"`
}

// Error reports an invalid configuration value.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Default returns the schema defaults.
func Default() Config {
	cfg, err := Parse(nil, "defaults.cue")
	if err != nil {
		// The embedded schema is fixed; failing here is a build defect.
		panic(fmt.Sprintf("config: invalid embedded schema: %v", err))
	}
	return cfg
}

// Shape returns the cylinder a stroke is rendered as under this config.
func (c Config) Shape(s model.Stroke) model.Cylinder {
	return s.Shape(c.StrokeWidth, c.RadialSegments)
}

// Load reads and validates the config file at path. An empty path returns
// the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(src, path)
}

// Parse validates src against the schema. filename is used in error
// positions.
func Parse(src []byte, filename string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, formatCUEError(err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	user := ctx.CompileBytes(src, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return Config{}, formatCUEError(err)
	}

	v := def.Unify(user)
	if err := v.Validate(); err != nil {
		return Config{}, formatCUEError(err)
	}

	var cfg Config
	var err error
	if cfg.DeviceName, err = lookupString(v, "device_name"); err != nil {
		return Config{}, err
	}
	if cfg.Journal, err = lookupString(v, "journal"); err != nil {
		return Config{}, err
	}
	if cfg.DrawingDistance, err = lookupFloat(v, "drawing_distance"); err != nil {
		return Config{}, err
	}
	if cfg.StrokeWidth, err = lookupFloat(v, "stroke_width"); err != nil {
		return Config{}, err
	}
	segments, err := v.LookupPath(cue.ParsePath("radial_segments")).Int64()
	if err != nil {
		return Config{}, formatCUEError(err)
	}
	cfg.RadialSegments = int(segments)

	channels := [4]*float64{&cfg.DefaultColor.R, &cfg.DefaultColor.G, &cfg.DefaultColor.B, &cfg.DefaultColor.A}
	for i, name := range []string{"r", "g", "b", "a"} {
		if *channels[i], err = lookupFloat(v, "default_color."+name); err != nil {
			return Config{}, err
		}
	}

	if cfg.DeviceName == "" {
		return Config{}, &Error{Field: "device_name", Message: "must not be empty", Pos: v.LookupPath(cue.ParsePath("device_name")).Pos()}
	}

	return cfg, nil
}

func lookupString(v cue.Value, path string) (string, error) {
	s, err := v.LookupPath(cue.ParsePath(path)).String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func lookupFloat(v cue.Value, path string) (float64, error) {
	f, err := v.LookupPath(cue.ParsePath(path)).Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return f, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	field := "cue"
	if path := first.Path(); len(path) > 0 {
		field = path[len(path)-1]
	}
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &Error{
			Field:   field,
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return &Error{Field: field, Message: first.Error()}
}
