package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/airdraw/internal/model"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "airdraw", cfg.DeviceName)
	assert.Equal(t, "", cfg.Journal)
	assert.Equal(t, 0.2, cfg.DrawingDistance)
	assert.Equal(t, 0.002, cfg.StrokeWidth)
	assert.Equal(t, 7, cfg.RadialSegments)
	assert.Equal(t, model.Red, cfg.DefaultColor)
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Overrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.cue")
	src := `
device_name:      "Alice's phone"
journal:          "/tmp/alice.db"
drawing_distance: 0.35
radial_segments:  12
default_color: {g: 0.5, r: 0}
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Alice's phone", cfg.DeviceName)
	assert.Equal(t, "/tmp/alice.db", cfg.Journal)
	assert.Equal(t, 0.35, cfg.DrawingDistance)
	assert.Equal(t, 0.002, cfg.StrokeWidth)
	assert.Equal(t, 12, cfg.RadialSegments)
	assert.Equal(t, model.Color{R: 0, G: 0.5, B: 0, A: 1}, cfg.DefaultColor)
}

func TestParse_IntegerDistance(t *testing.T) {
	cfg, err := Parse([]byte(`drawing_distance: 1`), "int.cue")
	require.NoError(t, err)
	assert.Equal(t, 1.0, cfg.DrawingDistance)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"negative distance", `drawing_distance: -0.1`},
		{"zero width", `stroke_width: 0`},
		{"too few segments", `radial_segments: 2`},
		{"fractional segments", `radial_segments: 7.5`},
		{"color out of range", `default_color: r: 1.5`},
		{"unknown field", `draw_distance: 0.3`},
		{"wrong type", `device_name: 42`},
		{"empty name", `device_name: ""`},
		{"syntax", `drawing_distance: `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.cue")
			require.Error(t, err)

			var cfgErr *Error
			assert.True(t, errors.As(err, &cfgErr), "want *config.Error, got %T", err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestConfig_Shape(t *testing.T) {
	cfg, err := Parse([]byte("stroke_width: 0.005\nradial_segments: 12\n"), "airdraw.cue")
	require.NoError(t, err)

	shape := cfg.Shape(model.Stroke{Length: 0.25})
	assert.Equal(t, model.Cylinder{Radius: 0.005, Height: 0.25, RadialSegments: 12}, shape)
}
