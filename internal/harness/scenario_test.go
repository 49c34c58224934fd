package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/airdraw/internal/model"
)

const minimalScenario = `
name: minimal
description: one device, one frame
devices:
  - id: alice
steps:
  - device: alice
    frames:
      - position: [0, 0, 0]
`

func TestParseScenario_Minimal(t *testing.T) {
	s, err := ParseScenario([]byte(minimalScenario))
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	require.Len(t, s.Devices, 1)
	assert.Equal(t, "alice", s.Devices[0].ID)
	require.Len(t, s.Steps, 1)
	require.Len(t, s.Steps[0].Frames, 1)
	assert.False(t, s.Steps[0].Frames[0].Draw)
}

func TestParseScenario_UnknownFieldRejected(t *testing.T) {
	_, err := ParseScenario([]byte(minimalScenario + "assertion: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\ndevices: [{id: a}]\nsteps: [{device: a, action: leave}]\n",
			wantErr: "name is required",
		},
		{
			name:    "no devices",
			yaml:    "name: n\ndescription: d\nsteps: [{device: a, action: leave}]\n",
			wantErr: "devices list is required",
		},
		{
			name:    "duplicate device",
			yaml:    "name: n\ndescription: d\ndevices: [{id: a}, {id: a}]\nsteps: [{device: a, action: leave}]\n",
			wantErr: `duplicate id "a"`,
		},
		{
			name:    "unknown step device",
			yaml:    "name: n\ndescription: d\ndevices: [{id: a}]\nsteps: [{device: b, action: leave}]\n",
			wantErr: `unknown device "b"`,
		},
		{
			name:    "frames and action",
			yaml:    "name: n\ndescription: d\ndevices: [{id: a}]\nsteps: [{device: a, action: leave, frames: [{position: [0, 0, 0]}]}]\n",
			wantErr: "exactly one of frames or action",
		},
		{
			name:    "unknown action",
			yaml:    "name: n\ndescription: d\ndevices: [{id: a}]\nsteps: [{device: a, action: teleport}]\n",
			wantErr: `unknown action "teleport"`,
		},
		{
			name:    "short position",
			yaml:    "name: n\ndescription: d\ndevices: [{id: a}]\nsteps: [{device: a, frames: [{position: [0, 0]}]}]\n",
			wantErr: "position",
		},
		{
			name:    "bad tracking",
			yaml:    "name: n\ndescription: d\ndevices: [{id: a}]\nsteps: [{device: a, frames: [{position: [0, 0, 0], tracking: wobbly}]}]\n",
			wantErr: "wobbly",
		},
		{
			name:    "color out of range",
			yaml:    "name: n\ndescription: d\ndevices: [{id: a, color: [2, 0, 0, 1]}]\nsteps: [{device: a, action: leave}]\n",
			wantErr: "devices[0]",
		},
		{
			name:    "count missing",
			yaml:    "name: n\ndescription: d\ndevices: [{id: a}]\nsteps: [{device: a, action: leave}]\nassertions: [{type: stroke_count, device: a}]\n",
			wantErr: "non-negative count is required",
		},
		{
			name:    "strokes_match needs two",
			yaml:    "name: n\ndescription: d\ndevices: [{id: a}]\nsteps: [{device: a, action: leave}]\nassertions: [{type: strokes_match, devices: [a]}]\n",
			wantErr: "at least two devices",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: n\ndescription: d\ndevices: [{id: a}]\nsteps: [{device: a, action: leave}]\nassertions: [{type: vibes, device: a}]\n",
			wantErr: `unknown assertion type "vibes"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadScenario_Testdata(t *testing.T) {
	paths, err := filepath.Glob("../../testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)
			assert.NotEmpty(t, s.Assertions)
		})
	}
}

func TestParseTracking(t *testing.T) {
	tests := []struct {
		in   string
		want model.TrackingQuality
	}{
		{"", model.Normal()},
		{"normal", model.Normal()},
		{"unavailable", model.Unavailable()},
		{"limited:excessive_motion", model.Limited(model.ReasonExcessiveMotion)},
		{"limited(relocalizing)", model.Limited(model.ReasonRelocalizing)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTracking(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMapping(t *testing.T) {
	got, err := parseMapping("")
	require.NoError(t, err)
	assert.Equal(t, model.MappingNotAvailable, got)

	got, err = parseMapping("mapped")
	require.NoError(t, err)
	assert.Equal(t, model.MappingMapped, got)

	_, err = parseMapping("sort_of")
	assert.Error(t, err)
}
