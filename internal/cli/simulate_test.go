package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `
name: passing
description: Alice draws one segment and Bob receives it.
devices:
  - id: alice
    name: Alice
  - id: bob
    name: Bob
steps:
  - device: alice
    frames:
      - position: [0, 0, 0]
        draw: true
      - position: [0.1, 0, 0]
        draw: true
assertions:
  - type: stroke_count
    device: bob
    count: 1
  - type: strokes_match
    devices: [alice, bob]
`

const failingScenario = `
name: failing
description: Expects a stroke that is never drawn.
devices:
  - id: alice
steps:
  - device: alice
    frames:
      - position: [0, 0, 0]
assertions:
  - type: stroke_count
    device: alice
    count: 3
`

func writeScenarios(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestSimulate_Pass(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"passing.yaml": passingScenario})

	out, err := execute(t, "simulate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ passing")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestSimulate_FailureExitCode(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"passing.yaml": passingScenario,
		"failing.yaml": failingScenario,
	})

	out, err := execute(t, "simulate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ failing")
	assert.Contains(t, out, "stroke_count on alice: expected 3, got 0")
	assert.Contains(t, out, "1 passed, 1 failed, 2 total")
}

func TestSimulate_SingleFileWithTrace(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"passing.yaml": passingScenario})

	out, err := execute(t, "simulate", "--trace", filepath.Join(dir, "passing.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "received")
	assert.Contains(t, out, "stroke from alice")
}

func TestSimulate_Filter(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"passing.yaml": passingScenario,
		"failing.yaml": failingScenario,
	})

	out, err := execute(t, "simulate", "--filter", "pass*", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestSimulate_JSON(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"failing.yaml": failingScenario})

	out, err := execute(t, "simulate", "--format", "json", dir)
	require.Error(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   SimulateResult `json:"data"`
		Error  *CLIError      `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Failed)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_SCENARIO_FAILED", resp.Error.Code)
}

func TestSimulate_GoldenUpdateThenCompare(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"passing.yaml": passingScenario})

	_, err := execute(t, "simulate", "--update", dir)
	require.NoError(t, err)
	golden := filepath.Join(dir, "golden", "passing.golden")
	require.FileExists(t, golden)

	_, err = execute(t, "simulate", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(golden, []byte("{}"), 0644))
	out, err := execute(t, "simulate", dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestSimulate_InvalidScenario(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"bad.yaml": "name: bad\n"})

	out, err := execute(t, "simulate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "failed to load scenario")
}

func TestSimulate_MissingPath(t *testing.T) {
	_, err := execute(t, "simulate", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSimulate_ConfigApplies(t *testing.T) {
	scenario := `
name: named
description: unnamed peers take the configured device name
devices:
  - id: alice
  - id: bob
steps:
  - device: alice
    frames:
      - position: [0, 0, 0]
assertions:
  - type: status
    device: alice
    message: "connected with Tablet."
`
	dir := writeScenarios(t, map[string]string{"named.yaml": scenario})
	cfgPath := filepath.Join(t.TempDir(), "airdraw.cue")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`device_name: "Tablet"`), 0644))

	_, err := execute(t, "simulate", "--config", cfgPath, dir)
	require.NoError(t, err)
}

func TestSimulate_BadConfig(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"passing.yaml": passingScenario})
	cfgPath := filepath.Join(t.TempDir(), "airdraw.cue")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`drawing_distance: -1`), 0644))

	_, err := execute(t, "simulate", "--config", cfgPath, dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
