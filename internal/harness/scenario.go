package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a multi-device drawing scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Network configures the mesh's delivery faults.
	Network NetworkSpec `yaml:"network,omitempty"`

	// Devices join the mesh in declaration order.
	Devices []DeviceSpec `yaml:"devices"`

	// Steps run sequentially.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final device states.
	Assertions []Assertion `yaml:"assertions"`
}

// NetworkSpec mirrors the transport.Mesh options.
type NetworkSpec struct {
	Duplicates  int     `yaml:"duplicates,omitempty"`
	DropEvery   int     `yaml:"drop_every,omitempty"`
	ShuffleSeed *uint64 `yaml:"shuffle_seed,omitempty"`
}

// DeviceSpec declares one participant.
type DeviceSpec struct {
	// ID is the peer id, referenced by steps and assertions.
	ID string `yaml:"id"`

	// Name is the display name. Defaults to the config device name.
	Name string `yaml:"name,omitempty"`

	// Color is the initial stroke color as [r, g, b, a].
	Color []float64 `yaml:"color,omitempty"`

	// DrawingDistance overrides the configured drawing distance.
	DrawingDistance float64 `yaml:"drawing_distance,omitempty"`
}

// Step is either a list of frames or a single action on one device.
type Step struct {
	Device string      `yaml:"device"`
	Frames []FrameSpec `yaml:"frames,omitempty"`

	// Action is one of the Action* constants.
	Action string `yaml:"action,omitempty"`

	// Color is the new color for ActionColor.
	Color []float64 `yaml:"color,omitempty"`

	// Payload is the raw bytes broadcast by ActionGarbage.
	Payload string `yaml:"payload,omitempty"`
}

// FrameSpec is one tracker sample followed by one device tick.
type FrameSpec struct {
	// Position is the device position in metres.
	Position []float64 `yaml:"position"`

	// Forward is the viewing direction. Defaults to [0, 0, -1].
	Forward []float64 `yaml:"forward,omitempty"`

	// Tracking is "normal", "unavailable" or "limited:<reason>".
	// Defaults to "normal".
	Tracking string `yaml:"tracking,omitempty"`

	// Mapping is "not_available", "limited", "extending" or "mapped".
	// Defaults to "not_available".
	Mapping string `yaml:"mapping,omitempty"`

	// Draw holds the draw control for this frame.
	Draw bool `yaml:"draw,omitempty"`
}

// Step actions.
const (
	ActionShareMap  = "share_map"
	ActionStartOver = "start_over"
	ActionLeave     = "leave"
	ActionJoin      = "join"
	ActionGarbage   = "garbage"
	ActionColor     = "color"
	ActionRestart   = "restart" // Rebuild the engine from its journal
)

// Assertion validates one device's final state, or a relation between devices.
type Assertion struct {
	// Type specifies the assertion type:
	// - "stroke_count": Anchor count equals Count
	// - "map_provider": Provider id equals Peer ("" for none)
	// - "status": Banner message equals Message
	// - "export_enabled": Export gate equals Expect
	// - "unrecognized_count": Dropped payload count equals Count
	// - "journal_count": Journaled anchor count equals Count
	// - "strokes_match": All Devices hold identical stroke lists
	Type string `yaml:"type"`

	Device  string   `yaml:"device,omitempty"`
	Devices []string `yaml:"devices,omitempty"`
	Count   *int     `yaml:"count,omitempty"`
	Peer    *string  `yaml:"peer,omitempty"`
	Message *string  `yaml:"message,omitempty"`
	Expect  *bool    `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertStrokeCount       = "stroke_count"
	AssertMapProvider       = "map_provider"
	AssertStatus            = "status"
	AssertExportEnabled     = "export_enabled"
	AssertUnrecognizedCount = "unrecognized_count"
	AssertJournalCount      = "journal_count"
	AssertStrokesMatch      = "strokes_match"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Devices) == 0 {
		return fmt.Errorf("devices list is required and must be non-empty")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if s.Network.Duplicates < 0 || s.Network.DropEvery < 0 {
		return fmt.Errorf("network: duplicates and drop_every must be non-negative")
	}

	ids := make(map[string]bool, len(s.Devices))
	for i, d := range s.Devices {
		if d.ID == "" {
			return fmt.Errorf("devices[%d]: id is required", i)
		}
		if ids[d.ID] {
			return fmt.Errorf("devices[%d]: duplicate id %q", i, d.ID)
		}
		ids[d.ID] = true
		if d.Color != nil {
			if _, err := parseColor(d.Color); err != nil {
				return fmt.Errorf("devices[%d]: %w", i, err)
			}
		}
		if d.DrawingDistance < 0 {
			return fmt.Errorf("devices[%d]: drawing_distance must be positive", i)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step, ids); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a, ids); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step *Step, ids map[string]bool) error {
	if !ids[step.Device] {
		return fmt.Errorf("steps[%d]: unknown device %q", index, step.Device)
	}

	hasFrames := len(step.Frames) > 0
	hasAction := step.Action != ""
	if hasFrames == hasAction {
		return fmt.Errorf("steps[%d]: exactly one of frames or action is required", index)
	}

	for j, f := range step.Frames {
		if _, err := f.pose(); err != nil {
			return fmt.Errorf("steps[%d].frames[%d]: %w", index, j, err)
		}
		if _, err := parseTracking(f.Tracking); err != nil {
			return fmt.Errorf("steps[%d].frames[%d]: %w", index, j, err)
		}
		if _, err := parseMapping(f.Mapping); err != nil {
			return fmt.Errorf("steps[%d].frames[%d]: %w", index, j, err)
		}
	}

	switch step.Action {
	case "", ActionShareMap, ActionStartOver, ActionLeave, ActionJoin, ActionRestart:
	case ActionGarbage:
		// An empty payload is a valid garbage payload.
	case ActionColor:
		if _, err := parseColor(step.Color); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, step.Action)
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, ids map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	if a.Type == AssertStrokesMatch {
		if len(a.Devices) < 2 {
			return fmt.Errorf("assertions[%d]: strokes_match needs at least two devices", index)
		}
		for _, id := range a.Devices {
			if !ids[id] {
				return fmt.Errorf("assertions[%d]: unknown device %q", index, id)
			}
		}
		return nil
	}

	if !ids[a.Device] {
		return fmt.Errorf("assertions[%d]: unknown device %q", index, a.Device)
	}

	switch a.Type {
	case AssertStrokeCount, AssertUnrecognizedCount, AssertJournalCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for %s", index, a.Type)
		}
	case AssertMapProvider:
		if a.Peer == nil {
			return fmt.Errorf("assertions[%d]: peer is required for map_provider", index)
		}
	case AssertStatus:
		if a.Message == nil {
			return fmt.Errorf("assertions[%d]: message is required for status", index)
		}
	case AssertExportEnabled:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for export_enabled", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
