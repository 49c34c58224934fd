package harness

// TraceEvent is one observable event during a scenario run.
type TraceEvent struct {
	Seq     int    `json:"seq"`
	Device  string `json:"device"`
	Event   string `json:"event"`
	Detail  string `json:"detail,omitempty"`
	Anchors int    `json:"anchors"` // Device anchor count after the event
}

// Trace event names.
const (
	EventStroke          = "stroke"
	EventBroadcastFailed = "broadcast_failed"
	EventStatus          = "status"
	EventReceived        = "received"
	EventShared          = "shared"
	EventShareRefused    = "share_refused"
	EventStartOver       = "start_over"
	EventLeft            = "left"
	EventJoined          = "joined"
	EventGarbage         = "garbage"
	EventColor           = "color"
	EventRestarted       = "restarted"
)

// DeviceState is a device's state at the end of a run.
type DeviceState struct {
	Anchors       int    `json:"anchors"`
	MapProvider   string `json:"map_provider,omitempty"`
	Status        string `json:"status,omitempty"`
	ExportEnabled bool   `json:"export_enabled"`
	Unrecognized  int    `json:"unrecognized"`
	Journaled     int    `json:"journaled"`

	strokes []string // Stroke records for strokes_match; not serialized
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass indicates overall success: no assertion failed.
	Pass bool `json:"pass"`

	// Trace contains every event in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Devices holds the final state per device id.
	Devices map[string]DeviceState `json:"devices"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Errors:  []string{},
		Devices: make(map[string]DeviceState),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// addEvent appends ev with the next seq.
func (r *Result) addEvent(ev TraceEvent) {
	ev.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, ev)
}
