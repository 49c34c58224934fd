package testutil

// FixedSessionID generates the same session id every time.
//
// Unlike engine.FixedGenerator which returns ids in sequence, this generator
// never runs out, so a scenario may restart its session any number of times
// and still produce identical traces.
//
// Thread-safety: FixedSessionID is stateless and safe for concurrent use.
type FixedSessionID struct {
	id string
}

// NewFixedSessionID creates a new fixed session id generator.
//
// If id is empty, Generate() returns "test-session-default".
func NewFixedSessionID(id string) *FixedSessionID {
	if id == "" {
		id = "test-session-default"
	}
	return &FixedSessionID{id: id}
}

// Generate returns the fixed id.
//
// Implements engine.SessionIDGenerator.
func (g *FixedSessionID) Generate() string {
	return g.id
}
