package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Device   string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertion failed: %s", e.Type)
	if e.Device != "" {
		fmt.Fprintf(&buf, " on %s", e.Device)
	}
	fmt.Fprintf(&buf, ": expected %s, got %s", e.Expected, e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against the final device states
// and returns one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func evaluateAssertion(result *Result, a Assertion) error {
	if a.Type == AssertStrokesMatch {
		return assertStrokesMatch(result, a.Devices)
	}

	ds, ok := result.Devices[a.Device]
	if !ok {
		return &AssertionError{Type: a.Type, Device: a.Device, Expected: "device state", Actual: "none"}
	}

	switch a.Type {
	case AssertStrokeCount:
		return compareInt(a, *a.Count, ds.Anchors)
	case AssertJournalCount:
		return compareInt(a, *a.Count, ds.Journaled)
	case AssertUnrecognizedCount:
		return compareInt(a, *a.Count, ds.Unrecognized)
	case AssertMapProvider:
		if ds.MapProvider != *a.Peer {
			return &AssertionError{Type: a.Type, Device: a.Device, Expected: quoteOrNone(*a.Peer), Actual: quoteOrNone(ds.MapProvider)}
		}
	case AssertStatus:
		if ds.Status != *a.Message {
			return &AssertionError{Type: a.Type, Device: a.Device, Expected: quoteOrNone(*a.Message), Actual: quoteOrNone(ds.Status)}
		}
	case AssertExportEnabled:
		if ds.ExportEnabled != *a.Expect {
			return &AssertionError{Type: a.Type, Device: a.Device, Expected: fmt.Sprint(*a.Expect), Actual: fmt.Sprint(ds.ExportEnabled)}
		}
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
	return nil
}

func compareInt(a Assertion, want, got int) error {
	if want != got {
		return &AssertionError{Type: a.Type, Device: a.Device, Expected: fmt.Sprint(want), Actual: fmt.Sprint(got)}
	}
	return nil
}

// assertStrokesMatch requires every listed device to hold the same strokes
// in the same order.
func assertStrokesMatch(result *Result, devices []string) error {
	first, ok := result.Devices[devices[0]]
	if !ok {
		return &AssertionError{Type: AssertStrokesMatch, Device: devices[0], Expected: "device state", Actual: "none"}
	}
	for _, id := range devices[1:] {
		ds, ok := result.Devices[id]
		if !ok {
			return &AssertionError{Type: AssertStrokesMatch, Device: id, Expected: "device state", Actual: "none"}
		}
		if !slices.Equal(first.strokes, ds.strokes) {
			return &AssertionError{
				Type:     AssertStrokesMatch,
				Device:   id,
				Expected: fmt.Sprintf("%d strokes matching %s", len(first.strokes), devices[0]),
				Actual:   fmt.Sprintf("%d strokes, first mismatch at %d", len(ds.strokes), firstMismatch(first.strokes, ds.strokes)),
			}
		}
	}
	return nil
}

func firstMismatch(a, b []string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func quoteOrNone(s string) string {
	if s == "" {
		return "none"
	}
	return fmt.Sprintf("%q", s)
}
