// Package harness runs multi-device drawing scenarios for conformance tests.
//
// A scenario declares devices, a scripted sequence of tracker frames and user
// actions per device, and assertions on the final state. Devices are wired
// together through an in-process transport.Mesh, so every stroke and snapshot
// goes through the real codec and replication engine. Each device journals to
// its own in-memory SQLite store.
//
// # Determinism
//
// Mesh delivery is synchronous and follows join order unless the scenario
// asks for a shuffle seed, and session ids are fixed per device. The same
// scenario therefore produces the same trace on every run, which makes the
// trace suitable for golden file comparison:
//
//	go test ./internal/harness -update
//
// regenerates the golden files under testdata/golden.
package harness
