// Package testutil provides fakes for the engine's collaborators.
package testutil
