// Package testutil contains helpers shared by tests: temporary directories,
// environment variables, the umask and timeouts.
package testutil

// Cleanuper is the subset of testing.TB needed to undo changes after a test.
type Cleanuper interface {
	Cleanup(func())
}
