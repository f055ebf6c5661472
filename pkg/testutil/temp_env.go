package testutil

import "os"

// Setenv sets an environment variable until the test finishes, and returns
// value.
func Setenv(c Cleanuper, name, value string) string {
	if old, ok := os.LookupEnv(name); ok {
		c.Cleanup(func() { os.Setenv(name, old) })
	} else {
		c.Cleanup(func() { os.Unsetenv(name) })
	}
	os.Setenv(name, value)
	return value
}
