// Package env keeps names of environment variables with special significance to
// rtorc.
package env

// Environment variables with special significance to rtorc.
//
// Note that some of these env vars may be significant only in special
// circumstances, such as when running unit tests.
const (
	HOME                  = "HOME"
	RTORC_TEST_TIME_SCALE = "RTORC_TEST_TIME_SCALE"
	USERNAME              = "USERNAME"
	XDG_CONFIG_HOME       = "XDG_CONFIG_HOME"
	XDG_DATA_HOME         = "XDG_DATA_HOME"
	XDG_RUNTIME_DIR       = "XDG_RUNTIME_DIR"
)
