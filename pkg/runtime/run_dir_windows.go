package runtime

import (
	"fmt"
	"os"
	"path/filepath"

	"src.rtorc.sh/pkg/env"
)

// secureRunDir stats rtorc-$USERNAME under the default temp dir, creating it
// if it doesn't yet exist, and returns the directory name.
func secureRunDir() (string, error) {
	username := os.Getenv(env.USERNAME)

	runDir := filepath.Join(os.TempDir(), "rtorc-"+username)
	err := os.MkdirAll(runDir, 0700)
	if err != nil {
		return "", fmt.Errorf("mkdir: %v", err)
	}

	return runDir, nil
}
