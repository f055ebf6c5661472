//go:build !windows

package runtime

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"src.rtorc.sh/pkg/env"
)

// secureRunDir returns a directory for storing runtime files, such as the
// daemon socket. It picks the first candidate that exists and is exclusively
// accessible by the current user, creating the first candidate if none is.
func secureRunDir() (string, error) {
	runDirs := runDirCandidates()
	for _, runDir := range runDirs {
		if checkExclusiveAccess(runDir) {
			return runDir, nil
		}
	}

	runDir := runDirs[0]
	err := os.MkdirAll(runDir, 0700)
	if err != nil {
		return "", fmt.Errorf("mkdir: %v", err)
	}

	if !checkExclusiveAccess(runDir) {
		return "", fmt.Errorf("cannot create %v as a secure run directory", runDir)
	}

	return runDir, nil
}

// Returns a list of run directory candidates in order of preference.
func runDirCandidates() []string {
	tmpDirPath := filepath.Join(os.TempDir(), fmt.Sprintf("rtorc-%d", unix.Getuid()))
	if xdg := os.Getenv(env.XDG_RUNTIME_DIR); xdg != "" {
		return []string{filepath.Join(xdg, "rtorc"), tmpDirPath}
	}
	return []string{tmpDirPath}
}

func checkExclusiveAccess(runDir string) bool {
	var stat unix.Stat_t
	if err := unix.Stat(runDir, &stat); err != nil {
		return false
	}
	return stat.Mode&unix.S_IFMT == unix.S_IFDIR &&
		int(stat.Uid) == unix.Getuid() && stat.Mode&0077 == 0
}
