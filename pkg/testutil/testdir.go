package testutil

import (
	"os"
	"path/filepath"
)

// TempDirer is the subset of testing.TB needed by InTempDir.
type TempDirer interface {
	Cleanuper
	TempDir() string
}

// InTempDir creates a temporary directory with symlinks resolved, changes into
// it for the duration of the test and returns its path.
func InTempDir(c TempDirer) string {
	dir, err := filepath.EvalSymlinks(c.TempDir())
	if err != nil {
		panic(err)
	}
	chdir(c, dir)
	return dir
}

func chdir(c Cleanuper, dir string) {
	oldWd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	if err := os.Chdir(dir); err != nil {
		panic(err)
	}
	c.Cleanup(func() {
		if err := os.Chdir(oldWd); err != nil {
			panic(err)
		}
	})
}
