package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInTempDir(t *testing.T) {
	var dir string
	oldWd, _ := os.Getwd()
	t.Run("sub", func(t *testing.T) {
		dir = InTempDir(t)
		wd, err := os.Getwd()
		if err != nil || wd != dir {
			t.Errorf("working directory %q (%v), want %q", wd, err, dir)
		}
		if resolved, _ := filepath.EvalSymlinks(dir); resolved != dir {
			t.Errorf("dir %q has unresolved symlinks", dir)
		}
	})
	if wd, _ := os.Getwd(); wd != oldWd {
		t.Errorf("working directory not restored: %q, want %q", wd, oldWd)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("temp dir not removed: %v", err)
	}
}
