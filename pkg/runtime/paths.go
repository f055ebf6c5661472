// Package runtime assembles the components of a running rtorc instance: the
// interpreter, the engine it controls and the persistent store.
package runtime

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"src.rtorc.sh/pkg/env"
	"src.rtorc.sh/pkg/prog"
)

// Paths keeps the filesystem locations used by rtorc. An empty field means the
// corresponding feature is unavailable.
type Paths struct {
	RC   string
	DB   string
	Sock string
}

// MakePaths resolves the paths from the flags, falling back to the default
// locations. Failures to determine a default location are reported to stderr.
func MakePaths(stderr io.Writer, f *prog.Flags) Paths {
	p := Paths{RC: f.RC, DB: f.DB, Sock: f.Sock}
	warn := func(what string, err error) {
		fmt.Fprintf(stderr, "Warning: cannot determine %s path: %v\n", what, err)
	}
	if p.RC == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			p.RC = filepath.Join(dir, "rtorc", "rc")
		} else {
			warn("rc", err)
		}
	}
	if p.DB == "" {
		if dir, err := ensureDataDir(); err == nil {
			p.DB = filepath.Join(dir, "db")
		} else {
			warn("database", err)
		}
	}
	if p.Sock == "" {
		if dir, err := secureRunDir(); err == nil {
			p.Sock = filepath.Join(dir, "sock")
		} else {
			warn("socket", err)
		}
	}
	return p
}

// Ensures the data directory exists, creating it if necessary.
func ensureDataDir() (string, error) {
	home := os.Getenv(env.XDG_DATA_HOME)
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		home = filepath.Join(userHome, ".local", "share")
	}
	ddir := filepath.Join(home, "rtorc")
	return ddir, os.MkdirAll(ddir, 0700)
}
