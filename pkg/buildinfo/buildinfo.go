// Package buildinfo contains build information.
//
// Build information should be set during compilation by passing
// -ldflags "-X src.rtorc.sh/pkg/buildinfo.Var=value" to "go build".
package buildinfo

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"src.rtorc.sh/pkg/prog"
)

// Version identifies the version of rtorc. On development commits, it
// identifies the next release.
const Version = "v0.3.0"

// VersionSuffix is appended to Version in the output of "rtorc -version" and
// "rtorc -buildinfo" to build the full version string.
var VersionSuffix = "-dev.unknown"

// Reproducible identifies whether the build is reproducible.
var Reproducible = "false"

// Program is the buildinfo subprogram.
var Program prog.Program = program{}

type program struct{}

func (program) Run(fds [3]*os.File, f *prog.Flags, _ []string) error {
	if !f.Version && !f.BuildInfo {
		return prog.ErrNotSuitable
	}
	fullVersion := Version + VersionSuffix
	if f.Version {
		if f.JSON {
			fmt.Fprintln(fds[1], quoteJSON(fullVersion))
		} else {
			fmt.Fprintln(fds[1], fullVersion)
		}
		return nil
	}
	if f.JSON {
		fmt.Fprintf(fds[1],
			`{"version":%s,"goversion":%s,"reproducible":%v}`+"\n",
			quoteJSON(fullVersion), quoteJSON(runtime.Version()), Reproducible)
	} else {
		fmt.Fprintln(fds[1], "Version:", fullVersion)
		fmt.Fprintln(fds[1], "Go version:", runtime.Version())
		fmt.Fprintln(fds[1], "Reproducible build:", Reproducible)
	}
	return nil
}

func quoteJSON(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		// Marshaling a string never fails.
		panic(err)
	}
	return string(b)
}
