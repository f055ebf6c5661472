// Command rtorc is an alternative main program of rtorc that supports writing
// pprof profiles.
package main

import (
	"os"

	"src.rtorc.sh/pkg/buildinfo"
	"src.rtorc.sh/pkg/daemon"
	"src.rtorc.sh/pkg/lsp"
	"src.rtorc.sh/pkg/pprof"
	"src.rtorc.sh/pkg/prog"
	"src.rtorc.sh/pkg/shell"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(
			pprof.Program, buildinfo.Program, daemon.Program, lsp.Program, shell.Program{})))
}
