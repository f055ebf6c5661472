// Rtorc is an interpreter for the command language of rtorrent-style clients.
// It runs scripts and an interactive console, serves commands to external
// callers as a daemon, and provides a language server for command files.
package main

import (
	"os"

	"src.rtorc.sh/pkg/buildinfo"
	"src.rtorc.sh/pkg/daemon"
	"src.rtorc.sh/pkg/lsp"
	"src.rtorc.sh/pkg/prog"
	"src.rtorc.sh/pkg/shell"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(buildinfo.Program, daemon.Program, lsp.Program, shell.Program{})))
}
