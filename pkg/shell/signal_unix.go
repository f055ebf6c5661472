//go:build unix

package shell

import (
	"fmt"
	"io"
	"os"
	"syscall"

	"src.rtorc.sh/pkg/sys"
)

func ignoreSignal(sig os.Signal) bool {
	// SIGURG isn't interesting since it is used internally by the Go runtime on UNIX and occurs
	// with great frequency.
	return sig == syscall.SIGURG
}

func handleSignal(sig os.Signal, stderr io.Writer) {
	switch sig {
	case syscall.SIGHUP, syscall.SIGTERM:
		os.Exit(0)
	case syscall.SIGINT:
		os.Exit(130)
	case syscall.SIGUSR1:
		fmt.Fprint(stderr, sys.DumpStack())
	}
}
