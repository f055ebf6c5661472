package shell

import (
	"io"
	"os"
	"syscall"
)

func ignoreSignal(os.Signal) bool { return false }

// Windows has no SIGUSR1, so stacks cannot be dumped on demand.
func handleSignal(sig os.Signal, _ io.Writer) {
	switch sig {
	case syscall.SIGTERM:
		os.Exit(0)
	case os.Interrupt:
		os.Exit(130)
	}
}
