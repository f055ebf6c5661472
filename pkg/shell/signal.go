package shell

import (
	"io"
	"os/signal"

	"src.rtorc.sh/pkg/sys"
)

func initSignal(stderr io.Writer) func() {
	sigCh := sys.NotifySignals()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for sig := range sigCh {
			if ignoreSignal(sig) {
				continue
			}
			logger.Println("signal", sig)
			handleSignal(sig, stderr)
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(sigCh)
		<-done
	}
}
