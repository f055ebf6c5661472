// Package daemon implements a service for calling commands from outside the
// process, and its client.
//
// The protocol is described in the daemondefs package.
package daemon

import (
	"context"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/sourcegraph/jsonrpc2"
	"src.rtorc.sh/pkg/daemon/daemondefs"
	"src.rtorc.sh/pkg/eval"
	"src.rtorc.sh/pkg/logutil"
	"src.rtorc.sh/pkg/prog"
	"src.rtorc.sh/pkg/runtime"
)

var logger = logutil.GetLogger("[daemon] ")

// Program is the daemon subprogram.
var Program prog.Program = &program{}

type program struct {
	// Used in tests.
	serveOpts ServeOpts
}

func (p *program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	if !f.Daemon {
		return prog.ErrNotSuitable
	}
	if len(args) > 0 {
		return prog.BadUsage("arguments are not allowed with -daemon")
	}
	if f.Log == "" {
		logutil.SetOutput(fds[1])
	}

	paths := runtime.MakePaths(fds[2], f)
	if paths.Sock == "" {
		return prog.BadUsage("cannot determine socket path; use -sock")
	}
	rt := runtime.New(fds[2], paths, f.Conf)
	defer rt.Close()
	rt.Evaler.Stdout = fds[1]
	if !f.NoRc {
		rt.SourceRC(fds[2], paths.RC)
	}

	setUmaskForDaemon()
	exit := Serve(paths.Sock, rt.Evaler, rt.Engine, p.serveOpts)
	return prog.Exit(exit)
}

// ServeOpts keeps options that can be passed to Serve.
type ServeOpts struct {
	// If not nil, will be closed when the daemon is ready to serve requests.
	Ready chan<- struct{}
	// Causes the daemon to abort if closed or sent any date. If nil, Serve will
	// set up its own signal channel by listening to SIGINT and SIGTERM.
	Signals <-chan os.Signal
	// If not nil, overrides the response of the version method.
	Version *int
}

// Serve runs the daemon service, listening on the socket specified by sockpath
// and dispatching calls to ev with lock held. It returns when signaled, or when
// the listener fails and no clients are connected. See doc for ServeOpts for
// additional options.
func Serve(sockpath string, ev *eval.Evaler, lock sync.Locker, opts ServeOpts) int {
	logger.Println("pid is", syscall.Getpid())
	logger.Println("going to listen", sockpath)
	listener, err := net.Listen("unix", sockpath)
	if err != nil {
		logger.Printf("failed to listen on %s: %v", sockpath, err)
		logger.Println("aborting")
		return 2
	}

	version := daemondefs.Version
	if opts.Version != nil {
		version = *opts.Version
	}
	svc := &service{version, ev, lock}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connCh := make(chan net.Conn, 10)
	acceptErrCh := make(chan error, 1)
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				acceptErrCh <- err
				close(acceptErrCh)
				return
			}
			connCh <- conn
		}
	}()
	// Set to nil once the listener has failed.
	listenErrCh := (<-chan error)(acceptErrCh)

	sigCh := opts.Signals
	if sigCh == nil {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		defer signal.Stop(ch)
		sigCh = ch
	}

	conns := make(map[*jsonrpc2.Conn]struct{})
	connDoneCh := make(chan *jsonrpc2.Conn, 10)

	interrupt := func() {
		logger.Printf("going to close %v active connections", len(conns))
		for conn := range conns {
			// Ignore the error - if we can't close the connection it's because
			// the client has closed it. There is nothing we can do anyway.
			conn.Close()
		}
	}

	if opts.Ready != nil {
		close(opts.Ready)
	}

loop:
	for {
		select {
		case sig := <-sigCh:
			logger.Printf("received signal %v", sig)
			interrupt()
			break loop
		case err := <-listenErrCh:
			logger.Println("could not listen:", err)
			if len(conns) == 0 {
				logger.Println("exiting since there are no clients")
				break loop
			}
			logger.Println("continuing to serve until all existing clients exit")
			listenErrCh = nil
		case netConn := <-connCh:
			conn := jsonrpc2.NewConn(ctx,
				jsonrpc2.NewBufferedStream(netConn, jsonrpc2.VSCodeObjectCodec{}),
				svc.handler())
			conns[conn] = struct{}{}
			go func() {
				<-conn.DisconnectNotify()
				connDoneCh <- conn
			}()
		case conn := <-connDoneCh:
			delete(conns, conn)
			if listenErrCh == nil && len(conns) == 0 {
				logger.Println("all clients disconnected, exiting")
				break loop
			}
		}
	}

	err = listener.Close()
	if err != nil {
		logger.Printf("failed to close listener: %v", err)
	}
	// Closing a unix listener normally removes the socket file.
	if err := os.Remove(sockpath); err != nil && !os.IsNotExist(err) {
		logger.Printf("failed to remove socket %s: %v", sockpath, err)
	}
	// Ensure that the listener goroutine has exited before returning
	<-acceptErrCh
	return 0
}
