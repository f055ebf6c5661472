// Package shell is the entry point for the terminal interface of rtorc.
package shell

import (
	"os"

	"src.rtorc.sh/pkg/logutil"
	"src.rtorc.sh/pkg/prog"
	"src.rtorc.sh/pkg/runtime"
	"src.rtorc.sh/pkg/store/storedefs"
	"src.rtorc.sh/pkg/sys"
)

var logger = logutil.GetLogger("[shell] ")

// Program is the shell subprogram. It runs a script when given one, and an
// interactive session otherwise.
type Program struct{}

func (p Program) Run(fds [3]*os.File, f *prog.Flags, args []string) error {
	switch {
	case f.CodeInArg && len(args) == 0:
		return prog.BadUsage("-c requires an argument")
	case len(args) > 1:
		return prog.BadUsage("only one script may be given")
	case f.CompileOnly && len(args) == 0:
		return prog.BadUsage("-compileonly requires a script")
	}

	cleanup := initSignal(fds[2])
	defer cleanup()

	if len(args) == 1 && f.CompileOnly {
		return prog.Exit(check(fds, args[0], &scriptCfg{Cmd: f.CodeInArg, JSON: f.JSON}))
	}

	paths := runtime.MakePaths(fds[2], f)
	rt := runtime.New(fds[2], paths, f.Conf)
	defer rt.Close()
	rt.Evaler.Stdout = fds[1]

	if len(args) == 1 {
		return prog.Exit(script(rt.Evaler, fds, args[0], &scriptCfg{Cmd: f.CodeInArg}))
	}

	if !f.NoRc {
		rt.SourceRC(fds[2], paths.RC)
	}
	var hist storedefs.Store
	if rt.Store != nil {
		hist = rt.Store
	}
	var ed editor
	if fds[0] == os.Stdin && sys.IsATTY(fds[0].Fd()) {
		ed = newLineEditor(rt.Evaler.Commands, hist)
	} else {
		ed = newMinEditor(fds[0], fds[2])
	}
	defer ed.close()
	interact(fds, rt.Evaler, ed, hist)
	return nil
}
