// Package prog provides the entry point to rtorc. Its subpackages correspond
// to subprograms of rtorc.
package prog

// This package sets up the basic environment and calls the appropriate
// "subprogram", one of the daemon, the language server, or the shell.

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"src.rtorc.sh/pkg/logutil"
)

// Flags keeps command-line flags.
type Flags struct {
	Log string

	Help, Version, BuildInfo, JSON bool

	CodeInArg, CompileOnly, NoRc bool
	RC                           string

	Config string
	// Populated from the file named by Config, or from the default location
	// when Config is empty. Never nil after Run has parsed the flags.
	Conf *Config

	Daemon, LSP bool

	DB, Sock string

	CPUProfile, AllocsProfile string
}

func newFlagSet(f *Flags) *flag.FlagSet {
	fs := flag.NewFlagSet("rtorc", flag.ContinueOnError)
	// Error and usage will be printed explicitly.
	fs.SetOutput(io.Discard)

	fs.StringVar(&f.Log, "log", "", "a file to write debug log to")

	fs.BoolVar(&f.Help, "help", false, "show usage help and quit")
	fs.BoolVar(&f.Version, "version", false, "show version and quit")
	fs.BoolVar(&f.BuildInfo, "buildinfo", false, "show build info and quit")
	fs.BoolVar(&f.JSON, "json", false, "show output in JSON. Useful with -buildinfo and -compileonly")

	fs.BoolVar(&f.CodeInArg, "c", false, "take first argument as statements to execute")
	fs.BoolVar(&f.CompileOnly, "compileonly", false, "parse but do not execute")
	fs.BoolVar(&f.NoRc, "norc", false, "run rtorc without sourcing the rc file")
	fs.StringVar(&f.RC, "rc", "", "path to the rc file")
	fs.StringVar(&f.Config, "config", "", "path to the configuration file")

	fs.BoolVar(&f.Daemon, "daemon", false, "serve external command calls instead of running a shell")
	fs.BoolVar(&f.LSP, "lsp", false, "run language server instead of shell")

	fs.StringVar(&f.DB, "db", "", "path to the database")
	fs.StringVar(&f.Sock, "sock", "", "path to the daemon socket")

	fs.StringVar(&f.CPUProfile, "cpuprofile", "", "write CPU profile to file")
	fs.StringVar(&f.AllocsProfile, "allocsprofile", "", "write memory allocation profile to file")

	return fs
}

func usage(out io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(out, "Usage: rtorc [flags] [script]")
	fmt.Fprintln(out, "Supported flags:")
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// Run parses command-line flags and runs the first applicable subprogram. It
// returns the exit status of the program.
func Run(fds [3]*os.File, args []string, p Program) int {
	f := &Flags{}
	fs := newFlagSet(f)
	err := fs.Parse(args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			// (*flag.FlagSet).Parse returns ErrHelp when -h or -help was
			// requested but *not* defined. rtorc defines -help, but not -h; so
			// this means that -h has been requested. Handle this by printing
			// the same message as an undefined flag.
			fmt.Fprintln(fds[2], "flag provided but not defined: -h")
		} else {
			fmt.Fprintln(fds[2], err)
		}
		usage(fds[2], fs)
		return 2
	}

	f.Conf, err = LoadConfig(f.Config)
	if err != nil {
		fmt.Fprintln(fds[2], err)
		return 2
	}
	f.Conf.applyTo(f)

	if f.Log != "" {
		err = logutil.SetOutputFile(f.Log)
		if err != nil {
			fmt.Fprintln(fds[2], err)
		}
	}

	if f.Help {
		usage(fds[1], fs)
		return 0
	}

	err = p.Run(fds, f, fs.Args())
	var next nextProgramError
	if errors.As(err, &next) {
		next.cleanup(fds)
		err = ErrNotSuitable
	}
	if err == nil {
		return 0
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintln(fds[2], msg)
	}
	var (
		badUsage badUsageError
		exit     exitError
	)
	switch {
	case errors.As(err, &badUsage):
		usage(fds[2], fs)
	case errors.As(err, &exit):
		return exit.exit
	}
	return 2
}

// Composite returns a Program that tries each of the given programs,
// terminating at the first one that doesn't return ErrNotSuitable or an error
// from NextProgram. The cleanup functions passed to NextProgram are called
// after that program finishes, in reverse order.
func Composite(programs ...Program) Program {
	return compositeProgram(programs)
}

type compositeProgram []Program

func (cp compositeProgram) Run(fds [3]*os.File, f *Flags, args []string) error {
	var nexts []nextProgramError
	defer func() {
		for i := len(nexts) - 1; i >= 0; i-- {
			nexts[i].cleanup(fds)
		}
	}()
	for _, p := range cp {
		err := p.Run(fds, f, args)
		if next, ok := err.(nextProgramError); ok {
			nexts = append(nexts, next)
		} else if err != ErrNotSuitable {
			return err
		}
	}
	// If we have reached here, all subprograms have returned ErrNotSuitable
	return ErrNotSuitable
}

// ErrNotSuitable is a special error that may be returned by Program.Run, to
// signify that this Program should not be run. It is useful when a Program is
// used in Composite.
var ErrNotSuitable = errors.New("internal error: no suitable subprogram")

// NextProgram returns a special error that may be returned by Program.Run
// when used in Composite. It makes Composite go on to the next program like
// ErrNotSuitable, and call the cleanup functions when the program that
// eventually runs has finished.
func NextProgram(cleanups ...func([3]*os.File)) error { return nextProgramError{cleanups} }

type nextProgramError struct{ cleanups []func([3]*os.File) }

func (e nextProgramError) Error() string { return "internal error: next program" }

func (e nextProgramError) cleanup(fds [3]*os.File) {
	for i := len(e.cleanups) - 1; i >= 0; i-- {
		e.cleanups[i](fds)
	}
}

// BadUsage returns a special error that may be returned by Program.Run. It
// causes the main function to print out a message, the usage information and
// exit with 2.
func BadUsage(msg string) error { return badUsageError{msg} }

type badUsageError struct{ msg string }

func (e badUsageError) Error() string { return e.msg }

// Exit returns a special error that may be returned by Program.Run. It causes
// the main function to exit with the given code without printing any error
// messages. Exit(0) returns nil.
func Exit(exit int) error {
	if exit == 0 {
		return nil
	}
	return exitError{exit}
}

type exitError struct{ exit int }

func (e exitError) Error() string { return "" }

// Program represents a subprogram.
type Program interface {
	// Run runs the subprogram.
	Run(fds [3]*os.File, f *Flags, args []string) error
}
