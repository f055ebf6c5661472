// Package pprof adds profiling support to rtorc.
package pprof

import (
	"fmt"
	"os"
	"runtime/pprof"

	"src.rtorc.sh/pkg/prog"
)

// Program adds support for the -cpuprofile and -allocsprofile flags. It must
// be used in prog.Composite before the program to profile.
var Program prog.Program = program{}

type program struct{}

func (program) Run(fds [3]*os.File, f *prog.Flags, _ []string) error {
	var cleanups []func([3]*os.File)
	if f.CPUProfile != "" {
		out, err := os.Create(f.CPUProfile)
		if err != nil {
			fmt.Fprintln(fds[2], "Warning: cannot create CPU profile:", err)
			fmt.Fprintln(fds[2], "Continuing without CPU profiling.")
		} else if err := pprof.StartCPUProfile(out); err != nil {
			fmt.Fprintln(fds[2], "Warning: cannot start CPU profile:", err)
			out.Close()
		} else {
			cleanups = append(cleanups, func([3]*os.File) {
				pprof.StopCPUProfile()
				out.Close()
			})
		}
	}
	if f.AllocsProfile != "" {
		out, err := os.Create(f.AllocsProfile)
		if err != nil {
			fmt.Fprintln(fds[2], "Warning: cannot create memory allocation profile:", err)
			fmt.Fprintln(fds[2], "Continuing without memory allocation profiling.")
		} else {
			cleanups = append(cleanups, func([3]*os.File) {
				pprof.Lookup("allocs").WriteTo(out, 0)
				out.Close()
			})
		}
	}
	return prog.NextProgram(cleanups...)
}
