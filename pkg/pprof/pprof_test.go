package pprof_test

import (
	"os"
	"testing"

	"src.rtorc.sh/pkg/pprof"
	"src.rtorc.sh/pkg/prog"
	"src.rtorc.sh/pkg/prog/progtest"
	"src.rtorc.sh/pkg/testutil"
)

var (
	Test      = progtest.Test
	ThatRtorc = progtest.ThatRtorc
)

func TestProgram(t *testing.T) {
	testutil.Setenv(t, "XDG_CONFIG_HOME", t.TempDir())
	testutil.InTempDir(t)

	Test(t, prog.Composite(pprof.Program, noopProgram{}),
		ThatRtorc("-cpuprofile", "cpuprof").DoesNothing(),
		ThatRtorc("-allocsprofile", "allocsprof").DoesNothing(),
		ThatRtorc("-cpuprofile", "/a/bad/path").
			WritesStderrContaining("Warning: cannot create CPU profile:"),
		ThatRtorc("-allocsprofile", "/a/bad/path").
			WritesStderrContaining("Warning: cannot create memory allocation profile:"),
	)

	// There isn't much to test beyond a sanity check that the profile files
	// now exist.
	for _, name := range []string{"cpuprof", "allocsprof"} {
		if _, err := os.Stat(name); err != nil {
			t.Errorf("profile file %s does not exist: %v", name, err)
		}
	}
}

type noopProgram struct{}

func (noopProgram) Run([3]*os.File, *prog.Flags, []string) error { return nil }
