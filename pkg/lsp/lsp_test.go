package lsp

import (
	"testing"

	"src.rtorc.sh/pkg/env"
	. "src.rtorc.sh/pkg/prog/progtest"
	"src.rtorc.sh/pkg/testutil"
)

func TestProgram(t *testing.T) {
	testutil.Setenv(t, env.XDG_CONFIG_HOME, t.TempDir())
	Test(t, Program,
		ThatRtorc().
			ExitsWith(2).
			WritesStderr("internal error: no suitable subprogram\n"),
		// The server exits when the client closes its input.
		ThatRtorc("-lsp").WithStdin("").DoesNothing(),
	)
}
