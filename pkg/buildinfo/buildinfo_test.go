package buildinfo

import (
	"fmt"
	"runtime"
	"testing"

	. "src.rtorc.sh/pkg/prog/progtest"
	"src.rtorc.sh/pkg/testutil"
)

func TestProgram(t *testing.T) {
	testutil.Setenv(t, "XDG_CONFIG_HOME", t.TempDir())
	fullVersion := Version + VersionSuffix

	Test(t, Program,
		ThatRtorc("-version").WritesStdout(fullVersion+"\n"),
		ThatRtorc("-version", "-json").WritesStdout(`"`+fullVersion+`"`+"\n"),

		ThatRtorc("-buildinfo").WritesStdout(
			fmt.Sprintf(
				"Version: %v\nGo version: %v\nReproducible build: %v\n",
				fullVersion, runtime.Version(), Reproducible)),
		ThatRtorc("-buildinfo", "-json").WritesStdout(
			fmt.Sprintf(`{"version":"%s","goversion":"%s","reproducible":%v}`+"\n",
				fullVersion, runtime.Version(), Reproducible)),

		ThatRtorc().ExitsWith(2).WritesStderr("internal error: no suitable subprogram\n"),
	)
}
