package shell

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.rtorc.sh/pkg/env"
	"src.rtorc.sh/pkg/must"
	. "src.rtorc.sh/pkg/prog/progtest"
	"src.rtorc.sh/pkg/store"
	"src.rtorc.sh/pkg/testutil"
)

// Points all the default locations to temporary directories and changes into
// a temporary directory.
func setup(t *testing.T) {
	t.Helper()
	testutil.Setenv(t, env.HOME, t.TempDir())
	testutil.Setenv(t, env.XDG_CONFIG_HOME, t.TempDir())
	testutil.Setenv(t, env.XDG_DATA_HOME, t.TempDir())
	testutil.Setenv(t, env.XDG_RUNTIME_DIR, t.TempDir())
	testutil.InTempDir(t)
}

func TestBadUsage(t *testing.T) {
	setup(t)
	Test(t, Program{},
		ThatRtorc("-c").
			ExitsWith(2).
			WritesStderrContaining("-c requires an argument"),
		ThatRtorc("a.rc", "b.rc").
			ExitsWith(2).
			WritesStderrContaining("only one script may be given"),
		ThatRtorc("-compileonly").
			ExitsWith(2).
			WritesStderrContaining("-compileonly requires a script"),
	)
}

func TestInteract(t *testing.T) {
	setup(t)
	Test(t, Program{},
		ThatRtorc("-norc").
			WithStdin("cat=a,b\nprint=hi\nmath.add=1,2\n\n").
			WritesStdout("ab\nhi\n3\n").
			WritesStderr("rtorc> rtorc> rtorc> rtorc> rtorc> "),
		// The last line runs even without a newline.
		ThatRtorc("-norc").
			WithStdin("print=last").
			WritesStdout("last\n").
			WritesStderrContaining("rtorc> "),
		// Errors are shown and don't end the session.
		ThatRtorc("-norc").
			WithStdin("no.such=\nprint=after\n").
			WritesStdout("after\n").
			WritesStderrContaining(`command "no.such" does not exist`),
		ThatRtorc("-norc").
			WithStdin("cat={a\n").
			WritesStderrContaining("Parse error"),
	)
}

func TestInteract_RC(t *testing.T) {
	setup(t)
	must.WriteFile("rc", "print=\"from rc\"\nmethod.insert=my.count,value,42\n")
	must.WriteFile("bad-rc", "no.such=\n")

	Test(t, Program{},
		ThatRtorc("-rc", "rc").
			WithStdin("my.count=\n").
			WritesStdout("from rc\n42\n").
			WritesStderrContaining("rtorc> "),
		ThatRtorc("-rc", "rc", "-norc").
			WithStdin("").
			WritesStderr("rtorc> "),
		ThatRtorc("-rc", "bad-rc").
			WithStdin("").
			WritesStderrContaining(`command "no.such" does not exist`),
		// A nonexistent rc file is OK.
		ThatRtorc("-rc", "nonexistent").
			WithStdin("").
			WritesStderr("rtorc> "),
	)
}

func TestInteract_SavesHistory(t *testing.T) {
	setup(t)
	Test(t, Program{},
		ThatRtorc("-norc", "-db", "db").
			WithStdin("cat=a\n\nprint=b\n").
			WritesStdout("a\nb\n").
			WritesStderrContaining("rtorc> "),
	)

	st, err := store.NewStore("db")
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	cmds, err := loadHistory(st)
	if err != nil {
		t.Fatal(err)
	}
	var texts []string
	for _, cmd := range cmds {
		texts = append(texts, cmd.Text)
	}
	if diff := cmp.Diff([]string{"cat=a", "print=b"}, texts); diff != "" {
		t.Errorf("history (-want +got):\n%s", diff)
	}
}
