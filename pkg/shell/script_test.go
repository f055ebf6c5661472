package shell

import (
	"testing"

	"src.rtorc.sh/pkg/must"
	. "src.rtorc.sh/pkg/prog/progtest"
)

func TestScript(t *testing.T) {
	setup(t)
	must.WriteFile("hello.rc", "print=hello\n# comment\n\nprint=a,\\\n  b\n")
	must.WriteFile("invalid-utf8.rc", "\xff")
	must.WriteFile("fails.rc", "print=before\nno.such=\nprint=after\n")

	Test(t, Program{},
		ThatRtorc("hello.rc").WritesStdout("hello\nab\n"),
		ThatRtorc("-c", "print=hello").WritesStdout("hello\n"),
		ThatRtorc("-c", "print=a ; print=b\nprint=c").WritesStdout("a\nb\nc\n"),

		ThatRtorc("invalid-utf8.rc").
			ExitsWith(2).
			WritesStderrContaining("cannot read script"),
		ThatRtorc("non-existent.rc").
			ExitsWith(2).
			WritesStderrContaining("cannot read script"),

		// The first error stops the script.
		ThatRtorc("fails.rc").
			ExitsWith(2).
			WritesStdout("before\n").
			WritesStderrContaining("fails.rc:2"),

		// parse error
		ThatRtorc("-c", `print="a`).
			ExitsWith(2).
			WritesStderrContaining("parse error"),
		// parse error with -compileonly
		ThatRtorc("-compileonly", "-c", `print="a`).
			ExitsWith(2).
			WritesStderrContaining("Parse error"),
		// parse error with -compileonly -json
		ThatRtorc("-compileonly", "-json", "-c", "print=hi\ncat=\"x").
			ExitsWith(2).
			WritesStdout(`[{"fileName":"code from -c","start":13,"end":14,"message":"unterminated quote"}]`+"\n"),
		// multiple parse errors with -compileonly -json
		ThatRtorc("-compileonly", "-json", "-c", "cat=\"x\ncat=\"y").
			ExitsWith(2).
			WritesStdout(`[{"fileName":"code from -c","start":4,"end":5,"message":"unterminated quote"},{"fileName":"code from -c","start":11,"end":12,"message":"unterminated quote"}]`+"\n"),
		// no parse errors with -compileonly -json
		ThatRtorc("-compileonly", "-json", "-c", "print=hi").
			WritesStdout("[]\n"),

		// command errors are not found by -compileonly
		ThatRtorc("-compileonly", "-c", "no.such=").DoesNothing(),
		ThatRtorc("-c", "no.such=").
			ExitsWith(2).
			WritesStderrContaining(`command "no.such" does not exist`),
	)
}
