// Package progtest contains utilities for testing [prog.Program] instances by
// running them against pipes.
package progtest

import (
	"io"
	"os"
	"strings"
	"testing"

	"src.rtorc.sh/pkg/must"
	"src.rtorc.sh/pkg/prog"
)

// Case is a test case for a Program. It is constructed with ThatRtorc and
// refined with its methods.
type Case struct {
	args  []string
	stdin string
	want  result
}

type result struct {
	exit   int
	stdout output
	stderr output
}

type output struct {
	content string
	partial bool
}

func (o output) matches(s string) bool {
	if o.partial {
		return strings.Contains(s, o.content)
	}
	return o.content == s
}

// ThatRtorc returns a new Case with the specified command-line arguments. By
// default the Case expects the program to exit with 0 and output nothing.
func ThatRtorc(args ...string) Case {
	return Case{args: append([]string{"rtorc"}, args...)}
}

// WithStdin returns an altered Case that feeds the given string to stdin.
func (c Case) WithStdin(s string) Case {
	c.stdin = s
	return c
}

// DoesNothing returns c itself. It is useful to mark tests that otherwise
// don't have any expectations, for example:
//
//	ThatRtorc("-norc").DoesNothing()
func (c Case) DoesNothing() Case { return c }

// ExitsWith returns an altered Case that requires the program to return with
// the given exit code.
func (c Case) ExitsWith(code int) Case {
	c.want.exit = code
	return c
}

// WritesStdout returns an altered Case that requires the program to write
// exactly the given text to stdout.
func (c Case) WritesStdout(s string) Case {
	c.want.stdout = output{content: s}
	return c
}

// WritesStdoutContaining returns an altered Case that requires the program to
// write output to stdout that contains the given text as a substring.
func (c Case) WritesStdoutContaining(s string) Case {
	c.want.stdout = output{content: s, partial: true}
	return c
}

// WritesStderr returns an altered Case that requires the program to write
// exactly the given text to stderr.
func (c Case) WritesStderr(s string) Case {
	c.want.stderr = output{content: s}
	return c
}

// WritesStderrContaining returns an altered Case that requires the program to
// write output to stderr that contains the given text as a substring.
func (c Case) WritesStderrContaining(s string) Case {
	c.want.stderr = output{content: s, partial: true}
	return c
}

// Test runs test cases against a given program.
func Test(t *testing.T, p prog.Program, cases ...Case) {
	t.Helper()
	for _, c := range cases {
		t.Run(strings.Join(c.args, " "), func(t *testing.T) {
			t.Helper()
			exit, stdout, stderr := Run(p, c.stdin, c.args...)
			if exit != c.want.exit {
				t.Errorf("got exit %v, want %v", exit, c.want.exit)
			}
			if !c.want.stdout.matches(stdout) {
				t.Errorf("got stdout %q, want %s", stdout, c.want.stdout.describe())
			}
			if !c.want.stderr.matches(stderr) {
				t.Errorf("got stderr %q, want %s", stderr, c.want.stderr.describe())
			}
		})
	}
}

func (o output) describe() string {
	if o.partial {
		return "containing " + quote(o.content)
	}
	return quote(o.content)
}

func quote(s string) string { return `"` + strings.ReplaceAll(s, "\n", `\n`) + `"` }

// Run runs p with the given stdin and arguments, which should include argv[0].
// It returns the exit code and the output written to stdout and stderr.
func Run(p prog.Program, stdin string, args ...string) (exit int, stdout, stderr string) {
	r0, w0 := must.Pipe()
	r1, w1 := must.Pipe()
	r2, w2 := must.Pipe()

	go func() {
		io.WriteString(w0, stdin)
		w0.Close()
	}()
	// Outputs are read concurrently so that a program writing more than the
	// pipe buffer does not block.
	outCh := readAllAsync(r1)
	errCh := readAllAsync(r2)

	exit = prog.Run([3]*os.File{r0, w1, w2}, args, p)
	r0.Close()
	w1.Close()
	w2.Close()
	return exit, <-outCh, <-errCh
}

func readAllAsync(r *os.File) <-chan string {
	ch := make(chan string, 1)
	go func() {
		ch <- string(must.ReadAllAndClose(r))
	}()
	return ch
}
