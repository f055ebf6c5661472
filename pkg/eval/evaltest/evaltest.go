// Package evaltest provides a framework for testing statements of the command
// language.
//
// The entry point for the framework is the Test function, which accepts a
// *testing.T and any number of test cases.
//
// Test cases are constructed using the That function, followed by method calls
// that add additional information to it.
//
// Example:
//
//	Test(t,
//	    That("cat=a,b").Returns("ab"),
//	    That("print=x").Prints("x\n"),
//	    That("x.val=").Throws(errs.UnknownCommand{Name: "x.val"}))
//
// If some setup is needed, use the TestWithSetup function instead.
package evaltest

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.rtorc.sh/pkg/errs"
	"src.rtorc.sh/pkg/eval"
	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/parse"
	"src.rtorc.sh/pkg/target"
)

// Case is a test case that can be used in Test.
type Case struct {
	codes  []string
	setup  func(ev *eval.Evaler)
	target func(ev *eval.Evaler) target.Target
	verify func(t *testing.T, ev *eval.Evaler)
	want   result
}

type result struct {
	Value    *obj.Object
	Output   []byte
	Logged   []byte
	Error    error
	anyError bool
}

// That returns a new Case with the specified statements. Multiple arguments are
// joined with semicolons and executed as one piece. To specify multiple pieces
// of code that are executed separately, use the Then method.
func That(stmts ...string) Case {
	return Case{codes: []string{strings.Join(stmts, ";")}}
}

// Then returns a new Case that executes the given statements in addition, after
// the previous pieces succeed.
func (c Case) Then(stmts ...string) Case {
	c.codes = append(c.codes, strings.Join(stmts, ";"))
	return c
}

// WithSetup returns a new Case with the given setup function executed on the
// Evaler before the code is executed.
func (c Case) WithSetup(f func(*eval.Evaler)) Case {
	c.setup = f
	return c
}

// On returns a new Case whose statements run against the target returned by f.
func (c Case) On(f func(*eval.Evaler) target.Target) Case {
	c.target = f
	return c
}

// Passes returns a new Case that runs an additional verification function
// after the code is executed.
func (c Case) Passes(f func(t *testing.T, ev *eval.Evaler)) Case {
	c.verify = f
	return c
}

// Returns returns a new Case that requires the last piece of code to return the
// given value. Besides obj.Object, the value may be an int or int64 (a Value),
// a string (a String), a bool (a Value of 1 or 0) or a []string (a List of
// Strings).
func (c Case) Returns(v any) Case {
	o := ToObject(v)
	c.want.Value = &o
	return c
}

// Prints returns a new Case that requires the code to write the given text to
// the output of print.
func (c Case) Prints(s string) Case {
	c.want.Output = []byte(s)
	return c
}

// Logs returns a new Case that requires the error log to contain the given
// text.
func (c Case) Logs(s string) Case {
	c.want.Logged = []byte(s)
	return c
}

// Throws returns a new Case that requires the code to fail with an error
// matching err. The error is matched with errors.Is, unless err was returned by
// ErrorWithKind or ErrorWithMessage.
func (c Case) Throws(err error) Case {
	c.want.Error = err
	return c
}

// ThrowsAny returns a new Case that requires the code to fail.
func (c Case) ThrowsAny() Case {
	c.want.anyError = true
	return c
}

// DoesNothing returns c unchanged. It is useful to mark tests that don't have
// any observable effect, for example:
//
//	That("method.rlookup.clear=x").DoesNothing()
func (c Case) DoesNothing() Case {
	return c
}

// ToObject converts common Go values to Objects.
func ToObject(v any) obj.Object {
	switch v := v.(type) {
	case obj.Object:
		return v
	case int:
		return obj.NewValue(int64(v))
	case int64:
		return obj.NewValue(v)
	case string:
		return obj.NewString(v)
	case bool:
		return obj.NewBool(v)
	case []string:
		return obj.NewStringList(v...)
	case nil:
		return obj.None()
	}
	panic(fmt.Sprintf("evaltest: cannot convert %T to Object", v))
}

// Test runs test cases. For each test case, a new Evaler is created with
// NewEvaler.
func Test(t *testing.T, tests ...Case) {
	t.Helper()
	TestWithSetup(t, func(*eval.Evaler) {}, tests...)
}

// TestWithSetup runs test cases. For each test case, a new Evaler is created
// with NewEvaler and passed to the setup function.
func TestWithSetup(t *testing.T, setup func(*eval.Evaler), tests ...Case) {
	t.Helper()
	for _, tc := range tests {
		t.Run(strings.Join(tc.codes, "\n"), func(t *testing.T) {
			t.Helper()
			ev := eval.NewEvaler()
			defer ev.Close()
			var output, logged bytes.Buffer
			ev.Stdout = &output
			ev.ErrLog = log.New(&logged, "", 0)
			setup(ev)
			if tc.setup != nil {
				tc.setup(ev)
			}
			tgt := target.None()
			if tc.target != nil {
				tgt = tc.target(ev)
			}

			var (
				value obj.Object
				err   error
			)
			for _, code := range tc.codes {
				value, err = ev.Exec(tgt, parse.Source{Name: "[test]", Code: code})
				if err != nil {
					break
				}
			}

			if tc.verify != nil {
				tc.verify(t, ev)
			}
			if tc.want.Value != nil && err == nil && !value.Equal(*tc.want.Value) {
				t.Errorf("got value %v, want %v", value, *tc.want.Value)
			}
			if !bytes.Equal(tc.want.Output, output.Bytes()) {
				t.Errorf("got output (-want +got):\n%s",
					cmp.Diff(string(tc.want.Output), output.String()))
			}
			if tc.want.Logged != nil && !bytes.Contains(logged.Bytes(), tc.want.Logged) {
				t.Errorf("got log %q, want log containing %q", logged.Bytes(), tc.want.Logged)
			}
			if !matchErr(tc.want.Error, tc.want.anyError, err) {
				t.Errorf("got error %v (%T), want %v", err, err, tc.want.Error)
			}
		})
	}
}

func matchErr(want error, anyError bool, got error) bool {
	if anyError {
		return got != nil
	}
	if want == nil {
		return got == nil
	}
	if m, ok := want.(errorMatcher); ok {
		return m.matchError(got)
	}
	return errors.Is(got, want)
}

type errorMatcher interface{ matchError(error) bool }

// ErrorWithKind returns an error that matches any error of the given kind.
func ErrorWithKind(k errs.ErrorKind) error { return errorWithKind{k} }

type errorWithKind struct{ kind errs.ErrorKind }

func (e errorWithKind) Error() string { return "any error of kind " + e.kind.String() }

func (e errorWithKind) matchError(err error) bool {
	return err != nil && errs.Kind(err) == e.kind
}

// ErrorWithMessage returns an error that matches any error whose message
// contains msg.
func ErrorWithMessage(msg string) error { return errorWithMessage{msg} }

type errorWithMessage struct{ msg string }

func (e errorWithMessage) Error() string { return "any error containing " + e.msg }

func (e errorWithMessage) matchError(err error) bool {
	return err != nil && strings.Contains(err.Error(), e.msg)
}
