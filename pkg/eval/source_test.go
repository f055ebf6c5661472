package eval_test

import (
	"bufio"
	"errors"
	"strings"
	"testing"

	"src.rtorc.sh/pkg/errs"
	. "src.rtorc.sh/pkg/eval"
	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/parse"
	"src.rtorc.sh/pkg/target"
)

func TestSource(t *testing.T) {
	ev := NewEvaler()
	rc := strings.Join([]string{
		"# comment",
		"",
		"method.insert.value=x.v,1",
		`x.v.set=\`,
		"  2",
		"method.insert.value=x.w,3 ; x.w.set=4",
	}, "\n")
	if err := ev.Source("rc", strings.NewReader(rc)); err != nil {
		t.Fatal(err)
	}
	for key, want := range map[string]int64{"x.v": 2, "x.w": 4} {
		got, err := ev.Call(target.None(), key, obj.None())
		if err != nil || !got.Equal(obj.NewValue(want)) {
			t.Errorf("%s -> (%v, %v), want %v", key, got, err, want)
		}
	}
}

func TestSource_Errors(t *testing.T) {
	tests := []struct {
		name     string
		rc       string
		wantLine int
		wantErr  error
	}{
		{"unknown command", "print=a\n\nnope=\nprint=b", 3, errs.UnknownCommand{Name: "nope"}},
		{"parse error", "print=a\n# x\nprint={a", 3, parse.UnclosedBrace},
		{"continued statement", "print=a\nprint=\\\n{b", 2, parse.UnclosedBrace},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ev := NewEvaler()
			var sb strings.Builder
			ev.Stdout = &sb
			err := ev.Source("rc", strings.NewReader(test.rc))
			var serr *SourceError
			if !errors.As(err, &serr) {
				t.Fatalf("got error %v (%T), want *SourceError", err, err)
			}
			if serr.Name != "rc" || serr.Line != test.wantLine {
				t.Errorf("got location %s:%d, want rc:%d", serr.Name, serr.Line, test.wantLine)
			}
			if !errors.Is(err, test.wantErr) {
				t.Errorf("got error %v, want %v", err, test.wantErr)
			}
			if !strings.HasPrefix(err.Error(), "rc:") {
				t.Errorf("error message %q lacks location", err.Error())
			}
			if sb.String() != "a\n" {
				t.Errorf("statements after the error ran: output %q", sb.String())
			}
		})
	}
}

func TestSource_LongLines(t *testing.T) {
	ev := NewEvaler()
	var sb strings.Builder
	ev.Stdout = &sb
	long := strings.Repeat("a", 100<<10)
	if err := ev.Source("rc", strings.NewReader("print="+long+"\n")); err != nil {
		t.Fatalf("line of %d bytes: %v", len(long), err)
	}
	if sb.String() != long+"\n" {
		t.Errorf("long line printed %d bytes, want %d", sb.Len(), len(long)+1)
	}

	err := ev.Source("rc", strings.NewReader("print=a\nprint="+strings.Repeat("a", 2<<20)))
	var serr *SourceError
	if !errors.As(err, &serr) || serr.Line != 2 || !errors.Is(err, bufio.ErrTooLong) {
		t.Errorf("line over the limit -> %v, want rc:2 with %v", err, bufio.ErrTooLong)
	}
}
