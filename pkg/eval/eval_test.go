package eval_test

import (
	"bytes"
	"errors"
	"log"
	"strconv"
	"testing"

	"src.rtorc.sh/pkg/cmdmap"
	"src.rtorc.sh/pkg/engine"
	"src.rtorc.sh/pkg/errs"
	. "src.rtorc.sh/pkg/eval"
	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/parse"
	"src.rtorc.sh/pkg/target"
	"src.rtorc.sh/pkg/tt"

	. "src.rtorc.sh/pkg/eval/evaltest"
)

func TestDispatch(t *testing.T) {
	Test(t,
		That("nope=").Throws(errs.UnknownCommand{Name: "nope"}),
		That("print={a").Throws(parse.UnclosedBrace),
		That("cat=a;cat=b").Returns("b"),
		// A $ item is evaluated before the outer command runs; quoted text
		// is always literal.
		That("cat=$cat=a").Returns("a"),
		That("cat={x,$cat=y}").Returns("xy"),
		That(`cat="$cat=y"`).Returns("$cat=y"),
		// A single argument and a one-element list are the same to commands
		// taking a value.
		That("to_kb=2048").Returns("2.0"),
		That("to_kb={2048}").Returns("2.0"),
		That("to_kb=1,2").Throws(ErrorWithKind(errs.KindArgumentShape)),
		That("system.pid=x").Throws(ErrorWithKind(errs.KindArgumentShape)),
		That("d.name=").Throws(errs.WrongTarget{Name: "d.name", Want: "download", Actual: "none"}),
	)
}

func TestCall_WrongTargetDoesNotInvokeHandler(t *testing.T) {
	ev := NewEvaler()
	calls := 0
	ev.Commands.Insert(cmdmap.Entry{
		Name:  "p.counted",
		Shape: cmdmap.Void.On(cmdmap.TargetPeer),
		Flags: cmdmap.FlagPublic,
		Handler: func(target.Target, obj.Object) (obj.Object, error) {
			calls++
			return obj.None(), nil
		},
	})
	d := engine.NewDownload("AA", "x", 0)
	p := d.AddPeer("p1", "10.0.0.1:6881")

	_, err := ev.Call(target.OfDownload(d), "p.counted", obj.None())
	wantErr := errs.WrongTarget{Name: "p.counted", Want: "peer", Actual: "download"}
	if !errors.Is(err, wantErr) {
		t.Errorf("got error %v, want %v", err, wantErr)
	}
	if calls != 0 {
		t.Errorf("handler called %d times against a wrong target", calls)
	}

	if _, err := ev.Call(target.OfPeer(p), "p.counted", obj.None()); err != nil {
		t.Errorf("got error %v", err)
	}
	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
}

func TestCallExternal(t *testing.T) {
	ev := NewEvaler()
	mustExec(t, ev, "method.insert=x.secret,value|private,1", "method.insert=x.open,value,2")

	tests := []struct {
		name    string
		want    obj.Object
		wantErr error
	}{
		{"x.open", obj.NewValue(2), nil},
		{"x.secret", obj.None(), errs.NotExposed{Name: "x.secret"}},
		{"import", obj.None(), errs.NotExposed{Name: "import"}},
		{"nope", obj.None(), errs.UnknownCommand{Name: "nope"}},
	}
	for _, test := range tests {
		got, err := ev.CallExternal(target.None(), test.name, obj.None())
		if !got.Equal(test.want) || !errors.Is(err, test.wantErr) {
			t.Errorf("CallExternal(%q) -> (%v, %v), want (%v, %v)",
				test.name, got, err, test.want, test.wantErr)
		}
	}
	// Internal calls are not restricted.
	if got, err := ev.Call(target.None(), "x.secret", obj.None()); err != nil || !got.Equal(obj.NewValue(1)) {
		t.Errorf("Call(x.secret) -> (%v, %v)", got, err)
	}
}

func TestCallCatch(t *testing.T) {
	ev := NewEvaler()
	var buf bytes.Buffer
	ev.ErrLog = log.New(&buf, "", 0)

	got := ev.CallCatch(target.None(), "math.div", obj.NewList(obj.NewValue(1), obj.NewValue(0)), "schedule foo: ")
	if !got.IsNone() {
		t.Errorf("CallCatch returned %v on error", got)
	}
	if want := "schedule foo: divide by zero\n"; buf.String() != want {
		t.Errorf("logged %q, want %q", buf.String(), want)
	}

	got = ev.CallCatch(target.None(), "math.add", obj.NewList(obj.NewValue(1), obj.NewValue(2)), "")
	if !got.Equal(obj.NewValue(3)) {
		t.Errorf("CallCatch returned %v, want 3", got)
	}
}

func TestFire(t *testing.T) {
	Test(t,
		That(`method.insert.simple=event.test,"print=fired"`).
			Passes(func(t *testing.T, ev *Evaler) {
				ev.Fire(target.None(), "event.test")
				ev.Fire(target.None(), "event.absent")
			}).
			Prints("fired\n"),
		That(`method.insert.simple=event.test,"nope="`).
			Passes(func(t *testing.T, ev *Evaler) { ev.Fire(target.None(), "event.test") }).
			Logs(`event event.test: command "nope" does not exist`),
	)
}

func TestRedirects(t *testing.T) {
	Test(t,
		That("method.insert.value=x.v,3", "system.method.get=x.v").Returns(3),
		That("method.insert.value=x.v,3", "method.get=x.v").Returns(3),
		That("method.redirect=x.alias,cat", "x.alias=a,b").Returns("ab"),
		That("method.redirect=x.alias,cat", "method.redirect=x.alias2,x.alias", "x.alias2=a").
			Returns("a"),
		That("method.redirect=x.alias,cat", "method.erase=x.alias", "x.alias=").
			Throws(errs.UnknownCommand{Name: "x.alias"}),
		That("method.redirect=x.alias,nope").Throws(errs.UnknownCommand{Name: "nope"}),
		// Errors of the destination propagate through the alias.
		That("to_kb=abc").Throws(ErrorWithKind(errs.KindArgumentShape)),
		That("method.redirect=x.alias,to_kb", "x.alias=abc").
			Throws(ErrorWithKind(errs.KindArgumentShape)),
		That("method.redirect=x.alias,to_kb", "x.alias=abc").
			Throws(ErrorWithMessage(errs.NotAValue + ": abc")),
		That("method.redirect=x.alias,to_kb", "x.alias=2048").Returns("2.0"),
		That("method.redirect=x.alias,d.name", "x.alias=").
			Throws(ErrorWithKind(errs.KindWrongTarget)),
		That("method.redirect=cat,print").Throws(errs.DuplicateKey{Key: "cat"}),
		// Built-in commands cannot be erased.
		That("method.erase=cat").Throws(errs.NotModifiable{Key: "cat"}),
	)
}

func TestTruthy(t *testing.T) {
	tt.Test(t, tt.Fn("Truthy", Truthy), tt.Table{
		Args(obj.None()).Rets(false),
		Args(obj.NewValue(0)).Rets(false),
		Args(obj.NewValue(-1)).Rets(true),
		Args(obj.NewString("")).Rets(false),
		Args(obj.NewString("0")).Rets(true),
		Args(obj.NewList()).Rets(false),
		Args(obj.NewList(obj.NewValue(0), obj.NewValue(1))).Rets(false),
		Args(obj.NewList(obj.NewList(obj.NewString("x")))).Rets(true),
		Args(obj.NewMap(map[string]obj.Object{"a": obj.NewValue(1)})).Rets(false),
		Args(obj.NewCall("true", obj.None())).Rets(false),
	})
}

var Args = tt.Args

func mustExec(t *testing.T, ev *Evaler, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		if _, err := ev.Exec(target.None(), parse.Source{Name: "[test]", Code: stmt}); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
}

func errUnknown(name string) error { return errs.UnknownCommand{Name: name} }

func itoa(i int) string { return strconv.Itoa(i) }
