package errs

import (
	"errors"
	"fmt"
	"testing"
)

var errorMessageTests = []struct {
	err      error
	wantMsg  string
	wantKind ErrorKind
}{
	{
		UnknownCommand{Name: "x.val"},
		`command "x.val" does not exist`, KindUnknownCommand,
	},
	{
		WrongTarget{Name: "p.address", Want: "peer", Actual: "download"},
		`command "p.address" needs a peer target, but got download`, KindWrongTarget,
	},
	{
		NotExposed{Name: "secret"},
		`command "secret" is not exposed to external callers`, KindNotExposed,
	},
	{
		ArgumentShape{Name: "x.val.set", Problem: NotAValue, Actual: "abc"},
		"x.val.set: not a value: abc", KindArgumentShape,
	},
	{
		ArgumentShape{Problem: TooManyArguments},
		"too many arguments", KindArgumentShape,
	},
	{
		TypeMismatch{Key: "x", Want: "value", Actual: "string"},
		`type mismatch: "x" holds a value, got string`, KindTypeMismatch,
	},
	{
		NotModifiable{Key: "x"}, `"x" is not modifiable`, KindNotModifiable,
	},
	{
		DuplicateKey{Key: "x"}, `"x" already exists`, KindDuplicateKey,
	},
	{
		KeyNotFound{Key: "x"}, `"x" not found`, KindKeyNotFound,
	},
}

func TestErrorMessagesAndKinds(t *testing.T) {
	for _, test := range errorMessageTests {
		if gotMsg := test.err.Error(); gotMsg != test.wantMsg {
			t.Errorf("got message %v, want %v", gotMsg, test.wantMsg)
		}
		if gotKind := Kind(test.err); gotKind != test.wantKind {
			t.Errorf("Kind(%v) -> %v, want %v", test.err, gotKind, test.wantKind)
		}
	}
}

func TestKind_Unwraps(t *testing.T) {
	err := fmt.Errorf("rc:3: %w", DuplicateKey{Key: "x"})
	if Kind(err) != KindDuplicateKey {
		t.Errorf("Kind of wrapped error -> %v", Kind(err))
	}
	if !errors.Is(err, DuplicateKey{Key: "x"}) {
		t.Errorf("errors.Is does not see through wrapping")
	}
	if Kind(errors.New("plain")) != KindOther {
		t.Errorf("Kind of plain error is not KindOther")
	}
}

func TestErrorKindString(t *testing.T) {
	if s := KindNotModifiable.String(); s != "not modifiable" {
		t.Errorf("got %q", s)
	}
	if s := ErrorKind(99).String(); s != "kind(99)" {
		t.Errorf("got %q", s)
	}
}
