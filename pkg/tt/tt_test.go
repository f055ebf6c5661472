package tt

import (
	"errors"
	"fmt"
	"testing"
)

type testT []string

func (t *testT) Helper() {}

func (t *testT) Errorf(format string, args ...any) {
	*t = append(*t, fmt.Sprintf(format, args...))
}

func add(x, y int) int { return x + y }

var errDivideByZero = errors.New("divide by zero")

func divide(x, y int) (int, error) {
	if y == 0 {
		return 0, fmt.Errorf("divide %d: %w", x, errDivideByZero)
	}
	return x / y, nil
}

func TestTest_Passing(t *testing.T) {
	Test(t, Fn("add", add), Table{
		Args(1, 2).Rets(3),
		Args(-1, 1).Rets(0),
	})
	Test(t, Fn("divide", divide), Table{
		Args(6, 3).Rets(2, nil),
		Args(1, 0).Rets(Any, ErrorMatching("zero")),
		Args(1, 0).Rets(0, ErrorIs(errDivideByZero)),
	})
}

func TestTest_Failing(t *testing.T) {
	var ft testT
	Test(&ft, Fn("add", add), Table{
		Args(1, 2).Rets(4),
	})
	if len(ft) != 1 || ft[0] != "add(1, 2) -> 3, want 4" {
		t.Errorf("got failures %q", ft)
	}

	ft = nil
	Test(&ft, Fn("divide", divide).ArgsFmt("%d/%d"), Table{
		Args(1, 0).Rets(0, nil),
	})
	if len(ft) != 1 || ft[0] != "divide(1/0) -> (0, divide 1: divide by zero), want (0, <nil>)" {
		t.Errorf("got failures %q", ft)
	}
}
