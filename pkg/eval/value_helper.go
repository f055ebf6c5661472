package eval

import (
	"strconv"
	"strings"

	"src.rtorc.sh/pkg/cmdmap"
	"src.rtorc.sh/pkg/errs"
	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/parse"
)

func tooFew(name string, want int) error {
	return errs.ArgumentShape{Name: name, Problem: errs.TooFewArguments,
		Actual: "want at least " + strconv.Itoa(want)}
}

// Returns the elements of a List argument, requiring at least n of them.
func listArgs(name string, args obj.Object, n int) ([]obj.Object, error) {
	l := args.Elems()
	if len(l) < n {
		return nil, tooFew(name, n)
	}
	return l, nil
}

func stringArg(name string, o obj.Object) (string, error) {
	s, err := cmdmap.NormalizeArgs(name, cmdmap.ArgString, o)
	if err != nil {
		return "", err
	}
	return s.AsString(), nil
}

func valueArg(name string, o obj.Object) (int64, error) {
	v, err := cmdmap.NormalizeArgs(name, cmdmap.ArgValue, o)
	if err != nil {
		return 0, err
	}
	return v.AsValue(), nil
}

func stringList(ss []string) obj.Object {
	return obj.NewStringList(ss...)
}

// Renders an Object as plain text: Strings as is, Values in decimal, and the
// elements of Lists concatenated.
func toText(o obj.Object) string {
	var sb strings.Builder
	writeText(&sb, o)
	return sb.String()
}

func writeText(sb *strings.Builder, o obj.Object) {
	switch o.Kind() {
	case obj.KindValue:
		sb.WriteString(strconv.FormatInt(o.AsValue(), 10))
	case obj.KindString:
		sb.WriteString(o.AsString())
	case obj.KindList:
		for _, elem := range o.AsList() {
			writeText(sb, elem)
		}
	case obj.KindMap, obj.KindCall:
		sb.WriteString(parse.Repr(o))
	}
}
