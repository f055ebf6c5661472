package eval

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"src.rtorc.sh/pkg/cmdmap"
	"src.rtorc.sh/pkg/errs"
	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/parse"
	"src.rtorc.sh/pkg/target"
)

// Miscellaneous commands: output, conversion, arithmetic, comparison and
// introspection.

func init() {
	addBuiltins(
		builtin{name: "print", shape: cmdmap.Generic, flags: pub, fn: printFn,
			doc: "Writes the concatenated arguments and a newline to the output."},
		builtin{name: "cat", shape: cmdmap.Generic, flags: pub, fn: cat,
			doc: "Concatenates the arguments into a string."},
		builtin{name: "value", shape: cmdmap.List, flags: pub, fn: valueFn,
			parm: "number[, base]"},
		builtin{name: "to_kb", shape: cmdmap.Value, flags: pub, fn: toUnit(1 << 10)},
		builtin{name: "to_mb", shape: cmdmap.Value, flags: pub, fn: toUnit(1 << 20)},
		builtin{name: "convert.xb", shape: cmdmap.Value, flags: pub, fn: convertXB,
			doc: "Formats a byte count with a binary unit."},
		builtin{name: "elapsed.less", shape: cmdmap.List, flags: pub, fn: elapsed(true),
			parm: "start time, interval"},
		builtin{name: "elapsed.greater", shape: cmdmap.List, flags: pub, fn: elapsed(false),
			parm: "start time, interval"},

		builtin{name: "math.add", shape: cmdmap.List, flags: pub, fn: fold("math.add", 0, add)},
		builtin{name: "math.sub", shape: cmdmap.List, flags: pub, fn: sub},
		builtin{name: "math.mul", shape: cmdmap.List, flags: pub, fn: fold("math.mul", 1, mul)},
		builtin{name: "math.div", shape: cmdmap.List, flags: pub, fn: divide("math.div", div)},
		builtin{name: "math.mod", shape: cmdmap.List, flags: pub, fn: divide("math.mod", mod)},
		builtin{name: "math.min", shape: cmdmap.List, flags: pub, fn: extremum("math.min", lt)},
		builtin{name: "math.max", shape: cmdmap.List, flags: pub, fn: extremum("math.max", gt)},

		builtin{name: "equal", shape: cmdmap.List, flags: pub | raw, fn: comparison("equal", eq)},
		builtin{name: "less", shape: cmdmap.List, flags: pub | raw, fn: comparison("less", lt)},
		builtin{name: "greater", shape: cmdmap.List, flags: pub | raw, fn: comparison("greater", gt)},
		builtin{name: "compare", shape: cmdmap.List.On(cmdmap.TargetPair), flags: pub | raw, fn: compare,
			parm: "order, command...",
			doc:  "Returns whether the first target of the pair sorts before the second."},

		builtin{name: "system.listMethods", shape: cmdmap.Void, flags: pub, fn: listMethods},
		builtin{name: "system.methodHelp", shape: cmdmap.String, flags: pub, fn: methodHelp},
		builtin{name: "system.methodSignature", shape: cmdmap.String, flags: pub, fn: methodSignature},
		builtin{name: "system.pid", shape: cmdmap.Void, flags: pub, fn: pid},
		builtin{name: "system.hostname", shape: cmdmap.Void, flags: pub, fn: hostname},
		builtin{name: "system.time", shape: cmdmap.Void, flags: pub, fn: now},

		builtin{name: "import", shape: cmdmap.String, fn: importFile(false),
			doc: "Runs the statements of a file."},
		builtin{name: "try_import", shape: cmdmap.String, fn: importFile(true),
			doc: "Like import, but a missing file is not an error."},
	)
	for i := 0; i < 10; i++ {
		addBuiltins(builtin{name: "argument." + strconv.Itoa(i), shape: cmdmap.Void,
			flags: pub, fn: argument(i)})
	}
}

func printFn(ev *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
	_, err := io.WriteString(ev.Stdout, toText(args)+"\n")
	return obj.None(), err
}

func cat(_ *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
	return obj.NewString(toText(args)), nil
}

func valueFn(_ *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
	l, err := listArgs("value", args, 1)
	if err != nil {
		return obj.None(), err
	}
	base := int64(0)
	if len(l) > 1 {
		if base, err = valueArg("value", l[1]); err != nil {
			return obj.None(), err
		}
	}
	if l[0].IsValue() {
		return l[0], nil
	}
	s, err := stringArg("value", l[0])
	if err != nil {
		return obj.None(), err
	}
	v, err := parse.ParseValue(s, int(base), 1)
	if err != nil {
		return obj.None(), err
	}
	return obj.NewValue(v), nil
}

func toUnit(unit int64) handlerFunc {
	return func(_ *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
		return obj.NewString(fmt.Sprintf("%.1f", float64(args.AsValue())/float64(unit))), nil
	}
}

func convertXB(_ *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
	v := args.AsValue()
	if v < 0 {
		return obj.NewString("-" + humanize.IBytes(uint64(-v))), nil
	}
	return obj.NewString(humanize.IBytes(uint64(v))), nil
}

func elapsed(less bool) handlerFunc {
	name := "elapsed.greater"
	if less {
		name = "elapsed.less"
	}
	return func(ev *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
		l, err := listArgs(name, args, 2)
		if err != nil {
			return obj.None(), err
		}
		start, err := valueArg(name, l[0])
		if err != nil {
			return obj.None(), err
		}
		interval, err := valueArg(name, l[1])
		if err != nil {
			return obj.None(), err
		}
		if start == 0 {
			return obj.NewBool(false), nil
		}
		d := ev.Clock().Unix() - start
		if less {
			return obj.NewBool(d < interval), nil
		}
		return obj.NewBool(d > interval), nil
	}
}

func values(name string, args obj.Object) ([]int64, error) {
	l := args.AsList()
	vs := make([]int64, len(l))
	for i, elem := range l {
		v, err := valueArg(name, elem)
		if err != nil {
			return nil, err
		}
		vs[i] = v
	}
	return vs, nil
}

func add(a, b int64) int64 { return a + b }
func mul(a, b int64) int64 { return a * b }
func div(a, b int64) int64 { return a / b }
func mod(a, b int64) int64 { return a % b }

func fold(name string, init int64, op func(a, b int64) int64) handlerFunc {
	return func(_ *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
		vs, err := values(name, args)
		if err != nil {
			return obj.None(), err
		}
		acc := init
		for _, v := range vs {
			acc = op(acc, v)
		}
		return obj.NewValue(acc), nil
	}
}

func sub(_ *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
	vs, err := values("math.sub", args)
	if err != nil {
		return obj.None(), err
	}
	if len(vs) == 0 {
		return obj.NewValue(0), nil
	}
	acc := vs[0]
	for _, v := range vs[1:] {
		acc -= v
	}
	return obj.NewValue(acc), nil
}

// ErrDivideByZero is returned by math.div and math.mod.
var ErrDivideByZero = errors.New("divide by zero")

func divide(name string, op func(a, b int64) int64) handlerFunc {
	return func(_ *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
		vs, err := values(name, args)
		if err != nil {
			return obj.None(), err
		}
		if len(vs) == 0 {
			return obj.None(), tooFew(name, 1)
		}
		acc := vs[0]
		for _, v := range vs[1:] {
			if v == 0 {
				return obj.None(), ErrDivideByZero
			}
			acc = op(acc, v)
		}
		return obj.NewValue(acc), nil
	}
}

func extremum(name string, better func(int) bool) handlerFunc {
	return func(_ *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
		vs, err := values(name, args)
		if err != nil {
			return obj.None(), err
		}
		if len(vs) == 0 {
			return obj.None(), tooFew(name, 1)
		}
		acc := vs[0]
		for _, v := range vs[1:] {
			if better(compareInts(v, acc)) {
				acc = v
			}
		}
		return obj.NewValue(acc), nil
	}
}

// Compares two Objects, returning -1, 0 or 1. Values and decimal Strings
// compare numerically, Lists element by element, and everything else by text.
func compareObjects(a, b obj.Object) int {
	if x, ok := asNumber(a); ok {
		if y, ok := asNumber(b); ok {
			return compareInts(x, y)
		}
	}
	if a.IsList() && b.IsList() {
		la, lb := a.AsList(), b.AsList()
		for i := 0; i < len(la) && i < len(lb); i++ {
			if c := compareObjects(la[i], lb[i]); c != 0 {
				return c
			}
		}
		return compareInts(int64(len(la)), int64(len(lb)))
	}
	return strings.Compare(toText(a), toText(b))
}

func asNumber(o obj.Object) (int64, bool) {
	switch o.Kind() {
	case obj.KindValue:
		return o.AsValue(), true
	case obj.KindString:
		v, err := strconv.ParseInt(o.AsString(), 10, 64)
		return v, err == nil
	}
	return 0, false
}

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func eq(c int) bool { return c == 0 }
func lt(c int) bool { return c < 0 }
func gt(c int) bool { return c > 0 }

// Returns a comparison command. Against a Pair target it takes one command,
// runs it against both halves and compares the results. Otherwise it compares
// its two arguments.
func comparison(name string, pred func(int) bool) handlerFunc {
	return func(ev *Evaler, t target.Target, args obj.Object) (obj.Object, error) {
		l := args.AsList()
		if t.Kind() == target.KindPair && len(l) == 1 {
			c, err := ev.comparePair(t, l[0])
			if err != nil {
				return obj.None(), err
			}
			return obj.NewBool(pred(c)), nil
		}
		expanded, err := ev.expand(t, args)
		if err != nil {
			return obj.None(), err
		}
		l, err = listArgs(name, expanded, 2)
		if err != nil {
			return obj.None(), err
		}
		if len(l) > 2 {
			return obj.None(), errs.ArgumentShape{Name: name, Problem: errs.TooManyArguments}
		}
		return obj.NewBool(pred(compareObjects(l[0], l[1]))), nil
	}
}

func (ev *Evaler) comparePair(t target.Target, cmd obj.Object) (int, error) {
	a, b := t.Pair()
	x, err := ev.run(a, cmd)
	if err != nil {
		return 0, err
	}
	y, err := ev.run(b, cmd)
	if err != nil {
		return 0, err
	}
	return compareObjects(x, y), nil
}

func compare(ev *Evaler, t target.Target, args obj.Object) (obj.Object, error) {
	l, err := listArgs("compare", args, 2)
	if err != nil {
		return obj.None(), err
	}
	orderArg, err := ev.expand(t, l[0])
	if err != nil {
		return obj.None(), err
	}
	order, err := stringArg("compare", orderArg)
	if err != nil {
		return obj.None(), err
	}
	for i, cmd := range l[1:] {
		c, err := ev.comparePair(t, cmd)
		if err != nil {
			return obj.None(), err
		}
		if c == 0 {
			continue
		}
		if i < len(order) && order[i] == '>' {
			c = -c
		}
		return obj.NewBool(c < 0), nil
	}
	return obj.NewBool(false), nil
}

func listMethods(ev *Evaler, _ target.Target, _ obj.Object) (obj.Object, error) {
	var names []string
	for _, name := range ev.Commands.Names() {
		if e, _ := ev.Commands.Find(name); e.Flags&cmdmap.FlagPrivate == 0 {
			names = append(names, name)
		}
	}
	return stringList(names), nil
}

func methodHelp(ev *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
	e, err := ev.Commands.Resolve(args.AsString())
	if err != nil {
		return obj.None(), err
	}
	return obj.NewString(e.Doc), nil
}

func methodSignature(ev *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
	e, err := ev.Commands.Resolve(args.AsString())
	if err != nil {
		return obj.None(), err
	}
	return obj.NewStringList(e.Shape.String(), e.ParmDoc), nil
}

func pid(*Evaler, target.Target, obj.Object) (obj.Object, error) {
	return obj.NewValue(int64(os.Getpid())), nil
}

func hostname(*Evaler, target.Target, obj.Object) (obj.Object, error) {
	name, err := os.Hostname()
	if err != nil {
		return obj.None(), err
	}
	return obj.NewString(name), nil
}

func now(ev *Evaler, _ target.Target, _ obj.Object) (obj.Object, error) {
	return obj.NewValue(ev.Clock().Unix()), nil
}

func importFile(optional bool) handlerFunc {
	return func(ev *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
		path := args.AsString()
		err := ev.SourceFile(path)
		if optional && errors.Is(err, os.ErrNotExist) {
			logger.Printf("skipping %s: %v", path, err)
			return obj.None(), nil
		}
		return obj.None(), err
	}
}

func argument(i int) handlerFunc {
	return func(ev *Evaler, _ target.Target, _ obj.Object) (obj.Object, error) {
		v, ok := ev.argument(i)
		if !ok {
			return obj.None(), errs.ArgumentShape{Name: "argument." + strconv.Itoa(i),
				Problem: "argument out of range"}
		}
		return v, nil
	}
}
