package eval

import (
	"src.rtorc.sh/pkg/cmdmap"
	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/target"
)

// Flow control and boolean commands. Most of them take raw arguments so that
// conditions and actions are only evaluated when needed.

func init() {
	addBuiltins(
		builtin{name: "branch", shape: cmdmap.List, flags: pub | raw, fn: branch,
			parm: "condition, action[, condition, action...][, else action]",
			doc:  "Runs the action following the first truthy condition."},
		builtin{name: "if", shape: cmdmap.List, flags: pub | raw, fn: branch,
			parm: "condition, action[, condition, action...][, else action]"},
		builtin{name: "and", shape: cmdmap.List, flags: pub | raw, fn: and,
			doc: "Returns whether all elements are truthy, stopping at the first falsy one."},
		builtin{name: "or", shape: cmdmap.List, flags: pub | raw, fn: or,
			doc: "Returns whether any element is truthy, stopping at the first truthy one."},
		builtin{name: "not", shape: cmdmap.Generic, flags: pub, fn: not},
		builtin{name: "false", shape: cmdmap.Generic, flags: pub, fn: constant(0)},
		builtin{name: "true", shape: cmdmap.Generic, flags: pub, fn: constant(1)},
		builtin{name: "try", shape: cmdmap.List, flags: pub | raw, fn: try,
			doc: "Runs the statements, logging instead of failing on errors."},
	)
}

// Evaluates a condition: Calls and statement texts are run, and the result is
// coerced with Truthy.
func (ev *Evaler) condition(t target.Target, cond obj.Object) (bool, error) {
	if cond.IsList() {
		if cond.Len() == 0 {
			return false, nil
		}
		return ev.condition(t, cond.AsList()[0])
	}
	v, err := ev.run(t, cond)
	if err != nil {
		return false, err
	}
	return Truthy(v), nil
}

func branch(ev *Evaler, t target.Target, args obj.Object) (obj.Object, error) {
	l := args.AsList()
	for i := 0; i+1 < len(l); i += 2 {
		ok, err := ev.condition(t, l[i])
		if err != nil {
			return obj.None(), err
		}
		if ok {
			return ev.run(t, l[i+1])
		}
	}
	if len(l)%2 == 1 {
		return ev.run(t, l[len(l)-1])
	}
	return obj.None(), nil
}

// Coerces an element of an and or or list. Calls are evaluated; literal
// Strings are tested for being non-empty.
func (ev *Evaler) truthyElem(t target.Target, elem obj.Object) (bool, error) {
	v, err := ev.expand(t, elem)
	if err != nil {
		return false, err
	}
	return Truthy(v), nil
}

func and(ev *Evaler, t target.Target, args obj.Object) (obj.Object, error) {
	for _, elem := range args.AsList() {
		ok, err := ev.truthyElem(t, elem)
		if err != nil {
			return obj.None(), err
		}
		if !ok {
			return obj.NewBool(false), nil
		}
	}
	return obj.NewBool(true), nil
}

func or(ev *Evaler, t target.Target, args obj.Object) (obj.Object, error) {
	for _, elem := range args.AsList() {
		ok, err := ev.truthyElem(t, elem)
		if err != nil {
			return obj.None(), err
		}
		if ok {
			return obj.NewBool(true), nil
		}
	}
	return obj.NewBool(false), nil
}

func not(_ *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
	return obj.NewBool(!Truthy(args)), nil
}

func constant(v int64) handlerFunc {
	return func(*Evaler, target.Target, obj.Object) (obj.Object, error) {
		return obj.NewValue(v), nil
	}
}

func try(ev *Evaler, t target.Target, args obj.Object) (obj.Object, error) {
	result := obj.None()
	for _, stmt := range args.AsList() {
		v, err := ev.run(t, stmt)
		if err != nil {
			ev.ErrLog.Print("try: " + err.Error())
			return obj.None(), nil
		}
		result = v
	}
	return result, nil
}
