package eval

import (
	"src.rtorc.sh/pkg/cmdmap"
	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/target"
)

type handlerFunc = func(ev *Evaler, t target.Target, args obj.Object) (obj.Object, error)

// A built-in command. The table of built-in commands is only appended to from
// init functions.
type builtin struct {
	name  string
	shape cmdmap.Shape
	flags cmdmap.Flags
	fn    handlerFunc
	parm  string
	doc   string
}

const (
	pub = cmdmap.FlagPublic
	raw = cmdmap.FlagRawArgs
)

var builtins []builtin

// Legacy names of built-in commands.
var builtinRedirects = map[string]string{}

func addBuiltins(bs ...builtin) {
	builtins = append(builtins, bs...)
}

func addRedirects(m map[string]string) {
	for alias, dest := range m {
		builtinRedirects[alias] = dest
	}
}

func (b builtin) entry(ev *Evaler) cmdmap.Entry {
	fn := b.fn
	return cmdmap.Entry{
		Name:    b.name,
		Handler: func(t target.Target, args obj.Object) (obj.Object, error) { return fn(ev, t, args) },
		Shape:   b.shape,
		Flags:   b.flags,
		ParmDoc: b.parm,
		Doc:     b.doc,
	}
}
