// Package eval implements the dispatcher of the command language and its
// built-in commands.
package eval

import (
	"io"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"src.rtorc.sh/pkg/cmdmap"
	"src.rtorc.sh/pkg/errs"
	"src.rtorc.sh/pkg/logutil"
	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/objstore"
	"src.rtorc.sh/pkg/parse"
	"src.rtorc.sh/pkg/target"
)

var logger = logutil.GetLogger("[eval] ")

// Maximum number of nested command calls.
const maxCallDepth = 1000

// SessionStore persists the values of session entries.
type SessionStore interface {
	SaveSession(values map[string]obj.Object) error
	LoadSession() (map[string]obj.Object, error)
}

// Evaler owns the command registry and the object storage, and dispatches
// commands against them. Lookups are safe for concurrent use; callers that
// invoke commands against engine-owned targets from several goroutines must
// serialize those calls themselves.
type Evaler struct {
	Commands *cmdmap.Map
	Storage  *objstore.Storage

	// Dependencies. Resolver and Sessions may be nil, in which case the
	// commands needing them fail.
	Resolver target.Resolver
	Sessions SessionStore

	// Output of print.
	Stdout io.Writer
	// Errors swallowed by CallCatch and try are reported here.
	ErrLog *log.Logger
	// Source of the current time.
	Clock func() time.Time

	mu sync.Mutex
	// Arguments of the function methods being called, innermost last.
	argStack [][]obj.Object
	// Number of command calls in progress.
	depth atomic.Int32
}

// NewEvaler creates a new Evaler with all built-in commands registered.
func NewEvaler() *Evaler {
	commands := cmdmap.New()
	ev := &Evaler{
		Commands: commands,
		Storage:  objstore.New(commands),
		Stdout:   os.Stdout,
		ErrLog:   logger,
		Clock:    time.Now,
	}
	for _, b := range builtins {
		ev.Commands.Insert(b.entry(ev))
	}
	for alias, dest := range builtinRedirects {
		if err := ev.Commands.CreateRedirect(alias, dest, cmdmap.FlagPublic); err != nil {
			panic(err)
		}
	}
	return ev
}

// Close releases the resources held by the Evaler. The Evaler must not be used
// afterwards.
func (ev *Evaler) Close() error {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.argStack = nil
	return nil
}

// Call invokes the named command against t. Calls nested in args are evaluated
// first, unless the command takes raw arguments.
func (ev *Evaler) Call(t target.Target, name string, args obj.Object) (obj.Object, error) {
	return ev.call(t, name, args, false)
}

// CallExternal is like Call, but is used for callers outside the process and
// only allows public commands.
func (ev *Evaler) CallExternal(t target.Target, name string, args obj.Object) (obj.Object, error) {
	return ev.call(t, name, args, true)
}

// CallCatch is like Call, but never fails. An error is logged with the given
// prefix, and None is returned.
func (ev *Evaler) CallCatch(t target.Target, name string, args obj.Object, prefix string) obj.Object {
	result, err := ev.Call(t, name, args)
	if err != nil {
		ev.ErrLog.Print(prefix + err.Error())
		return obj.None()
	}
	return result
}

func (ev *Evaler) call(t target.Target, name string, args obj.Object, external bool) (obj.Object, error) {
	if ev.depth.Add(1) > maxCallDepth {
		ev.depth.Add(-1)
		return obj.None(), errs.ArgumentShape{Name: name, Problem: errs.CallDepthExceeded}
	}
	defer ev.depth.Add(-1)
	e, err := ev.Commands.Resolve(name)
	if err != nil {
		return obj.None(), err
	}
	if !e.Shape.Target.Accepts(t.Kind()) {
		return obj.None(), errs.WrongTarget{
			Name: name, Want: e.Shape.Target.String(), Actual: t.Kind().String()}
	}
	if external && e.Flags&cmdmap.FlagPublic == 0 {
		return obj.None(), errs.NotExposed{Name: name}
	}
	if e.Flags&cmdmap.FlagRawArgs == 0 {
		args, err = ev.expand(t, args)
		if err != nil {
			return obj.None(), err
		}
	}
	args, err = cmdmap.NormalizeArgs(name, e.Shape.Arg, args)
	if err != nil {
		return obj.None(), err
	}
	return e.Handler(t, args)
}

// Replaces Calls in o, at any depth of Lists, with their results.
func (ev *Evaler) expand(t target.Target, o obj.Object) (obj.Object, error) {
	switch o.Kind() {
	case obj.KindCall:
		return ev.Call(t, o.CallName(), o.CallArgs())
	case obj.KindList:
		var expanded []obj.Object
		for i, elem := range o.AsList() {
			if !hasCall(elem) {
				if expanded != nil {
					expanded = append(expanded, elem)
				}
				continue
			}
			if expanded == nil {
				expanded = append(make([]obj.Object, 0, o.Len()), o.AsList()[:i]...)
			}
			v, err := ev.expand(t, elem)
			if err != nil {
				return obj.None(), err
			}
			expanded = append(expanded, v)
		}
		if expanded == nil {
			return o, nil
		}
		return obj.NewListFrom(expanded), nil
	}
	return o, nil
}

func hasCall(o obj.Object) bool {
	switch o.Kind() {
	case obj.KindCall:
		return true
	case obj.KindList:
		for _, elem := range o.AsList() {
			if hasCall(elem) {
				return true
			}
		}
	}
	return false
}

// Exec parses statement text, possibly holding several statements separated
// by semicolons, and runs it against t. It returns the result of the last
// statement.
func (ev *Evaler) Exec(t target.Target, src parse.Source) (obj.Object, error) {
	calls, err := parse.ParseStatements(src)
	if err != nil {
		return obj.None(), err
	}
	result := obj.None()
	for _, call := range calls {
		result, err = ev.ExecStatement(t, call)
		if err != nil {
			return obj.None(), err
		}
	}
	return result, nil
}

// ExecStatement runs a parsed statement against t.
func (ev *Evaler) ExecStatement(t target.Target, call obj.Object) (obj.Object, error) {
	return ev.Call(t, call.CallName(), call.CallArgs())
}

// Runs an item of a raw argument list: a Call is invoked, a String is run as
// statement text, and anything else is returned as is.
func (ev *Evaler) run(t target.Target, item obj.Object) (obj.Object, error) {
	switch item.Kind() {
	case obj.KindCall:
		return ev.ExecStatement(t, item)
	case obj.KindString:
		if item.AsString() == "" {
			return obj.None(), nil
		}
		return ev.Exec(t, parse.Source{Name: "[statement]", Code: item.AsString()})
	}
	return item, nil
}

// Fire runs the method named by event against t, logging and discarding any
// error. It does nothing if no such method exists.
func (ev *Evaler) Fire(t target.Target, event string) {
	if !ev.Commands.Has(event) {
		return
	}
	ev.CallCatch(t, event, obj.None(), "event "+event+": ")
}

// Truthy implements the boolean coercion of conditions: None is false, a Value
// is true if nonzero, a String if non-empty, and a List if its first element
// is truthy. Everything else is false.
func Truthy(o obj.Object) bool {
	switch o.Kind() {
	case obj.KindValue:
		return o.AsValue() != 0
	case obj.KindString:
		return o.AsString() != ""
	case obj.KindList:
		return o.Len() > 0 && Truthy(o.AsList()[0])
	}
	return false
}

func (ev *Evaler) pushArgs(args []obj.Object) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.argStack = append(ev.argStack, args)
}

func (ev *Evaler) popArgs() {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.argStack = ev.argStack[:len(ev.argStack)-1]
}

func (ev *Evaler) argument(i int) (obj.Object, bool) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	if len(ev.argStack) == 0 {
		return obj.None(), false
	}
	args := ev.argStack[len(ev.argStack)-1]
	if i >= len(args) {
		return obj.None(), false
	}
	return args[i], true
}
