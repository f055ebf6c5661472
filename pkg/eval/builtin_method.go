package eval

import (
	"strings"

	"src.rtorc.sh/pkg/cmdmap"
	"src.rtorc.sh/pkg/errs"
	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/objstore"
	"src.rtorc.sh/pkg/target"
)

// The method system: commands creating, inspecting and erasing user-defined
// methods backed by the object storage.

func init() {
	addBuiltins(
		builtin{name: "method.insert", shape: cmdmap.List, flags: pub | raw, fn: methodInsert,
			parm: "name, options[, value or body...]",
			doc:  "Creates a method. Options are separated by |."},
		builtin{name: "method.insert.value", shape: cmdmap.List, flags: pub | raw,
			fn: methodInsertType(objstore.TypeValue), parm: "name[, value]"},
		builtin{name: "method.insert.bool", shape: cmdmap.List, flags: pub | raw,
			fn: methodInsertType(objstore.TypeBool), parm: "name[, value]"},
		builtin{name: "method.insert.string", shape: cmdmap.List, flags: pub | raw,
			fn: methodInsertType(objstore.TypeString), parm: "name[, string]"},
		builtin{name: "method.insert.list", shape: cmdmap.List, flags: pub | raw,
			fn: methodInsertType(objstore.TypeList), parm: "name[, elem...]"},
		builtin{name: "method.insert.simple", shape: cmdmap.List, flags: pub | raw,
			fn: methodInsertType(objstore.TypeFunction), parm: "name, body..."},
		builtin{name: "method.erase", shape: cmdmap.String, flags: pub, fn: methodErase,
			parm: "name"},
		builtin{name: "method.redirect", shape: cmdmap.List, flags: pub, fn: methodRedirect,
			parm: "alias, destination"},
		builtin{name: "method.get", shape: cmdmap.String, flags: pub, fn: methodGet,
			parm: "name"},
		builtin{name: "method.set", shape: cmdmap.List, flags: pub | raw, fn: methodSet,
			parm: "name, value or body..."},
		builtin{name: "method.has_key", shape: cmdmap.List, flags: pub, fn: methodHasKey,
			parm: "name, key"},
		builtin{name: "method.set_key", shape: cmdmap.List, flags: pub | raw, fn: methodSetKey,
			parm: "name, key[, body...]",
			doc:  "Sets a key of a multi method. Without a body the key is erased."},
		builtin{name: "method.list_keys", shape: cmdmap.String, flags: pub, fn: methodListKeys,
			parm: "name"},
		builtin{name: "method.rlookup", shape: cmdmap.String, flags: pub, fn: methodRlookup,
			parm: "key", doc: "Lists the rlookup multi methods having the key."},
		builtin{name: "method.rlookup.clear", shape: cmdmap.String, flags: pub, fn: methodRlookupClear,
			parm: "key"},
		builtin{name: "method.const", shape: cmdmap.String, flags: pub, fn: methodConst,
			parm: "name"},
		builtin{name: "method.const.enable", shape: cmdmap.String, flags: pub, fn: methodConstEnable,
			parm: "name"},
		builtin{name: "method.list", shape: cmdmap.Void, flags: pub, fn: methodList},
	)
	addRedirects(map[string]string{
		"system.method.insert":    "method.insert",
		"system.method.erase":     "method.erase",
		"system.method.get":       "method.get",
		"system.method.set":       "method.set",
		"system.method.has_key":   "method.has_key",
		"system.method.set_key":   "method.set_key",
		"system.method.list_keys": "method.list_keys",
	})
}

var methodTypeNames = map[string]objstore.Type{
	"value":  objstore.TypeValue,
	"bool":   objstore.TypeBool,
	"string": objstore.TypeString,
	"list":   objstore.TypeList,
	"simple": objstore.TypeFunction,
	"multi":  objstore.TypeMulti,
}

var methodFlagNames = map[string]objstore.Flags{
	"private": objstore.FlagPrivate,
	"const":   objstore.FlagConst,
	"static":  objstore.FlagStatic,
	"rlookup": objstore.FlagRlookup,
	"session": objstore.FlagSession,
}

// Parses an option string like "value|const".
func parseMethodOptions(s string) (objstore.Type, objstore.Flags, error) {
	var (
		typ     objstore.Type
		hasType bool
		flags   objstore.Flags
	)
	for _, opt := range strings.Split(s, "|") {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		if t, ok := methodTypeNames[opt]; ok {
			if hasType {
				return 0, 0, errs.ArgumentShape{Name: "method.insert",
					Problem: "more than one type", Actual: s}
			}
			typ, hasType = t, true
		} else if f, ok := methodFlagNames[opt]; ok {
			flags |= f
		} else {
			return 0, 0, errs.ArgumentShape{Name: "method.insert",
				Problem: "invalid option", Actual: opt}
		}
	}
	if !hasType {
		return 0, 0, errs.ArgumentShape{Name: "method.insert",
			Problem: "missing type", Actual: s}
	}
	return typ, flags, nil
}

func methodInsert(ev *Evaler, t target.Target, args obj.Object) (obj.Object, error) {
	l, err := listArgs("method.insert", args, 2)
	if err != nil {
		return obj.None(), err
	}
	head, err := ev.expand(t, obj.NewList(l[0], l[1]))
	if err != nil {
		return obj.None(), err
	}
	key, err := stringArg("method.insert", head.AsList()[0])
	if err != nil {
		return obj.None(), err
	}
	opts, err := stringArg("method.insert", head.AsList()[1])
	if err != nil {
		return obj.None(), err
	}
	typ, flags, err := parseMethodOptions(opts)
	if err != nil {
		return obj.None(), err
	}
	return obj.None(), ev.InsertMethod(t, key, typ, flags, l[2:])
}

func methodInsertType(typ objstore.Type) handlerFunc {
	return func(ev *Evaler, t target.Target, args obj.Object) (obj.Object, error) {
		l, err := listArgs("method.insert", args, 1)
		if err != nil {
			return obj.None(), err
		}
		name, err := ev.expand(t, l[0])
		if err != nil {
			return obj.None(), err
		}
		key, err := stringArg("method.insert", name)
		if err != nil {
			return obj.None(), err
		}
		return obj.None(), ev.InsertMethod(t, key, typ, 0, l[1:])
	}
}

// InsertMethod creates a storage entry and the commands accessing it: a getter
// named key and, unless the entry is const, static or multi, a setter named
// key.set. For function entries rest is the unevaluated body; for other types
// it is evaluated against t to give the initial value.
func (ev *Evaler) InsertMethod(t target.Target, key string, typ objstore.Type, flags objstore.Flags, rest []obj.Object) error {
	var initial obj.Object
	switch typ {
	case objstore.TypeFunction:
		initial = obj.NewListFrom(rest)
	case objstore.TypeMulti:
		initial = obj.None()
	default:
		expanded, err := ev.expand(t, obj.NewListFrom(rest))
		if err != nil {
			return err
		}
		initial, err = initialValue(key, typ, expanded)
		if err != nil {
			return err
		}
	}
	if err := ev.Storage.InsertStr(key, initial, typ, flags); err != nil {
		return err
	}
	return ev.registerMethod(key, typ, flags)
}

func initialValue(key string, typ objstore.Type, args obj.Object) (obj.Object, error) {
	switch typ {
	case objstore.TypeValue, objstore.TypeBool:
		if args.Len() == 0 {
			return obj.NewValue(0), nil
		}
		return cmdmap.NormalizeArgs(key, cmdmap.ArgValue, args)
	case objstore.TypeString:
		return cmdmap.NormalizeArgs(key, cmdmap.ArgString, args)
	}
	return args, nil
}

var setterArgKinds = map[objstore.Type]cmdmap.ArgKind{
	objstore.TypeValue:  cmdmap.ArgValue,
	objstore.TypeBool:   cmdmap.ArgValue,
	objstore.TypeString: cmdmap.ArgString,
	objstore.TypeList:   cmdmap.ArgList,
}

func (ev *Evaler) registerMethod(key string, typ objstore.Type, flags objstore.Flags) error {
	cmdFlags := cmdmap.FlagPublic
	if flags&objstore.FlagPrivate != 0 {
		cmdFlags = cmdmap.FlagPrivate
	}
	getter := cmdmap.Entry{Name: key, Shape: cmdmap.Generic, Flags: cmdFlags}
	if typ == objstore.TypeFunction || typ == objstore.TypeMulti {
		getter.Handler = func(t target.Target, args obj.Object) (obj.Object, error) {
			return ev.callMethod(t, key, args)
		}
		getter.Doc = "User-defined " + typ.String() + " method."
	} else {
		getter.Handler = func(target.Target, obj.Object) (obj.Object, error) {
			return ev.Storage.GetStr(key)
		}
		getter.Doc = "User-defined " + typ.String() + "."
	}
	if err := ev.Commands.InsertSlot(getter); err != nil {
		return err
	}
	if flags&(objstore.FlagConst|objstore.FlagStatic) != 0 || typ == objstore.TypeMulti {
		return nil
	}

	setter := cmdmap.Entry{Name: key + ".set", Flags: cmdFlags}
	if typ == objstore.TypeFunction {
		setter.Shape = cmdmap.Generic
		setter.Flags |= cmdmap.FlagRawArgs
	} else {
		setter.Shape = cmdmap.Shape{Arg: setterArgKinds[typ]}
	}
	setter.Handler = func(_ target.Target, args obj.Object) (obj.Object, error) {
		return obj.None(), ev.Storage.SetStr(key, args)
	}
	return ev.Commands.InsertSlot(setter)
}

// Calls a function or multi method, making its arguments available to the
// argument.N commands.
func (ev *Evaler) callMethod(t target.Target, key string, args obj.Object) (obj.Object, error) {
	ev.pushArgs(args.Elems())
	defer ev.popArgs()
	return ev.Storage.CallFunctionStr(key, t, ev)
}

func methodErase(ev *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
	return obj.None(), ev.eraseMethod(args.AsString())
}

// Erases a storage entry along with its getter and setter, or a command that
// is not backed by storage.
func (ev *Evaler) eraseMethod(key string) error {
	if !ev.Storage.Has(key) {
		return ev.Commands.Erase(key)
	}
	if err := ev.Storage.Erase(key); err != nil {
		return err
	}
	for _, name := range []string{key, key + ".set"} {
		if ev.Commands.Has(name) {
			if err := ev.Commands.Erase(name); err != nil {
				return err
			}
		}
	}
	return nil
}

func methodRedirect(ev *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
	l, err := listArgs("method.redirect", args, 2)
	if err != nil {
		return obj.None(), err
	}
	alias, err := stringArg("method.redirect", l[0])
	if err != nil {
		return obj.None(), err
	}
	dest, err := stringArg("method.redirect", l[1])
	if err != nil {
		return obj.None(), err
	}
	return obj.None(), ev.Commands.CreateRedirect(alias, dest,
		cmdmap.FlagPublic|cmdmap.FlagModifiable|cmdmap.FlagDeleteKey)
}

func methodGet(ev *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
	return ev.Storage.GetStr(args.AsString())
}

func methodSet(ev *Evaler, t target.Target, args obj.Object) (obj.Object, error) {
	l, err := listArgs("method.set", args, 1)
	if err != nil {
		return obj.None(), err
	}
	name, err := ev.expand(t, l[0])
	if err != nil {
		return obj.None(), err
	}
	key, err := stringArg("method.set", name)
	if err != nil {
		return obj.None(), err
	}
	e, ok := ev.Storage.Get(key)
	if !ok {
		return obj.None(), errs.KeyNotFound{Key: key}
	}
	if e.Flags&objstore.FlagConst != 0 {
		return obj.None(), errs.NotModifiable{Key: key}
	}
	rest := obj.NewListFrom(l[1:])
	if e.Type == objstore.TypeFunction {
		return obj.None(), ev.Storage.SetStrFunction(key, rest)
	}
	kind, ok := setterArgKinds[e.Type]
	if !ok {
		return obj.None(), errs.TypeMismatch{Key: key, Want: e.Type.String(), Actual: "value"}
	}
	rest, err = ev.expand(t, rest)
	if err != nil {
		return obj.None(), err
	}
	v, err := cmdmap.NormalizeArgs(key, kind, rest)
	if err != nil {
		return obj.None(), err
	}
	return obj.None(), ev.Storage.SetStr(key, v)
}

func keyAndSub(name string, l []obj.Object) (string, string, error) {
	key, err := stringArg(name, l[0])
	if err != nil {
		return "", "", err
	}
	sub, err := stringArg(name, l[1])
	if err != nil {
		return "", "", err
	}
	return key, sub, nil
}

func methodHasKey(ev *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
	l, err := listArgs("method.has_key", args, 2)
	if err != nil {
		return obj.None(), err
	}
	key, sub, err := keyAndSub("method.has_key", l)
	if err != nil {
		return obj.None(), err
	}
	has, err := ev.Storage.HasStrMultiKey(key, sub)
	if err != nil {
		return obj.None(), err
	}
	return obj.NewBool(has), nil
}

func methodSetKey(ev *Evaler, t target.Target, args obj.Object) (obj.Object, error) {
	l, err := listArgs("method.set_key", args, 2)
	if err != nil {
		return obj.None(), err
	}
	head, err := ev.expand(t, obj.NewList(l[0], l[1]))
	if err != nil {
		return obj.None(), err
	}
	key, sub, err := keyAndSub("method.set_key", head.AsList())
	if err != nil {
		return obj.None(), err
	}
	body := obj.None()
	if len(l) > 2 {
		body = obj.NewListFrom(l[2:])
		if len(l) == 3 {
			body = l[2]
		}
	}
	return obj.None(), ev.Storage.SetStrMultiKey(key, sub, body)
}

func methodListKeys(ev *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
	keys, err := ev.Storage.ListStrMultiKeys(args.AsString())
	if err != nil {
		return obj.None(), err
	}
	return stringList(keys), nil
}

func methodRlookup(ev *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
	return stringList(ev.Storage.RlookupObjList(args.AsString())), nil
}

func methodRlookupClear(ev *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
	ev.Storage.RlookupClear(args.AsString())
	return obj.None(), nil
}

func methodConst(ev *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
	e, ok := ev.Storage.Get(args.AsString())
	if !ok {
		return obj.None(), errs.KeyNotFound{Key: args.AsString()}
	}
	return obj.NewBool(e.Flags&objstore.FlagConst != 0), nil
}

func methodConstEnable(ev *Evaler, _ target.Target, args obj.Object) (obj.Object, error) {
	key := args.AsString()
	if err := ev.Storage.AddFlags(key, objstore.FlagConst); err != nil {
		return obj.None(), err
	}
	if ev.Commands.Has(key + ".set") {
		return obj.None(), ev.Commands.Erase(key + ".set")
	}
	return obj.None(), nil
}

func methodList(ev *Evaler, _ target.Target, _ obj.Object) (obj.Object, error) {
	return stringList(ev.Storage.Keys()), nil
}
