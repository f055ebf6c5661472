package eval

import (
	"errors"

	"src.rtorc.sh/pkg/cmdmap"
	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/target"
)

// Commands on downloads, peers, trackers and files.

// ErrNoEngine is returned by commands that need a target.Resolver when the
// Evaler has none.
var ErrNoEngine = errors.New("no engine attached")

var (
	onDownload = cmdmap.TargetDownload
	onPeer     = cmdmap.TargetPeer
	onTracker  = cmdmap.TargetTracker
	onFile     = cmdmap.TargetFile
)

func init() {
	addBuiltins(
		builtin{name: "d.name", shape: cmdmap.Void.On(onDownload), flags: pub,
			fn: download(func(d target.Download) obj.Object { return obj.NewString(d.Name()) })},
		builtin{name: "d.hash", shape: cmdmap.Void.On(onDownload), flags: pub,
			fn: download(func(d target.Download) obj.Object { return obj.NewString(d.Hash()) })},
		builtin{name: "d.size_bytes", shape: cmdmap.Void.On(onDownload), flags: pub,
			fn: download(func(d target.Download) obj.Object { return obj.NewValue(d.SizeBytes()) })},
		builtin{name: "d.complete", shape: cmdmap.Void.On(onDownload), flags: pub,
			fn: download(func(d target.Download) obj.Object { return obj.NewBool(d.Complete()) })},
		builtin{name: "d.custom", shape: cmdmap.String.On(onDownload), flags: pub, fn: dCustom,
			parm: "key"},
		builtin{name: "d.custom.set", shape: cmdmap.List.On(onDownload), flags: pub, fn: dCustomSet,
			parm: "key, value"},
		builtin{name: "d.multicall", shape: cmdmap.List, flags: pub | raw, fn: dMulticall,
			parm: "view, command...",
			doc:  "Runs the commands against every download in the view."},

		builtin{name: "p.id", shape: cmdmap.Void.On(onPeer), flags: pub,
			fn: peer(func(p target.Peer) obj.Object { return obj.NewString(p.ID()) })},
		builtin{name: "p.address", shape: cmdmap.Void.On(onPeer), flags: pub,
			fn: peer(func(p target.Peer) obj.Object { return obj.NewString(p.Address()) })},
		builtin{name: "p.multicall", shape: cmdmap.List.On(onDownload), flags: pub | raw,
			fn: subMulticall(func(d target.Download) []target.Target {
				var ts []target.Target
				for _, p := range d.Peers() {
					ts = append(ts, target.OfPeer(p))
				}
				return ts
			}),
			parm: "command..."},

		builtin{name: "t.url", shape: cmdmap.Void.On(onTracker), flags: pub,
			fn: tracker(func(t target.Tracker) obj.Object { return obj.NewString(t.URL()) })},
		builtin{name: "t.is_enabled", shape: cmdmap.Void.On(onTracker), flags: pub,
			fn: tracker(func(t target.Tracker) obj.Object { return obj.NewBool(t.IsEnabled()) })},
		builtin{name: "t.is_enabled.set", shape: cmdmap.Value.On(onTracker), flags: pub,
			fn: tIsEnabledSet, parm: "enabled"},
		builtin{name: "t.multicall", shape: cmdmap.List.On(onDownload), flags: pub | raw,
			fn: subMulticall(func(d target.Download) []target.Target {
				var ts []target.Target
				for _, t := range d.Trackers() {
					ts = append(ts, target.OfTracker(t))
				}
				return ts
			}),
			parm: "command..."},

		builtin{name: "f.path", shape: cmdmap.Void.On(onFile), flags: pub,
			fn: file(func(f target.File) obj.Object { return obj.NewString(f.Path()) })},
		builtin{name: "f.size_bytes", shape: cmdmap.Void.On(onFile), flags: pub,
			fn: file(func(f target.File) obj.Object { return obj.NewValue(f.SizeBytes()) })},
		builtin{name: "f.multicall", shape: cmdmap.List.On(onDownload), flags: pub | raw,
			fn: subMulticall(func(d target.Download) []target.Target {
				var ts []target.Target
				for _, f := range d.Files() {
					ts = append(ts, target.OfFile(f))
				}
				return ts
			}),
			parm: "command..."},
	)
}

func download(f func(target.Download) obj.Object) handlerFunc {
	return func(_ *Evaler, t target.Target, _ obj.Object) (obj.Object, error) {
		return f(t.Download()), nil
	}
}

func peer(f func(target.Peer) obj.Object) handlerFunc {
	return func(_ *Evaler, t target.Target, _ obj.Object) (obj.Object, error) {
		return f(t.Peer()), nil
	}
}

func tracker(f func(target.Tracker) obj.Object) handlerFunc {
	return func(_ *Evaler, t target.Target, _ obj.Object) (obj.Object, error) {
		return f(t.Tracker()), nil
	}
}

func file(f func(target.File) obj.Object) handlerFunc {
	return func(_ *Evaler, t target.Target, _ obj.Object) (obj.Object, error) {
		return f(t.File()), nil
	}
}

func dCustom(_ *Evaler, t target.Target, args obj.Object) (obj.Object, error) {
	return obj.NewString(t.Download().Custom(args.AsString())), nil
}

func dCustomSet(_ *Evaler, t target.Target, args obj.Object) (obj.Object, error) {
	l, err := listArgs("d.custom.set", args, 2)
	if err != nil {
		return obj.None(), err
	}
	key, err := stringArg("d.custom.set", l[0])
	if err != nil {
		return obj.None(), err
	}
	t.Download().SetCustom(key, toText(obj.NewListFrom(l[1:])))
	return obj.None(), nil
}

func tIsEnabledSet(_ *Evaler, t target.Target, args obj.Object) (obj.Object, error) {
	t.Tracker().SetEnabled(args.AsValue() != 0)
	return obj.None(), nil
}

// Runs each command against each target, returning a List with one List of
// results per target.
func (ev *Evaler) multicall(targets []target.Target, cmds []obj.Object) (obj.Object, error) {
	rows := make([]obj.Object, 0, len(targets))
	for _, t := range targets {
		row := make([]obj.Object, len(cmds))
		for i, cmd := range cmds {
			v, err := ev.run(t, cmd)
			if err != nil {
				return obj.None(), err
			}
			row[i] = v
		}
		rows = append(rows, obj.NewListFrom(row))
	}
	return obj.NewListFrom(rows), nil
}

func dMulticall(ev *Evaler, t target.Target, args obj.Object) (obj.Object, error) {
	l, err := listArgs("d.multicall", args, 1)
	if err != nil {
		return obj.None(), err
	}
	if ev.Resolver == nil {
		return obj.None(), ErrNoEngine
	}
	viewArg, err := ev.expand(t, l[0])
	if err != nil {
		return obj.None(), err
	}
	view, err := stringArg("d.multicall", viewArg)
	if err != nil {
		return obj.None(), err
	}
	downloads, err := ev.Resolver.Downloads(view)
	if err != nil {
		return obj.None(), err
	}
	targets := make([]target.Target, len(downloads))
	for i, d := range downloads {
		targets[i] = target.OfDownload(d)
	}
	return ev.multicall(targets, l[1:])
}

func subMulticall(children func(target.Download) []target.Target) handlerFunc {
	return func(ev *Evaler, t target.Target, args obj.Object) (obj.Object, error) {
		return ev.multicall(children(t.Download()), args.AsList())
	}
}
