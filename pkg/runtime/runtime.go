package runtime

import (
	"fmt"
	"io"

	"src.rtorc.sh/pkg/engine"
	"src.rtorc.sh/pkg/eval"
	"src.rtorc.sh/pkg/logutil"
	"src.rtorc.sh/pkg/prog"
	"src.rtorc.sh/pkg/store"
)

var logger = logutil.GetLogger("[runtime] ")

// Runtime is an interpreter wired to an engine and, when the database could
// be opened, a store.
type Runtime struct {
	Evaler *eval.Evaler
	Engine *engine.Engine
	Store  store.DBStore
}

// New creates a Runtime. The torrents and views named in conf are loaded into
// the engine. Failures to open the database or to load a torrent are reported
// to stderr and are not fatal. The caller should call Close when the Runtime is
// no longer needed.
func New(stderr io.Writer, p Paths, conf *prog.Config) *Runtime {
	ev := eval.NewEvaler()
	eng := engine.New()
	ev.Resolver = eng
	rt := &Runtime{Evaler: ev, Engine: eng}

	if p.DB != "" {
		st, err := store.NewStore(p.DB)
		if err != nil {
			fmt.Fprintln(stderr, "Warning: cannot open database:", err)
			fmt.Fprintln(stderr, "Session and history will not be saved.")
		} else {
			rt.Store = st
			ev.Sessions = st
		}
	}

	if conf != nil {
		for _, name := range conf.Torrents {
			d, err := eng.LoadFile(name)
			if err != nil {
				fmt.Fprintln(stderr, "Warning: cannot load torrent:", err)
				continue
			}
			logger.Printf("loaded %s from %s", d.Hash(), name)
		}
		for name, hashes := range conf.Views {
			eng.SetView(name, hashes...)
		}
	}
	return rt
}

// Close releases the resources held by the Runtime.
func (rt *Runtime) Close() error {
	err := rt.Evaler.Close()
	if rt.Store != nil {
		if err2 := rt.Store.Close(); err == nil {
			err = err2
		}
	}
	return err
}
