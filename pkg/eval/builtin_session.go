package eval

import (
	"errors"

	"src.rtorc.sh/pkg/cmdmap"
	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/target"
)

// ErrNoSessionStore is returned by the session commands when the Evaler has
// no SessionStore.
var ErrNoSessionStore = errors.New("no session store")

func init() {
	addBuiltins(
		builtin{name: "session.save", shape: cmdmap.Void, flags: pub, fn: sessionSave,
			doc: "Saves the methods created with the session option. Returns the number saved."},
		builtin{name: "session.load", shape: cmdmap.Void, flags: pub, fn: sessionLoad,
			doc: "Restores saved session methods. Returns the number restored."},
	)
}

func sessionSave(ev *Evaler, _ target.Target, _ obj.Object) (obj.Object, error) {
	if ev.Sessions == nil {
		return obj.None(), ErrNoSessionStore
	}
	values := ev.Storage.SessionValues()
	if err := ev.Sessions.SaveSession(values); err != nil {
		return obj.None(), err
	}
	return obj.NewValue(int64(len(values))), nil
}

func sessionLoad(ev *Evaler, _ target.Target, _ obj.Object) (obj.Object, error) {
	if ev.Sessions == nil {
		return obj.None(), ErrNoSessionStore
	}
	values, err := ev.Sessions.LoadSession()
	if err != nil {
		return obj.None(), err
	}
	return obj.NewValue(int64(ev.Storage.RestoreSession(values))), nil
}
