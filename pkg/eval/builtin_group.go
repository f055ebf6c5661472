package eval

import (
	"strings"

	"src.rtorc.sh/pkg/cmdmap"
	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/objstore"
	"src.rtorc.sh/pkg/target"
)

// Default settings of a new group.
const (
	defaultRatioMin    = 200
	defaultRatioMax    = 300
	defaultRatioUpload = 20 << 20
)

func init() {
	addBuiltins(
		builtin{name: "group.insert", shape: cmdmap.List, flags: pub, fn: groupInsert,
			parm: "name, view",
			doc: "Creates the settings group.NAME.ratio.min, group.NAME.ratio.max, " +
				"group.NAME.ratio.upload and group.NAME.view."},
		builtin{name: "group.list", shape: cmdmap.Void, flags: pub, fn: groupList},
	)
}

func groupInsert(ev *Evaler, t target.Target, args obj.Object) (obj.Object, error) {
	l, err := listArgs("group.insert", args, 2)
	if err != nil {
		return obj.None(), err
	}
	name, err := stringArg("group.insert", l[0])
	if err != nil {
		return obj.None(), err
	}
	view, err := stringArg("group.insert", l[1])
	if err != nil {
		return obj.None(), err
	}
	prefix := "group." + name
	settings := []struct {
		suffix  string
		typ     objstore.Type
		initial obj.Object
	}{
		{".ratio.min", objstore.TypeValue, obj.NewValue(defaultRatioMin)},
		{".ratio.max", objstore.TypeValue, obj.NewValue(defaultRatioMax)},
		{".ratio.upload", objstore.TypeValue, obj.NewValue(defaultRatioUpload)},
		{".view", objstore.TypeString, obj.NewString(view)},
	}
	// A group is created either whole or not at all.
	for i, s := range settings {
		err := ev.InsertMethod(t, prefix+s.suffix, s.typ, 0, []obj.Object{s.initial})
		if err != nil {
			for _, created := range settings[:i] {
				ev.eraseMethod(prefix + created.suffix)
			}
			return obj.None(), err
		}
	}
	return obj.None(), nil
}

func groupList(ev *Evaler, _ target.Target, _ obj.Object) (obj.Object, error) {
	var names []string
	for _, key := range ev.Storage.Keys() {
		if strings.HasPrefix(key, "group.") && strings.HasSuffix(key, ".view") {
			names = append(names, strings.TrimSuffix(strings.TrimPrefix(key, "group."), ".view"))
		}
	}
	return stringList(names), nil
}
