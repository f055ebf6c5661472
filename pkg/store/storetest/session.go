package storetest

import (
	"testing"

	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/store/storedefs"
)

// TestSession tests the session functionality of a Store.
func TestSession(t *testing.T, store storedefs.Store) {
	values, err := store.LoadSession()
	if len(values) != 0 || err != nil {
		t.Errorf("LoadSession() on a new store -> (%v, %v), want empty", values, err)
	}

	saved := map[string]obj.Object{
		"x.v": obj.NewValue(9),
		"x.s": obj.NewString("hello"),
		"x.m": obj.NewMap(map[string]obj.Object{
			"k": obj.NewList(obj.NewCall("print", obj.NewString("a"))),
		}),
	}
	if err := store.SaveSession(saved); err != nil {
		t.Fatalf("SaveSession() -> %v", err)
	}
	checkSession(t, store, saved)

	// Saving replaces all previous values.
	replaced := map[string]obj.Object{"x.l": obj.NewStringList("a", "b")}
	if err := store.SaveSession(replaced); err != nil {
		t.Fatalf("SaveSession() -> %v", err)
	}
	checkSession(t, store, replaced)
}

func checkSession(t *testing.T, store storedefs.Store, want map[string]obj.Object) {
	t.Helper()
	got, err := store.LoadSession()
	if err != nil {
		t.Fatalf("LoadSession() -> %v", err)
	}
	if len(got) != len(want) {
		t.Errorf("LoadSession() returned %d values, want %d", len(got), len(want))
	}
	for k, v := range want {
		if !got[k].Equal(v) {
			t.Errorf("LoadSession()[%q] = %v, want %v", k, got[k], v)
		}
	}
}
