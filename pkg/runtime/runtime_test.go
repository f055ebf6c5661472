package runtime

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackpal/bencode-go"

	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/parse"
	"src.rtorc.sh/pkg/prog"
	"src.rtorc.sh/pkg/target"
	"src.rtorc.sh/pkg/testutil"
)

func writeTorrent(t *testing.T, dir, name string, length int64) string {
	t.Helper()
	var buf bytes.Buffer
	err := bencode.Marshal(&buf, map[string]any{
		"announce": "http://tracker/announce",
		"info":     map[string]any{"name": name, "length": length},
	})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name+".torrent")
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMakePaths_FlagsTakePrecedence(t *testing.T) {
	var stderr bytes.Buffer
	p := MakePaths(&stderr, &prog.Flags{RC: "rc", DB: "db", Sock: "sock"})
	if p != (Paths{RC: "rc", DB: "db", Sock: "sock"}) {
		t.Errorf("got %+v", p)
	}
	if stderr.Len() != 0 {
		t.Errorf("unexpected warnings: %q", stderr.String())
	}
}

func TestMakePaths_Defaults(t *testing.T) {
	config, data := t.TempDir(), t.TempDir()
	testutil.Setenv(t, "XDG_CONFIG_HOME", config)
	testutil.Setenv(t, "XDG_DATA_HOME", data)

	var stderr bytes.Buffer
	p := MakePaths(&stderr, &prog.Flags{Sock: "sock"})
	if want := filepath.Join(config, "rtorc", "rc"); p.RC != want {
		t.Errorf("RC = %q, want %q", p.RC, want)
	}
	if want := filepath.Join(data, "rtorc", "db"); p.DB != want {
		t.Errorf("DB = %q, want %q", p.DB, want)
	}
	if info, err := os.Stat(filepath.Dir(p.DB)); err != nil || !info.IsDir() {
		t.Errorf("data directory not created: %v", err)
	}
}

func TestNew(t *testing.T) {
	dir := t.TempDir()
	torrent := writeTorrent(t, dir, "debian.iso", 100)
	var stderr bytes.Buffer
	rt := New(&stderr,
		Paths{DB: filepath.Join(dir, "db")},
		&prog.Config{
			Torrents: []string{torrent, filepath.Join(dir, "missing.torrent")},
			Views:    map[string][]string{"empty": nil},
		})
	defer rt.Close()

	if rt.Store == nil {
		t.Fatalf("store not opened: %s", stderr.String())
	}
	if !strings.Contains(stderr.String(), "cannot load torrent") {
		t.Errorf("no warning about missing torrent: %q", stderr.String())
	}
	ds, err := rt.Engine.Downloads("")
	if err != nil || len(ds) != 1 {
		t.Fatalf("Downloads -> %v, %v", ds, err)
	}
	if views := rt.Engine.Views(); !contains(views, "empty") {
		t.Errorf("views %v lack configured view", views)
	}

	hash := ds[0].Hash()
	d, err := rt.Evaler.Resolver.Resolve(target.KindDownload, hash)
	if err != nil {
		t.Fatal(err)
	}
	size, err := rt.Evaler.Call(d, "d.size_bytes", obj.None())
	if err != nil || !size.Equal(obj.NewValue(100)) {
		t.Errorf("d.size_bytes -> %v, %v", size, err)
	}
}

func TestNew_SessionsPersist(t *testing.T) {
	db := filepath.Join(t.TempDir(), "db")
	var stderr bytes.Buffer

	rt := New(&stderr, Paths{DB: db}, nil)
	mustExec(t, rt, `method.insert=my.x,value|session,42`)
	mustExec(t, rt, `session.save=`)
	rt.Close()

	rt = New(&stderr, Paths{DB: db}, nil)
	defer rt.Close()
	mustExec(t, rt, `method.insert=my.x,value|session,0`)
	mustExec(t, rt, `session.load=`)
	v, err := rt.Evaler.Call(target.None(), "my.x", obj.None())
	if err != nil || !v.Equal(obj.NewValue(42)) {
		t.Errorf("my.x after reload -> %v, %v", v, err)
	}
}

func TestNew_BadDB(t *testing.T) {
	var stderr bytes.Buffer
	rt := New(&stderr, Paths{DB: filepath.Join(t.TempDir(), "no", "such", "db")}, nil)
	defer rt.Close()
	if rt.Store != nil || rt.Evaler.Sessions != nil {
		t.Errorf("store set despite bad path")
	}
	if !strings.Contains(stderr.String(), "cannot open database") {
		t.Errorf("got stderr %q", stderr.String())
	}
}

func mustExec(t *testing.T, rt *Runtime, code string) {
	t.Helper()
	_, err := rt.Evaler.Exec(target.None(), parse.Source{Name: "test", Code: code})
	if err != nil {
		t.Fatalf("%s: %v", code, err)
	}
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}
