package engine

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jackpal/bencode-go"
	"src.rtorc.sh/pkg/errs"
	"src.rtorc.sh/pkg/target"
)

func newTestEngine() *Engine {
	e := New()
	d1 := NewDownload("AA", "debian.iso", 100)
	d1.AddPeer("peer-1", "10.0.0.1:6881")
	d1.AddTracker("http://tracker.example/announce")
	d1.AddFile("debian.iso", 100)
	e.Add(d1)
	e.Add(NewDownload("BB", "ubuntu.iso", 200))
	return e
}

func hashes(ds []target.Download) []string {
	var hs []string
	for _, d := range ds {
		hs = append(hs, d.Hash())
	}
	return hs
}

func TestEngine_Views(t *testing.T) {
	e := newTestEngine()
	if err := e.Add(NewDownload("AA", "dup", 0)); !errors.Is(err, errs.DuplicateKey{Key: "AA"}) {
		t.Errorf("Add of duplicate -> %v", err)
	}
	e.SetView("seeding", "BB", "CC")

	for _, view := range []string{"", MainView} {
		ds, err := e.Downloads(view)
		if err != nil || !cmp.Equal(hashes(ds), []string{"AA", "BB"}) {
			t.Errorf("Downloads(%q) -> %v, %v", view, hashes(ds), err)
		}
	}
	ds, _ := e.Downloads("seeding")
	if diff := cmp.Diff([]string{"BB"}, hashes(ds)); diff != "" {
		t.Errorf("Downloads(seeding) (-want +got):\n%s", diff)
	}
	if _, err := e.Downloads("nope"); !errors.Is(err, errs.KeyNotFound{Key: "nope"}) {
		t.Errorf("Downloads(nope) -> %v", err)
	}
	if diff := cmp.Diff([]string{"main", "seeding"}, e.Views()); diff != "" {
		t.Errorf("Views() (-want +got):\n%s", diff)
	}

	if err := e.Remove("BB"); err != nil {
		t.Fatal(err)
	}
	ds, _ = e.Downloads("seeding")
	if len(ds) != 0 {
		t.Errorf("removed download still in view: %v", hashes(ds))
	}
	if err := e.Remove("BB"); !errors.Is(err, errs.KeyNotFound{Key: "BB"}) {
		t.Errorf("Remove of absent download -> %v", err)
	}
}

func TestEngine_Resolve(t *testing.T) {
	e := newTestEngine()
	tests := []struct {
		kind    target.Kind
		id      string
		wantStr string
		wantErr bool
	}{
		{target.KindNone, "", "none", false},
		{target.KindDownload, "AA", "download AA", false},
		{target.KindPeer, "AA:0", "peer peer-1", false},
		{target.KindTracker, "AA:0", "tracker http://tracker.example/announce", false},
		{target.KindFile, "AA:0", "file debian.iso", false},
		{target.KindPeer, "AA:1", "", true},
		{target.KindPeer, "AA", "", true},
		{target.KindPeer, "AA:x", "", true},
		{target.KindDownload, "ZZ", "", true},
		{target.KindPair, "AA", "", true},
	}
	for _, test := range tests {
		got, err := e.Resolve(test.kind, test.id)
		if (err != nil) != test.wantErr {
			t.Errorf("Resolve(%v, %q) -> error %v", test.kind, test.id, err)
			continue
		}
		if err == nil && got.String() != test.wantStr {
			t.Errorf("Resolve(%v, %q) -> %v, want %v", test.kind, test.id, got, test.wantStr)
		}
	}
}

func TestDownload(t *testing.T) {
	d := NewDownload("AA", "x", 1)
	if d.Complete() {
		t.Errorf("new download is complete")
	}
	d.SetComplete(true)
	d.SetCustom("label", "linux")
	if !d.Complete() || d.Custom("label") != "linux" || d.Custom("other") != "" {
		t.Errorf("setters did not take effect")
	}
	tr := d.AddTracker("udp://t")
	tr.SetEnabled(false)
	if d.Trackers()[0].IsEnabled() {
		t.Errorf("tracker still enabled")
	}
}

func metainfo(t *testing.T, torrent map[string]any) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := bencode.Marshal(&buf, torrent); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLoadTorrent(t *testing.T) {
	info := map[string]any{
		"name":         "album",
		"piece length": int64(16384),
		"pieces":       strings.Repeat("x", 20),
		"files": []any{
			map[string]any{"length": int64(10), "path": []any{"cd1", "01.flac"}},
			map[string]any{"length": int64(20), "path": []any{"cover.jpg"}},
		},
	}
	data := metainfo(t, map[string]any{
		"announce":      "http://a/announce",
		"announce-list": []any{[]any{"http://a/announce", "http://b/announce"}},
		"info":          info,
	})
	d, err := LoadTorrent(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}

	var infoBuf bytes.Buffer
	bencode.Marshal(&infoBuf, info)
	sum := sha1.Sum(infoBuf.Bytes())
	if want := strings.ToUpper(hex.EncodeToString(sum[:])); d.Hash() != want {
		t.Errorf("hash %s, want %s", d.Hash(), want)
	}
	if d.Name() != "album" || d.SizeBytes() != 30 {
		t.Errorf("got name %q and size %d", d.Name(), d.SizeBytes())
	}
	var paths, urls []string
	for _, f := range d.Files() {
		paths = append(paths, f.Path())
	}
	for _, tr := range d.Trackers() {
		urls = append(urls, tr.URL())
	}
	if diff := cmp.Diff([]string{"album/cd1/01.flac", "album/cover.jpg"}, paths); diff != "" {
		t.Errorf("files (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"http://a/announce", "http://b/announce"}, urls); diff != "" {
		t.Errorf("trackers (-want +got):\n%s", diff)
	}
}

func TestLoadTorrent_Errors(t *testing.T) {
	for _, torrent := range []map[string]any{
		{"announce": "x"},
		{"info": map[string]any{"length": int64(1)}},
		{"info": map[string]any{"name": "x"}},
		{"info": map[string]any{"name": "x", "files": []any{map[string]any{"path": []any{"a"}}}}},
	} {
		_, err := LoadTorrent(bytes.NewReader(metainfo(t, torrent)))
		if !errors.Is(err, ErrBadMetainfo) {
			t.Errorf("LoadTorrent(%v) -> %v, want ErrBadMetainfo", torrent, err)
		}
	}
	if _, err := LoadTorrent(strings.NewReader("i42e")); !errors.Is(err, ErrBadMetainfo) {
		t.Errorf("LoadTorrent of an integer -> %v", err)
	}
}

func TestEngine_LoadFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "single.torrent")
	data := metainfo(t, map[string]any{
		"announce": "http://a/announce",
		"info":     map[string]any{"name": "single.bin", "length": int64(42)},
	})
	if err := os.WriteFile(name, data, 0o644); err != nil {
		t.Fatal(err)
	}
	e := New()
	d, err := e.LoadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	if got, ok := e.Get(d.Hash()); !ok || got.SizeBytes() != 42 {
		t.Errorf("loaded download not in engine")
	}
	if _, err := e.LoadFile(name); !errors.Is(err, errs.DuplicateKey{Key: d.Hash()}) {
		t.Errorf("loading twice -> %v", err)
	}
	if _, err := e.LoadFile(filepath.Join(dir, "missing.torrent")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("loading a missing file -> %v", err)
	}
}
