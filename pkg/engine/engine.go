// Package engine implements an in-memory torrent engine. It provides the
// targets the interpreter runs commands against when no external engine is
// attached, and in tests.
package engine

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"src.rtorc.sh/pkg/errs"
	"src.rtorc.sh/pkg/logutil"
	"src.rtorc.sh/pkg/target"
)

var logger = logutil.GetLogger("[engine] ")

// MainView is the view holding every download.
const MainView = "main"

// Engine holds downloads and named views of them. Its methods are safe for
// concurrent use. The embedded mutex is the engine's global lock: callers
// running commands against engine-owned targets from outside the main loop
// must hold it.
type Engine struct {
	sync.Mutex

	mu        sync.RWMutex
	downloads map[string]*Download
	// Hashes in insertion order.
	order []string
	views map[string][]string
}

// New returns an empty Engine.
func New() *Engine {
	return &Engine{downloads: make(map[string]*Download), views: make(map[string][]string)}
}

// Add adds a download. It fails with DuplicateKey if a download with the same
// hash exists.
func (e *Engine) Add(d *Download) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.downloads[d.hash]; ok {
		return errs.DuplicateKey{Key: d.hash}
	}
	e.downloads[d.hash] = d
	e.order = append(e.order, d.hash)
	logger.Printf("added %s (%s)", d.hash, d.name)
	return nil
}

// Remove removes a download and drops it from all views.
func (e *Engine) Remove(hash string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.downloads[hash]; !ok {
		return errs.KeyNotFound{Key: hash}
	}
	delete(e.downloads, hash)
	e.order = without(e.order, hash)
	for name, hashes := range e.views {
		e.views[name] = without(hashes, hash)
	}
	return nil
}

func without(hashes []string, hash string) []string {
	var kept []string
	for _, h := range hashes {
		if h != hash {
			kept = append(kept, h)
		}
	}
	return kept
}

// Get returns the download with the given hash.
func (e *Engine) Get(hash string) (*Download, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	d, ok := e.downloads[hash]
	return d, ok
}

// SetView sets the downloads of a view. Unknown hashes are ignored.
func (e *Engine) SetView(name string, hashes ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var known []string
	for _, h := range hashes {
		if _, ok := e.downloads[h]; ok {
			known = append(known, h)
		}
	}
	e.views[name] = known
}

// Views returns the names of all views, including the main view, sorted.
func (e *Engine) Views() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := []string{MainView}
	for name := range e.views {
		if name != MainView {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Downloads implements target.Resolver.
func (e *Engine) Downloads(view string) ([]target.Download, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	hashes := e.order
	if view != "" && view != MainView {
		var ok bool
		hashes, ok = e.views[view]
		if !ok {
			return nil, errs.KeyNotFound{Key: view}
		}
	}
	ds := make([]target.Download, len(hashes))
	for i, h := range hashes {
		ds[i] = e.downloads[h]
	}
	return ds, nil
}

// Resolve implements target.Resolver. Downloads are identified by their hash;
// peers, trackers and files by "hash:index".
func (e *Engine) Resolve(kind target.Kind, id string) (target.Target, error) {
	if kind == target.KindNone {
		return target.None(), nil
	}
	hash, index := id, -1
	if kind != target.KindDownload {
		i := strings.LastIndexByte(id, ':')
		if i == -1 {
			return target.None(), fmt.Errorf("%s id %q has no index", kind, id)
		}
		n, err := strconv.Atoi(id[i+1:])
		if err != nil || n < 0 {
			return target.None(), fmt.Errorf("%s id %q has invalid index", kind, id)
		}
		hash, index = id[:i], n
	}
	d, ok := e.Get(hash)
	if !ok {
		return target.None(), errs.KeyNotFound{Key: hash}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	outOfRange := func(n int) bool { return index >= n }
	switch kind {
	case target.KindDownload:
		return target.OfDownload(d), nil
	case target.KindPeer:
		if !outOfRange(len(d.peers)) {
			return target.OfPeer(d.peers[index]), nil
		}
	case target.KindTracker:
		if !outOfRange(len(d.trackers)) {
			return target.OfTracker(d.trackers[index]), nil
		}
	case target.KindFile:
		if !outOfRange(len(d.files)) {
			return target.OfFile(d.files[index]), nil
		}
	default:
		return target.None(), fmt.Errorf("cannot resolve %s targets", kind)
	}
	return target.None(), errs.KeyNotFound{Key: id}
}
