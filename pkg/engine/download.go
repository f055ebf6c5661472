package engine

import (
	"sync"

	"src.rtorc.sh/pkg/target"
)

// Download is an in-memory download. It implements target.Download.
type Download struct {
	hash string
	name string
	size int64

	mu       sync.Mutex
	complete bool
	custom   map[string]string
	peers    []*Peer
	trackers []*Tracker
	files    []*File
}

// NewDownload creates a download.
func NewDownload(hash, name string, size int64) *Download {
	return &Download{hash: hash, name: name, size: size, custom: make(map[string]string)}
}

func (d *Download) Hash() string     { return d.hash }
func (d *Download) Name() string     { return d.name }
func (d *Download) SizeBytes() int64 { return d.size }

func (d *Download) Complete() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.complete
}

// SetComplete marks the download as complete or incomplete.
func (d *Download) SetComplete(b bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.complete = b
}

func (d *Download) Custom(key string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.custom[key]
}

func (d *Download) SetCustom(key, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.custom[key] = value
}

// AddPeer adds a peer and returns it.
func (d *Download) AddPeer(id, address string) *Peer {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := &Peer{id: id, address: address}
	d.peers = append(d.peers, p)
	return p
}

// AddTracker adds an enabled tracker and returns it.
func (d *Download) AddTracker(url string) *Tracker {
	d.mu.Lock()
	defer d.mu.Unlock()
	t := &Tracker{url: url, enabled: true}
	d.trackers = append(d.trackers, t)
	return t
}

// AddFile adds a file and returns it.
func (d *Download) AddFile(path string, size int64) *File {
	d.mu.Lock()
	defer d.mu.Unlock()
	f := &File{path: path, size: size}
	d.files = append(d.files, f)
	return f
}

func (d *Download) Peers() []target.Peer {
	d.mu.Lock()
	defer d.mu.Unlock()
	ps := make([]target.Peer, len(d.peers))
	for i, p := range d.peers {
		ps[i] = p
	}
	return ps
}

func (d *Download) Trackers() []target.Tracker {
	d.mu.Lock()
	defer d.mu.Unlock()
	ts := make([]target.Tracker, len(d.trackers))
	for i, t := range d.trackers {
		ts[i] = t
	}
	return ts
}

func (d *Download) Files() []target.File {
	d.mu.Lock()
	defer d.mu.Unlock()
	fs := make([]target.File, len(d.files))
	for i, f := range d.files {
		fs[i] = f
	}
	return fs
}

// Peer implements target.Peer.
type Peer struct {
	id      string
	address string
}

func (p *Peer) ID() string      { return p.id }
func (p *Peer) Address() string { return p.address }

// Tracker implements target.Tracker.
type Tracker struct {
	url string

	mu      sync.Mutex
	enabled bool
}

func (t *Tracker) URL() string { return t.url }

func (t *Tracker) IsEnabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

func (t *Tracker) SetEnabled(b bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = b
}

// File implements target.File.
type File struct {
	path string
	size int64
}

func (f *File) Path() string     { return f.path }
func (f *File) SizeBytes() int64 { return f.size }
