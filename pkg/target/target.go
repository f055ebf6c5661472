// Package target defines the objects a command may be invoked against, and the
// interfaces through which the interpreter reaches the torrent engine.
package target

import "fmt"

// Kind identifies the variant of a Target.
type Kind uint8

// Possible values of Kind.
const (
	KindNone Kind = iota
	KindDownload
	KindPeer
	KindTracker
	KindFile
	KindPair
)

var kindNames = [...]string{"none", "download", "peer", "tracker", "file", "pair"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return KindNone, false
}

// Download is a torrent known to the engine.
type Download interface {
	Hash() string
	Name() string
	SizeBytes() int64
	Complete() bool
	Custom(key string) string
	SetCustom(key, value string)
	Peers() []Peer
	Trackers() []Tracker
	Files() []File
}

// Peer is a connected peer of a Download.
type Peer interface {
	ID() string
	Address() string
}

// Tracker is an announce URL of a Download.
type Tracker interface {
	URL() string
	IsEnabled() bool
	SetEnabled(bool)
}

// File is a file of a Download.
type File interface {
	Path() string
	SizeBytes() int64
}

// Resolver turns identifiers into live targets. It is implemented by the
// engine layer; the interpreter never constructs engine objects itself.
type Resolver interface {
	// Resolve returns the target of the given kind identified by id. For a
	// download id is the info hash; for other kinds it is "hash:index".
	Resolve(kind Kind, id string) (Target, error)
	// Downloads returns the downloads in the named view. The empty view name
	// and "main" both mean all downloads.
	Downloads(view string) ([]Download, error)
}

// Target is the object a command is invoked against. The zero value is the
// None target.
type Target struct {
	kind Kind
	d    Download
	p    Peer
	t    Tracker
	f    File
	pair *[2]Target
}

// None returns the None target.
func None() Target { return Target{} }

// OfDownload returns a Download target.
func OfDownload(d Download) Target { return Target{kind: KindDownload, d: d} }

// OfPeer returns a Peer target.
func OfPeer(p Peer) Target { return Target{kind: KindPeer, p: p} }

// OfTracker returns a Tracker target.
func OfTracker(t Tracker) Target { return Target{kind: KindTracker, t: t} }

// OfFile returns a File target.
func OfFile(f File) Target { return Target{kind: KindFile, f: f} }

// PairOf returns a Pair target, used by commands comparing two targets.
func PairOf(a, b Target) Target {
	return Target{kind: KindPair, pair: &[2]Target{a, b}}
}

// Kind returns the variant of the target.
func (t Target) Kind() Kind { return t.kind }

// Download returns the Download of a Download target, or nil.
func (t Target) Download() Download { return t.d }

// Peer returns the Peer of a Peer target, or nil.
func (t Target) Peer() Peer { return t.p }

// Tracker returns the Tracker of a Tracker target, or nil.
func (t Target) Tracker() Tracker { return t.t }

// File returns the File of a File target, or nil.
func (t Target) File() File { return t.f }

// Pair returns the two halves of a Pair target. It returns two None targets
// for other kinds.
func (t Target) Pair() (Target, Target) {
	if t.pair == nil {
		return None(), None()
	}
	return t.pair[0], t.pair[1]
}

func (t Target) String() string {
	switch t.kind {
	case KindDownload:
		return "download " + t.d.Hash()
	case KindPeer:
		return "peer " + t.p.ID()
	case KindTracker:
		return "tracker " + t.t.URL()
	case KindFile:
		return "file " + t.f.Path()
	case KindPair:
		return fmt.Sprintf("pair(%v, %v)", t.pair[0], t.pair[1])
	}
	return "none"
}
