package target

import "testing"

type fakePeer struct{ id string }

func (p fakePeer) ID() string      { return p.id }
func (p fakePeer) Address() string { return "127.0.0.1:6881" }

type fakeFile struct{ path string }

func (f fakeFile) Path() string     { return f.path }
func (f fakeFile) SizeBytes() int64 { return 0 }

func TestTarget(t *testing.T) {
	if k := None().Kind(); k != KindNone {
		t.Errorf("None().Kind() -> %v", k)
	}
	p := OfPeer(fakePeer{"p1"})
	if p.Kind() != KindPeer || p.Peer().ID() != "p1" || p.Download() != nil {
		t.Errorf("OfPeer gave %v", p)
	}
	pair := PairOf(p, OfFile(fakeFile{"a/b"}))
	if pair.Kind() != KindPair {
		t.Errorf("PairOf(...).Kind() -> %v", pair.Kind())
	}
	a, b := pair.Pair()
	if a.Peer().ID() != "p1" || b.File().Path() != "a/b" {
		t.Errorf("Pair() -> %v, %v", a, b)
	}
	if s := pair.String(); s != "pair(peer p1, file a/b)" {
		t.Errorf("String() -> %q", s)
	}
	if a, b := p.Pair(); a.Kind() != KindNone || b.Kind() != KindNone {
		t.Errorf("Pair() of a non-pair target -> %v, %v", a, b)
	}
}

func TestParseKind(t *testing.T) {
	for k := KindNone; k <= KindPair; k++ {
		if got, ok := ParseKind(k.String()); !ok || got != k {
			t.Errorf("ParseKind(%q) -> %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseKind("torrent"); ok {
		t.Errorf("ParseKind accepted an unknown kind")
	}
	if s := Kind(9).String(); s != "kind(9)" {
		t.Errorf("got %q", s)
	}
}
