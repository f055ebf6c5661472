package storetest

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.rtorc.sh/pkg/store/storedefs"
)

var (
	cmds     = []string{"print=a", "method.insert.value=x.v,1", "x.v=", "print=b"}
	starts   = []int{0, 1, 2, 3}
	ends     = []int{1, 2, 3, 4}
	wantCmds = []storedefs.Cmd{
		{Text: "print=a", Seq: 1},
		{Text: "method.insert.value=x.v,1", Seq: 2},
		{Text: "x.v=", Seq: 3},
		{Text: "print=b", Seq: 4},
	}
)

// TestCmd tests the command history functionality of a Store.
func TestCmd(t *testing.T, store storedefs.Store) {
	startSeq, err := store.NextCmdSeq()
	if startSeq != 1 || err != nil {
		t.Errorf("store.NextCmdSeq() -> (%v, %v), want (1, nil)", startSeq, err)
	}

	for i, cmd := range cmds {
		wantSeq := startSeq + i
		seq, err := store.AddCmd(cmd)
		if seq != wantSeq || err != nil {
			t.Errorf("store.AddCmd(%v) -> (%v, %v), want (%v, nil)", cmd, seq, err, wantSeq)
		}
	}

	endSeq, err := store.NextCmdSeq()
	wantEndSeq := startSeq + len(cmds)
	if endSeq != wantEndSeq || err != nil {
		t.Errorf("store.NextCmdSeq() -> (%v, %v), want (%v, nil)", endSeq, err, wantEndSeq)
	}

	for i, wantText := range cmds {
		text, err := store.Cmd(i + 1)
		if text != wantText || err != nil {
			t.Errorf("store.Cmd(%v) -> (%q, %v), want (%q, nil)", i+1, text, err, wantText)
		}
	}

	for i := range starts {
		got, err := store.CmdsWithSeq(starts[i], ends[i])
		want := wantCmds[max(starts[i], 1)-1 : ends[i]-1]
		if len(want) == 0 {
			want = nil
		}
		if diff := cmp.Diff(want, got); diff != "" || err != nil {
			t.Errorf("store.CmdsWithSeq(%v, %v) -> %v (-want +got):\n%s",
				starts[i], ends[i], err, diff)
		}
	}

	if err := store.DelCmd(1); err != nil {
		t.Errorf("Failed to remove cmd")
	}
	if seq, err := store.Cmd(1); !errors.Is(err, storedefs.ErrNoMatchingCmd) {
		t.Errorf("Cmd(1) -> (%v, %v), want (%v, %v)",
			seq, err, "", storedefs.ErrNoMatchingCmd)
	}
}
