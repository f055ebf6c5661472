package shell

import (
	"io"
	"testing"

	"src.rtorc.sh/pkg/cmdmap"
	"src.rtorc.sh/pkg/must"
	"src.rtorc.sh/pkg/store"
	"src.rtorc.sh/pkg/tt"
)

var Args = tt.Args

func TestChopLineEnding(t *testing.T) {
	tt.Test(t, tt.Fn("chopLineEnding", chopLineEnding), tt.Table{
		Args("a\n").Rets("a"),
		Args("a\r\n").Rets("a"),
		Args("a").Rets("a"),
		Args("").Rets(""),
		Args("a\n\n").Rets("a\n"),
	})
}

func TestMinEditor(t *testing.T) {
	r, w := must.Pipe()
	_, out := must.Pipe()
	defer r.Close()
	defer out.Close()
	go func() {
		w.WriteString("a=1\nb=2")
		w.Close()
	}()

	ed := newMinEditor(r, out)
	for _, want := range []string{"a=1", "b=2"} {
		code, err := ed.readCode()
		if code != want || err != nil {
			t.Errorf("readCode() -> (%q, %v), want (%q, nil)", code, err, want)
		}
	}
	if _, err := ed.readCode(); err != io.EOF {
		t.Errorf("readCode() at end -> %v, want io.EOF", err)
	}
}

func TestCompleteName(t *testing.T) {
	m := cmdmap.New()
	m.Insert(cmdmap.Entry{Name: "d.name"})
	m.Insert(cmdmap.Entry{Name: "d.hash"})
	m.Insert(cmdmap.Entry{Name: "d.secret", Flags: cmdmap.FlagPrivate})
	m.Insert(cmdmap.Entry{Name: "cat"})

	tt.Test(t, tt.Fn("completeName", func(line string, pos int) (string, []string, string) {
		return completeName(m, line, pos)
	}), tt.Table{
		Args("d.", 2).Rets("", []string{"d.hash", "d.name"}, ""),
		Args("cat=$d.n", 8).Rets("cat=$", []string{"d.name"}, ""),
		Args("d.h ; cat", 3).Rets("", []string{"d.hash"}, " ; cat"),
		Args("cat=x,", 6).Rets("cat=x,", []string{"cat", "d.hash", "d.name"}, ""),
		Args("zz", 2).Rets("", []string(nil), ""),
	})
}

func TestLoadHistory(t *testing.T) {
	st := store.MustTempStore(t)
	for _, text := range []string{"a=", "b=", "c="} {
		if _, err := st.AddCmd(text); err != nil {
			t.Fatal(err)
		}
	}
	cmds, err := loadHistory(st)
	if err != nil {
		t.Fatal(err)
	}
	if len(cmds) != 3 || cmds[0].Text != "a=" || cmds[2].Text != "c=" {
		t.Errorf("loadHistory -> %v", cmds)
	}
}

