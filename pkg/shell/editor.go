package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"src.rtorc.sh/pkg/cmdmap"
	"src.rtorc.sh/pkg/parse"
	"src.rtorc.sh/pkg/store/storedefs"
)

const (
	prompt = "rtorc> "
	// Number of history entries loaded into the line editor.
	historySize = 1000
)

// This type is the interface that the line editor has to satisfy.
type editor interface {
	readCode() (string, error)
	addHistory(code string)
	close() error
}

type minEditor struct {
	in  *bufio.Reader
	out io.Writer
}

func newMinEditor(in, out *os.File) *minEditor {
	return &minEditor{bufio.NewReader(in), out}
}

func (ed *minEditor) readCode() (string, error) {
	fmt.Fprint(ed.out, prompt)
	line, err := ed.in.ReadString('\n')
	if err == io.EOF && line != "" {
		// Run the last line even if it doesn't end with a newline.
		err = nil
	}
	return chopLineEnding(line), err
}

func (ed *minEditor) addHistory(string) {}

func (ed *minEditor) close() error { return nil }

func chopLineEnding(s string) string {
	if strings.HasSuffix(s, "\r\n") {
		return s[:len(s)-2]
	}
	return strings.TrimSuffix(s, "\n")
}

// A line editor for terminals, with history and completion of command names.
type lineEditor struct {
	state *liner.State
}

func newLineEditor(commands *cmdmap.Map, hist storedefs.Store) *lineEditor {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	state.SetTabCompletionStyle(liner.TabPrints)
	state.SetWordCompleter(func(line string, pos int) (string, []string, string) {
		// pos counts runes.
		if runes := []rune(line); pos <= len(runes) {
			pos = len(string(runes[:pos]))
		}
		return completeName(commands, line, pos)
	})
	if hist != nil {
		cmds, err := loadHistory(hist)
		if err != nil {
			logger.Println("cannot load history:", err)
		}
		for _, cmd := range cmds {
			state.AppendHistory(cmd.Text)
		}
	}
	return &lineEditor{state}
}

func (ed *lineEditor) readCode() (string, error) {
	for {
		code, err := ed.state.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			// Ctrl-C discards the current line.
			continue
		}
		return code, err
	}
}

func (ed *lineEditor) addHistory(code string) { ed.state.AppendHistory(code) }

func (ed *lineEditor) close() error { return ed.state.Close() }

// Returns the last historySize entries of the history.
func loadHistory(hist storedefs.Store) ([]storedefs.Cmd, error) {
	next, err := hist.NextCmdSeq()
	if err != nil {
		return nil, err
	}
	return hist.CmdsWithSeq(max(next-historySize, 0), next)
}

// Completes the command name that ends at pos. It returns the text before the
// name, the candidates and the text after pos.
func completeName(commands *cmdmap.Map, line string, pos int) (string, []string, string) {
	start := pos
	for start > 0 && parse.IsNameChar(line[start-1]) {
		start--
	}
	return line[:start], commands.Listed(line[start:pos]), line[pos:]
}
