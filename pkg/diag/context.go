package diag

import (
	"fmt"
	"strings"
)

// Context is a range of text in a source. It is used for errors that can be
// associated with a part of a statement or a command file.
type Context struct {
	Name   string
	Source string
	Ranging
}

// NewContext creates a new Context.
func NewContext(name, source string, r Ranger) *Context {
	return &Context{name, source, r.Range()}
}

// Variables controlling the style of the culprit.
var (
	culpritLineBegin   = "\033[1;4m"
	culpritLineEnd     = "\033[m"
	culpritPlaceHolder = "^"
)

// Position returns the 1-based line and column of the start of the range.
func (c *Context) Position() (line, col int) {
	if c.From < 0 || c.From > len(c.Source) {
		return 0, 0
	}
	before := c.Source[:c.From]
	line = strings.Count(before, "\n") + 1
	col = len(before) - strings.LastIndexByte(before, '\n')
	return line, col
}

// Describe returns "name:line:col", or "name, unknown position" when the range
// is not within the source.
func (c *Context) Describe() string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	line, col := c.Position()
	return fmt.Sprintf("%s:%d:%d", c.Name, line, col)
}

// Show shows the position followed by the line of source containing the
// culprit, with the culprit highlighted.
func (c *Context) Show(indent string) string {
	if err := c.checkPosition(); err != nil {
		return indent + err.Error()
	}
	head := lastLine(c.Source[:c.From])
	culprit := c.Source[c.From:c.To]
	tail := firstLine(c.Source[c.To:])
	culprit = strings.TrimSuffix(culprit, "\n")
	if i := strings.IndexByte(culprit, '\n'); i != -1 {
		culprit, tail = culprit[:i], ""
	}
	if culprit == "" {
		culprit = culpritPlaceHolder
	}
	return indent + c.Describe() + ": " +
		head + culpritLineBegin + culprit + culpritLineEnd + tail
}

func (c *Context) checkPosition() error {
	if c.From == -1 {
		return fmt.Errorf("%s, unknown position", c.Name)
	} else if c.From < 0 || c.To > len(c.Source) || c.From > c.To {
		return fmt.Errorf("%s, invalid position %d-%d", c.Name, c.From, c.To)
	}
	return nil
}

func firstLine(s string) string {
	i := strings.IndexByte(s, '\n')
	if i == -1 {
		return s
	}
	return s[:i]
}

func lastLine(s string) string {
	return s[strings.LastIndexByte(s, '\n')+1:]
}
