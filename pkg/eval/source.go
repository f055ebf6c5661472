package eval

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"src.rtorc.sh/pkg/parse"
	"src.rtorc.sh/pkg/target"
)

// SourceError wraps an error raised by a statement read from a file with the
// location of the statement.
type SourceError struct {
	Name string
	Line int
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Name, e.Line, e.Err.Error())
}

func (e *SourceError) Unwrap() error { return e.Err }

// Maximum length of a line read by Source.
const maxSourceLine = 1 << 20

// SourceFile runs the statements of a file. See Source.
func (ev *Evaler) SourceFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ev.Source(path, f)
}

// Source runs newline-delimited statements read from r against the None
// target. Blank lines and lines starting with # are skipped, and a line ending
// with a backslash continues on the next line. The first error stops the run
// and is returned as a *SourceError.
func (ev *Evaler) Source(name string, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, maxSourceLine)
	var (
		lineno    int
		stmt      strings.Builder
		stmtStart int
	)
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if stmt.Len() == 0 {
			stmtStart = lineno
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || trimmed[0] == '#' {
				continue
			}
		}
		if strings.HasSuffix(line, "\\") && !strings.HasSuffix(line, "\\\\") {
			stmt.WriteString(strings.TrimSuffix(line, "\\"))
			continue
		}
		stmt.WriteString(line)
		code := stmt.String()
		stmt.Reset()
		_, err := ev.Exec(target.None(), parse.Source{Name: name, Code: code})
		if err != nil {
			return &SourceError{Name: name, Line: stmtStart, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return &SourceError{Name: name, Line: lineno + 1, Err: err}
	}
	if stmt.Len() > 0 {
		_, err := ev.Exec(target.None(), parse.Source{Name: name, Code: stmt.String()})
		if err != nil {
			return &SourceError{Name: name, Line: stmtStart, Err: err}
		}
	}
	return nil
}
