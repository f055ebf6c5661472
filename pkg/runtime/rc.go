package runtime

import (
	"io"
	"os"

	"src.rtorc.sh/pkg/diag"
)

// SourceRC sources the rc file if it exists, reporting errors to stderr.
func (rt *Runtime) SourceRC(stderr io.Writer, path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Println("no rc file at", path)
		return
	}
	if err := rt.Evaler.SourceFile(path); err != nil {
		diag.ShowError(stderr, err)
	}
}
