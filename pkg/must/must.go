// Package must contains test helpers that panic on errors instead of returning
// them.
package must

import (
	"io"
	"os"
	"path/filepath"
)

// Pipe is like os.Pipe.
func Pipe() (r, w *os.File) {
	r, w, err := os.Pipe()
	check(err)
	return r, w
}

// ReadAllAndClose reads r to the end and closes it.
func ReadAllAndClose(r io.ReadCloser) []byte {
	data, err := io.ReadAll(r)
	check(err)
	check(r.Close())
	return data
}

// WriteFile writes data to the named file, creating its parent directories as
// needed.
func WriteFile(name, data string) {
	check(os.MkdirAll(filepath.Dir(name), 0700))
	check(os.WriteFile(name, []byte(data), 0600))
}

func check(err error) {
	if err != nil {
		panic(err)
	}
}
