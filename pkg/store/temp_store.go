package store

import (
	"fmt"
	"os"

	"src.rtorc.sh/pkg/testutil"
)

// MustTempStore returns a Store backed by a temporary file. The Store is
// closed and the file removed when the test finishes.
func MustTempStore(c testutil.Cleanuper) DBStore {
	f, err := os.CreateTemp("", "rtorc.test")
	if err != nil {
		panic(fmt.Sprintf("failed to open temp file: %v", err))
	}
	f.Close()
	st, err := NewStore(f.Name())
	if err != nil {
		panic(fmt.Sprintf("failed to create Store instance: %v", err))
	}
	c.Cleanup(func() {
		st.Close()
		if err := os.Remove(f.Name()); err != nil {
			fmt.Fprintln(os.Stderr, "failed to remove temp file:", err)
		}
	})
	return st
}
