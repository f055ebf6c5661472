package sys

import "runtime"

// DumpStack returns the stack traces of all goroutines.
func DumpStack() string {
	for size := 8 << 10; ; size *= 2 {
		buf := make([]byte, size)
		if n := runtime.Stack(buf, true); n < size {
			return string(buf[:n])
		}
	}
}
