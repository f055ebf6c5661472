package parse

import "strings"

// Line is a logical line of a command file.
type Line struct {
	// Byte offset of the line in the file.
	From int
	Code string
}

// SplitLines splits the content of a command file into logical lines. Blank
// lines and lines starting with # are skipped, and a line ending with a single
// backslash continues on the next one.
//
// The backslash and newline of a continuation are each replaced with a space,
// so that an offset into Code plus From is the offset into content.
func SplitLines(content string) []Line {
	var lines []Line
	var (
		pending bool
		from    int
		code    []byte
	)
	for pos := 0; pos < len(content); {
		end := strings.IndexByte(content[pos:], '\n')
		next := len(content)
		if end == -1 {
			end = len(content)
		} else {
			end += pos
			next = end + 1
		}
		text := content[pos:end]
		pos = next
		if !pending {
			trimmed := strings.TrimSpace(text)
			if trimmed == "" || trimmed[0] == '#' {
				continue
			}
			from = end - len(text)
			code = code[:0]
		}
		if strings.HasSuffix(text, "\\") && !strings.HasSuffix(text, "\\\\") {
			code = append(code, text[:len(text)-1]...)
			code = append(code, ' ')
			if next > end {
				code = append(code, ' ')
			}
			pending = true
			continue
		}
		code = append(code, text...)
		lines = append(lines, Line{from, string(code)})
		pending = false
	}
	if pending {
		lines = append(lines, Line{from, string(code)})
	}
	return lines
}
