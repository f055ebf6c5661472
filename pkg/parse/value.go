package parse

import (
	"fmt"
	"math"
	"strings"
)

var valueTokens = []struct {
	text  string
	value int64
}{
	{"yes", 1}, {"true", 1}, {"no", 0}, {"false", 0},
}

// ParseValuePrefix parses a numeric literal starting at pos and returns the
// value and the position after it.
//
// The literal follows strtoll rules for the given base: a base of 0 detects a
// "0x" prefix for hexadecimal and a leading "0" for octal. An optional suffix
// b, k, m or g (case-insensitive) scales the number by 1, 2^10, 2^20 or 2^30;
// without a suffix the number is scaled by unit. The tokens yes and true parse
// to 1, no and false to 0 (case-insensitive).
func ParseValuePrefix(src string, pos, base int, unit int64) (int64, int, error) {
	ps := newParser("", src, pos, len(src))
	v, err := ps.parseValue(base, unit)
	return v, ps.pos, err
}

// ParseValue is like ParseValuePrefix, but requires the literal to span all of
// src save for surrounding whitespace.
func ParseValue(src string, base int, unit int64) (int64, error) {
	ps := newParser("", src, 0, len(src))
	ps.skipSpace()
	v, err := ps.parseValue(base, unit)
	if err == nil {
		err = ps.done()
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

func (ps *parser) parseValue(base int, unit int64) (int64, error) {
	if unit == 0 {
		unit = 1
	}
	begin := ps.pos
	rest := ps.src[ps.pos:ps.end]
	for _, tok := range valueTokens {
		if len(rest) >= len(tok.text) && strings.EqualFold(rest[:len(tok.text)], tok.text) &&
			(len(rest) == len(tok.text) || IsListDelim(rest[len(tok.text)])) {
			ps.pos += len(tok.text)
			return tok.value, nil
		}
	}

	neg := false
	if !ps.atEnd() && (ps.peek() == '+' || ps.peek() == '-') {
		neg = ps.peek() == '-'
		ps.pos++
	}
	switch {
	case base == 0 && ps.hasHexPrefix():
		base = 16
		ps.pos += 2
	case base == 0 && !ps.atEnd() && ps.peek() == '0':
		base = 8
	case base == 0:
		base = 10
	case base == 16 && ps.hasHexPrefix():
		ps.pos += 2
	}
	if base < 2 || base > 36 {
		return 0, ps.errorAt(NotANumber, begin, fmt.Sprintf("invalid base %d", base))
	}

	var n uint64
	digits := 0
	for !ps.atEnd() {
		d := digitValue(ps.peek())
		if d >= base {
			break
		}
		if n > (math.MaxInt64-uint64(d))/uint64(base) {
			return 0, ps.errorAt(NotANumber, begin, "number out of range")
		}
		n = n*uint64(base) + uint64(d)
		digits++
		ps.pos++
	}
	if digits == 0 {
		ps.pos = begin
		return 0, ps.errorAt(NotANumber, begin, "")
	}

	scale := unit
	if !ps.atEnd() {
		switch ps.peek() {
		case 'b', 'B':
			scale = 1
			ps.pos++
		case 'k', 'K':
			scale = 1 << 10
			ps.pos++
		case 'm', 'M':
			scale = 1 << 20
			ps.pos++
		case 'g', 'G':
			scale = 1 << 30
			ps.pos++
		}
	}
	v := int64(n)
	if scale != 1 && scale != 0 && v > math.MaxInt64/scale {
		return 0, ps.errorAt(NotANumber, begin, "number out of range")
	}
	v *= scale
	if neg {
		v = -v
	}
	return v, nil
}

func (ps *parser) hasHexPrefix() bool {
	rest := ps.src[ps.pos:ps.end]
	return len(rest) > 2 && rest[0] == '0' && (rest[1] == 'x' || rest[1] == 'X') &&
		digitValue(rest[2]) < 16
}

// Returns the value of a digit in base 36, or 36 if c is not a digit.
func digitValue(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'z':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'Z':
		return int(c-'A') + 10
	}
	return 36
}
