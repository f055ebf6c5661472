package parse

import (
	"fmt"

	"src.rtorc.sh/pkg/diag"
	"src.rtorc.sh/pkg/obj"
)

// parser maintains the mutable state of parsing a range [pos, end) of src.
type parser struct {
	name string
	src  string
	pos  int
	end  int
}

func newParser(name, src string, pos, end int) *parser {
	if name == "" {
		name = "[input]"
	}
	return &parser{name: name, src: src, pos: pos, end: end}
}

func (ps *parser) atEnd() bool { return ps.pos >= ps.end }

func (ps *parser) peek() byte { return ps.src[ps.pos] }

func (ps *parser) errorAt(code Code, from int, msg string) *Error {
	to := from
	if to < len(ps.src) {
		to++
	}
	if msg == "" {
		msg = code.Error()
	}
	return &Error{
		Code:    code,
		Message: msg,
		Context: *diag.NewContext(ps.name, ps.src, diag.Ranging{From: from, To: to}),
	}
}

func (ps *parser) skipSpace() {
	for !ps.atEnd() && isSpace(ps.peek()) {
		ps.pos++
	}
}

// Reads a quoted string if the current character is a quote, or a bare string
// terminated by an unescaped delimiter otherwise.
func (ps *parser) parseString(isDelim Delim) (string, error) {
	var buf []byte
	if !ps.atEnd() && ps.peek() == '"' {
		begin := ps.pos
		ps.pos++
		for {
			if ps.atEnd() {
				return "", ps.errorAt(UnterminatedQuote, begin, "")
			}
			c := ps.peek()
			if c == '"' {
				ps.pos++
				return string(buf), nil
			}
			if c == '\\' {
				if ps.pos+1 >= ps.end {
					return "", ps.errorAt(DanglingEscape, ps.pos, "")
				}
				ps.pos++
				c = ps.peek()
			}
			buf = append(buf, c)
			ps.pos++
		}
	}
	for !ps.atEnd() && !isDelim(ps.peek()) {
		c := ps.peek()
		if c == '\\' {
			if ps.pos+1 >= ps.end {
				return "", ps.errorAt(DanglingEscape, ps.pos, "")
			}
			ps.pos++
			c = ps.peek()
		}
		buf = append(buf, c)
		ps.pos++
	}
	return string(buf), nil
}

// Reads a brace list, a call or a string.
func (ps *parser) parseObject(isDelim Delim) (obj.Object, error) {
	if ps.atEnd() {
		return obj.NewString(""), nil
	}
	switch ps.peek() {
	case '{':
		begin := ps.pos
		ps.pos++
		ps.skipSpace()
		if !ps.atEnd() && ps.peek() == '}' {
			ps.pos++
			return obj.NewList(), nil
		}
		list, err := ps.parseList(IsListDelim)
		if err != nil {
			return obj.None(), err
		}
		ps.skipSpace()
		if ps.atEnd() || ps.peek() != '}' {
			return obj.None(), ps.errorAt(UnclosedBrace, begin, "")
		}
		ps.pos++
		return list, nil
	case '$':
		return ps.parseCall(isDelim)
	default:
		s, err := ps.parseString(isDelim)
		if err != nil {
			return obj.None(), err
		}
		return obj.NewString(s), nil
	}
}

// Reads "$name" optionally followed by "=" and a single argument item.
func (ps *parser) parseCall(isDelim Delim) (obj.Object, error) {
	ps.pos++
	name, err := ps.parseCommandName()
	if err != nil {
		return obj.None(), err
	}
	if ps.atEnd() || isDelim(ps.peek()) {
		return obj.NewCall(name, obj.None()), nil
	}
	if ps.peek() != '=' {
		return obj.None(), ps.errorAt(InvalidIdentifier, ps.pos,
			fmt.Sprintf("unexpected %q after command name %q", ps.peek(), name))
	}
	ps.pos++
	if ps.atEnd() || isDelim(ps.peek()) {
		return obj.NewCall(name, obj.None()), nil
	}
	arg, err := ps.parseObject(isDelim)
	if err != nil {
		return obj.None(), err
	}
	return obj.NewCall(name, arg), nil
}

// Reads items separated by commas. Whitespace around items is skipped.
func (ps *parser) parseList(isDelim Delim) (obj.Object, error) {
	var elems []obj.Object
	for {
		ps.skipSpace()
		elem, err := ps.parseObject(isDelim)
		if err != nil {
			return obj.None(), err
		}
		elems = append(elems, elem)
		ps.skipSpace()
		if ps.atEnd() || ps.peek() != ',' {
			return obj.NewListFrom(elems), nil
		}
		ps.pos++
	}
}

func (ps *parser) parseCommandName() (string, error) {
	begin := ps.pos
	if ps.atEnd() || !isAlpha(ps.peek()) {
		msg := "command name must start with a letter"
		if !ps.atEnd() {
			msg = fmt.Sprintf("%s, got %q", msg, ps.peek())
		}
		return "", ps.errorAt(InvalidIdentifier, begin, msg)
	}
	for !ps.atEnd() && IsNameChar(ps.peek()) {
		ps.pos++
	}
	return ps.src[begin:ps.pos], nil
}

// Requires that only whitespace remains.
func (ps *parser) done() error {
	ps.skipSpace()
	if !ps.atEnd() {
		return ps.errorAt(TrailingGarbage, ps.pos,
			fmt.Sprintf("trailing garbage starting with %q", ps.peek()))
	}
	return nil
}

// ParseString parses a quoted or bare string starting at pos. It returns the
// string and the position after it.
func ParseString(src string, pos int, isDelim Delim) (string, int, error) {
	ps := newParser("", src, pos, len(src))
	s, err := ps.parseString(isDelim)
	return s, ps.pos, err
}

// ParseObject parses a brace list, a call or a string starting at pos.
func ParseObject(src string, pos int, isDelim Delim) (obj.Object, int, error) {
	ps := newParser("", src, pos, len(src))
	o, err := ps.parseObject(isDelim)
	return o, ps.pos, err
}

// ParseList parses comma-separated items starting at pos, stopping at the first
// item not followed by a comma. The result is always a List.
func ParseList(src string, pos int, isDelim Delim) (obj.Object, int, error) {
	ps := newParser("", src, pos, len(src))
	o, err := ps.parseList(isDelim)
	return o, ps.pos, err
}

// ParseCommandName parses a command name starting at pos.
func ParseCommandName(src string, pos int) (string, int, error) {
	ps := newParser("", src, pos, len(src))
	name, err := ps.parseCommandName()
	return name, ps.pos, err
}

// SkipSpace returns the position of the first non-whitespace character at or
// after pos.
func SkipSpace(src string, pos int) int {
	ps := newParser("", src, pos, len(src))
	ps.skipSpace()
	return ps.pos
}

// ParseWholeString is like ParseString, but requires the string to span all of
// src save for surrounding whitespace.
func ParseWholeString(src string) (string, error) {
	ps := newParser("", src, 0, len(src))
	ps.skipSpace()
	s, err := ps.parseString(IsDelim)
	if err == nil {
		err = ps.done()
	}
	if err != nil {
		return "", err
	}
	return s, nil
}

// ParseWholeObject is like ParseObject, but requires the object to span all of
// src save for surrounding whitespace. Blank input parses to None.
func ParseWholeObject(src string) (obj.Object, error) {
	ps := newParser("", src, 0, len(src))
	ps.skipSpace()
	if ps.atEnd() {
		return obj.None(), nil
	}
	o, err := ps.parseObject(IsDelim)
	if err == nil {
		err = ps.done()
	}
	if err != nil {
		return obj.None(), err
	}
	return o, nil
}

// ParseWholeList is like ParseList, but requires the list to span all of src
// save for surrounding whitespace. Empty input parses to an empty List.
func ParseWholeList(src string) (obj.Object, error) {
	ps := newParser("", src, 0, len(src))
	ps.skipSpace()
	if ps.atEnd() {
		return obj.NewList(), nil
	}
	o, err := ps.parseList(IsDelim)
	if err == nil {
		err = ps.done()
	}
	if err != nil {
		return obj.None(), err
	}
	return o, nil
}
