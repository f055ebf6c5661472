package parse

import (
	"fmt"

	"src.rtorc.sh/pkg/obj"
)

// ParseStatement parses a single statement of the form name=arglist and
// returns it as a Call. The name must be followed by "=", optional
// whitespace or the end of the input. A statement without arguments has None
// as its arguments, and an argument list with exactly one item has that item
// as its arguments. Blank input parses to None.
func ParseStatement(src Source) (obj.Object, error) {
	ps := newParser(src.Name, src.Code, 0, len(src.Code))
	ps.skipSpace()
	if ps.atEnd() {
		return obj.None(), nil
	}
	call, err := ps.parseStatement(IsDelim)
	if err == nil {
		err = ps.done()
	}
	if err != nil {
		return obj.None(), err
	}
	return call, nil
}

// ParseStatements parses statements separated by semicolons. A semicolon only
// separates statements where an unquoted item could end; it is literal inside
// quotes and braces, and when escaped. Blank statements are skipped.
func ParseStatements(src Source) ([]obj.Object, error) {
	ps := newParser(src.Name, src.Code, 0, len(src.Code))
	var calls []obj.Object
	for {
		ps.skipSpace()
		if ps.atEnd() {
			return calls, nil
		}
		if ps.peek() == ';' {
			ps.pos++
			continue
		}
		call, err := ps.parseStatement(isStatementDelim)
		if err != nil {
			return nil, err
		}
		calls = append(calls, call)
		ps.skipSpace()
		if !ps.atEnd() {
			if ps.peek() != ';' {
				return nil, ps.errorAt(TrailingGarbage, ps.pos,
					fmt.Sprintf("trailing garbage starting with %q", ps.peek()))
			}
			ps.pos++
		}
	}
}

func isStatementDelim(c byte) bool { return c == ';' || IsDelim(c) }

// Parses a statement, stopping before the first top-level character
// satisfying isDelim that does not start another item.
func (ps *parser) parseStatement(isDelim Delim) (obj.Object, error) {
	ps.skipSpace()
	name, err := ps.parseCommandName()
	if err != nil {
		return obj.None(), err
	}
	ps.skipSpace()
	if ps.atEnd() || ps.peek() == ';' && isDelim(';') {
		return obj.NewCall(name, obj.None()), nil
	}
	if ps.peek() != '=' {
		return obj.None(), ps.errorAt(InvalidIdentifier, ps.pos,
			fmt.Sprintf("unexpected %q after command name %q", ps.peek(), name))
	}
	ps.pos++
	ps.skipSpace()
	if ps.atEnd() || ps.peek() == ';' && isDelim(';') {
		return obj.NewCall(name, obj.None()), nil
	}
	args, err := ps.parseList(isDelim)
	if err != nil {
		return obj.None(), err
	}
	return obj.NewCall(name, SingleArgument(args)), nil
}

// SingleArgument returns the only element of a one-element List, and its
// argument unchanged otherwise.
func SingleArgument(args obj.Object) obj.Object {
	if args.IsList() && args.Len() == 1 {
		return args.AsList()[0]
	}
	return args
}
