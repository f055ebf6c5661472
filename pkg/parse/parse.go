// Package parse implements the tokenizer and parser of the command language.
//
// The grammar, informally:
//
//	statement   := name ["=" arglist]
//	arglist     := item ("," item)*
//	item        := quoted | bare | brace_list | call
//	quoted      := '"' (escaped_char | [^"])* '"'
//	bare        := (escaped_char | [^,}\s])*
//	escaped_char:= '\' any_char
//	brace_list  := "{" arglist? "}"
//	call        := "$" name ["=" item]
//	name        := alpha (alnum | "_" | ".")*
//
// Parsing produces obj.Object trees. A call item lowers to an obj.Call; quoted
// text is always literal.
package parse

import (
	"fmt"

	"src.rtorc.sh/pkg/diag"
	"src.rtorc.sh/pkg/errs"
)

// Source describes a piece of source text.
type Source struct {
	Name string
	Code string
}

// Code identifies the reason of a parse error. It implements error so that
// errors.Is(err, parse.UnclosedBrace) can be used to test for a reason.
type Code int

// Possible values of Code.
const (
	UnterminatedQuote Code = iota + 1
	DanglingEscape
	UnclosedBrace
	TrailingGarbage
	NotANumber
	InvalidIdentifier
)

var codeMessages = map[Code]string{
	UnterminatedQuote: "unterminated quote",
	DanglingEscape:    "dangling escape at end of input",
	UnclosedBrace:     "unclosed brace",
	TrailingGarbage:   "trailing garbage",
	NotANumber:        "not a number",
	InvalidIdentifier: "invalid identifier",
}

func (c Code) Error() string {
	if msg, ok := codeMessages[c]; ok {
		return msg
	}
	return fmt.Sprintf("parse error code %d", int(c))
}

// Error is a parse error. It always has a non-empty message.
type Error struct {
	Code    Code
	Message string
	Context diag.Context
}

func (e *Error) diag() *diag.Error {
	return &diag.Error{Type: "parse error", Message: e.Message, Context: e.Context}
}

// Error returns a plain text representation of the error.
func (e *Error) Error() string { return e.diag().Error() }

// Show shows the error with the relevant source highlighted.
func (e *Error) Show(indent string) string { return e.diag().Show(indent) }

// Range returns the range of the error.
func (e *Error) Range() diag.Ranging { return e.Context.Range() }

// Is reports whether target is the Code of the error.
func (e *Error) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.Code
}

// ErrorKind classifies all parse errors as syntax errors.
func (e *Error) ErrorKind() errs.ErrorKind { return errs.KindSyntax }

// Delim is a delimiter predicate.
type Delim func(c byte) bool

// IsDelim is the default delimiter predicate: comma or whitespace.
func IsDelim(c byte) bool { return c == ',' || isSpace(c) }

// IsListDelim is the delimiter predicate used inside braces.
func IsListDelim(c byte) bool { return c == '}' || IsDelim(c) }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isAlpha(c byte) bool { return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' }

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

// IsNameChar reports whether c may appear in a command name.
func IsNameChar(c byte) bool { return isAlpha(c) || isDigit(c) || c == '_' || c == '.' }
