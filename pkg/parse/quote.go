package parse

import (
	"strconv"
	"strings"

	"src.rtorc.sh/pkg/obj"
)

// Quote returns a representation of s that ParseString recovers exactly. If s
// is a valid bare string it is returned as is; otherwise it is double-quoted
// with quotes and backslashes escaped.
func Quote(s string) string {
	if s != "" && s[0] != '$' && !strings.ContainsAny(s, ",;{}\"\\ \t\n\r\v\f") {
		return s
	}
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	sb.WriteByte('"')
	return sb.String()
}

// Repr returns the canonical text rendering of an Object. For Objects built
// from String, Value and List nodes, parsing the rendering with
// ParseWholeObject gives back an equal tree, except that Values come back as
// Strings holding their decimal form.
//
// Maps render as [key=value,...], which is not parseable.
func Repr(o obj.Object) string {
	var sb strings.Builder
	writeRepr(&sb, o)
	return sb.String()
}

// ReprArgs is like Repr, but renders a List without the enclosing braces, the
// way an argument list is written after "=".
func ReprArgs(o obj.Object) string {
	if !o.IsList() {
		return Repr(o)
	}
	var sb strings.Builder
	for i, e := range o.AsList() {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeRepr(&sb, e)
	}
	return sb.String()
}

// ReprStatement renders a Call as a statement, name=args.
func ReprStatement(call obj.Object) string {
	args := call.CallArgs()
	if args.IsNone() {
		return call.CallName() + "="
	}
	if args.IsList() && args.Len() > 1 {
		return call.CallName() + "=" + ReprArgs(args)
	}
	return call.CallName() + "=" + Repr(args)
}

func writeRepr(sb *strings.Builder, o obj.Object) {
	switch o.Kind() {
	case obj.KindNone:
	case obj.KindValue:
		sb.WriteString(strconv.FormatInt(o.AsValue(), 10))
	case obj.KindString:
		sb.WriteString(Quote(o.AsString()))
	case obj.KindList:
		sb.WriteByte('{')
		for i, e := range o.AsList() {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeRepr(sb, e)
		}
		sb.WriteByte('}')
	case obj.KindMap:
		sb.WriteByte('[')
		for i, k := range o.Keys() {
			if i > 0 {
				sb.WriteByte(',')
			}
			v, _ := o.Get(k)
			sb.WriteString(Quote(k))
			sb.WriteByte('=')
			writeRepr(sb, v)
		}
		sb.WriteByte(']')
	case obj.KindCall:
		sb.WriteByte('$')
		sb.WriteString(o.CallName())
		sb.WriteByte('=')
		writeRepr(sb, o.CallArgs())
	}
}
