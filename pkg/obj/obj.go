// Package obj implements Object, the universal value type of the command
// language.
//
// An Object is one of None, Value (a 64-bit integer), String, List, Map (with
// unique string keys iterated in sorted order) and Call. A Call is a parsed but
// not yet invoked command invocation embedded as data; it is what tells the
// dispatcher apart "literal text" from "a command to invoke here".
//
// Objects are immutable values. Methods that "modify" an Object return a
// modified copy.
package obj

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the variant of an Object.
type Kind uint8

// Possible values of Kind.
const (
	KindNone Kind = iota
	KindValue
	KindString
	KindList
	KindMap
	KindCall
)

var kindNames = [...]string{"none", "value", "string", "list", "map", "call"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Flags is a small bitset carried by every Object.
type Flags uint8

const (
	// FlagModifiable marks an Object that a user may replace.
	FlagModifiable Flags = 1 << iota
	// FlagSession marks an Object that is persisted across sessions.
	FlagSession
)

// Object is the universal value type. The zero value is None.
type Object struct {
	kind  Kind
	flags Flags
	value int64
	// The string of a String, or the command name of a Call.
	str  string
	list []Object
	m    map[string]Object
	// Arguments of a Call.
	args *Object
}

// None returns the None Object.
func None() Object { return Object{} }

// NewValue returns a Value Object.
func NewValue(v int64) Object { return Object{kind: KindValue, value: v} }

// NewBool returns the Value 1 for true and 0 for false.
func NewBool(b bool) Object {
	if b {
		return NewValue(1)
	}
	return NewValue(0)
}

// NewString returns a String Object.
func NewString(s string) Object { return Object{kind: KindString, str: s} }

// NewList returns a List Object holding the given elements.
func NewList(elems ...Object) Object {
	return NewListFrom(elems)
}

// NewListFrom returns a List Object holding a copy of the given slice.
func NewListFrom(elems []Object) Object {
	l := make([]Object, len(elems))
	copy(l, elems)
	return Object{kind: KindList, list: l}
}

// NewStringList returns a List of String Objects.
func NewStringList(ss ...string) Object {
	l := make([]Object, len(ss))
	for i, s := range ss {
		l[i] = NewString(s)
	}
	return Object{kind: KindList, list: l}
}

// NewMap returns a Map Object holding a copy of the given map.
func NewMap(m map[string]Object) Object {
	copied := make(map[string]Object, len(m))
	for k, v := range m {
		copied[k] = v
	}
	return Object{kind: KindMap, m: copied}
}

// NewCall returns a Call Object invoking the named command with args.
func NewCall(name string, args Object) Object {
	return Object{kind: KindCall, str: name, args: &args}
}

// Kind returns the variant of the Object.
func (o Object) Kind() Kind { return o.kind }

func (o Object) IsNone() bool   { return o.kind == KindNone }
func (o Object) IsValue() bool  { return o.kind == KindValue }
func (o Object) IsString() bool { return o.kind == KindString }
func (o Object) IsList() bool   { return o.kind == KindList }
func (o Object) IsMap() bool    { return o.kind == KindMap }
func (o Object) IsCall() bool   { return o.kind == KindCall }

// Flags returns the flags of the Object.
func (o Object) Flags() Flags { return o.flags }

// HasFlag reports whether all bits of f are set.
func (o Object) HasFlag(f Flags) bool { return o.flags&f == f }

// WithFlags returns a copy of the Object with f set in addition to its
// existing flags.
func (o Object) WithFlags(f Flags) Object {
	o.flags |= f
	return o
}

func (o Object) mustBe(k Kind) {
	if o.kind != k {
		panic(fmt.Sprintf("obj: %s used as %s", o.kind, k))
	}
}

// AsValue returns the integer of a Value. It panics for other kinds.
func (o Object) AsValue() int64 {
	o.mustBe(KindValue)
	return o.value
}

// AsString returns the text of a String. It panics for other kinds.
func (o Object) AsString() string {
	o.mustBe(KindString)
	return o.str
}

// AsList returns the elements of a List. It panics for other kinds. The
// returned slice must not be modified.
func (o Object) AsList() []Object {
	o.mustBe(KindList)
	return o.list
}

// CallName returns the command name of a Call. It panics for other kinds.
func (o Object) CallName() string {
	o.mustBe(KindCall)
	return o.str
}

// CallArgs returns the arguments of a Call. It panics for other kinds.
func (o Object) CallArgs() Object {
	o.mustBe(KindCall)
	return *o.args
}

// Len returns the number of elements of a List or Map and the byte length of a
// String. It returns 0 for other kinds.
func (o Object) Len() int {
	switch o.kind {
	case KindString:
		return len(o.str)
	case KindList:
		return len(o.list)
	case KindMap:
		return len(o.m)
	}
	return 0
}

// Elems returns the Object as a slice of elements: the elements of a List, no
// elements for None, and the Object itself for other kinds.
func (o Object) Elems() []Object {
	switch o.kind {
	case KindNone:
		return nil
	case KindList:
		return o.list
	default:
		return []Object{o}
	}
}

// Append returns a List with v appended. It panics if o is not a List.
func (o Object) Append(v ...Object) Object {
	o.mustBe(KindList)
	l := make([]Object, len(o.list), len(o.list)+len(v))
	copy(l, o.list)
	o.list = append(l, v...)
	return o
}

// Get looks up a key of a Map. It panics if o is not a Map.
func (o Object) Get(key string) (Object, bool) {
	o.mustBe(KindMap)
	v, ok := o.m[key]
	return v, ok
}

// With returns a Map with key set to v. It panics if o is not a Map.
func (o Object) With(key string, v Object) Object {
	o.mustBe(KindMap)
	m := make(map[string]Object, len(o.m)+1)
	for k, v := range o.m {
		m[k] = v
	}
	m[key] = v
	o.m = m
	return o
}

// Without returns a Map with key removed. It panics if o is not a Map.
func (o Object) Without(key string) Object {
	o.mustBe(KindMap)
	m := make(map[string]Object, len(o.m))
	for k, v := range o.m {
		if k != key {
			m[k] = v
		}
	}
	o.m = m
	return o
}

// Keys returns the keys of a Map in sorted order. It panics if o is not a Map.
func (o Object) Keys() []string {
	o.mustBe(KindMap)
	keys := make([]string, 0, len(o.m))
	for k := range o.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether two Objects have the same kind and content. Flags are
// not compared.
func (o Object) Equal(other Object) bool {
	if o.kind != other.kind {
		return false
	}
	switch o.kind {
	case KindNone:
		return true
	case KindValue:
		return o.value == other.value
	case KindString:
		return o.str == other.str
	case KindList:
		if len(o.list) != len(other.list) {
			return false
		}
		for i := range o.list {
			if !o.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(o.m) != len(other.m) {
			return false
		}
		for k, v := range o.m {
			if v2, ok := other.m[k]; !ok || !v.Equal(v2) {
				return false
			}
		}
		return true
	case KindCall:
		return o.str == other.str && o.args.Equal(*other.args)
	}
	return false
}

// String returns a debugging representation of the Object. Use parse.Repr for
// the canonical text rendering.
func (o Object) String() string {
	var sb strings.Builder
	o.writeDebug(&sb)
	return sb.String()
}

func (o Object) writeDebug(sb *strings.Builder) {
	switch o.kind {
	case KindNone:
		sb.WriteString("None")
	case KindValue:
		sb.WriteString(strconv.FormatInt(o.value, 10))
	case KindString:
		sb.WriteString(strconv.Quote(o.str))
	case KindList:
		sb.WriteString("List[")
		for i, e := range o.list {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.writeDebug(sb)
		}
		sb.WriteString("]")
	case KindMap:
		sb.WriteString("Map[")
		for i, k := range o.Keys() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteString(": ")
			o.m[k].writeDebug(sb)
		}
		sb.WriteString("]")
	case KindCall:
		sb.WriteString("Call(")
		sb.WriteString(o.str)
		sb.WriteString(", ")
		o.args.writeDebug(sb)
		sb.WriteString(")")
	}
}
