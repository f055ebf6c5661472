package cmdmap

import (
	"fmt"

	"src.rtorc.sh/pkg/errs"
	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/parse"
	"src.rtorc.sh/pkg/target"
)

// ArgKind is the expected shape of the arguments of a command.
type ArgKind uint8

// Possible values of ArgKind.
const (
	ArgGeneric ArgKind = iota
	ArgVoid
	ArgValue
	ArgString
	ArgList
)

var argKindNames = [...]string{"generic", "void", "value", "string", "list"}

func (k ArgKind) String() string {
	if int(k) < len(argKindNames) {
		return argKindNames[k]
	}
	return fmt.Sprintf("arg(%d)", int(k))
}

// TargetReq is the kind of target a command requires.
type TargetReq uint8

// Possible values of TargetReq. TargetAny accepts every target, including
// None.
const (
	TargetAny TargetReq = iota
	TargetNone
	TargetDownload
	TargetPeer
	TargetTracker
	TargetFile
	TargetPair
)

var targetReqKinds = [...]target.Kind{
	TargetNone:     target.KindNone,
	TargetDownload: target.KindDownload,
	TargetPeer:     target.KindPeer,
	TargetTracker:  target.KindTracker,
	TargetFile:     target.KindFile,
	TargetPair:     target.KindPair,
}

func (r TargetReq) String() string {
	if r == TargetAny {
		return "any"
	}
	if int(r) < len(targetReqKinds) {
		return targetReqKinds[r].String()
	}
	return fmt.Sprintf("target(%d)", int(r))
}

// Accepts returns whether a target of kind k satisfies the requirement.
func (r TargetReq) Accepts(k target.Kind) bool {
	return r == TargetAny || int(r) < len(targetReqKinds) && targetReqKinds[r] == k
}

// Shape describes the arguments and the target a command accepts.
type Shape struct {
	Arg    ArgKind
	Target TargetReq
}

// Commonly used shapes.
var (
	Void    = Shape{Arg: ArgVoid}
	Value   = Shape{Arg: ArgValue}
	String  = Shape{Arg: ArgString}
	List    = Shape{Arg: ArgList}
	Generic = Shape{Arg: ArgGeneric}
)

// On returns a copy of the shape narrowed to the given target requirement.
func (s Shape) On(r TargetReq) Shape {
	s.Target = r
	return s
}

func (s Shape) String() string {
	if s.Target == TargetAny {
		return s.Arg.String()
	}
	return s.Target.String() + " " + s.Arg.String()
}

// NormalizeArgs validates args against an argument kind and converts them to
// the canonical form the handler expects:
//
//   - ArgVoid accepts None or an empty List and gives None.
//   - ArgValue unwraps a single-element List and accepts a Value or a String
//     parseable as one, giving a Value.
//   - ArgString unwraps a single-element List and accepts a String, giving a
//     String. None gives the empty String.
//   - ArgList wraps a scalar into a single-element List. None gives the empty
//     List.
//   - ArgGeneric accepts anything unchanged.
//
// The name is only used in error messages.
func NormalizeArgs(name string, kind ArgKind, args obj.Object) (obj.Object, error) {
	switch kind {
	case ArgVoid:
		if args.IsNone() || args.IsList() && args.Len() == 0 {
			return obj.None(), nil
		}
		return obj.None(), shapeError(name, errs.TooManyArguments, args)
	case ArgValue:
		a := parse.SingleArgument(args)
		switch {
		case a.IsValue():
			return a, nil
		case a.IsString():
			v, err := parse.ParseValue(a.AsString(), 0, 1)
			if err != nil {
				return obj.None(), shapeError(name, errs.NotAValue, a)
			}
			return obj.NewValue(v), nil
		}
		return obj.None(), shapeError(name, errs.NotAValue, a)
	case ArgString:
		a := parse.SingleArgument(args)
		switch {
		case a.IsString():
			return a, nil
		case a.IsNone(), a.IsList() && a.Len() == 0:
			return obj.NewString(""), nil
		}
		return obj.None(), shapeError(name, errs.NotAString, a)
	case ArgList:
		switch args.Kind() {
		case obj.KindList:
			return args, nil
		case obj.KindNone:
			return obj.NewList(), nil
		case obj.KindValue, obj.KindString, obj.KindCall:
			return obj.NewList(args), nil
		}
		return obj.None(), shapeError(name, errs.NotAList, args)
	}
	return args, nil
}

func shapeError(name, problem string, actual obj.Object) error {
	return errs.ArgumentShape{Name: name, Problem: problem, Actual: parse.Repr(actual)}
}
