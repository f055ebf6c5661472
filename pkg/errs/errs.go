// Package errs contains reusable error types.
//
// Every error type corresponds to one kind of the interpreter's error
// taxonomy; Kind classifies any error, including wrapped ones.
package errs

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an error.
type ErrorKind int

// Possible values of ErrorKind. KindSyntax is used by parse errors.
const (
	KindOther ErrorKind = iota
	KindSyntax
	KindUnknownCommand
	KindWrongTarget
	KindNotExposed
	KindArgumentShape
	KindTypeMismatch
	KindNotModifiable
	KindDuplicateKey
	KindKeyNotFound
)

var kindNames = [...]string{
	"other", "syntax error", "unknown command", "wrong target kind",
	"not exposed", "argument shape error", "type mismatch", "not modifiable",
	"duplicate key", "key not found",
}

func (k ErrorKind) String() string {
	if 0 <= k && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Kinder is implemented by all errors of this package and by parse errors.
type Kinder interface {
	ErrorKind() ErrorKind
}

// Kind returns the ErrorKind of err, unwrapping it as needed. It returns
// KindOther for errors that do not implement Kinder.
func Kind(err error) ErrorKind {
	var k Kinder
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return KindOther
}

// UnknownCommand is returned when a name is not found in the command map.
type UnknownCommand struct {
	Name string
}

func (e UnknownCommand) Error() string {
	return fmt.Sprintf("command %q does not exist", e.Name)
}

func (UnknownCommand) ErrorKind() ErrorKind { return KindUnknownCommand }

// WrongTarget is returned when a command is invoked against an incompatible or
// absent target.
type WrongTarget struct {
	Name   string
	Want   string
	Actual string
}

func (e WrongTarget) Error() string {
	return fmt.Sprintf("command %q needs a %s target, but got %s",
		e.Name, e.Want, e.Actual)
}

func (WrongTarget) ErrorKind() ErrorKind { return KindWrongTarget }

// NotExposed is returned when an external caller invokes a command that is not
// public.
type NotExposed struct {
	Name string
}

func (e NotExposed) Error() string {
	return fmt.Sprintf("command %q is not exposed to external callers", e.Name)
}

func (NotExposed) ErrorKind() ErrorKind { return KindNotExposed }

// Possible values of ArgumentShape.Problem.
const (
	TooManyArguments = "too many arguments"
	TooFewArguments  = "too few arguments"
	NotAValue        = "not a value"
	NotAString       = "not a string"
	NotAList         = "not a list"
	// Calls nest too deeply, usually because a method calls itself.
	CallDepthExceeded = "call depth exceeded"
)

// ArgumentShape is returned when the arguments of a command have the wrong
// arity or type.
type ArgumentShape struct {
	// Name of the command, possibly empty.
	Name string
	// One of the constants above, or a free-form description.
	Problem string
	// Representation of the offending argument, possibly empty.
	Actual string
}

func (e ArgumentShape) Error() string {
	msg := e.Problem
	if e.Name != "" {
		msg = e.Name + ": " + msg
	}
	if e.Actual != "" {
		msg += ": " + e.Actual
	}
	return msg
}

func (ArgumentShape) ErrorKind() ErrorKind { return KindArgumentShape }

// TypeMismatch is returned when an object storage entry is set with a value of
// an incompatible type.
type TypeMismatch struct {
	Key    string
	Want   string
	Actual string
}

func (e TypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: %q holds a %s, got %s", e.Key, e.Want, e.Actual)
}

func (TypeMismatch) ErrorKind() ErrorKind { return KindTypeMismatch }

// NotModifiable is returned when a constant entry is set or a built-in command
// is erased.
type NotModifiable struct {
	Key string
}

func (e NotModifiable) Error() string {
	return fmt.Sprintf("%q is not modifiable", e.Key)
}

func (NotModifiable) ErrorKind() ErrorKind { return KindNotModifiable }

// DuplicateKey is returned when an insertion collides with an existing command
// or storage key.
type DuplicateKey struct {
	Key string
}

func (e DuplicateKey) Error() string {
	return fmt.Sprintf("%q already exists", e.Key)
}

func (DuplicateKey) ErrorKind() ErrorKind { return KindDuplicateKey }

// KeyNotFound is returned when an operation refers to an absent storage key.
type KeyNotFound struct {
	Key string
}

func (e KeyNotFound) Error() string {
	return fmt.Sprintf("%q not found", e.Key)
}

func (KeyNotFound) ErrorKind() ErrorKind { return KindKeyNotFound }
