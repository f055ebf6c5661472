// Package objstore implements the backing store of user-defined variables and
// methods.
//
// Each entry holds an obj.Object of a declared Type. Function entries hold a
// List of Calls that is replayed through the dispatcher when the entry is
// called; multi entries hold a map from sub-keys to such bodies. Entries of
// multi type flagged FlagRlookup are indexed by sub-key, so that the set of
// multi entries registering under a sub-key can be found without a scan.
package objstore

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"src.rtorc.sh/pkg/errs"
	"src.rtorc.sh/pkg/logutil"
	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/parse"
	"src.rtorc.sh/pkg/target"
)

var logger = logutil.GetLogger("[objstore] ")

// Type is the declared type of an entry.
type Type uint8

// Possible values of Type.
const (
	TypeValue Type = iota
	TypeBool
	TypeString
	TypeList
	TypeFunction
	TypeMulti
)

var typeNames = [...]string{"value", "bool", "string", "list", "function", "multi"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// ParseType is the inverse of Type.String. It also accepts "simple" as an
// alias of "function".
func ParseType(s string) (Type, bool) {
	if s == "simple" {
		return TypeFunction, true
	}
	for i, name := range typeNames {
		if name == s {
			return Type(i), true
		}
	}
	return 0, false
}

// Flags is a bitset of attributes of an entry.
type Flags uint8

const (
	// FlagConst forbids any mutation after creation.
	FlagConst Flags = 1 << iota
	// FlagPrivate hides the generated commands from external callers.
	FlagPrivate
	// FlagStatic suppresses the generated ".set" command.
	FlagStatic
	// FlagRlookup indexes the sub-keys of a multi entry.
	FlagRlookup
	// FlagSession marks the entry as persisted across sessions.
	FlagSession
)

// Entry is a snapshot of a storage entry.
type Entry struct {
	Key   string
	Value obj.Object
	Type  Type
	Flags Flags
}

// Namespace is implemented by the command registry; storage keys may not
// collide with command names.
type Namespace interface {
	Has(name string) bool
}

// Caller is implemented by the dispatcher. Function bodies are run through it.
type Caller interface {
	Call(t target.Target, name string, args obj.Object) (obj.Object, error)
}

type entry struct {
	Entry
	multi map[string]obj.Object
}

// Storage holds entries keyed by name. It is safe for concurrent use.
type Storage struct {
	mu      sync.RWMutex
	ns      Namespace
	entries map[string]*entry
	// Sub-key -> set of keys of rlookup multi entries having that sub-key.
	rlookup map[string]map[string]struct{}
}

// New returns an empty Storage. The Namespace may be nil.
func New(ns Namespace) *Storage {
	return &Storage{
		ns:      ns,
		entries: make(map[string]*entry),
		rlookup: make(map[string]map[string]struct{}),
	}
}

// InsertStr creates an entry. It fails with DuplicateKey if key is taken by
// another entry, or if key or key.set is the name of a command.
func (s *Storage) InsertStr(key string, value obj.Object, typ Type, flags Flags) error {
	value, err := coerce(key, typ, value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; ok {
		return errs.DuplicateKey{Key: key}
	}
	if s.ns != nil {
		if s.ns.Has(key) || s.ns.Has(key+".set") {
			return errs.DuplicateKey{Key: key}
		}
		if stem := strings.TrimSuffix(key, ".set"); stem != key && s.ns.Has(stem) {
			return errs.DuplicateKey{Key: key}
		}
	}
	e := &entry{Entry: Entry{Key: key, Value: value, Type: typ, Flags: flags}}
	if typ == TypeMulti {
		e.Value = obj.None()
		e.multi = make(map[string]obj.Object)
	}
	s.entries[key] = e
	return nil
}

// Has returns whether an entry exists.
func (s *Storage) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key]
	return ok
}

// Get returns a snapshot of an entry. The Value of a multi entry is a Map of
// its sub-keys.
func (s *Storage) Get(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	return e.snapshot(), true
}

func (e *entry) snapshot() Entry {
	snap := e.Entry
	if e.Type == TypeMulti {
		snap.Value = obj.NewMap(e.multi)
	}
	return snap
}

// GetStr returns the value of an entry.
func (s *Storage) GetStr(key string) (obj.Object, error) {
	e, ok := s.Get(key)
	if !ok {
		return obj.None(), errs.KeyNotFound{Key: key}
	}
	return e.Value, nil
}

// Keys returns the keys of all entries, sorted.
func (s *Storage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Erase removes an entry. Const and static entries cannot be erased.
func (s *Storage) Erase(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return errs.KeyNotFound{Key: key}
	}
	if e.Flags&(FlagConst|FlagStatic) != 0 {
		return errs.NotModifiable{Key: key}
	}
	for sub := range e.multi {
		s.unindex(sub, key)
	}
	delete(s.entries, key)
	return nil
}

// AddFlags sets additional flags on an entry.
func (s *Storage) AddFlags(key string, flags Flags) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return errs.KeyNotFound{Key: key}
	}
	e.Flags |= flags
	return nil
}

// SetStrValue sets a value entry.
func (s *Storage) SetStrValue(key string, v int64) error {
	return s.set(key, TypeValue, obj.NewValue(v))
}

// SetStrBool sets a bool entry. Any nonzero value is stored as 1.
func (s *Storage) SetStrBool(key string, b bool) error {
	return s.set(key, TypeBool, obj.NewBool(b))
}

// SetStrString sets a string entry.
func (s *Storage) SetStrString(key string, str string) error {
	return s.set(key, TypeString, obj.NewString(str))
}

// SetStrList sets a list entry.
func (s *Storage) SetStrList(key string, l obj.Object) error {
	return s.set(key, TypeList, l)
}

// SetStrFunction replaces the body of a function entry. The body is either
// statement text or a List of Calls and statement texts.
func (s *Storage) SetStrFunction(key string, body obj.Object) error {
	return s.set(key, TypeFunction, body)
}

// SetStr sets an entry of any type other than multi, checking that value is
// compatible with the declared type.
func (s *Storage) SetStr(key string, value obj.Object) error {
	e, ok := s.Get(key)
	if !ok {
		return errs.KeyNotFound{Key: key}
	}
	return s.set(key, e.Type, value)
}

func (s *Storage) set(key string, typ Type, value obj.Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return errs.KeyNotFound{Key: key}
	}
	if e.Flags&FlagConst != 0 {
		return errs.NotModifiable{Key: key}
	}
	if e.Type != typ || typ == TypeMulti {
		return errs.TypeMismatch{Key: key, Want: e.Type.String(), Actual: typ.String()}
	}
	value, err := coerce(key, typ, value)
	if err != nil {
		return err
	}
	e.Value = value.WithFlags(e.Value.Flags())
	return nil
}

// Checks that value fits typ and converts it to the stored form.
func coerce(key string, typ Type, value obj.Object) (obj.Object, error) {
	mismatch := func() error {
		return errs.TypeMismatch{Key: key, Want: typ.String(), Actual: value.Kind().String()}
	}
	switch typ {
	case TypeValue:
		if !value.IsValue() {
			return obj.None(), mismatch()
		}
	case TypeBool:
		if !value.IsValue() {
			return obj.None(), mismatch()
		}
		return obj.NewBool(value.AsValue() != 0), nil
	case TypeString:
		if !value.IsString() {
			return obj.None(), mismatch()
		}
	case TypeList:
		if !value.IsList() {
			return obj.None(), mismatch()
		}
	case TypeFunction:
		return functionBody(key, value)
	case TypeMulti:
		if !value.IsNone() {
			return obj.None(), mismatch()
		}
	default:
		return obj.None(), mismatch()
	}
	return value, nil
}

// Converts statement text, a Call or a List of those to a List of Calls.
func functionBody(key string, body obj.Object) (obj.Object, error) {
	var calls []obj.Object
	for _, elem := range body.Elems() {
		switch elem.Kind() {
		case obj.KindCall:
			calls = append(calls, elem)
		case obj.KindString:
			parsed, err := parse.ParseStatements(parse.Source{Name: key, Code: elem.AsString()})
			if err != nil {
				return obj.None(), err
			}
			calls = append(calls, parsed...)
		default:
			return obj.None(), errs.TypeMismatch{
				Key: key, Want: TypeFunction.String(), Actual: elem.Kind().String()}
		}
	}
	return obj.NewListFrom(calls), nil
}

// CallFunctionStr calls a function or multi entry against t. A function entry
// runs its statements in order and returns the result of the last one. A multi
// entry runs the body of every sub-key in sorted order and returns None. The
// first error stops the call.
func (s *Storage) CallFunctionStr(key string, t target.Target, c Caller) (obj.Object, error) {
	e, ok := s.Get(key)
	if !ok {
		return obj.None(), errs.KeyNotFound{Key: key}
	}
	switch e.Type {
	case TypeFunction:
		return runBody(e.Value, t, c)
	case TypeMulti:
		for _, sub := range e.Value.Keys() {
			body, _ := e.Value.Get(sub)
			if _, err := runBody(body, t, c); err != nil {
				return obj.None(), err
			}
		}
		return obj.None(), nil
	}
	return obj.None(), errs.TypeMismatch{Key: key, Want: TypeFunction.String(), Actual: e.Type.String()}
}

func runBody(body obj.Object, t target.Target, c Caller) (obj.Object, error) {
	result := obj.None()
	for _, call := range body.Elems() {
		var err error
		result, err = c.Call(t, call.CallName(), call.CallArgs())
		if err != nil {
			return obj.None(), err
		}
	}
	return result, nil
}

func (s *Storage) multiEntry(key string) (*entry, error) {
	e, ok := s.entries[key]
	if !ok {
		return nil, errs.KeyNotFound{Key: key}
	}
	if e.Type != TypeMulti {
		return nil, errs.TypeMismatch{Key: key, Want: TypeMulti.String(), Actual: e.Type.String()}
	}
	return e, nil
}

// SetStrMultiKey sets the body of a sub-key of a multi entry. A None or empty
// body erases the sub-key instead.
func (s *Storage) SetStrMultiKey(key, sub string, body obj.Object) error {
	if body.IsNone() || body.IsString() && body.AsString() == "" {
		return s.EraseStrMultiKey(key, sub)
	}
	calls, err := functionBody(key+"."+sub, body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.multiEntry(key)
	if err != nil {
		return err
	}
	if e.Flags&FlagConst != 0 {
		return errs.NotModifiable{Key: key}
	}
	e.multi[sub] = calls
	if e.Flags&FlagRlookup != 0 {
		if s.rlookup[sub] == nil {
			s.rlookup[sub] = make(map[string]struct{})
		}
		s.rlookup[sub][key] = struct{}{}
	}
	return nil
}

// HasStrMultiKey returns whether a multi entry has a sub-key.
func (s *Storage) HasStrMultiKey(key, sub string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, err := s.multiEntry(key)
	if err != nil {
		return false, err
	}
	_, ok := e.multi[sub]
	return ok, nil
}

// EraseStrMultiKey removes a sub-key of a multi entry. Removing an absent
// sub-key is not an error.
func (s *Storage) EraseStrMultiKey(key, sub string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.multiEntry(key)
	if err != nil {
		return err
	}
	if e.Flags&FlagConst != 0 {
		return errs.NotModifiable{Key: key}
	}
	delete(e.multi, sub)
	s.unindex(sub, key)
	return nil
}

// ListStrMultiKeys returns the sub-keys of a multi entry, sorted.
func (s *Storage) ListStrMultiKeys(key string) ([]string, error) {
	e, ok := s.Get(key)
	if !ok {
		return nil, errs.KeyNotFound{Key: key}
	}
	if e.Type != TypeMulti {
		return nil, errs.TypeMismatch{Key: key, Want: TypeMulti.String(), Actual: e.Type.String()}
	}
	return e.Value.Keys(), nil
}

// RlookupObjList returns the keys of the rlookup multi entries that have the
// given sub-key, sorted.
func (s *Storage) RlookupObjList(sub string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.rlookup[sub]))
	for k := range s.rlookup[sub] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RlookupClear removes the given sub-key from every rlookup multi entry that
// has it.
func (s *Storage) RlookupClear(sub string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.rlookup[sub] {
		if e, ok := s.entries[key]; ok {
			delete(e.multi, sub)
		}
	}
	delete(s.rlookup, sub)
}

func (s *Storage) unindex(sub, key string) {
	if set, ok := s.rlookup[sub]; ok {
		delete(set, key)
		if len(set) == 0 {
			delete(s.rlookup, sub)
		}
	}
}

// SessionValues returns the values of all entries flagged FlagSession.
func (s *Storage) SessionValues() map[string]obj.Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values := make(map[string]obj.Object)
	for k, e := range s.entries {
		if e.Flags&FlagSession != 0 {
			values[k] = e.snapshot().Value.WithFlags(obj.FlagSession)
		}
	}
	return values
}

// RestoreSession sets session entries from saved values. Keys without a
// matching session entry and values of the wrong type are logged and skipped.
// It returns the number of entries restored.
func (s *Storage) RestoreSession(values map[string]obj.Object) int {
	n := 0
	for k, v := range values {
		e, ok := s.Get(k)
		if !ok || e.Flags&FlagSession == 0 {
			logger.Printf("skipping saved value of %q: no session entry", k)
			continue
		}
		var err error
		if e.Type == TypeMulti {
			err = s.restoreMulti(k, v)
		} else {
			err = s.restore(k, e.Type, v)
		}
		if err != nil {
			logger.Printf("skipping saved value of %q: %v", k, err)
			continue
		}
		n++
	}
	return n
}

func (s *Storage) restore(key string, typ Type, value obj.Object) error {
	value, err := coerce(key, typ, value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return errs.KeyNotFound{Key: key}
	}
	e.Value = value
	return nil
}

func (s *Storage) restoreMulti(key string, value obj.Object) error {
	if !value.IsMap() {
		return errs.TypeMismatch{Key: key, Want: TypeMulti.String(), Actual: value.Kind().String()}
	}
	for _, sub := range value.Keys() {
		body, _ := value.Get(sub)
		if err := s.SetStrMultiKey(key, sub, body); err != nil {
			return err
		}
	}
	return nil
}
