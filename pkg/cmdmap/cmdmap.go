// Package cmdmap implements the command registry, a table from command names
// to handlers tagged with capability flags and an argument shape.
package cmdmap

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"src.rtorc.sh/pkg/errs"
	"src.rtorc.sh/pkg/obj"
	"src.rtorc.sh/pkg/target"
)

// Handler implements a command.
type Handler func(t target.Target, args obj.Object) (obj.Object, error)

// Flags is a bitset of capabilities of an Entry.
type Flags uint16

const (
	// FlagPublic exposes the command to external callers.
	FlagPublic Flags = 1 << iota
	// FlagModifiable allows the command to be erased or redefined.
	FlagModifiable
	// FlagDeleteKey marks an entry generated by the method system.
	FlagDeleteKey
	// FlagPrivate hides the command from listings for external callers.
	FlagPrivate
	// FlagRawArgs passes Call arguments to the handler unevaluated.
	FlagRawArgs
)

// Entry is a registered command.
type Entry struct {
	Name    string
	Handler Handler
	// Name of the destination of a redirect entry. Redirect entries have no
	// Handler.
	Redirect string
	Shape    Shape
	Flags    Flags
	// Documentation of the parameters and of the command itself.
	ParmDoc string
	Doc     string
}

// IsRedirect returns whether the entry is an alias of another command.
func (e Entry) IsRedirect() bool { return e.Redirect != "" }

var (
	// ErrRedirectCycle is returned when a redirect would point at itself, or
	// when resolving finds two redirects pointing at each other.
	ErrRedirectCycle = errors.New("redirect cycle")
	// ErrBrokenRedirect is returned when resolving finds a redirect pointing at
	// another redirect. This happens when the destination of an alias is
	// erased and recreated as an alias.
	ErrBrokenRedirect = errors.New("redirect to a redirect")
)

// Map is the command registry. It is safe for concurrent use.
type Map struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// New returns an empty Map.
func New() *Map {
	return &Map{entries: make(map[string]*Entry)}
}

// Insert registers a built-in command. It panics if the name is already
// taken, since that can only be caused by a defect in startup code.
func (m *Map) Insert(e Entry) {
	if err := m.insert(e); err != nil {
		panic(err)
	}
}

// InsertSlot registers a command created at runtime. Such entries are always
// tagged FlagModifiable and FlagDeleteKey.
func (m *Map) InsertSlot(e Entry) error {
	e.Flags |= FlagModifiable | FlagDeleteKey
	return m.insert(e)
}

func (m *Map) insert(e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[e.Name]; ok {
		return errs.DuplicateKey{Key: e.Name}
	}
	m.entries[e.Name] = &e
	return nil
}

// Find returns the entry with the given name.
func (m *Map) Find(name string) (Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[name]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Has returns whether a command with the given name exists.
func (m *Map) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[name]
	return ok
}

// Names returns the names of all commands, sorted.
func (m *Map) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Listed returns the sorted names of the commands that start with prefix,
// leaving out those marked FlagPrivate.
func (m *Map) Listed(prefix string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var names []string
	for name, e := range m.entries {
		if strings.HasPrefix(name, prefix) && e.Flags&FlagPrivate == 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// CreateRedirect registers name as an alias of dest. If dest is itself a
// redirect, the new entry points at its destination, so that redirects are
// always a single hop.
func (m *Map) CreateRedirect(name, dest string, flags Flags) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[name]; ok {
		return errs.DuplicateKey{Key: name}
	}
	d, ok := m.entries[dest]
	if !ok {
		return errs.UnknownCommand{Name: dest}
	}
	if d.IsRedirect() {
		dest = d.Redirect
	}
	if dest == name {
		return fmt.Errorf("%w: %s -> %s", ErrRedirectCycle, name, dest)
	}
	m.entries[name] = &Entry{Name: name, Redirect: dest, Flags: flags}
	return nil
}

// Erase removes the named command. Only modifiable entries can be erased.
func (m *Map) Erase(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[name]
	if !ok {
		return errs.UnknownCommand{Name: name}
	}
	if e.Flags&FlagModifiable == 0 {
		return errs.NotModifiable{Key: name}
	}
	delete(m.entries, name)
	return nil
}

// Resolve finds the named command and follows a redirect. The returned entry
// is never a redirect. The flags of the returned entry are those of the entry
// named, so that an alias can be public while its destination is not.
func (m *Map) Resolve(name string) (Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[name]
	if !ok {
		return Entry{}, errs.UnknownCommand{Name: name}
	}
	if !e.IsRedirect() {
		return *e, nil
	}
	d, ok := m.entries[e.Redirect]
	if !ok {
		return Entry{}, errs.UnknownCommand{Name: e.Redirect}
	}
	if d.IsRedirect() {
		err := ErrBrokenRedirect
		if d.Redirect == name {
			err = ErrRedirectCycle
		}
		return Entry{}, fmt.Errorf("%w: %s -> %s -> %s", err, name, e.Redirect, d.Redirect)
	}
	resolved := *d
	resolved.Flags = d.Flags&^(FlagPublic|FlagPrivate) | e.Flags&(FlagPublic|FlagPrivate)
	return resolved, nil
}
