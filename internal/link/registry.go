// Package link resolves cross-component positional links. A layout publishes
// the bounds of named components here so that other components, in the same
// pass or the next one, can be positioned relative to them.
package link

import (
	"slices"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
)

// Store is the capability the layout driver and unit converters depend on.
type Store interface {
	Value(l *Layout, key string, field Field) (int, bool)
	SetBounds(l *Layout, key string, x, y, width, height int, temporary, incremental bool) bool
	ClearBounds(l *Layout, key string) bool
	ClearTemporaryBounds(l *Layout)
}

// Entry is one record in a Snapshot.
type Entry struct {
	Key       string `json:"key"`
	Bounds    Bounds `json:"bounds"`
	Temporary bool   `json:"temporary"`
}

type entry struct {
	ref       Ref
	committed map[string]*Bounds
	temporary map[string]*Bounds
}

func (e *entry) table(temporary bool) map[string]*Bounds {
	if temporary {
		return e.temporary
	}
	return e.committed
}

// Registry maps layout handles to their committed and temporary link tables.
// All operations share one mutex.
type Registry struct {
	mu      sync.Mutex
	newRef  RefFunc
	logger  *log.Logger
	entries []*entry
}

var _ Store = (*Registry)(nil)

// Option configures a Registry.
type Option func(*Registry)

// WithRefFunc replaces the weak reference primitive.
func WithRefFunc(fn RefFunc) Option {
	return func(r *Registry) {
		if fn != nil {
			r.newRef = fn
		}
	}
}

// WithLogger enables debug logging of registrations and evictions.
func WithLogger(logger *log.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{newRef: WeakRef}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Default is the process-wide registry.
var Default = NewRegistry()

// Register adds l eagerly. It reports false if l was already registered.
func (r *Registry) Register(l *Layout) bool {
	if l == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lookup(l) != nil {
		return false
	}
	r.add(l)
	return true
}

// Unregister drops every table owned by l. Owners call it on teardown so
// reclamation does not depend on the garbage collector.
func (r *Registry) Unregister(l *Layout) bool {
	if l == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := false
	for i := len(r.entries) - 1; i >= 0; i-- {
		v := r.entries[i].ref.Value()
		if v == nil || v == l {
			removed = removed || v == l
			r.evict(i, v == nil)
		}
	}
	return removed
}

// Sweep evicts every expired layout and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.entries)
	r.lookup(nil)
	return before - len(r.entries)
}

// Len returns the number of live layouts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lookup(nil)
	return len(r.entries)
}

// Value returns one field of the rectangle published under key. A temporary
// value wins over a committed one; unset fields fall through.
func (r *Registry) Value(l *Layout, key string, field Field) (int, bool) {
	if l == nil {
		return 0, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.lookup(l)
	if e == nil {
		return 0, false
	}
	if b, ok := e.temporary[key]; ok {
		if v := b.Get(field); v != NotSet {
			return v, true
		}
	}
	if b, ok := e.committed[key]; ok {
		if v := b.Get(field); v != NotSet {
			return v, true
		}
	}
	return 0, false
}

// SetBounds publishes a rectangle under key and reports whether anything
// changed.
//
// In incremental mode the stored rectangle is grown to the union of itself
// and the supplied one; it is never shrunk. An incremental temporary write
// with no temporary record yet starts the union from a copy of the committed
// record. A committed target is never seeded from the temporary table.
func (r *Registry) SetBounds(l *Layout, key string, x, y, width, height int, temporary, incremental bool) bool {
	if l == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.lookup(l)
	if e == nil {
		e = r.add(l)
	}

	table := e.table(temporary)
	old := table[key]
	if incremental && old == nil && temporary {
		if c, ok := e.committed[key]; ok {
			seed := *c
			old = &seed
			table[key] = old
		}
	}

	if old != nil && old.sameRect(x, y, width, height) {
		return false
	}
	if old == nil || !incremental {
		b := NewBounds(x, y, width, height)
		table[key] = &b
		return true
	}
	return old.union(x, y, width, height)
}

// ClearBounds removes the committed record for key and reports whether one
// existed.
func (r *Registry) ClearBounds(l *Layout, key string) bool {
	if l == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.lookup(l)
	if e == nil {
		return false
	}
	if _, ok := e.committed[key]; !ok {
		return false
	}
	delete(e.committed, key)
	return true
}

// ClearTemporaryBounds empties the temporary table of l. Layout passes call
// it first so speculative values never leak from one pass into the next.
func (r *Registry) ClearTemporaryBounds(l *Layout) {
	if l == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if e := r.lookup(l); e != nil {
		clear(e.temporary)
	}
}

// Snapshot returns the records visible for l sorted by key.
func (r *Registry) Snapshot(l *Layout) []Entry {
	if l == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e := r.lookup(l)
	if e == nil {
		return nil
	}

	visible := make(map[string]Entry, len(e.committed)+len(e.temporary))
	for key, b := range e.committed {
		visible[key] = Entry{Key: key, Bounds: *b}
	}
	for key, b := range e.temporary {
		visible[key] = Entry{Key: key, Bounds: *b, Temporary: true}
	}

	out := make([]Entry, 0, len(visible))
	for _, ent := range visible {
		out = append(out, ent)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

// lookup scans from the newest entry down, evicting expired layouts on the
// way, and returns the entry for l. Passing nil only sweeps.
// Callers must hold r.mu.
func (r *Registry) lookup(l *Layout) *entry {
	var found *entry
	for i := len(r.entries) - 1; i >= 0; i-- {
		v := r.entries[i].ref.Value()
		if v == nil {
			r.evict(i, true)
			continue
		}
		if found == nil && l != nil && v == l {
			found = r.entries[i]
		}
	}
	return found
}

func (r *Registry) add(l *Layout) *entry {
	e := &entry{
		ref:       r.newRef(l),
		committed: make(map[string]*Bounds, 4),
		temporary: make(map[string]*Bounds, 4),
	}
	r.entries = append(r.entries, e)
	if r.logger != nil {
		r.logger.Debug("layout registered", "layout", l.Name(), "live", len(r.entries))
	}
	return e
}

func (r *Registry) evict(i int, expired bool) {
	r.entries = slices.Delete(r.entries, i, i+1)
	if r.logger != nil {
		r.logger.Debug("layout evicted", "expired", expired, "live", len(r.entries))
	}
}
