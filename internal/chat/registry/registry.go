// Package registry keeps the authoritative set of authenticated connections.
package registry

import (
	"sort"
	"sync"
)

// Registry - maps connection identity to live connection state.
// Structural mutations and snapshots are mutually exclusive; no network IO
// ever happens under the lock.
type Registry struct {
	mu    sync.RWMutex
	conns map[ID]*Conn
}

// New - builds an empty registry.
func New() *Registry {
	return &Registry{
		conns: make(map[ID]*Conn),
	}
}

// Insert - registers the connection under its identity, refusing to grow the
// registry past max entries (non-positive max means unbounded). The capacity
// check shares the lock with the map write, so concurrent inserts can never
// overfill the registry. Identity is the remote addr:port tuple, so a
// duplicate means a logic error.
func (r *Registry) Insert(c *Conn, max int) error {
	if c == nil {
		return ErrNilConn
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if max > 0 && len(r.conns) >= max {
		return ErrRoomFull
	}
	if _, ok := r.conns[c.ID()]; ok {
		return ErrDuplicateID
	}
	r.conns[c.ID()] = c
	return nil
}

// Remove - drops the identity from the registry, no-op when absent.
func (r *Registry) Remove(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

// Snapshot - returns a point-in-time copy of all entries, safe to iterate
// and write to without holding the registry lock.
func (r *Registry) Snapshot() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		snapshot = append(snapshot, c)
	}
	return snapshot
}

// Count - returns the number of registered connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Names - returns the display names of active connections, sorted.
func (r *Registry) Names() []string {
	names := []string{}
	for _, c := range r.Snapshot() {
		if c.Active() {
			names = append(names, c.Name())
		}
	}
	sort.Strings(names)
	return names
}

// FindByName - returns the first active connection with exactly this
// display name.
func (r *Registry) FindByName(name string) (*Conn, bool) {
	for _, c := range r.Snapshot() {
		if c.Active() && c.Name() == name {
			return c, true
		}
	}
	return nil, false
}
