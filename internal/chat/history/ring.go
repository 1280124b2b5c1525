// Package history keeps a bounded in-memory tail of room lines,
// replayed to newly admitted participants.
package history

import (
	"errors"
	"sync"
)

// Ring - fixed-capacity ring of strings. Once full, every push evicts the
// oldest entry.
type Ring struct {
	mu   sync.RWMutex
	buf  []string
	head int // index of the oldest entry
	n    int
}

// NewRing - builds a ring with the given capacity.
func NewRing(max int) (*Ring, error) {
	if max <= 0 {
		return nil, errors.New("history.NewRing: capacity must be greater than 0")
	}
	return &Ring{buf: make([]string, max)}, nil
}

// Len - returns the number of stored lines.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.n
}

// Push - appends a line, evicting the oldest when full.
func (r *Ring) Push(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.n < len(r.buf) {
		r.buf[(r.head+r.n)%len(r.buf)] = line
		r.n++
		return
	}
	r.buf[r.head] = line
	r.head = (r.head + 1) % len(r.buf)
}

// Tail - copies up to n latest lines in chronological order,
// the first returned line is the oldest.
func (r *Ring) Tail(n int) []string {
	if n < 0 {
		n = -n
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n > r.n {
		n = r.n
	}
	tail := make([]string, 0, n)
	for i := r.n - n; i < r.n; i++ {
		tail = append(tail, r.buf[(r.head+i)%len(r.buf)])
	}
	return tail
}
