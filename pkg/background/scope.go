// Package background joins related goroutines into a cancellable scope.
package background

import (
	"context"
	"sync"
	"time"
)

// Scope - binds a cancellable context to a wait group, so a set of related
// goroutines can be stopped and awaited as one unit.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScope - builds an active scope.
func NewScope() *Scope {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context - returns the scope context; it is done after Cancel.
func (s *Scope) Context() context.Context {
	return s.ctx
}

// Go - launches f as a member of the scope.
// f must return promptly once the passed context is done.
func (s *Scope) Go(f func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		f(s.ctx)
	}()
}

// Cancel - signals every member to stop without waiting for them.
func (s *Scope) Cancel() {
	s.cancel()
}

// Wait - blocks until all members finished or the timeout expired.
// Returns true when the scope drained in time.
func (s *Scope) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
