// Package sched provides a per-component timer registry.  Components that
// juggle several timers (the popup controller, the checkout orchestrator)
// own one Scheduler each and call DisposeAll exactly once on teardown, so
// the cancellation contract is mechanical instead of convention-based.
package sched

import (
	"sync"
	"time"
)

// Handle cancels one scheduled callback.  Stop is idempotent and safe to
// call after the callback has fired.
type Handle struct {
	once   sync.Once
	cancel func()
}

// Stop cancels the callback if it has not fired yet.
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.once.Do(h.cancel)
}

// Scheduler owns a set of timers and tickers.  After DisposeAll it is
// inert: further After/Every calls return handles that never fire.
type Scheduler struct {
	mu       sync.Mutex
	next     int
	active   map[int]func()
	disposed bool
}

// New returns an empty scheduler.
func New() *Scheduler {
	return &Scheduler{active: make(map[int]func())}
}

// After runs fn once after d.  The callback runs on its own goroutine.
func (s *Scheduler) After(d time.Duration, fn func()) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return &Handle{cancel: func() {}}
	}
	id := s.next
	s.next++
	t := time.AfterFunc(d, func() {
		s.remove(id)
		fn()
	})
	h := &Handle{cancel: func() {
		t.Stop()
		s.remove(id)
	}}
	// Register the once-wrapped Stop so DisposeAll and Handle.Stop cannot
	// both run the raw cancel.
	s.active[id] = h.Stop
	return h
}

// Every runs fn repeatedly at interval d until the handle is stopped or the
// scheduler is disposed.
func (s *Scheduler) Every(d time.Duration, fn func()) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return &Handle{cancel: func() {}}
	}
	id := s.next
	s.next++
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				fn()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	h := &Handle{cancel: func() {
		close(done)
		s.remove(id)
	}}
	s.active[id] = h.Stop
	return h
}

// DisposeAll cancels every outstanding timer and makes the scheduler inert.
func (s *Scheduler) DisposeAll() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	cancels := make([]func(), 0, len(s.active))
	for _, c := range s.active {
		cancels = append(cancels, c)
	}
	s.active = map[int]func(){}
	s.mu.Unlock()

	for _, c := range cancels {
		c()
	}
}

func (s *Scheduler) remove(id int) {
	s.mu.Lock()
	delete(s.active, id)
	s.mu.Unlock()
}
