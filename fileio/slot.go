package fileio

import "sync"

// Result is the outcome of a background pick. Err is set instead of Content
// when reading failed.
type Result struct {
	Content string
	Name    string
	Err     error
}

// Slot holds at most one pending value. Put overwrites whatever is there;
// Take empties it.
type Slot[T any] struct {
	mu  sync.Mutex
	v   T
	set bool
}

// Put stores v, replacing any value not yet taken.
func (s *Slot[T]) Put(v T) {
	s.mu.Lock()
	s.v = v
	s.set = true
	s.mu.Unlock()
}

// Take returns the pending value and empties the slot. The boolean is false
// when nothing was pending.
func (s *Slot[T]) Take() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.v, s.set
	var zero T
	s.v = zero
	s.set = false
	return v, ok
}
