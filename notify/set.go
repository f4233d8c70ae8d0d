// Package notify delivers notifications to listeners without keeping them
// alive.
package notify

import (
	"sync"
	"weak"
)

// A Set holds weak references to listeners of type T.  A listener stays
// registered until it is removed or until it is garbage collected, whichever
// comes first.  The zero Set is ready to use.
type Set[T any] struct {
	mu    sync.Mutex
	conns []weak.Pointer[T]
}

// Add registers l.  Adding a listener twice has no effect; Add reports whether
// l was newly added.
func (s *Set[T]) Add(l *T) bool {
	if l == nil {
		return false
	}
	w := weak.Make(l)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		if c == w {
			return false
		}
	}
	s.conns = append(s.conns, w)
	return true
}

func (s *Set[T]) Remove(l *T) {
	if l == nil {
		return
	}
	w := weak.Make(l)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.conns {
		if c == w {
			s.conns = append(s.conns[:i], s.conns[i+1:]...)
			return
		}
	}
}

// Len returns the number of live listeners.
func (s *Set[T]) Len() int { return len(s.live()) }

// Call calls f for each live listener in the order they were added.  Expired
// listeners are dropped.  f is called without holding the Set's lock, so it
// may add or remove listeners.
func (s *Set[T]) Call(f func(*T)) {
	for _, l := range s.live() {
		f(l)
	}
}

func (s *Set[T]) live() []*T {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls := make([]*T, 0, len(s.conns))
	conns := s.conns[:0]
	for _, c := range s.conns {
		if l := c.Value(); l != nil {
			ls = append(ls, l)
			conns = append(conns, c)
		}
	}
	for i := len(conns); i < len(s.conns); i++ {
		s.conns[i] = weak.Pointer[T]{}
	}
	s.conns = conns
	return ls
}
