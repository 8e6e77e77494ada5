package backend

import "slices"

// SetBuilder collects backends during startup. The first and last backends
// are pinned: they stay in place and cannot be removed. Everything else is
// kept in insertion order without duplicates.
//
// A SetBuilder is not safe for concurrent use and must not be used after
// Freeze.
type SetBuilder struct {
	first  Backend
	last   Backend
	middle []Backend
}

// NewSetBuilder creates a builder with first and last pinned. Either may be
// nil. If both are the same backend it is pinned first only.
func NewSetBuilder(first, last Backend) *SetBuilder {
	if first != nil && last == first {
		last = nil
	}
	return &SetBuilder{first: first, last: last}
}

// Add appends b unless it is nil or already present. Returns whether b was
// added.
func (s *SetBuilder) Add(b Backend) bool {
	if b == nil || s.Contains(b) {
		return false
	}
	s.middle = append(s.middle, b)
	return true
}

// Remove drops b. Pinned backends are never removed.
func (s *SetBuilder) Remove(b Backend) bool {
	if b == nil || b == s.first || b == s.last {
		return false
	}
	idx := slices.Index(s.middle, b)
	if idx < 0 {
		return false
	}
	s.middle = slices.Delete(s.middle, idx, idx+1)
	return true
}

// Contains reports whether b is already part of the set.
func (s *SetBuilder) Contains(b Backend) bool {
	if b == nil {
		return false
	}
	return b == s.first || b == s.last || slices.Contains(s.middle, b)
}

// Len returns the number of backends.
func (s *SetBuilder) Len() int {
	n := len(s.middle)
	if s.first != nil {
		n++
	}
	if s.last != nil {
		n++
	}
	return n
}

// Backends returns a copy of the backends in order.
func (s *SetBuilder) Backends() []Backend {
	out := make([]Backend, 0, s.Len())
	if s.first != nil {
		out = append(out, s.first)
	}
	out = append(out, s.middle...)
	if s.last != nil {
		out = append(out, s.last)
	}
	return out
}

// Freeze returns the immutable Set. The builder gives up its storage.
func (s *SetBuilder) Freeze() *Set {
	set := newSet(s.Backends())
	s.first, s.last, s.middle = nil, nil, nil
	return set
}

// Set is an immutable, ordered, duplicate-free backend collection.
type Set struct {
	backends    []Backend
	connections []Connection
}

// NewSet builds a Set from backends, dropping nils and duplicates.
func NewSet(backends ...Backend) *Set {
	b := NewSetBuilder(nil, nil)
	for _, be := range backends {
		b.Add(be)
	}
	return b.Freeze()
}

func newSet(backends []Backend) *Set {
	conns := make([]Connection, len(backends))
	for i, b := range backends {
		conns[i] = b
	}
	return &Set{backends: backends, connections: conns}
}

// Backends returns a copy of the backends in order.
func (s *Set) Backends() []Backend {
	return slices.Clone(s.backends)
}

// Connections returns the read-only connection view, in the same order.
func (s *Set) Connections() []Connection {
	return slices.Clone(s.connections)
}

// Len returns the number of backends.
func (s *Set) Len() int {
	return len(s.backends)
}

// Contains reports whether b is part of the set.
func (s *Set) Contains(b Backend) bool {
	return b != nil && slices.Contains(s.backends, b)
}

// First returns the first backend, or nil for an empty set.
func (s *Set) First() Backend {
	if len(s.backends) == 0 {
		return nil
	}
	return s.backends[0]
}

// Last returns the last backend, or nil for an empty set.
func (s *Set) Last() Backend {
	if len(s.backends) == 0 {
		return nil
	}
	return s.backends[len(s.backends)-1]
}

// Filter returns a new Set with the backends keep accepts, order preserved.
func (s *Set) Filter(keep func(Backend) bool) *Set {
	out := make([]Backend, 0, len(s.backends))
	for _, b := range s.backends {
		if keep(b) {
			out = append(out, b)
		}
	}
	return newSet(out)
}

// Compile-time checks that both collections satisfy View.
var (
	_ View = (*SetBuilder)(nil)
	_ View = (*Set)(nil)
)
