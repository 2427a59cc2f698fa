// internal/store/store.go
package store

import "sync"

// Store is the latest-value cache shared by the sampler and the transmitter.
//
// Every tracked axis owns its own lock. A read of one axis never waits on a
// write to another, and there is NO joint snapshot across axes: two Gets in
// the same transmit cycle may observe values written at different instants.
type Store struct {
	axes  []string
	cells map[string]*cell // read-only after New
}

type cell struct {
	mu sync.Mutex
	v  float64
}

// New creates a store tracking exactly the given axes. Every value starts at 0.
// Duplicate names are tracked once.
func New(axes ...string) *Store {
	s := &Store{cells: make(map[string]*cell, len(axes))}
	for _, a := range axes {
		if _, ok := s.cells[a]; ok {
			continue
		}
		s.cells[a] = &cell{}
		s.axes = append(s.axes, a)
	}
	return s
}

// Set overwrites the value for axis. Last write wins.
// Untracked axes are ignored.
func (s *Store) Set(axis string, v float64) {
	c, ok := s.cells[axis]
	if !ok {
		return
	}
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

// Get returns the most recently set value for axis (0 if never set or untracked).
func (s *Store) Get(axis string) float64 {
	c, ok := s.cells[axis]
	if !ok {
		return 0
	}
	c.mu.Lock()
	v := c.v
	c.mu.Unlock()
	return v
}

// Tracks reports whether axis is part of the tracked set.
func (s *Store) Tracks(axis string) bool {
	_, ok := s.cells[axis]
	return ok
}

// Axes returns the tracked axes in construction order.
func (s *Store) Axes() []string {
	out := make([]string, len(s.axes))
	copy(out, s.axes)
	return out
}

// Snapshot reads every axis one after the other.
// Values are individually consistent only.
func (s *Store) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(s.axes))
	for _, a := range s.axes {
		out[a] = s.Get(a)
	}
	return out
}
