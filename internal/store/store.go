// Package store keeps the per-window most-recently-used tab stacks and the
// global preview cache. Both are in-memory only and rebuilt from the host's
// live tab list with Reseed whenever state turns out to be missing.
package store

import (
	"sync"

	"github.com/atomicstack/tabflip/internal/logging/events"
	"github.com/atomicstack/tabflip/internal/tabs"
)

const (
	// MaxMRU bounds each window's stack.
	MaxMRU = 5
	// MaxPreviews bounds the global preview cache.
	MaxPreviews = 20
)

// Store is the process-wide MRU and preview state. Every exported method
// completes its mutation under a single lock.
type Store struct {
	mu sync.Mutex

	maxMRU      int
	maxPreviews int

	stacks   map[tabs.WindowID][]tabs.ID
	previews map[tabs.ID]tabs.Preview
	// order records preview insertion order, oldest first.
	order []tabs.ID
}

// Option configures a Store.
type Option func(*Store)

// WithMaxMRU overrides the per-window stack capacity.
func WithMaxMRU(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxMRU = n
		}
	}
}

// WithMaxPreviews overrides the preview cache capacity.
func WithMaxPreviews(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxPreviews = n
		}
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		maxMRU:      MaxMRU,
		maxPreviews: MaxPreviews,
		stacks:      make(map[tabs.WindowID][]tabs.ID),
		previews:    make(map[tabs.ID]tabs.Preview),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Remove drops id from every stack and deletes its preview.
func (s *Store) Remove(id tabs.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for window, stack := range s.stacks {
		s.stacks[window] = without(stack, id)
	}
	s.deletePreview(id)
	events.Store.Remove(int(id))
}

// Stats summarises the store for status output.
type Stats struct {
	Windows  int
	Tracked  int
	Previews int
}

// Stats returns current counts.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{Windows: len(s.stacks), Previews: len(s.previews)}
	for _, stack := range s.stacks {
		st.Tracked += len(stack)
	}
	return st
}
