package store

import (
	"github.com/atomicstack/tabflip/internal/logging/events"
	"github.com/atomicstack/tabflip/internal/tabs"
)

// PutPreview stores p under id and prunes the cache back to capacity. The
// latest write for a tab wins.
func (s *Store) PutPreview(id tabs.ID, p tabs.Preview) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.previews[id]; ok {
		s.order = without(s.order, id)
	}
	s.previews[id] = p
	s.order = append(s.order, id)
	s.pruneLocked()
}

// Preview returns the cached preview for id, if any.
func (s *Store) Preview(id tabs.ID) (tabs.Preview, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.previews[id]
	return p, ok
}

// PreviewCount returns the number of cached previews.
func (s *Store) PreviewCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.previews)
}

// Prune evicts previews until the cache is within capacity. Entries for tabs
// absent from every stack go first; members are only evicted, oldest first,
// once no non-member remains.
func (s *Store) Prune() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked()
}

func (s *Store) pruneLocked() {
	if len(s.previews) <= s.maxPreviews {
		return
	}
	evicted := make([]int, 0, len(s.previews)-s.maxPreviews)
	for _, id := range append([]tabs.ID(nil), s.order...) {
		if len(s.previews) <= s.maxPreviews {
			break
		}
		if s.memberLocked(id) {
			continue
		}
		s.deletePreview(id)
		evicted = append(evicted, int(id))
	}
	for len(s.previews) > s.maxPreviews && len(s.order) > 0 {
		id := s.order[0]
		s.deletePreview(id)
		evicted = append(evicted, int(id))
	}
	events.Preview.Prune(evicted, len(s.previews))
}

func (s *Store) deletePreview(id tabs.ID) {
	if _, ok := s.previews[id]; !ok {
		return
	}
	delete(s.previews, id)
	s.order = without(s.order, id)
}
