package cycle

import "github.com/atomicstack/tabflip/internal/tabs"

// Session is an open overlay over a fixed snapshot of candidates.
type Session struct {
	Candidates   []tabs.Descriptor
	Selected     int
	Generation   uint64
	Programmatic bool
}

// Current returns the selected candidate.
func (s *Session) Current() (tabs.Descriptor, bool) {
	if s == nil || s.Selected < 0 || s.Selected >= len(s.Candidates) {
		return tabs.Descriptor{}, false
	}
	return s.Candidates[s.Selected], true
}

func (s *Session) advance(delta int) {
	n := len(s.Candidates)
	if n == 0 {
		return
	}
	s.Selected = wrap(s.Selected+delta, n)
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
