package store

import (
	"github.com/atomicstack/tabflip/internal/logging/events"
	"github.com/atomicstack/tabflip/internal/tabs"
)

// Push moves id to the front of window's stack, inserting it when absent, and
// truncates the stack to capacity.
func (s *Store) Push(window tabs.WindowID, id tabs.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stack := without(s.stacks[window], id)
	stack = append(stack, 0)
	copy(stack[1:], stack)
	stack[0] = id
	if len(stack) > s.maxMRU {
		stack = stack[:s.maxMRU]
	}
	s.stacks[window] = stack
	events.Store.Push(int(window), int(id), len(stack))
}

// Snapshot returns a copy of window's stack, most recent first. The stack is
// created empty on first reference. An empty result is ambiguous between a
// fresh window and lost state, so callers reseed before trusting it.
func (s *Store) Snapshot(window tabs.WindowID) []tabs.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	stack, ok := s.stacks[window]
	if !ok {
		s.stacks[window] = nil
		return nil
	}
	return append([]tabs.ID(nil), stack...)
}

// Reseed replaces every stack with one built from a live enumeration: per
// window the active tab first, then the rest in the order given, truncated to
// capacity.
func (s *Store) Reseed(live []tabs.Tab) {
	rebuilt := make(map[tabs.WindowID][]tabs.ID)
	for _, t := range live {
		stack := without(rebuilt[t.Window], t.ID)
		if t.Active {
			stack = append([]tabs.ID{t.ID}, stack...)
		} else {
			stack = append(stack, t.ID)
		}
		rebuilt[t.Window] = stack
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for window, stack := range rebuilt {
		if len(stack) > s.maxMRU {
			rebuilt[window] = stack[:s.maxMRU]
		}
	}
	s.stacks = rebuilt
	events.Store.Reseed(len(live), len(rebuilt))
}

// Contains reports whether id is present in any stack.
func (s *Store) Contains(id tabs.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memberLocked(id)
}

func (s *Store) memberLocked(id tabs.ID) bool {
	for _, stack := range s.stacks {
		for _, candidate := range stack {
			if candidate == id {
				return true
			}
		}
	}
	return false
}

func without(stack []tabs.ID, id tabs.ID) []tabs.ID {
	for i, candidate := range stack {
		if candidate == id {
			out := make([]tabs.ID, 0, len(stack)-1)
			out = append(out, stack[:i]...)
			return append(out, stack[i+1:]...)
		}
	}
	return stack
}
