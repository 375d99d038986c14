// Package testutil provides in-memory doubles shared by package tests.
package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/atomicstack/tabflip/internal/host"
	"github.com/atomicstack/tabflip/internal/tabs"
)

// FakeHost is an in-memory host.Host. Tabs are listed in insertion order.
type FakeHost struct {
	mu sync.Mutex

	tabs  map[tabs.ID]tabs.Tab
	order []tabs.ID

	focused    tabs.WindowID
	hasFocused bool

	events chan host.Event

	captureData []byte
	captureErr  error
	queryErr    error
	getErrs     map[tabs.ID]error
	activateErr error

	activated  []tabs.ID
	captures   []tabs.WindowID
	queryCalls int
}

// NewFakeHost returns a host preloaded with ts.
func NewFakeHost(ts ...tabs.Tab) *FakeHost {
	h := &FakeHost{
		tabs:        make(map[tabs.ID]tabs.Tab),
		events:      make(chan host.Event, 64),
		getErrs:     make(map[tabs.ID]error),
		captureData: []byte{0xff, 0xd8, 0xff, 0xd9},
	}
	for _, t := range ts {
		h.AddTab(t)
	}
	return h
}

// AddTab inserts or replaces t.
func (h *FakeHost) AddTab(t tabs.Tab) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.tabs[t.ID]; !ok {
		h.order = append(h.order, t.ID)
	}
	h.tabs[t.ID] = t
}

// RemoveTab deletes id without emitting a notification.
func (h *FakeHost) RemoveTab(id tabs.ID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.tabs, id)
	for i, existing := range h.order {
		if existing == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Emit queues evt on the events channel.
func (h *FakeHost) Emit(evt host.Event) {
	h.events <- evt
}

// Close closes the events channel.
func (h *FakeHost) Close() {
	close(h.events)
}

// SetFocusedWindow makes FocusedWindow report w.
func (h *FakeHost) SetFocusedWindow(w tabs.WindowID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.focused = w
	h.hasFocused = true
}

// SetCaptureResult controls what CaptureVisibleSurface returns.
func (h *FakeHost) SetCaptureResult(data []byte, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.captureData = data
	h.captureErr = err
}

// SetQueryError makes QueryTabs fail with err.
func (h *FakeHost) SetQueryError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queryErr = err
}

// SetGetError makes GetTab(id) fail with err.
func (h *FakeHost) SetGetError(id tabs.ID, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.getErrs[id] = err
}

// SetActivateError makes ActivateTab fail with err.
func (h *FakeHost) SetActivateError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.activateErr = err
}

// Activated lists ActivateTab calls in order.
func (h *FakeHost) Activated() []tabs.ID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]tabs.ID(nil), h.activated...)
}

// Captures lists the windows passed to CaptureVisibleSurface.
func (h *FakeHost) Captures() []tabs.WindowID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]tabs.WindowID(nil), h.captures...)
}

// QueryCalls counts QueryTabs invocations.
func (h *FakeHost) QueryCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.queryCalls
}

func (h *FakeHost) CaptureVisibleSurface(ctx context.Context, window tabs.WindowID, opts host.CaptureOptions) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.captures = append(h.captures, window)
	if h.captureErr != nil {
		return nil, h.captureErr
	}
	return append([]byte(nil), h.captureData...), nil
}

func (h *FakeHost) QueryTabs(ctx context.Context, q host.Query) ([]tabs.Tab, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.queryCalls++
	if h.queryErr != nil {
		return nil, h.queryErr
	}
	out := make([]tabs.Tab, 0, len(h.order))
	for _, id := range h.order {
		if t := h.tabs[id]; q.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (h *FakeHost) GetTab(ctx context.Context, id tabs.ID) (tabs.Tab, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.getErrs[id]; err != nil {
		return tabs.Tab{}, err
	}
	t, ok := h.tabs[id]
	if !ok {
		return tabs.Tab{}, host.ErrTabNotFound
	}
	return t, nil
}

func (h *FakeHost) ActivateTab(ctx context.Context, id tabs.ID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.activated = append(h.activated, id)
	if h.activateErr != nil {
		return h.activateErr
	}
	target, ok := h.tabs[id]
	if !ok {
		return host.ErrTabNotFound
	}
	for tid, t := range h.tabs {
		if t.Window == target.Window {
			t.Active = tid == id
			h.tabs[tid] = t
		}
	}
	return nil
}

func (h *FakeHost) Events() <-chan host.Event {
	return h.events
}

func (h *FakeHost) FocusedWindow(ctx context.Context) (tabs.WindowID, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.focused, h.hasFocused
}

// Windows returns the distinct windows holding tabs, ascending.
func (h *FakeHost) Windows() []tabs.WindowID {
	h.mu.Lock()
	defer h.mu.Unlock()
	seen := make(map[tabs.WindowID]struct{})
	var out []tabs.WindowID
	for _, t := range h.tabs {
		if _, ok := seen[t.Window]; !ok {
			seen[t.Window] = struct{}{}
			out = append(out, t.Window)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
