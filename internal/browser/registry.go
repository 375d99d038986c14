package browser

import (
	"sync"

	"github.com/atomicstack/tabflip/internal/tabs"
)

// tabMeta is what the registry remembers about a page between host calls.
type tabMeta struct {
	window tabs.WindowID
	status string
	icon   string
}

// registry assigns stable tab and window IDs to page (P) and context (W)
// handles and tracks which tab is active in each window. Handles are opaque
// so the bookkeeping can be tested without a browser.
type registry[P, W comparable] struct {
	mu sync.Mutex

	nextTab    tabs.ID
	nextWindow tabs.WindowID

	byPage   map[P]tabs.ID
	pages    map[tabs.ID]P
	meta     map[tabs.ID]*tabMeta
	windows  map[W]tabs.WindowID
	order    []tabs.ID
	active   map[tabs.WindowID]tabs.ID
	focused  tabs.WindowID
	hasFocus bool
}

func newRegistry[P, W comparable]() *registry[P, W] {
	return &registry[P, W]{
		byPage:  make(map[P]tabs.ID),
		pages:   make(map[tabs.ID]P),
		meta:    make(map[tabs.ID]*tabMeta),
		windows: make(map[W]tabs.WindowID),
		active:  make(map[tabs.WindowID]tabs.ID),
	}
}

// addWindow returns the ID for w, assigning one on first sight.
func (r *registry[P, W]) addWindow(w W) tabs.WindowID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.windows[w]; ok {
		return id
	}
	r.nextWindow++
	r.windows[w] = r.nextWindow
	return r.nextWindow
}

// addPage registers p in window. first is true when p is the window's only
// tab, in which case it is also made active.
func (r *registry[P, W]) addPage(window tabs.WindowID, p P) (id tabs.ID, first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byPage[p]; ok {
		return existing, false
	}
	r.nextTab++
	id = r.nextTab
	r.byPage[p] = id
	r.pages[id] = p
	r.meta[id] = &tabMeta{window: window, status: tabs.StatusLoading}
	r.order = append(r.order, id)
	if _, ok := r.active[window]; !ok {
		r.active[window] = id
		r.focused, r.hasFocus = window, true
		first = true
	}
	return id, first
}

func (r *registry[P, W]) lookup(p P) (tabs.ID, tabs.WindowID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byPage[p]
	if !ok {
		return 0, 0, false
	}
	return id, r.meta[id].window, true
}

func (r *registry[P, W]) page(id tabs.ID) (P, tabs.WindowID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pages[id]
	if !ok {
		var zero P
		return zero, 0, false
	}
	return p, r.meta[id].window, true
}

// remove forgets p. When p was active, the most recently opened remaining tab
// of its window becomes active and is returned as next.
func (r *registry[P, W]) remove(p P) (id tabs.ID, window tabs.WindowID, next tabs.ID, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok = r.byPage[p]
	if !ok {
		return 0, 0, 0, false
	}
	window = r.meta[id].window
	delete(r.byPage, p)
	delete(r.pages, id)
	delete(r.meta, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if r.active[window] == id {
		delete(r.active, window)
		for i := len(r.order) - 1; i >= 0; i-- {
			if r.meta[r.order[i]].window == window {
				next = r.order[i]
				r.active[window] = next
				break
			}
		}
	}
	return id, window, next, true
}

// activate marks id active in its window and focuses the window. changed is
// false when id was already the active tab.
func (r *registry[P, W]) activate(id tabs.ID) (window tabs.WindowID, changed bool, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meta[id]
	if !ok {
		return 0, false, false
	}
	r.focused, r.hasFocus = m.window, true
	if r.active[m.window] == id {
		return m.window, false, true
	}
	r.active[m.window] = id
	return m.window, true, true
}

func (r *registry[P, W]) isActive(id tabs.ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meta[id]
	return ok && r.active[m.window] == id
}

func (r *registry[P, W]) activeTab(window tabs.WindowID) (tabs.ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.active[window]
	return id, ok
}

func (r *registry[P, W]) setStatus(id tabs.ID, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.meta[id]; ok {
		m.status = status
	}
}

func (r *registry[P, W]) setIcon(id tabs.ID, icon string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.meta[id]; ok {
		m.icon = icon
	}
}

func (r *registry[P, W]) info(id tabs.ID) (tabMeta, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meta[id]
	if !ok {
		return tabMeta{}, false
	}
	return *m, true
}

// list returns every tab in opening order.
func (r *registry[P, W]) list() []tabs.ID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]tabs.ID(nil), r.order...)
}

func (r *registry[P, W]) focusedWindow() (tabs.WindowID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.focused, r.hasFocus
}
