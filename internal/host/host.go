// Package host describes the browser environment tabflip runs against. The
// host owns tabs and windows; tabflip observes its lifecycle notifications and
// asks it to enumerate, capture and activate tabs.
package host

import (
	"context"
	"errors"

	"github.com/atomicstack/tabflip/internal/tabs"
)

var (
	// ErrTabNotFound is returned by GetTab when the tab no longer exists.
	ErrTabNotFound = errors.New("tab not found")
	// ErrNotCapturable is returned for privileged or viewer surfaces that the
	// host refuses to capture.
	ErrNotCapturable = errors.New("surface not capturable")
)

// CaptureOptions selects the encoding of a visible surface capture.
type CaptureOptions struct {
	Format  string
	Quality int
}

// Query filters tab enumeration. Zero values match everything.
type Query struct {
	Window     tabs.WindowID
	ActiveOnly bool
}

// Matches reports whether t satisfies the query.
func (q Query) Matches(t tabs.Tab) bool {
	if q.Window != 0 && t.Window != q.Window {
		return false
	}
	if q.ActiveOnly && !t.Active {
		return false
	}
	return true
}

// EventKind enumerates tab lifecycle notifications.
type EventKind int

const (
	EventActivated EventKind = iota
	EventUpdated
	EventRemoved
)

func (k EventKind) String() string {
	switch k {
	case EventActivated:
		return "activated"
	case EventUpdated:
		return "updated"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Change carries the fields that changed in an update notification. Empty
// strings mean "unchanged".
type Change struct {
	Status  string
	Title   string
	Address string
}

// Event is a tab lifecycle notification. Active is only meaningful for
// updates and reports whether the tab is the active one in its window.
type Event struct {
	Kind   EventKind
	Window tabs.WindowID
	Tab    tabs.ID
	Active bool
	Change Change
}

// Host is the set of operations tabflip consumes from the browser.
type Host interface {
	CaptureVisibleSurface(ctx context.Context, window tabs.WindowID, opts CaptureOptions) ([]byte, error)
	QueryTabs(ctx context.Context, q Query) ([]tabs.Tab, error)
	GetTab(ctx context.Context, id tabs.ID) (tabs.Tab, error)
	ActivateTab(ctx context.Context, id tabs.ID) error
	Events() <-chan Event
}

// WindowReporter is implemented by hosts that know which window currently has
// focus. The gateway uses it when a request carries no window.
type WindowReporter interface {
	FocusedWindow(ctx context.Context) (tabs.WindowID, bool)
}
