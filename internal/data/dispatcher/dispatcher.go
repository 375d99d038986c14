package dispatcher

import (
	"time"

	"github.com/atomicstack/tabflip/internal/host"
	"github.com/atomicstack/tabflip/internal/logging/events"
	"github.com/atomicstack/tabflip/internal/store"
	"github.com/atomicstack/tabflip/internal/tabs"
)

// Default capture delays after activation and load completion.
const (
	DefaultActivateDelay = 350 * time.Millisecond
	DefaultLoadDelay     = 500 * time.Millisecond
)

// Capture asks for a preview of window's visible surface, stored under Tab,
// once Delay has elapsed.
type Capture struct {
	Window tabs.WindowID
	Tab    tabs.ID
	Delay  time.Duration
}

type Result struct {
	Pushed  bool
	Removed bool
	Capture *Capture
}

// Delays configures how long after a notification a capture is taken.
type Delays struct {
	Activate time.Duration
	Load     time.Duration
}

type Dispatcher struct {
	store  *store.Store
	delays Delays
}

func New(s *store.Store, d Delays) *Dispatcher {
	return &Dispatcher{store: s, delays: d}
}

func (d *Dispatcher) Handle(evt host.Event) Result {
	var res Result
	events.Host.Event(evt.Kind.String(), int(evt.Window), int(evt.Tab))
	switch evt.Kind {
	case host.EventActivated:
		d.store.Push(evt.Window, evt.Tab)
		res.Pushed = true
		res.Capture = &Capture{Window: evt.Window, Tab: evt.Tab, Delay: d.delays.Activate}
	case host.EventUpdated:
		if !evt.Active {
			events.Host.Dropped(evt.Kind.String(), int(evt.Tab))
			return res
		}
		complete := evt.Change.Status == tabs.StatusComplete
		if !complete && evt.Change.Title == "" && evt.Change.Address == "" {
			return res
		}
		d.store.Push(evt.Window, evt.Tab)
		res.Pushed = true
		if complete {
			res.Capture = &Capture{Window: evt.Window, Tab: evt.Tab, Delay: d.delays.Load}
		}
	case host.EventRemoved:
		d.store.Remove(evt.Tab)
		res.Removed = true
	}
	return res
}
