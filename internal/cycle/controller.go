// Package cycle implements the hold-modifier gesture as an explicit state
// machine. The controller is driven by key events and fetch results and
// answers each input with a single Action for the caller to perform; it never
// talks to the gateway or the terminal itself.
//
// Transitions:
//
//	Idle     --cycle key, modifier held-->   Idle (fetch pending)
//	pending  --snapshot, >= 2 tabs------->   Browsing, selection 1 (len-1 reversed)
//	pending  --snapshot, < 2 tabs-------->   Idle
//	Browsing --cycle key, modifier held-->   Browsing, selection +-1 wrapping
//	Browsing --modifier released--------->   Idle, commit selection
//	Browsing --escape or focus loss------>   Idle, no activation
//
// Every fetch is tagged with the generation current at issue time. Closing,
// cancelling or discarding a prefetch advances the generation so late
// responses are dropped.
package cycle

import (
	"github.com/atomicstack/tabflip/internal/logging/events"
	"github.com/atomicstack/tabflip/internal/tabs"
)

// State is the controller's externally visible mode.
type State int

const (
	StateIdle State = iota
	StateBrowsing
)

func (s State) String() string {
	if s == StateBrowsing {
		return "browsing"
	}
	return "idle"
}

// ActionKind tells the caller what to do after an input.
type ActionKind int

const (
	// ActionNone requires nothing.
	ActionNone ActionKind = iota
	// ActionFetch requests a recents snapshot tagged with Generation.
	ActionFetch
	// ActionShow renders the current session.
	ActionShow
	// ActionCommit closes the overlay and activates Tab.
	ActionCommit
	// ActionCancel closes the overlay without activating anything.
	ActionCancel
)

func (k ActionKind) String() string {
	switch k {
	case ActionFetch:
		return "fetch"
	case ActionShow:
		return "show"
	case ActionCommit:
		return "commit"
	case ActionCancel:
		return "cancel"
	default:
		return "none"
	}
}

// Action is the controller's response to one input.
type Action struct {
	Kind       ActionKind
	Generation uint64
	Tab        tabs.ID
}

var none = Action{}

type pending struct {
	generation   uint64
	opened       bool
	programmatic bool
	reverse      bool
	steps        int
	released     bool

	loaded   bool
	snapshot []tabs.Descriptor
}

// Controller tracks one window's gesture.
type Controller struct {
	bindings   Bindings
	generation uint64
	modDown    bool

	pending *pending
	session *Session
}

// New returns an idle controller.
func New(b Bindings) *Controller {
	return &Controller{bindings: b}
}

// Bindings returns the configured gesture.
func (c *Controller) Bindings() Bindings {
	return c.bindings
}

// State reports Idle or Browsing.
func (c *Controller) State() State {
	if c.session != nil {
		return StateBrowsing
	}
	return StateIdle
}

// Generation is the current fetch generation.
func (c *Controller) Generation() uint64 {
	return c.generation
}

// Session returns the open session or nil.
func (c *Controller) Session() *Session {
	return c.session
}

// Pending reports whether a cycle-key press is waiting for its snapshot.
func (c *Controller) Pending() bool {
	return c.pending != nil && c.pending.opened
}

// Key feeds a key press or release.
func (c *Controller) Key(k Key) Action {
	if k.ModKey != 0 && k.ModKey.Has(c.bindings.Modifier) {
		if k.Release {
			return c.modifierReleased()
		}
		return c.modifierPressed()
	}
	if k.Release {
		return c.keyReleased(k)
	}
	return c.keyPressed(k)
}

func (c *Controller) modifierPressed() Action {
	c.modDown = true
	if c.pending != nil {
		c.pending.released = false
		return none
	}
	if c.session != nil {
		return none
	}
	return c.fetch(&pending{})
}

func (c *Controller) modifierReleased() Action {
	c.modDown = false
	switch {
	case c.session != nil:
		if c.session.Programmatic {
			return none
		}
		return c.Commit()
	case c.pending != nil && c.pending.opened && !c.pending.programmatic:
		c.pending.released = true
		return none
	case c.pending != nil && !c.pending.opened:
		events.Cycle.Cancel(events.CycleReasonReleased)
		c.reset()
		return none
	}
	return none
}

func (c *Controller) keyPressed(k Key) Action {
	switch k.Special {
	case SpecialEscape:
		return c.cancel(events.CycleReasonEscape)
	case SpecialEnter:
		if c.session != nil {
			return c.Commit()
		}
		return none
	}

	held := k.Mods.Has(c.bindings.Modifier)
	delta := 0
	switch {
	case k.Special == SpecialNext:
		delta = 1
	case k.Special == SpecialPrev:
		delta = -1
	case k.Special == SpecialNone && k.Physical() == c.bindings.Key:
		delta = 1
		if k.Mods.Has(c.bindings.Reverse) {
			delta = -1
		}
	}

	if s := c.session; s != nil {
		if !held && !s.Programmatic {
			return c.Commit()
		}
		if delta == 0 {
			return none
		}
		s.advance(delta)
		events.Cycle.Advance(s.Selected)
		return Action{Kind: ActionShow, Generation: s.Generation}
	}

	p := c.pending
	if p != nil && p.opened && !p.programmatic && !held {
		p.released = true
		return none
	}
	if delta == 0 || k.Special != SpecialNone || !held {
		return none
	}

	switch {
	case p == nil:
		return c.fetch(&pending{opened: true, reverse: delta < 0})
	case !p.opened:
		p.opened = true
		p.reverse = delta < 0
		if p.loaded {
			return c.open(p.snapshot)
		}
		return none
	default:
		p.steps += delta
		return none
	}
}

func (c *Controller) keyReleased(k Key) Action {
	if k.Mods.Has(c.bindings.Modifier) || c.modDown {
		return none
	}
	if p := c.pending; p != nil && p.opened && !p.programmatic {
		p.released = true
		return none
	}
	if c.session == nil || c.session.Programmatic {
		return none
	}
	return c.Commit()
}

// Open starts a programmatic session: it is committed with Enter and
// cancelled with Escape rather than by the modifier.
func (c *Controller) Open() Action {
	if c.session != nil {
		return none
	}
	return c.fetch(&pending{opened: true, programmatic: true})
}

// Loaded delivers the snapshot for the fetch tagged generation.
func (c *Controller) Loaded(generation uint64, candidates []tabs.Descriptor) Action {
	p := c.pending
	if p == nil || p.generation != generation || generation != c.generation {
		events.Cycle.Discard(generation, c.generation)
		return none
	}
	if !p.opened {
		p.loaded = true
		p.snapshot = candidates
		return none
	}
	return c.open(candidates)
}

// Failed reports that the fetch tagged generation could not complete.
func (c *Controller) Failed(generation uint64) Action {
	p := c.pending
	if p == nil || p.generation != generation {
		return none
	}
	c.reset()
	if p.opened {
		return Action{Kind: ActionCancel, Generation: generation}
	}
	return none
}

// Blur handles loss of focus: any session or pending fetch is dropped.
func (c *Controller) Blur() Action {
	c.modDown = false
	return c.cancel(events.CycleReasonBlur)
}

// Commit closes the session and activates its selection. An empty or
// invalid selection cancels.
func (c *Controller) Commit() Action {
	s := c.session
	if s == nil {
		return none
	}
	d, ok := s.Current()
	if !ok {
		return c.cancel(events.CycleReasonEmpty)
	}
	c.reset()
	events.Cycle.Commit(int(d.ID))
	return Action{Kind: ActionCommit, Generation: s.Generation, Tab: d.ID}
}

func (c *Controller) cancel(reason cancelReason) Action {
	if c.session == nil && c.pending == nil {
		return none
	}
	gen := c.generation
	visible := c.session != nil || c.pending.opened
	c.reset()
	if !visible {
		return none
	}
	events.Cycle.Cancel(reason)
	return Action{Kind: ActionCancel, Generation: gen}
}

type cancelReason = events.CycleReason

func (c *Controller) fetch(p *pending) Action {
	c.generation++
	p.generation = c.generation
	c.pending = p
	events.Cycle.Fetch(c.generation)
	return Action{Kind: ActionFetch, Generation: c.generation}
}

func (c *Controller) open(candidates []tabs.Descriptor) Action {
	p := c.pending
	minimum := 2
	if p.programmatic {
		minimum = 1
	}
	if len(candidates) < minimum {
		c.reset()
		events.Cycle.Cancel(events.CycleReasonEmpty)
		if !p.programmatic {
			return none
		}
		return Action{Kind: ActionCancel, Generation: p.generation}
	}

	snapshot := make([]tabs.Descriptor, len(candidates))
	copy(snapshot, candidates)
	initial := 1
	switch {
	case p.programmatic:
		initial = min(1, len(snapshot)-1)
	case p.reverse:
		initial = len(snapshot) - 1
	}
	s := &Session{
		Candidates:   snapshot,
		Selected:     wrap(initial+p.steps, len(snapshot)),
		Generation:   p.generation,
		Programmatic: p.programmatic,
	}
	c.pending = nil
	c.session = s
	events.Cycle.Open(s.Generation, len(snapshot), s.Selected)

	if p.released {
		return c.Commit()
	}
	return Action{Kind: ActionShow, Generation: s.Generation}
}

// reset returns to Idle and invalidates outstanding fetches.
func (c *Controller) reset() {
	c.pending = nil
	c.session = nil
	c.generation++
}
