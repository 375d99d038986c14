package ui

import (
	"context"
	"fmt"
	"reflect"

	"charm.land/bubbles/v2/help"
	tea "charm.land/bubbletea/v2"

	"github.com/atomicstack/tabflip/internal/cycle"
	"github.com/atomicstack/tabflip/internal/logging"
	"github.com/atomicstack/tabflip/internal/tabs"
	"github.com/atomicstack/tabflip/internal/theme"
	"github.com/atomicstack/tabflip/internal/ui/command"
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Gateway is the subset of the gateway client the overlay needs.
type Gateway interface {
	GetRecents(ctx context.Context, window *tabs.WindowID) ([]tabs.Descriptor, error)
	ActivateTab(ctx context.Context, id tabs.ID) error
}

// Options configure a Model.
type Options struct {
	Bindings   cycle.Bindings
	Window     *tabs.WindowID
	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool
	// Once quits after the first commit or cancel.
	Once bool
	// Open starts a session immediately.
	Open bool
}

// Model implements the Bubble Tea model for the cycling overlay.
type Model struct {
	controller *cycle.Controller
	gateway    Gateway
	bus        *command.Bus
	window     *tabs.WindowID

	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool
	showFooter  bool
	verbose     bool
	once        bool
	open        bool
	quitting    bool
	// keyReporting is set once the extra kitty flags were requested.
	keyReporting bool

	errMsg  string
	infoMsg string

	keys   keyMap
	help   help.Model
	thumbs map[thumbKey]string

	handlers map[reflect.Type]msgHandler
}

// NewModel initialises the overlay against gw.
func NewModel(ctx context.Context, gw Gateway, opts Options) *Model {
	bindings := opts.Bindings
	if bindings.Key == 0 {
		bindings = cycle.DefaultBindings()
	}
	m := &Model{
		controller: cycle.New(bindings),
		gateway:    gw,
		bus:        command.New(ctx),
		window:     opts.Window,
		showFooter: opts.ShowFooter,
		verbose:    opts.Verbose,
		once:       opts.Once,
		open:       opts.Open,
		keys:       newKeyMap(bindings),
		help:       help.New(),
		thumbs:     make(map[thumbKey]string),
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	if m.open {
		return m.perform(m.controller.Open())
	}
	return nil
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if handler := m.handlerFor(msg); handler != nil {
		return m, handler(msg)
	}
	return m, nil
}

// Controller exposes the gesture state machine.
func (m *Model) Controller() *cycle.Controller {
	return m.controller
}

// Quitting reports whether the model asked the program to exit.
func (m *Model) Quitting() bool {
	return m.quitting
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyPressMsg{}):             m.handleKeyPressMsg,
		reflect.TypeOf(tea.KeyReleaseMsg{}):           m.handleKeyReleaseMsg,
		reflect.TypeOf(tea.BlurMsg{}):                 m.handleBlurMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}):           m.handleWindowSizeMsg,
		reflect.TypeOf(tea.KeyboardEnhancementsMsg{}): m.handleKeyboardEnhancementsMsg,
		reflect.TypeOf(recentsLoadedMsg{}):            m.handleRecentsLoadedMsg,
		reflect.TypeOf(activatedMsg{}):                m.handleActivatedMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) handleKeyPressMsg(msg tea.Msg) tea.Cmd {
	press, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}
	k := press.Key()
	if isInterrupt(k) {
		return m.quit()
	}
	if k.Code == tea.KeyEscape && m.controller.State() == cycle.StateIdle && !m.controller.Pending() {
		return m.quit()
	}
	return m.perform(m.controller.Key(translateKey(k, false)))
}

func (m *Model) handleKeyReleaseMsg(msg tea.Msg) tea.Cmd {
	release, ok := msg.(tea.KeyReleaseMsg)
	if !ok {
		return nil
	}
	return m.perform(m.controller.Key(translateKey(release.Key(), true)))
}

func (m *Model) handleBlurMsg(tea.Msg) tea.Cmd {
	return m.perform(m.controller.Blur())
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	size, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = size.Width
	}
	if !m.fixedHeight {
		m.height = size.Height
	}
	if !m.keyReporting {
		m.keyReporting = true
		return requestKeyReporting()
	}
	return nil
}

// handleKeyboardEnhancementsMsg answers the terminal's report of the flags the
// renderer set, which always arrives after that request.
func (m *Model) handleKeyboardEnhancementsMsg(tea.Msg) tea.Cmd {
	m.keyReporting = true
	return requestKeyReporting()
}

func (m *Model) handleRecentsLoadedMsg(msg tea.Msg) tea.Cmd {
	loaded, ok := msg.(recentsLoadedMsg)
	if !ok {
		return nil
	}
	if loaded.err != nil {
		logging.Error(loaded.err)
		m.errMsg = loaded.err.Error()
		return m.perform(m.controller.Failed(loaded.generation))
	}
	m.errMsg = ""
	return m.perform(m.controller.Loaded(loaded.generation, loaded.tabs))
}

func (m *Model) handleActivatedMsg(msg tea.Msg) tea.Cmd {
	activated, ok := msg.(activatedMsg)
	if !ok {
		return nil
	}
	if activated.err != nil {
		logging.Error(activated.err)
		m.errMsg = activated.err.Error()
	} else if m.verbose {
		m.infoMsg = fmt.Sprintf("switched to tab %d", activated.tab)
	}
	if m.once {
		return m.quit()
	}
	return nil
}

// perform turns a controller action into a command.
func (m *Model) perform(act cycle.Action) tea.Cmd {
	switch act.Kind {
	case cycle.ActionFetch:
		return m.fetchRecentsCmd(act.Generation)
	case cycle.ActionCommit:
		m.infoMsg = ""
		return m.activateCmd(act.Tab)
	case cycle.ActionCancel:
		if m.once {
			return m.quit()
		}
	}
	return nil
}

func (m *Model) quit() tea.Cmd {
	m.quitting = true
	return tea.Quit
}
