package ui

import (
	"context"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/atomicstack/tabflip/internal/tabs"
	"github.com/atomicstack/tabflip/internal/ui/command"
)

const gatewayTimeout = 2 * time.Second

// recentsLoadedMsg carries a getRecents response for the fetch tagged
// generation.
type recentsLoadedMsg struct {
	generation uint64
	tabs       []tabs.Descriptor
	err        error
}

type activatedMsg struct {
	tab tabs.ID
	err error
}

func (m *Model) fetchRecentsCmd(generation uint64) tea.Cmd {
	gw, window := m.gateway, m.window
	return m.bus.Execute(command.Request{
		Label:   "getRecents",
		Timeout: gatewayTimeout,
		Handler: func(ctx context.Context) tea.Msg {
			if gw == nil {
				return recentsLoadedMsg{generation: generation, err: fmt.Errorf("no gateway configured")}
			}
			ds, err := gw.GetRecents(ctx, window)
			if err != nil {
				err = fmt.Errorf("get recents: %w", err)
			}
			return recentsLoadedMsg{generation: generation, tabs: ds, err: err}
		},
	})
}

func (m *Model) activateCmd(id tabs.ID) tea.Cmd {
	gw := m.gateway
	return m.bus.Execute(command.Request{
		Label:   "activateTab",
		Timeout: gatewayTimeout,
		Handler: func(ctx context.Context) tea.Msg {
			if gw == nil {
				return activatedMsg{tab: id}
			}
			err := gw.ActivateTab(ctx, id)
			if err != nil {
				err = fmt.Errorf("activate tab %d: %w", id, err)
			}
			return activatedMsg{tab: id, err: err}
		},
	})
}
