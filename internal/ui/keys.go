package ui

import (
	"fmt"

	"charm.land/bubbles/v2/key"

	"github.com/atomicstack/tabflip/internal/cycle"
)

// keyMap lists the bindings shown in the footer. Matching is done by the
// controller on physical keys; these only describe them.
type keyMap struct {
	Cycle   key.Binding
	Reverse key.Binding
	Commit  key.Binding
	Cancel  key.Binding
}

func newKeyMap(b cycle.Bindings) keyMap {
	cycleKey := fmt.Sprintf("%s+%c", b.Modifier, b.Key)
	reverseKey := fmt.Sprintf("%s+%s+%c", b.Modifier, b.Reverse, b.Key)
	return keyMap{
		Cycle: key.NewBinding(
			key.WithKeys(cycleKey),
			key.WithHelp(cycleKey, "next"),
		),
		Reverse: key.NewBinding(
			key.WithKeys(reverseKey),
			key.WithHelp(reverseKey, "previous"),
		),
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp(fmt.Sprintf("release %s/enter", b.Modifier), "switch"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Cycle, k.Reverse, k.Commit, k.Cancel}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
