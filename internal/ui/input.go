package ui

import (
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/atomicstack/tabflip/internal/cycle"
)

// keyReportingFlags are the kitty keyboard flags the gesture needs on top of
// the event types the renderer asks for: modifier keys reported as events of
// their own, and the base layout key of every press.
const keyReportingFlags = ansi.KittyReportAllKeysAsEscapeCodes | ansi.KittyReportAlternateKeys

// requestKeyReporting adds keyReportingFlags to the flags already set. Mode 2
// only sets bits, so it has to follow the renderer's own request.
func requestKeyReporting() tea.Cmd {
	return tea.Raw(ansi.KittyKeyboard(keyReportingFlags, 2))
}

// translateKey converts a terminal key event to the controller's key model.
func translateKey(k tea.Key, release bool) cycle.Key {
	out := cycle.Key{
		Code:     k.Code,
		BaseCode: k.BaseCode,
		Mods:     translateMods(k.Mod),
		ModKey:   modifierKey(k.Code),
		Release:  release,
	}
	switch k.Code {
	case tea.KeyEscape:
		out.Special = cycle.SpecialEscape
	case tea.KeyEnter:
		out.Special = cycle.SpecialEnter
	case tea.KeyRight, tea.KeyDown:
		out.Special = cycle.SpecialNext
	case tea.KeyLeft, tea.KeyUp:
		out.Special = cycle.SpecialPrev
	}
	return out
}

func translateMods(mod tea.KeyMod) cycle.Mod {
	var out cycle.Mod
	if mod.Contains(tea.ModShift) {
		out |= cycle.ModShift
	}
	if mod.Contains(tea.ModAlt) {
		out |= cycle.ModAlt
	}
	if mod.Contains(tea.ModCtrl) {
		out |= cycle.ModCtrl
	}
	if mod.Contains(tea.ModMeta) {
		out |= cycle.ModMeta
	}
	if mod.Contains(tea.ModSuper) {
		out |= cycle.ModSuper
	}
	return out
}

func modifierKey(code rune) cycle.Mod {
	switch code {
	case tea.KeyLeftShift, tea.KeyRightShift:
		return cycle.ModShift
	case tea.KeyLeftAlt, tea.KeyRightAlt:
		return cycle.ModAlt
	case tea.KeyLeftCtrl, tea.KeyRightCtrl:
		return cycle.ModCtrl
	case tea.KeyLeftMeta, tea.KeyRightMeta:
		return cycle.ModMeta
	case tea.KeyLeftSuper, tea.KeyRightSuper:
		return cycle.ModSuper
	}
	return 0
}

func isInterrupt(k tea.Key) bool {
	return k.Code == 'c' && k.Mod.Contains(tea.ModCtrl)
}
