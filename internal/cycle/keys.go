package cycle

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Mod is a set of keyboard modifiers.
type Mod uint8

const (
	ModShift Mod = 1 << iota
	ModAlt
	ModCtrl
	ModMeta
	ModSuper
)

// Has reports whether every modifier in o is set in m.
func (m Mod) Has(o Mod) bool {
	return o != 0 && m&o == o
}

func (m Mod) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for _, n := range modNames {
		if m.Has(n.mod) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "+")
}

var modNames = []struct {
	name string
	mod  Mod
}{
	{"ctrl", ModCtrl},
	{"alt", ModAlt},
	{"meta", ModMeta},
	{"super", ModSuper},
	{"shift", ModShift},
}

// ParseMod resolves a modifier name such as "alt" or "shift".
func ParseMod(name string) (Mod, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "option", "opt":
		name = "alt"
	case "control":
		name = "ctrl"
	case "cmd", "command":
		name = "super"
	}
	for _, n := range modNames {
		if n.name == name {
			return n.mod, nil
		}
	}
	return 0, fmt.Errorf("unknown modifier %q", name)
}

// Special identifies non-printing keys the controller reacts to.
type Special int

const (
	SpecialNone Special = iota
	SpecialEscape
	SpecialEnter
	SpecialNext
	SpecialPrev
)

// Key is a single keyboard event.
type Key struct {
	// Code is the key code reported by the terminal.
	Code rune
	// BaseCode is the layout independent key, zero when unknown.
	BaseCode rune
	// Mods are the modifiers the event reports as held.
	Mods Mod
	// ModKey is set when the key itself is a modifier key.
	ModKey  Mod
	Special Special
	Release bool
}

// Physical returns the key identity used for matching, ignoring the text
// the key produces under the current modifiers and layout.
func (k Key) Physical() rune {
	if k.BaseCode != 0 {
		return k.BaseCode
	}
	return k.Code
}

// Bindings configure the gesture.
type Bindings struct {
	Modifier Mod
	Key      rune
	Reverse  Mod
}

// DefaultBindings is alt+q, with shift cycling backwards.
func DefaultBindings() Bindings {
	return Bindings{Modifier: ModAlt, Key: 'q', Reverse: ModShift}
}

// ParseBindings builds bindings from configuration strings.
func ParseBindings(modifier, key, reverse string) (Bindings, error) {
	mod, err := ParseMod(modifier)
	if err != nil {
		return Bindings{}, err
	}
	rev, err := ParseMod(reverse)
	if err != nil {
		return Bindings{}, fmt.Errorf("reverse: %w", err)
	}
	if rev == mod {
		return Bindings{}, fmt.Errorf("reverse modifier %s equals the cycle modifier", rev)
	}
	key = strings.ToLower(key)
	if utf8.RuneCountInString(key) != 1 {
		return Bindings{}, fmt.Errorf("cycle key must be a single key, got %q", key)
	}
	r, _ := utf8.DecodeRuneInString(key)
	return Bindings{Modifier: mod, Key: r, Reverse: rev}, nil
}

func (b Bindings) String() string {
	return fmt.Sprintf("%s+%c", b.Modifier, b.Key)
}
