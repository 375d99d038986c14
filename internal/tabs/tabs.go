// Package tabs holds the identifiers and descriptors shared by the store, the
// gateway and the cycle controller.
package tabs

import (
	"net/url"
	"strings"
	"time"
)

// ID identifies a tab. Tabs are owned by the host; tabflip only keeps IDs.
type ID int

// WindowID identifies a browser window. Each window owns one MRU stack.
type WindowID int

// Load status values reported by the host.
const (
	StatusLoading  = "loading"
	StatusComplete = "complete"
)

const untitled = "Untitled"

// Tab is a host-reported tab.
type Tab struct {
	ID      ID
	Window  WindowID
	Title   string
	Address string
	IconRef string
	Active  bool
	Status  string
}

// Preview is an encoded, low fidelity capture of a tab's visible content.
type Preview struct {
	Format     string    `json:"format"`
	Data       []byte    `json:"data"`
	CapturedAt time.Time `json:"capturedAt"`
}

// Descriptor is the per-tab entry returned by the gateway. A nil Preview is a
// normal state and renders as a placeholder.
type Descriptor struct {
	ID      ID       `json:"id"`
	Title   string   `json:"title"`
	Address string   `json:"url"`
	IconRef string   `json:"favIconUrl"`
	Preview *Preview `json:"preview"`
}

// Describe builds a descriptor from a live tab and an optional preview.
func Describe(t Tab, preview *Preview) Descriptor {
	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = untitled
	}
	return Descriptor{
		ID:      t.ID,
		Title:   title,
		Address: t.Address,
		IconRef: t.IconRef,
		Preview: preview,
	}
}

// Initial returns the upper-cased first letter of the title, used for
// placeholder cards and missing icons.
func (d Descriptor) Initial() string {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return "?"
	}
	r := []rune(title)
	return strings.ToUpper(string(r[0]))
}

// Host returns the address host without a leading "www.", or "" when the
// address does not parse.
func (d Descriptor) Host() string {
	if d.Address == "" {
		return ""
	}
	u, err := url.Parse(d.Address)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
