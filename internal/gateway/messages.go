package gateway

import "github.com/atomicstack/tabflip/internal/tabs"

// MessageType selects the operation a Request asks for.
type MessageType string

const (
	TypeGetRecents  MessageType = "getRecents"
	TypeActivateTab MessageType = "activateTab"
)

// Request is the wire form of a gateway message. Window is optional for
// getRecents; TabID is required for activateTab.
type Request struct {
	ID     string         `json:"id,omitempty"`
	Type   MessageType    `json:"type"`
	Window *tabs.WindowID `json:"window,omitempty"`
	TabID  tabs.ID        `json:"tabId,omitempty"`
}

// Response answers a Request. Tabs is always present for getRecents, even when
// empty; OK acknowledges activateTab.
type Response struct {
	ID    string            `json:"id,omitempty"`
	Tabs  []tabs.Descriptor `json:"tabs"`
	OK    bool              `json:"ok"`
	Error string            `json:"error,omitempty"`
}

// GetRecents builds a recents request. A nil window asks the gateway to use
// the sender's window.
func GetRecents(window *tabs.WindowID) Request {
	return Request{Type: TypeGetRecents, Window: window}
}

// ActivateTab builds an activation request.
func ActivateTab(id tabs.ID) Request {
	return Request{Type: TypeActivateTab, TabID: id}
}

// WindowPtr is a convenience for building optional window fields.
func WindowPtr(w tabs.WindowID) *tabs.WindowID {
	return &w
}
