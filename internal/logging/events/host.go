package events

import "github.com/atomicstack/tabflip/internal/logging"

type HostTracer struct{}

var Host = HostTracer{}

func (HostTracer) Event(kind string, window, tab int) {
	logging.Trace("host.event", map[string]interface{}{"kind": kind, "window": window, "tab": tab})
}

func (HostTracer) Dropped(kind string, tab int) {
	logging.Trace("host.event.dropped", map[string]interface{}{"kind": kind, "tab": tab})
}

func (HostTracer) Activate(tab int, err error) {
	payload := map[string]interface{}{"tab": tab}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("host.activate", payload)
}
