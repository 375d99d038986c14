package events

import "github.com/atomicstack/tabflip/internal/logging"

type GatewayTracer struct{}

var Gateway = GatewayTracer{}

func (GatewayTracer) Request(id, kind string) {
	logging.Trace("gateway.request", map[string]interface{}{"id": id, "type": kind})
}

func (GatewayTracer) Recents(window int, ids []int) {
	logging.Trace("gateway.recents", map[string]interface{}{"window": window, "tabs": ids})
}

func (GatewayTracer) NoWindow() {
	logging.Trace("gateway.recents.no-window", nil)
}

func (GatewayTracer) Stale(tab int) {
	logging.Trace("gateway.stale", map[string]interface{}{"tab": tab})
}

func (GatewayTracer) ReseedFailed(err error) {
	if err == nil {
		return
	}
	logging.Trace("gateway.reseed.failed", map[string]interface{}{"error": err.Error()})
}
