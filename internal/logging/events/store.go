package events

import "github.com/atomicstack/tabflip/internal/logging"

type StoreTracer struct{}

type PreviewTracer struct{}

var (
	Store   = StoreTracer{}
	Preview = PreviewTracer{}
)

func (StoreTracer) Push(window, tab, size int) {
	logging.Trace("store.push", map[string]interface{}{"window": window, "tab": tab, "size": size})
}

func (StoreTracer) Remove(tab int) {
	logging.Trace("store.remove", map[string]interface{}{"tab": tab})
}

func (StoreTracer) Reseed(tabs, windows int) {
	logging.Trace("store.reseed", map[string]interface{}{"tabs": tabs, "windows": windows})
}

func (PreviewTracer) Schedule(window, tab int, delayMS int64) {
	logging.Trace("preview.schedule", map[string]interface{}{"window": window, "tab": tab, "delayMs": delayMS})
}

func (PreviewTracer) Capture(window, tab, bytes int) {
	logging.Trace("preview.capture", map[string]interface{}{"window": window, "tab": tab, "bytes": bytes})
}

func (PreviewTracer) CaptureFailed(window, tab int, err error) {
	payload := map[string]interface{}{"window": window, "tab": tab}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("preview.capture.failed", payload)
}

func (PreviewTracer) Prune(evicted []int, size int) {
	if len(evicted) == 0 {
		return
	}
	logging.Trace("preview.prune", map[string]interface{}{"evicted": evicted, "size": size})
}
