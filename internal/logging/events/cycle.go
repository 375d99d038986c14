package events

import "github.com/atomicstack/tabflip/internal/logging"

type CycleTracer struct{}

type CommandTracer struct{}

type CycleReason string

const (
	CycleReasonEscape   CycleReason = "escape"
	CycleReasonBlur     CycleReason = "blur"
	CycleReasonEmpty    CycleReason = "empty"
	CycleReasonReleased CycleReason = "released"
)

var (
	Cycle   = CycleTracer{}
	Command = CommandTracer{}
)

func (CycleTracer) Fetch(generation uint64) {
	logging.Trace("cycle.fetch", map[string]interface{}{"generation": generation})
}

func (CycleTracer) Open(generation uint64, candidates, selected int) {
	logging.Trace("cycle.open", map[string]interface{}{"generation": generation, "candidates": candidates, "selected": selected})
}

func (CycleTracer) Advance(selected int) {
	logging.Trace("cycle.advance", map[string]interface{}{"selected": selected})
}

func (CycleTracer) Commit(tab int) {
	logging.Trace("cycle.commit", map[string]interface{}{"tab": tab})
}

func (CycleTracer) Cancel(reason CycleReason) {
	logging.Trace("cycle.cancel", map[string]interface{}{"reason": string(reason)})
}

func (CycleTracer) Discard(generation, current uint64) {
	logging.Trace("cycle.discard", map[string]interface{}{"generation": generation, "current": current})
}

func (CommandTracer) Queue(id, label string) {
	logging.Trace("command.queue", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) Skip(id, label string) {
	logging.Trace("command.skip", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) Result(id, label, msgType string) {
	logging.Trace("command.result", map[string]interface{}{"id": id, "label": label, "msg": msgType})
}
