package backend

import (
	"context"
	"sync"
	"time"

	"github.com/atomicstack/tabflip/internal/data/dispatcher"
	"github.com/atomicstack/tabflip/internal/host"
	"github.com/atomicstack/tabflip/internal/logging/events"
)

// DefaultCaptureInterval is the minimum spacing between two captures.
const DefaultCaptureInterval = 500 * time.Millisecond

// Event reports a host notification after it was applied to the store.
type Event struct {
	Host   host.Event
	Result dispatcher.Result
}

// Watcher applies host lifecycle notifications in order and schedules the
// delayed captures they ask for.
type Watcher struct {
	host       host.Host
	dispatcher *dispatcher.Dispatcher
	capturer   *Capturer
	throttle   *throttle

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	wg     sync.WaitGroup

	mu     sync.Mutex
	timers map[*time.Timer]struct{}
}

// NewWatcher starts consuming h's events. captureInterval bounds the capture
// rate; zero disables the throttle.
func NewWatcher(h host.Host, d *dispatcher.Dispatcher, c *Capturer, captureInterval time.Duration) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Watcher{
		host:       h,
		dispatcher: d,
		capturer:   c,
		throttle:   newThrottle(captureInterval),
		ctx:        ctx,
		cancel:     cancel,
		events:     make(chan Event, 16),
		timers:     make(map[*time.Timer]struct{}),
	}

	w.wg.Add(1)
	go w.run()

	go func() {
		w.wg.Wait()
		close(w.events)
	}()

	return w
}

// Events returns applied notifications. Delivery is best effort: entries are
// dropped when nobody is reading.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Stop cancels the watcher and any pending capture timers.
func (w *Watcher) Stop() {
	w.cancel()
	w.mu.Lock()
	for t := range w.timers {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.timers, t)
	}
	w.mu.Unlock()
}

// Wait blocks until the event loop and every started capture have exited
// and the events channel is closed.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

func (w *Watcher) run() {
	defer w.wg.Done()
	source := w.host.Events()
	for {
		select {
		case <-w.ctx.Done():
			return
		case evt, ok := <-source:
			if !ok {
				return
			}
			res := w.dispatcher.Handle(evt)
			if res.Capture != nil {
				w.schedule(*res.Capture)
			}
			select {
			case w.events <- Event{Host: evt, Result: res}:
			default:
			}
		}
	}
}

func (w *Watcher) schedule(c dispatcher.Capture) {
	if w.capturer == nil {
		return
	}
	events.Preview.Schedule(int(c.Window), int(c.Tab), c.Delay.Milliseconds())

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx.Err() != nil {
		return
	}
	w.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(c.Delay, func() {
		defer w.wg.Done()
		w.mu.Lock()
		delete(w.timers, timer)
		w.mu.Unlock()
		if err := w.throttle.wait(w.ctx); err != nil {
			return
		}
		w.capturer.Capture(w.ctx, c.Window, c.Tab)
	})
	w.timers[timer] = struct{}{}
}
