// Package browser hosts tabs in a Playwright-driven Chromium. Pages are tabs
// and browser contexts are windows. Activation is reported by an init script
// that calls an exposed binding whenever a page gains focus or becomes
// visible.
package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/atomicstack/tabflip/internal/host"
	"github.com/atomicstack/tabflip/internal/logging"
	"github.com/atomicstack/tabflip/internal/tabs"
)

const activationBinding = "__tabflipActivated"

const activationScript = `(() => {
  if (window.top !== window) return;
  const report = () => {
    if (document.visibilityState === "visible" && document.hasFocus()) {
      window.` + activationBinding + `();
    }
  };
  window.addEventListener("focus", report);
  document.addEventListener("visibilitychange", report);
})();`

const faviconScript = `() => {
  const link = document.querySelector("link[rel~='icon']");
  return link ? link.href : "";
}`

// Options configure the launched browser.
type Options struct {
	Headless    bool
	UserDataDir string
	StartURLs   []string
	Width       int
	Height      int
}

// Host implements host.Host over Playwright.
type Host struct {
	opts Options

	pw      *playwright.Playwright
	browser playwright.Browser
	reg     *registry[playwright.Page, playwright.BrowserContext]

	events chan host.Event
	work   chan func()
	done   chan struct{}
	wg     sync.WaitGroup

	emitMu sync.RWMutex
	closed bool

	closeOnce sync.Once
}

// Launch installs the Playwright driver if needed, starts Chromium and opens
// the start pages in a first window.
func Launch(ctx context.Context, opts Options) (*Host, error) {
	runOpts := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("install playwright: %w", err)
	}
	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	h := &Host{
		opts:   opts,
		pw:     pw,
		reg:    newRegistry[playwright.Page, playwright.BrowserContext](),
		events: make(chan host.Event, 64),
		work:   make(chan func(), 64),
		done:   make(chan struct{}),
	}
	h.wg.Add(1)
	go h.runWork()

	var bc playwright.BrowserContext
	if opts.UserDataDir != "" {
		bc, err = pw.Chromium.LaunchPersistentContext(opts.UserDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless: playwright.Bool(opts.Headless),
			Viewport: h.viewport(),
		})
		if err != nil {
			_ = h.Close()
			return nil, fmt.Errorf("launch persistent context: %w", err)
		}
	} else {
		h.browser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(opts.Headless),
		})
		if err != nil {
			_ = h.Close()
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		bc, err = h.browser.NewContext(playwright.BrowserNewContextOptions{Viewport: h.viewport()})
		if err != nil {
			_ = h.Close()
			return nil, fmt.Errorf("create context: %w", err)
		}
	}
	if _, err := h.attachContext(bc); err != nil {
		_ = h.Close()
		return nil, err
	}
	if h.browser != nil {
		h.browser.OnDisconnected(func(playwright.Browser) { go h.Close() })
	} else {
		bc.OnClose(func(playwright.BrowserContext) { go h.Close() })
	}
	for _, u := range opts.StartURLs {
		if err := ctx.Err(); err != nil {
			_ = h.Close()
			return nil, err
		}
		if err := h.openPage(bc, u); err != nil {
			logging.Error(err)
		}
	}
	return h, nil
}

func (h *Host) viewport() *playwright.Size {
	if h.opts.Width <= 0 || h.opts.Height <= 0 {
		return nil
	}
	return &playwright.Size{Width: h.opts.Width, Height: h.opts.Height}
}

func (h *Host) attachContext(bc playwright.BrowserContext) (tabs.WindowID, error) {
	window := h.reg.addWindow(bc)
	err := bc.ExposeBinding(activationBinding, func(source *playwright.BindingSource, args ...interface{}) interface{} {
		if source != nil && source.Page != nil {
			page := source.Page
			h.enqueue(func() { h.pageActivated(page) })
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("expose activation binding: %w", err)
	}
	if err := bc.AddInitScript(playwright.Script{Content: playwright.String(activationScript)}); err != nil {
		return 0, fmt.Errorf("add activation script: %w", err)
	}
	bc.OnPage(func(p playwright.Page) {
		h.enqueue(func() { h.attachPage(window, p) })
	})
	for _, p := range bc.Pages() {
		h.attachPage(window, p)
	}
	return window, nil
}

func (h *Host) openPage(bc playwright.BrowserContext, address string) error {
	page, err := bc.NewPage()
	if err != nil {
		return fmt.Errorf("open page: %w", err)
	}
	if _, err := page.Goto(address); err != nil {
		return fmt.Errorf("navigate to %s: %w", address, err)
	}
	return nil
}

// attachPage registers p and subscribes to its lifecycle.
func (h *Host) attachPage(window tabs.WindowID, p playwright.Page) {
	id, first := h.reg.addPage(window, p)
	if first {
		h.emit(host.Event{Kind: host.EventActivated, Window: window, Tab: id})
	}
	p.OnLoad(func(p playwright.Page) {
		h.enqueue(func() { h.pageLoaded(p) })
	})
	p.OnFrameNavigated(func(f playwright.Frame) {
		if f.ParentFrame() != nil {
			return
		}
		address := f.URL()
		h.enqueue(func() { h.pageNavigated(p, address) })
	})
	p.OnClose(func(p playwright.Page) {
		h.enqueue(func() { h.pageClosed(p) })
	})
}

func (h *Host) pageActivated(p playwright.Page) {
	id, _, ok := h.reg.lookup(p)
	if !ok {
		return
	}
	h.markActive(id)
}

func (h *Host) markActive(id tabs.ID) {
	window, changed, ok := h.reg.activate(id)
	if ok && changed {
		h.emit(host.Event{Kind: host.EventActivated, Window: window, Tab: id})
	}
}

func (h *Host) pageLoaded(p playwright.Page) {
	id, window, ok := h.reg.lookup(p)
	if !ok {
		return
	}
	h.reg.setStatus(id, tabs.StatusComplete)
	if icon, err := p.Evaluate(faviconScript); err == nil {
		if s, ok := icon.(string); ok {
			h.reg.setIcon(id, s)
		}
	}
	title, _ := p.Title()
	h.emit(host.Event{
		Kind:   host.EventUpdated,
		Window: window,
		Tab:    id,
		Active: h.reg.isActive(id),
		Change: host.Change{Status: tabs.StatusComplete, Title: title},
	})
}

func (h *Host) pageNavigated(p playwright.Page, address string) {
	id, window, ok := h.reg.lookup(p)
	if !ok {
		return
	}
	h.reg.setStatus(id, tabs.StatusLoading)
	h.emit(host.Event{
		Kind:   host.EventUpdated,
		Window: window,
		Tab:    id,
		Active: h.reg.isActive(id),
		Change: host.Change{Status: tabs.StatusLoading, Address: address},
	})
}

func (h *Host) pageClosed(p playwright.Page) {
	id, window, next, ok := h.reg.remove(p)
	if !ok {
		return
	}
	h.emit(host.Event{Kind: host.EventRemoved, Window: window, Tab: id})
	if next != 0 {
		h.emit(host.Event{Kind: host.EventActivated, Window: window, Tab: next})
	}
}

// enqueue defers fn to the work goroutine. Playwright event callbacks must
// not block on further protocol calls.
func (h *Host) enqueue(fn func()) {
	select {
	case h.work <- fn:
	case <-h.done:
	}
}

func (h *Host) runWork() {
	defer h.wg.Done()
	for {
		select {
		case fn := <-h.work:
			fn()
		case <-h.done:
			return
		}
	}
}

func (h *Host) emit(evt host.Event) {
	h.emitMu.RLock()
	defer h.emitMu.RUnlock()
	if h.closed {
		return
	}
	select {
	case h.events <- evt:
	case <-h.done:
	}
}

// Events implements host.Host.
func (h *Host) Events() <-chan host.Event {
	return h.events
}

// FocusedWindow implements host.WindowReporter.
func (h *Host) FocusedWindow(ctx context.Context) (tabs.WindowID, bool) {
	return h.reg.focusedWindow()
}

// QueryTabs implements host.Host.
func (h *Host) QueryTabs(ctx context.Context, q host.Query) ([]tabs.Tab, error) {
	ids := h.reg.list()
	out := make([]tabs.Tab, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := h.GetTab(ctx, id)
		if err != nil {
			if errors.Is(err, host.ErrTabNotFound) {
				continue
			}
			return nil, err
		}
		if q.Matches(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

// GetTab implements host.Host.
func (h *Host) GetTab(ctx context.Context, id tabs.ID) (tabs.Tab, error) {
	p, window, ok := h.reg.page(id)
	if !ok || p.IsClosed() {
		return tabs.Tab{}, fmt.Errorf("tab %d: %w", id, host.ErrTabNotFound)
	}
	meta, _ := h.reg.info(id)
	title, err := call(ctx, p.Title)
	if err != nil {
		if ctx.Err() != nil {
			return tabs.Tab{}, err
		}
		title = ""
	}
	return tabs.Tab{
		ID:      id,
		Window:  window,
		Title:   title,
		Address: p.URL(),
		IconRef: meta.icon,
		Active:  h.reg.isActive(id),
		Status:  meta.status,
	}, nil
}

// ActivateTab implements host.Host.
func (h *Host) ActivateTab(ctx context.Context, id tabs.ID) error {
	p, _, ok := h.reg.page(id)
	if !ok || p.IsClosed() {
		return fmt.Errorf("tab %d: %w", id, host.ErrTabNotFound)
	}
	if _, err := call(ctx, func() (struct{}, error) { return struct{}{}, p.BringToFront() }); err != nil {
		return fmt.Errorf("bring tab %d to front: %w", id, err)
	}
	h.enqueue(func() { h.markActive(id) })
	return nil
}

// CaptureVisibleSurface implements host.Host by screenshotting the active
// page of window.
func (h *Host) CaptureVisibleSurface(ctx context.Context, window tabs.WindowID, opts host.CaptureOptions) ([]byte, error) {
	id, ok := h.reg.activeTab(window)
	if !ok {
		return nil, fmt.Errorf("window %d has no active tab: %w", window, host.ErrTabNotFound)
	}
	p, _, ok := h.reg.page(id)
	if !ok || p.IsClosed() {
		return nil, fmt.Errorf("tab %d: %w", id, host.ErrTabNotFound)
	}
	if !capturable(p.URL()) {
		return nil, fmt.Errorf("%s: %w", p.URL(), host.ErrNotCapturable)
	}
	shot := playwright.PageScreenshotOptions{Type: playwright.ScreenshotTypeJpeg}
	if opts.Format == "png" {
		shot.Type = playwright.ScreenshotTypePng
	} else if opts.Quality > 0 {
		shot.Quality = playwright.Int(opts.Quality)
	}
	data, err := call(ctx, func() ([]byte, error) { return p.Screenshot(shot) })
	if err != nil {
		return nil, fmt.Errorf("screenshot tab %d: %w", id, err)
	}
	return data, nil
}

// Close shuts the browser and the Playwright driver down and closes the
// events channel.
func (h *Host) Close() error {
	var errs []error
	h.closeOnce.Do(func() {
		close(h.done)
		h.wg.Wait()
		if h.browser != nil {
			if err := h.browser.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close browser: %w", err))
			}
		}
		if h.pw != nil {
			if err := h.pw.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("stop playwright: %w", err))
			}
		}
		h.emitMu.Lock()
		h.closed = true
		close(h.events)
		h.emitMu.Unlock()
	})
	return errors.Join(errs...)
}

// call runs fn and returns early when ctx ends. Playwright calls are not
// context aware, so fn keeps running in the background.
func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn()
		ch <- result{v, err}
	}()
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-ch:
		return r.v, r.err
	}
}
