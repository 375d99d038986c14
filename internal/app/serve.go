package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"golang.org/x/sync/errgroup"

	"github.com/atomicstack/tabflip/internal/backend"
	"github.com/atomicstack/tabflip/internal/browser"
	"github.com/atomicstack/tabflip/internal/data/dispatcher"
	"github.com/atomicstack/tabflip/internal/gateway"
	"github.com/atomicstack/tabflip/internal/host"
	"github.com/atomicstack/tabflip/internal/logging"
	"github.com/atomicstack/tabflip/internal/store"
)

// ErrHostClosed reports that the browser went away while serving.
var ErrHostClosed = errors.New("browser host closed")

// Serve launches the browser and serves the gateway on cfg.Addr until ctx
// ends. Host events are echoed to out when cfg.Verbose is set.
func Serve(ctx context.Context, cfg Config, out io.Writer) error {
	h, err := browser.Launch(ctx, browser.Options{
		Headless:    cfg.Browser.Headless,
		UserDataDir: cfg.Browser.UserDataDir,
		StartURLs:   cfg.Browser.StartURLs,
	})
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if err := h.Close(); err != nil {
			logging.Error(err)
		}
	}()
	l, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	return serve(ctx, cfg, h, l, out)
}

// serve wires store, watcher and gateway around h and serves on l.
func serve(ctx context.Context, cfg Config, h host.Host, l net.Listener, out io.Writer) error {
	s := store.New(store.WithMaxMRU(cfg.Store.MaxMRU), store.WithMaxPreviews(cfg.Store.MaxPreviews))
	d := dispatcher.New(s, dispatcher.Delays{
		Activate: cfg.Capture.ActivateDelay,
		Load:     cfg.Capture.LoadDelay,
	})
	capturer := backend.NewCapturer(h, s, cfg.Capture.Quality)
	watcher := backend.NewWatcher(h, d, capturer, cfg.Capture.Interval)
	defer watcher.Stop()

	gw := gateway.New(s, h)
	if err := gw.Reseed(ctx); err != nil {
		logging.Error(fmt.Errorf("initial reseed: %w", err))
	}
	srv := gateway.NewServer(cfg.Addr, gw)
	if out != nil {
		fmt.Fprintf(out, "tabflip gateway listening on %s\n", l.Addr())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx, l)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case evt, ok := <-watcher.Events():
				if !ok {
					return ErrHostClosed
				}
				if cfg.Verbose && out != nil {
					fmt.Fprintln(out, describeEvent(evt))
				}
			}
		}
	})
	return g.Wait()
}

func describeEvent(evt backend.Event) string {
	line := fmt.Sprintf("%s window=%d tab=%d", evt.Host.Kind, evt.Host.Window, evt.Host.Tab)
	switch {
	case evt.Result.Pushed:
		line += " pushed"
	case evt.Result.Removed:
		line += " removed"
	}
	if c := evt.Result.Capture; c != nil {
		line += fmt.Sprintf(" capture-in=%s", c.Delay)
	}
	return line
}
