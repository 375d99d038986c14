// Package gateway bridges cycle controllers and the privileged store. It
// answers getRecents from the MRU store (reseeding from the host when state is
// missing) and forwards activateTab to the host.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/atomicstack/tabflip/internal/host"
	"github.com/atomicstack/tabflip/internal/logging/events"
	"github.com/atomicstack/tabflip/internal/store"
	"github.com/atomicstack/tabflip/internal/tabs"
	"golang.org/x/sync/singleflight"
)

// Gateway serves gateway messages against a store and a host.
type Gateway struct {
	store *store.Store
	host  host.Host

	reseeds singleflight.Group
}

// New returns a gateway over s and h.
func New(s *store.Store, h host.Host) *Gateway {
	return &Gateway{store: s, host: h}
}

// Reseed rebuilds every stack from the host's live tab list. Concurrent calls
// share one enumeration.
func (g *Gateway) Reseed(ctx context.Context) error {
	_, err, _ := g.reseeds.Do("reseed", func() (interface{}, error) {
		live, err := g.host.QueryTabs(ctx, host.Query{})
		if err != nil {
			return nil, fmt.Errorf("query tabs: %w", err)
		}
		g.store.Reseed(live)
		return nil, nil
	})
	return err
}

// FetchRecents returns descriptors for window's stack, most recent first.
// Without a window it falls back to the host's focused window, and to an
// empty list when none is known. Tabs that no longer exist are removed from
// the store and skipped.
func (g *Gateway) FetchRecents(ctx context.Context, window *tabs.WindowID) []tabs.Descriptor {
	w, ok := g.resolveWindow(ctx, window)
	if !ok {
		events.Gateway.NoWindow()
		return []tabs.Descriptor{}
	}

	stack := g.store.Snapshot(w)
	if len(stack) == 0 {
		if err := g.Reseed(ctx); err != nil {
			events.Gateway.ReseedFailed(err)
			return []tabs.Descriptor{}
		}
		stack = g.store.Snapshot(w)
	}

	out := make([]tabs.Descriptor, 0, len(stack))
	resolved := make([]int, 0, len(stack))
	for _, id := range stack {
		t, err := g.host.GetTab(ctx, id)
		if err != nil {
			if errors.Is(err, host.ErrTabNotFound) {
				events.Gateway.Stale(int(id))
				g.store.Remove(id)
				continue
			}
			if ctx.Err() != nil {
				break
			}
			// Unknown lookup failures skip the tab without forgetting it.
			continue
		}
		var preview *tabs.Preview
		if p, ok := g.store.Preview(id); ok {
			preview = &p
		}
		out = append(out, tabs.Describe(t, preview))
		resolved = append(resolved, int(id))
	}
	events.Gateway.Recents(int(w), resolved)
	return out
}

// ActivateTab asks the host to bring id to the foreground. Host failures are
// traced and never returned.
func (g *Gateway) ActivateTab(ctx context.Context, id tabs.ID) {
	err := g.host.ActivateTab(ctx, id)
	events.Host.Activate(int(id), err)
}

// Handle dispatches a single request.
func (g *Gateway) Handle(ctx context.Context, req Request) Response {
	events.Gateway.Request(req.ID, string(req.Type))
	resp := Response{ID: req.ID}
	switch req.Type {
	case TypeGetRecents:
		resp.Tabs = g.FetchRecents(ctx, req.Window)
	case TypeActivateTab:
		g.ActivateTab(ctx, req.TabID)
		resp.OK = true
	default:
		resp.Error = fmt.Sprintf("unknown message type %q", req.Type)
	}
	return resp
}

func (g *Gateway) resolveWindow(ctx context.Context, window *tabs.WindowID) (tabs.WindowID, bool) {
	if window != nil {
		return *window, true
	}
	if reporter, ok := g.host.(host.WindowReporter); ok {
		return reporter.FocusedWindow(ctx)
	}
	return 0, false
}
