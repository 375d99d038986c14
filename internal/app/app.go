package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/atomicstack/tabflip/internal/cycle"
	"github.com/atomicstack/tabflip/internal/gateway"
	"github.com/atomicstack/tabflip/internal/tabs"
	"github.com/atomicstack/tabflip/internal/ui"
)

// Config describes user-provided application options.
type Config struct {
	Addr   string
	Window *tabs.WindowID

	Bindings   cycle.Bindings
	Width      int
	Height     int
	ShowFooter bool
	Verbose    bool
	Once       bool
	Open       bool

	Browser BrowserConfig
	Store   StoreConfig
	Capture CaptureConfig
}

type BrowserConfig struct {
	Headless    bool
	UserDataDir string
	StartURLs   []string
}

type StoreConfig struct {
	MaxMRU      int
	MaxPreviews int
}

type CaptureConfig struct {
	Quality       int
	ActivateDelay time.Duration
	LoadDelay     time.Duration
	Interval      time.Duration
}

// ErrGatewayDown reports that no serve process answered on the configured
// address.
var ErrGatewayDown = errors.New("gateway is not running")

// Run bootstraps and executes the cycle overlay.
func Run(ctx context.Context, cfg Config) error {
	client := gateway.NewClient(cfg.Addr)
	if !client.Healthy(ctx) {
		return fmt.Errorf("%w at %s (start it with `tabflip serve`)", ErrGatewayDown, cfg.Addr)
	}
	model := ui.NewModel(ctx, client, ui.Options{
		Bindings:   cfg.Bindings,
		Window:     cfg.Window,
		Width:      cfg.Width,
		Height:     cfg.Height,
		ShowFooter: cfg.ShowFooter,
		Verbose:    cfg.Verbose,
		Once:       cfg.Once,
		Open:       cfg.Open,
	})
	program := tea.NewProgram(model, tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
