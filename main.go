package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/atomicstack/tabflip/internal/app"
	"github.com/atomicstack/tabflip/internal/config"
	"github.com/atomicstack/tabflip/internal/logging"
	"github.com/atomicstack/tabflip/internal/logging/events"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		logging.Error(err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd assembles the command tree. Every option is a persistent flag
// so the config file and environment apply to all subcommands alike.
func newRootCmd() *cobra.Command {
	var cfg config.Config
	root := &cobra.Command{
		Use:   "tabflip",
		Short: "Cycle browser tabs in most-recently-used order",
		Long: `tabflip keeps a most-recently-used stack of the tabs of a browser it drives
and cycles through them with a held-modifier gesture, showing a preview of
each candidate.

Run "tabflip serve" once, then bind "tabflip cycle" to a popup or terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			if err := config.Validate(loaded); err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			cfg = loaded
			logging.Configure(cfg.Logging.FilePath)
			logging.SetTraceEnabled(cfg.Logging.Trace)
			traceStartup(cmd.CommandPath(), cfg)
			return nil
		},
	}
	config.Register(root.PersistentFlags())

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Drive the browser and serve the recents gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Serve(cmd.Context(), cfg.App, cmd.OutOrStdout())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "cycle",
		Short: "Open the tab cycling overlay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), cfg.App)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "recents [filter]",
		Short: "Print the recent tabs of the focused window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Recents(cmd.Context(), cfg.App, cmd.OutOrStdout(), strings.Join(args, " "))
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "activate <query>",
		Short: "Switch to the recent tab best matching query (or its id)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Activate(cmd.Context(), cfg.App, cmd.OutOrStdout(), strings.Join(args, " "))
		},
	})
	return root
}

func traceStartup(command string, cfg config.Config) {
	payload := startupTracePayload(cfg)
	payload["command"] = command
	events.App.Start(payload)
}

// startupTracePayload bundles runtime context for trace logging.
func startupTracePayload(cfg config.Config) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags))
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath
	payload := map[string]interface{}{
		"argv":   cfg.Args,
		"flags":  flags,
		"config": cfg,
	}
	if exe, err := os.Executable(); err == nil {
		payload["executable"] = exe
	} else {
		payload["executableError"] = err.Error()
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	} else {
		payload["cwdError"] = err.Error()
	}
	payload["tty"] = collectTTYDetails()
	return payload
}

type ttyDetails struct {
	Detected *ttyDetected     `json:"detected,omitempty"`
	Checks   []ttyCheckResult `json:"checks"`
}

type ttyDetected struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ttyCheckResult struct {
	Name       string `json:"name"`
	IsTerminal bool   `json:"is_terminal"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Error      string `json:"error,omitempty"`
}

// collectTTYDetails inspects standard descriptors for terminal support and dimensions.
func collectTTYDetails() ttyDetails {
	checks := []struct {
		name string
		fd   uintptr
	}{
		{"stdin", os.Stdin.Fd()},
		{"stdout", os.Stdout.Fd()},
		{"stderr", os.Stderr.Fd()},
	}
	results := make([]ttyCheckResult, 0, len(checks))
	var detected *ttyDetected
	for _, check := range checks {
		entry := ttyCheckResult{Name: check.name}
		fd := int(check.fd)
		if fd >= 0 && term.IsTerminal(fd) {
			entry.IsTerminal = true
			if width, height, err := term.GetSize(fd); err == nil {
				entry.Width = width
				entry.Height = height
				if detected == nil {
					detected = &ttyDetected{Source: check.name, Width: width, Height: height}
				}
			} else {
				entry.Error = err.Error()
			}
		} else {
			entry.IsTerminal = false
		}
		results = append(results, entry)
	}
	return ttyDetails{Detected: detected, Checks: results}
}
