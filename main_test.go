package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/tabflip/internal/app"
	"github.com/atomicstack/tabflip/internal/config"
)

func TestCollectTTYDetailsIncludesStandardDescriptors(t *testing.T) {
	info := collectTTYDetails()
	require.Len(t, info.Checks, 3)
	for i, name := range []string{"stdin", "stdout", "stderr"} {
		assert.Equal(t, name, info.Checks[i].Name, "check %d", i)
	}
}

func TestStartupTracePayloadIncludesFlags(t *testing.T) {
	cfg := config.Config{
		App: app.Config{
			Addr:       "127.0.0.1:9000",
			Width:      80,
			Height:     24,
			ShowFooter: true,
			Verbose:    true,
			Browser:    app.BrowserConfig{StartURLs: []string{"https://example.com"}},
		},
		Logging: config.Logging{
			FilePath: "trace.log",
			Trace:    true,
		},
		Flags: map[string]string{
			"addr":    "127.0.0.1:9000",
			"width":   "80",
			"height":  "24",
			"footer":  "true",
			"verbose": "true",
		},
		Args: []string{"cycle", "--addr", "127.0.0.1:9000"},
	}

	payload := startupTracePayload(cfg)

	flagsValue, ok := payload["flags"].(map[string]interface{})
	require.True(t, ok, "expected flags map in payload")
	assert.Equal(t, "127.0.0.1:9000", flagsValue["addr"])
	assert.Equal(t, "80", flagsValue["width"])
	assert.Equal(t, "true", flagsValue["footer"])
	assert.Equal(t, true, flagsValue["trace"])
	assert.Equal(t, "trace.log", flagsValue["logFile"])

	assert.IsType(t, ttyDetails{}, payload["tty"])
	cfgValue, ok := payload["config"].(config.Config)
	require.True(t, ok, "expected config in payload")
	assert.Equal(t, cfg.App, cfgValue.App)
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "cycle", "recents", "activate"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("max-mru"), "config flags live on the root command")
}

func TestRootCommandRejectsInvalidConfig(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"recents", "--quality", "0"})
	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quality")
}

func TestActivateRequiresQuery(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"activate"})
	assert.Error(t, root.Execute())
}
