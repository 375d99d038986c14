package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/tabflip/internal/cycle"
	"github.com/atomicstack/tabflip/internal/store"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultAddr, cfg.App.Addr)
	assert.Nil(t, cfg.App.Window)
	assert.Equal(t, cycle.DefaultBindings(), cfg.App.Bindings)
	assert.Equal(t, store.MaxMRU, cfg.App.Store.MaxMRU)
	assert.Equal(t, store.MaxPreviews, cfg.App.Store.MaxPreviews)
	assert.Equal(t, 350*time.Millisecond, cfg.App.Capture.ActivateDelay)
	assert.Equal(t, 500*time.Millisecond, cfg.App.Capture.LoadDelay)
	assert.NoError(t, Validate(cfg))
}

func TestLoadArgsFlags(t *testing.T) {
	args := []string{
		"--addr", "127.0.0.1:9999",
		"--window", "3",
		"--modifier", "ctrl",
		"--key", "Tab",
		"--width", "100",
		"--footer",
		"--once",
		"--url", "https://a.example",
		"--url", "https://b.example",
		"--load-delay", "1s",
		"--trace",
		"--log-file", "/tmp/tabflip.log",
	}
	_, err := LoadArgs(args, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single", "multi-rune keys are rejected")

	args[7] = "w"
	cfg, err := LoadArgs(args, nil)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.App.Addr)
	require.NotNil(t, cfg.App.Window)
	assert.EqualValues(t, 3, *cfg.App.Window)
	assert.Equal(t, cycle.ModCtrl, cfg.App.Bindings.Modifier)
	assert.Equal(t, 'w', cfg.App.Bindings.Key)
	assert.Equal(t, 100, cfg.App.Width)
	assert.True(t, cfg.App.ShowFooter)
	assert.True(t, cfg.App.Once)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.Browser.StartURLs)
	assert.Equal(t, time.Second, cfg.App.Capture.LoadDelay)
	assert.True(t, cfg.Logging.Trace)
	assert.Equal(t, "/tmp/tabflip.log", cfg.Logging.FilePath)
	assert.Equal(t, "127.0.0.1:9999", cfg.Flags["addr"])
	assert.Equal(t, "100", cfg.Flags["width"])
	assert.Equal(t, "true", cfg.Flags["footer"])
	assert.Equal(t, args, cfg.Args)
}

func TestPrecedence(t *testing.T) {
	yamlPath := writeFile(t, "tabflip.yaml", strings.Join([]string{
		"addr: 127.0.0.1:1111",
		"max-mru: 7",
		"quality: 80",
		"url:",
		"  - https://yaml.example",
		"  - https://yaml2.example",
		"verbose: true",
	}, "\n"))
	envPath := writeFile(t, ".env", "TABFLIP_MAX_MRU=8\nTABFLIP_QUALITY=70\n")

	environ := []string{
		"TABFLIP_CONFIG=" + yamlPath,
		"TABFLIP_QUALITY=60",
		"UNRELATED=1",
	}
	cfg, err := LoadArgs([]string{"--env-file", envPath, "--addr", "127.0.0.1:2222"}, environ)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:2222", cfg.App.Addr, "flag beats yaml")
	assert.Equal(t, 60, cfg.App.Capture.Quality, "environment beats dotenv")
	assert.Equal(t, 8, cfg.App.Store.MaxMRU, "dotenv beats yaml")
	assert.True(t, cfg.App.Verbose, "yaml beats defaults")
	assert.Equal(t, []string{"https://yaml.example", "https://yaml2.example"}, cfg.App.Browser.StartURLs)
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	cfg, err := LoadArgs(nil, []string{"TABFLIP_HEADLESS=true", "TABFLIP_CAPTURE_INTERVAL=2s", "TABFLIP_WIDTH="})
	require.NoError(t, err)
	assert.True(t, cfg.App.Browser.Headless)
	assert.Equal(t, 2*time.Second, cfg.App.Capture.Interval)
	assert.Zero(t, cfg.App.Width, "blank environment values are ignored")
}

func TestInvalidSources(t *testing.T) {
	_, err := LoadArgs(nil, []string{"TABFLIP_MAX_MRU=lots"})
	assert.Error(t, err, "unparsable environment value")

	_, err = LoadArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, nil)
	assert.Error(t, err, "missing config file")

	bad := writeFile(t, "bad.yaml", "nested:\n  key: value\n")
	_, err = LoadArgs([]string{"--config", bad}, nil)
	assert.Error(t, err, "nested yaml value")

	_, err = LoadArgs([]string{"--modifier", "hyper"}, nil)
	assert.Error(t, err, "unknown modifier")
}

func TestValidate(t *testing.T) {
	cfg, err := LoadArgs([]string{"--width", "-1", "--quality", "101", "--max-previews", "0"}, nil)
	require.NoError(t, err)
	err = Validate(cfg)
	require.Error(t, err)
	for _, want := range []string{"width", "quality", "max-previews"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "TABFLIP_CAPTURE_INTERVAL", EnvName("capture-interval"))
}
