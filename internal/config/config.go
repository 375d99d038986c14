package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/atomicstack/tabflip/internal/app"
	"github.com/atomicstack/tabflip/internal/backend"
	"github.com/atomicstack/tabflip/internal/cycle"
	"github.com/atomicstack/tabflip/internal/data/dispatcher"
	"github.com/atomicstack/tabflip/internal/store"
	"github.com/atomicstack/tabflip/internal/tabs"
)

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envPrefix  = "TABFLIP_"
	envConfig  = "TABFLIP_CONFIG"
	envEnvFile = "TABFLIP_ENV_FILE"

	flagConfig  = "config"
	flagEnvFile = "env-file"

	DefaultAddr = "127.0.0.1:47613"
)

// Register adds every option to fs. Defaults are the lowest-precedence
// source; Resolve layers the config file, dotenv file and environment on
// top for flags the user did not set.
func Register(fs *pflag.FlagSet) {
	fs.String(flagConfig, "", "path to a YAML config file (env "+envConfig+")")
	fs.String(flagEnvFile, "", "path to a dotenv file (env "+envEnvFile+")")

	fs.String("addr", DefaultAddr, "gateway listen/connect address")
	fs.Int("window", 0, "window whose recents are cycled (0 asks the browser for the focused window)")

	fs.String("modifier", "alt", "held modifier for the cycle gesture (alt|ctrl|meta|super)")
	fs.String("key", "q", "cycle key pressed while the modifier is held")
	fs.String("reverse", "shift", "modifier that reverses the cycle direction")
	fs.Int("width", 0, "desired viewport width in cells (0 uses terminal width)")
	fs.Int("height", 0, "desired viewport height in rows (0 uses terminal height)")
	fs.Bool("footer", false, "enable footer hint row")
	fs.Bool("once", false, "exit after the first commit or cancel")
	fs.Bool("open", false, "open the overlay immediately")

	fs.Bool("trace", false, "enable verbose JSON trace logging")
	fs.Bool("verbose", false, "print success messages for actions")
	fs.String("log-file", "", "path to the log file")

	fs.Bool("headless", false, "run the browser without a window")
	fs.String("user-data-dir", "", "persistent browser profile directory")
	fs.StringSlice("url", nil, "page to open at start (repeatable)")
	fs.Int("max-mru", store.MaxMRU, "recent tabs remembered per window")
	fs.Int("max-previews", store.MaxPreviews, "previews kept in memory")
	fs.Int("quality", backend.DefaultQuality, "JPEG quality of previews (1-100)")
	fs.Duration("activate-delay", dispatcher.DefaultActivateDelay, "delay before capturing a newly activated tab")
	fs.Duration("load-delay", dispatcher.DefaultLoadDelay, "delay before capturing a tab that finished loading")
	fs.Duration("capture-interval", backend.DefaultCaptureInterval, "minimum spacing between captures")
}

// LoadArgs parses args on a fresh flag set. Tests use it to supply specific
// args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	fs := pflag.NewFlagSet("tabflip", pflag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))
	Register(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg, err := Resolve(fs, environ)
	if err != nil {
		return Config{}, err
	}
	cfg.Args = append([]string(nil), args...)
	return cfg, nil
}

// Load resolves fs against the process environment.
func Load(fs *pflag.FlagSet) (Config, error) {
	cfg, err := Resolve(fs, os.Environ())
	if err != nil {
		return Config{}, err
	}
	cfg.Args = append([]string(nil), os.Args[1:]...)
	return cfg, nil
}

// Resolve fills every flag the user did not set from, in order, the
// environment, the dotenv file and the YAML file, then builds a Config.
func Resolve(fs *pflag.FlagSet, environ []string) (Config, error) {
	env := parseEnv(environ)

	layers := []map[string]string{prefixed(env)}
	if path := sourcePath(fs, env, flagEnvFile, envEnvFile); path != "" {
		dotenv, err := godotenv.Read(path)
		if err != nil {
			return Config{}, fmt.Errorf("read env file: %w", err)
		}
		layers = append(layers, prefixed(dotenv))
	}
	if path := sourcePath(fs, env, flagConfig, envConfig); path != "" {
		file, err := readYAML(path)
		if err != nil {
			return Config{}, err
		}
		layers = append(layers, file)
	}

	var setErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if setErr != nil || f.Changed || f.Name == flagConfig || f.Name == flagEnvFile {
			return
		}
		for _, layer := range layers {
			if v, ok := layer[f.Name]; ok {
				if err := fs.Set(f.Name, v); err != nil {
					setErr = fmt.Errorf("%s: %w", f.Name, err)
				}
				return
			}
		}
	})
	if setErr != nil {
		return Config{}, setErr
	}

	cfg, err := build(fs)
	if err != nil {
		return Config{}, err
	}
	cfg.Flags = make(map[string]string)
	fs.VisitAll(func(f *pflag.Flag) {
		cfg.Flags[f.Name] = f.Value.String()
	})
	return cfg, nil
}

func build(fs *pflag.FlagSet) (Config, error) {
	var errs []error
	str := func(name string) string {
		v, err := fs.GetString(name)
		errs = append(errs, err)
		return v
	}
	num := func(name string) int {
		v, err := fs.GetInt(name)
		errs = append(errs, err)
		return v
	}
	flag := func(name string) bool {
		v, err := fs.GetBool(name)
		errs = append(errs, err)
		return v
	}
	dur := func(name string) time.Duration {
		v, err := fs.GetDuration(name)
		errs = append(errs, err)
		return v
	}
	urls, err := fs.GetStringSlice("url")
	errs = append(errs, err)

	modifier, key, reverse := str("modifier"), str("key"), str("reverse")
	cfg := Config{
		App: app.Config{
			Addr:       str("addr"),
			Width:      num("width"),
			Height:     num("height"),
			ShowFooter: flag("footer"),
			Verbose:    flag("verbose"),
			Once:       flag("once"),
			Open:       flag("open"),
			Browser: app.BrowserConfig{
				Headless:    flag("headless"),
				UserDataDir: str("user-data-dir"),
				StartURLs:   urls,
			},
			Store: app.StoreConfig{
				MaxMRU:      num("max-mru"),
				MaxPreviews: num("max-previews"),
			},
			Capture: app.CaptureConfig{
				Quality:       num("quality"),
				ActivateDelay: dur("activate-delay"),
				LoadDelay:     dur("load-delay"),
				Interval:      dur("capture-interval"),
			},
		},
		Logging: Logging{
			FilePath: str("log-file"),
			Trace:    flag("trace"),
		},
	}
	if w := num("window"); w != 0 {
		window := tabs.WindowID(w)
		cfg.App.Window = &window
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}

	bindings, err := cycle.ParseBindings(modifier, key, reverse)
	if err != nil {
		return Config{}, err
	}
	cfg.App.Bindings = bindings
	return cfg, nil
}

// sourcePath returns the path named by flag, falling back to the environment.
func sourcePath(fs *pflag.FlagSet, env map[string]string, flag, envKey string) string {
	if f := fs.Lookup(flag); f != nil && f.Changed {
		return f.Value.String()
	}
	return strings.TrimSpace(env[envKey])
}

// readYAML loads a flat mapping of option names to values. Lists are joined
// with commas, which is what the repeatable url flag accepts.
func readYAML(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch typed := v.(type) {
		case nil:
			continue
		case []interface{}:
			parts := make([]string, len(typed))
			for i, item := range typed {
				parts[i] = fmt.Sprint(item)
			}
			values[k] = strings.Join(parts, ",")
		case map[string]interface{}:
			return nil, fmt.Errorf("config file %s: %s must be a scalar or a list", path, k)
		default:
			values[k] = fmt.Sprint(typed)
		}
	}
	return values, nil
}

// prefixed maps TABFLIP_MAX_MRU style keys to flag names.
func prefixed(env map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range env {
		if !strings.HasPrefix(k, envPrefix) || strings.TrimSpace(v) == "" {
			continue
		}
		name := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(k, envPrefix), "_", "-"))
		out[name] = v
	}
	return out
}

// EnvName returns the environment variable that feeds flag name.
func EnvName(name string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

// Validate ensures the resolved values are usable.
func Validate(cfg Config) error {
	a := cfg.App
	var problems []string
	if a.Width < 0 {
		problems = append(problems, fmt.Sprintf("width must be >= 0 (got %d)", a.Width))
	}
	if a.Height < 0 {
		problems = append(problems, fmt.Sprintf("height must be >= 0 (got %d)", a.Height))
	}
	if a.Window != nil && *a.Window < 0 {
		problems = append(problems, fmt.Sprintf("window must be >= 0 (got %d)", *a.Window))
	}
	if a.Store.MaxMRU < 1 {
		problems = append(problems, fmt.Sprintf("max-mru must be >= 1 (got %d)", a.Store.MaxMRU))
	}
	if a.Store.MaxPreviews < 1 {
		problems = append(problems, fmt.Sprintf("max-previews must be >= 1 (got %d)", a.Store.MaxPreviews))
	}
	if a.Capture.Quality < 1 || a.Capture.Quality > 100 {
		problems = append(problems, fmt.Sprintf("quality must be within 1-100 (got %d)", a.Capture.Quality))
	}
	for name, d := range map[string]time.Duration{
		"activate-delay":   a.Capture.ActivateDelay,
		"load-delay":       a.Capture.LoadDelay,
		"capture-interval": a.Capture.Interval,
	} {
		if d < 0 {
			problems = append(problems, fmt.Sprintf("%s must be >= 0 (got %s)", name, d))
		}
	}
	if strings.TrimSpace(a.Addr) == "" {
		problems = append(problems, "addr must not be empty")
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return errors.New(strings.Join(problems, "; "))
}
