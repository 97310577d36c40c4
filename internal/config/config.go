// Package config loads ddlschema settings from defaults, a YAML file,
// DDLSCHEMA_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/sadopc/ddlschema/internal/adapter"
	"github.com/sadopc/ddlschema/internal/extract"
	"github.com/sadopc/ddlschema/internal/render"
	"github.com/sadopc/ddlschema/internal/theme"
)

const (
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "DDLSCHEMA_"

	// DefaultDebounce is the default quiet period of watch mode.
	DefaultDebounce = 200 * time.Millisecond
)

// FileNames are looked up in the working directory when no explicit config
// file is given.
var FileNames = []string{"ddlschema.yaml", "ddlschema.yml"}

var (
	ErrInvalidFormat = errors.New("invalid output format")
	ErrInvalidColor  = errors.New("invalid color mode")
	ErrUnknownEngine = errors.New("unknown engine")
	ErrUnknownTheme  = errors.New("unknown theme")
)

// Config holds all application configuration.
type Config struct {
	Format  string      `koanf:"format" yaml:"format"`
	Output  string      `koanf:"output" yaml:"output,omitempty"`
	Color   string      `koanf:"color" yaml:"color"`
	Theme   string      `koanf:"theme" yaml:"theme"`
	Engine  string      `koanf:"engine" yaml:"engine"`
	Include []string    `koanf:"include" yaml:"include,omitempty"`
	Exclude []string    `koanf:"exclude" yaml:"exclude,omitempty"`
	Log     LogConfig   `koanf:"log" yaml:"log"`
	Watch   WatchConfig `koanf:"watch" yaml:"watch"`

	// Source is the config file that was loaded, if any.
	Source string `koanf:"-" yaml:"-"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"` // "console" or "json"
	Path   string `koanf:"path" yaml:"path,omitempty"`
	// MaxSizeMB rotates the log file once it exceeds that size; 0 disables.
	MaxSizeMB int `koanf:"max_size_mb" yaml:"max_size_mb,omitempty"`
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	Debounce time.Duration `koanf:"debounce" yaml:"debounce"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Format: string(render.FormatJSON),
		Color:  render.ColorAuto,
		Theme:  "default",
		Engine: extract.DefaultEngine,
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Watch: WatchConfig{Debounce: DefaultDebounce},
	}
}

func defaults() map[string]any {
	d := DefaultConfig()
	return map[string]any{
		"format":         d.Format,
		"color":          d.Color,
		"theme":          d.Theme,
		"engine":         d.Engine,
		"log.level":      d.Log.Level,
		"log.format":     d.Log.Format,
		"watch.debounce": d.Watch.Debounce,
	}
}

// ConfigDir returns the ddlschema configuration directory path, typically
// ~/.config/ddlschema/.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(base, "ddlschema"), nil
}

// findConfigFile returns the config file to load, or "" for none.
// Priority: explicit path > ./ddlschema.yaml > ./ddlschema.yml > ConfigDir()/config.yaml.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range FileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	if dir, err := ConfigDir(); err == nil {
		candidate := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// flagKeys maps flag names whose config key is not the snake_case flag name.
// Flags mapped to "" are not configuration and are never loaded.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"log-file":   "log.path",
	"debounce":   "watch.debounce",

	"config":  "",
	"from-db": "",
	"watch":   "",
	"help":    "",
	"version": "",
}

// envKey turns DDLSCHEMA_LOG_LEVEL into log.level.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, section := range []string{"log_", "watch_"} {
		if strings.HasPrefix(key, section) {
			return strings.Replace(key, "_", ".", 1)
		}
	}
	return key
}

// Load reads configuration. Precedence (highest to lowest): explicitly set
// flags > environment > config file > defaults. An explicit path that does
// not exist is an error; the implicit locations are optional.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	source := findConfigFile(path)
	if source != "" {
		if err := k.Load(file.Provider(source), kyaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", source, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			if key == "" {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Source = source

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings and the table filters.
func (c *Config) Validate() error {
	if _, err := render.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Format)
	}
	switch c.Color {
	case render.ColorAuto, render.ColorAlways, render.ColorNever:
	default:
		return fmt.Errorf("%w: %q (want auto, always or never)", ErrInvalidColor, c.Color)
	}
	if _, ok := theme.Themes[c.Theme]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, c.Theme)
	}
	if _, ok := adapter.Lookup(c.Engine); !ok {
		return fmt.Errorf("%w: %q (available: %s)", ErrUnknownEngine, c.Engine, strings.Join(adapter.Names(), ", "))
	}
	return c.Filter().Validate()
}

// Filter returns the table filter described by Include and Exclude.
func (c *Config) Filter() extract.Filter {
	return extract.Filter{IncludeTables: c.Include, ExcludeTables: c.Exclude}
}

// Save writes the Config to the YAML file at path, creating any necessary
// parent directories.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
