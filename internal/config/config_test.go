package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/ddlschema/internal/extract"
)

// isolate points the working directory and the user config directory at
// empty temp dirs so no real config file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	return dir
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("format", "f", "json", "")
	fs.StringP("output", "o", "", "")
	fs.String("color", "auto", "")
	fs.StringSlice("include", nil, "")
	fs.StringSlice("exclude", nil, "")
	fs.String("log-level", "warn", "")
	fs.String("log-file", "", "")
	fs.Duration("debounce", DefaultDebounce, "")
	return fs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "auto", cfg.Color)
	assert.Equal(t, "default", cfg.Theme)
	assert.Equal(t, extract.DefaultEngine, cfg.Engine)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	want := DefaultConfig()
	assert.Equal(t, want.Format, cfg.Format)
	assert.Equal(t, want.Log, cfg.Log)
	assert.Equal(t, want.Watch, cfg.Watch)
	assert.Empty(t, cfg.Source)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, `format: yaml
color: never
theme: monokai
include:
  - users
  - orders_*
log:
  level: debug
  format: json
watch:
  debounce: 1s
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, "never", cfg.Color)
	assert.Equal(t, "monokai", cfg.Theme)
	assert.Equal(t, []string{"users", "orders_*"}, cfg.Include)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, path, cfg.Source)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoad_WorkingDirectoryFile(t *testing.T) {
	isolate(t)
	writeFile(t, "ddlschema.yml", "format: table\n")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "table", cfg.Format)
	assert.Equal(t, "ddlschema.yml", cfg.Source)
}

func TestLoad_UserConfigDir(t *testing.T) {
	isolate(t)
	dir, err := ConfigDir()
	require.NoError(t, err)
	writeFile(t, filepath.Join(dir, "config.yaml"), "format: markdown\n")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "markdown", cfg.Format)
}

func TestLoad_Precedence(t *testing.T) {
	isolate(t)
	writeFile(t, "ddlschema.yaml", "format: yaml\ncolor: never\nlog:\n  level: info\n")
	t.Setenv("DDLSCHEMA_FORMAT", "table")
	t.Setenv("DDLSCHEMA_LOG_LEVEL", "error")
	t.Setenv("DDLSCHEMA_WATCH_DEBOUNCE", "750ms")

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--format", "markdown", "--exclude", "tmp_*,audit"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)

	assert.Equal(t, "markdown", cfg.Format, "flag beats env")
	assert.Equal(t, "never", cfg.Color, "file beats default")
	assert.Equal(t, "error", cfg.Log.Level, "env beats file")
	assert.Equal(t, 750*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, []string{"tmp_*", "audit"}, cfg.Exclude)
}

func TestLoad_UnchangedFlagsIgnored(t *testing.T) {
	isolate(t)
	writeFile(t, "ddlschema.yaml", "format: yaml\n")

	fs := newFlags()
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Format, "flag defaults must not override the file")
}

func TestLoad_RenamedFlags(t *testing.T) {
	isolate(t)

	fs := newFlags()
	require.NoError(t, fs.Parse([]string{"--log-level", "debug", "--log-file", "/tmp/x.log", "--debounce", "2s"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/x.log", cfg.Log.Path)
	assert.Equal(t, 2*time.Second, cfg.Watch.Debounce)
}

func TestLoad_NonConfigFlagsSkipped(t *testing.T) {
	isolate(t)

	fs := newFlags()
	fs.BoolP("watch", "w", false, "")
	fs.String("config", "", "")
	require.NoError(t, fs.Parse([]string{"--watch", "--config", "x.yaml"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"format", "format: xml\n", ErrInvalidFormat},
		{"color", "color: sometimes\n", ErrInvalidColor},
		{"theme", "theme: neon\n", ErrUnknownTheme},
		{"engine", "engine: oracle\n", ErrUnknownEngine},
		{"filters", "include: [a]\nexclude: [a]\n", extract.ErrConflictingFilters},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "c.yaml")
			writeFile(t, path, tt.content)

			_, err := Load(path, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "c.yaml")
	writeFile(t, path, "format: [unterminated\n")

	_, err := Load(path, nil)
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "format", envKey("DDLSCHEMA_FORMAT"))
	assert.Equal(t, "log.level", envKey("DDLSCHEMA_LOG_LEVEL"))
	assert.Equal(t, "watch.debounce", envKey("DDLSCHEMA_WATCH_DEBOUNCE"))
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Format = "table"
	cfg.Exclude = []string{"sqlite_stat*"}
	cfg.Watch.Debounce = 3 * time.Second
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "table", loaded.Format)
	assert.Equal(t, []string{"sqlite_stat*"}, loaded.Exclude)
	assert.Equal(t, 3*time.Second, loaded.Watch.Debounce)
}

func TestConfigDir(t *testing.T) {
	isolate(t)
	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "ddlschema", filepath.Base(dir))
}
