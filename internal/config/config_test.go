package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and XDG_CONFIG_HOME at empty temp dirs and runs the
// test from one, so no real config file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Chdir(dir)
	for _, key := range []string{"FORMAT", "VERBOSE", "DATABASE", "LOG_LEVEL"} {
		t.Setenv(EnvPrefix+"_"+key, "")
		os.Unsetenv(EnvPrefix + "_" + key)
	}
	return dir
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_XDGConfigFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, filepath.Join(dir, "xdg", "filterview", "filterview.yaml"),
		"format: json\ndatabase: runs.db\nlog_level: info\n")

	l := NewLoader()
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "runs.db", cfg.Database)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Contains(t, l.ConfigFileUsed(), "filterview.yaml")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeConfig(t, path, "format: json\nlog_level: info\n")
	t.Setenv("FILTERVIEW_FORMAT", "text")
	t.Setenv("FILTERVIEW_LOG_LEVEL", "error")

	l := NewLoader()
	l.SetConfigFile(path)
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	isolate(t)
	t.Setenv("FILTERVIEW_DATABASE", "env.db")
	t.Setenv("FILTERVIEW_FORMAT", "json")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("db", "", "")
	fs.String("format", "text", "")
	fs.Bool("unrelated", false, "")
	require.NoError(t, fs.Parse([]string{"--db", "flag.db"}))

	l := NewLoader()
	require.NoError(t, l.BindFlags(fs))
	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "flag.db", cfg.Database, "set flag wins over env")
	assert.Equal(t, "json", cfg.Format, "unset flag leaves env in place")
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	dir := isolate(t)

	l := NewLoader()
	l.SetConfigFile(filepath.Join(dir, "nope.yaml"))
	_, err := l.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	isolate(t)
	t.Setenv("FILTERVIEW_FORMAT", "xml")

	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestLoad_ExpandsTilde(t *testing.T) {
	dir := isolate(t)
	t.Setenv("FILTERVIEW_DATABASE", "~/runs.db")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "runs.db"), cfg.Database)
}

func TestConfig_Level(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want slog.Level
	}{
		{"default", Config{LogLevel: "warn"}, slog.LevelWarn},
		{"info", Config{LogLevel: "INFO"}, slog.LevelInfo},
		{"verbose wins", Config{LogLevel: "error", Verbose: true}, slog.LevelDebug},
		{"invalid falls back", Config{LogLevel: "loud"}, slog.LevelWarn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Level())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.LogLevel = "trace"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log_level")
}
