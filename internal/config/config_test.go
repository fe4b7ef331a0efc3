package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "books.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "com.example.android.books", cfg.Provider.Authority)
	assert.NoError(t, cfg.validate())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeFile(t, "database:\n  path: /tmp/inventory.db\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/inventory.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "com.example.android.books", cfg.Provider.Authority)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeFile(t, ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown key", "database:\n  file: x.db\n", "failed to parse"},
		{"bad yaml", "database: [\n", "failed to parse"},
		{"empty path", "database:\n  path: \"\"\n", "database.path is required"},
		{"bad level", "logging:\n  level: loud\n", "logging.level"},
		{"bad format", "logging:\n  format: xml\n", "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadOrDefault(writeFile(t, "logging:\n  level: debug\n"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("BOOKS_DB_PATH", "/data/books.db")
	t.Setenv("BOOKS_LOG_LEVEL", "error")
	t.Setenv("BOOKS_LOG_FORMAT", "json")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "/data/books.db", cfg.Database.Path)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "com.example.android.books", cfg.Provider.Authority)
}

func TestApplyEnv_Invalid(t *testing.T) {
	t.Setenv("BOOKS_LOG_FORMAT", "xml")

	err := DefaultConfig().ApplyEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Database.Path = "shelf.db"
	cfg.Provider.Authority = "org.example.shelf"
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestSave_Overwrites(t *testing.T) {
	path := writeFile(t, "database:\n  path: old.db\n")

	cfg := DefaultConfig()
	cfg.Database.Path = "new.db"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "new.db", loaded.Database.Path)
}

func TestSlogLevel(t *testing.T) {
	cfg := DefaultConfig()
	for level, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		cfg.Logging.Level = level
		assert.Equal(t, want, cfg.SlogLevel(), level)
	}
}

func TestNewLogger(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Format = "json"

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf, false)
	logger.Debug("hidden")
	logger.Info("shown", "rows", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"rows":3`)

	buf.Reset()
	cfg.NewLogger(&buf, true).Debug("verbose")
	assert.Contains(t, buf.String(), "verbose")
}
