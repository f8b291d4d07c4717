package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveAndLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Default()
	require.NoError(t, cfg.Set("format", "yml"))
	require.NoError(t, cfg.Set("indent", "4"))
	require.NoError(t, cfg.Set("history_db", "/var/lib/lynisparse/history.db"))
	require.NoError(t, SaveConfig(cfg))

	info, err := os.Stat(filepath.Join(home, ".lynisparse", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "yaml", loaded.Format)
	assert.Equal(t, 4, loaded.Indent)
	assert.Equal(t, "/var/lib/lynisparse/history.db", loaded.HistoryDB)
	assert.Equal(t, 4, loaded.Workers)
}

func TestLoadConfigPartialFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".lynisparse"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".lynisparse", "config.yaml"), []byte("output_dir: out\n"), 0600))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, 2, cfg.Indent, "missing keys keep defaults")
	assert.Equal(t, "json", cfg.Format)
}

func TestLoadConfigInvalid(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".lynisparse"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".lynisparse", "config.yaml"), []byte("indent: [1"), 0600))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestSetValidation(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Set("format", "xml"))
	assert.Error(t, cfg.Set("indent", "-1"))
	assert.Error(t, cfg.Set("workers", "many"))
	assert.ErrorIs(t, cfg.Set("provider", "gemini"), ErrUnknownKey)
	assert.Equal(t, Default(), cfg, "failed sets leave the config unchanged")
}

func TestGetEveryKey(t *testing.T) {
	cfg := Default()
	for _, k := range Keys {
		_, err := cfg.Get(k)
		assert.NoError(t, err, k)
	}
	v, err := cfg.Get("workers")
	require.NoError(t, err)
	assert.Equal(t, "4", v)

	_, err = cfg.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownKey)
}
