package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gloco", "config.json")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "alt+1", cfg.GetHotkeyString())
	assert.Equal(t, "png", cfg.Storage.Format)
	assert.Equal(t, 300, cfg.Behavior.DebounceMs)
	assert.Equal(t, 2.0, cfg.Behavior.MinPixelRatio)
	assert.FileExists(t, path)
	assert.Equal(t, path, cfg.Path())
}

func TestLoadFileValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := `{
		"hotkey": {"modifiers": ["CTRL", "bogus", "ctrl", "Shift"], "key": "s"},
		"storage": {"directory": "../etc", "format": "JPG"},
		"behavior": {"debounceMs": 1, "display": -2, "minPixelRatio": 9, "retentionDays": -1}
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, []string{"ctrl", "shift"}, cfg.Hotkey.Modifiers)
	assert.Equal(t, "ctrl+shift+s", cfg.GetHotkeyString())
	assert.Equal(t, def.Storage.Directory, cfg.Storage.Directory)
	assert.Equal(t, def.Storage.SettingsDB, cfg.Storage.SettingsDB)
	assert.Equal(t, "png", cfg.Storage.Format)
	assert.Equal(t, 300, cfg.Behavior.DebounceMs)
	assert.Equal(t, 0, cfg.Behavior.Display)
	assert.Equal(t, 4.0, cfg.Behavior.MinPixelRatio)
	assert.Equal(t, 0, cfg.Behavior.RetentionDays)
}

func TestLoadFileInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	cfg, err := LoadFile(path)
	assert.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, DefaultConfig().Hotkey, cfg.Hotkey)
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvStorageDir, filepath.Join(dir, "out"))
	t.Setenv(EnvSettingsDB, filepath.Join(dir, "s.db"))
	t.Setenv(EnvFormat, "WEBP")
	t.Setenv(EnvDebounceMs, "120")
	t.Setenv(EnvNotifyOff, "true")

	cfg, err := LoadFile(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.Storage.Directory)
	assert.Equal(t, filepath.Join(dir, "s.db"), cfg.Storage.SettingsDB)
	assert.Equal(t, "webp", cfg.Storage.Format)
	assert.Equal(t, 120, cfg.Behavior.DebounceMs)
	assert.False(t, cfg.Behavior.ShowNotification)
}

func TestSetHotkeySaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg, err := LoadFile(path)
	require.NoError(t, err)

	require.NoError(t, cfg.SetHotkey([]string{"Alt", "shift"}, "f2"))

	again, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "alt+shift+f2", again.GetHotkeyString())
}
