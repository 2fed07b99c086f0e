package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppSettingsCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")

	s, err := LoadAppSettings(path)
	require.NoError(t, err)
	assert.False(t, s.GetBool("debug_mode"))

	// The default file must exist afterwards.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk map[string]any
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, false, onDisk["debug_mode"])
}

func TestLoadAppSettingsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := LoadAppSettings(path)
	require.NoError(t, err)
	assert.Equal(t, false, s.Get("debug_mode"))
}

func TestAppSettingsSetPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s, err := LoadAppSettings(path)
	require.NoError(t, err)

	require.NoError(t, s.Set("debug_mode", true))
	require.NoError(t, s.Set("test_mode", true))
	assert.True(t, s.GetBool("debug_mode"))

	// A fresh load sees the updated values.
	reloaded, err := LoadAppSettings(path)
	require.NoError(t, err)
	assert.True(t, reloaded.GetBool("debug_mode"))
	assert.True(t, reloaded.GetBool("test_mode"))
}

func TestAppSettingsAllReturnsCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s, err := LoadAppSettings(path)
	require.NoError(t, err)

	all := s.All()
	all["debug_mode"] = true
	assert.False(t, s.GetBool("debug_mode"))
}
