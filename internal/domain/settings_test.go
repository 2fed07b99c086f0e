package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAdminSettingsShape(t *testing.T) {
	s := DefaultAdminSettings()

	colors := s[CategoryLogColors].(map[string]any)
	assert.Len(t, colors, 12)
	assert.Equal(t, "#282c34", colors["console_background"])

	filters := s[CategoryLogFilters].(map[string]any)
	assert.Len(t, filters, 7)
	for key, v := range filters {
		assert.Equal(t, true, v, key)
	}

	debug := s[CategoryDebugSettings].(map[string]any)
	assert.Len(t, debug, 4)
	assert.Equal(t, true, debug["logs_enabled"])
	assert.Equal(t, false, debug["show_log_console"])
}

func TestAttachDefaultAdminSettings(t *testing.T) {
	u := NewUser("admin", "admin@test.at", "x")

	assert.True(t, AttachDefaultAdminSettings(u))
	assert.True(t, HasAdminSettings(u))

	// A second promotion must not clobber customized values.
	u.Settings[CategoryLogColors].(map[string]any)["info"] = "#000000"
	assert.False(t, AttachDefaultAdminSettings(u))
	assert.Equal(t, "#000000", u.Settings[CategoryLogColors].(map[string]any)["info"])
}

func TestAttachKeepsExistingCategories(t *testing.T) {
	u := NewUser("admin", "admin@test.at", "x")
	u.Settings = map[string]any{
		CategoryLogFilters: map[string]any{"log_info": false},
	}

	// Any existing admin category counts as "already present".
	assert.False(t, AttachDefaultAdminSettings(u))
	assert.Equal(t, false, u.Settings[CategoryLogFilters].(map[string]any)["log_info"])
	_, hasColors := u.Settings[CategoryLogColors]
	assert.False(t, hasColors)
}

func TestSanitizedStripsPasswordHash(t *testing.T) {
	u := NewUser("user", "user@test.at", "hash")
	s := u.Sanitized()
	assert.Empty(t, s.PasswordHash)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.Equal(t, u.ID, s.ID)
}
