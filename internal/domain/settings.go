package domain

// Settings categories stored under User.Settings.
const (
	CategoryLogColors     = "log_colors"
	CategoryLogFilters    = "log_filters"
	CategoryDebugSettings = "debug_settings"
	CategoryPreferences   = "preferences"
)

// DefaultLogColors returns the 12 named console color keys an administrator
// can customize.
func DefaultLogColors() map[string]string {
	return map[string]string{
		"console_background": "#282c34",
		"log_text":           "#abb2bf",
		"timestamp":          "#8892b0",
		"header_bg":          "#1e2127",
		"header_text":        "#ffffff",
		"info":               "#3b82f6",
		"warn":               "#f59e0b",
		"err":                "#ef4444",
		"api_req":            "#8b5cf6",
		"api_ans":            "#a855f7",
		"database":           "#10b981",
		"activity":           "#6b7280",
	}
}

// DefaultLogFilters returns the 7 log type toggles, all enabled.
func DefaultLogFilters() map[string]any {
	return map[string]any{
		"log_info":     true,
		"log_warn":     true,
		"log_err":      true,
		"log_api_req":  true,
		"log_api_ans":  true,
		"log_database": true,
		"log_activity": true,
	}
}

// DefaultDebugSettings returns the debug console flags.
func DefaultDebugSettings() map[string]any {
	return map[string]any{
		"logs_enabled":           true,
		"show_log_console":       false,
		"log_to_browser_console": false,
		"log_autoscroll_enabled": true,
	}
}

// DefaultAdminSettings returns the settings block attached to a user the
// first time they are promoted to administrator. Demotion never removes it.
func DefaultAdminSettings() map[string]any {
	colors := map[string]any{}
	for k, v := range DefaultLogColors() {
		colors[k] = v
	}
	return map[string]any{
		CategoryLogColors:     colors,
		CategoryLogFilters:    DefaultLogFilters(),
		CategoryDebugSettings: DefaultDebugSettings(),
	}
}

// LogColorsFromSettings reads the color mapping from a user settings map.
// It prefers the nested preferences.ui.log_colors layout and tolerates the
// older flat log_colors layout.
func LogColorsFromSettings(settings map[string]any) map[string]string {
	if prefs, ok := settings[CategoryPreferences].(map[string]any); ok {
		if ui, ok := prefs["ui"].(map[string]any); ok {
			if colors, ok := ui["log_colors"].(map[string]any); ok {
				return stringValues(colors)
			}
		}
	}
	if colors, ok := settings[CategoryLogColors].(map[string]any); ok {
		return stringValues(colors)
	}
	return map[string]string{}
}

func stringValues(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

// HasAdminSettings reports whether any of the admin settings categories is
// already present on the user.
func HasAdminSettings(u *User) bool {
	if u.Settings == nil {
		return false
	}
	for _, cat := range []string{CategoryLogColors, CategoryLogFilters, CategoryDebugSettings} {
		if _, ok := u.Settings[cat]; ok {
			return true
		}
	}
	return false
}

// AttachDefaultAdminSettings adds the default admin settings block to the
// user if and only if none is present. Returns true when it attached.
func AttachDefaultAdminSettings(u *User) bool {
	if HasAdminSettings(u) {
		return false
	}
	if u.Settings == nil {
		u.Settings = map[string]any{}
	}
	for cat, v := range DefaultAdminSettings() {
		u.Settings[cat] = v
	}
	return true
}
