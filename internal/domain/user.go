// Package domain contains the core business entities for Planwerk.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the project tracking application.
package domain

import (
	"github.com/google/uuid"
)

// UserSettings holds the per-user preferences shown on every page.
type UserSettings struct {
	// Theme is the UI theme, "dark" or "light".
	Theme string `json:"theme"`

	// Language is the UI language code (e.g. "de", "en").
	Language string `json:"language"`

	// Notifications enables in-app notifications.
	Notifications bool `json:"notifications"`
}

// DefaultUserSettings returns the settings assigned to a new user.
func DefaultUserSettings() UserSettings {
	return UserSettings{
		Theme:         "dark",
		Language:      "de",
		Notifications: true,
	}
}

// User represents a registered user in the system.
// Users own their settings map exclusively; nothing is shared by reference
// between two users.
type User struct {
	// ID is the unique identifier for the user (generated if absent).
	ID string `json:"id"`

	// Username is the display name.
	Username string `json:"username"`

	// Email is the natural lookup key for login.
	// Unique across all users, enforced at registration time.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// Persisted in store documents but never exposed in API responses.
	PasswordHash string `json:"password_hash,omitempty"`

	// Friends is an ordered list of user-id references.
	// The feature is currently unused downstream but carried in the record.
	Friends []string `json:"friends"`

	// IsAdmin gates the administrative routes.
	IsAdmin bool `json:"is_admin"`

	// UserSettings are the fixed per-user preferences.
	UserSettings UserSettings `json:"user_settings"`

	// Settings is the free-form settings store, keyed by category
	// (log_filters, debug_settings, preferences, ...). Admin-only
	// preferences live here too; there is no separate admin_settings field.
	Settings map[string]any `json:"settings,omitempty"`
}

// NewUser creates a new User with a generated ID and default settings.
func NewUser(username, email, passwordHash string) *User {
	return &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Friends:      []string{},
		IsAdmin:      false,
		UserSettings: DefaultUserSettings(),
	}
}

// Sanitized returns a copy of the user safe for API responses:
// the password hash is stripped.
func (u *User) Sanitized() *User {
	c := *u
	c.PasswordHash = ""
	return &c
}

// SettingsCategory returns the settings stored under the given category,
// or nil if the category has never been written.
func (u *User) SettingsCategory(category string) map[string]any {
	if u.Settings == nil {
		return nil
	}
	v, ok := u.Settings[category].(map[string]any)
	if !ok {
		return nil
	}
	return v
}
