package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/planwerk/planwerk/internal/config"
	"github.com/planwerk/planwerk/internal/domain"
)

func newSettingsService(t *testing.T, st *MockStore) *SettingsService {
	t.Helper()
	app, err := config.LoadAppSettings(filepath.Join(t.TempDir(), "settings.json"))
	if err != nil {
		t.Fatalf("failed to load app settings: %v", err)
	}
	return NewSettingsService(st, app, zerolog.Nop())
}

func TestSettingsService_UpdateAppSetting(t *testing.T) {
	svc := newSettingsService(t, NewMockStore())

	if err := svc.UpdateAppSetting("debug_mode", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := svc.AppSettings()["debug_mode"]; got != true {
		t.Errorf("expected debug_mode=true, got %v", got)
	}

	if err := svc.UpdateAppSetting("", true); !errors.Is(err, ErrMissingSetting) {
		t.Errorf("expected ErrMissingSetting, got %v", err)
	}
}

func TestSettingsService_SaveUserSettings(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		category string
		settings map[string]any
		wantErr  error
	}{
		{
			name:     "log filters",
			userID:   "u1",
			category: domain.CategoryLogFilters,
			settings: map[string]any{"log_info": false},
		},
		{
			name:     "debug settings",
			userID:   "u1",
			category: domain.CategoryDebugSettings,
			settings: map[string]any{"logs_enabled": false},
		},
		{
			name:     "log colors",
			userID:   "u1",
			category: domain.CategoryLogColors,
			settings: map[string]any{"info": "#123456"},
		},
		{
			name:     "unknown category",
			userID:   "u1",
			category: "favorite_foods",
			wantErr:  domain.ErrUnknownSettingsCategory,
		},
		{
			name:     "unknown user",
			userID:   "ghost",
			category: domain.CategoryLogFilters,
			settings: map[string]any{"log_info": false},
			wantErr:  domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewMockStore()
			st.users["u1"] = &domain.User{ID: "u1", Email: "u1@example.com"}
			svc := newSettingsService(t, st)

			err := svc.SaveUserSettings(context.Background(), tt.userID, tt.category, tt.settings)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSettingsService_GetUserSettings_Defaults(t *testing.T) {
	st := NewMockStore()
	st.users["u1"] = &domain.User{ID: "u1"}
	svc := newSettingsService(t, st)

	filters, err := svc.GetUserSettings(context.Background(), "u1", domain.CategoryLogFilters)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(filters) != len(domain.DefaultLogFilters()) {
		t.Errorf("expected default filter set, got %v", filters)
	}

	colors, err := svc.GetUserSettings(context.Background(), "u1", domain.CategoryLogColors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if colors["console_background"] != "#282c34" {
		t.Errorf("expected default console background, got %v", colors["console_background"])
	}
}

func TestSettingsService_LogColors_RoundTrip(t *testing.T) {
	st := NewMockStore()
	st.users["u1"] = &domain.User{ID: "u1"}
	svc := newSettingsService(t, st)

	in := map[string]any{"info": "#111111", "warn": "#222222"}
	if err := svc.SaveUserSettings(context.Background(), "u1", domain.CategoryLogColors, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := svc.GetUserSettings(context.Background(), "u1", domain.CategoryLogColors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["info"] != "#111111" || out["warn"] != "#222222" {
		t.Errorf("expected stored colors back, got %v", out)
	}
}

func TestSettingsService_UpdateLogFilters(t *testing.T) {
	st := NewMockStore()
	st.users["u1"] = &domain.User{ID: "u1"}
	svc := newSettingsService(t, st)

	out, err := svc.UpdateLogFilters(context.Background(), "u1", map[string]any{"log_info": false, "log_err": true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out["log_info"] != false {
		t.Errorf("expected log_info=false, got %v", out["log_info"])
	}
}
