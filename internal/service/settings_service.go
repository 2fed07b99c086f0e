package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/planwerk/planwerk/internal/config"
	"github.com/planwerk/planwerk/internal/domain"
	"github.com/planwerk/planwerk/internal/store"
)

// SettingsService manages instance-wide application settings and the
// per-user settings categories.
type SettingsService struct {
	store  store.Store
	app    *config.AppSettings
	logger zerolog.Logger
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(st store.Store, app *config.AppSettings, logger zerolog.Logger) *SettingsService {
	return &SettingsService{
		store:  st,
		app:    app,
		logger: logger.With().Str("service", "settings").Logger(),
	}
}

// AppSettings returns a snapshot of all instance-wide settings.
func (s *SettingsService) AppSettings() map[string]any {
	return s.app.All()
}

// UpdateAppSetting sets one instance-wide key and persists the settings
// file immediately.
func (s *SettingsService) UpdateAppSetting(key string, value any) error {
	if key == "" {
		return ErrMissingSetting
	}
	if err := s.app.Set(key, value); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to persist app setting")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("key", key).Interface("value", value).Msg("app setting updated")
	return nil
}

func validCategory(category string) bool {
	switch category {
	case domain.CategoryLogColors, domain.CategoryLogFilters, domain.CategoryDebugSettings:
		return true
	}
	return false
}

// SaveUserSettings stores one settings category for a user. The log color
// category is routed through the dedicated store operation so both
// backends keep colors under the shared preferences layout.
func (s *SettingsService) SaveUserSettings(ctx context.Context, userID, category string, settings map[string]any) error {
	if !validCategory(category) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownSettingsCategory, category)
	}

	var err error
	if category == domain.CategoryLogColors {
		colors := make(map[string]string, len(settings))
		for k, v := range settings {
			if sv, ok := v.(string); ok {
				colors[k] = sv
			}
		}
		err = s.store.SaveUserLogColors(ctx, userID, colors)
	} else {
		err = s.store.SaveUserSettings(ctx, userID, category, settings)
	}
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		s.logger.Error().Err(err).Str("user_id", userID).Str("category", category).Msg("failed to save user settings")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_id", userID).
		Str("category", category).
		Int("keys", len(settings)).
		Msg("user settings saved")

	return nil
}

// GetUserSettings returns one settings category for a user, falling back
// to the built-in defaults when the user never stored the category.
func (s *SettingsService) GetUserSettings(ctx context.Context, userID, category string) (map[string]any, error) {
	if !validCategory(category) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownSettingsCategory, category)
	}

	if category == domain.CategoryLogColors {
		colors, err := s.store.GetUserLogColors(ctx, userID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		if len(colors) == 0 {
			colors = domain.DefaultLogColors()
		}
		out := make(map[string]any, len(colors))
		for k, v := range colors {
			out[k] = v
		}
		return out, nil
	}

	settings, err := s.store.GetUserSettings(ctx, userID, category)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if len(settings) == 0 {
		settings = defaultCategory(category)
	}
	return settings, nil
}

func defaultCategory(category string) map[string]any {
	switch category {
	case domain.CategoryLogFilters:
		return domain.DefaultLogFilters()
	case domain.CategoryDebugSettings:
		return domain.DefaultDebugSettings()
	}
	return map[string]any{}
}

// UpdateLogFilters stores which log streams a user wants to see and
// returns the stored filter set.
func (s *SettingsService) UpdateLogFilters(ctx context.Context, userID string, filters map[string]any) (map[string]any, error) {
	if err := s.SaveUserSettings(ctx, userID, domain.CategoryLogFilters, filters); err != nil {
		return nil, err
	}
	return s.GetUserSettings(ctx, userID, domain.CategoryLogFilters)
}
