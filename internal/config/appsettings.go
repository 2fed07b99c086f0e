package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// AppSettings is the flat key->value application settings map persisted in
// settings.json. It is read once at process start and can be rewritten at
// runtime through the admin API; every write updates both the file and the
// live in-memory map.
type AppSettings struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// LoadAppSettings reads settings.json from the given path. A missing or
// corrupt file is replaced with the default settings.
func LoadAppSettings(path string) (*AppSettings, error) {
	s := &AppSettings{path: path, values: map[string]any{}}

	data, err := os.ReadFile(path)
	if err == nil {
		if jsonErr := json.Unmarshal(data, &s.values); jsonErr == nil {
			return s, nil
		}
	}

	s.values = map[string]any{"debug_mode": false}
	if err := s.flush(); err != nil {
		return nil, fmt.Errorf("failed to write default settings: %w", err)
	}
	return s, nil
}

// Get returns the value stored under key, or nil.
func (s *AppSettings) Get(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// GetBool returns the value under key interpreted as a bool.
func (s *AppSettings) GetBool(key string) bool {
	v, _ := s.Get(key).(bool)
	return v
}

// Set updates the value under key in memory and rewrites settings.json.
func (s *AppSettings) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.flush()
}

// All returns a copy of the settings map.
func (s *AppSettings) All() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// flush writes the current map to disk. Callers must hold the lock.
func (s *AppSettings) flush() error {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
