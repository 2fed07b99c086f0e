// Package jsonstore implements store.Store on top of two local JSON
// documents: a mapping of user-id to user record and a list of project
// records. Every read re-parses the document from scratch and every write
// rewrites the whole document. Missing or corrupt documents degrade to
// empty collections instead of failing.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/planwerk/planwerk/internal/domain"
	"github.com/planwerk/planwerk/internal/store"
)

// Store is the JSON-file backend.
//
// The read-modify-write cycle is guarded by a process-local mutex; writers
// in other processes are not coordinated (a known limitation of this
// backend, acceptable at its intended scale).
type Store struct {
	mu           sync.Mutex
	usersPath    string
	projectsPath string
	logger       zerolog.Logger
}

// New creates a JSON-file store and makes sure both documents exist,
// creating empty ones on first run.
func New(usersPath, projectsPath string, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		usersPath:    usersPath,
		projectsPath: projectsPath,
		logger:       logger.With().Str("store", "json").Logger(),
	}
	if err := s.ensureFile(usersPath, []byte("{}")); err != nil {
		return nil, err
	}
	if err := s.ensureFile(projectsPath, []byte("[]")); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureFile(path string, empty []byte) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := os.WriteFile(path, empty, 0o644); err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	return nil
}

// readUsers parses the users document. Missing or corrupt files yield an
// empty mapping.
func (s *Store) readUsers() map[string]*domain.User {
	users := map[string]*domain.User{}
	data, err := os.ReadFile(s.usersPath)
	if err != nil {
		return users
	}
	if err := json.Unmarshal(data, &users); err != nil {
		s.logger.Warn().Err(err).Str("path", s.usersPath).Msg("users document corrupt, treating as empty")
		return map[string]*domain.User{}
	}
	return users
}

func (s *Store) writeUsers(users map[string]*domain.User) error {
	data, err := json.MarshalIndent(users, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal users: %w", err)
	}
	return os.WriteFile(s.usersPath, data, 0o644)
}

// readProjects parses the projects document. Missing or corrupt files
// yield an empty list.
func (s *Store) readProjects() []*domain.Project {
	var projects []*domain.Project
	data, err := os.ReadFile(s.projectsPath)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(data, &projects); err != nil {
		s.logger.Warn().Err(err).Str("path", s.projectsPath).Msg("projects document corrupt, treating as empty")
		return nil
	}
	return projects
}

func (s *Store) writeProjects(projects []*domain.Project) error {
	if projects == nil {
		projects = []*domain.Project{}
	}
	data, err := json.MarshalIndent(projects, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal projects: %w", err)
	}
	return os.WriteFile(s.projectsPath, data, 0o644)
}

// GetAllUsers returns every user record.
func (s *Store) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := s.readUsers()
	out := make([]*domain.User, 0, len(users))
	for _, u := range users {
		out = append(out, u)
	}
	return out, nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.readUsers()[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

// FindUserByEmail retrieves a user by email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.readUsers() {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// SaveUser upserts a user record by ID. The stored entry is a full
// replacement of the previous document.
func (s *Store) SaveUser(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	users := s.readUsers()
	users[user.ID] = user
	return s.writeUsers(users)
}

// UserCount returns the number of stored users.
func (s *Store) UserCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.readUsers()), nil
}

// SaveUserSettings stores a settings mapping under the given category.
// Unknown users are an error, not a silent no-op.
func (s *Store) SaveUserSettings(ctx context.Context, userID, category string, settings map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := s.readUsers()
	u, ok := users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if u.Settings == nil {
		u.Settings = map[string]any{}
	}
	u.Settings[category] = settings
	return s.writeUsers(users)
}

// GetUserSettings loads the settings stored under the given category.
func (s *Store) GetUserSettings(ctx context.Context, userID, category string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.readUsers()[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if settings := u.SettingsCategory(category); settings != nil {
		return settings, nil
	}
	return map[string]any{}, nil
}

// SaveUserLogColors stores the color mapping nested under
// settings.preferences.ui.log_colors, stamped with an update time and a
// layout version.
func (s *Store) SaveUserLogColors(ctx context.Context, userID string, colors map[string]string) error {
	ui := map[string]any{
		"log_colors": colorsToAny(colors),
		"updated_at": time.Now().UTC().Format(time.RFC3339),
		"version":    "1.0",
	}
	return s.SaveUserSettings(ctx, userID, domain.CategoryPreferences, map[string]any{"ui": ui})
}

// GetUserLogColors loads the color mapping, falling back to the legacy
// flat settings.log_colors layout.
func (s *Store) GetUserLogColors(ctx context.Context, userID string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.readUsers()[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return domain.LogColorsFromSettings(u.Settings), nil
}

// GetAllProjects returns every project record.
func (s *Store) GetAllProjects(ctx context.Context) ([]*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects := s.readProjects()
	if projects == nil {
		projects = []*domain.Project{}
	}
	return projects, nil
}

// GetProject retrieves a project by ID.
func (s *Store) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.readProjects() {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrProjectNotFound
}

// SaveProject upserts a project by ID, generating a fresh ID when absent.
func (s *Store) SaveProject(ctx context.Context, project *domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects := s.readProjects()
	if project.ID == "" {
		project.ID = uuid.NewString()
		projects = append(projects, project)
		return s.writeProjects(projects)
	}
	for i, p := range projects {
		if p.ID == project.ID {
			projects[i] = project
			return s.writeProjects(projects)
		}
	}
	projects = append(projects, project)
	return s.writeProjects(projects)
}

// DeleteProject removes a project by ID and reports whether one existed.
func (s *Store) DeleteProject(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	projects := s.readProjects()
	kept := projects[:0]
	for _, p := range projects {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(projects) {
		return false, nil
	}
	return true, s.writeProjects(kept)
}

// CreateIdentityUser is unsupported: the file backend keeps credentials
// locally and registration constructs the record itself.
func (s *Store) CreateIdentityUser(ctx context.Context, email, password, displayName string) (string, error) {
	return "", fmt.Errorf("json store has no external identity provider")
}

// SetAdminClaim is a no-op: the file backend has no external identity
// provider to mirror the flag into.
func (s *Store) SetAdminClaim(ctx context.Context, userID string, isAdmin bool) error {
	return nil
}

// SupportsPasswordLogin reports that login verifies the stored bcrypt hash.
func (s *Store) SupportsPasswordLogin() bool { return true }

// Ping checks that the users document is readable.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := os.Stat(s.usersPath); err != nil {
		return err
	}
	return nil
}

// Close releases nothing; the backend holds no open handles between calls.
func (s *Store) Close() error { return nil }

func colorsToAny(colors map[string]string) map[string]any {
	out := make(map[string]any, len(colors))
	for k, v := range colors {
		out[k] = v
	}
	return out
}

// Ensure Store implements store.Store
var _ store.Store = (*Store)(nil)
