package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/planwerk/planwerk/internal/domain"
)

// MockStore is an in-memory mock implementation of store.Store.
type MockStore struct {
	users          map[string]*domain.User
	projects       []*domain.Project
	passwordLogin  bool
	identityNextID int

	saveUserErr  error
	getUserErr   error
	claimErr     error
	identityErr  error
	saveProjErr  error
	identityMade []string
	claims       map[string]bool
}

func NewMockStore() *MockStore {
	return &MockStore{
		users:         make(map[string]*domain.User),
		passwordLogin: true,
		claims:        make(map[string]bool),
	}
}

func (m *MockStore) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	var result []*domain.User
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, nil
}

func (m *MockStore) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if m.getUserErr != nil {
		return nil, m.getUserErr
	}
	if u, exists := m.users[id]; exists {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getUserErr != nil {
		return nil, m.getUserErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockStore) SaveUser(ctx context.Context, user *domain.User) error {
	if m.saveUserErr != nil {
		return m.saveUserErr
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockStore) UserCount(ctx context.Context) (int, error) {
	return len(m.users), nil
}

func (m *MockStore) SaveUserSettings(ctx context.Context, userID, category string, settings map[string]any) error {
	u, exists := m.users[userID]
	if !exists {
		return domain.ErrUserNotFound
	}
	if u.Settings == nil {
		u.Settings = make(map[string]any)
	}
	u.Settings[category] = settings
	return nil
}

func (m *MockStore) GetUserSettings(ctx context.Context, userID, category string) (map[string]any, error) {
	u, exists := m.users[userID]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	return u.SettingsCategory(category), nil
}

func (m *MockStore) SaveUserLogColors(ctx context.Context, userID string, colors map[string]string) error {
	u, exists := m.users[userID]
	if !exists {
		return domain.ErrUserNotFound
	}
	values := make(map[string]any, len(colors))
	for k, v := range colors {
		values[k] = v
	}
	if u.Settings == nil {
		u.Settings = make(map[string]any)
	}
	u.Settings[domain.CategoryPreferences] = map[string]any{
		"ui": map[string]any{"log_colors": values},
	}
	return nil
}

func (m *MockStore) GetUserLogColors(ctx context.Context, userID string) (map[string]string, error) {
	u, exists := m.users[userID]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	return domain.LogColorsFromSettings(u.Settings), nil
}

func (m *MockStore) GetAllProjects(ctx context.Context) ([]*domain.Project, error) {
	return m.projects, nil
}

func (m *MockStore) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	for _, p := range m.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrProjectNotFound
}

func (m *MockStore) SaveProject(ctx context.Context, project *domain.Project) error {
	if m.saveProjErr != nil {
		return m.saveProjErr
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	for i, p := range m.projects {
		if p.ID == project.ID {
			m.projects[i] = project
			return nil
		}
	}
	m.projects = append(m.projects, project)
	return nil
}

func (m *MockStore) DeleteProject(ctx context.Context, id string) (bool, error) {
	for i, p := range m.projects {
		if p.ID == id {
			m.projects = append(m.projects[:i], m.projects[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MockStore) CreateIdentityUser(ctx context.Context, email, password, displayName string) (string, error) {
	if m.identityErr != nil {
		return "", m.identityErr
	}
	m.identityNextID++
	uid := fmt.Sprintf("identity-%d", m.identityNextID)
	m.identityMade = append(m.identityMade, email)
	return uid, nil
}

func (m *MockStore) SetAdminClaim(ctx context.Context, userID string, isAdmin bool) error {
	if m.claimErr != nil {
		return m.claimErr
	}
	m.claims[userID] = isAdmin
	return nil
}

func (m *MockStore) SupportsPasswordLogin() bool {
	return m.passwordLogin
}

func (m *MockStore) Ping(ctx context.Context) error { return nil }

func (m *MockStore) Close() error { return nil }

var errBackend = errors.New("backend failure")
