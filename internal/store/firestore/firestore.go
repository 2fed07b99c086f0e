// Package firestore implements store.Store on Google Cloud Firestore.
// User and project records are documents in named collections; identity
// (authentication) is delegated to Firebase Auth, and the admin flag is
// additionally mirrored into Firebase custom claims so it can be consulted
// independently of the document store.
package firestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	cloudfs "cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/planwerk/planwerk/internal/domain"
	"github.com/planwerk/planwerk/internal/store"
)

const (
	usersCollection    = "users"
	projectsCollection = "projects"
)

// Store is the Firestore backend.
//
// When the Firebase app cannot be initialized (typically because the
// credentials file is missing), the store is constructed in a disconnected
// state and every operation returns store.ErrNotConnected. This mirrors
// the application's startup contract: the mode is chosen before
// credentials are verified, and a misconfigured cloud mode must fail per
// request rather than crash the process.
type Store struct {
	client *cloudfs.Client
	auth   *auth.Client
	logger zerolog.Logger
}

// New creates a Firestore store from the given project ID and service
// account credentials file.
func New(ctx context.Context, projectID, credentialsPath string, logger zerolog.Logger) (*Store, error) {
	s := &Store{logger: logger.With().Str("store", "firestore").Logger()}

	if _, err := os.Stat(credentialsPath); err != nil {
		s.logger.Error().Str("path", credentialsPath).Msg("credentials file not found, store is disconnected")
		return s, nil
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	s.auth, err = app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth: %w", err)
	}
	s.client, err = app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firestore client: %w", err)
	}
	return s, nil
}

func (s *Store) checkConnected() error {
	if s.client == nil || s.auth == nil {
		return store.ErrNotConnected
	}
	return nil
}

// GetAllUsers returns every user profile document.
func (s *Store) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	var users []*domain.User
	iter := s.client.Collection(usersCollection).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		u, err := docToUser(doc.Ref.ID, doc.Data())
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// GetUser retrieves a user profile document by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	doc, err := s.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return docToUser(doc.Ref.ID, doc.Data())
}

// FindUserByEmail looks the email up at the identity provider, then loads
// the matching profile document. When the profile document is missing, a
// minimal profile derived from the identity record is returned.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	record, err := s.auth.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("identity lookup failed: %w", err)
	}

	doc, err := s.client.Collection(usersCollection).Doc(record.UID).Get(ctx)
	if err == nil {
		return docToUser(doc.Ref.ID, doc.Data())
	}
	if status.Code(err) != codes.NotFound {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}

	username := record.DisplayName
	if username == "" {
		username = email
	}
	return &domain.User{
		ID:           record.UID,
		Email:        record.Email,
		Username:     username,
		Friends:      []string{},
		UserSettings: domain.DefaultUserSettings(),
	}, nil
}

// SaveUser merge-writes the user profile document; fields absent from the
// record are preserved.
func (s *Store) SaveUser(ctx context.Context, user *domain.User) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if user.ID == "" {
		return fmt.Errorf("cannot save user without an ID")
	}
	data, err := userToDoc(user)
	if err != nil {
		return err
	}
	_, err = s.client.Collection(usersCollection).Doc(user.ID).Set(ctx, data, cloudfs.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// UserCount returns the number of profile documents.
func (s *Store) UserCount(ctx context.Context) (int, error) {
	if err := s.checkConnected(); err != nil {
		return 0, err
	}
	count := 0
	iter := s.client.Collection(usersCollection).Documents(ctx)
	defer iter.Stop()
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to count users: %w", err)
		}
		count++
	}
	return count, nil
}

// SaveUserSettings merge-writes a settings category under the user.
// Unknown users are an error, matching the file backend.
func (s *Store) SaveUserSettings(ctx context.Context, userID, category string, settings map[string]any) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	ref := s.client.Collection(usersCollection).Doc(userID)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to check user: %w", err)
	}
	_, err := ref.Set(ctx, map[string]any{
		"settings": map[string]any{category: settings},
	}, cloudfs.MergeAll)
	if err != nil {
		return fmt.Errorf("failed to save user settings: %w", err)
	}
	return nil
}

// GetUserSettings loads the settings stored under the given category.
func (s *Store) GetUserSettings(ctx context.Context, userID, category string) (map[string]any, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings := u.SettingsCategory(category); settings != nil {
		return settings, nil
	}
	return map[string]any{}, nil
}

// SaveUserLogColors merge-writes the color mapping nested under
// settings.preferences.ui.log_colors.
func (s *Store) SaveUserLogColors(ctx context.Context, userID string, colors map[string]string) error {
	ui := map[string]any{
		"log_colors": colors,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
		"version":    "1.0",
	}
	return s.SaveUserSettings(ctx, userID, domain.CategoryPreferences, map[string]any{"ui": ui})
}

// GetUserLogColors loads the color mapping, tolerating the legacy flat
// layout.
func (s *Store) GetUserLogColors(ctx context.Context, userID string) (map[string]string, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.LogColorsFromSettings(u.Settings), nil
}

// GetAllProjects returns every project document.
func (s *Store) GetAllProjects(ctx context.Context) ([]*domain.Project, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	projects := []*domain.Project{}
	iter := s.client.Collection(projectsCollection).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list projects: %w", err)
		}
		p, err := docToProject(doc.Ref.ID, doc.Data())
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// GetProject retrieves a project document by ID.
func (s *Store) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	if err := s.checkConnected(); err != nil {
		return nil, err
	}
	doc, err := s.client.Collection(projectsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return docToProject(doc.Ref.ID, doc.Data())
}

// SaveProject fully replaces the project document, generating an ID when
// absent. Unlike user writes, project writes do not use merge semantics:
// the structure tree is always saved wholesale.
func (s *Store) SaveProject(ctx context.Context, project *domain.Project) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if project.ID == "" {
		project.ID = s.client.Collection(projectsCollection).NewDoc().ID
	}
	data, err := toDoc(project)
	if err != nil {
		return err
	}
	if _, err := s.client.Collection(projectsCollection).Doc(project.ID).Set(ctx, data); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// DeleteProject removes a project document and reports whether it existed.
func (s *Store) DeleteProject(ctx context.Context, id string) (bool, error) {
	if err := s.checkConnected(); err != nil {
		return false, err
	}
	ref := s.client.Collection(projectsCollection).Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to check project: %w", err)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return false, fmt.Errorf("failed to delete project: %w", err)
	}
	return true, nil
}

// CreateIdentityUser registers the account with Firebase Auth.
func (s *Store) CreateIdentityUser(ctx context.Context, email, password, displayName string) (string, error) {
	if err := s.checkConnected(); err != nil {
		return "", err
	}
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)
	record, err := s.auth.CreateUser(ctx, params)
	if err != nil {
		return "", fmt.Errorf("identity registration failed: %w", err)
	}
	return record.UID, nil
}

// SetAdminClaim mirrors the admin flag into Firebase custom claims.
func (s *Store) SetAdminClaim(ctx context.Context, userID string, isAdmin bool) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	if err := s.auth.SetCustomUserClaims(ctx, userID, map[string]any{"admin": isAdmin}); err != nil {
		return fmt.Errorf("failed to set admin claim: %w", err)
	}
	return nil
}

// SupportsPasswordLogin reports that password verification is delegated to
// the identity provider; only profile lookup happens here.
func (s *Store) SupportsPasswordLogin() bool { return false }

// Ping checks backend availability.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.checkConnected(); err != nil {
		return err
	}
	iter := s.client.Collection(usersCollection).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return fmt.Errorf("firestore ping failed: %w", err)
	}
	return nil
}

// Close releases the Firestore client.
func (s *Store) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}

// The document shape on the wire is the same JSON shape the file backend
// uses, so records can move between backends. Conversion goes through
// encoding/json rather than a second set of struct tags.

func toDoc(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return doc, nil
}

func fromDoc(id string, doc map[string]any, v any) error {
	doc["id"] = id
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

func userToDoc(u *domain.User) (map[string]any, error) {
	return toDoc(u)
}

func docToUser(id string, doc map[string]any) (*domain.User, error) {
	// Tolerate the camelCase isAdmin flag written by older cloud tooling.
	if v, ok := doc["isAdmin"]; ok {
		if _, snake := doc["is_admin"]; !snake {
			doc["is_admin"] = v
		}
		delete(doc, "isAdmin")
	}
	u := &domain.User{}
	if err := fromDoc(id, doc, u); err != nil {
		return nil, err
	}
	return u, nil
}

func docToProject(id string, doc map[string]any) (*domain.Project, error) {
	p := &domain.Project{}
	if err := fromDoc(id, doc, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Ensure Store implements store.Store
var _ store.Store = (*Store)(nil)
