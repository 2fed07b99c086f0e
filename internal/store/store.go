// Package store defines the data access contract for Planwerk.
// The interface abstracts the persistence backend, allowing the local
// JSON-file store and Google Cloud Firestore to be used interchangeably
// behind a single capability set.
package store

import (
	"context"
	"errors"

	"github.com/planwerk/planwerk/internal/domain"
)

// Infrastructure errors returned by backends.
var (
	// ErrNotConnected indicates the cloud backend client failed to
	// initialize (e.g. missing credentials). This is a fatal precondition
	// for every operation, never retried.
	ErrNotConnected = errors.New("store backend is not connected")
)

// Store is the persistence contract both backends implement.
// A Store is constructed once at process start and injected into the
// services; the backend never changes for the process lifetime.
type Store interface {
	// GetAllUsers returns every user record.
	GetAllUsers(ctx context.Context) ([]*domain.User, error)

	// GetUser retrieves a user by ID.
	// Returns domain.ErrUserNotFound when absent.
	GetUser(ctx context.Context, id string) (*domain.User, error)

	// FindUserByEmail retrieves a user by email, the natural login key.
	// The cloud backend delegates to the identity provider first and falls
	// back to the stored profile document.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// SaveUser upserts a user record by ID.
	SaveUser(ctx context.Context, user *domain.User) error

	// UserCount returns the number of stored users.
	UserCount(ctx context.Context) (int, error)

	// SaveUserSettings stores a settings mapping under the given category
	// for the user. Returns domain.ErrUserNotFound when the user does not
	// exist; both backends agree on this behavior.
	SaveUserSettings(ctx context.Context, userID, category string, settings map[string]any) error

	// GetUserSettings loads the settings stored under the given category.
	// Returns an empty map when the category has never been written.
	GetUserSettings(ctx context.Context, userID, category string) (map[string]any, error)

	// SaveUserLogColors stores the console color mapping under
	// settings.preferences.ui.log_colors.
	SaveUserLogColors(ctx context.Context, userID string, colors map[string]string) error

	// GetUserLogColors loads the console color mapping. It reads the
	// nested layout and tolerates the legacy flat settings.log_colors
	// layout for backward compatibility.
	GetUserLogColors(ctx context.Context, userID string) (map[string]string, error)

	// GetAllProjects returns every project record.
	GetAllProjects(ctx context.Context) ([]*domain.Project, error)

	// GetProject retrieves a project by ID.
	// Returns domain.ErrProjectNotFound when absent.
	GetProject(ctx context.Context, id string) (*domain.Project, error)

	// SaveProject upserts a project by ID, generating an ID when absent.
	SaveProject(ctx context.Context, project *domain.Project) error

	// DeleteProject removes a project by ID.
	// Returns true when a record was removed.
	DeleteProject(ctx context.Context, id string) (bool, error)

	// CreateIdentityUser registers a new account with the external
	// identity provider and returns its user ID. Only the cloud backend
	// supports this; the file backend keeps credentials locally and
	// returns an error.
	CreateIdentityUser(ctx context.Context, email, password, displayName string) (string, error)

	// SetAdminClaim mirrors the admin flag into the identity provider's
	// custom claims. The file backend has no identity provider and treats
	// this as a no-op.
	SetAdminClaim(ctx context.Context, userID string, isAdmin bool) error

	// SupportsPasswordLogin reports whether login verifies the password
	// hash locally. The cloud backend assumes authentication already
	// happened at the identity provider.
	SupportsPasswordLogin() bool

	// Ping checks backend availability.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
