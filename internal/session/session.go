// Package session provides server-side cookie sessions for Planwerk.
// Session state lives behind a Store interface with an in-memory
// implementation for single-node deployments and a Redis implementation
// for deployments that need sessions to survive restarts.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"time"
)

// ErrNotFound indicates the session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// Session is the per-login state carried between requests.
type Session struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`

	// LogFilters is the admin's log filter mapping, loaded at login so
	// pages can consult it without a store round trip.
	LogFilters map[string]any `json:"log_filters,omitempty"`
}

// Store persists sessions keyed by their opaque ID.
type Store interface {
	// Get retrieves a session by ID. Returns ErrNotFound when absent or
	// expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Put stores a session under the given ID with a TTL.
	Put(ctx context.Context, id string, sess *Session, ttl time.Duration) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Count returns the number of live sessions. Expired sessions do not
	// count even when they have not been cleaned up yet.
	Count(ctx context.Context) (int, error)

	// Close releases store resources.
	Close() error
}

// Manager issues and resolves session cookies against a Store.
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
	secure     bool
}

// NewManager creates a session manager.
func NewManager(store Store, cookieName string, ttl time.Duration, secure bool) *Manager {
	return &Manager{
		store:      store,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

// Start stores a fresh session and sets the cookie on the response.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	id, err := newSessionID()
	if err != nil {
		return err
	}
	if err := m.store.Put(ctx, id, sess, m.ttl); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Resolve returns the session attached to the request, or ErrNotFound.
func (m *Manager) Resolve(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil, ErrNotFound
	}
	return m.store.Get(r.Context(), cookie.Value)
}

// Update rewrites the stored session for the request's cookie.
func (m *Manager) Update(r *http.Request, sess *Session) error {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return ErrNotFound
	}
	return m.store.Put(r.Context(), cookie.Value, sess, m.ttl)
}

// End deletes the session and expires the cookie.
func (m *Manager) End(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return nil
	}
	if err := m.store.Delete(ctx, cookie.Value); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func newSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
