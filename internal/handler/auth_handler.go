package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/planwerk/planwerk/internal/domain"
	"github.com/planwerk/planwerk/internal/service"
	"github.com/planwerk/planwerk/internal/session"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	userService *service.UserService
	sessions    *session.Manager
	logger      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(userService *service.UserService, sessions *session.Manager, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		sessions:    sessions,
		logger:      logger.With().Str("handler", "auth").Logger(),
	}
}

// RegisterRoutes registers the auth routes.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
	r.Get("/auth/logout", h.handleLogout)
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.Register(r.Context(), service.RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, "registration successful", envelope{"user": user.Sanitized()})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	sess := &session.Session{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	}
	// Admins carry their log filter choices in the session so the log
	// console renders without an extra settings round trip.
	if user.IsAdmin {
		sess.LogFilters = user.SettingsCategory(domain.CategoryLogFilters)
		if len(sess.LogFilters) == 0 {
			sess.LogFilters = domain.DefaultLogFilters()
		}
	}

	if err := h.sessions.Start(r.Context(), w, sess); err != nil {
		h.logger.Error().Err(err).Msg("failed to start session")
		writeError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	writeSuccess(w, "login successful", envelope{"user": user.Sanitized()})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(r.Context(), w, r); err != nil {
		h.logger.Warn().Err(err).Msg("failed to end session")
	}
	writeSuccess(w, "logged out", nil)
}
