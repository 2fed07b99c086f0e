package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/planwerk/planwerk/internal/domain"
	"github.com/planwerk/planwerk/internal/service"
	"github.com/planwerk/planwerk/internal/session"
)

// AdminHandler serves the administration endpoints.
type AdminHandler struct {
	userService     *service.UserService
	settingsService *service.SettingsService
	sessions        *session.Manager
	logger          zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(userService *service.UserService, settingsService *service.SettingsService, sessions *session.Manager, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		userService:     userService,
		settingsService: settingsService,
		sessions:        sessions,
		logger:          logger.With().Str("handler", "admin").Logger(),
	}
}

// RegisterRoutes registers the admin routes. All routes require an admin
// session.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/admin/", h.handleUserList)
	r.Post("/admin/api/update-setting", h.handleUpdateSetting)
	r.Post("/admin/api/save-user-settings", h.handleSaveUserSettings)
	r.Get("/admin/api/get-user-settings", h.handleGetUserSettings)
	r.Post("/admin/api/update-user-log-settings", h.handleUpdateLogSettings)
	r.Post("/admin/set-admin-status", h.handleSetAdminStatus)
	r.Post("/admin/api/promote-user", h.handlePromoteUser)
}

func (h *AdminHandler) handleUserList(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	sanitized := make([]*domain.User, 0, len(users))
	for _, u := range users {
		sanitized = append(sanitized, u.Sanitized())
	}

	writeSuccess(w, "", envelope{
		"users":    sanitized,
		"settings": h.settingsService.AppSettings(),
	})
}

type updateSettingRequest struct {
	Setting string `json:"setting"`
	Value   any    `json:"value"`
}

func (h *AdminHandler) handleUpdateSetting(w http.ResponseWriter, r *http.Request) {
	var req updateSettingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.settingsService.UpdateAppSetting(req.Setting, req.Value); err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, "setting updated", envelope{"settings": h.settingsService.AppSettings()})
}

type saveUserSettingsRequest struct {
	Category string         `json:"category"`
	Settings map[string]any `json:"settings"`
}

func (h *AdminHandler) handleSaveUserSettings(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	var req saveUserSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.settingsService.SaveUserSettings(r.Context(), sess.UserID, req.Category, req.Settings); err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, "settings saved", nil)
}

func (h *AdminHandler) handleGetUserSettings(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())
	category := r.URL.Query().Get("category")

	settings, err := h.settingsService.GetUserSettings(r.Context(), sess.UserID, category)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, "", envelope{"category": category, "settings": settings})
}

type updateLogSettingsRequest struct {
	Filters map[string]any `json:"filters"`
}

func (h *AdminHandler) handleUpdateLogSettings(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	var req updateLogSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	filters, err := h.settingsService.UpdateLogFilters(r.Context(), sess.UserID, req.Filters)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Keep the session copy in sync so the log console reflects the new
	// filters immediately.
	sess.LogFilters = filters
	if err := h.sessions.Update(r, sess); err != nil {
		h.logger.Warn().Err(err).Str("user_id", sess.UserID).Msg("failed to refresh session log filters")
	}

	writeSuccess(w, "log settings updated", envelope{"filters": filters})
}

type setAdminStatusRequest struct {
	UserID  string `json:"user_id"`
	IsAdmin bool   `json:"is_admin"`
}

func (h *AdminHandler) handleSetAdminStatus(w http.ResponseWriter, r *http.Request) {
	sess := SessionFromContext(r.Context())

	var req setAdminStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	user, err := h.userService.SetAdminStatus(r.Context(), sess.UserID, req.UserID, req.IsAdmin)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, "admin status updated", envelope{"user": user.Sanitized()})
}

type promoteUserRequest struct {
	Email string `json:"email"`
}

func (h *AdminHandler) handlePromoteUser(w http.ResponseWriter, r *http.Request) {
	var req promoteUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	user, err := h.userService.PromoteByEmail(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeSuccess(w, "user promoted", envelope{"user": user.Sanitized()})
}
