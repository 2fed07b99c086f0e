package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/planwerk/planwerk/internal/metrics"
	"github.com/planwerk/planwerk/internal/session"
	"github.com/planwerk/planwerk/internal/store"
)

// RouterConfig contains the dependencies of the HTTP router.
type RouterConfig struct {
	AuthHandler    *AuthHandler
	ProjectHandler *ProjectHandler
	AdminHandler   *AdminHandler
	Sessions       *session.Manager
	Store          store.Store
	Metrics        *metrics.Metrics
	Logger         zerolog.Logger
}

// NewRouter assembles the full route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(cfg.Logger.With().Str("component", "http").Logger(), cfg.Metrics))
	r.Use(SessionMiddleware(cfg.Sessions))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/projects/dashboard", http.StatusFound)
	})
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := cfg.Store.Ping(req.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "store unavailable")
			return
		}
		writeSuccess(w, "healthy", nil)
	})

	cfg.AuthHandler.RegisterRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(RequireLogin)
		cfg.ProjectHandler.RegisterRoutes(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin)
		cfg.AdminHandler.RegisterRoutes(r)
	})

	return r
}
