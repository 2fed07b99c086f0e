// Package main is the entry point for the Planwerk server.
// Planwerk is a project planning tool with a fixed three-level structure
// of phases, tasks and subtasks, persisted either in local JSON files or
// in Google Cloud Firestore.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/planwerk/planwerk/internal/config"
	"github.com/planwerk/planwerk/internal/domain"
	"github.com/planwerk/planwerk/internal/handler"
	"github.com/planwerk/planwerk/internal/metrics"
	"github.com/planwerk/planwerk/internal/service"
	"github.com/planwerk/planwerk/internal/session"
	"github.com/planwerk/planwerk/internal/store"
	"github.com/planwerk/planwerk/internal/store/firestore"
	"github.com/planwerk/planwerk/internal/store/jsonstore"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const modeCacheFile = ".mode_cache"

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file")
		cloudMode   = flag.Bool("cloud", false, "use the cloud backend")
		offlineMode = flag.Bool("offline", false, "use the local JSON-file backend")
		forceSelect = flag.Bool("force-select", false, "ignore the cached mode and ask again")
	)
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	logger := newLogger(cfg.Logging)
	log.Logger = logger

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting planwerk server")

	cfg.Store.Backend = resolveBackend(cfg.Store.Backend, *cloudMode, *offlineMode, *forceSelect, logger)
	logger.Info().Str("backend", cfg.Store.Backend).Msg("storage backend selected")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	appSettings, err := config.LoadAppSettings("settings.json")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load application settings")
	}

	sessionStore, err := openSessionStore(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open session store")
	}
	defer sessionStore.Close()
	sessions := session.NewManager(sessionStore, cfg.Session.CookieName, cfg.Session.TTL, cfg.Session.Secure)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		m.RegisterActiveSessions(func() float64 {
			n, err := sessionStore.Count(context.Background())
			if err != nil {
				logger.Warn().Err(err).Msg("failed to count sessions for metrics")
				return 0
			}
			return float64(n)
		})
	}

	userService := service.NewUserService(st, logger)
	projectService := service.NewProjectService(st, logger)
	settingsService := service.NewSettingsService(st, appSettings, logger)

	if cfg.Store.IsOffline() {
		seed(ctx, cfg.Seed, st, logger)
	}

	router := handler.NewRouter(handler.RouterConfig{
		AuthHandler:    handler.NewAuthHandler(userService, sessions, logger),
		ProjectHandler: handler.NewProjectHandler(projectService, logger),
		AdminHandler:   handler.NewAdminHandler(userService, settingsService, sessions, logger),
		Sessions:       sessions,
		Store:          st,
		Metrics:        m,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	var metricsSrv *http.Server
	if m != nil {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, m.Handler())
		metricsSrv = &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			logger.Info().Str("addr", metricsSrv.Addr).Msg("metrics server listening")
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown failed")
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("metrics server shutdown failed")
		}
	}

	logger.Info().Msg("shutdown complete")
}

func newLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = cfg.TimeFormat

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// resolveBackend picks the storage backend from, in order of precedence:
// command line flags, the cached previous choice, an interactive prompt,
// and finally the configured default.
func resolveBackend(configured string, cloud, offline, forceSelect bool, logger zerolog.Logger) string {
	if cloud && offline {
		logger.Fatal().Msg("--cloud and --offline are mutually exclusive")
	}
	if cloud {
		cacheMode("cloud", logger)
		return "cloud"
	}
	if offline {
		cacheMode("offline", logger)
		return "offline"
	}

	if !forceSelect {
		if data, err := os.ReadFile(modeCacheFile); err == nil {
			mode := strings.TrimSpace(string(data))
			if mode == "cloud" || mode == "offline" {
				logger.Info().Str("mode", mode).Msg("using cached storage mode")
				return mode
			}
		}
	}

	if mode, ok := promptMode(); ok {
		cacheMode(mode, logger)
		return mode
	}

	return configured
}

// promptMode asks for the storage mode on stdin. Returns false when stdin
// is not a terminal conversation (e.g. the process runs under a
// supervisor), in which case the configured default applies.
func promptMode() (string, bool) {
	fmt.Println("Select storage mode:")
	fmt.Println("  1) offline (local JSON files)")
	fmt.Println("  2) cloud   (Google Cloud Firestore)")
	fmt.Print("Choice [1/2]: ")

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return "", false
	}
	switch strings.TrimSpace(scanner.Text()) {
	case "1", "offline":
		return "offline", true
	case "2", "cloud":
		return "cloud", true
	}
	return "", false
}

func cacheMode(mode string, logger zerolog.Logger) {
	if err := os.WriteFile(modeCacheFile, []byte(mode+"\n"), 0o644); err != nil {
		logger.Warn().Err(err).Msg("failed to cache storage mode")
	}
}

func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (store.Store, error) {
	switch cfg.Store.Backend {
	case "cloud":
		return firestore.New(ctx, cfg.Store.ProjectID, cfg.Store.CredentialsPath, logger)
	default:
		return jsonstore.New(cfg.Store.UsersPath, cfg.Store.ProjectsPath, logger)
	}
}

func openSessionStore(cfg *config.Config) (session.Store, error) {
	if cfg.Session.Store == "redis" {
		return session.NewRedisStore(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.DialTimeout)
	}
	return session.NewMemoryStore(), nil
}

// seed provisions fixture data on an offline start: the test users when
// test mode is on, and the sample project when the project store is
// still empty.
func seed(ctx context.Context, cfg config.SeedConfig, st store.Store, logger zerolog.Logger) {
	if cfg.TestMode {
		seedTestUsers(ctx, st, logger)
	}
	if cfg.SampleProject {
		projects, err := st.GetAllProjects(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to check project store for seeding")
			return
		}
		if len(projects) == 0 {
			sample := domain.SampleProject()
			if err := st.SaveProject(ctx, sample); err != nil {
				logger.Warn().Err(err).Msg("failed to seed sample project")
				return
			}
			logger.Info().Str("project_id", sample.ID).Msg("seeded sample project")
		}
	}
}

func seedTestUsers(ctx context.Context, st store.Store, logger zerolog.Logger) {
	userService := service.NewUserService(st, logger)

	fixtures := []struct {
		username string
		email    string
		admin    bool
	}{
		{"testadmin", "testadmin@test.at", true},
		{"testuser", "testuser@test.at", false},
	}

	for _, f := range fixtures {
		if _, err := st.FindUserByEmail(ctx, f.email); err == nil {
			continue
		}
		user, err := userService.Register(ctx, service.RegisterInput{
			Username:        f.username,
			Email:           f.email,
			Password:        "test1234",
			PasswordConfirm: "test1234",
		})
		if err != nil {
			logger.Warn().Err(err).Str("email", f.email).Msg("failed to seed test user")
			continue
		}
		if f.admin && !user.IsAdmin {
			if _, err := userService.PromoteByEmail(ctx, f.email); err != nil {
				logger.Warn().Err(err).Str("email", f.email).Msg("failed to promote test admin")
			}
		}
		logger.Info().Str("email", f.email).Bool("admin", f.admin).Msg("seeded test user")
	}
}
