package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Addr())
	assert.Equal(t, "offline", cfg.Store.Backend)
	assert.True(t, cfg.Store.IsOffline())
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, "planwerk_session", cfg.Session.CookieName)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9091, cfg.Metrics.Port)
	assert.False(t, cfg.Seed.TestMode)
	assert.True(t, cfg.Seed.SampleProject)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 8080
store:
  backend: cloud
  project_id: planwerk-test
session:
  store: redis
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "cloud", cfg.Store.Backend)
	assert.False(t, cfg.Store.IsOffline())
	assert.Equal(t, "planwerk-test", cfg.Store.ProjectID)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "bad backend",
			mutate:  func(c *Config) { c.Store.Backend = "tape" },
			wantErr: "store.backend",
		},
		{
			name: "offline without users path",
			mutate: func(c *Config) {
				c.Store.Backend = "offline"
				c.Store.UsersPath = ""
			},
			wantErr: "store.users_path",
		},
		{
			name:    "bad session store",
			mutate:  func(c *Config) { c.Session.Store = "cookie" },
			wantErr: "session.store",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
