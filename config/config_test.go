package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "blog:", cfg.Redis.KeyPrefix)
	assert.Equal(t, "posts", cfg.Mongo.Collection)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
	assert.Empty(t, cfg.Server.TrustedProxies)
}

func TestLoadFile_TrustedProxies(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "server:\n  trusted_proxies: [\"10.0.0.0/8\", \"192.168.1.5\"]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.5"}, cfg.Server.TrustedProxies)
}

func TestLoadFile_EnvOverride(t *testing.T) {
	t.Setenv("BLOG_DATABASE_DRIVER", "redis")
	t.Setenv("BLOG_REDIS_ADDR", "cache:6380")

	cfg, err := LoadFile(writeConfig(t, "database:\n  driver: sqlite\n"))
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Database.Driver)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
}

func TestLoadFile_RepoConfig(t *testing.T) {
	cfg, err := LoadFile("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Mongo.ConnectTimeout)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"bad driver", "database:\n  driver: oracle\n"},
		{"bad port", "server:\n  port: 70000\n"},
		{"empty dsn", "database:\n  driver: postgres\n  dsn: \"\"\n"},
		{"bad rate", "ratelimit:\n  requests_per_minute: 0\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFrom_ExplicitPath(t *testing.T) {
	cfg, err := LoadFrom(writeConfig(t, "server:\n  port: 7070\ndatabase:\n  driver: redis\n"))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Database.Driver)

	_, err = LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
