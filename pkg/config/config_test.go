package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/threatloom/pkg/logging"
	"github.com/dd0wney/threatloom/pkg/remote"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"THREATLOOM_MODE", "THREATLOOM_LISTEN", "THREATLOOM_REMOTE_URL",
		"THREATLOOM_REMOTE_APP_PATH", "THREATLOOM_SESSION_KEY",
		"THREATLOOM_UPDATE_INTERVAL", "THREATLOOM_SEED",
		"LOG_LEVEL", "PORT", "CORS_ALLOWED_ORIGINS", "TRUSTED_PROXIES",
	} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "threatloom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ModeSimulated, cfg.Mode)
	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, logging.InfoLevel, cfg.LogLevel)
	assert.Equal(t, DefaultUpdateInterval, cfg.UpdateInterval)
	assert.Equal(t, remote.DefaultAppPath, cfg.Remote.AppPath)
	assert.False(t, cfg.IsRemote())
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
mode: remote
listen: "127.0.0.1:9090"
log_level: debug
seed: 42
update_interval: 30s
remote:
  base_url: https://splunk.example.com:8089
  session_key: abc123
  poll_interval: 500ms
  max_polls: 10
http:
  rate_limit: 0
  cors_allowed_origins: ["https://soc.example.com"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsRemote())
	assert.Equal(t, "127.0.0.1:9090", cfg.Listen)
	assert.Equal(t, logging.DebugLevel, cfg.LogLevel)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 30*time.Second, cfg.UpdateInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.Remote.PollInterval)
	assert.Equal(t, []string{"https://soc.example.com"}, cfg.HTTP.CORSAllowedOrigins)
	assert.Zero(t, cfg.HTTP.RateLimit)
	// untouched keys keep their defaults
	assert.Equal(t, DefaultShutdownTimeout, cfg.HTTP.ShutdownTimeout)

	rc := cfg.RemoteClientConfig()
	assert.Equal(t, "https://splunk.example.com:8089", rc.BaseURL)
	assert.Equal(t, "abc123", rc.SessionKey)
	assert.Equal(t, 10, rc.MaxPolls)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "mode: simulated\nlisten: \":8080\"\n")

	t.Setenv("THREATLOOM_MODE", "remote")
	t.Setenv("THREATLOOM_REMOTE_URL", "http://localhost:8089")
	t.Setenv("PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("THREATLOOM_SEED", "7")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,,127.0.0.1")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsRemote())
	assert.Equal(t, ":3000", cfg.Listen)
	assert.Equal(t, logging.WarnLevel, cfg.LogLevel)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.HTTP.CORSAllowedOrigins)
	assert.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, cfg.HTTP.TrustedProxies)
}

func TestListenEnvWinsOverPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3000")
	t.Setenv("THREATLOOM_LISTEN", "0.0.0.0:4000")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:4000", cfg.Listen)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{"remote without url", "mode: remote\n", nil},
		{"remote with bad url", "mode: remote\nremote:\n  base_url: ftp://x\n", nil},
		{"unknown mode", "mode: replay\n", nil},
		{"unknown key", "modee: simulated\n", nil},
		{"bad listen", "listen: nowhere\n", nil},
		{"bad log level", "log_level: verbose\n", nil},
		{"interval too short", "update_interval: 10ms\n", nil},
		{"negative polls", "remote:\n  max_polls: -1\n", nil},
		{"zero read timeout", "http:\n  read_timeout: 0s\n", nil},
		{"origin with path", "http:\n  cors_allowed_origins: [\"https://soc.example.com/app\"]\n", nil},
		{"bad proxy", "http:\n  trusted_proxies: [\"proxy.internal\"]\n", nil},
		{"bad env proxy", "", map[string]string{"TRUSTED_PROXIES": "10.0.0.0/33"}},
		{"bad env level", "", map[string]string{"LOG_LEVEL": "loud"}},
		{"bad env seed", "", map[string]string{"THREATLOOM_SEED": "-3"}},
		{"bad env interval", "", map[string]string{"THREATLOOM_UPDATE_INTERVAL": "often"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseIgnoresEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("THREATLOOM_MODE", "remote")

	cfg, err := Parse([]byte("listen: \":8081\"\n"))
	require.NoError(t, err)
	assert.Equal(t, ModeSimulated, cfg.Mode)
	assert.Equal(t, ":8081", cfg.Listen)

	cfg, err = Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultListen, cfg.Listen)
}

func TestModeIsCaseInsensitive(t *testing.T) {
	cfg, err := Parse([]byte("mode: Remote\nremote:\n  base_url: https://backend:8089\n"))
	require.NoError(t, err)
	assert.True(t, cfg.IsRemote())
}

func TestNewSourceByMode(t *testing.T) {
	cfg := Default()
	cfg.Seed = 7

	src, err := cfg.NewSource(logging.NewNopLogger(), nil)
	require.NoError(t, err)
	assert.Equal(t, "simulated", src.Name())

	cfg.Mode = ModeRemote
	cfg.Remote.BaseURL = "https://backend:8089"
	src, err = cfg.NewSource(logging.NewNopLogger(), nil)
	require.NoError(t, err)
	assert.Equal(t, "remote", src.Name())
	assert.IsType(t, &remote.Source{}, src)

	cfg.Remote.BaseURL = "backend:8089"
	_, err = cfg.NewSource(logging.NewNopLogger(), nil)
	assert.Error(t, err)
}
