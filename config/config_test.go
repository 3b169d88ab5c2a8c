package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, EnvDevelopment, cfg.App.Env)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTTL)
	assert.NotEmpty(t, cfg.CORS.AllowedOrigins)
}

func TestLoadFileYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  port: "9000"
  env: production
auth:
  jwt_secret: from-file
  access_ttl: 5m
cors:
  allowed_origins: ["https://jobs.example.com"]
scheduler:
  interval: 10m
`), 0o600))

	t.Setenv("PORT", "9100")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("TRUST_PROXY", "true")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.App.Port)
	assert.Equal(t, EnvProduction, cfg.App.Env)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 5*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 10*time.Minute, cfg.Scheduler.Interval)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.RateLimit.TrustProxy)
}

func TestLoadFileRejectsBadEnv(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_TTL", "soon")
	_, err := LoadFile("")
	assert.ErrorContains(t, err, "ACCESS_TOKEN_TTL")
}

func TestLoadFileRejectsBadBool(t *testing.T) {
	t.Setenv("TRUST_PROXY", "maybe")
	_, err := LoadFile("")
	assert.ErrorContains(t, err, "TRUST_PROXY")
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Equal(t, defaultDevJWTSecret, cfg.Auth.JWTSecret)
	assert.NotEmpty(t, warnings)

	prod := defaults()
	prod.App.Env = EnvProduction
	_, err = prod.Validate()
	assert.ErrorContains(t, err, "JWT_SECRET")

	bad := defaults()
	bad.Auth.JWTSecret = "x"
	bad.Auth.RefreshTTL = time.Minute
	_, err = bad.Validate()
	assert.ErrorContains(t, err, "refresh token TTL")
}
