package config

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", s.Addr)
	assert.Equal(t, "INFO", s.LogLevel)
	assert.Equal(t, "dev", s.AuthMode)
	assert.Equal(t, 50.0, s.RateRPS)
}

func TestLoadYAML(t *testing.T) {
	cfg := `addr: ":9090"
log_level: "DEBUG"
database_url: "postgres://localhost/tripdash"
auth_mode: "hmac"
jwt_secret: "s3cr3t"
rate_rps: 10
rate_burst: 20
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", s.Addr)
	assert.Equal(t, "DEBUG", s.LogLevel)
	assert.Equal(t, "postgres://localhost/tripdash", s.DatabaseURL)
	assert.Equal(t, "hmac", s.AuthMode)
	assert.Equal(t, 10.0, s.RateRPS)
	assert.Equal(t, 20, s.RateBurst)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ADDR", ":7070")
	t.Setenv("LOG_LEVEL", "ERROR")
	t.Setenv("RATE_RPS", "5")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", s.Addr)
	assert.Equal(t, log.ErrorLevel, s.GetLogLevel())
	assert.Equal(t, 5.0, s.RateRPS)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestGetLogLevelFallback(t *testing.T) {
	s := Settings{LogLevel: "bogus"}
	assert.Equal(t, log.InfoLevel, s.GetLogLevel())
}
