package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "SESSION_STORE", "SESSION_TTL", "CATALOG_DEDUP_BY_MODEL", "NATS_URL", "OTEL_ENABLED"} {
		t.Setenv(key, "")
		// t.Setenv restores the previous value after the test
		os.Unsetenv(key)
	}

	cfg := Load()
	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.False(t, cfg.Data.DedupByModel)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "1", cfg.Data.RootQuestionID)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("SESSION_TTL", "90s")
	t.Setenv("SESSION_CLEANUP_INTERVAL", "120")
	t.Setenv("CATALOG_DEDUP_BY_MODEL", "true")
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("GO_ENV", "production")

	cfg := Load()
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, 90*time.Second, cfg.Session.TTL)
	assert.Equal(t, 2*time.Minute, cfg.Session.Cleanup)
	assert.True(t, cfg.Data.DedupByModel)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.True(t, cfg.IsProduction())
}

func TestGetEnvAsDuration_Invalid(t *testing.T) {
	t.Setenv("SOME_DURATION", "soon")
	assert.Equal(t, time.Minute, getEnvAsDuration("SOME_DURATION", time.Minute))
}
