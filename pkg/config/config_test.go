package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew_ReadsEnvironment(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("OVERDUE_THRESHOLD_HOURS", "24")
	t.Setenv("STATS_CACHE_TTL", "90s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.local, http://b.local")
	t.Setenv("DB_AUTO_MIGRATE", "false")

	cfg := New()

	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, time.UTC, cfg.Workflow.Location)
	assert.Equal(t, 24, cfg.Workflow.OverdueThresholdHours)
	assert.Equal(t, 90*time.Second, cfg.Redis.StatsTTL)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.Postgres.AutoMigrate)
}

func TestNew_Defaults(t *testing.T) {
	t.Setenv("OVERDUE_THRESHOLD_HOURS", "not-a-number")

	cfg := New()

	assert.Equal(t, 48, cfg.Workflow.OverdueThresholdHours)
	assert.Equal(t, "8080", cfg.Server.Port)
}
