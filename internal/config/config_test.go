package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "SYNC_BASE_URL", "RECONNECT_BASE_DELAY_MS", "RECONNECT_MAX_ATTEMPTS", "HISTORY_BACKEND", "OTEL_ENABLED"} {
		t.Setenv(key, "")
	}
	// t.Setenv with "" still counts as set; the int parser falls back on empty values.
	t.Setenv("APP_PORT", "3000")
	t.Setenv("HISTORY_BACKEND", "memory")

	cfg := Load()
	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "", cfg.Sync.BaseURL)
	assert.Equal(t, time.Second, cfg.Sync.ReconnectBaseDelay)
	assert.Equal(t, 5, cfg.Sync.ReconnectAttempts)
	assert.Equal(t, HistoryBackendMemory, cfg.History.Backend)
	assert.False(t, cfg.App.OtelEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SYNC_BASE_URL", "https://sync.example.com")
	t.Setenv("RECONNECT_BASE_DELAY_MS", "250")
	t.Setenv("RECONNECT_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("HISTORY_BACKEND", "Redis")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("GO_ENV", "production")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_SERVICE_NAME", "chatpulse-eu")

	cfg := Load()
	assert.Equal(t, "https://sync.example.com", cfg.Sync.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.ReconnectBaseDelay)
	assert.Equal(t, 5, cfg.Sync.ReconnectAttempts)
	assert.Equal(t, HistoryBackendRedis, cfg.History.Backend)
	assert.True(t, cfg.App.OtelEnabled)
	assert.Equal(t, "collector:4318", cfg.App.OtelEndpoint)
	assert.Equal(t, "chatpulse-eu", cfg.App.OtelServiceName)
	assert.True(t, cfg.IsProduction())
}

func TestSyncClientConfig(t *testing.T) {
	c := SyncConfig{BaseURL: "http://localhost:8787", ReconnectBaseDelay: time.Second, ReconnectAttempts: 5, MessageLogLimit: 20}
	rc := c.ClientConfig()
	assert.Equal(t, "http://localhost:8787", rc.BaseURL)
	assert.Equal(t, 20, rc.MessageLogLimit)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}, rc.Policy.Schedule())
}
