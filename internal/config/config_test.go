package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PENDING_BACKEND", "")
	t.Setenv("QR_SIZE", "")

	cfg := Load()

	assert.Equal(t, PendingBackendMemory, cfg.PendingBackend)
	assert.Equal(t, 250, cfg.QRSize)
	assert.Equal(t, "guild_settings", cfg.DynamoTables.GuildSettings)
	assert.Equal(t, 10*time.Second, cfg.GatewayTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PENDING_BACKEND", "DYNAMO")
	t.Setenv("GATEWAY_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "30")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg := Load()

	assert.Equal(t, PendingBackendDynamo, cfg.PendingBackend)
	assert.Equal(t, 3*time.Second, cfg.GatewayTimeout)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("QR_SIZE", "big")
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 250, cfg.QRSize)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}
