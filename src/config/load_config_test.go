package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"DC_BOT_TOKEN", "DC_GATEWAY_ADDRESS", "DC_GATEWAY_VERSION", "DC_RECONNECT_DELAY",
	"DC_RESUME", "DC_HEARTBEAT_ACK_CHECK", "DC_PRESENCE_STATUS", "API_ADDRESS",
	"API_KEY", "APP_ENV", "LOG_LEVEL",
}

// clearEnv blanks every key for the test. env treats an empty value as
// unset and applies the default.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfiguration()
	require.NoError(t, err)

	assert.Empty(t, cfg.DiscordBotToken)
	assert.Equal(t, "wss://gateway.discord.gg", cfg.DiscordGatewayAddress)
	assert.Equal(t, uint(10), cfg.DiscordGatewayVersion)
	assert.Equal(t, 5*time.Second, cfg.ReconnectDelay)
	assert.True(t, cfg.Resume)
	assert.True(t, cfg.HeartbeatAckCheck)
	assert.Equal(t, "online", cfg.PresenceStatus)
	assert.Equal(t, "127.0.0.1:8080", cfg.APIAddress)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoadConfigurationFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DC_BOT_TOKEN", "token")
	t.Setenv("DC_GATEWAY_VERSION", "9")
	t.Setenv("DC_RECONNECT_DELAY", "250ms")
	t.Setenv("DC_RESUME", "false")
	t.Setenv("DC_PRESENCE_STATUS", "dnd")
	t.Setenv("API_KEY", "k")
	t.Setenv("APP_ENV", "Production")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := LoadConfiguration()
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.DiscordBotToken)
	assert.Equal(t, uint(9), cfg.DiscordGatewayVersion)
	assert.Equal(t, 250*time.Millisecond, cfg.ReconnectDelay)
	assert.False(t, cfg.Resume)
	assert.Equal(t, "dnd", cfg.PresenceStatus)
	assert.Equal(t, "k", cfg.APIKey)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoadConfigurationRejectsBadValues(t *testing.T) {
	for key, value := range map[string]string{
		"DC_GATEWAY_VERSION": "zero",
		"DC_RECONNECT_DELAY": "-1s",
		"DC_PRESENCE_STATUS": "busy",
		"LOG_LEVEL":          "loud",
		"DC_RESUME":          "maybe",
	} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := LoadConfiguration()
			assert.Error(t, err)
		})
	}
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, l)

	l, err = ParseLevel("info+2")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo+2, l)
}
