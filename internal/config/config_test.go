package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.APIBaseURL)
	assert.Equal(t, time.Duration(0), cfg.APITimeout)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ".", cfg.ExportDir)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdle)
	assert.False(t, cfg.DatabaseEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"EVENTDASH_API_BASE_URL": "https://events.internal",
		"EVENTDASH_API_TIMEOUT":  "5s",
		"DB_HOST":                "db",
		"DB_PORT":                "6543",
		"TELEGRAM_BOT_TOKEN":     "token",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://events.internal", cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout)
	assert.True(t, cfg.DatabaseEnabled())
	assert.Equal(t, 6543, cfg.DBPort)
	assert.Equal(t, "token", cfg.TelegramBotToken)
}

func TestValidateRequiresBaseURL(t *testing.T) {
	assert.ErrorIs(t, Config{}.Validate(), ErrMissingBaseURL)
}

func TestValidateBotRequiresToken(t *testing.T) {
	cfg := Config{APIBaseURL: "http://localhost:8000"}
	assert.ErrorIs(t, cfg.ValidateBot(), ErrMissingBotToken)

	cfg.TelegramBotToken = "token"
	assert.NoError(t, cfg.ValidateBot())
}
