package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		// Setenv restores the original value when the test ends.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	unsetEnv(t,
		"DB_NAME", "PORT", "SLACK_BOT_TOKEN", "SLACK_CHANNEL_ID", "SLACK_SIGNING_SECRET",
		"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN", "GCP_PROJECT", "ALLOWED_ORIGINS",
		"ENABLE_GAME_RECORDING", "SEED_SAMPLE_DATA",
	)

	cfg := FromEnv()
	assert.Equal(t, ":memory:", cfg.DBName)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.ProjectID)
	assert.Empty(t, cfg.Turso.PrimaryURL)
	assert.False(t, cfg.Features.GameRecording)
	assert.True(t, cfg.Features.SeedSampleData)
}

func TestFromEnv_EmptyFlagKeepsDefault(t *testing.T) {
	t.Setenv("SEED_SAMPLE_DATA", "")
	assert.True(t, FromEnv().Features.SeedSampleData)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DB_NAME", "club.db")
	t.Setenv("PORT", "9000")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("SLACK_CHANNEL_ID", "C123")
	t.Setenv("SLACK_SIGNING_SECRET", "secret")
	t.Setenv("TURSO_PRIMARY_URL", "libsql://club.turso.io")
	t.Setenv("TURSO_AUTH_TOKEN", "token")
	t.Setenv("GCP_PROJECT", "mafia-club")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173, https://club.example.com ,")
	t.Setenv("ENABLE_GAME_RECORDING", "true")
	t.Setenv("SEED_SAMPLE_DATA", "0")

	cfg := FromEnv()
	assert.Equal(t, "club.db", cfg.DBName)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, SlackConfig{Token: "xoxb-test", ChannelID: "C123", SigningSecret: "secret"}, cfg.Slack)
	assert.Equal(t, TursoConfig{PrimaryURL: "libsql://club.turso.io", AuthToken: "token"}, cfg.Turso)
	assert.Equal(t, "mafia-club", cfg.ProjectID)
	assert.Equal(t, []string{"http://localhost:5173", "https://club.example.com"}, cfg.AllowedOrigins)
	assert.True(t, cfg.Features.GameRecording)
	assert.False(t, cfg.Features.SeedSampleData)
}
