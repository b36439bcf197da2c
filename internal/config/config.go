package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}
	return FromEnv()
}

// FromEnv builds the configuration from the process environment, falling
// back to defaults for unset variables.
func FromEnv() Config {
	getEnv := func(key, fallback string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		return fallback
	}
	getBool := func(key string, fallback bool) bool {
		value, ok := os.LookupEnv(key)
		if !ok || value == "" {
			return fallback
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			log.Fatalf("Error: environment variable %s must be a boolean, got %q.", key, value)
		}
		return b
	}

	cfg := Config{
		DBName: getEnv("DB_NAME", ":memory:"),
		Port:   getEnv("PORT", "8080"),
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN", ""),
			ChannelID:     getEnv("SLACK_CHANNEL_ID", ""),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
		},
		Turso: TursoConfig{
			PrimaryURL: getEnv("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnv("TURSO_AUTH_TOKEN", ""),
		},
		ProjectID:      getEnv("GCP_PROJECT", ""),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		Features: FeatureConfig{
			GameRecording:  getBool("ENABLE_GAME_RECORDING", false),
			SeedSampleData: getBool("SEED_SAMPLE_DATA", true),
		},
	}
	return cfg
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
