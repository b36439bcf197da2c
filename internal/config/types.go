package config

// Config holds all configuration for the application.
type Config struct {
	DBName         string
	Port           string
	Slack          SlackConfig
	Turso          TursoConfig
	ProjectID      string
	AllowedOrigins []string
	Features       FeatureConfig
}

type SlackConfig struct {
	Token         string
	ChannelID     string
	SigningSecret string
}

type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}

// FeatureConfig toggles optional behaviour.
type FeatureConfig struct {
	// GameRecording makes the add-game form append games. When off, a
	// submitted form is logged and discarded.
	GameRecording bool
	// SeedSampleData loads the sample roster into an empty store at startup.
	SeedSampleData bool
}
