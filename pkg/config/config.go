package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Bounded optimistic retry for journal number allocation.
	SequenceMaxRetries   int
	SequenceRetryBackoff time.Duration

	// Directory where uploaded attachment files are stored.
	AttachmentDir string

	// Login rate limit in ulule/limiter format, e.g. "10-M" for 10 per minute.
	LoginRateLimit string

	PosthogAPIKey string
	PosthogHost   string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "shiwake-backend")
	viper.SetDefault("SEQUENCE_MAX_RETRIES", 3)
	viper.SetDefault("SEQUENCE_RETRY_BACKOFF", "50ms")
	viper.SetDefault("ATTACHMENT_DIR", "./attachments")
	viper.SetDefault("LOGIN_RATE_LIMIT", "10-M")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_HOST", "https://app.posthog.com")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration)
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.SequenceMaxRetries = viper.GetInt("SEQUENCE_MAX_RETRIES")
	if cfg.SequenceMaxRetries < 1 {
		cfg.SequenceMaxRetries = 3
		log.Printf("Warning: SEQUENCE_MAX_RETRIES must be at least 1. Defaulting to %d.\n", cfg.SequenceMaxRetries)
	}

	backoffStr := viper.GetString("SEQUENCE_RETRY_BACKOFF")
	backoff, err := time.ParseDuration(backoffStr)
	if err != nil || backoff <= 0 {
		backoff = 50 * time.Millisecond
		log.Printf("Warning: Invalid value for SEQUENCE_RETRY_BACKOFF ('%s'). Defaulting to %s.\n", backoffStr, backoff)
	}
	cfg.SequenceRetryBackoff = backoff

	cfg.AttachmentDir = viper.GetString("ATTACHMENT_DIR")
	cfg.LoginRateLimit = viper.GetString("LOGIN_RATE_LIMIT")
	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogHost = viper.GetString("POSTHOG_HOST")

	return cfg, nil
}
