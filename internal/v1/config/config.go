package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds validated environment configuration
type Config struct {
	// Required variables
	AuthSecret string
	Port       string

	// Optional variables with defaults
	GoEnv         string
	LogLevel      string
	DBPath        string
	ForfeitWindow time.Duration

	DevelopmentMode bool
	AllowedOrigins  string

	// OtelCollectorAddr enables tracing when non-empty.
	OtelCollectorAddr string

	// Rate Limits
	RateLimitApiGlobal string
	RateLimitApiPublic string
	RateLimitWsIp      string
	RateLimitWsUser    string
}

// ValidateEnv validates all required environment variables and returns a Config object
// Returns an error if any required variable is missing or invalid
func ValidateEnv() (*Config, error) {
	cfg := &Config{}
	var errors []string

	// Required: AUTH_SECRET (minimum 32 characters)
	cfg.AuthSecret = os.Getenv("AUTH_SECRET")
	if cfg.AuthSecret == "" {
		errors = append(errors, "AUTH_SECRET is required")
	} else if len(cfg.AuthSecret) < 32 {
		errors = append(errors, fmt.Sprintf("AUTH_SECRET must be at least 32 characters (got %d)", len(cfg.AuthSecret)))
	}

	// Required: PORT (valid port number)
	cfg.Port = os.Getenv("PORT")
	if cfg.Port == "" {
		errors = append(errors, "PORT is required")
	} else {
		port, err := strconv.Atoi(cfg.Port)
		if err != nil || port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be a valid port number between 1 and 65535 (got '%s')", cfg.Port))
		}
	}

	// Optional: DB_PATH (defaults to chesshub.db in the working directory)
	cfg.DBPath = getEnvOrDefault("DB_PATH", "chesshub.db")

	// Optional: FORFEIT_WINDOW_SECONDS (defaults to 60)
	forfeitSeconds := getEnvOrDefault("FORFEIT_WINDOW_SECONDS", "60")
	seconds, err := strconv.Atoi(forfeitSeconds)
	if err != nil || seconds < 1 {
		errors = append(errors, fmt.Sprintf("FORFEIT_WINDOW_SECONDS must be a positive integer (got '%s')", forfeitSeconds))
	} else {
		cfg.ForfeitWindow = time.Duration(seconds) * time.Second
	}

	// Optional: GO_ENV (defaults to "production")
	cfg.GoEnv = os.Getenv("GO_ENV")
	if cfg.GoEnv == "" {
		cfg.GoEnv = "production"
	}

	// Optional: LOG_LEVEL (defaults to "info")
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.DevelopmentMode = os.Getenv("DEVELOPMENT_MODE") == "true"
	cfg.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")

	// Optional: OTEL_COLLECTOR_ADDR (tracing disabled when unset)
	cfg.OtelCollectorAddr = os.Getenv("OTEL_COLLECTOR_ADDR")

	// Rate Limits (Defaults: M = Minute, H = Hour)
	cfg.RateLimitApiGlobal = getEnvOrDefault("RATE_LIMIT_API_GLOBAL", "1000-M")
	cfg.RateLimitApiPublic = getEnvOrDefault("RATE_LIMIT_API_PUBLIC", "100-M")
	cfg.RateLimitWsIp = getEnvOrDefault("RATE_LIMIT_WS_IP", "100-M")
	cfg.RateLimitWsUser = getEnvOrDefault("RATE_LIMIT_WS_USER", "60-M")

	// If there are validation errors, return them
	if len(errors) > 0 {
		return nil, fmt.Errorf("environment validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	// Log validated configuration (with secrets redacted)
	logValidatedConfig(cfg)

	return cfg, nil
}

// logValidatedConfig logs the validated configuration with secrets redacted
func logValidatedConfig(cfg *Config) {
	slog.Info("✅ Environment configuration validated successfully")
	slog.Info("Configuration",
		"auth_secret", redactSecret(cfg.AuthSecret),
		"port", cfg.Port,
		"db_path", cfg.DBPath,
		"forfeit_window", cfg.ForfeitWindow.String(),
		"go_env", cfg.GoEnv,
		"log_level", cfg.LogLevel,
		"development_mode", cfg.DevelopmentMode,
		"rate_limit_api_global", cfg.RateLimitApiGlobal,
	)
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// redactSecret redacts a secret by showing only the first 8 characters
func redactSecret(secret string) string {
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:8] + "***"
}
