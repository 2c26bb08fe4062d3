// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrKlingAccessKeyRequired is returned when KLING_ACCESS_KEY is not set.
	ErrKlingAccessKeyRequired = errors.New("config: KLING_ACCESS_KEY is required")
	// ErrKlingSecretKeyRequired is returned when KLING_SECRET_KEY is not set.
	ErrKlingSecretKeyRequired = errors.New("config: KLING_SECRET_KEY is required")
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=8080" json:"port"`

	// Kling video generation settings
	KlingAccessKey string `env:"KLING_ACCESS_KEY, required" json:"-"` // Masked in JSON
	KlingSecretKey string `env:"KLING_SECRET_KEY, required" json:"-"` // Masked in JSON
	KlingAPIBase   string `env:"KLING_API_BASE, default=https://api.klingai.com" json:"kling_api_base"`

	// TTS settings
	ElevenLabsAPIKey string `env:"ELEVENLABS_API_KEY" json:"-"` // Masked in JSON
	OpenAIAPIKey     string `env:"OPENAI_API_KEY" json:"-"`     // Masked in JSON

	// LLM fallback settings. Groq serves an OpenAI-compatible API.
	GroqAPIKey string `env:"GROQ_API_KEY" json:"-"` // Masked in JSON

	// Storage settings
	WorkDir string `env:"WORK_DIR, default=/tmp/narravid" json:"work_dir"`

	// Remote task polling settings
	PollIntervalSec int `env:"POLL_INTERVAL_SEC, default=5" json:"poll_interval_sec"`
	PollMaxAttempts int `env:"POLL_MAX_ATTEMPTS, default=120" json:"poll_max_attempts"`

	// Optional S3 settings for publishing finished videos
	S3Bucket           string `env:"S3_BUCKET" json:"s3_bucket,omitempty"`
	S3Region           string `env:"S3_REGION" json:"s3_region,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// S3Enabled returns true if S3 configuration is provided.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// ElevenLabsEnabled returns true if an ElevenLabs API key is configured.
func (c *Config) ElevenLabsEnabled() bool {
	return c.ElevenLabsAPIKey != ""
}

// OpenAIEnabled returns true if an OpenAI API key is configured.
func (c *Config) OpenAIEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// GroqEnabled returns true if a Groq API key is configured.
func (c *Config) GroqEnabled() bool {
	return c.GroqAPIKey != ""
}

// Load reads configuration from environment variables using go-envconfig.
// It returns an error if required variables are not set.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		// Map envconfig errors to our domain errors for required fields
		if strings.Contains(err.Error(), "KLING_ACCESS_KEY") {
			return nil, ErrKlingAccessKeyRequired
		}
		if strings.Contains(err.Error(), "KLING_SECRET_KEY") {
			return nil, ErrKlingSecretKeyRequired
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present.
func (c *Config) Validate() error {
	if c.KlingAccessKey == "" {
		return ErrKlingAccessKeyRequired
	}
	if c.KlingSecretKey == "" {
		return ErrKlingSecretKeyRequired
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// String returns a string representation of the config with sensitive values masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Port: %d, KlingAPIBase: %s, WorkDir: %s, PollIntervalSec: %d, PollMaxAttempts: %d, S3Bucket: %s, S3Region: %s, LogFormat: %s, LogLevel: %s}",
		c.Port,
		c.KlingAPIBase,
		c.WorkDir,
		c.PollIntervalSec,
		c.PollMaxAttempts,
		c.S3Bucket,
		c.S3Region,
		c.LogFormat,
		c.LogLevel,
	)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
