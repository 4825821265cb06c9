package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	LLM       LLMConfig
	Vision    VisionConfig
	Telemetry TelemetryConfig
	History   HistoryConfig
}

// LLMConfig holds text-completion configuration for the analysis agents.
type LLMConfig struct {
	Model        string
	SummaryModel string
	APIKey       string
	BaseURL      string
	Temperature  float32
	Timeout      time.Duration
}

// VisionConfig holds vision-extraction configuration.
type VisionConfig struct {
	PreferredModel string
	FallbackModels []string
	MaxRetries     int
	BackoffBase    time.Duration
	Timeout        time.Duration
}

// TelemetryConfig holds credentials for the tracing backend.
type TelemetryConfig struct {
	PublicKey string
	SecretKey string
	Host      string
}

// HistoryConfig holds the embedded run-history store settings.
type HistoryConfig struct {
	Path    string
	Enabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:        getEnv("OPENAI_MODEL", "gpt-4"),
			SummaryModel: getEnv("OPENAI_SUMMARY_MODEL", "gpt-4"),
			APIKey:       getEnv("OPENAI_API_KEY", ""),
			BaseURL:      getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature:  getEnvAsFloat32("OPENAI_TEMPERATURE", 0.1),
			Timeout:      getEnvAsDuration("OPENAI_TIMEOUT", 60*time.Second),
		},
		Vision: VisionConfig{
			PreferredModel: getEnv("VISION_MODEL", "gpt-4o"),
			FallbackModels: getEnvAsSlice("VISION_FALLBACK_MODELS", []string{"gpt-4o-mini", "gpt-4-turbo"}),
			MaxRetries:     getEnvAsInt("VISION_MAX_RETRIES", 3),
			BackoffBase:    getEnvAsDuration("VISION_BACKOFF_BASE", time.Second),
			Timeout:        getEnvAsDuration("VISION_TIMEOUT", 90*time.Second),
		},
		Telemetry: TelemetryConfig{
			PublicKey: getEnv("TELEMETRY_PUBLIC_KEY", ""),
			SecretKey: getEnv("TELEMETRY_SECRET_KEY", ""),
			Host:      getEnv("TELEMETRY_HOST", ""),
		},
		History: HistoryConfig{
			Path:    getEnv("HISTORY_DB_PATH", "./contract-analyzer.db"),
			Enabled: getEnvAsBool("HISTORY_ENABLED", true),
		},
	}
}

// Validate checks that startup-required configuration is present.
// Missing inference credentials are fatal before any pipeline work begins.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.LLM.Model == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_MODEL is required", ErrInvalidInput)
	}
	if c.Vision.MaxRetries <= 0 {
		return NewAppError("CONFIG_ERROR", "VISION_MAX_RETRIES must be positive", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
