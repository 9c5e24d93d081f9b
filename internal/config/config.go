package config

import (
	"os"
	"strconv"
	"time"

	"datalens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	AI       AIConfig
	Search   SearchConfig
	Sheets   SheetsConfig
	Server   ServerConfig
	Storage  StorageConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// AIConfig holds LLM related settings
type AIConfig struct {
	GroqKey     string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// SearchConfig holds web search settings
type SearchConfig struct {
	SerpAPIKey  string
	BaseURL     string
	ResultCount int
	Timeout     time.Duration
}

// SheetsConfig holds Google Sheets access settings
type SheetsConfig struct {
	CredentialsFile string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// StorageConfig holds upload storage settings
type StorageConfig struct {
	UploadDir   string
	MaxFileSize int64
}

// Load reads configuration from environment variables and validates it.
// GROQ_API_KEY is mandatory; SERPAPI_KEY and GOOGLE_CREDENTIALS_FILE only
// gate their respective features, so their absence is not a startup error.
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		AI: AIConfig{
			GroqKey:     os.Getenv("GROQ_API_KEY"),
			Model:       getEnvOrDefault("GROQ_MODEL", "llama3-8b-8192"),
			BaseURL:     getEnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			MaxTokens:   getEnvIntOrDefault("MAX_TOKENS", 1024),
			Temperature: getEnvFloatOrDefault("TEMPERATURE", 0.7),
			Timeout:     getEnvDurationOrDefault("GROQ_TIMEOUT", 60*time.Second),
		},
		Search: SearchConfig{
			SerpAPIKey:  os.Getenv("SERPAPI_KEY"),
			BaseURL:     getEnvOrDefault("SERPAPI_BASE_URL", "https://serpapi.com"),
			ResultCount: getEnvIntOrDefault("SEARCH_RESULT_COUNT", 3),
			Timeout:     getEnvDurationOrDefault("SEARCH_TIMEOUT", 15*time.Second),
		},
		Sheets: SheetsConfig{
			CredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Storage: StorageConfig{
			UploadDir:   getEnvOrDefault("UPLOAD_DIR", "uploads/datasets"),
			MaxFileSize: getEnvInt64OrDefault("MAX_UPLOAD_BYTES", 50*1024*1024),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.AI.GroqKey == "" {
		return errors.ConfigInvalid("GROQ_API_KEY is required")
	}
	if config.AI.MaxTokens <= 0 {
		return errors.ConfigInvalid("MAX_TOKENS must be positive")
	}
	if config.Search.ResultCount <= 0 {
		return errors.ConfigInvalid("SEARCH_RESULT_COUNT must be positive")
	}
	return nil
}

// SearchEnabled reports whether web search is configured
func (c *Config) SearchEnabled() bool {
	return c.Search.SerpAPIKey != ""
}

// SheetsEnabled reports whether Google Sheets loading is configured
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsFile != ""
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
