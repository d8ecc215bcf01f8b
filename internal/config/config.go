package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/benvon/daily-journal/internal/models"
	"github.com/benvon/daily-journal/internal/validation"
	"github.com/joho/godotenv"
)

const (
	// DefaultAIModel is the model used when AI_MODEL is unset
	DefaultAIModel = "gpt-4o"
	// DefaultTemperature is the sampling temperature used when AI_TEMPERATURE is unset
	DefaultTemperature = 0.7
	// DefaultTimezone is the zone used to bucket files into days when TIMEZONE is unset
	DefaultTimezone = "America/New_York"
)

// FolderConfig holds the remote folder identifiers for each source and the archive
type FolderConfig struct {
	Notebook  string
	Voice     string
	Notes     string
	Processed string
}

// For returns the folder bound to a source category ("" when unconfigured)
func (f FolderConfig) For(c models.SourceCategory) string {
	switch c {
	case models.SourceNotebook:
		return f.Notebook
	case models.SourceVoice:
		return f.Voice
	case models.SourceNotes:
		return f.Notes
	default:
		return ""
	}
}

// Config holds application configuration. It is built once at startup and not modified afterwards.
type Config struct {
	OpenAIKey             string
	AIModel               string
	AIBaseURL             string
	AITemperature         float64 `validate:"gte=0,lte=2"`
	AIRequestsPerMinute   int     `validate:"gte=0"`
	GoogleCredentialsFile string  `validate:"required"`
	SpreadsheetID         string  `validate:"required"`
	Folders               FolderConfig
	Timezone              string `validate:"timezone"`
	PromptsFile           string
	DatabaseURL           string
	RedisURL              string
	RabbitMQURL           string
	RabbitMQPrefetch      int `validate:"gte=1"`
	HealthPort            string
	DebugMode             bool
	OTELEnabled           bool
	OTELEndpoint          string

	location *time.Location
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		OpenAIKey:             getEnv("OPENAI_API_KEY", ""),
		AIModel:               getEnv("AI_MODEL", DefaultAIModel),
		AIBaseURL:             getEnv("AI_BASE_URL", ""),
		AITemperature:         getEnvFloat("AI_TEMPERATURE", DefaultTemperature),
		AIRequestsPerMinute:   getEnvInt("AI_REQUESTS_PER_MINUTE", 60),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		SpreadsheetID:         getEnv("GOOGLE_SPREADSHEET_ID", ""),
		Folders: FolderConfig{
			Notebook:  getEnv("DRIVE_FOLDER_NOTEBOOK", ""),
			Voice:     getEnv("DRIVE_FOLDER_VOICE", ""),
			Notes:     getEnv("DRIVE_FOLDER_NOTES", ""),
			Processed: getEnv("DRIVE_FOLDER_PROCESSED", ""),
		},
		Timezone:         getEnv("TIMEZONE", DefaultTimezone),
		PromptsFile:      getEnv("PROMPTS_FILE", ""),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch: getEnvInt("RABBITMQ_PREFETCH", 1),
		HealthPort:       getEnv("HEALTH_PORT", "8081"),
		DebugMode:        getEnvBool("DEBUG", false),
		OTELEnabled:      getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("GOOGLE_SPREADSHEET_ID is required")
	}

	if err := validation.Validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %s", validation.FormatErrors(err))
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.location = loc

	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process environment.
// Variables already set take precedence. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Location returns the time zone used to decide which day a file belongs to
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// RequireAI reports an error when the language model cannot be reached with this configuration
func (c *Config) RequireAI() error {
	if c.OpenAIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	return nil
}

// RequireQueue reports an error when no job queue is configured
func (c *Config) RequireQueue() error {
	if c.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL is required for job queueing")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
