package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Config holds the application configuration.
type Config struct {
	// Server settings
	ServerPort string `validate:"required,numeric"`

	// OpenTelemetry settings
	OTLPEndpoint string `validate:"required"`
	ServiceName  string `validate:"required"`
	Environment  string `validate:"required"`

	// Storage settings
	StorageBackend string `validate:"oneof=file badger memory"`
	DataDir        string `validate:"required_unless=StorageBackend memory"`
	StorageKey     string `validate:"required"`

	// TimeZone names the location whose calendar days decide overdue tasks.
	TimeZone string
}

// Load returns configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		ServiceName:    getEnv("OTEL_SERVICE_NAME", "task-management-utility"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		StorageBackend: getEnv("STORAGE_BACKEND", BackendFile),
		DataDir:        getEnv("DATA_DIR", "./data"),
		StorageKey:     getEnv("STORAGE_KEY", "taskManager.tasks"),
		TimeZone:       getEnv("TZ_NAME", "UTC"),
	}
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves TimeZone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
