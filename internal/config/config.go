package config

import (
	"os"
	"strconv"
	"strings"

	"chantier/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig `validate:"required"`
	Import   ImportConfig `validate:"required"`
	LogLevel string       `validate:"omitempty,oneof=error warn info debug trace ERROR WARN INFO DEBUG TRACE"`
}

// DatabaseConfig holds database connection settings. An empty URL selects
// the in-memory task store.
type DatabaseConfig struct {
	URL string `validate:"omitempty,url"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `validate:"required,numeric"`
	GinMode string `validate:"oneof=debug release test"`
}

// ImportConfig holds upload and decoding settings
type ImportConfig struct {
	MaxUploadMB       int      `validate:"min=1,max=512"`
	Sheet             string
	AllowedExtensions []string `validate:"min=1,dive,startswith=."`
}

// MaxUploadBytes returns the upload cap in bytes
func (c ImportConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// UsesDatabase reports whether a postgres store is configured
func (c *Config) UsesDatabase() bool {
	return c.Database.URL != ""
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{URL: strings.TrimSpace(os.Getenv("DATABASE_URL"))},
		Server:   *loadServerConfig(),
		Import:   *loadImportConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadImportConfig() *ImportConfig {
	return &ImportConfig{
		MaxUploadMB:       getEnvIntOrDefault("IMPORT_MAX_UPLOAD_MB", 10),
		Sheet:             getEnvOrDefault("IMPORT_SHEET", ""),
		AllowedExtensions: getEnvListOrDefault("IMPORT_ALLOWED_EXTENSIONS", []string{".xlsx", ".xls", ".csv"}),
	}
}

func validateConfig(config *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(config); err != nil {
		return errors.ConfigInvalid("invalid configuration", err)
	}
	return nil
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

// getEnvListOrDefault splits a comma separated value, lower-casing each entry
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			items = append(items, item)
		}
	}
	return items
}
