package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	CORS     CORSConfig
	Log      LogConfig
	Report   ReportConfig
	Auth     AuthConfig
	Jobs     JobsConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Pretty bool
}

// ReportConfig holds defaults for the report engine.
type ReportConfig struct {
	// DateCap bounds the number of unique historical dates selectable
	// across all products in one report.
	DateCap int
	// Debounce is the quiet period absorbed before a selection
	// recomputation runs.
	Debounce time.Duration
}

// AuthConfig holds API authentication configuration.
// APIKey is a base64 fernet key; when empty the API-key middleware is disabled.
type AuthConfig struct {
	APIKey string
}

// JobsConfig holds background job configuration.
type JobsConfig struct {
	// CatalogueRefreshSpec is a cron expression for the product catalogue
	// prefetch. Empty disables the job.
	CatalogueRefreshSpec string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/review_engine.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnv("LOG_PRETTY", "false") == "true",
		},
		Report: ReportConfig{
			DateCap:  getEnvInt("REPORT_DATE_CAP", 8),
			Debounce: time.Duration(getEnvInt("REPORT_DEBOUNCE_MS", 300)) * time.Millisecond,
		},
		Auth: AuthConfig{
			APIKey: getEnv("INTERNAL_API_KEY", ""),
		},
		Jobs: JobsConfig{
			CatalogueRefreshSpec: getEnv("CATALOGUE_REFRESH_CRON", "@hourly"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	if config.Report.DateCap < 1 {
		return nil, fmt.Errorf("REPORT_DATE_CAP must be at least 1, got %d", config.Report.DateCap)
	}

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value.
// Non-numeric values fall back to the default.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
