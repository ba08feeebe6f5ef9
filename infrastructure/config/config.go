package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Data stores
	PostgresDSN string

	// Authentication
	LDAPDSN   string
	JWTSecret string
	Realm     string

	// Viewer canvas extent handed to the embedded client
	CanvasHeight int

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("GD_ADDR", ":8000"),
		Environment:   getEnv("GD_ENV", "development"),

		PostgresDSN: getEnv("GD_PGSQL_DSN", ""),

		LDAPDSN:   getEnv("GD_LDAP_DSN", ""),
		JWTSecret: getEnv("GD_JWT_SECRET", ""),
		Realm:     getEnv("GD_REALM", "gd"),

		CanvasHeight: getEnvInt("GD_CANVAS_HEIGHT", 600),

		LogLevel:      getEnv("GD_LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("GD_ENABLE_METRICS", true),
		EnableCORS:    getEnvBool("GD_ENABLE_CORS", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("GD_PGSQL_DSN is required")
	}
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("GD_JWT_SECRET is required in production")
		}
		if c.LDAPDSN == "" {
			return fmt.Errorf("GD_LDAP_DSN is required in production")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
