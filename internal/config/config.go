package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	// HTTP settings
	ListenAddr string

	// Storage settings
	DBPath string

	// IMAP settings
	IMAPTimeout time.Duration
	FetchLimit  int

	// Admin authentication
	AdminUsername string
	AdminPassword string

	LogLevel string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":8000"),
		DBPath:        getEnv("DB_PATH", "./inboxd.db"),
		IMAPTimeout:   time.Duration(getEnvInt("IMAP_TIMEOUT", 30)) * time.Second,
		FetchLimit:    getEnvInt("FETCH_LIMIT", 5),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("LISTEN_ADDR is required")
	}

	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}

	if c.IMAPTimeout <= 0 {
		return fmt.Errorf("IMAP_TIMEOUT must be a positive number of seconds")
	}

	if c.FetchLimit < 1 {
		return fmt.Errorf("FETCH_LIMIT must be at least 1")
	}

	if c.AdminUsername == "" || c.AdminPassword == "" {
		return fmt.Errorf("ADMIN_USERNAME and ADMIN_PASSWORD are required")
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
