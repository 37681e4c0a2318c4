package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Notify  NotifyConfig
	Cron    CronConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Host string
}

// MongoDBConfig holds MongoDB connection details
type MongoDBConfig struct {
	URI        string
	Username   string
	Password   string
	Host       string
	Port       string
	Database   string
	AuthSource string // Database to authenticate against (default: admin)
}

// NotifyConfig holds the outbound notification settings. An empty WebhookURL
// is a valid state: unattended paths record it in the audit log instead of
// failing.
type NotifyConfig struct {
	WebhookURL     string
	TableURL       string
	TimeZone       string
	LockTimeoutMs  int
	RetryAttempts  int
	RetryBackoffMs int
	PacingMs       int
}

// CronConfig holds the cron specs (with seconds) for the scheduled jobs.
// An empty spec disables the job.
type CronConfig struct {
	ReminderSpec string
	ArchiveSpec  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8085"),
			Host: getEnv("HOST", "0.0.0.0"),
		},
		MongoDB: MongoDBConfig{
			URI:        getEnv("MONGODB_URI", ""),
			Username:   getEnv("MONGODB_USERNAME", ""),
			Password:   getEnv("MONGODB_PASSWORD", ""),
			Host:       getEnv("MONGODB_HOST", "localhost"),
			Port:       getEnv("MONGODB_PORT", "27017"),
			Database:   getEnv("MONGODB_DATABASE", "taskboard"),
			AuthSource: getEnv("MONGODB_AUTH_SOURCE", "admin"),
		},
		Notify: NotifyConfig{
			WebhookURL:     getEnv("WEBHOOK_URL", ""),
			TableURL:       getEnv("TABLE_URL", ""),
			TimeZone:       getEnv("TABLE_TIMEZONE", "Asia/Tokyo"),
			LockTimeoutMs:  getEnvInt("LOCK_TIMEOUT_MS", 10000),
			RetryAttempts:  getEnvInt("RETRY_ATTEMPTS", 3),
			RetryBackoffMs: getEnvInt("RETRY_BACKOFF_MS", 500),
			PacingMs:       getEnvInt("DISPATCH_PACING_MS", 500),
		},
		Cron: CronConfig{
			ReminderSpec: getEnv("REMINDER_CRON", "0 0 9 * * *"),
			ArchiveSpec:  getEnv("ARCHIVE_CRON", "0 0 0 * * 1"),
		},
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ValidateConfig validates that required configuration values are present
func ValidateConfig(config *Config) error {
	if config.MongoDB.URI == "" && config.MongoDB.Host == "" {
		return fmt.Errorf("MONGODB_URI or MONGODB_HOST is required")
	}
	if config.Notify.LockTimeoutMs <= 0 {
		return fmt.Errorf("LOCK_TIMEOUT_MS must be positive")
	}
	if config.Notify.RetryAttempts <= 0 {
		return fmt.Errorf("RETRY_ATTEMPTS must be positive")
	}
	// WEBHOOK_URL is intentionally not required: its absence is a handled
	// state recorded in the audit log.
	return nil
}

// Location resolves the table's time zone. If the configured zone cannot be
// loaded, the fallback is Asia/Tokyo (fixed JST offset when tzdata is
// unavailable); the fallback is logged, never silent.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Notify.TimeZone)
	if err == nil {
		return loc
	}
	log.Printf("WARNING: unknown time zone %q, falling back to Asia/Tokyo: %v", c.Notify.TimeZone, err)
	loc, err = time.LoadLocation("Asia/Tokyo")
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

// LockTimeout returns the table lock wait limit as a duration
func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.Notify.LockTimeoutMs) * time.Millisecond
}

// Helper functions for environment variable access
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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
