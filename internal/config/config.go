package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the configuration settings for the resolver service.
//
// Fields:
// - Env: The current environment (e.g., local, dev, prod).
// - Port: The port for the resolver monitoring server.
// - APIKey: The what3words API key (required).
// - Language: Two-character language code for returned labels.
// - RateLimit: Maximum API requests per second across all workers.
// - Workers: The number of concurrent workers for processing sites.
// - Interval: The duration between polling intervals.
// - Database: Configuration settings for the PostgreSQL database.
type Config struct {
	Env       string         `yaml:"env"`                 // Env is the current environment: local, dev, prod.
	Port      int            `yaml:"resolver.port"`       // Port is the resolver monitoring server port.
	APIKey    string         `yaml:"resolver.api_key"`    // The what3words API key.
	Language  string         `yaml:"resolver.lang"`       // Language code for returned three-word labels.
	RateLimit int            `yaml:"resolver.rate_limit"` // API requests per second.
	Workers   int            `yaml:"resolver.workers"`    // The number of concurrent workers.
	Interval  time.Duration  `yaml:"resolver.interval"`   // The duration between polling intervals.
	Database  PostgresConfig `yaml:"postgres"`            // Database holds the postgres database configuration
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`                        // Host is the database server address.
	Port     string `yaml:"port"     env-default:"5432"` // Port is the database server port.
	User     string `yaml:"user"`                        // User is the database user.
	Password string `yaml:"password"`                    // Password is the database user's password.
	Name     string `yaml:"db_name"`                     // Name is the name of the database.
}

// MustLoad loads the configuration from the environment and returns a Config struct.
func MustLoad() *Config {
	_ = godotenv.Load()

	interval, err := time.ParseDuration(setDefaultEnv("THREEWORDS_INTERVAL", "10m"))
	if err != nil {
		panic("failed to parse interval from configuration")
	}

	healthPort, err := strconv.Atoi(setDefaultEnv("THREEWORDS_HEALTH_PORT", "8080"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	workers, err := strconv.Atoi(setDefaultEnv("THREEWORDS_WORKERS", "4"))
	if err != nil {
		panic("failed to parse workers from configuration, must be an integer type")
	}

	rateLimit, err := strconv.Atoi(setDefaultEnv("THREEWORDS_RATE_LIMIT", "5"))
	if err != nil {
		panic("failed to parse rate limit from configuration, must be an integer type")
	}

	return &Config{
		Env:       setDefaultEnv("THREEWORDS_ENV", "production"),
		Port:      healthPort,
		APIKey:    os.Getenv("THREEWORDS_API_KEY"),
		Language:  setDefaultEnv("THREEWORDS_LANG", "en"),
		RateLimit: rateLimit,
		Workers:   workers,
		Interval:  interval,
		Database: PostgresConfig{
			Host:     os.Getenv("DB_HOST"),
			Port:     os.Getenv("DB_PORT"),
			User:     os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
		},
	}
}

func setDefaultEnv(key, override string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = override
	}

	return value
}
