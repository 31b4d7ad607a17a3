package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var ErrEmptyEnvironmentVariable = errors.New("empty environment variable")

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Gateway  GatewayConfig
	Redis    RedisConfig
	Email    EmailConfig
	Server   ServerConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Username string
	Password string
	Name     string
}

// GatewayConfig holds payment gateway configuration.
// DemoMode swaps in the simulated gateway at bootstrap; nothing below the
// bootstrap layer ever reads this flag.
type GatewayConfig struct {
	DemoMode       bool
	TimeoutSeconds int
}

// RedisConfig holds Redis connection settings for the checkout lock
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// EmailConfig holds transactional email settings. Confirmation email is
// disabled when the API key is empty.
type EmailConfig struct {
	ResendAPIKey  string
	DefaultSender string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int
	AllowedOrigins []string
}

// Load reads and validates all required environment variables
func Load() (*Config, error) {
	// Load env.local in non-production environments
	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load("env.local"); err != nil {
			return nil, fmt.Errorf("failed to load env.local: %w", err)
		}
	}

	cfg := &Config{}

	// Database configuration
	var err error
	if cfg.Database.Host, err = requireEnv("DB_HOST"); err != nil {
		return nil, err
	}
	if cfg.Database.Username, err = requireEnv("DB_USERNAME"); err != nil {
		return nil, err
	}
	if cfg.Database.Password, err = requireEnv("DB_PASSWORD"); err != nil {
		return nil, err
	}
	if cfg.Database.Name, err = requireEnv("DB_NAME"); err != nil {
		return nil, err
	}

	// Gateway configuration
	cfg.Gateway.DemoMode, err = strconv.ParseBool(getEnvWithDefault("CHECKOUT_DEMO_MODE", "false"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse CHECKOUT_DEMO_MODE: %w", err)
	}
	cfg.Gateway.TimeoutSeconds, err = strconv.Atoi(getEnvWithDefault("GATEWAY_TIMEOUT_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse GATEWAY_TIMEOUT_SECONDS: %w", err)
	}

	// Redis configuration
	cfg.Redis.Enabled, err = strconv.ParseBool(getEnvWithDefault("REDIS_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse REDIS_ENABLED: %w", err)
	}
	if cfg.Redis.Enabled {
		if cfg.Redis.Host, err = requireEnv("REDIS_HOST"); err != nil {
			return nil, err
		}
		cfg.Redis.Port, err = strconv.Atoi(getEnvWithDefault("REDIS_PORT", "6379"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse REDIS_PORT: %w", err)
		}
		cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
		cfg.Redis.DB, err = strconv.Atoi(getEnvWithDefault("REDIS_DB", "0"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse REDIS_DB: %w", err)
		}
	}

	// Email configuration
	cfg.Email.ResendAPIKey = os.Getenv("RESEND_API_KEY")
	if cfg.Email.ResendAPIKey != "" {
		if cfg.Email.DefaultSender, err = requireEnv("DEFAULT_EMAIL_SENDER_ADDRESS"); err != nil {
			return nil, err
		}
	}

	// Server configuration
	serverPort, err := requireEnv("SERVER_PORT")
	if err != nil {
		return nil, err
	}
	cfg.Server.Port, err = strconv.Atoi(serverPort)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SERVER_PORT: %w", err)
	}
	cfg.Server.AllowedOrigins = []string{getEnvWithDefault("WEBAPP_URI", "http://localhost:3000")}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s",
		c.Username, c.Password, c.Host, c.Name)
}

// requireEnv retrieves an environment variable or returns an error if empty
func requireEnv(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s is not set: %w", key, ErrEmptyEnvironmentVariable)
	}
	return value, nil
}

// getEnvWithDefault retrieves an environment variable or returns a default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
