package configs

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	SMTP       SMTPConfig
	Settlement SettlementConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port    string `envconfig:"PORT" default:"8080"`
	OpsPort string `envconfig:"OPS_PORT" default:"8081"`
	Env     string `envconfig:"GO_ENV" default:"development"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string `envconfig:"DATABASE_URL" required:"true"`
}

// SMTPConfig holds outgoing mail configuration. An empty host disables mail.
type SMTPConfig struct {
	Host       string `envconfig:"SMTP_HOST" default:""`
	Port       string `envconfig:"SMTP_PORT" default:"587"`
	Username   string `envconfig:"SMTP_USERNAME" default:""`
	Password   string `envconfig:"SMTP_PASSWORD" default:""`
	From       string `envconfig:"SMTP_FROM" default:"support@mirrorcaps.com"`
	AdminEmail string `envconfig:"ADMIN_EMAIL" default:""`
}

// SettlementConfig holds settlement tuning knobs
type SettlementConfig struct {
	StalePendingAfter time.Duration `envconfig:"STALE_PENDING_AFTER" default:"72h"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
