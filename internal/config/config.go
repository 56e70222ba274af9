package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// ChatLogBackend selects which turn-log implementation backs the service.
type ChatLogBackend string

const (
	ChatLogBackendPostgres ChatLogBackend = "postgres"
	ChatLogBackendRemote   ChatLogBackend = "remote"
)

// Global singleton so init-time callers can reach the loaded configuration.
var globalConfig *Config

// Config holds all environment backed configuration for the chat session service.
type Config struct {
	// HTTP Server
	HTTPPort    int `env:"HTTP_PORT" envDefault:"8080"`
	MetricsPort int `env:"METRICS_PORT" envDefault:"9091"`

	// Turn log backend
	ChatLogBackend ChatLogBackend `env:"CHAT_LOG_BACKEND" envDefault:"postgres"`

	// PostgreSQL
	DatabaseURL          string `env:"DATABASE_URL"`
	DBPostgresqlWriteDSN string `env:"DB_POSTGRESQL_WRITE_DSN"`
	DBPostgresqlRead1DSN string `env:"DB_POSTGRESQL_READ1_DSN"`

	// Remote chat log (PostgREST-style endpoint, e.g. a Supabase project)
	ChatLogURL     string        `env:"CHAT_LOG_URL"`
	ChatLogAPIKey  string        `env:"CHAT_LOG_API_KEY"`
	ChatLogTimeout time.Duration `env:"CHAT_LOG_TIMEOUT" envDefault:"10s"`

	// Session lifecycle
	SessionIdleTimeout  time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`
	SessionSweepMinutes int           `env:"SESSION_SWEEP_MINUTES" envDefault:"5"`

	// Observability / Logging
	HTTPTimeout      time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	OTLPEndpoint     string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPHeaders      string        `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	ServiceName      string        `env:"SERVICE_NAME" envDefault:"astra-chats"`
	ServiceNamespace string        `env:"SERVICE_NAMESPACE" envDefault:"astra"`
	Environment      string        `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string        `env:"LOG_FORMAT" envDefault:"console"`

	// Features
	AutoMigrate bool `env:"AUTO_MIGRATE" envDefault:"true"`
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.ChatLogBackend = ChatLogBackend(strings.ToLower(strings.TrimSpace(string(cfg.ChatLogBackend))))
	switch cfg.ChatLogBackend {
	case ChatLogBackendPostgres:
		if cfg.DatabaseURL == "" && cfg.DBPostgresqlWriteDSN == "" {
			return nil, fmt.Errorf("DATABASE_URL or DB_POSTGRESQL_WRITE_DSN must be set for the postgres backend")
		}
	case ChatLogBackendRemote:
		if cfg.ChatLogURL == "" {
			return nil, fmt.Errorf("CHAT_LOG_URL must be set for the remote backend")
		}
	default:
		return nil, fmt.Errorf("unknown CHAT_LOG_BACKEND %q", cfg.ChatLogBackend)
	}

	if cfg.SessionIdleTimeout <= 0 {
		return nil, fmt.Errorf("SESSION_IDLE_TIMEOUT must be positive")
	}

	globalConfig = cfg
	return cfg, nil
}

// GetGlobal returns the last configuration loaded by Load, or nil.
func GetGlobal() *Config {
	return globalConfig
}

// WriteDSN returns the DSN used for writes, preferring the explicit write DSN.
func (c *Config) WriteDSN() string {
	if c.DBPostgresqlWriteDSN != "" {
		return c.DBPostgresqlWriteDSN
	}
	return c.DatabaseURL
}
