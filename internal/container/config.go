// Package container provides dependency injection and lifecycle management
// for the shareholder registry service.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Server configuration
	Server ServerConfig

	// Auth configuration
	Auth AuthConfig

	// Workflow configuration
	Workflow WorkflowConfig

	// MetricsEnabled exposes /metrics and records counters
	MetricsEnabled bool
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration

	// MigrationsDir overrides the embedded migrations when set
	MigrationsDir string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuthConfig holds token verification and role grant settings.
type AuthConfig struct {
	// JWTSecret verifies HS256 tokens. Empty means tokens are parsed unverified.
	JWTSecret string
	Issuer    string
	Audience  string

	// Grants adds roles to usernames on top of their token roles
	Grants map[string][]string
}

// WorkflowConfig holds workflow engine settings.
type WorkflowConfig struct {
	// ClearReviewersOnResubmit resets examined_by and approved_by on REJECTED -> SUBMITTED
	ClearReviewersOnResubmit bool

	// HandlerTimeout bounds each async event handler
	HandlerTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:            "data/registry.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Workflow: WorkflowConfig{
			HandlerTimeout: 30 * time.Second,
		},
		MetricsEnabled: true,
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Workflow.HandlerTimeout <= 0 {
		return fmt.Errorf("workflow.handler_timeout must be positive")
	}
	return nil
}
