package config

import (
	"github.com/garyjia/swenshares/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			MigrationsDir:   c.Database.MigrationsDir,
		},
		Server: container.ServerConfig{
			Host:         c.Server.Host,
			Port:         c.Server.Port,
			ReadTimeout:  c.Server.ReadTimeout,
			WriteTimeout: c.Server.WriteTimeout,
		},
		Auth: container.AuthConfig{
			JWTSecret: c.Auth.JWTSecret,
			Issuer:    c.Auth.Issuer,
			Audience:  c.Auth.Audience,
			Grants:    c.Authz.Grants,
		},
		Workflow: container.WorkflowConfig{
			ClearReviewersOnResubmit: c.Workflow.ClearReviewersOnResubmit,
			HandlerTimeout:           c.Workflow.HandlerTimeout,
		},
		MetricsEnabled: c.Metrics.Enabled,
	}
}
