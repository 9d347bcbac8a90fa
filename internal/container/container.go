package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/swenshares/internal/application/dispatcher"
	"github.com/garyjia/swenshares/internal/application/port"
	"github.com/garyjia/swenshares/internal/application/service"
	"github.com/garyjia/swenshares/internal/application/workflow"
	"github.com/garyjia/swenshares/internal/domain/authz"
	httpapi "github.com/garyjia/swenshares/internal/interfaces/http"
	"github.com/garyjia/swenshares/internal/metrics"
	"github.com/garyjia/swenshares/internal/report"
	"github.com/garyjia/swenshares/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components are initialized in dependency order and torn down in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	// Infrastructure
	db           *database.DB
	txManager    port.TransactionManager
	repositories *RepositoryBundle
	metrics      *MetricsBundle

	// Application
	authority  authz.RoleAuthority
	dispatcher dispatcher.Dispatcher
	services   *ServiceBundle

	// Interfaces
	server *httpapi.Server

	// Lifecycle
	mu     sync.RWMutex
	ready  atomic.Bool
	closed atomic.Bool
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Record       port.RecordRepository
	Audit        port.AuditRepository
	Dividend     port.DividendRepository
	Notification port.NotificationRepository
	Announcement port.AnnouncementRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Workflow     workflow.WorkflowService
	Registry     service.RegistryService
	Dividend     service.DividendService
	Notification service.NotificationService
	Announcement service.AnnouncementService
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order:
// 1. Database, migrations and repositories
// 2. Metrics
// 3. Event dispatcher
// 4. Application services and event handlers
// 5. HTTP server (not listening until Server().Start is called)
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.logger.Info("Starting container initialization")

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.logger.Info("Database initialized")

	c.metrics = ProvideMetrics(c.config.MetricsEnabled)

	disp, err := ProvideDispatcher(c.config.Workflow.HandlerTimeout, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dispatcher: %w", err)
	}
	c.dispatcher = disp

	if err := c.initServices(); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.logger.Info("Application services initialized")

	c.initServer()

	c.ready.Store(true)
	c.logger.Info("Container started successfully")

	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	if c.server != nil {
		if err := c.server.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop server: %w", err))
		}
	}

	// Drain async handlers before the database goes away
	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			c.logger.Error("Failed to close dispatcher", zap.Error(err))
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	if c.db != nil {
		if err := c.db.PingContext(ctx); err != nil {
			status.Components["database"] = ComponentHealth{
				Healthy: false,
				Message: fmt.Sprintf("ping failed: %v", err),
			}
			status.Overall = false
		} else {
			status.Components["database"] = ComponentHealth{Healthy: true}
		}
	} else {
		status.Components["database"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	if c.dispatcher != nil && !c.closed.Load() {
		status.Components["dispatcher"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["dispatcher"] = ComponentHealth{Healthy: false, Message: "not running"}
		status.Overall = false
	}

	if c.services != nil {
		status.Components["services"] = ComponentHealth{Healthy: true}
	} else {
		status.Components["services"] = ComponentHealth{Healthy: false, Message: "not initialized"}
		status.Overall = false
	}

	return status
}

// healthCheck reduces Health to an error for the HTTP health endpoint
func (c *Container) healthCheck(ctx context.Context) error {
	status := c.Health(ctx)
	if status.Overall {
		return nil
	}
	for name, comp := range status.Components {
		if !comp.Healthy {
			return fmt.Errorf("%s unhealthy: %s", name, comp.Message)
		}
	}
	return fmt.Errorf("unhealthy")
}

func (c *Container) initDatabase() error {
	bundle, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return err
	}
	c.db = bundle.DB
	c.txManager = bundle.TransactionMgr

	repos, err := ProvideRepositories(c.db, c.logger)
	if err != nil {
		_ = c.db.Close()
		return err
	}
	c.repositories = repos
	return nil
}

func (c *Container) initServices() error {
	c.authority = ProvideAuthority(&c.config.Auth)

	services, err := ProvideServices(&ServiceDeps{
		Repos:       c.repositories,
		TxManager:   c.txManager,
		Authority:   c.authority,
		Dispatcher:  c.dispatcher,
		Metrics:     c.Metrics(),
		WorkflowCfg: &c.config.Workflow,
		Logger:      c.logger,
	})
	if err != nil {
		return err
	}
	c.services = services
	return nil
}

func (c *Container) initServer() {
	auth := c.config.Auth
	if auth.JWTSecret == "" {
		c.logger.Warn("auth.jwt_secret is empty, bearer tokens are not verified")
	}

	svcs := httpapi.Services{
		Workflow:      c.services.Workflow,
		Registry:      c.services.Registry,
		Dividends:     c.services.Dividend,
		Notifications: c.services.Notification,
		Announcements: c.services.Announcement,
		Exporter:      report.NewRegisterExporter(c.logger.Named("report")),
		Verifier:      httpapi.NewTokenVerifier(auth.JWTSecret, auth.Issuer, auth.Audience),
		Metrics:       c.Metrics(),
		Health:        c.healthCheck,
	}
	if c.metrics != nil {
		svcs.Gatherer = c.metrics.Registry
	}

	c.server = httpapi.NewServer(httpapi.ServerConfig{
		Host:         c.config.Server.Host,
		Port:         c.config.Server.Port,
		ReadTimeout:  c.config.Server.ReadTimeout,
		WriteTimeout: c.config.Server.WriteTimeout,
	}, svcs, &zapLoggerAdapter{logger: c.logger.Named("http")})
}

// Getters for accessing container components

// TransactionManager returns the transaction manager.
func (c *Container) TransactionManager() port.TransactionManager {
	return c.txManager
}

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Dispatcher returns the event dispatcher.
func (c *Container) Dispatcher() dispatcher.Dispatcher {
	return c.dispatcher
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Server returns the HTTP server.
func (c *Container) Server() *httpapi.Server {
	return c.server
}

// Metrics returns the application metrics, or nil when disabled.
func (c *Container) Metrics() *metrics.Metrics {
	if c.metrics == nil {
		return nil
	}
	return c.metrics.Metrics
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}

// zapLoggerAdapter adapts zap.Logger to the narrow Logger interfaces
// used by services, the dispatcher and the HTTP layer.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, ok := keysAndValues[i+1].(error); ok {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
