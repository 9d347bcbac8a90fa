package container

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/garyjia/swenshares/internal/application/dispatcher"
	"github.com/garyjia/swenshares/internal/application/port"
	"github.com/garyjia/swenshares/internal/application/service"
	"github.com/garyjia/swenshares/internal/application/workflow"
	"github.com/garyjia/swenshares/internal/domain/audit"
	"github.com/garyjia/swenshares/internal/domain/authz"
	"github.com/garyjia/swenshares/internal/infrastructure/persistence/repository"
	"github.com/garyjia/swenshares/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/swenshares/internal/metrics"
	"github.com/garyjia/swenshares/migrations"
	"github.com/garyjia/swenshares/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// MetricsBundle holds the Prometheus registry and the metrics registered on it.
type MetricsBundle struct {
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
}

// ProvideDatabase opens the database and runs pending migrations.
// The embedded migrations are used unless cfg.MigrationsDir is set.
func ProvideDatabase(cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	migrator := database.NewMigrator(db, logger)
	if cfg.MigrationsDir != "" {
		err = migrator.RunMigrations(cfg.MigrationsDir)
	} else {
		err = migrator.RunMigrationsFS(migrations.FS)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(db *database.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Record:       repository.NewRecordRepository(db.DB, logger),
		Audit:        repository.NewAuditRepository(db.DB, logger),
		Dividend:     repository.NewDividendRepository(db.DB, logger),
		Notification: repository.NewNotificationRepository(db.DB, logger),
		Announcement: repository.NewAnnouncementRepository(db.DB, logger),
	}, nil
}

// ProvideMetrics creates a registry with runtime collectors and the
// application metrics. It returns nil when metrics are disabled.
func ProvideMetrics(enabled bool) *MetricsBundle {
	if !enabled {
		return nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &MetricsBundle{Registry: reg, Metrics: metrics.New(reg)}
}

// ProvideDispatcher creates the in-process event dispatcher.
func ProvideDispatcher(timeout time.Duration, logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return dispatcher.NewDispatcher(
		dispatcher.WithLogger(&zapLoggerAdapter{logger: logger.Named("dispatcher")}),
		dispatcher.WithHandlerTimeout(timeout),
	), nil
}

// ProvideAuthority creates the role authority from configured grants.
func ProvideAuthority(cfg *AuthConfig) authz.RoleAuthority {
	if cfg == nil || len(cfg.Grants) == 0 {
		return authz.TokenRoles{}
	}
	return authz.NewGrantingAuthority(cfg.Grants)
}

// ServiceDeps holds dependencies for creating services.
type ServiceDeps struct {
	Repos       *RepositoryBundle
	TxManager   port.TransactionManager
	Authority   authz.RoleAuthority
	Dispatcher  dispatcher.Dispatcher
	Metrics     *metrics.Metrics
	WorkflowCfg *WorkflowConfig
	Clock       audit.Clock
	Logger      *zap.Logger
}

// ProvideServices creates all application services and subscribes the
// event handlers on the dispatcher.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.TxManager == nil {
		return nil, fmt.Errorf("transaction manager is required")
	}
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	authority := deps.Authority
	if authority == nil {
		authority = authz.TokenRoles{}
	}
	clearReviewers := deps.WorkflowCfg != nil && deps.WorkflowCfg.ClearReviewersOnResubmit

	recorder := audit.NewRecorder(deps.Clock)
	log := &zapLoggerAdapter{logger: deps.Logger}

	engine := workflow.NewService(
		deps.Repos.Record,
		deps.Repos.Audit,
		deps.TxManager,
		authz.NewGate(authority),
		recorder,
		workflow.WithDispatcher(deps.Dispatcher),
		workflow.WithMetrics(deps.Metrics),
		workflow.WithLogger(&zapLoggerAdapter{logger: deps.Logger.Named("workflow")}),
		workflow.WithClearReviewersOnResubmit(clearReviewers),
		workflow.WithValidator(service.ValidateRecord),
	)

	notifications := service.NewNotificationService(deps.Repos.Notification, deps.Clock, deps.Metrics, log)
	notifications.Register(deps.Dispatcher)

	return &ServiceBundle{
		Workflow:     engine,
		Registry:     service.NewRegistryService(deps.Repos.Record, deps.Repos.Audit, deps.TxManager, authority, recorder, deps.Dispatcher, deps.Metrics, log),
		Dividend:     service.NewDividendService(deps.Repos.Dividend, authority, deps.Clock, deps.Dispatcher, log),
		Notification: notifications,
		Announcement: service.NewAnnouncementService(deps.Repos.Announcement, deps.Clock, deps.Dispatcher, log),
	}, nil
}
