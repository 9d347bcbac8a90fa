// Package http exposes the registry workflow over a JSON API.
// It is a thin adapter translating HTTP requests to application service calls.
package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garyjia/swenshares/internal/application/service"
	appwf "github.com/garyjia/swenshares/internal/application/workflow"
	"github.com/garyjia/swenshares/internal/metrics"
	"github.com/garyjia/swenshares/internal/report"
)

// Logger interface for logging operations
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Services are the application services the API routes to.
// Metrics, Gatherer and Health may be nil.
type Services struct {
	Workflow      appwf.WorkflowService
	Registry      service.RegistryService
	Dividends     service.DividendService
	Notifications service.NotificationService
	Announcements service.AnnouncementService
	Exporter      *report.RegisterExporter
	Verifier      *TokenVerifier
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
	Health        func(ctx context.Context) error
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	services   Services
	logger     Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(config ServerConfig, services Services, logger Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	server := &Server{
		config:   config,
		router:   router,
		services: services,
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
	s.router.Use(s.metricsMiddleware())
}

// loggingMiddleware creates a logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

// metricsMiddleware counts requests by matched route
func (s *Server) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.services.Metrics.ObserveHTTP(route, strconv.Itoa(c.Writer.Status()))
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	h := NewHandlers(s.services, s.logger)

	s.router.GET("/health", h.HealthCheck)
	if s.services.Gatherer != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.services.Gatherer, promhttp.HandlerOpts{})))
	}

	api := s.router.Group("/api/v1")
	api.Use(s.authMiddleware())
	{
		api.POST("/records/:kind", h.CreateRecord)
		api.GET("/records/:kind", h.ListRecords)
		api.GET("/records/:kind/export.xlsx", h.ExportRegister)
		api.GET("/records/:kind/:id", h.GetRecord)
		api.POST("/records/:kind/:id/transitions", h.Transition)
		api.GET("/records/:kind/:id/transitions", h.AvailableTransitions)
		api.GET("/records/:kind/:id/history", h.History)

		api.POST("/dividends", h.CreateDividend)
		api.GET("/dividends/upcoming", h.UpcomingDividends)
		api.GET("/dividends/:id", h.GetDividend)
		api.POST("/dividends/:id/validate", h.ValidateDividend)
		api.POST("/dividends/:id/cancel-validation", h.CancelDividendValidation)

		api.GET("/notifications", h.ListNotifications)
		api.GET("/notifications/unread-count", h.UnreadNotificationCount)
		api.POST("/notifications/read-all", h.MarkAllNotificationsRead)
		api.POST("/notifications/:id/read", h.MarkNotificationRead)

		api.POST("/announcements", h.CreateAnnouncement)
		api.GET("/announcements", h.ListAnnouncements)
		api.GET("/announcements/mine", h.MyAnnouncements)
		api.GET("/announcements/:id", h.GetAnnouncement)
		api.POST("/announcements/:id/deactivate", h.DeactivateAnnouncement)
		api.POST("/announcements/:id/extend", h.ExtendAnnouncement)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
