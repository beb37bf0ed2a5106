package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rezonia/billing/internal/billing"
)

// Config holds server configuration
type Config struct {
	Address        string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	Debug          bool
}

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// Option configures a Server
type Option func(*Server)

// WithHealthCheck makes /health report the result of check
func WithHealthCheck(check HealthCheck) Option {
	return func(s *Server) {
		s.health = check
	}
}

// Server represents the HTTP API server
type Server struct {
	config  *Config
	router  *gin.Engine
	service *billing.Service
	logger  *zap.Logger
	health  HealthCheck
}

// NewServer creates a new API server
func NewServer(config *Config, service *billing.Service, logger *zap.Logger, opts ...Option) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	registerJSONFieldNames()

	s := &Server{
		config:  config,
		router:  gin.New(),
		service: service,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(requestID(), requestLogger(logger), gin.CustomRecovery(s.recovered))
	if config.RequestTimeout > 0 {
		s.router.Use(requestTimeout(config.RequestTimeout))
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.handleHealth)

	// API v1
	v1 := s.router.Group("/api/v1")
	{
		clients := v1.Group("/clients")
		clients.GET("", s.handleListClients)
		clients.POST("", s.handleCreateClient)
		clients.GET("/:id", s.handleGetClient)
		clients.PUT("/:id", s.handleUpdateClient)
		clients.DELETE("/:id", s.handleDeleteClient)

		invoices := v1.Group("/invoices")
		invoices.GET("", s.handleListInvoices)
		invoices.POST("", s.handleCreateInvoice)
		invoices.GET("/period", s.handleInvoicesByPeriod)
		invoices.GET("/client/:clientId", s.handleInvoicesByClient)
		invoices.GET("/date/:date", s.handleInvoicesByDate)
		invoices.GET("/:id", s.handleGetInvoice)
		invoices.GET("/:id/export", s.handleExportInvoice)
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("address", s.config.Address))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.health != nil {
		if err := s.health(c.Request.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"time":   time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) recovered(c *gin.Context, rec any) {
	s.logger.Error("panic while serving request",
		zap.Any("panic", rec),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", c.GetString(requestIDKey)),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Status:    http.StatusInternalServerError,
		Error:     "internal server error",
		RequestID: c.GetString(requestIDKey),
		Timestamp: time.Now().UTC(),
	})
}
