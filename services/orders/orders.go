// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package orders assembles the order records HTTP service.
//
// The service coordinates the document store, the ledger that runs each
// read-modify-write cycle, Prometheus metrics, OpenTelemetry tracing and
// the gin router.
//
// # Usage
//
//	svc, err := orders.New(orders.Config{Port: 8080}, logger)
//	if err != nil {
//	    return err
//	}
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	return svc.Run(ctx)
package orders

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/OrderRecords/pkg/logging"
	"github.com/AleutianAI/OrderRecords/services/orders/document/xlsx"
	"github.com/AleutianAI/OrderRecords/services/orders/ledger"
	"github.com/AleutianAI/OrderRecords/services/orders/middleware"
	"github.com/AleutianAI/OrderRecords/services/orders/observability"
	"github.com/AleutianAI/OrderRecords/services/orders/routes"
	"github.com/AleutianAI/OrderRecords/services/orders/telemetry"
	"github.com/AleutianAI/OrderRecords/services/orders/views"
)

// Defaults applied by New.
const (
	DefaultPort            = 8080
	DefaultShutdownTimeout = 5 * time.Second
	DefaultServiceName     = "orderrecords"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Service is the runnable HTTP service.
//
// # Thread Safety
//
// Run blocks and should be called once per instance.
type Service interface {
	// Run serves until ctx is done, then drains in-flight requests for up
	// to the shutdown timeout and flushes telemetry.
	Run(ctx context.Context) error

	// Router returns the configured gin engine, for tests.
	Router() *gin.Engine

	// Ledger returns the store service behind the API.
	Ledger() *ledger.Service
}

// =============================================================================
// Configuration
// =============================================================================

// Config holds service configuration. Zero values take defaults.
//
// # Examples
//
//	cfg := orders.Config{
//	    Port:      9090,
//	    Ledger:    ledger.DefaultConfig(),
//	    Telemetry: telemetry.Config{Exporter: "stdout"},
//	}
type Config struct {
	// Host is the listen address. Default: all interfaces.
	Host string
	// Port is the HTTP port. Default: 8080. Use -1 for an ephemeral port.
	Port int
	// GinMode is "debug", "release" or "test". Default: release.
	GinMode string
	// ShutdownTimeout bounds the drain on shutdown. Default: 5s.
	ShutdownTimeout time.Duration
	// ServiceName is used for the tracer resource and otelgin spans.
	ServiceName string

	Ledger    ledger.Config
	Storage   xlsx.Options
	RateLimit middleware.RateLimitConfig
	Telemetry telemetry.Config

	// DisableMetrics drops /metrics and the metrics observer.
	DisableMetrics bool
}

// =============================================================================
// Implementation
// =============================================================================

type service struct {
	config            Config
	logger            *logging.Logger
	router            *gin.Engine
	ledger            *ledger.Service
	registry          *prometheus.Registry
	telemetryShutdown telemetry.ShutdownFunc
}

// New creates the service.
//
// # Description
//
// New initializes, in order: tracing, metrics, the workbook store and
// ledger, and the router with its middleware.
//
// # Outputs
//
//   - Service: Ready to Run.
//   - error: Non-nil when tracing or the ledger cannot be initialized.
func New(cfg Config, logger *logging.Logger) (Service, error) {
	if logger == nil {
		logger = logging.Default()
	}
	s := &service{config: applyConfigDefaults(cfg), logger: logger}

	shutdown, err := telemetry.Init(context.Background(), s.config.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	s.telemetryShutdown = shutdown

	opts := []ledger.Option{ledger.WithLogger(logger)}
	var metrics *observability.Metrics
	if !s.config.DisableMetrics {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics = observability.NewMetrics(s.registry)
		opts = append(opts, ledger.WithObserver(metrics))
	}

	s.ledger, err = ledger.New(s.config.Ledger, xlsx.NewStore(s.config.Storage), opts...)
	if err != nil {
		s.cleanup(context.Background())
		return nil, fmt.Errorf("failed to initialize ledger: %w", err)
	}

	s.initRouter(metrics)
	return s, nil
}

// Run serves until ctx is done.
func (s *service) Run(ctx context.Context) error {
	defer s.cleanup(context.Background())

	port := s.config.Port
	if port < 0 {
		port = 0
	}
	ln, err := net.Listen("tcp", net.JoinHostPort(s.config.Host, fmt.Sprint(port)))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting order records server", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down order records server", "timeout", s.config.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errCh
	return nil
}

// Router returns the gin engine.
func (s *service) Router() *gin.Engine {
	return s.router
}

// Ledger returns the store service.
func (s *service) Ledger() *ledger.Service {
	return s.ledger
}

// =============================================================================
// Private Initialization Methods
// =============================================================================

// applyConfigDefaults fills in zero-valued fields.
func applyConfigDefaults(cfg Config) Config {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.GinMode == "" {
		cfg.GinMode = gin.ReleaseMode
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.ServiceName
	}
	def := ledger.DefaultConfig()
	if cfg.Ledger.FileName == "" {
		cfg.Ledger.FileName = def.FileName
	}
	if cfg.Ledger.Views == (views.Names{}) {
		cfg.Ledger.Views = def.Views
	}
	if cfg.Ledger.Calendar.PeriodDays == 0 {
		cfg.Ledger.Calendar = def.Calendar
	}
	return cfg
}

func (s *service) initRouter(metrics *observability.Metrics) {
	gin.SetMode(s.config.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(s.config.ServiceName))
	router.Use(middleware.RequestID())

	var obs middleware.HTTPObserver
	if metrics != nil {
		obs = metrics
	}
	router.Use(middleware.AccessLog(s.logger, obs))
	router.Use(middleware.RateLimit(s.config.RateLimit))

	deps := routes.Dependencies{Ledger: s.ledger, Logger: s.logger}
	if s.registry != nil {
		deps.Gatherer = s.registry
	}
	routes.SetupRoutes(router, deps)
	s.router = router
}

func (s *service) cleanup(ctx context.Context) {
	if s.telemetryShutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	if err := s.telemetryShutdown(ctx); err != nil {
		s.logger.Error("failed to shut down tracing", "error", err)
	}
	s.telemetryShutdown = nil
}
