package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"capitalforge/internal/config"
	apierrors "capitalforge/internal/errors"
	"capitalforge/internal/exporter"
	"capitalforge/internal/infrastructure"
	"capitalforge/internal/middleware"
	"capitalforge/internal/services"
	handlers "capitalforge/internal/transport/http"
	"capitalforge/pkg/contracts"
)

// Application is the assembled service: configuration, shared
// infrastructure and the HTTP server.
type Application struct {
	Config  *config.Config
	Router  *chi.Mux
	Server  *http.Server
	Logger  *slog.Logger
	Metrics *infrastructure.Metrics

	Store     *services.SnapshotStore
	Portfolio *services.PortfolioService
}

// NewApplication builds the application from configuration, wiring
// services, handlers and the middleware chain.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewApplicationWithConfig(cfg)
}

// NewApplicationWithConfig builds the application from an explicit
// configuration, used by tests.
func NewApplicationWithConfig(cfg *config.Config) (*Application, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", contracts.Version),
		slog.Int("port", cfg.Server.Port))

	metrics := infrastructure.NewMetrics()
	store := services.NewSnapshotStore()
	portfolio := services.NewPortfolioService(store, logger)

	renderer, err := exporter.NewReportRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to build report renderer: %w", err)
	}

	errorHandler := apierrors.NewErrorHandler(logger, false)
	snapshotHandler := handlers.NewSnapshotHandler(
		portfolio,
		exporter.NewCSVExporter(logger),
		renderer,
		metrics,
		errorHandler,
		logger,
		cfg.Upload.MaxBytes,
	)
	healthHandler := handlers.NewHealthHandler(store, logger)

	router := buildRouter(cfg, logger, metrics, errorHandler, snapshotHandler, healthHandler)

	app := &Application{
		Config:    cfg,
		Router:    router,
		Logger:    logger,
		Metrics:   metrics,
		Store:     store,
		Portfolio: portfolio,
	}
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return app, nil
}

func buildRouter(
	cfg *config.Config,
	logger *slog.Logger,
	metrics *infrastructure.Metrics,
	errorHandler *apierrors.ErrorHandler,
	snapshots *handlers.SnapshotHandler,
	health *handlers.HealthHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(metrics.Middleware)
	if cfg.Server.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst, logger)
		r.Use(limiter.Handler)
	}
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/snapshots", snapshots.Routes())
		r.Get("/health", health.HealthCheck)
		r.Get("/version", health.Version)
	})
	r.Handle("/metrics", metrics.Handler())

	return r
}

// Run starts the HTTP server and blocks until shutdown, triggered by
// SIGINT/SIGTERM or a server failure.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("HTTP server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return a.Stop()
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.Logger.Info("application stopped")
	return nil
}

// Stop shuts the HTTP server down, allowing in-flight requests to
// finish within the configured timeout.
func (a *Application) Stop() error {
	a.Logger.Info("shutting down",
		slog.Duration("timeout", a.Config.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
