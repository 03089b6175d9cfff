// Package server builds the application's dependencies and runs the HTTP
// server until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JakeFAU/realtime-progress/internal/api"
	"github.com/JakeFAU/realtime-progress/internal/clock/system"
	"github.com/JakeFAU/realtime-progress/internal/config"
	"github.com/JakeFAU/realtime-progress/internal/id/uuid"
	"github.com/JakeFAU/realtime-progress/internal/logging"
	"github.com/JakeFAU/realtime-progress/internal/metrics"
	"github.com/JakeFAU/realtime-progress/internal/progress"
	progresssinks "github.com/JakeFAU/realtime-progress/internal/progress/sinks"
	"github.com/JakeFAU/realtime-progress/internal/push"
	"github.com/JakeFAU/realtime-progress/internal/telemetry"
	"github.com/JakeFAU/realtime-progress/internal/web"
	"github.com/JakeFAU/realtime-progress/internal/worker"
)

// App contains the application's dependencies.
type App struct {
	cfg            *config.Config
	logger         *zap.Logger
	registry       *push.Registry
	apiServer      *api.Server
	progressHub    *progress.Hub
	tracerShutdown telemetry.ShutdownFunc
}

// Build creates the application's dependencies.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("logger init failed: %w", err)
	}
	zap.ReplaceGlobals(logger)
	return build(ctx, cfg, logger, prometheus.DefaultRegisterer)
}

func build(ctx context.Context, cfg *config.Config, logger *zap.Logger, reg prometheus.Registerer) (*App, error) {
	logger.Info("building application dependencies",
		zap.Int("port", cfg.Server.Port),
		zap.Duration("step_interval", cfg.StepInterval()),
		zap.Bool("tracing", cfg.Telemetry.TracingEnabled),
	)

	tracerShutdown, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.Telemetry.TracingEnabled,
		ServiceName:  cfg.Telemetry.ServiceName,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		Insecure:     cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		return nil, fmt.Errorf("tracer init failed: %w", err)
	}
	metrics.Init()

	pages, err := web.New()
	if err != nil {
		return nil, fmt.Errorf("templates init failed: %w", err)
	}

	promSink, err := progresssinks.NewPrometheusSink(reg)
	if err != nil {
		return nil, fmt.Errorf("progress metrics init failed: %w", err)
	}
	hub := progress.NewHub(progress.Config{
		BufferSize:     cfg.Progress.BufferSize,
		MaxBatchEvents: cfg.Progress.MaxBatchEvents,
		MaxBatchWait:   time.Duration(cfg.Progress.MaxBatchWaitMs) * time.Millisecond,
		Logger:         logging.Named(logger, "progress"),
	},
		progresssinks.NewLogSink(logging.Named(logger, "jobs")),
		promSink,
	)

	registry := push.NewRegistry(logging.Named(logger, "registry"))
	runner := worker.New(system.New(), nil, hub, worker.Config{
		Interval:     cfg.StepInterval(),
		MaxIncrement: cfg.Job.MaxIncrement,
		MaxSteps:     cfg.Job.MaxSteps,
	}, logging.Named(logger, "worker"))

	apiServer := api.NewServer(registry, runner, pages, uuid.New(), api.Config{
		PageTimeout:  cfg.PageTimeout(),
		Heartbeat:    cfg.Heartbeat(),
		StreamBuffer: cfg.Stream.BufferSize,
	}, logging.Named(logger, "http"))

	return &App{
		cfg:            cfg,
		logger:         logger,
		registry:       registry,
		apiServer:      apiServer,
		progressHub:    hub,
		tracerShutdown: tracerShutdown,
	}, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.apiServer.Handler()
}

// Run starts the HTTP server and blocks until ctx is canceled or a
// SIGINT/SIGTERM arrives, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", a.cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	return a.serve(ctx, ln)
}

func (a *App) serve(ctx context.Context, ln net.Listener) error {
	streamCtx, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()

	srv := &http.Server{
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: a.cfg.ReadHeaderTimeout(),
		BaseContext:       func(net.Listener) context.Context { return streamCtx },
	}
	// Open SSE connections never finish on their own.
	srv.RegisterOnShutdown(cancelStreams)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("http server started", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("server shutdown error", zap.Error(err))
		}
		return nil
	})

	runErr := g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
	defer cancel()
	if err := a.Close(closeCtx); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Close drains the progress hub and flushes observability.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.progressHub != nil {
		if err := a.progressHub.Close(ctx); err != nil {
			a.logger.Warn("progress hub close failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if a.tracerShutdown != nil {
		if err := a.tracerShutdown(ctx); err != nil {
			a.logger.Warn("tracer shutdown failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	a.logger.Info("shutdown complete", zap.Int("open_channels", a.registry.Len()))
	_ = a.logger.Sync() //nolint:errcheck // stderr sync fails on some platforms
	return errors.Join(errs...)
}
