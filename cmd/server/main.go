package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/josewalke/generador-de-factura-sub001/internal/bootstrap"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/auth"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/config"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/logger"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/scheduler"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/telemetry"
	"github.com/josewalke/generador-de-factura-sub001/internal/interfaces/http/handler"
	"github.com/josewalke/generador-de-factura-sub001/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	ctx := context.Background()

	// Telemetry providers are no-ops when disabled
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = telemetry.BridgeLogger(log, logProvider, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))

	log.Info("Starting proforma reconciler",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", cfg.App.Version),
		zap.String("port", cfg.App.Port),
		zap.String("database", cfg.Database.Driver),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    cfg.App.Version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeAddress,
		ApplicationName: cfg.Telemetry.ServiceName,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && tracerProvider.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to link spans to profiles", zap.Error(err))
		}
	}

	opts := bootstrap.Options{AllowInMemoryReports: !cfg.App.IsProduction()}
	if meterProvider.IsEnabled() {
		opts.Meter = meterProvider.Meter("proforma-reconciler")
	}
	services, err := bootstrap.New(ctx, cfg, log, opts)
	if err != nil {
		log.Fatal("Failed to initialize services", zap.Error(err))
	}
	log.Info("Database connected", zap.String("driver", services.Database.Driver))

	sched := scheduler.NewReconciliationScheduler(services.Service, services.Auditor, log, scheduler.ReconciliationSchedulerConfig{
		Enabled:       cfg.Reconciliation.ScheduleEnabled,
		Interval:      cfg.Reconciliation.Interval,
		RunTimeout:    cfg.Reconciliation.RunTimeout,
		AuditAfterRun: cfg.Reconciliation.AuditAfterRun,
		BatchSize:     cfg.Reconciliation.BatchSize,
	})
	if err := sched.Start(ctx); err != nil {
		log.Fatal("Failed to start reconciliation scheduler", zap.Error(err))
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	var tokens middleware.TokenValidator
	if cfg.Auth.Enabled {
		tokenService, err := auth.NewTokenService(cfg.Auth)
		if err != nil {
			log.Fatal("Failed to initialize API authentication", zap.Error(err))
		}
		tokens = tokenService
	}

	engine, err := newEngine(cfg, log, meterProvider, handlers{
		// manual passes go through the scheduler so they never overlap a scheduled one
		reconciliation: handler.NewReconciliationHandler(sched, services.Auditor, services.Reports),
		inspector:      handler.NewInspectorHandler(services.Inspector),
		system:         handler.NewSystemHandler(cfg.App.Name, cfg.App.Version, services.Database, sched),
		tokens:         tokens,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		log.Error("Reconciliation scheduler did not stop in time", zap.Error(err))
	}
	if err := services.Close(shutdownCtx); err != nil {
		log.Error("Error releasing resources", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing traces", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing logs", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
