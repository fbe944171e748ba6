package main

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/config"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/logger"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/telemetry"
	"github.com/josewalke/generador-de-factura-sub001/internal/interfaces/http/handler"
	"github.com/josewalke/generador-de-factura-sub001/internal/interfaces/http/middleware"
	"github.com/josewalke/generador-de-factura-sub001/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// handlers groups the HTTP handlers mounted by newEngine
type handlers struct {
	reconciliation *handler.ReconciliationHandler
	inspector      *handler.InspectorHandler
	system         *handler.SystemHandler
	// tokens validates bearer tokens; required when auth is enabled
	tokens middleware.TokenValidator
}

// newEngine builds the gin engine with the middleware stack and every route.
// meters may be nil.
func newEngine(cfg *config.Config, log *zap.Logger, meters *telemetry.MeterProvider, h handlers) (*gin.Engine, error) {
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSOrigins

	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(cors))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meters,
		Enabled:       meters != nil && cfg.Telemetry.MetricsEnabled,
	}))
	engine.Use(middleware.ProfilingWithConfig(middleware.ProfilingConfig{
		Enabled:   cfg.Telemetry.ProfilingEnabled,
		SkipPaths: []string{"/health"},
	}))

	engine.GET("/health", h.system.Health)

	reconciliation := router.ReconciliationRoutes(h.reconciliation, h.inspector)
	system := router.SystemRoutes(h.system)
	if cfg.Auth.Enabled {
		if h.tokens == nil {
			return nil, errors.New("auth is enabled but no token validator is configured")
		}
		authCfg := middleware.DefaultJWTConfig(h.tokens)
		authCfg.Logger = log
		requireToken := middleware.JWTAuthWithConfig(authCfg)
		reconciliation.Use(requireToken)
		system.Use(requireToken)
	} else {
		log.Warn("HTTP API authentication is disabled")
	}

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(reconciliation).
		Register(system).
		Setup()

	return engine, nil
}
