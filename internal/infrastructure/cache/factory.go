package cache

import (
	"fmt"
	"time"

	"github.com/josewalke/generador-de-factura-sub001/internal/application/reconciliation"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ClosableReportStore is a report store holding resources to release
type ClosableReportStore interface {
	reconciliation.ReportStore
	Close() error
}

// ReportStoreFactory creates report stores based on configuration
type ReportStoreFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ReportStoreFactoryOption is a functional option for configuring the factory
type ReportStoreFactoryOption func(*ReportStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ReportStoreFactoryOption {
	return func(f *ReportStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) ReportStoreFactoryOption {
	return func(f *ReportStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewReportStoreFactory creates a new factory
func NewReportStoreFactory(cfg config.RedisConfig, ttl time.Duration, opts ...ReportStoreFactoryOption) *ReportStoreFactory {
	f := &ReportStoreFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store when Redis is enabled and reachable,
// otherwise an in-memory store if fallback is allowed
func (f *ReportStoreFactory) CreateStore() (ClosableReportStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory report store")
		return NewInMemoryReportStore(f.ttl), nil
	}

	store, err := NewRedisReportStore(f.redisConfig, f.ttl)
	if err == nil {
		f.logger.Info("using Redis report store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for report store but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory report store; reports are not shared between instances",
		zap.Error(err),
	)
	return NewInMemoryReportStore(f.ttl), nil
}
