package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/josewalke/generador-de-factura-sub001/internal/application/reconciliation"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "recon:"

// RedisReportStore implements reconciliation.ReportStore using Redis.
// Every instance sharing the prefix serves the same latest reports.
type RedisReportStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisReportStore connects to Redis and verifies the connection
func NewRedisReportStore(cfg config.RedisConfig, ttl time.Duration) (*RedisReportStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisReportStoreWithClient(client, cfg.KeyPrefix, ttl), nil
}

// NewRedisReportStoreWithClient creates a store with an existing Redis client
func NewRedisReportStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisReportStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisReportStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// SaveRun replaces the latest pass report
func (s *RedisReportStore) SaveRun(ctx context.Context, report *reconciliation.Report) error {
	return s.save(ctx, s.runKey(), report)
}

// LatestRun returns the latest pass report
func (s *RedisReportStore) LatestRun(ctx context.Context) (*reconciliation.Report, error) {
	var report reconciliation.Report
	if err := s.load(ctx, s.runKey(), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// SaveAudit replaces the latest audit report
func (s *RedisReportStore) SaveAudit(ctx context.Context, report *reconciliation.AnomalyReport) error {
	return s.save(ctx, s.auditKey(), report)
}

// LatestAudit returns the latest audit report
func (s *RedisReportStore) LatestAudit(ctx context.Context) (*reconciliation.AnomalyReport, error) {
	var report reconciliation.AnomalyReport
	if err := s.load(ctx, s.auditKey(), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Ping checks the Redis connection
func (s *RedisReportStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *RedisReportStore) Close() error {
	return s.client.Close()
}

func (s *RedisReportStore) runKey() string {
	return s.keyPrefix + "run:latest"
}

func (s *RedisReportStore) auditKey() string {
	return s.keyPrefix + "audit:latest"
}

func (s *RedisReportStore) save(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}
	return nil
}

func (s *RedisReportStore) load(ctx context.Context, key string, dest any) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return shared.ErrNotFound
		}
		return fmt.Errorf("failed to load report: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode report: %w", err)
	}
	return nil
}

var _ reconciliation.ReportStore = (*RedisReportStore)(nil)
