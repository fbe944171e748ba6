package cache

import (
	"context"
	"sync"
	"time"

	"github.com/josewalke/generador-de-factura-sub001/internal/application/reconciliation"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
)

// entry holds a stored value with its expiration; a zero expiresAt never expires
type entry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e *entry[T]) live(now time.Time) bool {
	return e != nil && (e.expiresAt.IsZero() || now.Before(e.expiresAt))
}

// InMemoryReportStore implements reconciliation.ReportStore in process memory.
// This is suitable for single-instance deployments and testing.
type InMemoryReportStore struct {
	mu    sync.RWMutex
	run   *entry[reconciliation.Report]
	audit *entry[reconciliation.AnomalyReport]
	ttl   time.Duration
	now   func() time.Time
}

// NewInMemoryReportStore creates a store whose reports expire after ttl.
// A zero ttl keeps reports until they are replaced.
func NewInMemoryReportStore(ttl time.Duration) *InMemoryReportStore {
	return &InMemoryReportStore{ttl: ttl, now: time.Now}
}

// SaveRun replaces the latest pass report
func (s *InMemoryReportStore) SaveRun(ctx context.Context, report *reconciliation.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run = &entry[reconciliation.Report]{value: *report, expiresAt: s.expiry()}
	return nil
}

// LatestRun returns the latest pass report
func (s *InMemoryReportStore) LatestRun(ctx context.Context) (*reconciliation.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.run.live(s.now()) {
		return nil, shared.ErrNotFound
	}
	report := s.run.value
	return &report, nil
}

// SaveAudit replaces the latest audit report
func (s *InMemoryReportStore) SaveAudit(ctx context.Context, report *reconciliation.AnomalyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = &entry[reconciliation.AnomalyReport]{value: *report, expiresAt: s.expiry()}
	return nil
}

// LatestAudit returns the latest audit report
func (s *InMemoryReportStore) LatestAudit(ctx context.Context) (*reconciliation.AnomalyReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.audit.live(s.now()) {
		return nil, shared.ErrNotFound
	}
	report := s.audit.value
	return &report, nil
}

// Close implements io.Closer
func (s *InMemoryReportStore) Close() error {
	return nil
}

func (s *InMemoryReportStore) expiry() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return s.now().Add(s.ttl)
}

var _ reconciliation.ReportStore = (*InMemoryReportStore)(nil)
