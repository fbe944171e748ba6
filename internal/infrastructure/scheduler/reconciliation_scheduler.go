package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/josewalke/generador-de-factura-sub001/internal/application/reconciliation"
	"go.uber.org/zap"
)

// Runner executes one reconciliation pass
type Runner interface {
	Run(ctx context.Context, opts reconciliation.RunOptions) (*reconciliation.Report, error)
}

// Auditor executes one integrity audit
type Auditor interface {
	Audit(ctx context.Context) (*reconciliation.AnomalyReport, error)
}

// ReconciliationSchedulerConfig holds configuration for the periodic pass
type ReconciliationSchedulerConfig struct {
	// Enabled starts the periodic loop; manual runs work either way
	Enabled bool

	// Interval between the starts of two scheduled passes
	Interval time.Duration

	// RunTimeout bounds each pass and its audit; zero means no bound
	RunTimeout time.Duration

	// AuditAfterRun runs the integrity audit after every scheduled pass
	AuditAfterRun bool

	// RunOnStart runs a pass immediately instead of waiting one interval
	RunOnStart bool

	// BatchSize is passed to scheduled passes; zero uses the service default
	BatchSize int
}

// DefaultReconciliationSchedulerConfig returns default configuration
func DefaultReconciliationSchedulerConfig() ReconciliationSchedulerConfig {
	return ReconciliationSchedulerConfig{
		Enabled:    false,
		Interval:   time.Hour,
		RunTimeout: 30 * time.Minute,
	}
}

// Validate checks the configuration
func (c ReconciliationSchedulerConfig) Validate() error {
	if c.Enabled && c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.RunTimeout < 0 {
		return fmt.Errorf("%w: run timeout cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// Status is a snapshot of the scheduler state
type Status struct {
	Enabled        bool       `json:"enabled"`
	Running        bool       `json:"running"`
	InProgress     bool       `json:"in_progress"`
	Interval       string     `json:"interval"`
	Runs           int64      `json:"runs"`
	Skipped        int64      `json:"skipped"`
	LastStartedAt  *time.Time `json:"last_started_at,omitempty"`
	LastFinishedAt *time.Time `json:"last_finished_at,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
}

// ReconciliationScheduler runs reconciliation passes periodically and on
// demand. At most one pass started through it runs at a time; a tick that
// finds a pass in progress is skipped.
type ReconciliationScheduler struct {
	runner  Runner
	auditor Auditor
	logger  *zap.Logger
	config  ReconciliationSchedulerConfig

	inProgress atomic.Bool
	runs       atomic.Int64
	skipped    atomic.Int64

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastMu         sync.Mutex
	lastStartedAt  *time.Time
	lastFinishedAt *time.Time
	lastErr        error
}

// NewReconciliationScheduler creates a new scheduler. auditor may be nil.
func NewReconciliationScheduler(
	runner Runner,
	auditor Auditor,
	logger *zap.Logger,
	config ReconciliationSchedulerConfig,
) *ReconciliationScheduler {
	return &ReconciliationScheduler{
		runner:  runner,
		auditor: auditor,
		logger:  logger.Named("scheduler"),
		config:  config,
	}
}

// Start starts the periodic loop. It does nothing when disabled.
func (s *ReconciliationScheduler) Start(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("reconciliation scheduler is disabled")
		return nil
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("reconciliation scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("run_timeout", s.config.RunTimeout),
		zap.Bool("audit_after_run", s.config.AuditAfterRun),
	)
	return nil
}

// Stop cancels the loop, interrupting a scheduled pass at its next entity
// boundary, and waits for it to return or for ctx to be done
func (s *ReconciliationScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("reconciliation scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("reconciliation scheduler stop timed out")
		return ctx.Err()
	}
}

// Run executes one pass unless another one is in progress, in which case it
// returns ErrRunInProgress without running
func (s *ReconciliationScheduler) Run(ctx context.Context, opts reconciliation.RunOptions) (*reconciliation.Report, error) {
	if !s.inProgress.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		return nil, ErrRunInProgress
	}
	defer s.inProgress.Store(false)

	if s.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RunTimeout)
		defer cancel()
	}

	started := time.Now()
	s.lastMu.Lock()
	s.lastStartedAt = &started
	s.lastMu.Unlock()

	report, err := s.runner.Run(ctx, opts)
	s.runs.Add(1)

	finished := time.Now()
	s.lastMu.Lock()
	s.lastFinishedAt = &finished
	s.lastErr = err
	s.lastMu.Unlock()

	return report, err
}

// Status returns a snapshot of the scheduler state
func (s *ReconciliationScheduler) Status() Status {
	s.mu.Lock()
	running := s.isRunning
	s.mu.Unlock()

	s.lastMu.Lock()
	defer s.lastMu.Unlock()
	status := Status{
		Enabled:        s.config.Enabled,
		Running:        running,
		InProgress:     s.inProgress.Load(),
		Interval:       s.config.Interval.String(),
		Runs:           s.runs.Load(),
		Skipped:        s.skipped.Load(),
		LastStartedAt:  s.lastStartedAt,
		LastFinishedAt: s.lastFinishedAt,
	}
	if s.lastErr != nil {
		status.LastError = s.lastErr.Error()
	}
	return status
}

func (s *ReconciliationScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.tick(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *ReconciliationScheduler) tick(ctx context.Context) {
	report, err := s.Run(ctx, reconciliation.RunOptions{BatchSize: s.config.BatchSize})
	switch {
	case errors.Is(err, ErrRunInProgress):
		s.logger.Info("skipping scheduled pass, previous pass still in progress")
		return
	case err != nil:
		s.logger.Warn("scheduled pass did not complete", zap.Error(err))
		return
	}

	s.logger.Info("scheduled pass completed",
		zap.String("run_id", report.RunID),
		zap.Int("links_created", report.Summary.LinksCreated),
		zap.Int("statuses_changed", report.Summary.StatusesChanged),
		zap.Int("failures", report.Summary.Failures),
	)

	if s.config.AuditAfterRun && s.auditor != nil {
		s.audit(ctx)
	}
}

func (s *ReconciliationScheduler) audit(ctx context.Context) {
	if s.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RunTimeout)
		defer cancel()
	}

	audit, err := s.auditor.Audit(ctx)
	if err != nil {
		s.logger.Warn("scheduled audit did not complete", zap.Error(err))
		return
	}
	s.logger.Info("scheduled audit completed",
		zap.String("audit_id", audit.AuditID),
		zap.Int64("total_anomalies", audit.TotalAnomalies),
	)
}
