package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/josewalke/generador-de-factura-sub001/internal/application/reconciliation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRunner struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	err     error
	lastCtx atomic.Value
}

func (r *fakeRunner) Run(ctx context.Context, opts reconciliation.RunOptions) (*reconciliation.Report, error) {
	r.calls.Add(1)
	r.lastCtx.Store(ctx)
	if r.started != nil {
		r.started <- struct{}{}
	}
	if r.release != nil {
		select {
		case <-r.release:
		case <-ctx.Done():
			return &reconciliation.Report{RunID: "interrupted", Interrupted: true}, ctx.Err()
		}
	}
	if r.err != nil {
		return nil, r.err
	}
	return &reconciliation.Report{RunID: "run", BatchSize: opts.BatchSize}, nil
}

type fakeAuditor struct {
	calls atomic.Int32
}

func (a *fakeAuditor) Audit(ctx context.Context) (*reconciliation.AnomalyReport, error) {
	a.calls.Add(1)
	return &reconciliation.AnomalyReport{AuditID: "audit"}, nil
}

func TestReconciliationSchedulerConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultReconciliationSchedulerConfig().Validate())
	assert.ErrorIs(t, ReconciliationSchedulerConfig{Enabled: true}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, ReconciliationSchedulerConfig{RunTimeout: -time.Second}.Validate(), ErrInvalidConfig)
}

func TestReconciliationScheduler_Run(t *testing.T) {
	runner := &fakeRunner{}
	s := NewReconciliationScheduler(runner, nil, zap.NewNop(), DefaultReconciliationSchedulerConfig())

	report, err := s.Run(context.Background(), reconciliation.RunOptions{BatchSize: 7})
	require.NoError(t, err)
	assert.Equal(t, 7, report.BatchSize)

	ctx := runner.lastCtx.Load().(context.Context)
	_, hasDeadline := ctx.Deadline()
	assert.True(t, hasDeadline, "run timeout applies to manual runs")

	status := s.Status()
	assert.Equal(t, int64(1), status.Runs)
	assert.False(t, status.InProgress)
	assert.NotNil(t, status.LastFinishedAt)
	assert.Empty(t, status.LastError)
}

func TestReconciliationScheduler_RejectsOverlappingRun(t *testing.T) {
	runner := &fakeRunner{started: make(chan struct{}, 1), release: make(chan struct{})}
	s := NewReconciliationScheduler(runner, nil, zap.NewNop(), DefaultReconciliationSchedulerConfig())

	done := make(chan error, 1)
	go func() {
		_, err := s.Run(context.Background(), reconciliation.RunOptions{})
		done <- err
	}()
	<-runner.started

	_, err := s.Run(context.Background(), reconciliation.RunOptions{})
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.True(t, s.Status().InProgress)

	close(runner.release)
	require.NoError(t, <-done)

	status := s.Status()
	assert.Equal(t, int64(1), status.Runs)
	assert.Equal(t, int64(1), status.Skipped)
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestReconciliationScheduler_RecordsLastError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("database unavailable")}
	s := NewReconciliationScheduler(runner, nil, zap.NewNop(), DefaultReconciliationSchedulerConfig())

	_, err := s.Run(context.Background(), reconciliation.RunOptions{})
	assert.Error(t, err)
	assert.Equal(t, "database unavailable", s.Status().LastError)
}

func TestReconciliationScheduler_PeriodicWithAudit(t *testing.T) {
	runner := &fakeRunner{}
	auditor := &fakeAuditor{}
	s := NewReconciliationScheduler(runner, auditor, zap.NewNop(), ReconciliationSchedulerConfig{
		Enabled:       true,
		Interval:      10 * time.Millisecond,
		RunTimeout:    time.Second,
		AuditAfterRun: true,
		RunOnStart:    true,
	})

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Status().Running)

	assert.Eventually(t, func() bool {
		return runner.calls.Load() >= 2 && auditor.calls.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.Status().Running)

	calls := runner.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, runner.calls.Load(), "no passes after stop")
}

func TestReconciliationScheduler_StopInterruptsScheduledPass(t *testing.T) {
	runner := &fakeRunner{started: make(chan struct{}, 1), release: make(chan struct{})}
	auditor := &fakeAuditor{}
	s := NewReconciliationScheduler(runner, auditor, zap.NewNop(), ReconciliationSchedulerConfig{
		Enabled:       true,
		Interval:      time.Hour,
		AuditAfterRun: true,
		RunOnStart:    true,
	})

	require.NoError(t, s.Start(context.Background()))
	<-runner.started

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	assert.Equal(t, int32(0), auditor.calls.Load(), "interrupted pass is not audited")
	assert.Contains(t, s.Status().LastError, "context canceled")
}

func TestReconciliationScheduler_Disabled(t *testing.T) {
	runner := &fakeRunner{}
	s := NewReconciliationScheduler(runner, nil, zap.NewNop(), ReconciliationSchedulerConfig{Interval: time.Millisecond})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.Status().Running)
	require.NoError(t, s.Stop(context.Background()))

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, int32(0), runner.calls.Load())
}
