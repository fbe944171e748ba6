package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Run results used as the result attribute.
const (
	RunResultCompleted   = "completed"
	RunResultInterrupted = "interrupted"
	RunResultFailed      = "failed"
)

// ReconciliationMetrics records what reconciliation passes and audits do.
// A nil *ReconciliationMetrics is valid and records nothing.
type ReconciliationMetrics struct {
	logger *zap.Logger

	runsTotal          *Counter
	runDuration        *Histogram
	invoiceOutcomes    *Counter
	statusChangesTotal *Counter
	failuresTotal      *Counter
	anomalies          *Gauge
}

// ReconciliationMetricsConfig holds configuration for ReconciliationMetrics.
type ReconciliationMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewReconciliationMetrics creates the reconciliation instruments on cfg.Meter.
func NewReconciliationMetrics(cfg ReconciliationMetricsConfig) (*ReconciliationMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &ReconciliationMetrics{logger: logger}
	var err error

	if m.runsTotal, err = NewCounter(cfg.Meter, "recon_runs_total",
		"Reconciliation passes by result", "{runs}"); err != nil {
		return nil, err
	}
	if m.runDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "recon_run_duration_seconds",
		Description: "Duration of a reconciliation pass",
		Unit:        "s",
		Boundaries:  RunDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.invoiceOutcomes, err = NewCounter(cfg.Meter, "recon_invoice_outcomes_total",
		"Invoices processed by link outcome and match step", "{invoices}"); err != nil {
		return nil, err
	}
	if m.statusChangesTotal, err = NewCounter(cfg.Meter, "recon_status_changes_total",
		"Proforma status transitions written", "{proformas}"); err != nil {
		return nil, err
	}
	if m.failuresTotal, err = NewCounter(cfg.Meter, "recon_failures_total",
		"Per-entity failures during a pass", "{failures}"); err != nil {
		return nil, err
	}
	if m.anomalies, err = NewGauge(cfg.Meter, "recon_integrity_anomalies",
		"Rows violating an integrity check at the last audit", "{rows}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordRun records one finished pass.
func (m *ReconciliationMetrics) RecordRun(ctx context.Context, result string, dryRun bool, d time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.Inc(ctx, AttrResult.String(result), AttrDryRun.Bool(dryRun))
	m.runDuration.RecordDuration(ctx, d, AttrResult.String(result), AttrDryRun.Bool(dryRun))
}

// RecordInvoiceOutcome records the linker's decision for one invoice.
func (m *ReconciliationMetrics) RecordInvoiceOutcome(ctx context.Context, outcome, step string) {
	if m == nil {
		return
	}
	m.invoiceOutcomes.Inc(ctx, AttrOutcome.String(outcome), AttrMatchStep.String(step))
}

// RecordStatusChange records a proforma status transition.
func (m *ReconciliationMetrics) RecordStatusChange(ctx context.Context, from, to string) {
	if m == nil {
		return
	}
	m.statusChangesTotal.Inc(ctx, AttrFromStatus.String(from), AttrToStatus.String(to))
}

// RecordFailure records one per-entity failure.
func (m *ReconciliationMetrics) RecordFailure(ctx context.Context, kind, entityType string) {
	if m == nil {
		return
	}
	m.failuresTotal.Inc(ctx, AttrFailureKind.String(kind), AttrEntityType.String(entityType))
}

// RecordAnomalies records the row count of one integrity check.
func (m *ReconciliationMetrics) RecordAnomalies(ctx context.Context, kind string, count int64) {
	if m == nil {
		return
	}
	m.anomalies.Record(ctx, count, AttrAnomalyKind.String(kind))
}
