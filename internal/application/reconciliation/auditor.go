package reconciliation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/reconciliation"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/logger"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// AuditorConfig contains configuration for Auditor
type AuditorConfig struct {
	// SampleLimit bounds the offending ids kept per finding
	SampleLimit int
}

// DefaultAuditorConfig returns default configuration
func DefaultAuditorConfig() AuditorConfig {
	return AuditorConfig{SampleLimit: 20}
}

// Auditor reports referential integrity anomalies. It never writes to the
// store.
type Auditor struct {
	reader      reconciliation.IntegrityReader
	logger      *zap.Logger
	sampleLimit int
	kinds       []reconciliation.AnomalyKind

	metrics *telemetry.ReconciliationMetrics
	store   ReportStore
	now     func() time.Time
}

// NewAuditor creates a new Auditor checking every known anomaly kind
func NewAuditor(reader reconciliation.IntegrityReader, logger *zap.Logger, config AuditorConfig) *Auditor {
	if config.SampleLimit < 0 {
		config.SampleLimit = 0
	}
	return &Auditor{
		reader:      reader,
		logger:      logger,
		sampleLimit: config.SampleLimit,
		kinds:       reconciliation.AllAnomalyKinds(),
		now:         time.Now,
	}
}

// SetMetrics sets the reconciliation metrics recorder
func (a *Auditor) SetMetrics(metrics *telemetry.ReconciliationMetrics) {
	a.metrics = metrics
}

// SetReportStore sets the store receiving each finished audit
func (a *Auditor) SetReportStore(store ReportStore) {
	a.store = store
}

// Audit checks every anomaly kind. A failed check is recorded on its finding
// and the audit moves on. On cancellation the partial report is returned with
// the context error.
func (a *Auditor) Audit(ctx context.Context) (*AnomalyReport, error) {
	auditID := uuid.New().String()
	ctx, log := logger.WithRunID(ctx, a.logger, auditID)
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "audit",
		telemetry.WithAttribute(telemetry.SpanAttrRunID, auditID))
	defer span.End()

	report := &AnomalyReport{
		AuditID:     auditID,
		StartedAt:   a.now(),
		SampleLimit: a.sampleLimit,
		Findings:    make([]Finding, 0, len(a.kinds)),
	}

	var auditErr error
	for _, kind := range a.kinds {
		if err := ctx.Err(); err != nil {
			auditErr = err
			break
		}
		finding := a.check(ctx, kind)
		report.Findings = append(report.Findings, finding)
		report.TotalAnomalies += finding.Count
	}

	report.FinishedAt = a.now()
	report.DurationMillis = report.FinishedAt.Sub(report.StartedAt).Milliseconds()

	if auditErr != nil {
		report.Interrupted = true
		telemetry.RecordError(span, auditErr)
		log.Warn("Integrity audit interrupted", zap.Error(auditErr))
	} else {
		telemetry.SetOK(span)
		log.Info("Integrity audit completed",
			zap.Int64("total_anomalies", report.TotalAnomalies),
			zap.Int64("duration_ms", report.DurationMillis))
	}

	if a.store != nil {
		if err := a.store.SaveAudit(context.WithoutCancel(ctx), report); err != nil {
			log.Warn("Failed to store audit report", zap.Error(err))
		}
	}
	return report, auditErr
}

func (a *Auditor) check(ctx context.Context, kind reconciliation.AnomalyKind) Finding {
	finding := Finding{
		Kind:       kind,
		EntityType: kind.EntityType(),
		SampleIDs:  []uuid.UUID{},
	}

	count, err := a.reader.CountDangling(ctx, kind)
	if err != nil {
		return a.failed(ctx, finding, err)
	}
	finding.Count = count
	a.metrics.RecordAnomalies(ctx, kind.String(), count)

	if count == 0 || a.sampleLimit == 0 {
		return finding
	}
	ids, err := a.reader.SampleDangling(ctx, kind, a.sampleLimit)
	if err != nil {
		return a.failed(ctx, finding, err)
	}
	shared.SortIDs(ids)
	if len(ids) > a.sampleLimit {
		ids = ids[:a.sampleLimit]
	}
	finding.SampleIDs = ids

	logger.FromContext(ctx).Warn("Integrity anomalies found",
		zap.String("kind", kind.String()),
		zap.Int64("count", count))
	return finding
}

func (a *Auditor) failed(ctx context.Context, finding Finding, err error) Finding {
	finding.Error = err.Error()
	a.metrics.RecordFailure(ctx, FailureKindDataAccess.String(), finding.EntityType)
	logger.FromContext(ctx).Warn("Integrity check failed",
		zap.String("kind", finding.Kind.String()),
		zap.Error(err))
	return finding
}
