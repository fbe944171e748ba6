package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/reconciliation"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/trade"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/logger"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ServiceConfig contains configuration for Service
type ServiceConfig struct {
	BatchSize int
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{BatchSize: 500}
}

// Service runs reconciliation passes: invoices are linked to the proformas
// they fulfill, then proforma statuses are recomputed from vehicle coverage.
type Service struct {
	invoices   trade.InvoiceRepository
	proformas  trade.ProformaRepository
	linker     *reconciliation.Linker
	calculator *reconciliation.Calculator
	logger     *zap.Logger
	batchSize  int

	publisher shared.EventPublisher
	metrics   *telemetry.ReconciliationMetrics
	store     ReportStore
	now       func() time.Time
}

// NewService creates a new reconciliation Service
func NewService(
	invoices trade.InvoiceRepository,
	proformas trade.ProformaRepository,
	linker *reconciliation.Linker,
	calculator *reconciliation.Calculator,
	logger *zap.Logger,
	config ServiceConfig,
) *Service {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultServiceConfig().BatchSize
	}
	return &Service{
		invoices:   invoices,
		proformas:  proformas,
		linker:     linker,
		calculator: calculator,
		logger:     logger,
		batchSize:  config.BatchSize,
		now:        time.Now,
	}
}

// SetEventPublisher sets the publisher for link and status events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetMetrics sets the reconciliation metrics recorder
func (s *Service) SetMetrics(metrics *telemetry.ReconciliationMetrics) {
	s.metrics = metrics
}

// SetReportStore sets the store receiving each finished report
func (s *Service) SetReportStore(store ReportStore) {
	s.store = store
}

// Run executes one pass. Failures of single entities are collected on the
// report and the pass continues. When ctx is cancelled the partial report is
// returned with Interrupted set, together with the context error.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults(s.batchSize)

	runID := uuid.New().String()
	ctx, log := logger.WithRunID(ctx, s.logger, runID)

	spanOpts := []telemetry.SpanOption{
		telemetry.WithAttribute(telemetry.SpanAttrRunID, runID),
		telemetry.WithAttribute(telemetry.SpanAttrDryRun, opts.DryRun),
		telemetry.WithAttribute(telemetry.SpanAttrBatchSize, opts.BatchSize),
	}
	if opts.CompanyID != nil {
		spanOpts = append(spanOpts, telemetry.WithAttribute(telemetry.SpanAttrCompanyID, opts.CompanyID.String()))
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "run", spanOpts...)
	defer span.End()

	report := newReport(runID, opts, s.now())
	log.Info("Reconciliation pass started",
		zap.Int("batch_size", opts.BatchSize),
		zap.Bool("dry_run", opts.DryRun))

	var runErr error
	s.phase(ctx, PhaseLink, func(ctx context.Context) {
		runErr = s.linkPhase(ctx, opts, report)
	})
	if runErr == nil {
		s.phase(ctx, PhaseStatus, func(ctx context.Context) {
			runErr = s.statusPhase(ctx, opts, report)
		})
	}
	report.finish(s.now())

	result := telemetry.RunResultCompleted
	switch {
	case runErr != nil:
		report.Interrupted = true
		result = telemetry.RunResultInterrupted
		telemetry.RecordError(span, runErr)
		log.Warn("Reconciliation pass interrupted", zap.Error(runErr), zap.Int("failures", report.Summary.Failures))
	case report.HasEnumerationFailure():
		result = telemetry.RunResultFailed
		log.Error("Reconciliation pass stopped a phase early", zap.Int("failures", report.Summary.Failures))
	default:
		telemetry.SetOK(span)
		log.Info("Reconciliation pass completed",
			zap.Int("links_created", report.Summary.LinksCreated),
			zap.Int("links_confirmed", report.Summary.LinksConfirmed),
			zap.Int("invoices_unlinked", report.Summary.InvoicesUnlinked),
			zap.Int("statuses_changed", report.Summary.StatusesChanged),
			zap.Int("conflicts", report.Summary.Conflicts),
			zap.Int("failures", report.Summary.Failures),
			zap.Duration("duration", report.Duration()))
	}
	s.metrics.RecordRun(ctx, result, opts.DryRun, report.Duration())
	s.saveReport(ctx, report)

	return report, runErr
}

func (s *Service) phase(ctx context.Context, name string, fn func(context.Context)) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", name+"_phase",
		telemetry.WithAttribute(telemetry.SpanAttrPhase, name))
	defer span.End()

	labels := map[string]string{
		telemetry.ProfileLabelOperation: "reconciliation",
		telemetry.ProfileLabelPhase:     name,
	}
	telemetry.WithProfilingLabels(ctx, labels, fn)
}

// linkPhase walks active invoices in id order. It returns only the context
// error; enumeration failures end the phase and are recorded on the report.
// Proforma references are scanned at most once per pass.
func (s *Service) linkPhase(ctx context.Context, opts RunOptions, report *Report) error {
	ctx = reconciliation.WithReferenceSnapshot(ctx, reconciliation.NewReferenceSnapshot())
	query := shared.ListQuery{Limit: opts.BatchSize, CompanyID: opts.CompanyID}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := s.invoices.ListActive(ctx, query)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			s.recordFailure(ctx, report, EntityFailure{
				Kind:       FailureKindEnumeration,
				Phase:      PhaseLink,
				EntityType: EntityInvoice,
				Error:      fmt.Sprintf("list invoices: %v", err),
			})
			return nil
		}

		for i := range page {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.reconcileInvoice(ctx, opts, &page[i], report)
		}

		if len(page) < query.Limit {
			return nil
		}
		query = query.Next(page[len(page)-1].ID)
	}
}

func (s *Service) reconcileInvoice(ctx context.Context, opts RunOptions, inv *trade.Invoice, report *Report) {
	report.Summary.InvoicesScanned++
	if !inv.IsEligible() {
		report.Summary.InvoicesSkipped++
		return
	}

	var (
		match reconciliation.Match
		err   error
	)
	if opts.DryRun {
		match, err = s.linker.Resolve(ctx, inv)
	} else {
		match, err = s.linker.Link(ctx, inv)
	}
	if err != nil {
		id := inv.ID
		s.recordFailure(ctx, report, EntityFailure{
			Kind:       failureKindOf(err),
			Phase:      PhaseLink,
			EntityType: EntityInvoice,
			EntityID:   &id,
			Error:      err.Error(),
		})
		return
	}

	switch match.Outcome {
	case reconciliation.OutcomeConfirmed:
		report.Summary.LinksConfirmed++
	case reconciliation.OutcomeLinked:
		report.Summary.LinksCreated++
	case reconciliation.OutcomeUnlinked:
		report.Summary.InvoicesUnlinked++
	case reconciliation.OutcomeStale:
		report.Summary.StaleLinks++
		logger.FromContext(ctx).Warn("Invoice keeps a link to a missing or closed proforma",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("proforma_id", match.Previous.String()))
	}

	newLink := match.ProformaID
	if match.Outcome == reconciliation.OutcomeStale {
		// the stale link is left in place
		newLink = match.Previous
	}
	report.Invoices = append(report.Invoices, InvoiceResult{
		InvoiceID: inv.ID,
		Number:    inv.Number,
		HadLink:   match.Previous,
		NewLink:   newLink,
		Step:      match.Step,
		Outcome:   match.Outcome,
		Changed:   match.Changed(),
	})
	s.metrics.RecordInvoiceOutcome(ctx, match.Outcome.String(), match.Step.String())

	if match.Changed() && !opts.DryRun {
		s.publish(ctx, trade.NewInvoiceLinkedEvent(inv, match.Previous, *match.ProformaID, match.Step.String()))
	}
}

// statusPhase walks non-terminal proformas in id order. Links written by the
// link phase are committed before it starts.
func (s *Service) statusPhase(ctx context.Context, opts RunOptions, report *Report) error {
	query := shared.ListQuery{Limit: opts.BatchSize, CompanyID: opts.CompanyID}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := s.proformas.ListNonTerminal(ctx, query)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			s.recordFailure(ctx, report, EntityFailure{
				Kind:       FailureKindEnumeration,
				Phase:      PhaseStatus,
				EntityType: EntityProforma,
				Error:      fmt.Sprintf("list proformas: %v", err),
			})
			return nil
		}

		for i := range page {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.reconcileProforma(ctx, opts, &page[i], report)
		}

		if len(page) < query.Limit {
			return nil
		}
		query = query.Next(page[len(page)-1].ID)
	}
}

func (s *Service) reconcileProforma(ctx context.Context, opts RunOptions, p *trade.Proforma, report *Report) {
	report.Summary.ProformasScanned++
	id := p.ID

	eval, err := s.calculator.Evaluate(ctx, p)
	if err != nil {
		s.recordFailure(ctx, report, EntityFailure{
			Kind:       failureKindOf(err),
			Phase:      PhaseStatus,
			EntityType: EntityProforma,
			EntityID:   &id,
			Error:      err.Error(),
		})
		return
	}

	result := ProformaResult{
		ProformaID: p.ID,
		Number:     p.Number,
		Before:     p.Status,
		After:      p.Status,
		Total:      eval.Total,
		Covered:    eval.Covered,
		Excluded:   eval.Excluded,
	}

	switch {
	case eval.Excluded:
		report.Summary.ProformasExcluded++
	case !eval.Changed(p.Status):
		report.Summary.ProformasUnchanged++
	default:
		if !opts.DryRun {
			if err := s.proformas.UpdateStatusIf(ctx, p.ID, p.Status, eval.Status); err != nil {
				s.recordFailure(ctx, report, EntityFailure{
					Kind:       failureKindOf(err),
					Phase:      PhaseStatus,
					EntityType: EntityProforma,
					EntityID:   &id,
					Error:      fmt.Sprintf("update status of proforma %s: %v", p.ID, err),
				})
				return
			}
		}
		result.After = eval.Status
		result.Changed = true
		report.Summary.StatusesChanged++
		s.metrics.RecordStatusChange(ctx, p.Status.String(), eval.Status.String())
		if !opts.DryRun {
			s.publish(ctx, trade.NewProformaStatusChangedEvent(p, p.Status, eval.Status, eval.Total, eval.Covered))
			p.Status = eval.Status
		}
	}
	report.Proformas = append(report.Proformas, result)
}

func (s *Service) recordFailure(ctx context.Context, report *Report, f EntityFailure) {
	report.addFailure(f)
	s.metrics.RecordFailure(ctx, f.Kind.String(), f.EntityType)

	fields := []zap.Field{
		zap.String("kind", f.Kind.String()),
		zap.String("phase", f.Phase),
		zap.String("entity_type", f.EntityType),
		zap.String("error", f.Error),
	}
	if f.EntityID != nil {
		fields = append(fields, zap.String("entity_id", f.EntityID.String()))
	}
	logger.FromContext(ctx).Warn("Reconciliation failure", fields...)
}

func (s *Service) publish(ctx context.Context, event shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.FromContext(ctx).Warn("Failed to publish reconciliation event",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Error(err))
	}
}

func (s *Service) saveReport(ctx context.Context, report *Report) {
	if s.store == nil {
		return
	}
	// an interrupted pass still leaves its partial report behind
	if err := s.store.SaveRun(context.WithoutCancel(ctx), report); err != nil {
		logger.FromContext(ctx).Warn("Failed to store reconciliation report", zap.Error(err))
	}
}

func failureKindOf(err error) FailureKind {
	if errors.Is(err, shared.ErrConcurrencyConflict) {
		return FailureKindConflict
	}
	return FailureKindDataAccess
}
