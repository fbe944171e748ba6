package handler

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/josewalke/generador-de-factura-sub001/internal/application/reconciliation"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/logger"
	"github.com/josewalke/generador-de-factura-sub001/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RunTrigger starts a reconciliation pass
type RunTrigger interface {
	Run(ctx context.Context, opts reconciliation.RunOptions) (*reconciliation.Report, error)
}

// AuditTrigger starts an integrity audit
type AuditTrigger interface {
	Audit(ctx context.Context) (*reconciliation.AnomalyReport, error)
}

// ReconciliationHandler triggers passes and audits and serves their latest reports
type ReconciliationHandler struct {
	BaseHandler
	runs    RunTrigger
	audits  AuditTrigger
	reports reconciliation.ReportStore
}

// NewReconciliationHandler creates a new ReconciliationHandler. reports may be nil.
func NewReconciliationHandler(runs RunTrigger, audits AuditTrigger, reports reconciliation.ReportStore) *ReconciliationHandler {
	return &ReconciliationHandler{
		runs:    runs,
		audits:  audits,
		reports: reports,
	}
}

// TriggerRun runs one pass and returns its report. An empty body runs a
// full pass with the configured batch size. A pass cut short by a timeout
// still answers 200 with interrupted set on the report.
func (h *ReconciliationHandler) TriggerRun(c *gin.Context) {
	var req dto.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BindingError(c, err)
		return
	}

	report, err := h.runs.Run(c.Request.Context(), req.ToOptions())
	if report == nil {
		h.HandleError(c, err)
		return
	}
	if err != nil {
		logger.GetGinLogger(c).Warn("Reconciliation pass interrupted",
			zap.String("run_id", report.RunID), zap.Error(err))
	}
	h.Success(c, report)
}

// LatestRun returns the report of the most recent pass
func (h *ReconciliationHandler) LatestRun(c *gin.Context) {
	if h.reports == nil {
		h.NotFound(c, "No reconciliation pass has been recorded")
		return
	}
	report, err := h.reports.LatestRun(c.Request.Context())
	if errors.Is(err, shared.ErrNotFound) {
		h.NotFound(c, "No reconciliation pass has been recorded")
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// TriggerAudit runs the integrity audit and returns its report
func (h *ReconciliationHandler) TriggerAudit(c *gin.Context) {
	report, err := h.audits.Audit(c.Request.Context())
	if report == nil {
		h.HandleError(c, err)
		return
	}
	if err != nil {
		logger.GetGinLogger(c).Warn("Integrity audit interrupted",
			zap.String("audit_id", report.AuditID), zap.Error(err))
	}
	h.Success(c, report)
}

// LatestAudit returns the report of the most recent audit
func (h *ReconciliationHandler) LatestAudit(c *gin.Context) {
	if h.reports == nil {
		h.NotFound(c, "No integrity audit has been recorded")
		return
	}
	report, err := h.reports.LatestAudit(c.Request.Context())
	if errors.Is(err, shared.ErrNotFound) {
		h.NotFound(c, "No integrity audit has been recorded")
		return
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
