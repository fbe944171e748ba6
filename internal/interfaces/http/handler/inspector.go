package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/application/reconciliation"
	"github.com/josewalke/generador-de-factura-sub001/internal/interfaces/http/dto"
)

// EntityInspector answers read-only questions about single entities
type EntityInspector interface {
	ExplainInvoice(ctx context.Context, id uuid.UUID) (*reconciliation.InvoiceExplanation, error)
	ExplainProforma(ctx context.Context, id uuid.UUID) (*reconciliation.ProformaExplanation, error)
	VehicleCoverage(ctx context.Context, plate string) (*reconciliation.VehicleInfo, error)
}

// InspectorHandler explains linker and calculator decisions without writing
type InspectorHandler struct {
	BaseHandler
	inspector EntityInspector
}

// NewInspectorHandler creates a new InspectorHandler
func NewInspectorHandler(inspector EntityInspector) *InspectorHandler {
	return &InspectorHandler{inspector: inspector}
}

// InvoiceMatch returns the proforma the linker would pick for an invoice
func (h *InspectorHandler) InvoiceMatch(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	explanation, err := h.inspector.ExplainInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, explanation)
}

// ProformaCoverage returns the vehicle coverage and derived status of a proforma
func (h *InspectorHandler) ProformaCoverage(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}
	explanation, err := h.inspector.ExplainProforma(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, explanation)
}

// VehicleCoverage reports whether an active invoice covers the vehicle with a plate
func (h *InspectorHandler) VehicleCoverage(c *gin.Context) {
	var req dto.PlateRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	info, err := h.inspector.VehicleCoverage(c.Request.Context(), req.Plate)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, info)
}

func (h *InspectorHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BindingError(c, err)
		return uuid.Nil, false
	}
	return uuid.MustParse(req.ID), true
}
