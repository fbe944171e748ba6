package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/application/reconciliation"
	domain "github.com/josewalke/generador-de-factura-sub001/internal/domain/reconciliation"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/trade"
	"github.com/josewalke/generador-de-factura-sub001/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestInspectorHandler_InvoiceMatch(t *testing.T) {
	invoiceID, proformaID := uuid.New(), uuid.New()
	inspector := new(MockInspector)
	inspector.On("ExplainInvoice", mock.Anything, invoiceID).Return(&reconciliation.InvoiceExplanation{
		InvoiceID:  invoiceID,
		Eligible:   true,
		Outcome:    domain.OutcomeLinked,
		ProformaID: &proformaID,
	}, nil)
	h := NewInspectorHandler(inspector)

	w := serve(http.MethodGet, "/invoices/:id/match", "/invoices/"+invoiceID.String()+"/match", "", h.InvoiceMatch)

	require.Equal(t, http.StatusOK, w.Code)
	var out reconciliation.InvoiceExplanation
	decode(t, w, &out)
	assert.Equal(t, invoiceID, out.InvoiceID)
	require.NotNil(t, out.ProformaID)
	assert.Equal(t, proformaID, *out.ProformaID)
	inspector.AssertExpectations(t)
}

func TestInspectorHandler_RejectsMalformedID(t *testing.T) {
	inspector := new(MockInspector)
	h := NewInspectorHandler(inspector)

	w := serve(http.MethodGet, "/invoices/:id/match", "/invoices/not-a-uuid/match", "", h.InvoiceMatch)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	inspector.AssertNotCalled(t, "ExplainInvoice", mock.Anything, mock.Anything)
}

func TestInspectorHandler_ProformaCoverage(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		id := uuid.New()
		inspector := new(MockInspector)
		inspector.On("ExplainProforma", mock.Anything, id).Return(&reconciliation.ProformaExplanation{
			ProformaID:    id,
			Status:        trade.ProformaStatusPending,
			DerivedStatus: trade.ProformaStatusPartiallyFulfilled,
			Total:         2,
			Covered:       1,
			WouldChange:   true,
		}, nil)
		h := NewInspectorHandler(inspector)

		w := serve(http.MethodGet, "/proformas/:id/coverage", "/proformas/"+id.String()+"/coverage", "", h.ProformaCoverage)

		require.Equal(t, http.StatusOK, w.Code)
		var out reconciliation.ProformaExplanation
		decode(t, w, &out)
		assert.Equal(t, trade.ProformaStatusPartiallyFulfilled, out.DerivedStatus)
		assert.Equal(t, 1, out.Covered)
		assert.True(t, out.WouldChange)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New()
		inspector := new(MockInspector)
		inspector.On("ExplainProforma", mock.Anything, id).Return(nil, shared.ErrNotFound)
		h := NewInspectorHandler(inspector)

		w := serve(http.MethodGet, "/proformas/:id/coverage", "/proformas/"+id.String()+"/coverage", "", h.ProformaCoverage)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestInspectorHandler_VehicleCoverage(t *testing.T) {
	vehicleID := uuid.New()
	inspector := new(MockInspector)
	inspector.On("VehicleCoverage", mock.Anything, "1234abc").
		Return(&reconciliation.VehicleInfo{VehicleID: vehicleID, Plate: "1234ABC", Covered: true}, nil)
	h := NewInspectorHandler(inspector)

	w := serve(http.MethodGet, "/vehicles/:plate/coverage", "/vehicles/1234abc/coverage", "", h.VehicleCoverage)

	require.Equal(t, http.StatusOK, w.Code)
	var out reconciliation.VehicleInfo
	decode(t, w, &out)
	assert.Equal(t, vehicleID, out.VehicleID)
	assert.True(t, out.Covered)
	inspector.AssertExpectations(t)
}
