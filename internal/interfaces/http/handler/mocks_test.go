package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/application/reconciliation"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/persistence"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/scheduler"
	"github.com/josewalke/generador-de-factura-sub001/internal/interfaces/http/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type MockRunTrigger struct {
	mock.Mock
}

func (m *MockRunTrigger) Run(ctx context.Context, opts reconciliation.RunOptions) (*reconciliation.Report, error) {
	args := m.Called(ctx, opts)
	report, _ := args.Get(0).(*reconciliation.Report)
	return report, args.Error(1)
}

type MockAuditTrigger struct {
	mock.Mock
}

func (m *MockAuditTrigger) Audit(ctx context.Context) (*reconciliation.AnomalyReport, error) {
	args := m.Called(ctx)
	report, _ := args.Get(0).(*reconciliation.AnomalyReport)
	return report, args.Error(1)
}

type MockInspector struct {
	mock.Mock
}

func (m *MockInspector) ExplainInvoice(ctx context.Context, id uuid.UUID) (*reconciliation.InvoiceExplanation, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*reconciliation.InvoiceExplanation)
	return out, args.Error(1)
}

func (m *MockInspector) ExplainProforma(ctx context.Context, id uuid.UUID) (*reconciliation.ProformaExplanation, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*reconciliation.ProformaExplanation)
	return out, args.Error(1)
}

func (m *MockInspector) VehicleCoverage(ctx context.Context, plate string) (*reconciliation.VehicleInfo, error) {
	args := m.Called(ctx, plate)
	out, _ := args.Get(0).(*reconciliation.VehicleInfo)
	return out, args.Error(1)
}

type MockDatabaseChecker struct {
	mock.Mock
}

func (m *MockDatabaseChecker) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDatabaseChecker) Stats() (persistence.ConnectionStats, error) {
	args := m.Called()
	return args.Get(0).(persistence.ConnectionStats), args.Error(1)
}

type fakeSchedulerReporter struct {
	status scheduler.Status
}

func (f fakeSchedulerReporter) Status() scheduler.Status {
	return f.status
}

// serve runs one request through a fresh engine with a single route
func serve(method, route, target, body string, handlers ...gin.HandlerFunc) *httptest.ResponseRecorder {
	engine := gin.New()
	engine.Handle(method, route, handlers...)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

// decode parses a standard response and re-decodes its data into out
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	if out != nil && resp.Data != nil {
		raw, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out))
	}
	return resp
}
