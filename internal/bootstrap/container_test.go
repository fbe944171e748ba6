package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/josewalke/generador-de-factura-sub001/internal/application/reconciliation"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/inventory"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/partner"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/trade"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/config"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		App:      config.AppConfig{Name: "proforma-reconciler", Env: "test"},
		Database: config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"},
		Log:      config.LogConfig{Level: "error"},
		Reconciliation: config.ReconciliationConfig{
			BatchSize:   10,
			SampleLimit: 5,
		},
		Telemetry: config.TelemetryConfig{DBSlowQueryThresh: time.Second},
	}
}

func newContainer(t *testing.T, opts Options) *Container {
	t.Helper()
	c, err := New(context.Background(), testConfig(), zap.NewNop(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}

func TestNew_RejectsUnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = "oracle"

	_, err := New(context.Background(), cfg, zap.NewNop(), Options{})
	assert.Error(t, err)
}

func TestContainer_RunAndAudit(t *testing.T) {
	provider := metric.NewMeterProvider(metric.WithReader(metric.NewManualReader()))
	c := newContainer(t, Options{Meter: provider.Meter("test")})
	require.NotNil(t, c.Metrics)
	db := c.Database.DB

	company, err := partner.NewCompany("Motors", "B12345678")
	require.NoError(t, err)
	require.NoError(t, db.Create(models.CompanyModelFromDomain(company)).Error)

	client, err := partner.NewClient("Ana", "", "ana@example.com")
	require.NoError(t, err)
	require.NoError(t, db.Create(models.ClientModelFromDomain(client)).Error)

	vehicle, err := inventory.NewVehicle("1234BCD", "Seat", "Ibiza", "")
	require.NoError(t, err)
	require.NoError(t, db.Create(models.VehicleModelFromDomain(vehicle)).Error)

	issued := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	proforma, err := trade.NewProforma("PF-1", company.ID, &client.ID, issued)
	require.NoError(t, err)
	proforma.AddItem(&vehicle.ID, "vehicle", decimal.NewFromInt(1), decimal.NewFromInt(15000))
	require.NoError(t, db.Create(models.ProformaModelFromDomain(proforma)).Error)

	invoice, err := trade.NewInvoice("F-1", company.ID, &client.ID, issued.Add(24*time.Hour))
	require.NoError(t, err)
	invoice.AddItem(&vehicle.ID, "vehicle", decimal.NewFromInt(1), decimal.NewFromInt(15000))
	require.NoError(t, db.Create(models.InvoiceModelFromDomain(invoice)).Error)

	ctx := context.Background()
	report, err := c.Service.Run(ctx, reconciliation.RunOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.LinksCreated)
	assert.Equal(t, 1, report.Summary.StatusesChanged)

	latest, err := c.Reports.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, latest.RunID)

	explained, err := c.Inspector.ExplainProforma(ctx, proforma.ID)
	require.NoError(t, err)
	assert.NotNil(t, explained)

	audit, err := c.Auditor.Audit(ctx)
	require.NoError(t, err)
	assert.Zero(t, audit.TotalAnomalies)

	latestAudit, err := c.Reports.LatestAudit(ctx)
	require.NoError(t, err)
	assert.Equal(t, audit.AuditID, latestAudit.AuditID)
}

func TestContainer_WithoutMeter(t *testing.T) {
	c := newContainer(t, Options{})
	assert.Nil(t, c.Metrics)

	report, err := c.Service.Run(context.Background(), reconciliation.RunOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Zero(t, report.Summary.InvoicesScanned)
}
