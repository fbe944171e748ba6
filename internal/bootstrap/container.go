// Package bootstrap wires the reconciliation services shared by the server
// and the command line tool.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	appreconciliation "github.com/josewalke/generador-de-factura-sub001/internal/application/reconciliation"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/reconciliation"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/cache"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/config"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/event"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/logger"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/persistence"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Options tune what New wires besides the core services
type Options struct {
	// Meter receives the reconciliation instruments; nil disables them
	Meter metric.Meter
	// AllowInMemoryReports falls back to process-local reports when Redis
	// is enabled but unreachable
	AllowInMemoryReports bool
}

// Container holds the wired reconciliation services and the resources they use
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Database *persistence.Database
	EventBus *event.InMemoryEventBus
	Reports  cache.ClosableReportStore
	Metrics  *telemetry.ReconciliationMetrics

	Service   *appreconciliation.Service
	Auditor   *appreconciliation.Auditor
	Inspector *appreconciliation.Inspector
}

// New opens the database and builds every service on top of it. The event
// bus is started; Close stops it and releases the rest.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, opts Options) (*Container, error) {
	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))

	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLogger))
	if err != nil {
		return nil, err
	}
	c := &Container{Config: cfg, Logger: log, Database: db}

	if err := c.prepareDatabase(); err != nil {
		_ = db.Close()
		return nil, err
	}

	if opts.Meter != nil {
		c.Metrics, err = telemetry.NewReconciliationMetrics(telemetry.ReconciliationMetricsConfig{
			Meter:  opts.Meter,
			Logger: log,
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to create reconciliation metrics: %w", err)
		}
	}

	c.Reports, err = cache.NewReportStoreFactory(cfg.Redis, cfg.Reconciliation.ReportTTL,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(opts.AllowInMemoryReports),
	).CreateStore()
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	c.EventBus = event.NewInMemoryEventBus(log)
	changeLog := appreconciliation.NewChangeLogHandler(log)
	c.EventBus.Subscribe(changeLog, changeLog.EventTypes()...)
	if err := c.EventBus.Start(ctx); err != nil {
		_ = c.Reports.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to start event bus: %w", err)
	}

	c.buildServices()
	return c, nil
}

// prepareDatabase installs tracing and, for sqlite, creates the schema.
// Postgres schemas are managed by the migrate command.
func (c *Container) prepareDatabase() error {
	if c.Config.Telemetry.DBTraceEnabled {
		dbSystem := "postgresql"
		if c.Database.Driver == config.DriverSQLite {
			dbSystem = "sqlite"
		}
		plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      c.Config.Telemetry.DBLogFullSQL,
			SlowQueryThresh: c.Config.Telemetry.DBSlowQueryThresh,
			DBSystem:        dbSystem,
		}, c.Logger)
		if err := plugin.Register(c.Database.DB); err != nil {
			return fmt.Errorf("failed to register database tracing: %w", err)
		}
	}

	if c.Database.Driver == config.DriverSQLite {
		if err := persistence.AutoMigrate(c.Database.DB); err != nil {
			return fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
	}
	return nil
}

func (c *Container) buildServices() {
	db := c.Database.DB
	invoices := persistence.NewGormInvoiceRepository(db)
	proformas := persistence.NewGormProformaRepository(db)
	companies := persistence.NewGormCompanyRepository(db)
	clients := persistence.NewGormClientRepository(db)
	vehicles := persistence.NewGormVehicleRepository(db)
	integrity := persistence.NewGormIntegrityRepository(db)

	linker := reconciliation.NewLinker(proformas, invoices, reconciliation.DefaultStrategies(proformas)...)
	calculator := reconciliation.NewCalculator(invoices)

	c.Service = appreconciliation.NewService(invoices, proformas, linker, calculator, c.Logger,
		appreconciliation.ServiceConfig{BatchSize: c.Config.Reconciliation.BatchSize})
	c.Service.SetEventPublisher(c.EventBus)
	c.Service.SetReportStore(c.Reports)

	c.Auditor = appreconciliation.NewAuditor(integrity, c.Logger,
		appreconciliation.AuditorConfig{SampleLimit: c.Config.Reconciliation.SampleLimit})
	c.Auditor.SetReportStore(c.Reports)

	if c.Metrics != nil {
		c.Service.SetMetrics(c.Metrics)
		c.Auditor.SetMetrics(c.Metrics)
	}

	c.Inspector = appreconciliation.NewInspector(invoices, proformas, companies, clients, vehicles, linker, calculator)
}

// Close stops the event bus and releases the report store and the database
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	if err := c.EventBus.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("event bus: %w", err))
	}
	if err := c.Reports.Close(); err != nil {
		errs = append(errs, fmt.Errorf("report store: %w", err))
	}
	if err := c.Database.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}
	return errors.Join(errs...)
}
