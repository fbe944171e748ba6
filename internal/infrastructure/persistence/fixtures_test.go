package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/inventory"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/partner"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/trade"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/config"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var issuedAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// newSQLiteDB opens a migrated in-memory database closed at test end
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, AutoMigrate(db.DB))
	return db.DB
}

// seeder inserts domain objects through their persistence models
type seeder struct {
	t  *testing.T
	db *gorm.DB
}

func (s seeder) company(name string) *partner.Company {
	s.t.Helper()
	c, err := partner.NewCompany(name, "B"+name)
	require.NoError(s.t, err)
	require.NoError(s.t, s.db.Create(models.CompanyModelFromDomain(c)).Error)
	return c
}

func (s seeder) client(name string) *partner.Client {
	s.t.Helper()
	c, err := partner.NewClient(name, "", name+"@example.com")
	require.NoError(s.t, err)
	require.NoError(s.t, s.db.Create(models.ClientModelFromDomain(c)).Error)
	return c
}

func (s seeder) vehicle(plate string) *inventory.Vehicle {
	s.t.Helper()
	v, err := inventory.NewVehicle(plate, "Seat", "Ibiza", "")
	require.NoError(s.t, err)
	require.NoError(s.t, s.db.Create(models.VehicleModelFromDomain(v)).Error)
	return v
}

func (s seeder) proforma(number string, companyID uuid.UUID, clientID *uuid.UUID, status trade.ProformaStatus, vehicleIDs ...uuid.UUID) *trade.Proforma {
	s.t.Helper()
	p, err := trade.NewProforma(number, companyID, clientID, issuedAt)
	require.NoError(s.t, err)
	p.Status = status
	for _, id := range vehicleIDs {
		vid := id
		p.AddItem(&vid, "vehicle", decimal.NewFromInt(1), decimal.NewFromInt(15000))
	}
	p.AddItem(nil, "transport", decimal.NewFromInt(1), decimal.NewFromInt(300))
	require.NoError(s.t, s.db.Create(models.ProformaModelFromDomain(p)).Error)
	return p
}

type invoiceOption func(*trade.Invoice)

func voided() invoiceOption {
	return func(inv *trade.Invoice) { inv.State = trade.InvoiceStateVoided }
}

func deleted() invoiceOption {
	return func(inv *trade.Invoice) { inv.Active = false }
}

func linkedTo(proformaID uuid.UUID) invoiceOption {
	return func(inv *trade.Invoice) { inv.ProformaID = &proformaID }
}

func withVehicles(ids ...uuid.UUID) invoiceOption {
	return func(inv *trade.Invoice) {
		for _, id := range ids {
			vid := id
			inv.AddItem(&vid, "vehicle", decimal.NewFromInt(1), decimal.NewFromInt(15000))
		}
	}
}

func (s seeder) invoice(number string, companyID uuid.UUID, clientID *uuid.UUID, opts ...invoiceOption) *trade.Invoice {
	s.t.Helper()
	inv, err := trade.NewInvoice(number, companyID, clientID, issuedAt)
	require.NoError(s.t, err)
	for _, opt := range opts {
		opt(inv)
	}
	require.NoError(s.t, s.db.Create(models.InvoiceModelFromDomain(inv)).Error)
	return inv
}

func ptr(id uuid.UUID) *uuid.UUID {
	return &id
}
