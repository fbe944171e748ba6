package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/trade"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements trade.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by ID with its items
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Invoice, error) {
	var model models.InvoiceModel
	if err := preloadItems(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// ListActive returns one page of active invoices ordered by id, voided ones included
func (r *GormInvoiceRepository) ListActive(ctx context.Context, query shared.ListQuery) ([]trade.Invoice, error) {
	var rows []models.InvoiceModel
	db := preloadItems(r.db.WithContext(ctx)).Where("active = ?", true)
	if err := applyListQuery(db, query).Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]trade.Invoice, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, nil
}

// CoveredVehicles returns, in ascending order, which of vehicleIDs appear on a
// line of an active, non-voided invoice
func (r *GormInvoiceRepository) CoveredVehicles(ctx context.Context, vehicleIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(vehicleIDs) == 0 {
		return nil, nil
	}
	var covered []uuid.UUID
	err := r.db.WithContext(ctx).
		Table("line_items AS li").
		Joins("JOIN invoices AS i ON i.id = li.invoice_id").
		Where("i.active = ? AND i.state <> ?", true, string(trade.InvoiceStateVoided)).
		Where("li.vehicle_id IN ?", vehicleIDs).
		Distinct("li.vehicle_id").
		Order("li.vehicle_id ASC").
		Pluck("li.vehicle_id", &covered).Error
	if err != nil {
		return nil, err
	}
	return covered, nil
}

// UpdateProformaLinkIf sets the proforma link only while it still equals
// expected. A nil expected matches an unlinked invoice and a nil next clears
// the link.
func (r *GormInvoiceRepository) UpdateProformaLinkIf(ctx context.Context, id uuid.UUID, expected, next *uuid.UUID) error {
	db := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Where("id = ?", id)
	if expected == nil {
		db = db.Where("proforma_id IS NULL")
	} else {
		db = db.Where("proforma_id = ?", *expected)
	}

	var value any
	if next != nil {
		value = *next
	}
	result := db.Update("proforma_id", value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}
	return nil
}

var _ trade.InvoiceRepository = (*GormInvoiceRepository)(nil)
