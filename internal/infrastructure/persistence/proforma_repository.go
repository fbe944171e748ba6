package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/trade"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProformaRepository implements trade.ProformaRepository using GORM
type GormProformaRepository struct {
	db *gorm.DB
}

// NewGormProformaRepository creates a new GormProformaRepository
func NewGormProformaRepository(db *gorm.DB) *GormProformaRepository {
	return &GormProformaRepository{db: db}
}

// FindByID finds a proforma by ID with its items
func (r *GormProformaRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Proforma, error) {
	var model models.ProformaModel
	if err := preloadItems(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// ListNonTerminal returns one page of pending, partially fulfilled and
// fulfilled proformas ordered by id
func (r *GormProformaRepository) ListNonTerminal(ctx context.Context, query shared.ListQuery) ([]trade.Proforma, error) {
	var rows []models.ProformaModel
	db := preloadItems(r.db.WithContext(ctx)).
		Where("status NOT IN ?", terminalStatuses())
	if err := applyListQuery(db, query).Find(&rows).Error; err != nil {
		return nil, err
	}
	return proformasToDomain(rows), nil
}

// FindNonTerminalByParty returns the non-terminal proformas issued by company to client
func (r *GormProformaRepository) FindNonTerminalByParty(ctx context.Context, companyID, clientID uuid.UUID) ([]trade.Proforma, error) {
	var rows []models.ProformaModel
	err := preloadItems(r.db.WithContext(ctx)).
		Where("company_id = ? AND client_id = ?", companyID, clientID).
		Where("status NOT IN ?", terminalStatuses()).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return proformasToDomain(rows), nil
}

type proformaReferenceRow struct {
	ID     uuid.UUID
	Number string
	Status string
}

// ListReferences returns the id, number and status of every proforma ordered by id
func (r *GormProformaRepository) ListReferences(ctx context.Context) ([]trade.ProformaReference, error) {
	var rows []proformaReferenceRow
	err := r.db.WithContext(ctx).
		Model(&models.ProformaModel{}).
		Select("id", "number", "status").
		Order("id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	refs := make([]trade.ProformaReference, len(rows))
	for i, row := range rows {
		refs[i] = trade.ProformaReference{
			ID:     row.ID,
			Number: row.Number,
			Status: trade.ProformaStatus(row.Status),
		}
	}
	return refs, nil
}

// UpdateStatusIf sets the status only while it still equals expected
func (r *GormProformaRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next trade.ProformaStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProformaModel{}).
		Where("id = ? AND status = ?", id, string(expected)).
		Update("status", string(next))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.missOrConflict(ctx, id)
	}
	return nil
}

func (r *GormProformaRepository) missOrConflict(ctx context.Context, id uuid.UUID) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.ProformaModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrConcurrencyConflict
}

func terminalStatuses() []string {
	statuses := trade.TerminalProformaStatuses()
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}

func proformasToDomain(rows []models.ProformaModel) []trade.Proforma {
	result := make([]trade.Proforma, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result
}

var _ trade.ProformaRepository = (*GormProformaRepository)(nil)
