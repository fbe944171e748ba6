package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/reconciliation"
	"gorm.io/gorm"
)

// danglingCheck selects offending rows of table t with condition
type danglingCheck struct {
	table     string
	condition string
}

var danglingChecks = map[reconciliation.AnomalyKind]danglingCheck{
	reconciliation.AnomalyLineItemOrphan: {
		table: "line_items",
		condition: "(t.proforma_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM proformas p WHERE p.id = t.proforma_id))" +
			" OR (t.invoice_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM invoices i WHERE i.id = t.invoice_id))",
	},
	reconciliation.AnomalyLineItemParentAmbiguous: {
		table:     "line_items",
		condition: "(t.proforma_id IS NULL AND t.invoice_id IS NULL) OR (t.proforma_id IS NOT NULL AND t.invoice_id IS NOT NULL)",
	},
	reconciliation.AnomalyLineItemVehicleDangling: {
		table:     "line_items",
		condition: "t.vehicle_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM vehicles v WHERE v.id = t.vehicle_id)",
	},
	reconciliation.AnomalyInvoiceCompanyDangling: {
		table:     "invoices",
		condition: "NOT EXISTS (SELECT 1 FROM companies c WHERE c.id = t.company_id)",
	},
	reconciliation.AnomalyInvoiceClientDangling: {
		table:     "invoices",
		condition: "t.client_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM clients c WHERE c.id = t.client_id)",
	},
	reconciliation.AnomalyProformaCompanyDangling: {
		table:     "proformas",
		condition: "NOT EXISTS (SELECT 1 FROM companies c WHERE c.id = t.company_id)",
	},
	reconciliation.AnomalyProformaClientDangling: {
		table:     "proformas",
		condition: "t.client_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM clients c WHERE c.id = t.client_id)",
	},
	reconciliation.AnomalyInvoiceProformaLinkDangling: {
		table:     "invoices",
		condition: "t.proforma_id IS NOT NULL AND NOT EXISTS (SELECT 1 FROM proformas p WHERE p.id = t.proforma_id)",
	},
}

// GormIntegrityRepository implements reconciliation.IntegrityReader with
// read-only queries
type GormIntegrityRepository struct {
	db *gorm.DB
}

// NewGormIntegrityRepository creates a new GormIntegrityRepository
func NewGormIntegrityRepository(db *gorm.DB) *GormIntegrityRepository {
	return &GormIntegrityRepository{db: db}
}

// CountDangling returns how many rows violate kind
func (r *GormIntegrityRepository) CountDangling(ctx context.Context, kind reconciliation.AnomalyKind) (int64, error) {
	db, err := r.scope(ctx, kind)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SampleDangling returns up to limit offending ids in ascending order
func (r *GormIntegrityRepository) SampleDangling(ctx context.Context, kind reconciliation.AnomalyKind, limit int) ([]uuid.UUID, error) {
	db, err := r.scope(ctx, kind)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []uuid.UUID{}, nil
	}
	ids := make([]uuid.UUID, 0, limit)
	if err := db.Order("t.id ASC").Limit(limit).Pluck("t.id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormIntegrityRepository) scope(ctx context.Context, kind reconciliation.AnomalyKind) (*gorm.DB, error) {
	check, ok := danglingChecks[kind]
	if !ok {
		return nil, reconciliation.ErrUnknownAnomalyKind
	}
	return r.db.WithContext(ctx).Table(check.table + " AS t").Where(check.condition), nil
}

var _ reconciliation.IntegrityReader = (*GormIntegrityRepository)(nil)
