package persistence

import (
	"errors"

	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table from the models. Postgres
// deployments use the SQL migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// applyListQuery adds keyset pagination and the optional company scope
func applyListQuery(db *gorm.DB, query shared.ListQuery) *gorm.DB {
	if query.HasCursor() {
		db = db.Where("id > ?", query.AfterID)
	}
	if query.CompanyID != nil {
		db = db.Where("company_id = ?", *query.CompanyID)
	}
	db = db.Order("id ASC")
	if query.Limit > 0 {
		db = db.Limit(query.Limit)
	}
	return db
}

// preloadItems loads line items in document order
func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}
