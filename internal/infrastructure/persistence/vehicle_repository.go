package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/inventory"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
	"github.com/josewalke/generador-de-factura-sub001/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormVehicleRepository implements inventory.VehicleRepository using GORM
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GormVehicleRepository
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// FindByID finds a vehicle by its ID
func (r *GormVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Vehicle, error) {
	var model models.VehicleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindByPlate finds a vehicle by its normalized plate
func (r *GormVehicleRepository) FindByPlate(ctx context.Context, plate string) (*inventory.Vehicle, error) {
	normalized := inventory.NormalizePlate(plate)
	if normalized == "" {
		return nil, fmt.Errorf("%w: vehicle plate cannot be empty", shared.ErrInvalidInput)
	}
	var model models.VehicleModel
	if err := r.db.WithContext(ctx).First(&model, "plate = ?", normalized).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

var _ inventory.VehicleRepository = (*GormVehicleRepository)(nil)
