package models

import (
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/inventory"
)

// VehicleModel is the persistence model for the Vehicle domain entity.
// Plates are stored normalized.
type VehicleModel struct {
	BaseModel
	Plate string `gorm:"type:varchar(20);not null;uniqueIndex:idx_vehicles_plate"`
	Make  string `gorm:"type:varchar(100)"`
	Model string `gorm:"type:varchar(100)"`
	VIN   string `gorm:"column:vin;type:varchar(32)"`
}

// TableName returns the table name for GORM
func (VehicleModel) TableName() string {
	return "vehicles"
}

// ToDomain converts the persistence model to a domain Vehicle entity.
func (m *VehicleModel) ToDomain() *inventory.Vehicle {
	return &inventory.Vehicle{
		BaseEntity: m.BaseModel.ToDomain(),
		Plate:      m.Plate,
		Make:       m.Make,
		Model:      m.Model,
		VIN:        m.VIN,
	}
}

// FromDomain populates the persistence model from a domain Vehicle entity.
func (m *VehicleModel) FromDomain(v *inventory.Vehicle) {
	m.FromDomainBaseEntity(v.BaseEntity)
	m.Plate = inventory.NormalizePlate(v.Plate)
	m.Make = v.Make
	m.Model = v.Model
	m.VIN = v.VIN
}

// VehicleModelFromDomain creates a new persistence model from a domain Vehicle entity.
func VehicleModelFromDomain(v *inventory.Vehicle) *VehicleModel {
	m := &VehicleModel{}
	m.FromDomain(v)
	return m
}
