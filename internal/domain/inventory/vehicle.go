package inventory

import (
	"strings"

	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
)

// Vehicle is a unit of stock identified by its registration plate.
type Vehicle struct {
	shared.BaseEntity
	Plate string
	Make  string
	Model string
	VIN   string
}

// NewVehicle creates a new vehicle with a normalized plate
func NewVehicle(plate, vehicleMake, model, vin string) (*Vehicle, error) {
	normalized := NormalizePlate(plate)
	if normalized == "" {
		return nil, shared.NewDomainError("INVALID_PLATE", "Vehicle plate cannot be empty")
	}
	if len(normalized) > 20 {
		return nil, shared.NewDomainError("INVALID_PLATE", "Vehicle plate cannot exceed 20 characters")
	}
	return &Vehicle{
		BaseEntity: shared.NewBaseEntity(),
		Plate:      normalized,
		Make:       strings.TrimSpace(vehicleMake),
		Model:      strings.TrimSpace(model),
		VIN:        strings.ToUpper(strings.TrimSpace(vin)),
	}, nil
}

// NormalizePlate upper-cases a plate and strips spaces and dashes, so that
// "1234 abc" and "1234-ABC" name the same vehicle.
func NormalizePlate(plate string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(plate)) {
		if r == ' ' || r == '-' || r == '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
