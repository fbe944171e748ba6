package inventory

import (
	"context"

	"github.com/google/uuid"
)

// VehicleRepository defines read access to vehicles
type VehicleRepository interface {
	// FindByID finds a vehicle by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)

	// FindByPlate finds a vehicle by plate; the plate is normalized first
	FindByPlate(ctx context.Context, plate string) (*Vehicle, error)
}
