package reconciliation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/trade"
)

// CoverageReader reports which vehicles are invoiced by an active,
// non-voided invoice
type CoverageReader interface {
	CoveredVehicles(ctx context.Context, vehicleIDs []uuid.UUID) ([]uuid.UUID, error)
}

// Classify derives a proforma status from its vehicle coverage
func Classify(total, covered int) trade.ProformaStatus {
	switch {
	case covered <= 0:
		return trade.ProformaStatusPending
	case covered >= total:
		return trade.ProformaStatusFulfilled
	default:
		return trade.ProformaStatusPartiallyFulfilled
	}
}

// Evaluation is the calculator's view of one proforma
type Evaluation struct {
	Total   int
	Covered int
	// Status is the derived status, or the stored one when Excluded or Terminal
	Status trade.ProformaStatus
	// Excluded is set for proformas without vehicle lines
	Excluded bool
	// Terminal is set for voided and cancelled proformas
	Terminal bool
	// CoveredIDs lists the covered vehicles in ascending order
	CoveredIDs []uuid.UUID
}

// Changed reports whether the derived status differs from current
func (e Evaluation) Changed(current trade.ProformaStatus) bool {
	return !e.Excluded && !e.Terminal && e.Status != current
}

// Calculator computes proforma fulfillment from invoice coverage
type Calculator struct {
	coverage CoverageReader
}

// NewCalculator creates a new Calculator
func NewCalculator(coverage CoverageReader) *Calculator {
	return &Calculator{coverage: coverage}
}

// Evaluate classifies p. Terminal proformas and proformas without vehicles
// are reported but not classified.
func (c *Calculator) Evaluate(ctx context.Context, p *trade.Proforma) (Evaluation, error) {
	if p.IsTerminal() {
		return Evaluation{Status: p.Status, Terminal: true}, nil
	}

	vehicles := p.VehicleIDs()
	if len(vehicles) == 0 {
		return Evaluation{Status: p.Status, Excluded: true}, nil
	}

	covered, err := c.coverage.CoveredVehicles(ctx, vehicles)
	if err != nil {
		return Evaluation{}, fmt.Errorf("coverage for proforma %s: %w", p.ID, err)
	}

	listed := make(map[uuid.UUID]struct{}, len(vehicles))
	for _, id := range vehicles {
		listed[id] = struct{}{}
	}
	coveredIDs := make([]uuid.UUID, 0, len(covered))
	for _, id := range covered {
		if _, ok := listed[id]; !ok {
			continue
		}
		delete(listed, id)
		coveredIDs = append(coveredIDs, id)
	}
	sortIDs(coveredIDs)

	return Evaluation{
		Total:      len(vehicles),
		Covered:    len(coveredIDs),
		Status:     Classify(len(vehicles), len(coveredIDs)),
		CoveredIDs: coveredIDs,
	}, nil
}
