package reconciliation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/inventory"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/partner"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/reconciliation"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/trade"
)

// StrategyInfo describes one step of the matching cascade
type StrategyInfo struct {
	Step        reconciliation.MatchStep `json:"step"`
	Description string                   `json:"description"`
}

// InvoiceExplanation is the linker's decision for one invoice, computed
// without writing it
type InvoiceExplanation struct {
	InvoiceID      uuid.UUID                  `json:"invoice_id"`
	Number         string                     `json:"number"`
	CompanyID      uuid.UUID                  `json:"company_id"`
	CompanyName    string                     `json:"company_name,omitempty"`
	ClientID       *uuid.UUID                 `json:"client_id,omitempty"`
	ClientName     string                     `json:"client_name,omitempty"`
	Eligible       bool                       `json:"eligible"`
	CurrentLink    *uuid.UUID                 `json:"current_link,omitempty"`
	Outcome        reconciliation.LinkOutcome `json:"outcome"`
	Step           reconciliation.MatchStep   `json:"step,omitempty"`
	ProformaID     *uuid.UUID                 `json:"proforma_id,omitempty"`
	ProformaNumber string                     `json:"proforma_number,omitempty"`
	WouldChange    bool                       `json:"would_change"`
	Strategies     []StrategyInfo             `json:"strategies"`
}

// VehicleInfo is the coverage of one vehicle
type VehicleInfo struct {
	VehicleID uuid.UUID `json:"vehicle_id"`
	Plate     string    `json:"plate,omitempty"`
	Covered   bool      `json:"covered"`
}

// ProformaExplanation is the calculator's view of one proforma
type ProformaExplanation struct {
	ProformaID    uuid.UUID            `json:"proforma_id"`
	Number        string               `json:"number"`
	Status        trade.ProformaStatus `json:"status"`
	DerivedStatus trade.ProformaStatus `json:"derived_status"`
	Total         int                  `json:"total_vehicles"`
	Covered       int                  `json:"covered_vehicles"`
	Excluded      bool                 `json:"excluded"`
	Terminal      bool                 `json:"terminal"`
	WouldChange   bool                 `json:"would_change"`
	Vehicles      []VehicleInfo        `json:"vehicles"`
}

// Inspector answers read-only questions about single entities using the same
// linker and calculator as a pass
type Inspector struct {
	invoices   trade.InvoiceRepository
	proformas  trade.ProformaRepository
	companies  partner.CompanyRepository
	clients    partner.ClientRepository
	vehicles   inventory.VehicleRepository
	linker     *reconciliation.Linker
	calculator *reconciliation.Calculator
}

// NewInspector creates a new Inspector
func NewInspector(
	invoices trade.InvoiceRepository,
	proformas trade.ProformaRepository,
	companies partner.CompanyRepository,
	clients partner.ClientRepository,
	vehicles inventory.VehicleRepository,
	linker *reconciliation.Linker,
	calculator *reconciliation.Calculator,
) *Inspector {
	return &Inspector{
		invoices:   invoices,
		proformas:  proformas,
		companies:  companies,
		clients:    clients,
		vehicles:   vehicles,
		linker:     linker,
		calculator: calculator,
	}
}

// ExplainInvoice resolves the link for an invoice without persisting it.
// Dangling company or client references leave the names empty.
func (i *Inspector) ExplainInvoice(ctx context.Context, id uuid.UUID) (*InvoiceExplanation, error) {
	inv, err := i.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	exp := &InvoiceExplanation{
		InvoiceID:   inv.ID,
		Number:      inv.Number,
		CompanyID:   inv.CompanyID,
		ClientID:    inv.ClientID,
		Eligible:    inv.IsEligible(),
		CurrentLink: inv.ProformaID,
	}

	if inv.CompanyID != uuid.Nil {
		company, err := i.companies.FindByID(ctx, inv.CompanyID)
		switch {
		case err == nil:
			exp.CompanyName = company.Name
		case !errors.Is(err, shared.ErrNotFound):
			return nil, fmt.Errorf("find company %s: %w", inv.CompanyID, err)
		}
	}
	if inv.ClientID != nil {
		client, err := i.clients.FindByID(ctx, *inv.ClientID)
		switch {
		case err == nil:
			exp.ClientName = client.Name
		case !errors.Is(err, shared.ErrNotFound):
			return nil, fmt.Errorf("find client %s: %w", *inv.ClientID, err)
		}
	}

	match, err := i.linker.Resolve(ctx, inv)
	if err != nil {
		return nil, err
	}
	exp.Outcome = match.Outcome
	exp.Step = match.Step
	exp.ProformaID = match.ProformaID
	exp.ProformaNumber = match.Number
	exp.WouldChange = match.Changed()

	exp.Strategies = make([]StrategyInfo, 0, len(i.linker.Strategies()))
	for _, s := range i.linker.Strategies() {
		exp.Strategies = append(exp.Strategies, StrategyInfo{Step: s.Step(), Description: s.Description()})
	}
	return exp, nil
}

// ExplainProforma evaluates a proforma and lists the coverage of each of its
// vehicles. Vehicles that no longer resolve are listed without a plate.
func (i *Inspector) ExplainProforma(ctx context.Context, id uuid.UUID) (*ProformaExplanation, error) {
	p, err := i.proformas.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	eval, err := i.calculator.Evaluate(ctx, p)
	if err != nil {
		return nil, err
	}

	exp := &ProformaExplanation{
		ProformaID:    p.ID,
		Number:        p.Number,
		Status:        p.Status,
		DerivedStatus: eval.Status,
		Total:         eval.Total,
		Covered:       eval.Covered,
		Excluded:      eval.Excluded,
		Terminal:      eval.Terminal,
		WouldChange:   eval.Changed(p.Status),
		Vehicles:      []VehicleInfo{},
	}

	covered := make(map[uuid.UUID]struct{}, len(eval.CoveredIDs))
	for _, vid := range eval.CoveredIDs {
		covered[vid] = struct{}{}
	}
	for _, vid := range p.VehicleIDs() {
		info := VehicleInfo{VehicleID: vid}
		_, info.Covered = covered[vid]
		v, err := i.vehicles.FindByID(ctx, vid)
		switch {
		case err == nil:
			info.Plate = v.Plate
		case !errors.Is(err, shared.ErrNotFound):
			return nil, fmt.Errorf("find vehicle %s: %w", vid, err)
		}
		exp.Vehicles = append(exp.Vehicles, info)
	}
	return exp, nil
}

// VehicleCoverage reports whether the vehicle with plate is invoiced by an
// active, non-voided invoice
func (i *Inspector) VehicleCoverage(ctx context.Context, plate string) (*VehicleInfo, error) {
	if inventory.NormalizePlate(plate) == "" {
		return nil, fmt.Errorf("%w: plate cannot be empty", shared.ErrInvalidInput)
	}
	v, err := i.vehicles.FindByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}

	ids, err := i.invoices.CoveredVehicles(ctx, []uuid.UUID{v.ID})
	if err != nil {
		return nil, fmt.Errorf("coverage for vehicle %s: %w", v.ID, err)
	}
	info := &VehicleInfo{VehicleID: v.ID, Plate: v.Plate}
	for _, id := range ids {
		if id == v.ID {
			info.Covered = true
		}
	}
	return info, nil
}
