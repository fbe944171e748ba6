package trade

import (
	"context"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
)

// ProformaReference is the slice of a proforma needed to match invoice notes
// against proforma numbers
type ProformaReference struct {
	ID     uuid.UUID
	Number string
	Status ProformaStatus
}

// ProformaRepository defines the interface for proforma persistence
type ProformaRepository interface {
	// FindByID finds a proforma by ID with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Proforma, error)

	// ListNonTerminal returns one page of non-terminal proformas with items, ordered by id
	ListNonTerminal(ctx context.Context, query shared.ListQuery) ([]Proforma, error)

	// FindNonTerminalByParty returns the non-terminal proformas of a company and client with items
	FindNonTerminalByParty(ctx context.Context, companyID, clientID uuid.UUID) ([]Proforma, error)

	// ListReferences returns the id, number and status of every proforma ordered by id
	ListReferences(ctx context.Context) ([]ProformaReference, error)

	// UpdateStatusIf sets the status only while it still equals expected.
	// Returns shared.ErrConcurrencyConflict when the stored status differs.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, expected, next ProformaStatus) error
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// ListActive returns one page of active (not soft-deleted) invoices with items, ordered by id.
	// Voided invoices are included.
	ListActive(ctx context.Context, query shared.ListQuery) ([]Invoice, error)

	// CoveredVehicles returns which of vehicleIDs appear on a vehicle line of an
	// active, non-voided invoice
	CoveredVehicles(ctx context.Context, vehicleIDs []uuid.UUID) ([]uuid.UUID, error)

	// UpdateProformaLinkIf sets the proforma link only while it still equals expected.
	// Returns shared.ErrConcurrencyConflict when the stored link differs.
	UpdateProformaLinkIf(ctx context.Context, id uuid.UUID, expected, next *uuid.UUID) error
}
