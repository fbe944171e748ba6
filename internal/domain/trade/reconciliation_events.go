package trade

import (
	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeInvoice  = "Invoice"
	AggregateTypeProforma = "Proforma"
)

// Event type constants
const (
	EventTypeInvoiceLinked         = "InvoiceLinked"
	EventTypeProformaStatusChanged = "ProformaStatusChanged"
)

// InvoiceLinkedEvent is raised when reconciliation records which proforma an
// invoice fulfills
type InvoiceLinkedEvent struct {
	shared.BaseDomainEvent
	InvoiceID          uuid.UUID  `json:"invoice_id"`
	InvoiceNumber      string     `json:"invoice_number"`
	PreviousProformaID *uuid.UUID `json:"previous_proforma_id,omitempty"`
	ProformaID         uuid.UUID  `json:"proforma_id"`
	MatchStep          string     `json:"match_step"`
}

// NewInvoiceLinkedEvent creates a new InvoiceLinkedEvent
func NewInvoiceLinkedEvent(inv *Invoice, previous *uuid.UUID, proformaID uuid.UUID, step string) *InvoiceLinkedEvent {
	return &InvoiceLinkedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeInvoiceLinked, AggregateTypeInvoice, inv.ID),
		InvoiceID:          inv.ID,
		InvoiceNumber:      inv.Number,
		PreviousProformaID: previous,
		ProformaID:         proformaID,
		MatchStep:          step,
	}
}

// EventType returns the event type name
func (e *InvoiceLinkedEvent) EventType() string {
	return EventTypeInvoiceLinked
}

// ProformaStatusChangedEvent is raised when a recomputed proforma status is
// persisted
type ProformaStatusChangedEvent struct {
	shared.BaseDomainEvent
	ProformaID      uuid.UUID      `json:"proforma_id"`
	ProformaNumber  string         `json:"proforma_number"`
	FromStatus      ProformaStatus `json:"from_status"`
	ToStatus        ProformaStatus `json:"to_status"`
	TotalVehicles   int            `json:"total_vehicles"`
	CoveredVehicles int            `json:"covered_vehicles"`
}

// NewProformaStatusChangedEvent creates a new ProformaStatusChangedEvent
func NewProformaStatusChangedEvent(p *Proforma, from, to ProformaStatus, total, covered int) *ProformaStatusChangedEvent {
	return &ProformaStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProformaStatusChanged, AggregateTypeProforma, p.ID),
		ProformaID:      p.ID,
		ProformaNumber:  p.Number,
		FromStatus:      from,
		ToStatus:        to,
		TotalVehicles:   total,
		CoveredVehicles: covered,
	}
}

// EventType returns the event type name
func (e *ProformaStatusChangedEvent) EventType() string {
	return EventTypeProformaStatusChanged
}
