package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProformaStatus is the lifecycle status of a proforma
type ProformaStatus string

const (
	ProformaStatusPending            ProformaStatus = "pending"
	ProformaStatusPartiallyFulfilled ProformaStatus = "partially_fulfilled"
	ProformaStatusFulfilled          ProformaStatus = "fulfilled"
	ProformaStatusVoided             ProformaStatus = "voided"
	ProformaStatusCancelled          ProformaStatus = "cancelled"
)

// IsValid checks if the status is a known ProformaStatus
func (s ProformaStatus) IsValid() bool {
	switch s {
	case ProformaStatusPending, ProformaStatusPartiallyFulfilled, ProformaStatusFulfilled,
		ProformaStatusVoided, ProformaStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether the status was set by a human and is never
// recomputed.
func (s ProformaStatus) IsTerminal() bool {
	return s == ProformaStatusVoided || s == ProformaStatusCancelled
}

// String returns the string representation of ProformaStatus
func (s ProformaStatus) String() string {
	return string(s)
}

// TerminalProformaStatuses lists the statuses excluded from reconciliation
func TerminalProformaStatuses() []ProformaStatus {
	return []ProformaStatus{ProformaStatusVoided, ProformaStatusCancelled}
}

// Proforma is a preliminary quotation listing vehicles and services
// offered to a client.
type Proforma struct {
	shared.BaseEntity
	Number    string
	CompanyID uuid.UUID
	ClientID  *uuid.UUID
	IssuedAt  time.Time
	Status    ProformaStatus
	Items     []LineItem
}

// NewProforma creates a pending proforma with no items
func NewProforma(number string, companyID uuid.UUID, clientID *uuid.UUID, issuedAt time.Time) (*Proforma, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Proforma company cannot be empty")
	}
	return &Proforma{
		BaseEntity: shared.NewBaseEntity(),
		Number:     strings.TrimSpace(number),
		CompanyID:  companyID,
		ClientID:   clientID,
		IssuedAt:   issuedAt,
		Status:     ProformaStatusPending,
	}, nil
}

// AddItem appends a line to the proforma and returns it
func (p *Proforma) AddItem(vehicleID *uuid.UUID, description string, quantity, unitPrice decimal.Decimal) LineItem {
	item := newLineItem(len(p.Items)+1, vehicleID, description, quantity, unitPrice)
	id := p.ID
	item.ProformaID = &id
	p.Items = append(p.Items, item)
	return item
}

// IsTerminal reports whether the proforma is voided or cancelled
func (p *Proforma) IsTerminal() bool {
	return p.Status.IsTerminal()
}

// HasClient reports whether the proforma names a client
func (p *Proforma) HasClient() bool {
	return p.ClientID != nil && *p.ClientID != uuid.Nil
}

// VehicleIDs returns the distinct vehicles listed on the proforma
func (p *Proforma) VehicleIDs() []uuid.UUID {
	return distinctVehicles(p.Items)
}

// ListsAnyVehicle reports whether at least one vehicle line references a
// vehicle in ids.
func (p *Proforma) ListsAnyVehicle(ids map[uuid.UUID]struct{}) bool {
	for _, item := range p.Items {
		if !item.HasVehicle() {
			continue
		}
		if _, ok := ids[*item.VehicleID]; ok {
			return true
		}
	}
	return false
}

// TotalAmount returns the sum of all line amounts
func (p *Proforma) TotalAmount() decimal.Decimal {
	return sumAmounts(p.Items)
}
