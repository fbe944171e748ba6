package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceState is the issuance state of an invoice
type InvoiceState string

const (
	InvoiceStateIssued InvoiceState = "issued"
	InvoiceStateVoided InvoiceState = "voided"
)

// IsValid checks if the state is a known InvoiceState
func (s InvoiceState) IsValid() bool {
	return s == InvoiceStateIssued || s == InvoiceStateVoided
}

// String returns the string representation of InvoiceState
func (s InvoiceState) String() string {
	return string(s)
}

// Invoice is a finalized sale document. Active is false for soft-deleted
// invoices.
type Invoice struct {
	shared.BaseEntity
	Number     string
	CompanyID  uuid.UUID
	ClientID   *uuid.UUID
	IssuedAt   time.Time
	Active     bool
	State      InvoiceState
	Notes      string
	ProformaID *uuid.UUID
	Items      []LineItem
}

// NewInvoice creates an active, issued invoice with no items
func NewInvoice(number string, companyID uuid.UUID, clientID *uuid.UUID, issuedAt time.Time) (*Invoice, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Invoice company cannot be empty")
	}
	return &Invoice{
		BaseEntity: shared.NewBaseEntity(),
		Number:     strings.TrimSpace(number),
		CompanyID:  companyID,
		ClientID:   clientID,
		IssuedAt:   issuedAt,
		Active:     true,
		State:      InvoiceStateIssued,
	}, nil
}

// AddItem appends a line to the invoice and returns it
func (i *Invoice) AddItem(vehicleID *uuid.UUID, description string, quantity, unitPrice decimal.Decimal) LineItem {
	item := newLineItem(len(i.Items)+1, vehicleID, description, quantity, unitPrice)
	id := i.ID
	item.InvoiceID = &id
	i.Items = append(i.Items, item)
	return item
}

// Void marks the invoice as voided
func (i *Invoice) Void() error {
	if i.State == InvoiceStateVoided {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already voided")
	}
	i.State = InvoiceStateVoided
	i.UpdatedAt = time.Now()
	return nil
}

// IsEligible reports whether the invoice takes part in reconciliation: it
// must be active and not voided.
func (i *Invoice) IsEligible() bool {
	return i.Active && i.State != InvoiceStateVoided
}

// IsLinked reports whether the invoice carries a proforma link
func (i *Invoice) IsLinked() bool {
	return i.ProformaID != nil
}

// HasParty reports whether both company and client are known
func (i *Invoice) HasParty() bool {
	return i.CompanyID != uuid.Nil && i.ClientID != nil && *i.ClientID != uuid.Nil
}

// VehicleIDs returns the distinct vehicles invoiced
func (i *Invoice) VehicleIDs() []uuid.UUID {
	return distinctVehicles(i.Items)
}

// TotalAmount returns the sum of all line amounts
func (i *Invoice) TotalAmount() decimal.Decimal {
	return sumAmounts(i.Items)
}
