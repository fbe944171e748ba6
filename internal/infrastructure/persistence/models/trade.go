package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ProformaModel is the persistence model for the Proforma domain entity.
type ProformaModel struct {
	BaseModel
	Number    string          `gorm:"type:varchar(50);not null;index"`
	CompanyID uuid.UUID       `gorm:"type:uuid;not null;index:idx_proformas_party,priority:1"`
	ClientID  *uuid.UUID      `gorm:"type:uuid;index:idx_proformas_party,priority:2"`
	IssuedAt  time.Time       `gorm:"not null"`
	Status    string          `gorm:"type:varchar(30);not null;index"`
	Items     []LineItemModel `gorm:"foreignKey:ProformaID;references:ID"`
}

// TableName returns the table name for GORM
func (ProformaModel) TableName() string {
	return "proformas"
}

// ToDomain converts the persistence model to a domain Proforma entity.
func (m *ProformaModel) ToDomain() *trade.Proforma {
	p := &trade.Proforma{
		BaseEntity: m.BaseModel.ToDomain(),
		Number:     m.Number,
		CompanyID:  m.CompanyID,
		ClientID:   m.ClientID,
		IssuedAt:   m.IssuedAt,
		Status:     trade.ProformaStatus(m.Status),
		Items:      make([]trade.LineItem, len(m.Items)),
	}
	for i := range m.Items {
		p.Items[i] = m.Items[i].ToDomain()
	}
	return p
}

// FromDomain populates the persistence model from a domain Proforma entity.
func (m *ProformaModel) FromDomain(p *trade.Proforma) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Number = p.Number
	m.CompanyID = p.CompanyID
	m.ClientID = p.ClientID
	m.IssuedAt = p.IssuedAt
	m.Status = string(p.Status)
	m.Items = lineItemModels(p.Items)
}

// ProformaModelFromDomain creates a new persistence model from a domain Proforma entity.
func ProformaModelFromDomain(p *trade.Proforma) *ProformaModel {
	m := &ProformaModel{}
	m.FromDomain(p)
	return m
}

// InvoiceModel is the persistence model for the Invoice domain entity.
// Active is false for soft-deleted rows.
type InvoiceModel struct {
	BaseModel
	Number     string          `gorm:"type:varchar(50);not null;index"`
	CompanyID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientID   *uuid.UUID      `gorm:"type:uuid;index"`
	IssuedAt   time.Time       `gorm:"not null"`
	Active     bool            `gorm:"not null;index"`
	State      string          `gorm:"type:varchar(20);not null"`
	Notes      string          `gorm:"type:text"`
	ProformaID *uuid.UUID      `gorm:"type:uuid;index"`
	Items      []LineItemModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *trade.Invoice {
	inv := &trade.Invoice{
		BaseEntity: m.BaseModel.ToDomain(),
		Number:     m.Number,
		CompanyID:  m.CompanyID,
		ClientID:   m.ClientID,
		IssuedAt:   m.IssuedAt,
		Active:     m.Active,
		State:      trade.InvoiceState(m.State),
		Notes:      m.Notes,
		ProformaID: m.ProformaID,
		Items:      make([]trade.LineItem, len(m.Items)),
	}
	for i := range m.Items {
		inv.Items[i] = m.Items[i].ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *trade.Invoice) {
	m.FromDomainBaseEntity(inv.BaseEntity)
	m.Number = inv.Number
	m.CompanyID = inv.CompanyID
	m.ClientID = inv.ClientID
	m.IssuedAt = inv.IssuedAt
	m.Active = inv.Active
	m.State = string(inv.State)
	m.Notes = inv.Notes
	m.ProformaID = inv.ProformaID
	m.Items = lineItemModels(inv.Items)
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice entity.
func InvoiceModelFromDomain(inv *trade.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// LineItemModel is one row of line_items. Proforma and invoice lines share
// the table and are told apart by which parent id is set.
type LineItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	ProformaID  *uuid.UUID      `gorm:"type:uuid;index"`
	InvoiceID   *uuid.UUID      `gorm:"type:uuid;index"`
	VehicleID   *uuid.UUID      `gorm:"type:uuid;index"`
	Position    int             `gorm:"not null"`
	Description string          `gorm:"type:varchar(500)"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "line_items"
}

// ToDomain converts the persistence model to a domain LineItem.
func (m *LineItemModel) ToDomain() trade.LineItem {
	return trade.LineItem{
		ID:          m.ID,
		ProformaID:  m.ProformaID,
		InvoiceID:   m.InvoiceID,
		VehicleID:   m.VehicleID,
		Position:    m.Position,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
	}
}

// FromDomain populates the persistence model from a domain LineItem.
func (m *LineItemModel) FromDomain(item trade.LineItem) {
	m.ID = item.ID
	m.ProformaID = item.ProformaID
	m.InvoiceID = item.InvoiceID
	m.VehicleID = item.VehicleID
	m.Position = item.Position
	m.Description = item.Description
	m.Quantity = item.Quantity
	m.UnitPrice = item.UnitPrice
}

func lineItemModels(items []trade.LineItem) []LineItemModel {
	if len(items) == 0 {
		return nil
	}
	result := make([]LineItemModel, len(items))
	for i, item := range items {
		result[i].FromDomain(item)
	}
	return result
}
