package trade

import (
	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LineItem is one line of a proforma or an invoice. Exactly one of
// ProformaID and InvoiceID is set. Lines without a vehicle carry services or
// accessories and take no part in fulfillment.
type LineItem struct {
	ID          uuid.UUID
	ProformaID  *uuid.UUID
	InvoiceID   *uuid.UUID
	VehicleID   *uuid.UUID
	Position    int
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// HasVehicle reports whether the line references a vehicle
func (l LineItem) HasVehicle() bool {
	return l.VehicleID != nil && *l.VehicleID != uuid.Nil
}

// Amount returns quantity times unit price
func (l LineItem) Amount() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// distinctVehicles returns the set of vehicles referenced by items, sorted by id.
func distinctVehicles(items []LineItem) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if !item.HasVehicle() {
			continue
		}
		if _, ok := seen[*item.VehicleID]; ok {
			continue
		}
		seen[*item.VehicleID] = struct{}{}
		ids = append(ids, *item.VehicleID)
	}
	shared.SortIDs(ids)
	return ids
}

func sumAmounts(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount())
	}
	return total
}

func newLineItem(position int, vehicleID *uuid.UUID, description string, quantity, unitPrice decimal.Decimal) LineItem {
	return LineItem{
		ID:          uuid.New(),
		VehicleID:   vehicleID,
		Position:    position,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
	}
}
