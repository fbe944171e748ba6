package reconciliation

import (
	"context"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
)

// AnomalyKind identifies one referential integrity check
type AnomalyKind string

const (
	AnomalyLineItemOrphan              AnomalyKind = "line_item_orphan"
	AnomalyLineItemParentAmbiguous     AnomalyKind = "line_item_parent_ambiguous"
	AnomalyLineItemVehicleDangling     AnomalyKind = "line_item_vehicle_dangling"
	AnomalyInvoiceCompanyDangling      AnomalyKind = "invoice_company_dangling"
	AnomalyInvoiceClientDangling       AnomalyKind = "invoice_client_dangling"
	AnomalyProformaCompanyDangling     AnomalyKind = "proforma_company_dangling"
	AnomalyProformaClientDangling      AnomalyKind = "proforma_client_dangling"
	AnomalyInvoiceProformaLinkDangling AnomalyKind = "invoice_proforma_link_dangling"
)

// ErrUnknownAnomalyKind is returned by readers for kinds they do not check
var ErrUnknownAnomalyKind = shared.NewDomainError("UNKNOWN_ANOMALY_KIND", "Unknown anomaly kind")

// AllAnomalyKinds returns every check in audit order
func AllAnomalyKinds() []AnomalyKind {
	return []AnomalyKind{
		AnomalyLineItemOrphan,
		AnomalyLineItemParentAmbiguous,
		AnomalyLineItemVehicleDangling,
		AnomalyInvoiceCompanyDangling,
		AnomalyInvoiceClientDangling,
		AnomalyProformaCompanyDangling,
		AnomalyProformaClientDangling,
		AnomalyInvoiceProformaLinkDangling,
	}
}

// String returns the string representation of AnomalyKind
func (k AnomalyKind) String() string {
	return string(k)
}

// IsValid checks if the kind is known
func (k AnomalyKind) IsValid() bool {
	for _, known := range AllAnomalyKinds() {
		if k == known {
			return true
		}
	}
	return false
}

// EntityType is the table whose rows the kind reports
func (k AnomalyKind) EntityType() string {
	switch k {
	case AnomalyLineItemOrphan, AnomalyLineItemParentAmbiguous, AnomalyLineItemVehicleDangling:
		return "line_item"
	case AnomalyInvoiceCompanyDangling, AnomalyInvoiceClientDangling, AnomalyInvoiceProformaLinkDangling:
		return "invoice"
	case AnomalyProformaCompanyDangling, AnomalyProformaClientDangling:
		return "proforma"
	default:
		return ""
	}
}

// IntegrityReader runs read-only integrity checks against the store
type IntegrityReader interface {
	// CountDangling returns how many rows violate kind
	CountDangling(ctx context.Context, kind AnomalyKind) (int64, error)
	// SampleDangling returns up to limit offending ids in ascending order
	SampleDangling(ctx context.Context, kind AnomalyKind, limit int) ([]uuid.UUID, error)
}
