package partner

import (
	"strings"

	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
)

// Company is a selling entity of the dealership. Proformas and invoices are
// issued on behalf of a company.
type Company struct {
	shared.BaseEntity
	Name  string
	TaxID string
}

// NewCompany creates a new company
func NewCompany(name, taxID string) (*Company, error) {
	name = strings.TrimSpace(name)
	if err := validatePartyName("Company", name); err != nil {
		return nil, err
	}
	return &Company{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		TaxID:      strings.ToUpper(strings.TrimSpace(taxID)),
	}, nil
}

func validatePartyName(kind, name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", kind+" name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", kind+" name cannot exceed 200 characters")
	}
	return nil
}
