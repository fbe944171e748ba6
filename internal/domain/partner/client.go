package partner

import (
	"strings"

	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
)

// Client is the buyer named on a proforma or invoice.
type Client struct {
	shared.BaseEntity
	Name  string
	TaxID string
	Email string
}

// NewClient creates a new client
func NewClient(name, taxID, email string) (*Client, error) {
	name = strings.TrimSpace(name)
	if err := validatePartyName("Client", name); err != nil {
		return nil, err
	}
	return &Client{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		TaxID:      strings.ToUpper(strings.TrimSpace(taxID)),
		Email:      strings.ToLower(strings.TrimSpace(email)),
	}, nil
}
