package partner

import (
	"context"

	"github.com/google/uuid"
)

// CompanyRepository defines read access to companies
type CompanyRepository interface {
	// FindByID finds a company by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
}

// ClientRepository defines read access to clients
type ClientRepository interface {
	// FindByID finds a client by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)
}
