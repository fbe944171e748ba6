package dto

import (
	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/application/reconciliation"
)

// RunRequest is the body of a pass trigger. Every field is optional.
type RunRequest struct {
	BatchSize int    `json:"batch_size" binding:"omitempty,min=1,max=5000"`
	CompanyID string `json:"company_id" binding:"omitempty,uuid"`
	DryRun    bool   `json:"dry_run"`
}

// ToOptions converts the request into pass options. CompanyID must already
// be validated by binding.
func (r RunRequest) ToOptions() reconciliation.RunOptions {
	opts := reconciliation.RunOptions{
		BatchSize: r.BatchSize,
		DryRun:    r.DryRun,
	}
	if r.CompanyID != "" {
		id := uuid.MustParse(r.CompanyID)
		opts.CompanyID = &id
	}
	return opts
}
