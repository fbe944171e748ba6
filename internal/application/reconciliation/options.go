package reconciliation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
)

// RunOptions parameterizes one pass. A zero BatchSize takes the service default.
type RunOptions struct {
	BatchSize int        `json:"batch_size" validate:"omitempty,min=1,max=5000"`
	CompanyID *uuid.UUID `json:"company_id,omitempty"`
	DryRun    bool       `json:"dry_run"`
}

var optionsValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the options. Errors wrap shared.ErrInvalidInput.
func (o RunOptions) Validate() error {
	if o.CompanyID != nil && *o.CompanyID == uuid.Nil {
		return fmt.Errorf("%w: company_id cannot be the nil uuid", shared.ErrInvalidInput)
	}
	err := optionsValidator.Struct(o)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
	}
	return fmt.Errorf("%w: %s", shared.ErrInvalidInput, strings.Join(msgs, "; "))
}

func (o RunOptions) withDefaults(batchSize int) RunOptions {
	if o.BatchSize == 0 {
		o.BatchSize = batchSize
	}
	return o
}
