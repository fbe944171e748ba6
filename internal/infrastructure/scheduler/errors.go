package scheduler

import (
	"errors"

	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
)

var (
	// ErrRunInProgress is returned when a pass is requested while another one
	// started by this scheduler is still running
	ErrRunInProgress = shared.NewDomainError("RUN_IN_PROGRESS", "A reconciliation pass is already in progress")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
