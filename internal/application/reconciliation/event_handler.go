package reconciliation

import (
	"context"
	"fmt"

	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/trade"
	"go.uber.org/zap"
)

// ChangeLogHandler writes one structured log line per reconciliation write,
// giving operators an audit trail of what a pass changed
type ChangeLogHandler struct {
	logger *zap.Logger
}

// NewChangeLogHandler creates a new handler for link and status events
func NewChangeLogHandler(logger *zap.Logger) *ChangeLogHandler {
	return &ChangeLogHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *ChangeLogHandler) EventTypes() []string {
	return []string{trade.EventTypeInvoiceLinked, trade.EventTypeProformaStatusChanged}
}

// Handle processes InvoiceLinkedEvent and ProformaStatusChangedEvent
func (h *ChangeLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.InvoiceLinkedEvent:
		fields := []zap.Field{
			zap.String("event_id", e.EventID().String()),
			zap.String("invoice_id", e.InvoiceID.String()),
			zap.String("invoice_number", e.InvoiceNumber),
			zap.String("proforma_id", e.ProformaID.String()),
			zap.String("match_step", e.MatchStep),
		}
		if e.PreviousProformaID != nil {
			fields = append(fields, zap.String("previous_proforma_id", e.PreviousProformaID.String()))
		}
		h.logger.Info("invoice linked to proforma", fields...)
		return nil
	case *trade.ProformaStatusChangedEvent:
		h.logger.Info("proforma status changed",
			zap.String("event_id", e.EventID().String()),
			zap.String("proforma_id", e.ProformaID.String()),
			zap.String("proforma_number", e.ProformaNumber),
			zap.String("from_status", e.FromStatus.String()),
			zap.String("to_status", e.ToStatus.String()),
			zap.Int("total_vehicles", e.TotalVehicles),
			zap.Int("covered_vehicles", e.CoveredVehicles),
		)
		return nil
	default:
		h.logger.Error("unexpected event type", zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
}
