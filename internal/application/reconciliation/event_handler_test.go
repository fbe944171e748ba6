package reconciliation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/shared"
	"github.com/josewalke/generador-de-factura-sub001/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestChangeLogHandler_EventTypes(t *testing.T) {
	h := NewChangeLogHandler(zap.NewNop())
	assert.ElementsMatch(t, []string{trade.EventTypeInvoiceLinked, trade.EventTypeProformaStatusChanged}, h.EventTypes())
}

func TestChangeLogHandler_Handle(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewChangeLogHandler(zap.New(core))
	pt := newParty()

	inv, err := trade.NewInvoice("F-9", pt.company, pt.clientRef(), time.Now())
	require.NoError(t, err)
	previous := uuid.New()
	proformaID := uuid.New()
	require.NoError(t, h.Handle(context.Background(), trade.NewInvoiceLinkedEvent(inv, &previous, proformaID, "notes_reference")))

	pf, err := trade.NewProforma("PF-9", pt.company, pt.clientRef(), time.Now())
	require.NoError(t, err)
	require.NoError(t, h.Handle(context.Background(),
		trade.NewProformaStatusChangedEvent(pf, trade.ProformaStatusPending, trade.ProformaStatusFulfilled, 2, 2)))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "invoice linked to proforma", entries[0].Message)
	assert.Equal(t, "notes_reference", entries[0].ContextMap()["match_step"])
	assert.Equal(t, previous.String(), entries[0].ContextMap()["previous_proforma_id"])
	assert.Equal(t, "proforma status changed", entries[1].Message)
	assert.Equal(t, "fulfilled", entries[1].ContextMap()["to_status"])
}

type otherEvent struct {
	shared.BaseDomainEvent
}

func TestChangeLogHandler_UnexpectedEvent(t *testing.T) {
	h := NewChangeLogHandler(zap.NewNop())
	event := &otherEvent{BaseDomainEvent: shared.NewBaseDomainEvent("Other", "Other", uuid.New())}

	err := h.Handle(context.Background(), event)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Other")
}
