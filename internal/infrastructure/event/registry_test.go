package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_Register_SpecificTypes(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newTestHandler()

	registry.Register(handler, "InvoiceLinked", "ProformaStatusChanged")

	assert.Equal(t, []any{handler}, toAny(registry.GetHandlers("InvoiceLinked")))
	assert.Len(t, registry.GetHandlers("ProformaStatusChanged"), 1)
	assert.Empty(t, registry.GetHandlers("Other"))
}

func TestHandlerRegistry_Register_Wildcard(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newTestHandler()

	registry.Register(handler)

	assert.Len(t, registry.GetHandlers("InvoiceLinked"), 1)
	assert.Len(t, registry.GetHandlers("Anything"), 1)
}

func TestHandlerRegistry_Register_Duplicate(t *testing.T) {
	registry := NewHandlerRegistry()
	handler := newTestHandler()

	registry.Register(handler, "InvoiceLinked")
	registry.Register(handler, "InvoiceLinked")
	registry.Register(handler)

	assert.Len(t, registry.GetHandlers("InvoiceLinked"), 1)
	assert.Equal(t, 1, registry.Count())
}

func TestHandlerRegistry_Order(t *testing.T) {
	registry := NewHandlerRegistry()
	typed := newTestHandler()
	wildcard := newTestHandler()

	registry.Register(wildcard)
	registry.Register(typed, "InvoiceLinked")

	handlers := registry.GetHandlers("InvoiceLinked")
	assert.Equal(t, []any{typed, wildcard}, toAny(handlers))
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()
	a := newTestHandler()
	b := newTestHandler()

	registry.Register(a, "InvoiceLinked", "ProformaStatusChanged")
	registry.Register(b, "InvoiceLinked")
	registry.Register(a)

	registry.Unregister(a)

	assert.Equal(t, []any{b}, toAny(registry.GetHandlers("InvoiceLinked")))
	assert.Empty(t, registry.GetHandlers("ProformaStatusChanged"))
	assert.Equal(t, 1, registry.Count())
}

func toAny[T any](items []T) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	return out
}
