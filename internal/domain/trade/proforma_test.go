package trade

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProformaStatus(t *testing.T) {
	tests := []struct {
		status   ProformaStatus
		valid    bool
		terminal bool
	}{
		{ProformaStatusPending, true, false},
		{ProformaStatusPartiallyFulfilled, true, false},
		{ProformaStatusFulfilled, true, false},
		{ProformaStatusVoided, true, true},
		{ProformaStatusCancelled, true, true},
		{ProformaStatus("draft"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.IsValid())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}

func TestNewProforma(t *testing.T) {
	companyID := uuid.New()

	p, err := NewProforma(" PF-001 ", companyID, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "PF-001", p.Number)
	assert.Equal(t, ProformaStatusPending, p.Status)
	assert.False(t, p.HasClient())

	_, err = NewProforma("PF-002", uuid.Nil, nil, time.Now())
	assert.Error(t, err)
}

func TestProforma_VehicleIDs(t *testing.T) {
	p, err := NewProforma("PF-001", uuid.New(), nil, time.Now())
	require.NoError(t, err)

	v1, v2 := uuid.New(), uuid.New()
	p.AddItem(&v1, "Car", decimal.NewFromInt(1), decimal.NewFromInt(10000))
	p.AddItem(&v2, "Car", decimal.NewFromInt(1), decimal.NewFromInt(12000))
	p.AddItem(&v1, "Same car, extra line", decimal.NewFromInt(1), decimal.Zero)
	p.AddItem(nil, "Registration fee", decimal.NewFromInt(1), decimal.NewFromInt(300))
	nilID := uuid.Nil
	p.AddItem(&nilID, "Broken reference", decimal.NewFromInt(1), decimal.Zero)

	ids := p.VehicleIDs()
	assert.Len(t, ids, 2)
	assert.ElementsMatch(t, []uuid.UUID{v1, v2}, ids)

	assert.Equal(t, 5, len(p.Items))
	assert.Equal(t, 5, p.Items[4].Position)
	require.NotNil(t, p.Items[0].ProformaID)
	assert.Equal(t, p.ID, *p.Items[0].ProformaID)
	assert.Nil(t, p.Items[0].InvoiceID)
	assert.True(t, p.TotalAmount().Equal(decimal.NewFromInt(22300)))

	assert.True(t, p.ListsAnyVehicle(map[uuid.UUID]struct{}{v2: {}}))
	assert.False(t, p.ListsAnyVehicle(map[uuid.UUID]struct{}{uuid.New(): {}}))
}
