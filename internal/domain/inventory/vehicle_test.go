package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePlate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234 abc", "1234ABC"},
		{"1234-ABC", "1234ABC"},
		{"  gc-1234-bt ", "GC1234BT"},
		{"", ""},
		{" - ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePlate(tt.in))
		})
	}
}

func TestNewVehicle(t *testing.T) {
	v, err := NewVehicle("1234 abc", " Seat ", "Ibiza", "vss123")
	require.NoError(t, err)
	assert.Equal(t, "1234ABC", v.Plate)
	assert.Equal(t, "Seat", v.Make)
	assert.Equal(t, "VSS123", v.VIN)

	_, err = NewVehicle("--", "", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plate")
}
