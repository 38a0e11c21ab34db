package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rcgateway/internal/lookup/models"
)

func TestIsMaskedName(t *testing.T) {
	tests := []struct {
		name   string
		owner  string
		masked bool
	}{
		{"plain name", "RAMESH KUMAR", false},
		{"empty name", "", false},
		{"asterisks", "RA****SH KUMAR", true},
		{"single asterisk", "R* KUMAR", true},
		{"bullet characters", "R•••SH KUMAR", true},
		{"double encoded bullet", "Râ€¢â€¢SH", true},
		{"x run lowercase", "xxxxxsh kumar", true},
		{"x run uppercase", "XXXXXSH KUMAR", true},
		{"two x only", "AXXEL", false},
		{"x inside real name", "ALEX XAVIER", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.masked, IsMaskedName(tc.owner))
		})
	}
}

func TestIsComplete(t *testing.T) {
	assert.False(t, IsComplete(nil))
	assert.False(t, IsComplete(&models.Record{Maker: "TATA"}))
	assert.False(t, IsComplete(&models.Record{FuelType: "DIESEL"}))
	assert.True(t, IsComplete(&models.Record{Maker: "TATA", FuelType: "DIESEL"}))
}

func TestUsable(t *testing.T) {
	rec := &models.Record{OwnerName: "SITA", Maker: "TATA", FuelType: "DIESEL"}
	assert.True(t, Usable(rec))

	rec.OwnerName = "S***A"
	assert.False(t, Usable(rec))

	rec.OwnerName = "SITA"
	rec.FuelType = ""
	assert.False(t, Usable(rec))
}
