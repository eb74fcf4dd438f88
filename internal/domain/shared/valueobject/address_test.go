package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddress(t *testing.T) {
	t.Run("valid portuguese address", func(t *testing.T) {
		a, err := NewAddress(" Rua Augusta 10 ", "Lisboa", "1100-053", "")
		require.NoError(t, err)
		assert.Equal(t, "Rua Augusta 10", a.Street)
		assert.Equal(t, "PT", a.Country)
		assert.Equal(t, "Rua Augusta 10, 1100-053 Lisboa, PT", a.String())
	})

	t.Run("rejects malformed postal code", func(t *testing.T) {
		_, err := NewAddress("Rua Augusta 10", "Lisboa", "1100053", "PT")
		assert.Error(t, err)
	})

	t.Run("foreign postal codes are not checked", func(t *testing.T) {
		_, err := NewAddress("Gran Via 1", "Madrid", "28013", "es")
		assert.NoError(t, err)
	})
}

func TestIsValidPostalCode(t *testing.T) {
	assert.True(t, IsValidPostalCode("4000-322"))
	assert.False(t, IsValidPostalCode("4000-32"))
	assert.False(t, IsValidPostalCode("40000322"))
	assert.False(t, IsValidPostalCode("abcd-efg"))
}

func TestAddress_ValueScan(t *testing.T) {
	a := Address{Street: "Rua A", City: "Porto", PostalCode: "4000-322", Country: "PT"}
	v, err := a.Value()
	require.NoError(t, err)

	var scanned Address
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, a, scanned)

	empty, err := Address{}.Value()
	require.NoError(t, err)
	assert.Nil(t, empty)

	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsEmpty())
}

func TestIsValidNIF_AddressCases(t *testing.T) {
	tests := []struct {
		nif  string
		want bool
	}{
		{"999999990", true},
		{"123456789", true},
		{"123456780", false},
		{"12345678", false},
		{"12345678a", false},
		{"012345678", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.nif, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidNIF(tt.nif))
		})
	}
}
