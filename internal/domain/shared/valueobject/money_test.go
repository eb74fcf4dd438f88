package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2.345", "2.35"},
		{"2.344", "2.34"},
		{"1050", "1050"},
		{"0.005", "0.01"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := RoundMoney(decimal.RequireFromString(tt.in))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestPercentOf(t *testing.T) {
	got := PercentOf(decimal.NewFromInt(1000), decimal.NewFromInt(5))
	assert.True(t, got.Equal(decimal.NewFromInt(50)))
}

func TestSumRounded(t *testing.T) {
	t.Run("rounds once at the end", func(t *testing.T) {
		// 3 x 0.333 = 0.999 -> 1.00; rounding per item would give 0.99
		third := decimal.RequireFromString("0.333")
		got := SumRounded(third, third, third)
		assert.True(t, got.Equal(decimal.NewFromInt(1)), "got %s", got)
	})

	t.Run("empty is zero", func(t *testing.T) {
		assert.True(t, SumRounded().IsZero())
	})
}

func TestRatio(t *testing.T) {
	t.Run("zero denominator returns fallback", func(t *testing.T) {
		got := Ratio(decimal.Zero, decimal.Zero, decimal.NewFromInt(100))
		assert.True(t, got.Equal(decimal.NewFromInt(100)))
	})

	t.Run("computes percentage", func(t *testing.T) {
		got := Ratio(decimal.NewFromInt(2), decimal.NewFromInt(3), decimal.Zero)
		assert.Equal(t, "66.67", got.StringFixed(2))
	})
}

func TestCurrency_IsValid(t *testing.T) {
	assert.True(t, EUR.IsValid())
	assert.False(t, Currency("XXX").IsValid())
}
