package valueobject

import (
	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	EUR Currency = "EUR" // Euro (default)
	USD Currency = "USD" // US Dollar
	GBP Currency = "GBP" // British Pound
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = EUR

// MoneyPlaces is the number of decimal places amounts are stored and reported with
const MoneyPlaces int32 = 2

var hundred = decimal.NewFromInt(100)

// IsValid checks if the currency is supported
func (c Currency) IsValid() bool {
	switch c {
	case EUR, USD, GBP:
		return true
	}
	return false
}

// RoundMoney rounds an amount to cents, half away from zero.
// For the non-negative amounts invoices carry this is half-up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// PercentOf returns amount * percent / 100 without rounding
func PercentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}

// SumRounded adds all amounts and rounds once at the end
func SumRounded(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return RoundMoney(total)
}

// Ratio returns numerator/denominator*100 rounded to two places, or fallback
// when the denominator is zero.
func Ratio(numerator, denominator, fallback decimal.Decimal) decimal.Decimal {
	if denominator.IsZero() {
		return fallback
	}
	return numerator.Div(denominator).Mul(hundred).Round(MoneyPlaces)
}
