package invoicing

import (
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

// LateFeeConfig is the fee policy applied to overdue invoices.
// It is not persisted per invoice; its effect is recorded in LateFeeAudit.
type LateFeeConfig struct {
	Enabled         bool             `json:"enabled"`
	GracePeriodDays int              `json:"grace_period_days"`
	PercentageRate  decimal.Decimal  `json:"percentage_rate"`
	FlatFee         *decimal.Decimal `json:"flat_fee,omitempty"`
	MaxPercentage   *decimal.Decimal `json:"max_percentage,omitempty"`
}

// Validate checks that no policy value is negative
func (c LateFeeConfig) Validate() error {
	if c.GracePeriodDays < 0 {
		return shared.NewDomainError("INVALID_LATE_FEE_CONFIG", "Grace period cannot be negative")
	}
	if c.PercentageRate.IsNegative() {
		return shared.NewDomainError("INVALID_LATE_FEE_CONFIG", "Percentage rate cannot be negative")
	}
	if c.FlatFee != nil && c.FlatFee.IsNegative() {
		return shared.NewDomainError("INVALID_LATE_FEE_CONFIG", "Flat fee cannot be negative")
	}
	if c.MaxPercentage != nil && c.MaxPercentage.IsNegative() {
		return shared.NewDomainError("INVALID_LATE_FEE_CONFIG", "Max percentage cannot be negative")
	}
	return nil
}

// LateFeeResult is the outcome of CalculateLateFee
type LateFeeResult struct {
	LateFee     decimal.Decimal `json:"late_fee"`
	DaysOverdue int             `json:"days_overdue"`
}

// HasFee reports whether a positive fee was computed
func (r LateFeeResult) HasFee() bool {
	return r.LateFee.IsPositive()
}

// DaysBetween returns floor((to - from) / 24h)
func DaysBetween(from, to time.Time) int {
	d := to.Sub(from)
	days := int(d / day)
	if d < 0 && d%day != 0 {
		days--
	}
	return days
}

// CalculateLateFee computes the fee owed on originalAmount for an invoice due
// at dueDate, evaluated at now.
//
// No fee accrues while the invoice is at most GracePeriodDays late; the
// boundary day itself is still inside the grace period. The fee is
// rate% of the original amount plus the flat fee, capped as a whole at
// MaxPercentage% of the original amount, rounded to cents.
func CalculateLateFee(originalAmount decimal.Decimal, dueDate, now time.Time, cfg LateFeeConfig) LateFeeResult {
	if !cfg.Enabled {
		return LateFeeResult{LateFee: decimal.Zero}
	}

	daysDiff := DaysBetween(dueDate, now)
	if daysDiff <= cfg.GracePeriodDays {
		return LateFeeResult{LateFee: decimal.Zero}
	}

	fee := valueobject.PercentOf(originalAmount, cfg.PercentageRate)
	if cfg.FlatFee != nil {
		fee = fee.Add(*cfg.FlatFee)
	}
	if cfg.MaxPercentage != nil {
		limit := valueobject.PercentOf(originalAmount, *cfg.MaxPercentage)
		if fee.GreaterThan(limit) {
			fee = limit
		}
	}

	return LateFeeResult{
		LateFee:     valueobject.RoundMoney(fee),
		DaysOverdue: daysDiff - cfg.GracePeriodDays,
	}
}
