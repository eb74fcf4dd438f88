package property

import (
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a cost booked against a property
type Expense struct {
	shared.OwnedAggregateRoot
	PropertyID  uuid.UUID       `json:"property_id"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

// NewExpense creates an expense
func NewExpense(userID, propertyID uuid.UUID, amount decimal.Decimal, date time.Time, category, description string, now time.Time) (*Expense, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	return &Expense{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(userID, now),
		PropertyID:         propertyID,
		Amount:             amount,
		Date:               date,
		Category:           category,
		Description:        description,
	}, nil
}
