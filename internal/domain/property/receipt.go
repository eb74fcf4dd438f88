package property

import (
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptStatus represents whether money recorded on a receipt was collected
type ReceiptStatus string

const (
	ReceiptStatusPaid    ReceiptStatus = "paid"
	ReceiptStatusPending ReceiptStatus = "pending"
	ReceiptStatusOverdue ReceiptStatus = "overdue"
)

// ReceiptType classifies what a receipt was issued for
type ReceiptType string

const (
	ReceiptTypeRent    ReceiptType = "rent"
	ReceiptTypeDeposit ReceiptType = "deposit"
	ReceiptTypeOther   ReceiptType = "other"
)

// Receipt records a payment expected from or made by a tenant
type Receipt struct {
	shared.OwnedAggregateRoot
	TenantID   uuid.UUID       `json:"tenant_id"`
	PropertyID uuid.UUID       `json:"property_id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       time.Time       `json:"date"`
	Type       ReceiptType     `json:"type"`
	Status     ReceiptStatus   `json:"status"`
}

// NewReceipt creates a receipt
func NewReceipt(userID, tenantID, propertyID uuid.UUID, amount decimal.Decimal, date time.Time, receiptType ReceiptType, status ReceiptStatus, now time.Time) (*Receipt, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Receipt amount must be positive")
	}
	return &Receipt{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(userID, now),
		TenantID:           tenantID,
		PropertyID:         propertyID,
		Amount:             amount,
		Date:               date,
		Type:               receiptType,
		Status:             status,
	}, nil
}

// IsPaid reports whether the receipt was collected
func (r *Receipt) IsPaid() bool {
	return r.Status == ReceiptStatusPaid
}
