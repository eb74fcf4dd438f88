package invoicing

import (
	"fmt"
	"strings"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is the aggregate root for a billed amount owed by a tenant.
// Amount starts equal to OriginalAmount and only grows when a late fee is applied.
type Invoice struct {
	shared.OwnedAggregateRoot
	Number         string               `json:"number"`
	Description    string               `json:"description"`
	Amount         decimal.Decimal      `json:"amount"`
	OriginalAmount decimal.Decimal      `json:"original_amount"`
	Currency       valueobject.Currency `json:"currency"`
	DueDate        time.Time            `json:"due_date"`
	PaidDate       *time.Time           `json:"paid_date"`
	Status         InvoiceStatus        `json:"status"`
	Metadata       InvoiceMetadata      `json:"metadata"`
	PropertyID     *uuid.UUID           `json:"property_id"`
	TenantID       *uuid.UUID           `json:"tenant_id"`
	OwnerID        *uuid.UUID           `json:"owner_id"`
	LeaseID        *uuid.UUID           `json:"lease_id"`
}

// NewInvoice creates a pending invoice
func NewInvoice(userID uuid.UUID, number string, amount decimal.Decimal, dueDate, now time.Time) (*Invoice, error) {
	if !IsValidInvoiceNumber(number) {
		return nil, ErrInvalidNumber
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if dueDate.IsZero() {
		return nil, ErrInvalidDueDate
	}

	amount = valueobject.RoundMoney(amount)
	return &Invoice{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(userID, now),
		Number:             number,
		Amount:             amount,
		OriginalAmount:     amount,
		Currency:           valueobject.DefaultCurrency,
		DueDate:            dueDate,
		Status:             InvoiceStatusPending,
	}, nil
}

// SetParties links the invoice to its property, tenant and owner
func (i *Invoice) SetParties(propertyID, tenantID, ownerID *uuid.UUID) {
	i.PropertyID = propertyID
	i.TenantID = tenantID
	i.OwnerID = ownerID
}

// InvoiceUpdate holds optional replacements for an invoice's editable fields
type InvoiceUpdate struct {
	Description *string
	Amount      *decimal.Decimal
	DueDate     *time.Time
	PropertyID  *uuid.UUID
	TenantID    *uuid.UUID
	OwnerID     *uuid.UUID
	Metadata    MetadataPatch
}

// Update replaces the provided fields and merges metadata.
// The amount can only change while the invoice is pending.
func (i *Invoice) Update(u InvoiceUpdate, now time.Time) error {
	if i.Status == InvoiceStatusCancelled {
		return ErrInvoiceCancelled
	}
	original, items := i.OriginalAmount, i.Metadata.LineItems
	if u.Amount != nil {
		if i.Status != InvoiceStatusPending {
			return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change amount of %s invoice", i.Status))
		}
		if !u.Amount.IsPositive() {
			return ErrInvalidAmount
		}
		original = valueobject.RoundMoney(*u.Amount)
	}
	if u.Metadata.LineItems != nil {
		items = u.Metadata.LineItems
	}
	if err := checkLineItems(items, original); err != nil {
		return err
	}
	if u.Amount != nil {
		i.Amount = original
		i.OriginalAmount = original
	}
	if u.Description != nil {
		i.Description = strings.TrimSpace(*u.Description)
	}
	if u.DueDate != nil {
		if u.DueDate.IsZero() {
			return ErrInvalidDueDate
		}
		i.DueDate = *u.DueDate
	}
	if u.PropertyID != nil {
		i.PropertyID = u.PropertyID
	}
	if u.TenantID != nil {
		i.TenantID = u.TenantID
	}
	if u.OwnerID != nil {
		i.OwnerID = u.OwnerID
	}
	i.Metadata = i.Metadata.Merge(u.Metadata)
	i.Touch(now)
	i.IncrementVersion()
	return nil
}

// SetLineItems stores the billed lines. Their total must equal the
// original amount, which is what SAF-T reports as the net total.
func (i *Invoice) SetLineItems(items []LineItem) error {
	if err := checkLineItems(items, i.OriginalAmount); err != nil {
		return err
	}
	i.Metadata.LineItems = items
	return nil
}

func checkLineItems(items []LineItem, amount decimal.Decimal) error {
	if len(items) == 0 {
		return nil
	}
	if total := LineItemsTotal(items); !total.Equal(amount) {
		return shared.NewDomainError(ErrLineItemsMismatch.Code,
			fmt.Sprintf("Line items total %s does not match amount %s", total.StringFixed(2), amount.StringFixed(2)))
	}
	return nil
}

func (i *Invoice) transition(target InvoiceStatus) error {
	if i.Status == InvoiceStatusCancelled {
		return ErrInvoiceCancelled
	}
	if !i.Status.CanTransitionTo(target) {
		return shared.NewDomainError(ErrInvalidTransition.Code,
			fmt.Sprintf("Cannot move invoice %s from %s to %s", i.Number, i.Status, target))
	}
	i.Status = target
	return nil
}

// MarkPaid settles the invoice and records how it was paid
func (i *Invoice) MarkPaid(paymentMethod, reference string, now time.Time) error {
	if err := i.transition(InvoiceStatusPaid); err != nil {
		return err
	}
	paid := now
	i.PaidDate = &paid
	if paymentMethod != "" {
		i.Metadata.PaymentMethod = paymentMethod
	}
	if reference != "" {
		i.Metadata.PaymentReference = reference
	}
	i.Touch(now)
	i.IncrementVersion()
	return nil
}

// IsPastDue reports whether the due date lies before now
func (i *Invoice) IsPastDue(now time.Time) bool {
	return i.DueDate.Before(now)
}

// ApplyLateFee moves a pending invoice to overdue. When the result carries a
// positive fee the amount becomes original + fee and the policy is recorded;
// a zero fee only changes the status.
func (i *Invoice) ApplyLateFee(result LateFeeResult, cfg LateFeeConfig, now time.Time) error {
	if i.Metadata.LateFeeApplied() {
		return ErrLateFeeAlreadyApplied
	}
	if err := i.transition(InvoiceStatusOverdue); err != nil {
		return err
	}
	if result.HasFee() {
		i.Amount = i.OriginalAmount.Add(result.LateFee)
		i.Metadata.LateFee = &LateFeeAudit{
			Applied:         true,
			Amount:          result.LateFee,
			DaysOverdue:     result.DaysOverdue,
			AppliedAt:       now,
			GracePeriodDays: cfg.GracePeriodDays,
			PercentageRate:  cfg.PercentageRate,
			FlatFee:         cfg.FlatFee,
			MaxPercentage:   cfg.MaxPercentage,
		}
	}
	i.Touch(now)
	i.IncrementVersion()
	return nil
}

// Cancel voids a pending or overdue invoice
func (i *Invoice) Cancel(now time.Time) error {
	if err := i.transition(InvoiceStatusCancelled); err != nil {
		return err
	}
	i.Touch(now)
	i.IncrementVersion()
	return nil
}

// LateFeeAmount returns the late fee charged on this invoice, or zero
func (i *Invoice) LateFeeAmount() decimal.Decimal {
	return i.Metadata.LateFeeAmount()
}

// LineItems returns the billed lines, falling back to a single line for the original amount
func (i *Invoice) LineItems() []LineItem {
	return i.Metadata.LineItemsOrDefault(i.Description, i.OriginalAmount)
}
