package invoicing

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// DefaultLineDescription is used when an invoice has neither line items nor a description
const DefaultLineDescription = "Rent"

// LineItem is one billed line of an invoice
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Total returns quantity * unit price
func (l LineItem) Total() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

// LineItemsTotal sums the line totals, rounded to cents
func LineItemsTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, l := range items {
		total = total.Add(l.Total())
	}
	return valueobject.RoundMoney(total)
}

func (l LineItem) valid() bool {
	return strings.TrimSpace(l.Description) != "" && l.Quantity.IsPositive() && !l.UnitPrice.IsNegative()
}

// LateFeeAudit records how a late fee was derived
type LateFeeAudit struct {
	Applied         bool             `json:"applied"`
	Amount          decimal.Decimal  `json:"amount"`
	DaysOverdue     int              `json:"days_overdue"`
	AppliedAt       time.Time        `json:"applied_at"`
	GracePeriodDays int              `json:"grace_period_days"`
	PercentageRate  decimal.Decimal  `json:"percentage_rate"`
	FlatFee         *decimal.Decimal `json:"flat_fee,omitempty"`
	MaxPercentage   *decimal.Decimal `json:"max_percentage,omitempty"`
}

// InvoiceMetadata is the structured content of the invoice metadata column
type InvoiceMetadata struct {
	LineItems        []LineItem    `json:"line_items,omitempty"`
	Notes            string        `json:"notes,omitempty"`
	PaymentMethod    string        `json:"payment_method,omitempty"`
	PaymentReference string        `json:"payment_reference,omitempty"`
	LateFee          *LateFeeAudit `json:"late_fee,omitempty"`
}

// MetadataPatch carries the metadata fields an update may change.
// Nil fields keep the stored value.
type MetadataPatch struct {
	LineItems []LineItem
	Notes     *string
}

// LateFeeApplied reports whether a late fee has already been charged
func (m InvoiceMetadata) LateFeeApplied() bool {
	return m.LateFee != nil && m.LateFee.Applied
}

// LateFeeAmount returns the recorded late fee, or zero
func (m InvoiceMetadata) LateFeeAmount() decimal.Decimal {
	if !m.LateFeeApplied() {
		return decimal.Zero
	}
	return m.LateFee.Amount
}

// Merge applies patch on top of m, keeping every field the patch leaves nil
func (m InvoiceMetadata) Merge(patch MetadataPatch) InvoiceMetadata {
	out := m
	if patch.LineItems != nil {
		out.LineItems = append([]LineItem(nil), patch.LineItems...)
	}
	if patch.Notes != nil {
		out.Notes = *patch.Notes
	}
	return out
}

// Marshal encodes metadata for storage
func (m InvoiceMetadata) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// LineItemsOrDefault returns the stored line items, or a single synthesized
// line billing amount under description when none are stored.
func (m InvoiceMetadata) LineItemsOrDefault(description string, amount decimal.Decimal) []LineItem {
	if len(m.LineItems) > 0 {
		return m.LineItems
	}
	if strings.TrimSpace(description) == "" {
		description = DefaultLineDescription
	}
	return []LineItem{{
		Description: description,
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   amount,
	}}
}

// ParseMetadataLenient is the single decoding policy for stored metadata.
// Malformed JSON yields empty metadata; line items failing validation are
// dropped so callers fall back to LineItemsOrDefault. ok is false whenever
// anything was discarded. It never returns an error.
func ParseMetadataLenient(raw []byte) (meta InvoiceMetadata, ok bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return InvoiceMetadata{}, true
	}
	if err := json.Unmarshal([]byte(trimmed), &meta); err != nil {
		return InvoiceMetadata{}, false
	}
	for _, li := range meta.LineItems {
		if !li.valid() {
			meta.LineItems = nil
			return meta, false
		}
	}
	return meta, true
}
