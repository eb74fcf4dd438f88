package invoicing

import (
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/invoicing"
	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItemRequest is one billed line in a create or update request
type LineItemRequest struct {
	Description string          `json:"description" binding:"required,max=255"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateInvoiceRequest represents a request to create an invoice
// @Description Request body for creating an invoice
type CreateInvoiceRequest struct {
	Amount      decimal.Decimal   `json:"amount" binding:"required"`
	DueDate     time.Time         `json:"due_date" binding:"required"`
	Description string            `json:"description" binding:"max=500"`
	PropertyID  *uuid.UUID        `json:"property_id"`
	TenantID    *uuid.UUID        `json:"tenant_id"`
	OwnerID     *uuid.UUID        `json:"owner_id"`
	LeaseID     *uuid.UUID        `json:"lease_id"`
	LineItems   []LineItemRequest `json:"line_items" binding:"omitempty,dive"`
	Notes       string            `json:"notes" binding:"max=2000"`
}

// UpdateInvoiceRequest represents a partial invoice update. Nil fields are
// left untouched; line items and notes are merged into stored metadata.
// @Description Request body for a partial invoice update
type UpdateInvoiceRequest struct {
	Amount      *decimal.Decimal  `json:"amount"`
	DueDate     *time.Time        `json:"due_date"`
	Description *string           `json:"description" binding:"omitempty,max=500"`
	PropertyID  *uuid.UUID        `json:"property_id"`
	TenantID    *uuid.UUID        `json:"tenant_id"`
	OwnerID     *uuid.UUID        `json:"owner_id"`
	LineItems   []LineItemRequest `json:"line_items" binding:"omitempty,dive"`
	Notes       *string           `json:"notes" binding:"omitempty,max=2000"`
}

// MarkAsPaidRequest carries the optional payment details
// @Description Optional payment details recorded when an invoice is settled
type MarkAsPaidRequest struct {
	PaymentMethod    string `json:"payment_method" binding:"max=50"`
	PaymentReference string `json:"payment_reference" binding:"max=100"`
}

// InvoiceListFilter defines filtering options for invoice list queries
type InvoiceListFilter struct {
	Status     string     `form:"status" binding:"omitempty,oneof=pending paid overdue cancelled"`
	PropertyID string     `form:"property_id" binding:"omitempty,uuid"`
	TenantID   string     `form:"tenant_id" binding:"omitempty,uuid"`
	DueFrom    *time.Time `form:"due_from" time_format:"2006-01-02"`
	DueTo      *time.Time `form:"due_to" time_format:"2006-01-02"`
	Search     string     `form:"search" binding:"max=100"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by" binding:"omitempty,oneof=created_at due_date number amount"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LateFeeResponse is the recorded late-fee audit of an invoice
type LateFeeResponse struct {
	Amount          decimal.Decimal  `json:"amount"`
	DaysOverdue     int              `json:"days_overdue"`
	AppliedAt       time.Time        `json:"applied_at"`
	GracePeriodDays int              `json:"grace_period_days"`
	PercentageRate  decimal.Decimal  `json:"percentage_rate"`
	FlatFee         *decimal.Decimal `json:"flat_fee,omitempty"`
	MaxPercentage   *decimal.Decimal `json:"max_percentage,omitempty"`
}

// InvoiceResponse represents an invoice in API responses
// @Description Invoice information returned by the API
type InvoiceResponse struct {
	ID               uuid.UUID            `json:"id"`
	Number           string               `json:"number"`
	Description      string               `json:"description,omitempty"`
	Amount           decimal.Decimal      `json:"amount"`
	OriginalAmount   decimal.Decimal      `json:"original_amount"`
	Currency         string               `json:"currency"`
	DueDate          time.Time            `json:"due_date"`
	PaidDate         *time.Time           `json:"paid_date,omitempty"`
	Status           string               `json:"status"`
	PropertyID       *uuid.UUID           `json:"property_id,omitempty"`
	TenantID         *uuid.UUID           `json:"tenant_id,omitempty"`
	OwnerID          *uuid.UUID           `json:"owner_id,omitempty"`
	LeaseID          *uuid.UUID           `json:"lease_id,omitempty"`
	LineItems        []invoicing.LineItem `json:"line_items"`
	Notes            string               `json:"notes,omitempty"`
	PaymentMethod    string               `json:"payment_method,omitempty"`
	PaymentReference string               `json:"payment_reference,omitempty"`
	LateFee          *LateFeeResponse     `json:"late_fee,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
	Version          int                  `json:"version"`
}

// LateFeePreview is the fee an invoice would receive if the run were applied now
// @Description Late fee an invoice would receive
type LateFeePreview struct {
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	Number         string          `json:"number"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	LateFee        decimal.Decimal `json:"late_fee"`
	NewAmount      decimal.Decimal `json:"new_amount"`
	DaysOverdue    int             `json:"days_overdue"`
}

// LateFeeFailure records an invoice the late-fee run could not update
type LateFeeFailure struct {
	InvoiceID uuid.UUID `json:"invoice_id"`
	Number    string    `json:"number"`
	Error     string    `json:"error"`
}

// LateFeeRunResult summarizes one ApplyLateFees run
// @Description Outcome of a late-fee run
type LateFeeRunResult struct {
	// Applied holds the invoices that received a positive fee
	Applied []InvoiceResponse `json:"applied"`
	// MarkedOverdue counts invoices moved to overdue without a fee
	MarkedOverdue int              `json:"marked_overdue"`
	Skipped       int              `json:"skipped"`
	Failed        []LateFeeFailure `json:"failed"`
	TotalLateFees decimal.Decimal  `json:"total_late_fees"`
}

// BatchRentRequest asks for one rent invoice per active lease
// @Description Request body for a batch rent run
type BatchRentRequest struct {
	DueDate time.Time `json:"due_date" binding:"required"`
	// Month labels the billed period, e.g. "2025-03"
	Month string `json:"month" binding:"required,max=32"`
}

// BatchRentFailure records a lease that could not be invoiced
type BatchRentFailure struct {
	LeaseID  uuid.UUID `json:"lease_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Error    string    `json:"error"`
}

// BatchRentResult is the outcome of GenerateBatchRentInvoices
// @Description Invoices created and leases that failed in a batch rent run
type BatchRentResult struct {
	Success []InvoiceResponse  `json:"success"`
	Failed  []BatchRentFailure `json:"failed"`
}

// InvoiceSummary aggregates invoice amounts by status for a period
// @Description Invoice totals per status for an issue window
type InvoiceSummary struct {
	PeriodStart    *time.Time      `json:"period_start,omitempty"`
	PeriodEnd      *time.Time      `json:"period_end,omitempty"`
	InvoiceCount   int             `json:"invoice_count"`
	TotalInvoiced  decimal.Decimal `json:"total_invoiced"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	TotalPending   decimal.Decimal `json:"total_pending"`
	TotalOverdue   decimal.Decimal `json:"total_overdue"`
	TotalCancelled decimal.Decimal `json:"total_cancelled"`
	// TotalLateFees sums fees recorded on overdue invoices
	TotalLateFees decimal.Decimal `json:"total_late_fees"`
	CountByStatus map[string]int  `json:"count_by_status"`
}

// optionalID parses an optional id query value
func optionalID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Invalid ID format: "+raw)
	}
	return &id, nil
}

func toLineItems(items []LineItemRequest) []invoicing.LineItem {
	if items == nil {
		return nil
	}
	out := make([]invoicing.LineItem, len(items))
	for i, it := range items {
		out[i] = invoicing.LineItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	return out
}

// ToInvoiceResponse converts a domain invoice to its API representation
func ToInvoiceResponse(inv *invoicing.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:               inv.ID,
		Number:           inv.Number,
		Description:      inv.Description,
		Amount:           inv.Amount,
		OriginalAmount:   inv.OriginalAmount,
		Currency:         string(inv.Currency),
		DueDate:          inv.DueDate,
		PaidDate:         inv.PaidDate,
		Status:           inv.Status.String(),
		PropertyID:       inv.PropertyID,
		TenantID:         inv.TenantID,
		OwnerID:          inv.OwnerID,
		LeaseID:          inv.LeaseID,
		LineItems:        inv.LineItems(),
		Notes:            inv.Metadata.Notes,
		PaymentMethod:    inv.Metadata.PaymentMethod,
		PaymentReference: inv.Metadata.PaymentReference,
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
		Version:          inv.Version,
	}
	if lf := inv.Metadata.LateFee; lf != nil && lf.Applied {
		resp.LateFee = &LateFeeResponse{
			Amount:          lf.Amount,
			DaysOverdue:     lf.DaysOverdue,
			AppliedAt:       lf.AppliedAt,
			GracePeriodDays: lf.GracePeriodDays,
			PercentageRate:  lf.PercentageRate,
			FlatFee:         lf.FlatFee,
			MaxPercentage:   lf.MaxPercentage,
		}
	}
	return resp
}

// ToInvoiceResponses converts a slice of domain invoices
func ToInvoiceResponses(invoices []invoicing.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out
}
