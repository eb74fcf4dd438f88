package invoicing

import "github.com/JIGLE/proman-sub000/internal/domain/shared"

// Invoice domain errors
var (
	ErrInvoiceNotFound       = shared.NewDomainError("NOT_FOUND", "Invoice not found")
	ErrInvalidTransition     = shared.NewDomainError("INVALID_STATE", "Invoice status transition not allowed")
	ErrInvoiceCancelled      = shared.NewDomainError("INVALID_STATE", "Cancelled invoices cannot be modified")
	ErrLateFeeAlreadyApplied = shared.NewDomainError("INVALID_STATE", "Late fee already applied to invoice")
	ErrInvalidAmount         = shared.NewDomainError("INVALID_INPUT", "Invoice amount must be positive")
	ErrInvalidNumber         = shared.NewDomainError("INVALID_INPUT", "Invoice number must match INV-YYYY-NNNNN")
	ErrInvalidDueDate        = shared.NewDomainError("INVALID_INPUT", "Invoice due date is required")
	ErrLineItemsMismatch     = shared.NewDomainError("INVALID_INPUT", "Invoice line items do not add up to the amount")
)
