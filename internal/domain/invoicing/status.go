package invoicing

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"   // Issued, awaiting payment
	InvoiceStatusPaid      InvoiceStatus = "paid"      // Settled
	InvoiceStatusOverdue   InvoiceStatus = "overdue"   // Past due, possibly fee-inflated
	InvoiceStatusCancelled InvoiceStatus = "cancelled" // Voided
)

// AllInvoiceStatuses lists statuses in reporting order
var AllInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusPending,
	InvoiceStatusPaid,
	InvoiceStatusOverdue,
	InvoiceStatusCancelled,
}

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are allowed
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// IsOpen returns true while the invoice still expects payment
func (s InvoiceStatus) IsOpen() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusOverdue
}

// CanTransitionTo reports whether moving from s to target is allowed.
// pending -> paid | overdue | cancelled; overdue -> paid | cancelled.
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusPending:
		return target == InvoiceStatusPaid || target == InvoiceStatusOverdue || target == InvoiceStatusCancelled
	case InvoiceStatusOverdue:
		return target == InvoiceStatusPaid || target == InvoiceStatusCancelled
	}
	return false
}
