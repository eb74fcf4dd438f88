package invoicing

import (
	"context"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	Status     *InvoiceStatus // Filter by status
	PropertyID *uuid.UUID     // Filter by property
	TenantID   *uuid.UUID     // Filter by tenant
	DueFrom    *time.Time     // Due date range start (inclusive)
	DueTo      *time.Time     // Due date range end (inclusive)
	DueBefore  *time.Time     // Due date strictly before
	IssuedFrom *time.Time     // Creation date range start (inclusive)
	IssuedTo   *time.Time     // Creation date range end (inclusive)
}

// InvoiceRepository defines the interface for invoice persistence.
// Every lookup is scoped to the owning user.
type InvoiceRepository interface {
	// FindByIDForUser finds an invoice by ID; returns shared.ErrNotFound when
	// the invoice does not exist or belongs to another user
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Invoice, error)

	// FindAllForUser lists invoices with filtering and pagination
	FindAllForUser(ctx context.Context, userID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)

	// CountForUser counts invoices matching the filter
	CountForUser(ctx context.Context, userID uuid.UUID, filter InvoiceFilter) (int64, error)

	// FindNumbersWithPrefix returns every invoice number starting with prefix
	FindNumbersWithPrefix(ctx context.Context, userID uuid.UUID, prefix string) ([]string, error)

	// FindUsersWithPendingDue lists users owning pending invoices due before the given time
	FindUsersWithPendingDue(ctx context.Context, before time.Time) ([]uuid.UUID, error)

	// Create inserts a new invoice
	Create(ctx context.Context, invoice *Invoice) error

	// Save updates an existing invoice
	Save(ctx context.Context, invoice *Invoice) error
}
