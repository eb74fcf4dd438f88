package property

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DateRange bounds a query by date; nil ends are open
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t lies within the range, bounds inclusive
func (r DateRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// PropertyRepository defines persistence for properties
type PropertyRepository interface {
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Property, error)
	FindAllForUser(ctx context.Context, userID uuid.UUID) ([]Property, error)
	Create(ctx context.Context, property *Property) error
}

// TenantRepository defines persistence for tenants
type TenantRepository interface {
	FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*Tenant, error)
	FindAllForUser(ctx context.Context, userID uuid.UUID) ([]Tenant, error)
	// FindByIDsForUser loads the tenants with the given ids; missing ids are skipped
	FindByIDsForUser(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]Tenant, error)
	Create(ctx context.Context, tenant *Tenant) error
}

// LeaseRepository defines persistence for leases
type LeaseRepository interface {
	FindAllForUser(ctx context.Context, userID uuid.UUID) ([]Lease, error)
	// FindActiveForUser returns leases with status active whose period contains at
	FindActiveForUser(ctx context.Context, userID uuid.UUID, at time.Time) ([]Lease, error)
	Create(ctx context.Context, lease *Lease) error
}

// ReceiptRepository defines persistence for receipts
type ReceiptRepository interface {
	FindAllForUser(ctx context.Context, userID uuid.UUID, dates DateRange) ([]Receipt, error)
	Create(ctx context.Context, receipt *Receipt) error
}

// ExpenseRepository defines persistence for expenses
type ExpenseRepository interface {
	FindAllForUser(ctx context.Context, userID uuid.UUID, dates DateRange) ([]Expense, error)
	Create(ctx context.Context, expense *Expense) error
}

// MaintenanceRepository defines persistence for maintenance tickets
type MaintenanceRepository interface {
	FindAllForUser(ctx context.Context, userID uuid.UUID) ([]MaintenanceTicket, error)
	Create(ctx context.Context, ticket *MaintenanceTicket) error
}
