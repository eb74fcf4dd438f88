package property

import (
	"math"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaseStatus represents the contractual state of a lease
type LeaseStatus string

const (
	LeaseStatusDraft      LeaseStatus = "draft"
	LeaseStatusActive     LeaseStatus = "active"
	LeaseStatusExpired    LeaseStatus = "expired"
	LeaseStatusTerminated LeaseStatus = "terminated"
)

// Lease binds a tenant to a property for a period at a monthly rent
type Lease struct {
	shared.OwnedAggregateRoot
	PropertyID  uuid.UUID       `json:"property_id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
	Deposit     decimal.Decimal `json:"deposit"`
	Status      LeaseStatus     `json:"status"`
}

// NewLease creates an active lease
func NewLease(userID, propertyID, tenantID uuid.UUID, start, end time.Time, monthlyRent decimal.Decimal, now time.Time) (*Lease, error) {
	if !end.After(start) {
		return nil, shared.NewDomainError("INVALID_LEASE_PERIOD", "Lease end date must be after start date")
	}
	if !monthlyRent.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Monthly rent must be positive")
	}
	return &Lease{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(userID, now),
		PropertyID:         propertyID,
		TenantID:           tenantID,
		StartDate:          start,
		EndDate:            end,
		MonthlyRent:        monthlyRent,
		Deposit:            decimal.Zero,
		Status:             LeaseStatusActive,
	}, nil
}

// IsActiveAt reports whether the lease is active and now lies within its period
func (l *Lease) IsActiveAt(now time.Time) bool {
	return l.Status == LeaseStatusActive && !now.Before(l.StartDate) && !now.After(l.EndDate)
}

// DaysUntilExpiration counts whole calendar days from now to the end date.
// Negative once the lease has ended.
func (l *Lease) DaysUntilExpiration(now time.Time) int {
	end := shared.StartOfDay(l.EndDate.In(now.Location()))
	return int(math.Round(end.Sub(shared.StartOfDay(now)).Hours() / 24))
}
