package property

import (
	"strings"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// TenantStatus represents whether a renter currently holds a tenancy
type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "active"
	TenantStatusInactive TenantStatus = "inactive"
)

// Tenant is a person or company renting a property
type Tenant struct {
	shared.OwnedAggregateRoot
	Name       string              `json:"name"`
	Email      string              `json:"email"`
	Phone      string              `json:"phone"`
	TaxID      string              `json:"tax_id"` // Portuguese NIF
	Address    valueobject.Address `json:"address"`
	PropertyID *uuid.UUID          `json:"property_id"`
	Status     TenantStatus        `json:"status"`
}

// NewTenant creates an active tenant. An empty tax id is allowed; a
// non-empty one must pass the NIF check digit.
func NewTenant(userID uuid.UUID, name, email, taxID string, now time.Time) (*Tenant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_TENANT_NAME", "Tenant name cannot be empty")
	}
	taxID = strings.TrimSpace(taxID)
	if taxID != "" && !valueobject.IsValidNIF(taxID) {
		return nil, shared.NewDomainError("INVALID_TAX_ID", "Tenant tax id is not a valid NIF")
	}
	return &Tenant{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(userID, now),
		Name:               name,
		Email:              strings.TrimSpace(email),
		TaxID:              taxID,
		Status:             TenantStatusActive,
	}, nil
}

// TaxIDOrFinalConsumer returns the NIF, or the final-consumer NIF when none is on file
func (t *Tenant) TaxIDOrFinalConsumer() string {
	if t.TaxID == "" {
		return valueobject.FinalConsumerNIF
	}
	return t.TaxID
}
