package property

import (
	"strings"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertyStatus represents the occupancy state of a property
type PropertyStatus string

const (
	PropertyStatusVacant      PropertyStatus = "vacant"
	PropertyStatusOccupied    PropertyStatus = "occupied"
	PropertyStatusMaintenance PropertyStatus = "maintenance"
)

// IsValid checks if the status is a valid PropertyStatus
func (s PropertyStatus) IsValid() bool {
	switch s {
	case PropertyStatusVacant, PropertyStatusOccupied, PropertyStatusMaintenance:
		return true
	}
	return false
}

// PropertyType classifies a property
type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "apartment"
	PropertyTypeHouse      PropertyType = "house"
	PropertyTypeCommercial PropertyType = "commercial"
	PropertyTypeOther      PropertyType = "other"
)

// Property is a rentable unit owned by a user
type Property struct {
	shared.OwnedAggregateRoot
	Name        string              `json:"name"`
	Type        PropertyType        `json:"type"`
	Address     valueobject.Address `json:"address"`
	Status      PropertyStatus      `json:"status"`
	MonthlyRent decimal.Decimal     `json:"monthly_rent"`
	Bedrooms    int                 `json:"bedrooms"`
}

// NewProperty creates a vacant property
func NewProperty(userID uuid.UUID, name string, propertyType PropertyType, address valueobject.Address, monthlyRent decimal.Decimal, now time.Time) (*Property, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PROPERTY_NAME", "Property name cannot be empty")
	}
	if monthlyRent.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Monthly rent cannot be negative")
	}
	if propertyType == "" {
		propertyType = PropertyTypeApartment
	}
	return &Property{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(userID, now),
		Name:               name,
		Type:               propertyType,
		Address:            address,
		Status:             PropertyStatusVacant,
		MonthlyRent:        monthlyRent,
	}, nil
}

// IsOccupied reports whether the property is currently let
func (p *Property) IsOccupied() bool {
	return p.Status == PropertyStatusOccupied
}

// SetStatus changes the occupancy state
func (p *Property) SetStatus(status PropertyStatus, now time.Time) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown property status")
	}
	p.Status = status
	p.Touch(now)
	p.IncrementVersion()
	return nil
}
