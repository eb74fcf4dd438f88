package models

import (
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel holds the id and timestamp columns of every table
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) fromEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = UTC(e.CreatedAt)
	m.UpdatedAt = UTC(e.UpdatedAt)
}

// UTC normalizes a time before it reaches a TIMESTAMP column or a query
// argument. Columns carry no zone, so every stored and compared value is UTC.
func UTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// UTCPtr is UTC for optional columns
func UTCPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := UTC(*t)
	return &u
}

// OwnedModel holds the columns shared by every user-owned aggregate
type OwnedModel struct {
	BaseModel
	UserID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Version int       `gorm:"not null;default:1"`
}

// FromOwnedRoot populates the model from a domain aggregate root
func (m *OwnedModel) FromOwnedRoot(root shared.OwnedAggregateRoot) {
	m.fromEntity(root.BaseEntity)
	m.UserID = root.UserID
	m.Version = root.Version
}

// OwnedRoot rebuilds the domain aggregate root
func (m *OwnedModel) OwnedRoot() shared.OwnedAggregateRoot {
	return ownedRoot(m.BaseModel, m.UserID, m.Version)
}

func ownedRoot(base BaseModel, userID uuid.UUID, version int) shared.OwnedAggregateRoot {
	return shared.OwnedAggregateRoot{
		BaseEntity: shared.BaseEntity{
			ID:        base.ID,
			CreatedAt: base.CreatedAt,
			UpdatedAt: base.UpdatedAt,
		},
		UserID:  userID,
		Version: version,
	}
}

// AddressColumns flattens a postal address into columns
type AddressColumns struct {
	Street     string `gorm:"type:varchar(255)"`
	City       string `gorm:"type:varchar(100)"`
	PostalCode string `gorm:"type:varchar(20)"`
	Country    string `gorm:"type:varchar(2)"`
}
