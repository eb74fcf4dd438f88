package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries identity and timestamps
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity assigns a fresh id and stamps both timestamps with now
func NewBaseEntity(now time.Time) BaseEntity {
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

// Touch moves UpdatedAt forward
func (e *BaseEntity) Touch(now time.Time) {
	e.UpdatedAt = now
}

// OwnedAggregateRoot is the root of every record a landlord owns. Version
// guards concurrent saves; every repository query is scoped by UserID.
type OwnedAggregateRoot struct {
	BaseEntity
	UserID  uuid.UUID
	Version int
}

// NewOwnedAggregateRoot starts a user-scoped aggregate at version 1
func NewOwnedAggregateRoot(userID uuid.UUID, now time.Time) OwnedAggregateRoot {
	return OwnedAggregateRoot{BaseEntity: NewBaseEntity(now), UserID: userID, Version: 1}
}

// GetVersion returns the version the aggregate will be saved with
func (a *OwnedAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion is called by every state change before Save
func (a *OwnedAggregateRoot) IncrementVersion() {
	a.Version++
}
