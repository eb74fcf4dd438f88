package models

import (
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/invoicing"
	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// Numbers are unique per user.
type InvoiceModel struct {
	BaseModel
	UserID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_user_number,priority:1"`
	Version        int             `gorm:"not null;default:1"`
	Number         string          `gorm:"type:varchar(32);not null;uniqueIndex:idx_invoices_user_number,priority:2"`
	Description    string          `gorm:"type:text"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	OriginalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency       string          `gorm:"type:varchar(3);not null;default:'EUR'"`
	DueDate        time.Time       `gorm:"not null;index"`
	PaidDate       *time.Time
	Status         string         `gorm:"type:varchar(20);not null;default:'pending';index"`
	Metadata       datatypes.JSON `gorm:"type:jsonb"`
	PropertyID     *uuid.UUID     `gorm:"type:uuid;index"`
	TenantID       *uuid.UUID     `gorm:"type:uuid;index"`
	OwnerID        *uuid.UUID     `gorm:"type:uuid"`
	LeaseID        *uuid.UUID     `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the model to the domain aggregate. Metadata goes
// through the lenient parser, so a malformed column never fails a read.
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	meta, _ := invoicing.ParseMetadataLenient(m.Metadata)
	return &invoicing.Invoice{
		OwnedAggregateRoot: ownedRoot(m.BaseModel, m.UserID, m.Version),
		Number:             m.Number,
		Description:        m.Description,
		Amount:             m.Amount,
		OriginalAmount:     m.OriginalAmount,
		Currency:           valueobject.Currency(m.Currency),
		DueDate:            m.DueDate,
		PaidDate:           m.PaidDate,
		Status:             invoicing.InvoiceStatus(m.Status),
		Metadata:           meta,
		PropertyID:         m.PropertyID,
		TenantID:           m.TenantID,
		OwnerID:            m.OwnerID,
		LeaseID:            m.LeaseID,
	}
}

// InvoiceModelFromDomain creates a persistence model from the domain aggregate
func InvoiceModelFromDomain(inv *invoicing.Invoice) (*InvoiceModel, error) {
	meta, err := inv.Metadata.Marshal()
	if err != nil {
		return nil, err
	}
	m := &InvoiceModel{
		Number:         inv.Number,
		Description:    inv.Description,
		Amount:         inv.Amount,
		OriginalAmount: inv.OriginalAmount,
		Currency:       string(inv.Currency),
		DueDate:        UTC(inv.DueDate),
		PaidDate:       UTCPtr(inv.PaidDate),
		Status:         string(inv.Status),
		Metadata:       datatypes.JSON(meta),
		PropertyID:     inv.PropertyID,
		TenantID:       inv.TenantID,
		OwnerID:        inv.OwnerID,
		LeaseID:        inv.LeaseID,
	}
	m.fromEntity(inv.BaseEntity)
	m.UserID = inv.UserID
	m.Version = inv.Version
	return m, nil
}
