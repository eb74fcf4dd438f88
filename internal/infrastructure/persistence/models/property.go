package models

import (
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/property"
	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (a AddressColumns) toDomain() valueobject.Address {
	return valueobject.Address{Street: a.Street, City: a.City, PostalCode: a.PostalCode, Country: a.Country}
}

func addressColumns(a valueobject.Address) AddressColumns {
	return AddressColumns{Street: a.Street, City: a.City, PostalCode: a.PostalCode, Country: a.Country}
}

// PropertyModel is the persistence model for rentable properties
type PropertyModel struct {
	OwnedModel
	Name        string          `gorm:"type:varchar(200);not null"`
	Type        string          `gorm:"type:varchar(30);not null"`
	Address     AddressColumns  `gorm:"embedded;embeddedPrefix:address_"`
	Status      string          `gorm:"type:varchar(20);not null;index"`
	MonthlyRent decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Bedrooms    int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// ToDomain converts the model to the domain entity
func (m *PropertyModel) ToDomain() *property.Property {
	return &property.Property{
		OwnedAggregateRoot: m.OwnedRoot(),
		Name:               m.Name,
		Type:               property.PropertyType(m.Type),
		Address:            m.Address.toDomain(),
		Status:             property.PropertyStatus(m.Status),
		MonthlyRent:        m.MonthlyRent,
		Bedrooms:           m.Bedrooms,
	}
}

// PropertyModelFromDomain creates a persistence model from the domain entity
func PropertyModelFromDomain(p *property.Property) *PropertyModel {
	m := &PropertyModel{
		Name:        p.Name,
		Type:        string(p.Type),
		Address:     addressColumns(p.Address),
		Status:      string(p.Status),
		MonthlyRent: p.MonthlyRent,
		Bedrooms:    p.Bedrooms,
	}
	m.FromOwnedRoot(p.OwnedAggregateRoot)
	return m
}

// TenantModel is the persistence model for tenants (the people renting)
type TenantModel struct {
	OwnedModel
	Name       string         `gorm:"type:varchar(200);not null"`
	Email      string         `gorm:"type:varchar(200)"`
	Phone      string         `gorm:"type:varchar(50)"`
	TaxID      string         `gorm:"type:varchar(20)"`
	Address    AddressColumns `gorm:"embedded;embeddedPrefix:address_"`
	PropertyID *uuid.UUID     `gorm:"type:uuid;index"`
	Status     string         `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the model to the domain entity
func (m *TenantModel) ToDomain() *property.Tenant {
	return &property.Tenant{
		OwnedAggregateRoot: m.OwnedRoot(),
		Name:               m.Name,
		Email:              m.Email,
		Phone:              m.Phone,
		TaxID:              m.TaxID,
		Address:            m.Address.toDomain(),
		PropertyID:         m.PropertyID,
		Status:             property.TenantStatus(m.Status),
	}
}

// TenantModelFromDomain creates a persistence model from the domain entity
func TenantModelFromDomain(t *property.Tenant) *TenantModel {
	m := &TenantModel{
		Name:       t.Name,
		Email:      t.Email,
		Phone:      t.Phone,
		TaxID:      t.TaxID,
		Address:    addressColumns(t.Address),
		PropertyID: t.PropertyID,
		Status:     string(t.Status),
	}
	m.FromOwnedRoot(t.OwnedAggregateRoot)
	return m
}

// LeaseModel is the persistence model for leases
type LeaseModel struct {
	OwnedModel
	PropertyID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	StartDate   time.Time       `gorm:"not null"`
	EndDate     time.Time       `gorm:"not null;index"`
	MonthlyRent decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Deposit     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Status      string          `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (LeaseModel) TableName() string {
	return "leases"
}

// ToDomain converts the model to the domain entity
func (m *LeaseModel) ToDomain() *property.Lease {
	return &property.Lease{
		OwnedAggregateRoot: m.OwnedRoot(),
		PropertyID:         m.PropertyID,
		TenantID:           m.TenantID,
		StartDate:          m.StartDate,
		EndDate:            m.EndDate,
		MonthlyRent:        m.MonthlyRent,
		Deposit:            m.Deposit,
		Status:             property.LeaseStatus(m.Status),
	}
}

// LeaseModelFromDomain creates a persistence model from the domain entity
func LeaseModelFromDomain(l *property.Lease) *LeaseModel {
	m := &LeaseModel{
		PropertyID:  l.PropertyID,
		TenantID:    l.TenantID,
		StartDate:   UTC(l.StartDate),
		EndDate:     UTC(l.EndDate),
		MonthlyRent: l.MonthlyRent,
		Deposit:     l.Deposit,
		Status:      string(l.Status),
	}
	m.FromOwnedRoot(l.OwnedAggregateRoot)
	return m
}

// ReceiptModel is the persistence model for received payments
type ReceiptModel struct {
	OwnedModel
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	PropertyID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Date       time.Time       `gorm:"not null;index"`
	Type       string          `gorm:"type:varchar(20);not null"`
	Status     string          `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ToDomain converts the model to the domain entity
func (m *ReceiptModel) ToDomain() *property.Receipt {
	return &property.Receipt{
		OwnedAggregateRoot: m.OwnedRoot(),
		TenantID:           m.TenantID,
		PropertyID:         m.PropertyID,
		Amount:             m.Amount,
		Date:               m.Date,
		Type:               property.ReceiptType(m.Type),
		Status:             property.ReceiptStatus(m.Status),
	}
}

// ReceiptModelFromDomain creates a persistence model from the domain entity
func ReceiptModelFromDomain(r *property.Receipt) *ReceiptModel {
	m := &ReceiptModel{
		TenantID:   r.TenantID,
		PropertyID: r.PropertyID,
		Amount:     r.Amount,
		Date:       UTC(r.Date),
		Type:       string(r.Type),
		Status:     string(r.Status),
	}
	m.FromOwnedRoot(r.OwnedAggregateRoot)
	return m
}

// ExpenseModel is the persistence model for property expenses
type ExpenseModel struct {
	OwnedModel
	PropertyID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Date        time.Time       `gorm:"not null;index"`
	Category    string          `gorm:"type:varchar(50);not null"`
	Description string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the model to the domain entity
func (m *ExpenseModel) ToDomain() *property.Expense {
	return &property.Expense{
		OwnedAggregateRoot: m.OwnedRoot(),
		PropertyID:         m.PropertyID,
		Amount:             m.Amount,
		Date:               m.Date,
		Category:           m.Category,
		Description:        m.Description,
	}
}

// ExpenseModelFromDomain creates a persistence model from the domain entity
func ExpenseModelFromDomain(e *property.Expense) *ExpenseModel {
	m := &ExpenseModel{
		PropertyID:  e.PropertyID,
		Amount:      e.Amount,
		Date:        UTC(e.Date),
		Category:    e.Category,
		Description: e.Description,
	}
	m.FromOwnedRoot(e.OwnedAggregateRoot)
	return m
}

// MaintenanceTicketModel is the persistence model for maintenance tickets
type MaintenanceTicketModel struct {
	OwnedModel
	PropertyID uuid.UUID        `gorm:"type:uuid;not null;index"`
	TenantID   *uuid.UUID       `gorm:"type:uuid"`
	Title      string           `gorm:"type:varchar(200);not null"`
	Priority   string           `gorm:"type:varchar(20);not null"`
	Status     string           `gorm:"type:varchar(20);not null;index"`
	Cost       *decimal.Decimal `gorm:"type:decimal(18,2)"`
	ResolvedAt *time.Time
}

// TableName returns the table name for GORM
func (MaintenanceTicketModel) TableName() string {
	return "maintenance_tickets"
}

// ToDomain converts the model to the domain entity
func (m *MaintenanceTicketModel) ToDomain() *property.MaintenanceTicket {
	return &property.MaintenanceTicket{
		OwnedAggregateRoot: m.OwnedRoot(),
		PropertyID:         m.PropertyID,
		TenantID:           m.TenantID,
		Title:              m.Title,
		Priority:           property.TicketPriority(m.Priority),
		Status:             property.TicketStatus(m.Status),
		Cost:               m.Cost,
		ResolvedAt:         m.ResolvedAt,
	}
}

// MaintenanceTicketModelFromDomain creates a persistence model from the domain entity
func MaintenanceTicketModelFromDomain(t *property.MaintenanceTicket) *MaintenanceTicketModel {
	m := &MaintenanceTicketModel{
		PropertyID: t.PropertyID,
		TenantID:   t.TenantID,
		Title:      t.Title,
		Priority:   string(t.Priority),
		Status:     string(t.Status),
		Cost:       t.Cost,
		ResolvedAt: UTCPtr(t.ResolvedAt),
	}
	m.FromOwnedRoot(t.OwnedAggregateRoot)
	return m
}

// AllModels lists every model in dependency order, for AutoMigrate in tests
func AllModels() []any {
	return []any{
		&PropertyModel{},
		&TenantModel{},
		&LeaseModel{},
		&InvoiceModel{},
		&ReceiptModel{},
		&ExpenseModel{},
		&MaintenanceTicketModel{},
	}
}
