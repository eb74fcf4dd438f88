package persistence

import (
	"context"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/property"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPropertyRepository implements property.PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindByIDForUser finds a property by ID within the user's scope
func (r *GormPropertyRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*property.Property, error) {
	var model models.PropertyModel
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForUser lists the user's properties by name
func (r *GormPropertyRepository) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]property.Property, error) {
	var rows []models.PropertyModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]property.Property, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Create inserts a property
func (r *GormPropertyRepository) Create(ctx context.Context, p *property.Property) error {
	return translateError(r.db.WithContext(ctx).Create(models.PropertyModelFromDomain(p)).Error)
}

// GormTenantRepository implements property.TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByIDForUser finds a tenant by ID within the user's scope
func (r *GormTenantRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*property.Tenant, error) {
	var model models.TenantModel
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, id).First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForUser lists the user's tenants by name
func (r *GormTenantRepository) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]property.Tenant, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

// FindByIDsForUser loads the listed tenants; unknown ids are skipped
func (r *GormTenantRepository) FindByIDsForUser(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]property.Tenant, error) {
	if len(ids) == 0 {
		return []property.Tenant{}, nil
	}
	return r.find(r.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids))
}

func (r *GormTenantRepository) find(query *gorm.DB) ([]property.Tenant, error) {
	var rows []models.TenantModel
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]property.Tenant, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Create inserts a tenant
func (r *GormTenantRepository) Create(ctx context.Context, t *property.Tenant) error {
	return translateError(r.db.WithContext(ctx).Create(models.TenantModelFromDomain(t)).Error)
}

// GormLeaseRepository implements property.LeaseRepository using GORM
type GormLeaseRepository struct {
	db *gorm.DB
}

// NewGormLeaseRepository creates a new GormLeaseRepository
func NewGormLeaseRepository(db *gorm.DB) *GormLeaseRepository {
	return &GormLeaseRepository{db: db}
}

// FindAllForUser lists every lease of the user by end date
func (r *GormLeaseRepository) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]property.Lease, error) {
	return r.find(r.db.WithContext(ctx).Where("user_id = ?", userID))
}

// FindActiveForUser returns active leases whose period contains at, bounds inclusive
func (r *GormLeaseRepository) FindActiveForUser(ctx context.Context, userID uuid.UUID, at time.Time) ([]property.Lease, error) {
	return r.find(r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, property.LeaseStatusActive).
		Where("start_date <= ? AND end_date >= ?", models.UTC(at), models.UTC(at)))
}

func (r *GormLeaseRepository) find(query *gorm.DB) ([]property.Lease, error) {
	var rows []models.LeaseModel
	if err := query.Order("end_date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]property.Lease, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Create inserts a lease
func (r *GormLeaseRepository) Create(ctx context.Context, l *property.Lease) error {
	return translateError(r.db.WithContext(ctx).Create(models.LeaseModelFromDomain(l)).Error)
}

// GormReceiptRepository implements property.ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindAllForUser lists receipts dated within the range, oldest first
func (r *GormReceiptRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, dates property.DateRange) ([]property.Receipt, error) {
	var rows []models.ReceiptModel
	query := withDateRange(r.db.WithContext(ctx).Where("user_id = ?", userID), "date", dates)
	if err := query.Order("date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]property.Receipt, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Create inserts a receipt
func (r *GormReceiptRepository) Create(ctx context.Context, receipt *property.Receipt) error {
	return translateError(r.db.WithContext(ctx).Create(models.ReceiptModelFromDomain(receipt)).Error)
}

// GormExpenseRepository implements property.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindAllForUser lists expenses dated within the range, oldest first
func (r *GormExpenseRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, dates property.DateRange) ([]property.Expense, error) {
	var rows []models.ExpenseModel
	query := withDateRange(r.db.WithContext(ctx).Where("user_id = ?", userID), "date", dates)
	if err := query.Order("date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]property.Expense, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Create inserts an expense
func (r *GormExpenseRepository) Create(ctx context.Context, e *property.Expense) error {
	return translateError(r.db.WithContext(ctx).Create(models.ExpenseModelFromDomain(e)).Error)
}

// GormMaintenanceRepository implements property.MaintenanceRepository using GORM
type GormMaintenanceRepository struct {
	db *gorm.DB
}

// NewGormMaintenanceRepository creates a new GormMaintenanceRepository
func NewGormMaintenanceRepository(db *gorm.DB) *GormMaintenanceRepository {
	return &GormMaintenanceRepository{db: db}
}

// FindAllForUser lists tickets newest first
func (r *GormMaintenanceRepository) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]property.MaintenanceTicket, error) {
	var rows []models.MaintenanceTicketModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]property.MaintenanceTicket, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Create inserts a maintenance ticket
func (r *GormMaintenanceRepository) Create(ctx context.Context, t *property.MaintenanceTicket) error {
	return translateError(r.db.WithContext(ctx).Create(models.MaintenanceTicketModelFromDomain(t)).Error)
}

func withDateRange(query *gorm.DB, column string, dates property.DateRange) *gorm.DB {
	if dates.From != nil {
		query = query.Where(column+" >= ?", models.UTC(*dates.From))
	}
	if dates.To != nil {
		query = query.Where(column+" <= ?", models.UTC(*dates.To))
	}
	return query
}

// Repositories bundles every GORM repository over one connection
type Repositories struct {
	Invoices    *GormInvoiceRepository
	Properties  *GormPropertyRepository
	Tenants     *GormTenantRepository
	Leases      *GormLeaseRepository
	Receipts    *GormReceiptRepository
	Expenses    *GormExpenseRepository
	Maintenance *GormMaintenanceRepository
}

// NewRepositories builds the repository set for db
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Invoices:    NewGormInvoiceRepository(db),
		Properties:  NewGormPropertyRepository(db),
		Tenants:     NewGormTenantRepository(db),
		Leases:      NewGormLeaseRepository(db),
		Receipts:    NewGormReceiptRepository(db),
		Expenses:    NewGormExpenseRepository(db),
		Maintenance: NewGormMaintenanceRepository(db),
	}
}
