package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/invoicing"
	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements invoicing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByIDForUser finds an invoice by ID within the user's scope
func (r *GormInvoiceRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForUser lists invoices matching the filter. A non-positive page
// size returns every match.
func (r *GormInvoiceRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := r.applyFilter(r.scoped(ctx, userID), filter)

	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	query = query.Order(fmt.Sprintf("%s %s", orderBy, ValidateSortOrder(filter.OrderDir))).Order("number ASC")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]invoicing.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices, nil
}

// CountForUser counts invoices matching the filter, ignoring pagination
func (r *GormInvoiceRepository) CountForUser(ctx context.Context, userID uuid.UUID, filter invoicing.InvoiceFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.scoped(ctx, userID), filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindNumbersWithPrefix returns the user's invoice numbers that start with prefix
func (r *GormInvoiceRepository) FindNumbersWithPrefix(ctx context.Context, userID uuid.UUID, prefix string) ([]string, error) {
	var numbers []string
	if err := r.scoped(ctx, userID).
		Where("number LIKE ?", prefix+"%").
		Pluck("number", &numbers).Error; err != nil {
		return nil, err
	}
	return numbers, nil
}

// FindUsersWithPendingDue lists the users owning pending invoices due before the given time
func (r *GormInvoiceRepository) FindUsersWithPendingDue(ctx context.Context, before time.Time) ([]uuid.UUID, error) {
	var userIDs []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("status = ? AND due_date < ?", invoicing.InvoiceStatusPending, models.UTC(before)).
		Distinct().
		Pluck("user_id", &userIDs).Error; err != nil {
		return nil, err
	}
	return userIDs, nil
}

// Create inserts a new invoice. A number already used by the same user
// yields shared.ErrAlreadyExists.
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *invoicing.Invoice) error {
	model, err := models.InvoiceModelFromDomain(invoice)
	if err != nil {
		return err
	}
	return translateError(r.db.WithContext(ctx).Create(model).Error)
}

// Save persists changes with optimistic locking. The domain has already
// incremented the version, so the stored row must hold version-1.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	model, err := models.InvoiceModelFromDomain(invoice)
	if err != nil {
		return err
	}
	expected := invoice.GetVersion() - 1

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.InvoiceModel{}).
			Where("id = ? AND user_id = ? AND version = ?", invoice.ID, invoice.UserID, expected).
			Select("*").
			Omit("id", "user_id", "created_at").
			Updates(model)
		if result.Error != nil {
			return translateError(result.Error)
		}
		if result.RowsAffected > 0 {
			return nil
		}

		var count int64
		if err := tx.Model(&models.InvoiceModel{}).
			Where("id = ? AND user_id = ?", invoice.ID, invoice.UserID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	})
}

func (r *GormInvoiceRepository) scoped(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Where("user_id = ?", userID)
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter invoicing.InvoiceFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PropertyID != nil {
		query = query.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", models.UTC(*filter.DueFrom))
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", models.UTC(*filter.DueTo))
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date < ?", models.UTC(*filter.DueBefore))
	}
	if filter.IssuedFrom != nil {
		query = query.Where("created_at >= ?", models.UTC(*filter.IssuedFrom))
	}
	if filter.IssuedTo != nil {
		query = query.Where("created_at <= ?", models.UTC(*filter.IssuedTo))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(number) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	return query
}
