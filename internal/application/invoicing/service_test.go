package invoicing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/invoicing"
	"github.com/JIGLE/proman-sub000/internal/domain/property"
	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockInvoiceRepository is a mock implementation of invoicing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByIDForUser(ctx context.Context, userID, id uuid.UUID) (*invoicing.Invoice, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) CountForUser(ctx context.Context, userID uuid.UUID, filter invoicing.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) FindNumbersWithPrefix(ctx context.Context, userID uuid.UUID, prefix string) ([]string, error) {
	args := m.Called(ctx, userID, prefix)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockInvoiceRepository) FindUsersWithPendingDue(ctx context.Context, before time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, before)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *invoicing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

// MockLeaseRepository is a mock implementation of property.LeaseRepository
type MockLeaseRepository struct {
	mock.Mock
}

func (m *MockLeaseRepository) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]property.Lease, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]property.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindActiveForUser(ctx context.Context, userID uuid.UUID, at time.Time) ([]property.Lease, error) {
	args := m.Called(ctx, userID, at)
	return args.Get(0).([]property.Lease), args.Error(1)
}

func (m *MockLeaseRepository) Create(ctx context.Context, lease *property.Lease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

var (
	testNow  = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
	testUser = uuid.New()
)

func newTestService() (*InvoiceService, *MockInvoiceRepository, *MockLeaseRepository) {
	invoiceRepo := new(MockInvoiceRepository)
	leaseRepo := new(MockLeaseRepository)
	svc := NewInvoiceService(invoiceRepo, leaseRepo, shared.FixedClock{At: testNow}, nil)
	return svc, invoiceRepo, leaseRepo
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func pendingInvoice(t *testing.T, number, amount string, due time.Time) invoicing.Invoice {
	t.Helper()
	inv, err := invoicing.NewInvoice(testUser, number, dec(amount), due, due.AddDate(0, -1, 0))
	require.NoError(t, err)
	return *inv
}

func examplePolicy() invoicing.LateFeeConfig {
	return invoicing.LateFeeConfig{
		Enabled:         true,
		GracePeriodDays: 5,
		PercentageRate:  dec("5"),
		MaxPercentage:   decPtr("25"),
	}
}

func TestInvoiceService_Create(t *testing.T) {
	t.Run("assigns the next sequential number", func(t *testing.T) {
		svc, repo, _ := newTestService()
		repo.On("FindNumbersWithPrefix", mock.Anything, testUser, "INV-2025-").
			Return([]string{"INV-2025-00001", "INV-2025-00002"}, nil)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

		resp, err := svc.Create(context.Background(), testUser, CreateInvoiceRequest{
			Amount:      dec("750.5"),
			DueDate:     testNow.AddDate(0, 0, 10),
			Description: "  March rent ",
			Notes:       "first floor",
		})
		require.NoError(t, err)
		assert.Equal(t, "INV-2025-00003", resp.Number)
		assert.Equal(t, "pending", resp.Status)
		assert.True(t, resp.Amount.Equal(dec("750.50")))
		assert.True(t, resp.OriginalAmount.Equal(resp.Amount))
		assert.Equal(t, "March rent", resp.Description)
		assert.Equal(t, "first floor", resp.Notes)
		assert.Len(t, resp.LineItems, 1)
		repo.AssertExpectations(t)
	})

	t.Run("retries when the number was taken concurrently", func(t *testing.T) {
		svc, repo, _ := newTestService()
		repo.On("FindNumbersWithPrefix", mock.Anything, testUser, "INV-2025-").
			Return([]string{}, nil).Once()
		repo.On("FindNumbersWithPrefix", mock.Anything, testUser, "INV-2025-").
			Return([]string{"INV-2025-00001"}, nil).Once()
		repo.On("Create", mock.Anything, mock.AnythingOfType("*invoicing.Invoice")).Return(shared.ErrAlreadyExists).Once()
		repo.On("Create", mock.Anything, mock.AnythingOfType("*invoicing.Invoice")).Return(nil).Once()

		resp, err := svc.Create(context.Background(), testUser, CreateInvoiceRequest{Amount: dec("100"), DueDate: testNow})
		require.NoError(t, err)
		assert.Equal(t, "INV-2025-00002", resp.Number)
	})

	t.Run("rejects line items that do not add up to the amount", func(t *testing.T) {
		svc, repo, _ := newTestService()
		repo.On("FindNumbersWithPrefix", mock.Anything, testUser, "INV-2025-").Return([]string{}, nil)

		_, err := svc.Create(context.Background(), testUser, CreateInvoiceRequest{
			Amount:  dec("1000"),
			DueDate: testNow,
			LineItems: []LineItemRequest{
				{Description: "Rent", Quantity: dec("1"), UnitPrice: dec("900")},
				{Description: "Condo fee", Quantity: dec("1"), UnitPrice: dec("50")},
			},
		})
		assert.ErrorIs(t, err, invoicing.ErrLineItemsMismatch)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		svc, repo, _ := newTestService()
		repo.On("FindNumbersWithPrefix", mock.Anything, testUser, "INV-2025-").Return([]string{}, nil)

		_, err := svc.Create(context.Background(), testUser, CreateInvoiceRequest{Amount: dec("0"), DueDate: testNow})
		assert.ErrorIs(t, err, invoicing.ErrInvalidAmount)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestInvoiceService_NotFound(t *testing.T) {
	svc, repo, _ := newTestService()
	id := uuid.New()
	repo.On("FindByIDForUser", mock.Anything, testUser, id).Return(nil, shared.ErrNotFound)

	_, err := svc.GetByID(context.Background(), testUser, id)
	require.Error(t, err)
	assert.ErrorIs(t, err, invoicing.ErrInvoiceNotFound)
	assert.Equal(t, "Invoice not found", err.Error())

	_, err = svc.MarkAsPaid(context.Background(), testUser, id, MarkAsPaidRequest{})
	assert.Equal(t, "Invoice not found", err.Error())
}

func TestInvoiceService_UpdateMergesMetadata(t *testing.T) {
	svc, repo, _ := newTestService()
	inv := pendingInvoice(t, "INV-2025-00001", "500", testNow)
	inv.Metadata.Notes = "keep me"
	inv.Metadata.PaymentMethod = "transfer"
	repo.On("FindByIDForUser", mock.Anything, testUser, inv.ID).Return(&inv, nil)
	repo.On("Save", mock.Anything, &inv).Return(nil)

	resp, err := svc.Update(context.Background(), testUser, inv.ID, UpdateInvoiceRequest{
		LineItems: []LineItemRequest{{Description: "Rent", Quantity: dec("1"), UnitPrice: dec("450")}, {Description: "Water", Quantity: dec("1"), UnitPrice: dec("50")}},
	})
	require.NoError(t, err)
	assert.Len(t, resp.LineItems, 2)
	assert.Equal(t, "keep me", resp.Notes)
	assert.Equal(t, "transfer", resp.PaymentMethod)
	assert.Equal(t, 2, resp.Version)
}

func TestInvoiceService_MarkAsPaid(t *testing.T) {
	svc, repo, _ := newTestService()
	inv := pendingInvoice(t, "INV-2025-00001", "500", testNow)
	repo.On("FindByIDForUser", mock.Anything, testUser, inv.ID).Return(&inv, nil)
	repo.On("Save", mock.Anything, &inv).Return(nil)

	resp, err := svc.MarkAsPaid(context.Background(), testUser, inv.ID, MarkAsPaidRequest{PaymentMethod: "mbway", PaymentReference: "REF-1"})
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Status)
	require.NotNil(t, resp.PaidDate)
	assert.Equal(t, testNow, *resp.PaidDate)
	assert.Equal(t, "mbway", resp.PaymentMethod)
	assert.Equal(t, "REF-1", resp.PaymentReference)

	_, err = svc.Cancel(context.Background(), testUser, inv.ID)
	assert.ErrorIs(t, err, invoicing.ErrInvalidTransition)
}

func TestInvoiceService_ApplyLateFees(t *testing.T) {
	t.Run("charges the policy fee", func(t *testing.T) {
		svc, repo, _ := newTestService()
		overdue := pendingInvoice(t, "INV-2025-00001", "1000", testNow.AddDate(0, 0, -40))
		inGrace := pendingInvoice(t, "INV-2025-00002", "800", testNow.AddDate(0, 0, -3))
		repo.On("FindAllForUser", mock.Anything, testUser, mock.MatchedBy(func(f invoicing.InvoiceFilter) bool {
			return f.Status != nil && *f.Status == invoicing.InvoiceStatusPending && f.DueBefore != nil && f.DueBefore.Equal(testNow)
		})).Return([]invoicing.Invoice{overdue, inGrace}, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

		res, err := svc.ApplyLateFees(context.Background(), testUser, examplePolicy())
		require.NoError(t, err)

		require.Len(t, res.Applied, 1)
		applied := res.Applied[0]
		assert.Equal(t, "overdue", applied.Status)
		assert.True(t, applied.Amount.Equal(dec("1050")), applied.Amount.String())
		require.NotNil(t, applied.LateFee)
		assert.Equal(t, 35, applied.LateFee.DaysOverdue)
		assert.True(t, applied.LateFee.Amount.Equal(dec("50")))
		assert.Equal(t, 1, res.MarkedOverdue)
		assert.Empty(t, res.Failed)
		assert.True(t, res.TotalLateFees.Equal(dec("50")))
		repo.AssertNumberOfCalls(t, "Save", 2)
	})

	t.Run("skips invoices already charged", func(t *testing.T) {
		svc, repo, _ := newTestService()
		charged := pendingInvoice(t, "INV-2025-00001", "1000", testNow.AddDate(0, 0, -40))
		charged.Metadata.LateFee = &invoicing.LateFeeAudit{Applied: true, Amount: dec("50")}
		repo.On("FindAllForUser", mock.Anything, testUser, mock.Anything).Return([]invoicing.Invoice{charged}, nil)

		res, err := svc.ApplyLateFees(context.Background(), testUser, examplePolicy())
		require.NoError(t, err)
		assert.Empty(t, res.Applied)
		assert.Equal(t, 1, res.Skipped)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("collects save failures and continues", func(t *testing.T) {
		svc, repo, _ := newTestService()
		a := pendingInvoice(t, "INV-2025-00001", "1000", testNow.AddDate(0, 0, -40))
		b := pendingInvoice(t, "INV-2025-00002", "200", testNow.AddDate(0, 0, -40))
		repo.On("FindAllForUser", mock.Anything, testUser, mock.Anything).Return([]invoicing.Invoice{a, b}, nil)
		repo.On("Save", mock.Anything, mock.MatchedBy(func(inv *invoicing.Invoice) bool { return inv.ID == a.ID })).Return(errors.New("db down"))
		repo.On("Save", mock.Anything, mock.MatchedBy(func(inv *invoicing.Invoice) bool { return inv.ID == b.ID })).Return(nil)

		res, err := svc.ApplyLateFees(context.Background(), testUser, examplePolicy())
		require.NoError(t, err)
		require.Len(t, res.Failed, 1)
		assert.Equal(t, a.ID, res.Failed[0].InvoiceID)
		assert.Equal(t, "db down", res.Failed[0].Error)
		require.Len(t, res.Applied, 1)
		assert.Equal(t, b.ID, res.Applied[0].ID)
	})

	t.Run("leaves invoices not yet due across zones", func(t *testing.T) {
		lisbon, err := time.LoadLocation("Europe/Lisbon")
		require.NoError(t, err)
		// 01:00 in Lisbon summer time is 00:00Z, half an hour before the due instant
		now := time.Date(2025, 7, 10, 1, 0, 0, 0, lisbon)
		invoiceRepo := new(MockInvoiceRepository)
		svc := NewInvoiceService(invoiceRepo, new(MockLeaseRepository), shared.FixedClock{At: now}, nil)
		notDue := pendingInvoice(t, "INV-2025-00001", "1000", time.Date(2025, 7, 10, 0, 30, 0, 0, time.UTC))
		require.False(t, notDue.IsPastDue(now))
		invoiceRepo.On("FindAllForUser", mock.Anything, testUser, mock.Anything).Return([]invoicing.Invoice{notDue}, nil)

		res, err := svc.ApplyLateFees(context.Background(), testUser, examplePolicy())
		require.NoError(t, err)
		assert.Zero(t, res.MarkedOverdue)
		assert.Empty(t, res.Applied)
		invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects a negative policy", func(t *testing.T) {
		svc, _, _ := newTestService()
		cfg := examplePolicy()
		cfg.GracePeriodDays = -1
		_, err := svc.ApplyLateFees(context.Background(), testUser, cfg)
		assert.Error(t, err)
	})
}

func TestInvoiceService_PreviewLateFees(t *testing.T) {
	svc, repo, _ := newTestService()
	inv := pendingInvoice(t, "INV-2025-00001", "1000", testNow.AddDate(0, 0, -40))
	repo.On("FindAllForUser", mock.Anything, testUser, mock.Anything).Return([]invoicing.Invoice{inv}, nil)

	previews, err := svc.PreviewLateFees(context.Background(), testUser, examplePolicy())
	require.NoError(t, err)
	require.Len(t, previews, 1)
	assert.True(t, previews[0].NewAmount.Equal(dec("1050")))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestInvoiceService_ApplyLateFeesForAllUsers(t *testing.T) {
	svc, repo, _ := newTestService()
	other := uuid.New()
	repo.On("FindUsersWithPendingDue", mock.Anything, testNow).Return([]uuid.UUID{testUser, other}, nil)
	repo.On("FindAllForUser", mock.Anything, testUser, mock.Anything).Return([]invoicing.Invoice{}, nil)
	repo.On("FindAllForUser", mock.Anything, other, mock.Anything).Return([]invoicing.Invoice{}, errors.New("timeout"))

	results, err := svc.ApplyLateFeesForAllUsers(context.Background(), examplePolicy())
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Contains(t, results, testUser)
}

func activeLease(t *testing.T, rent string) property.Lease {
	t.Helper()
	l, err := property.NewLease(testUser, uuid.New(), uuid.New(), testNow.AddDate(-1, 0, 0), testNow.AddDate(1, 0, 0), dec(rent), testNow)
	require.NoError(t, err)
	l.Status = property.LeaseStatusActive
	return *l
}

func TestInvoiceService_GenerateBatchRentInvoices(t *testing.T) {
	svc, repo, leases := newTestService()
	l1, l2, l3 := activeLease(t, "900"), activeLease(t, "650"), activeLease(t, "1200")
	leases.On("FindActiveForUser", mock.Anything, testUser, testNow).Return([]property.Lease{l1, l2, l3}, nil)
	repo.On("FindNumbersWithPrefix", mock.Anything, testUser, "INV-2025-").Return([]string{"INV-2025-00004"}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(inv *invoicing.Invoice) bool { return *inv.LeaseID == l2.ID })).
		Return(errors.New("constraint violation"))
	repo.On("Create", mock.Anything, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

	res, err := svc.GenerateBatchRentInvoices(context.Background(), testUser, BatchRentRequest{
		DueDate: testNow.AddDate(0, 0, 8),
		Month:   "2025-03",
	})
	require.NoError(t, err)

	require.Len(t, res.Success, 2)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, l2.TenantID, res.Failed[0].TenantID)
	assert.Equal(t, "constraint violation", res.Failed[0].Error)

	first := res.Success[0]
	assert.Equal(t, "INV-2025-00005", first.Number)
	assert.Equal(t, "INV-2025-00006", res.Success[1].Number)
	assert.True(t, first.Amount.Equal(dec("900")))
	require.Len(t, first.LineItems, 1)
	assert.Equal(t, "Rent 2025-03", first.LineItems[0].Description)
	assert.Equal(t, &l1.TenantID, first.TenantID)
}

func TestInvoiceService_GetSummary(t *testing.T) {
	svc, repo, _ := newTestService()

	paid := pendingInvoice(t, "INV-2025-00001", "100.005", testNow)
	require.NoError(t, paid.MarkPaid("", "", testNow))
	paid2 := pendingInvoice(t, "INV-2025-00002", "100.005", testNow)
	require.NoError(t, paid2.MarkPaid("", "", testNow))
	overdue := pendingInvoice(t, "INV-2025-00003", "1000", testNow.AddDate(0, 0, -40))
	require.NoError(t, overdue.ApplyLateFee(invoicing.LateFeeResult{LateFee: dec("50"), DaysOverdue: 35}, examplePolicy(), testNow))
	pending := pendingInvoice(t, "INV-2025-00004", "300", testNow)
	cancelled := pendingInvoice(t, "INV-2025-00005", "80", testNow)
	require.NoError(t, cancelled.Cancel(testNow))

	start, end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), testNow
	repo.On("FindAllForUser", mock.Anything, testUser, mock.MatchedBy(func(f invoicing.InvoiceFilter) bool {
		return f.IssuedFrom != nil && f.IssuedFrom.Equal(start) && f.IssuedTo != nil && f.IssuedTo.Equal(end)
	})).Return([]invoicing.Invoice{paid, paid2, overdue, pending, cancelled}, nil)

	sum, err := svc.GetSummary(context.Background(), testUser, &start, &end)
	require.NoError(t, err)

	// NewInvoice rounds each amount to 100.01
	assert.Equal(t, "200.02", sum.TotalPaid.StringFixed(2))
	assert.Equal(t, "1050.00", sum.TotalOverdue.StringFixed(2))
	assert.Equal(t, "300.00", sum.TotalPending.StringFixed(2))
	assert.Equal(t, "80.00", sum.TotalCancelled.StringFixed(2))
	assert.Equal(t, "1550.02", sum.TotalInvoiced.StringFixed(2))
	assert.Equal(t, "50.00", sum.TotalLateFees.StringFixed(2))
	assert.Equal(t, 5, sum.InvoiceCount)
	assert.Equal(t, 2, sum.CountByStatus["paid"])
	assert.Equal(t, 1, sum.CountByStatus["cancelled"])

	_, err = svc.GetSummary(context.Background(), testUser, &end, &start)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestInvoiceService_GetSummaryOpenWindow(t *testing.T) {
	svc, repo, _ := newTestService()
	inv := pendingInvoice(t, "INV-2024-00001", "250", testNow)
	repo.On("FindAllForUser", mock.Anything, testUser, mock.MatchedBy(func(f invoicing.InvoiceFilter) bool {
		return f.IssuedFrom == nil && f.IssuedTo == nil
	})).Return([]invoicing.Invoice{inv}, nil)

	sum, err := svc.GetSummary(context.Background(), testUser, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.InvoiceCount)
	assert.Equal(t, "250.00", sum.TotalPending.StringFixed(2))
	assert.Nil(t, sum.PeriodStart)
	assert.Nil(t, sum.PeriodEnd)

	end := testNow
	repo.On("FindAllForUser", mock.Anything, testUser, mock.MatchedBy(func(f invoicing.InvoiceFilter) bool {
		return f.IssuedFrom == nil && f.IssuedTo != nil
	})).Return([]invoicing.Invoice{inv}, nil)
	sum, err = svc.GetSummary(context.Background(), testUser, nil, &end)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.InvoiceCount)
}

func TestInvoiceService_List(t *testing.T) {
	t.Run("passes filters through and paginates", func(t *testing.T) {
		svc, invoiceRepo, _ := newTestService()
		ctx := context.Background()
		propertyID := uuid.New()

		matches := mock.MatchedBy(func(f invoicing.InvoiceFilter) bool {
			return f.Page == 2 && f.PageSize == shared.MaxPageSize &&
				f.Search == "march" &&
				f.Status != nil && *f.Status == invoicing.InvoiceStatusOverdue &&
				f.PropertyID != nil && *f.PropertyID == propertyID &&
				f.TenantID == nil
		})
		items := []invoicing.Invoice{pendingInvoice(t, "INV-2025-00001", "100", testNow)}
		invoiceRepo.On("FindAllForUser", ctx, testUser, matches).Return(items, nil)
		invoiceRepo.On("CountForUser", ctx, testUser, matches).Return(int64(101), nil)

		page, err := svc.List(ctx, testUser, InvoiceListFilter{
			Status:     "overdue",
			PropertyID: propertyID.String(),
			Search:     "march",
			Page:       2,
			PageSize:   500,
		})
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, int64(101), page.Total)
		assert.Equal(t, 2, page.TotalPages)
		invoiceRepo.AssertExpectations(t)
	})

	t.Run("rejects a malformed tenant id", func(t *testing.T) {
		svc, invoiceRepo, _ := newTestService()

		_, err := svc.List(context.Background(), testUser, InvoiceListFilter{TenantID: "nope"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		invoiceRepo.AssertNotCalled(t, "FindAllForUser", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		svc, _, _ := newTestService()

		_, err := svc.List(context.Background(), testUser, InvoiceListFilter{Status: "draft"})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}
