package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/property"
	"github.com/JIGLE/proman-sub000/internal/domain/report"
	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var (
	testNow  = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	testUser = uuid.New()
	errDB    = errors.New("connection refused")
)

// fakeStore serves every property repository from memory; err fails every read
type fakeStore struct {
	properties  []property.Property
	tenants     []property.Tenant
	leases      []property.Lease
	receipts    []property.Receipt
	expenses    []property.Expense
	maintenance []property.MaintenanceTicket
	err         error
}

type fakeProperties struct{ *fakeStore }
type fakeTenants struct{ *fakeStore }
type fakeLeases struct{ *fakeStore }
type fakeReceipts struct{ *fakeStore }
type fakeExpenses struct{ *fakeStore }
type fakeMaintenance struct{ *fakeStore }

func (f fakeProperties) FindByIDForUser(context.Context, uuid.UUID, uuid.UUID) (*property.Property, error) {
	return nil, shared.ErrNotFound
}
func (f fakeProperties) FindAllForUser(context.Context, uuid.UUID) ([]property.Property, error) {
	return f.properties, f.err
}
func (f fakeProperties) Create(context.Context, *property.Property) error { return nil }

func (f fakeTenants) FindByIDForUser(context.Context, uuid.UUID, uuid.UUID) (*property.Tenant, error) {
	return nil, shared.ErrNotFound
}
func (f fakeTenants) FindAllForUser(context.Context, uuid.UUID) ([]property.Tenant, error) {
	return f.tenants, f.err
}
func (f fakeTenants) FindByIDsForUser(context.Context, uuid.UUID, []uuid.UUID) ([]property.Tenant, error) {
	return f.tenants, f.err
}
func (f fakeTenants) Create(context.Context, *property.Tenant) error { return nil }

func (f fakeLeases) FindAllForUser(context.Context, uuid.UUID) ([]property.Lease, error) {
	return f.leases, f.err
}
func (f fakeLeases) FindActiveForUser(context.Context, uuid.UUID, time.Time) ([]property.Lease, error) {
	return f.leases, f.err
}
func (f fakeLeases) Create(context.Context, *property.Lease) error { return nil }

func (f fakeReceipts) FindAllForUser(context.Context, uuid.UUID, property.DateRange) ([]property.Receipt, error) {
	return f.receipts, f.err
}
func (f fakeReceipts) Create(context.Context, *property.Receipt) error { return nil }

func (f fakeExpenses) FindAllForUser(context.Context, uuid.UUID, property.DateRange) ([]property.Expense, error) {
	return f.expenses, f.err
}
func (f fakeExpenses) Create(context.Context, *property.Expense) error { return nil }

func (f fakeMaintenance) FindAllForUser(context.Context, uuid.UUID) ([]property.MaintenanceTicket, error) {
	return f.maintenance, f.err
}
func (f fakeMaintenance) Create(context.Context, *property.MaintenanceTicket) error { return nil }

func (f *fakeStore) repositories() Repositories {
	return Repositories{
		Properties:  fakeProperties{f},
		Tenants:     fakeTenants{f},
		Leases:      fakeLeases{f},
		Receipts:    fakeReceipts{f},
		Expenses:    fakeExpenses{f},
		Maintenance: fakeMaintenance{f},
	}
}

func newService(store *fakeStore) (*AnalyticsService, *observer.ObservedLogs) {
	core, logs := observer.New(zap.ErrorLevel)
	return NewAnalyticsService(store.repositories(), shared.FixedClock{At: testNow}, zap.New(core)), logs
}

func seededStore(t *testing.T) *fakeStore {
	t.Helper()
	prop, err := property.NewProperty(testUser, "Flat A", property.PropertyTypeApartment, valueobject.Address{}, decimal.NewFromInt(900), testNow.AddDate(-1, 0, 0))
	require.NoError(t, err)
	require.NoError(t, prop.SetStatus(property.PropertyStatusOccupied, testNow))

	vacant, err := property.NewProperty(testUser, "Flat B", property.PropertyTypeApartment, valueobject.Address{}, decimal.NewFromInt(700), testNow.AddDate(-1, 0, 0))
	require.NoError(t, err)

	tenant, err := property.NewTenant(testUser, "Ana", "ana@example.com", "", testNow.AddDate(-1, 0, 0))
	require.NoError(t, err)

	lease, err := property.NewLease(testUser, prop.ID, tenant.ID, testNow.AddDate(-1, 0, 0), testNow.AddDate(0, 0, 20), decimal.NewFromInt(900), testNow.AddDate(-1, 0, 0))
	require.NoError(t, err)

	paid, err := property.NewReceipt(testUser, tenant.ID, prop.ID, decimal.NewFromInt(900), testNow.AddDate(0, 0, -5), property.ReceiptTypeRent, property.ReceiptStatusPaid, testNow)
	require.NoError(t, err)

	return &fakeStore{
		properties: []property.Property{*prop, *vacant},
		tenants:    []property.Tenant{*tenant},
		leases:     []property.Lease{*lease},
		receipts:   []property.Receipt{*paid},
	}
}

func TestAnalyticsService_Dashboard(t *testing.T) {
	svc, logs := newService(seededStore(t))

	d := svc.GetDashboardAnalytics(context.Background(), testUser, DashboardOptions{})
	require.NotNil(t, d)

	assert.Equal(t, 2, d.KPIs.TotalProperties)
	assert.Equal(t, "50", d.KPIs.OccupancyRate.String())
	assert.Len(t, d.RevenueByMonth, DefaultRevenueMonths)
	assert.Equal(t, "2025-06", d.RevenueByMonth[len(d.RevenueByMonth)-1].Month)
	assert.True(t, d.RevenueByMonth[len(d.RevenueByMonth)-1].Revenue.Equal(decimal.NewFromInt(900)))
	assert.Len(t, d.PropertyPerformance, 2)
	require.Len(t, d.LeaseExpirations, 1)
	assert.Equal(t, report.ExpirationRiskCritical, d.LeaseExpirations[0].Risk)
	assert.Len(t, d.OccupancyTrend, DefaultTrendMonths)
	assert.NotEmpty(t, d.RecentActivities)
	assert.Equal(t, testNow, d.GeneratedAt)
	assert.Equal(t, 0, logs.Len())
}

func TestAnalyticsService_FailuresFallBackToDefaults(t *testing.T) {
	svc, logs := newService(&fakeStore{err: errDB})

	d := svc.GetDashboardAnalytics(context.Background(), testUser, DashboardOptions{})
	require.NotNil(t, d)

	assert.Equal(t, report.EmptyKPIMetrics(), d.KPIs)
	assert.True(t, d.KPIs.CollectionRate.Equal(decimal.NewFromInt(100)))
	assert.Empty(t, d.RevenueByMonth)
	assert.Empty(t, d.PropertyPerformance)
	assert.Empty(t, d.LeaseExpirations)
	assert.Equal(t, 0, d.MaintenanceStats.Total)
	assert.Empty(t, d.OccupancyTrend)
	assert.Empty(t, d.RecentActivities)

	assert.Equal(t, 7, logs.Len())
	for _, entry := range logs.All() {
		assert.Equal(t, "analytics metric failed, using default", entry.Message)
	}
}

func TestAnalyticsService_EmptyPortfolio(t *testing.T) {
	svc, _ := newService(&fakeStore{})

	kpis := svc.GetKPIMetrics(context.Background(), testUser)
	assert.True(t, kpis.OccupancyRate.IsZero())
	assert.True(t, kpis.CollectionRate.Equal(decimal.NewFromInt(100)))

	assert.Empty(t, svc.GetLeaseExpirations(context.Background(), testUser, 0))
	assert.Len(t, svc.GetOccupancyTrend(context.Background(), testUser, 3), 3)
}
