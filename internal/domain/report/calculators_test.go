package report

import (
	"testing"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/property"
	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func owned(now time.Time) shared.OwnedAggregateRoot {
	return shared.NewOwnedAggregateRoot(uuid.Nil, now)
}

func receipt(propertyID uuid.UUID, amount int64, date time.Time, status property.ReceiptStatus) property.Receipt {
	return property.Receipt{
		OwnedAggregateRoot: owned(date),
		PropertyID:         propertyID,
		Amount:             decimal.NewFromInt(amount),
		Date:               date,
		Status:             status,
	}
}

func TestOccupancyAndCollectionDefaults(t *testing.T) {
	assert.True(t, OccupancyRate(0, 0).IsZero())
	assert.True(t, CollectionRate(nil).Equal(decimal.NewFromInt(100)))

	m := ComputeKPIMetrics(Portfolio{}, refNow)
	assert.True(t, m.OccupancyRate.IsZero())
	assert.True(t, m.CollectionRate.Equal(decimal.NewFromInt(100)))
}

func TestComputeKPIMetrics(t *testing.T) {
	p1 := property.Property{OwnedAggregateRoot: owned(refNow), Name: "A", Status: property.PropertyStatusOccupied}
	p2 := property.Property{OwnedAggregateRoot: owned(refNow), Name: "B", Status: property.PropertyStatusVacant}
	p3 := property.Property{OwnedAggregateRoot: owned(refNow), Name: "C", Status: property.PropertyStatusOccupied}

	portfolio := Portfolio{
		Properties: []property.Property{p1, p2, p3},
		Tenants: []property.Tenant{
			{OwnedAggregateRoot: owned(refNow), Status: property.TenantStatusActive},
			{OwnedAggregateRoot: owned(refNow), Status: property.TenantStatusInactive},
		},
		Leases: []property.Lease{{
			OwnedAggregateRoot: owned(refNow),
			StartDate:          refNow.AddDate(0, -3, 0),
			EndDate:            refNow.AddDate(0, 9, 0),
			Status:             property.LeaseStatusActive,
		}},
		Receipts: []property.Receipt{
			receipt(p1.ID, 800, refNow.AddDate(0, 0, -3), property.ReceiptStatusPaid),
			receipt(p1.ID, 800, refNow.AddDate(0, -1, 0), property.ReceiptStatusPaid),
			receipt(p3.ID, 400, refNow.AddDate(0, 0, -1), property.ReceiptStatusOverdue),
		},
		Expenses: []property.Expense{
			{OwnedAggregateRoot: owned(refNow), PropertyID: p1.ID, Amount: decimal.NewFromInt(150), Date: refNow},
		},
		Maintenance: []property.MaintenanceTicket{
			{OwnedAggregateRoot: owned(refNow), Status: property.TicketStatusOpen},
			{OwnedAggregateRoot: owned(refNow), Status: property.TicketStatusResolved},
		},
	}

	m := ComputeKPIMetrics(portfolio, refNow)
	assert.Equal(t, 3, m.TotalProperties)
	assert.Equal(t, 2, m.OccupiedProperties)
	assert.Equal(t, "66.67", m.OccupancyRate.StringFixed(2))
	assert.Equal(t, 1, m.TotalTenants)
	assert.Equal(t, 1, m.ActiveLeases)
	assert.Equal(t, "1600.00", m.TotalRevenue.StringFixed(2))
	assert.Equal(t, "800.00", m.MonthlyRevenue.StringFixed(2))
	assert.Equal(t, "400.00", m.OutstandingAmount.StringFixed(2))
	assert.Equal(t, "1450.00", m.NetIncome.StringFixed(2))
	assert.Equal(t, "80.00", m.CollectionRate.StringFixed(2))
	assert.Equal(t, 1, m.OpenMaintenanceTickets)
}

func TestComputeKPIMetrics_MonthlyRevenueUsesBusinessZone(t *testing.T) {
	lisbon, err := time.LoadLocation("Europe/Lisbon")
	require.NoError(t, err)
	now := time.Date(2025, 6, 1, 0, 30, 0, 0, lisbon)
	propertyID := uuid.New()

	m := ComputeKPIMetrics(Portfolio{
		Receipts: []property.Receipt{
			// 00:15 on June 1st in Lisbon
			receipt(propertyID, 700, time.Date(2025, 5, 31, 23, 15, 0, 0, time.UTC), property.ReceiptStatusPaid),
			// 23:30 on May 31st in Lisbon
			receipt(propertyID, 300, time.Date(2025, 5, 31, 22, 30, 0, 0, time.UTC), property.ReceiptStatusPaid),
		},
	}, now)

	assert.Equal(t, "700.00", m.MonthlyRevenue.StringFixed(2))
	assert.Equal(t, "1000.00", m.TotalRevenue.StringFixed(2))
}

func TestComputeRevenueByMonth(t *testing.T) {
	pid := uuid.New()
	receipts := []property.Receipt{
		receipt(pid, 500, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), property.ReceiptStatusPaid),
		receipt(pid, 500, time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC), property.ReceiptStatusPaid),
		receipt(pid, 999, time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC), property.ReceiptStatusPending),
		receipt(pid, 500, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), property.ReceiptStatusPaid),
	}
	expenses := []property.Expense{
		{PropertyID: pid, Amount: decimal.NewFromInt(120), Date: time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)},
	}

	got := ComputeRevenueByMonth(receipts, expenses, 3, refNow)
	require.Len(t, got, 3)
	assert.Equal(t, "2025-04", got[0].Month)
	assert.Equal(t, "500.00", got[0].Revenue.StringFixed(2))
	assert.Equal(t, "380.00", got[0].NetIncome.StringFixed(2))
	assert.Equal(t, "2025-05", got[1].Month)
	assert.True(t, got[1].Revenue.IsZero())
	assert.Equal(t, "2025-06", got[2].Month)
	assert.Equal(t, "500.00", got[2].Revenue.StringFixed(2))

	assert.Empty(t, ComputeRevenueByMonth(receipts, expenses, 0, refNow))
}

func TestComputePropertyPerformance(t *testing.T) {
	good := property.Property{OwnedAggregateRoot: owned(refNow), Name: "Good"}
	bad := property.Property{OwnedAggregateRoot: owned(refNow), Name: "Bad"}

	got := ComputePropertyPerformance(Portfolio{
		Properties: []property.Property{bad, good},
		Receipts: []property.Receipt{
			receipt(good.ID, 1000, refNow, property.ReceiptStatusPaid),
			receipt(bad.ID, 100, refNow, property.ReceiptStatusPaid),
		},
		Expenses: []property.Expense{{PropertyID: bad.ID, Amount: decimal.NewFromInt(300), Date: refNow}},
		Maintenance: []property.MaintenanceTicket{
			{OwnedAggregateRoot: owned(refNow), PropertyID: bad.ID},
		},
	})

	require.Len(t, got, 2)
	assert.Equal(t, "Good", got[0].PropertyName)
	assert.Equal(t, "Bad", got[1].PropertyName)
	assert.Equal(t, "-200.00", got[1].NetIncome.StringFixed(2))
	assert.Equal(t, 1, got[1].MaintenanceCount)
}

func TestClassifyExpiration(t *testing.T) {
	tests := []struct {
		days int
		want ExpirationRisk
	}{
		{-1, ExpirationRiskExpired},
		{0, ExpirationRiskCritical},
		{30, ExpirationRiskCritical},
		{31, ExpirationRiskWarning},
		{60, ExpirationRiskWarning},
		{61, ExpirationRiskHealthy},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyExpiration(tt.days), "days %d", tt.days)
	}
}

func TestComputeLeaseExpirations(t *testing.T) {
	prop := property.Property{OwnedAggregateRoot: owned(refNow), Name: "Flat 1"}
	tenant := property.Tenant{OwnedAggregateRoot: owned(refNow), Name: "Rui"}
	lease := func(endOffset int, status property.LeaseStatus) property.Lease {
		return property.Lease{
			OwnedAggregateRoot: owned(refNow),
			PropertyID:         prop.ID,
			TenantID:           tenant.ID,
			StartDate:          refNow.AddDate(-1, 0, 0),
			EndDate:            refNow.AddDate(0, 0, endOffset),
			Status:             status,
		}
	}

	got := ComputeLeaseExpirations(Portfolio{
		Properties: []property.Property{prop},
		Tenants:    []property.Tenant{tenant},
		Leases: []property.Lease{
			lease(61, property.LeaseStatusActive),
			lease(200, property.LeaseStatusActive),
			lease(30, property.LeaseStatusActive),
			lease(-1, property.LeaseStatusActive),
			lease(10, property.LeaseStatusTerminated),
		},
	}, 90, refNow)

	require.Len(t, got, 3)
	assert.Equal(t, ExpirationRiskExpired, got[0].Risk)
	assert.Equal(t, ExpirationRiskCritical, got[1].Risk)
	assert.Equal(t, ExpirationRiskHealthy, got[2].Risk)
	assert.Equal(t, "Flat 1", got[1].PropertyName)
	assert.Equal(t, "Rui", got[1].TenantName)
}

func TestComputeMaintenanceStats(t *testing.T) {
	cost := decimal.NewFromInt(120)
	resolvedAt := refNow.Add(72 * time.Hour)
	tickets := []property.MaintenanceTicket{
		{OwnedAggregateRoot: owned(refNow), Status: property.TicketStatusOpen, Priority: property.TicketPriorityHigh},
		{OwnedAggregateRoot: owned(refNow), Status: property.TicketStatusInProgress, Priority: property.TicketPriorityHigh},
		{OwnedAggregateRoot: owned(refNow), Status: property.TicketStatusResolved, Priority: property.TicketPriorityLow, Cost: &cost, ResolvedAt: &resolvedAt},
	}

	s := ComputeMaintenanceStats(tickets)
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Open)
	assert.Equal(t, 1, s.InProgress)
	assert.Equal(t, 1, s.Resolved)
	assert.Equal(t, 2, s.ByPriority["high"])
	assert.Equal(t, "120.00", s.TotalCost.StringFixed(2))
	assert.Equal(t, "3.0", s.AverageResolutionDays.StringFixed(1))

	empty := ComputeMaintenanceStats(nil)
	assert.True(t, empty.AverageResolutionDays.IsZero())
}

func TestComputeOccupancyTrend(t *testing.T) {
	prop := property.Property{OwnedAggregateRoot: owned(refNow)}
	other := property.Property{OwnedAggregateRoot: owned(refNow)}
	leases := []property.Lease{{
		PropertyID: prop.ID,
		StartDate:  time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC),
		Status:     property.LeaseStatusActive,
	}}

	got := ComputeOccupancyTrend([]property.Property{prop, other}, leases, 3, refNow)
	require.Len(t, got, 3)
	assert.Equal(t, "2025-04", got[0].Month)
	assert.Equal(t, 0, got[0].Occupied)
	assert.Equal(t, 1, got[1].Occupied)
	assert.Equal(t, "50.00", got[2].OccupancyRate.StringFixed(2))

	none := ComputeOccupancyTrend(nil, nil, 2, refNow)
	assert.True(t, none[0].OccupancyRate.IsZero())
}

func TestComputeRecentActivities(t *testing.T) {
	pid := uuid.New()
	receipts := []property.Receipt{
		receipt(pid, 100, refNow.AddDate(0, 0, -5), property.ReceiptStatusPaid),
		receipt(pid, 200, refNow.AddDate(0, 0, -1), property.ReceiptStatusPaid),
		receipt(pid, 300, refNow, property.ReceiptStatusPending),
	}
	expenses := []property.Expense{{OwnedAggregateRoot: owned(refNow), Amount: decimal.NewFromInt(5), Date: refNow.AddDate(0, 0, -3), Category: "repairs"}}

	got := ComputeRecentActivities(Portfolio{Receipts: receipts, Expenses: expenses}, 2)
	require.Len(t, got, 2)
	assert.Equal(t, ActivityPayment, got[0].Type)
	assert.Equal(t, "200", got[0].Amount.String())
	assert.Equal(t, ActivityExpense, got[1].Type)
	assert.Equal(t, "repairs", got[1].Description)
}
