package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// KPIMetrics is the headline portfolio summary
type KPIMetrics struct {
	TotalProperties        int             `json:"total_properties"`
	OccupiedProperties     int             `json:"occupied_properties"`
	OccupancyRate          decimal.Decimal `json:"occupancy_rate"` // 0 with no properties
	TotalTenants           int             `json:"total_tenants"`
	ActiveLeases           int             `json:"active_leases"`
	MonthlyRevenue         decimal.Decimal `json:"monthly_revenue"` // collected in the current month
	TotalRevenue           decimal.Decimal `json:"total_revenue"`
	TotalExpenses          decimal.Decimal `json:"total_expenses"`
	NetIncome              decimal.Decimal `json:"net_income"`
	CollectionRate         decimal.Decimal `json:"collection_rate"` // 100 with no receipts
	OutstandingAmount      decimal.Decimal `json:"outstanding_amount"`
	OpenMaintenanceTickets int             `json:"open_maintenance_tickets"`
}

// RevenueByMonth is one month of income and cost
type RevenueByMonth struct {
	Month     string          `json:"month"` // YYYY-MM
	Revenue   decimal.Decimal `json:"revenue"`
	Expenses  decimal.Decimal `json:"expenses"`
	NetIncome decimal.Decimal `json:"net_income"`
}

// PropertyPerformance ranks a single property
type PropertyPerformance struct {
	PropertyID       uuid.UUID       `json:"property_id"`
	PropertyName     string          `json:"property_name"`
	Status           string          `json:"status"`
	Revenue          decimal.Decimal `json:"revenue"`
	Expenses         decimal.Decimal `json:"expenses"`
	NetIncome        decimal.Decimal `json:"net_income"`
	CollectionRate   decimal.Decimal `json:"collection_rate"`
	MaintenanceCount int             `json:"maintenance_count"`
}

// ExpirationRisk bands a lease by days left until it ends
type ExpirationRisk string

const (
	ExpirationRiskExpired  ExpirationRisk = "expired"
	ExpirationRiskCritical ExpirationRisk = "critical"
	ExpirationRiskWarning  ExpirationRisk = "warning"
	ExpirationRiskHealthy  ExpirationRisk = "healthy"
)

// LeaseExpiration is an upcoming or past lease end
type LeaseExpiration struct {
	LeaseID             uuid.UUID       `json:"lease_id"`
	PropertyID          uuid.UUID       `json:"property_id"`
	PropertyName        string          `json:"property_name"`
	TenantID            uuid.UUID       `json:"tenant_id"`
	TenantName          string          `json:"tenant_name"`
	EndDate             time.Time       `json:"end_date"`
	MonthlyRent         decimal.Decimal `json:"monthly_rent"`
	DaysUntilExpiration int             `json:"days_until_expiration"`
	Risk                ExpirationRisk  `json:"risk"`
}

// MaintenanceStats summarises the repair workload
type MaintenanceStats struct {
	Total                 int             `json:"total"`
	Open                  int             `json:"open"`
	InProgress            int             `json:"in_progress"`
	Resolved              int             `json:"resolved"`
	ByPriority            map[string]int  `json:"by_priority"`
	TotalCost             decimal.Decimal `json:"total_cost"`
	AverageResolutionDays decimal.Decimal `json:"average_resolution_days"`
}

// OccupancyTrendPoint is the occupancy at the end of one month
type OccupancyTrendPoint struct {
	Month         string          `json:"month"` // YYYY-MM
	Occupied      int             `json:"occupied"`
	Total         int             `json:"total"`
	OccupancyRate decimal.Decimal `json:"occupancy_rate"`
}

// ActivityType classifies a recent activity entry
type ActivityType string

const (
	ActivityPayment     ActivityType = "payment"
	ActivityMaintenance ActivityType = "maintenance"
	ActivityLease       ActivityType = "lease"
	ActivityExpense     ActivityType = "expense"
)

// RecentActivity is one entry of the activity feed
type RecentActivity struct {
	Type        ActivityType     `json:"type"`
	Description string           `json:"description"`
	Date        time.Time        `json:"date"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	ReferenceID uuid.UUID        `json:"reference_id"`
}

// DashboardAnalytics combines every metric for the dashboard
type DashboardAnalytics struct {
	KPIs                KPIMetrics            `json:"kpis"`
	RevenueByMonth      []RevenueByMonth      `json:"revenue_by_month"`
	PropertyPerformance []PropertyPerformance `json:"property_performance"`
	LeaseExpirations    []LeaseExpiration     `json:"lease_expirations"`
	MaintenanceStats    MaintenanceStats      `json:"maintenance_stats"`
	OccupancyTrend      []OccupancyTrendPoint `json:"occupancy_trend"`
	RecentActivities    []RecentActivity      `json:"recent_activities"`
	GeneratedAt         time.Time             `json:"generated_at"`
}

// EmptyKPIMetrics is the fallback used when KPIs cannot be computed
func EmptyKPIMetrics() KPIMetrics {
	return KPIMetrics{
		OccupancyRate:     decimal.Zero,
		MonthlyRevenue:    decimal.Zero,
		TotalRevenue:      decimal.Zero,
		TotalExpenses:     decimal.Zero,
		NetIncome:         decimal.Zero,
		CollectionRate:    decimal.NewFromInt(100),
		OutstandingAmount: decimal.Zero,
	}
}

// EmptyMaintenanceStats is the fallback used when stats cannot be computed
func EmptyMaintenanceStats() MaintenanceStats {
	return MaintenanceStats{
		ByPriority:            map[string]int{},
		TotalCost:             decimal.Zero,
		AverageResolutionDays: decimal.Zero,
	}
}
