package report

import (
	"context"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/property"
	"github.com/JIGLE/proman-sub000/internal/domain/report"
	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Dashboard defaults
const (
	DefaultRevenueMonths    = 12
	DefaultTrendMonths      = 6
	DefaultExpirationWindow = 90
	DefaultActivityLimit    = 10
)

// DashboardOptions tunes the dashboard windows; zero values take the defaults
type DashboardOptions struct {
	RevenueMonths    int `form:"revenue_months" binding:"omitempty,min=1,max=36"`
	TrendMonths      int `form:"trend_months" binding:"omitempty,min=1,max=36"`
	ExpirationWindow int `form:"expiration_window" binding:"omitempty,min=1,max=730"`
	ActivityLimit    int `form:"activity_limit" binding:"omitempty,min=1,max=100"`
}

func (o DashboardOptions) withDefaults() DashboardOptions {
	if o.RevenueMonths <= 0 {
		o.RevenueMonths = DefaultRevenueMonths
	}
	if o.TrendMonths <= 0 {
		o.TrendMonths = DefaultTrendMonths
	}
	if o.ExpirationWindow <= 0 {
		o.ExpirationWindow = DefaultExpirationWindow
	}
	if o.ActivityLimit <= 0 {
		o.ActivityLimit = DefaultActivityLimit
	}
	return o
}

// Repositories groups the read sources the analytics draw from
type Repositories struct {
	Properties  property.PropertyRepository
	Tenants     property.TenantRepository
	Leases      property.LeaseRepository
	Receipts    property.ReceiptRepository
	Expenses    property.ExpenseRepository
	Maintenance property.MaintenanceRepository
}

// AnalyticsService computes dashboard metrics for a user. No metric ever
// fails: a read error is logged and the metric falls back to its empty value.
type AnalyticsService struct {
	repos  Repositories
	clock  shared.Clock
	logger *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(repos Repositories, clock shared.Clock, logger *zap.Logger) *AnalyticsService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{repos: repos, clock: clock, logger: logger}
}

// portfolioParts selects which collections loadPortfolio reads
type portfolioParts struct {
	properties, tenants, leases, receipts, expenses, maintenance bool
	dates                                                        property.DateRange
}

func (s *AnalyticsService) loadPortfolio(ctx context.Context, userID uuid.UUID, parts portfolioParts) (report.Portfolio, error) {
	var p report.Portfolio
	g, ctx := errgroup.WithContext(ctx)
	if parts.properties {
		g.Go(func() (err error) {
			p.Properties, err = s.repos.Properties.FindAllForUser(ctx, userID)
			return err
		})
	}
	if parts.tenants {
		g.Go(func() (err error) {
			p.Tenants, err = s.repos.Tenants.FindAllForUser(ctx, userID)
			return err
		})
	}
	if parts.leases {
		g.Go(func() (err error) {
			p.Leases, err = s.repos.Leases.FindAllForUser(ctx, userID)
			return err
		})
	}
	if parts.receipts {
		g.Go(func() (err error) {
			p.Receipts, err = s.repos.Receipts.FindAllForUser(ctx, userID, parts.dates)
			return err
		})
	}
	if parts.expenses {
		g.Go(func() (err error) {
			p.Expenses, err = s.repos.Expenses.FindAllForUser(ctx, userID, parts.dates)
			return err
		})
	}
	if parts.maintenance {
		g.Go(func() (err error) {
			p.Maintenance, err = s.repos.Maintenance.FindAllForUser(ctx, userID)
			return err
		})
	}
	return p, g.Wait()
}

func (s *AnalyticsService) fallback(metric string, userID uuid.UUID, err error) {
	s.logger.Error("analytics metric failed, using default",
		zap.String("metric", metric),
		zap.String("user_id", userID.String()),
		zap.Error(err),
	)
}

func monthsBack(now time.Time, months int) property.DateRange {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)
	return property.DateRange{From: &from}
}

// GetKPIMetrics returns the headline KPIs, or EmptyKPIMetrics on failure
func (s *AnalyticsService) GetKPIMetrics(ctx context.Context, userID uuid.UUID) report.KPIMetrics {
	p, err := s.loadPortfolio(ctx, userID, portfolioParts{
		properties: true, tenants: true, leases: true, receipts: true, expenses: true, maintenance: true,
	})
	if err != nil {
		s.fallback("kpis", userID, err)
		return report.EmptyKPIMetrics()
	}
	return report.ComputeKPIMetrics(p, s.clock.Now())
}

// GetRevenueByMonth returns monthly revenue and expenses, or an empty list on failure
func (s *AnalyticsService) GetRevenueByMonth(ctx context.Context, userID uuid.UUID, months int) []report.RevenueByMonth {
	if months <= 0 {
		months = DefaultRevenueMonths
	}
	now := s.clock.Now()
	p, err := s.loadPortfolio(ctx, userID, portfolioParts{receipts: true, expenses: true, dates: monthsBack(now, months)})
	if err != nil {
		s.fallback("revenue_by_month", userID, err)
		return []report.RevenueByMonth{}
	}
	return report.ComputeRevenueByMonth(p.Receipts, p.Expenses, months, now)
}

// GetPropertyPerformance ranks properties, or returns an empty list on failure
func (s *AnalyticsService) GetPropertyPerformance(ctx context.Context, userID uuid.UUID) []report.PropertyPerformance {
	p, err := s.loadPortfolio(ctx, userID, portfolioParts{properties: true, receipts: true, expenses: true, maintenance: true})
	if err != nil {
		s.fallback("property_performance", userID, err)
		return []report.PropertyPerformance{}
	}
	return report.ComputePropertyPerformance(p)
}

// GetLeaseExpirations lists leases ending within horizonDays, or an empty list on failure
func (s *AnalyticsService) GetLeaseExpirations(ctx context.Context, userID uuid.UUID, horizonDays int) []report.LeaseExpiration {
	if horizonDays <= 0 {
		horizonDays = DefaultExpirationWindow
	}
	p, err := s.loadPortfolio(ctx, userID, portfolioParts{properties: true, tenants: true, leases: true})
	if err != nil {
		s.fallback("lease_expirations", userID, err)
		return []report.LeaseExpiration{}
	}
	return report.ComputeLeaseExpirations(p, horizonDays, s.clock.Now())
}

// GetMaintenanceStats summarises tickets, or returns EmptyMaintenanceStats on failure
func (s *AnalyticsService) GetMaintenanceStats(ctx context.Context, userID uuid.UUID) report.MaintenanceStats {
	p, err := s.loadPortfolio(ctx, userID, portfolioParts{maintenance: true})
	if err != nil {
		s.fallback("maintenance_stats", userID, err)
		return report.EmptyMaintenanceStats()
	}
	return report.ComputeMaintenanceStats(p.Maintenance)
}

// GetOccupancyTrend returns monthly occupancy, or an empty list on failure
func (s *AnalyticsService) GetOccupancyTrend(ctx context.Context, userID uuid.UUID, months int) []report.OccupancyTrendPoint {
	if months <= 0 {
		months = DefaultTrendMonths
	}
	p, err := s.loadPortfolio(ctx, userID, portfolioParts{properties: true, leases: true})
	if err != nil {
		s.fallback("occupancy_trend", userID, err)
		return []report.OccupancyTrendPoint{}
	}
	return report.ComputeOccupancyTrend(p.Properties, p.Leases, months, s.clock.Now())
}

// GetRecentActivities returns the newest activity, or an empty list on failure
func (s *AnalyticsService) GetRecentActivities(ctx context.Context, userID uuid.UUID, limit int) []report.RecentActivity {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	p, err := s.loadPortfolio(ctx, userID, portfolioParts{
		properties: true, tenants: true, leases: true, receipts: true, expenses: true, maintenance: true,
	})
	if err != nil {
		s.fallback("recent_activities", userID, err)
		return []report.RecentActivity{}
	}
	return report.ComputeRecentActivities(p, limit)
}

// GetDashboardAnalytics runs the seven metrics concurrently. Each metric
// handles its own failure, so the dashboard is always returned.
func (s *AnalyticsService) GetDashboardAnalytics(ctx context.Context, userID uuid.UUID, opts DashboardOptions) *report.DashboardAnalytics {
	opts = opts.withDefaults()
	d := &report.DashboardAnalytics{}

	var g errgroup.Group
	g.Go(func() error {
		d.KPIs = s.GetKPIMetrics(ctx, userID)
		return nil
	})
	g.Go(func() error {
		d.RevenueByMonth = s.GetRevenueByMonth(ctx, userID, opts.RevenueMonths)
		return nil
	})
	g.Go(func() error {
		d.PropertyPerformance = s.GetPropertyPerformance(ctx, userID)
		return nil
	})
	g.Go(func() error {
		d.LeaseExpirations = s.GetLeaseExpirations(ctx, userID, opts.ExpirationWindow)
		return nil
	})
	g.Go(func() error {
		d.MaintenanceStats = s.GetMaintenanceStats(ctx, userID)
		return nil
	})
	g.Go(func() error {
		d.OccupancyTrend = s.GetOccupancyTrend(ctx, userID, opts.TrendMonths)
		return nil
	})
	g.Go(func() error {
		d.RecentActivities = s.GetRecentActivities(ctx, userID, opts.ActivityLimit)
		return nil
	})
	_ = g.Wait()

	d.GeneratedAt = s.clock.Now()
	return d
}
