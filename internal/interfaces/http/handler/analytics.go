package handler

import (
	"context"

	appreport "github.com/JIGLE/proman-sub000/internal/application/report"
	"github.com/JIGLE/proman-sub000/internal/domain/report"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AnalyticsService computes the dashboard metrics
type AnalyticsService interface {
	GetKPIMetrics(ctx context.Context, userID uuid.UUID) report.KPIMetrics
	GetRevenueByMonth(ctx context.Context, userID uuid.UUID, months int) []report.RevenueByMonth
	GetLeaseExpirations(ctx context.Context, userID uuid.UUID, horizonDays int) []report.LeaseExpiration
	GetDashboardAnalytics(ctx context.Context, userID uuid.UUID, opts appreport.DashboardOptions) *report.DashboardAnalytics
}

// AnalyticsHandler handles analytics endpoints. Metrics never fail; a
// missing data source yields empty values.
type AnalyticsHandler struct {
	BaseHandler
	service AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(service AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// RevenueQuery is the query of GET /analytics/revenue
type RevenueQuery struct {
	Months int `form:"months" binding:"omitempty,min=1,max=36"`
}

// ExpirationQuery is the query of GET /analytics/lease-expirations
type ExpirationQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=730"`
}

// Dashboard godoc
// @Summary      Dashboard analytics
// @Description  All seven dashboard metrics computed concurrently. A failing metric yields its empty default.
// @Tags         analytics
// @Produce      json
// @Param        revenue_months query int false "Revenue months" default(12) maximum(36)
// @Param        trend_months query int false "Occupancy trend months" default(6) maximum(36)
// @Param        expiration_window query int false "Lease expiration window in days" default(90) maximum(730)
// @Param        activity_limit query int false "Recent activity count" default(10) maximum(100)
// @Success      200 {object} dto.Response{data=report.DashboardAnalytics}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var opts appreport.DashboardOptions
	if err := c.ShouldBindQuery(&opts); err != nil {
		h.BindError(c, err)
		return
	}
	h.Success(c, h.service.GetDashboardAnalytics(c.Request.Context(), userID, opts))
}

// KPIs godoc
// @Summary      Headline KPIs
// @Description  Occupancy, revenue, collection and maintenance KPIs
// @Tags         analytics
// @Produce      json
// @Success      200 {object} dto.Response{data=report.KPIMetrics}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /analytics/kpis [get]
func (h *AnalyticsHandler) KPIs(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	h.Success(c, h.service.GetKPIMetrics(c.Request.Context(), userID))
}

// Revenue godoc
// @Summary      Revenue by month
// @Description  Paid receipts and expenses per calendar month, oldest first
// @Tags         analytics
// @Produce      json
// @Param        months query int false "Months" default(12) maximum(36)
// @Success      200 {object} dto.Response{data=[]report.RevenueByMonth}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /analytics/revenue [get]
func (h *AnalyticsHandler) Revenue(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var q RevenueQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	if q.Months == 0 {
		q.Months = appreport.DefaultRevenueMonths
	}
	h.Success(c, h.service.GetRevenueByMonth(c.Request.Context(), userID, q.Months))
}

// LeaseExpirations godoc
// @Summary      Lease expirations
// @Description  Active leases ending within the window, banded by risk
// @Tags         analytics
// @Produce      json
// @Param        days query int false "Window in days" default(90) maximum(730)
// @Success      200 {object} dto.Response{data=[]report.LeaseExpiration}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /analytics/lease-expirations [get]
func (h *AnalyticsHandler) LeaseExpirations(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var q ExpirationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	if q.Days == 0 {
		q.Days = appreport.DefaultExpirationWindow
	}
	h.Success(c, h.service.GetLeaseExpirations(c.Request.Context(), userID, q.Days))
}
