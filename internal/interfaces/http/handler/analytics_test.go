package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	appreport "github.com/JIGLE/proman-sub000/internal/application/report"
	"github.com/JIGLE/proman-sub000/internal/domain/report"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/scheduler"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupAnalyticsRouter(userID uuid.UUID, svc *MockAnalyticsService) *gin.Engine {
	h := NewAnalyticsHandler(svc)
	r := newTestRouter(userID)
	h.RegisterRoutes(&r.RouterGroup)
	return r
}

func TestAnalyticsHandler_Dashboard(t *testing.T) {
	userID := uuid.New()
	svc := new(MockAnalyticsService)
	r := setupAnalyticsRouter(userID, svc)

	svc.On("GetDashboardAnalytics", mock.Anything, userID, appreport.DashboardOptions{RevenueMonths: 6}).
		Return(&report.DashboardAnalytics{KPIs: report.EmptyKPIMetrics()})

	w := doJSON(r, http.MethodGet, "/analytics/dashboard?revenue_months=6", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)

	w = doJSON(r, http.MethodGet, "/analytics/dashboard?revenue_months=99", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyticsHandler_Defaults(t *testing.T) {
	userID := uuid.New()
	svc := new(MockAnalyticsService)
	r := setupAnalyticsRouter(userID, svc)

	svc.On("GetKPIMetrics", mock.Anything, userID).Return(report.EmptyKPIMetrics())
	svc.On("GetRevenueByMonth", mock.Anything, userID, appreport.DefaultRevenueMonths).Return([]report.RevenueByMonth{})
	svc.On("GetLeaseExpirations", mock.Anything, userID, 30).Return([]report.LeaseExpiration{})

	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/analytics/kpis", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/analytics/revenue", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(r, http.MethodGet, "/analytics/lease-expirations?days=30", nil).Code)
	svc.AssertExpectations(t)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubJobs struct{ last *scheduler.RunRecord }

func (s stubJobs) LastRun() *scheduler.RunRecord { return s.last }

func TestHealthHandler_Check(t *testing.T) {
	record := &scheduler.RunRecord{Job: "late-fees", Date: "2025-03-10", Status: scheduler.JobStatusSuccess}

	r := gin.New()
	r.GET("/health", NewHealthHandler(stubPinger{}, stubJobs{last: record}, "1.2.3").Check)
	w := doJSON(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"1.2.3"`)
	assert.Contains(t, w.Body.String(), `"late-fees"`)

	r = gin.New()
	r.GET("/health", NewHealthHandler(stubPinger{err: errors.New("connection refused")}, nil, "1.2.3").Check)
	w = doJSON(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}
