package handler

import (
	"context"
	"time"

	appinvoicing "github.com/JIGLE/proman-sub000/internal/application/invoicing"
	"github.com/JIGLE/proman-sub000/internal/application/printing"
	appreport "github.com/JIGLE/proman-sub000/internal/application/report"
	appsaft "github.com/JIGLE/proman-sub000/internal/application/saft"
	"github.com/JIGLE/proman-sub000/internal/domain/invoicing"
	"github.com/JIGLE/proman-sub000/internal/domain/report"
	"github.com/JIGLE/proman-sub000/internal/domain/saft"
	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) Create(ctx context.Context, userID uuid.UUID, req appinvoicing.CreateInvoiceRequest) (*appinvoicing.InvoiceResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinvoicing.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) GetByID(ctx context.Context, userID, id uuid.UUID) (*appinvoicing.InvoiceResponse, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinvoicing.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) List(ctx context.Context, userID uuid.UUID, f appinvoicing.InvoiceListFilter) (*shared.Paginated[appinvoicing.InvoiceResponse], error) {
	args := m.Called(ctx, userID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[appinvoicing.InvoiceResponse]), args.Error(1)
}

func (m *MockInvoiceService) Update(ctx context.Context, userID, id uuid.UUID, req appinvoicing.UpdateInvoiceRequest) (*appinvoicing.InvoiceResponse, error) {
	args := m.Called(ctx, userID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinvoicing.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) MarkAsPaid(ctx context.Context, userID, id uuid.UUID, req appinvoicing.MarkAsPaidRequest) (*appinvoicing.InvoiceResponse, error) {
	args := m.Called(ctx, userID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinvoicing.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) Cancel(ctx context.Context, userID, id uuid.UUID) (*appinvoicing.InvoiceResponse, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinvoicing.InvoiceResponse), args.Error(1)
}

func (m *MockInvoiceService) PreviewLateFees(ctx context.Context, userID uuid.UUID, cfg invoicing.LateFeeConfig) ([]appinvoicing.LateFeePreview, error) {
	args := m.Called(ctx, userID, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appinvoicing.LateFeePreview), args.Error(1)
}

func (m *MockInvoiceService) ApplyLateFees(ctx context.Context, userID uuid.UUID, cfg invoicing.LateFeeConfig) (*appinvoicing.LateFeeRunResult, error) {
	args := m.Called(ctx, userID, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinvoicing.LateFeeRunResult), args.Error(1)
}

func (m *MockInvoiceService) GenerateBatchRentInvoices(ctx context.Context, userID uuid.UUID, req appinvoicing.BatchRentRequest) (*appinvoicing.BatchRentResult, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinvoicing.BatchRentResult), args.Error(1)
}

func (m *MockInvoiceService) GetSummary(ctx context.Context, userID uuid.UUID, start, end *time.Time) (*appinvoicing.InvoiceSummary, error) {
	args := m.Called(ctx, userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinvoicing.InvoiceSummary), args.Error(1)
}

type MockInvoicePrinter struct {
	mock.Mock
}

func (m *MockInvoicePrinter) RenderPDF(ctx context.Context, userID, id uuid.UUID) (*printing.PDFDocument, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*printing.PDFDocument), args.Error(1)
}

type MockSAFTService struct {
	mock.Mock
}

func (m *MockSAFTService) Validate(opts saft.ExportOptions) saft.ValidationResult {
	return m.Called(opts).Get(0).(saft.ValidationResult)
}

func (m *MockSAFTService) Export(ctx context.Context, userID uuid.UUID, opts saft.ExportOptions) (*appsaft.ExportResponse, error) {
	args := m.Called(ctx, userID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appsaft.ExportResponse), args.Error(1)
}

type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) GetKPIMetrics(ctx context.Context, userID uuid.UUID) report.KPIMetrics {
	return m.Called(ctx, userID).Get(0).(report.KPIMetrics)
}

func (m *MockAnalyticsService) GetRevenueByMonth(ctx context.Context, userID uuid.UUID, months int) []report.RevenueByMonth {
	return m.Called(ctx, userID, months).Get(0).([]report.RevenueByMonth)
}

func (m *MockAnalyticsService) GetLeaseExpirations(ctx context.Context, userID uuid.UUID, horizonDays int) []report.LeaseExpiration {
	return m.Called(ctx, userID, horizonDays).Get(0).([]report.LeaseExpiration)
}

func (m *MockAnalyticsService) GetDashboardAnalytics(ctx context.Context, userID uuid.UUID, opts appreport.DashboardOptions) *report.DashboardAnalytics {
	return m.Called(ctx, userID, opts).Get(0).(*report.DashboardAnalytics)
}
