package saft

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/invoicing"
	"github.com/JIGLE/proman-sub000/internal/domain/property"
	"github.com/JIGLE/proman-sub000/internal/domain/saft"
	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

var (
	testNow  = time.Date(2025, 6, 30, 9, 30, 0, 0, time.UTC)
	testUser = uuid.New()
)

type MockInvoiceRepository struct {
	mock.Mock
	invoicing.InvoiceRepository
}

func (m *MockInvoiceRepository) FindAllForUser(ctx context.Context, userID uuid.UUID, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]invoicing.Invoice), args.Error(1)
}

type MockTenantRepository struct {
	mock.Mock
	property.TenantRepository
}

func (m *MockTenantRepository) FindByIDsForUser(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]property.Tenant, error) {
	args := m.Called(ctx, userID, ids)
	return args.Get(0).([]property.Tenant), args.Error(1)
}

type MockPropertyRepository struct {
	mock.Mock
	property.PropertyRepository
}

func (m *MockPropertyRepository) FindAllForUser(ctx context.Context, userID uuid.UUID) ([]property.Property, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]property.Property), args.Error(1)
}

type MockArchive struct {
	mock.Mock
}

func (m *MockArchive) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *MockArchive) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), testNow, args.Error(1)
}

func company() saft.CompanyInfo {
	return saft.CompanyInfo{
		TaxRegistrationNumber: "123456789",
		CompanyName:           "Proman Lda",
		Address:               valueobject.Address{Street: "Rua 1", City: "Porto", PostalCode: "4000-001", Country: "PT"},
	}
}

type fixture struct {
	svc        *ExportService
	invoices   *MockInvoiceRepository
	tenants    *MockTenantRepository
	properties *MockPropertyRepository
	archive    *MockArchive
}

func newFixture(withArchive bool) *fixture {
	f := &fixture{
		invoices:   new(MockInvoiceRepository),
		tenants:    new(MockTenantRepository),
		properties: new(MockPropertyRepository),
		archive:    new(MockArchive),
	}
	var archive ArchiveStorage
	if withArchive {
		archive = f.archive
	}
	f.svc = NewExportService(f.invoices, f.tenants, f.properties, archive, company(), shared.FixedClock{At: testNow}, nil)
	return f
}

func quarterOpts() saft.ExportOptions {
	return saft.ExportOptions{FiscalYear: 2025, StartMonth: 1, EndMonth: 3}
}

func TestExportService_Export(t *testing.T) {
	f := newFixture(true)

	tn, err := property.NewTenant(testUser, "Ana", "", "123456789", testNow)
	require.NoError(t, err)
	inv, err := invoicing.NewInvoice(testUser, "INV-2025-00001", decimal.NewFromInt(500), testNow, time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	inv.SetParties(nil, &tn.ID, nil)

	f.invoices.On("FindAllForUser", mock.Anything, testUser, mock.MatchedBy(func(fl invoicing.InvoiceFilter) bool {
		return fl.IssuedFrom.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) && fl.IssuedTo.Month() == time.March
	})).Return([]invoicing.Invoice{*inv}, nil)
	f.tenants.On("FindByIDsForUser", mock.Anything, testUser, []uuid.UUID{tn.ID}).Return([]property.Tenant{*tn}, nil)
	f.properties.On("FindAllForUser", mock.Anything, testUser).Return([]property.Property{}, nil)

	key := ArchiveKey(testUser, quarterOpts(), testNow)
	f.archive.On("Upload", mock.Anything, key, mock.Anything, ContentType).Return(nil)
	f.archive.On("GenerateDownloadURL", mock.Anything, key, time.Duration(0)).Return("https://s3/saft.xml", nil)

	resp, err := f.svc.Export(context.Background(), testUser, quarterOpts())
	require.NoError(t, err)

	assert.Equal(t, 1, resp.InvoiceCount)
	assert.Equal(t, 1, resp.CustomerCount)
	assert.Contains(t, resp.XML, "<CompanyName>Proman Lda</CompanyName>")
	assert.Equal(t, key, resp.ArchiveKey)
	assert.Equal(t, "https://s3/saft.xml", resp.DownloadURL)
	assert.True(t, strings.HasPrefix(key, "saft/"+testUser.String()+"/2025/01-03-"))
	f.archive.AssertExpectations(t)
}

func TestExportService_ArchiveFailureDoesNotFailExport(t *testing.T) {
	f := newFixture(true)
	f.invoices.On("FindAllForUser", mock.Anything, testUser, mock.Anything).Return([]invoicing.Invoice{}, nil)
	f.properties.On("FindAllForUser", mock.Anything, testUser).Return([]property.Property{}, nil)
	f.archive.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket missing"))

	resp, err := f.svc.Export(context.Background(), testUser, quarterOpts())
	require.NoError(t, err)
	assert.Empty(t, resp.ArchiveKey)
	assert.Equal(t, 1, resp.CustomerCount)
	f.tenants.AssertNotCalled(t, "FindByIDsForUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestExportService_InvalidOptions(t *testing.T) {
	f := newFixture(false)
	opts := quarterOpts()
	opts.EndMonth = 13

	_, err := f.svc.Export(context.Background(), testUser, opts)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	f.invoices.AssertNotCalled(t, "FindAllForUser", mock.Anything, mock.Anything, mock.Anything)

	res := f.svc.Validate(opts)
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 1)
}

func TestExportService_LoadFailure(t *testing.T) {
	f := newFixture(false)
	f.invoices.On("FindAllForUser", mock.Anything, testUser, mock.Anything).Return([]invoicing.Invoice{}, errors.New("db down"))

	_, err := f.svc.Export(context.Background(), testUser, quarterOpts())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load invoices")
}

func TestExportService_CountsExports(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })
	bm, err := telemetry.NewBusinessMetrics(provider.Meter(telemetry.MeterName))
	require.NoError(t, err)

	f := newFixture(false)
	f.svc.SetBusinessMetrics(bm)
	f.invoices.On("FindAllForUser", mock.Anything, testUser, mock.Anything).Return([]invoicing.Invoice{}, nil)
	f.properties.On("FindAllForUser", mock.Anything, testUser).Return([]property.Property{}, nil)

	_, err = f.svc.Export(ctx, testUser, quarterOpts())
	require.NoError(t, err)
	bad := quarterOpts()
	bad.StartMonth = 0
	_, err = f.svc.Export(ctx, testUser, bad)
	require.Error(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	byStatus := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "proman_saft_export_total" {
				continue
			}
			for _, p := range m.Data.(metricdata.Sum[int64]).DataPoints {
				v, _ := p.Attributes.Value(telemetry.AttrExportStatus)
				byStatus[v.AsString()] += p.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{"success": 1, "failed": 1}, byStatus)
}
