package integration

import (
	"context"
	"strings"
	"testing"
	"time"

	appinvoicing "github.com/JIGLE/proman-sub000/internal/application/invoicing"
	appsaft "github.com/JIGLE/proman-sub000/internal/application/saft"
	"github.com/JIGLE/proman-sub000/internal/domain/invoicing"
	"github.com/JIGLE/proman-sub000/internal/domain/property"
	"github.com/JIGLE/proman-sub000/internal/domain/saft"
	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/persistence"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var flowNow = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

type flowSetup struct {
	repos    *persistence.Repositories
	invoices *appinvoicing.InvoiceService
	saft     *appsaft.ExportService
}

func newFlowSetup(t *testing.T) *flowSetup {
	t.Helper()
	tdb := NewTestDB(t)
	repos := persistence.NewRepositories(tdb.DB)
	clock := shared.FixedClock{At: flowNow}
	log := zaptest.NewLogger(t)

	company := saft.CompanyInfo{
		TaxRegistrationNumber: "508332745",
		CompanyName:           "Proman Imobiliaria Lda",
		Address: valueobject.Address{
			Street:     "Rua Augusta 100",
			City:       "Lisboa",
			PostalCode: "1100-053",
			Country:    "PT",
		},
	}
	return &flowSetup{
		repos:    repos,
		invoices: appinvoicing.NewInvoiceService(repos.Invoices, repos.Leases, clock, log),
		saft: appsaft.NewExportService(repos.Invoices, repos.Tenants, repos.Properties,
			storage.NewMemoryArchiveStorage("memory://saft"), company, clock, log),
	}
}

func latePolicy() invoicing.LateFeeConfig {
	flat := decimal.NewFromInt(10)
	maxPct := decimal.NewFromInt(20)
	return invoicing.LateFeeConfig{
		Enabled:         true,
		GracePeriodDays: 5,
		PercentageRate:  decimal.NewFromInt(5),
		FlatFee:         &flat,
		MaxPercentage:   &maxPct,
	}
}

func createInvoice(t *testing.T, s *flowSetup, userID uuid.UUID, amount int64, due time.Time) *appinvoicing.InvoiceResponse {
	t.Helper()
	inv, err := s.invoices.Create(context.Background(), userID, appinvoicing.CreateInvoiceRequest{
		Amount:      decimal.NewFromInt(amount),
		DueDate:     due,
		Description: "Rent",
	})
	require.NoError(t, err)
	return inv
}

func TestInvoiceFlow_NumberingAndLateFees(t *testing.T) {
	s := newFlowSetup(t)
	ctx := context.Background()
	userID := uuid.New()

	late := createInvoice(t, s, userID, 1000, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	current := createInvoice(t, s, userID, 800, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "INV-2025-00001", late.Number)
	assert.Equal(t, "INV-2025-00002", current.Number)

	next, err := s.invoices.NextNumber(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "INV-2025-00003", next)

	previews, err := s.invoices.PreviewLateFees(ctx, userID, latePolicy())
	require.NoError(t, err)
	require.Len(t, previews, 1)
	assert.True(t, decimal.NewFromInt(60).Equal(previews[0].LateFee), previews[0].LateFee.String())

	result, err := s.invoices.ApplyLateFees(ctx, userID, latePolicy())
	require.NoError(t, err)
	require.Len(t, result.Applied, 1)
	assert.True(t, decimal.NewFromInt(60).Equal(result.TotalLateFees))
	assert.Empty(t, result.Failed)

	reloaded, err := s.invoices.GetByID(ctx, userID, late.ID)
	require.NoError(t, err)
	assert.Equal(t, string(invoicing.InvoiceStatusOverdue), reloaded.Status)
	assert.True(t, decimal.NewFromInt(1060).Equal(reloaded.Amount), reloaded.Amount.String())
	assert.True(t, decimal.NewFromInt(1000).Equal(reloaded.OriginalAmount))
	require.NotNil(t, reloaded.LateFee)
	assert.Equal(t, 37, reloaded.LateFee.DaysOverdue)

	again, err := s.invoices.ApplyLateFees(ctx, userID, latePolicy())
	require.NoError(t, err)
	assert.Empty(t, again.Applied)

	untouched, err := s.invoices.GetByID(ctx, userID, current.ID)
	require.NoError(t, err)
	assert.Equal(t, string(invoicing.InvoiceStatusPending), untouched.Status)
}

func TestInvoiceFlow_PayThenCancelIsRejected(t *testing.T) {
	s := newFlowSetup(t)
	ctx := context.Background()
	userID := uuid.New()

	inv := createInvoice(t, s, userID, 500, flowNow.AddDate(0, 0, 10))
	paid, err := s.invoices.MarkAsPaid(ctx, userID, inv.ID, appinvoicing.MarkAsPaidRequest{
		PaymentMethod:    "transfer",
		PaymentReference: "TRF-1",
	})
	require.NoError(t, err)
	assert.Equal(t, string(invoicing.InvoiceStatusPaid), paid.Status)
	require.NotNil(t, paid.PaidDate)

	_, err = s.invoices.Cancel(ctx, userID, inv.ID)
	assert.Error(t, err)
}

func TestInvoiceFlow_OwnerIsolation(t *testing.T) {
	s := newFlowSetup(t)
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()

	inv := createInvoice(t, s, owner, 700, flowNow.AddDate(0, 0, 5))

	_, err := s.invoices.GetByID(ctx, other, inv.ID)
	assert.ErrorIs(t, err, invoicing.ErrInvoiceNotFound)

	_, err = s.invoices.Cancel(ctx, other, inv.ID)
	assert.ErrorIs(t, err, invoicing.ErrInvoiceNotFound)

	page, err := s.invoices.List(ctx, other, appinvoicing.InvoiceListFilter{})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	// numbering is per owner
	otherInv := createInvoice(t, s, other, 100, flowNow.AddDate(0, 0, 5))
	assert.Equal(t, "INV-2025-00001", otherInv.Number)
}

func TestInvoiceFlow_BatchRent(t *testing.T) {
	s := newFlowSetup(t)
	ctx := context.Background()
	userID := uuid.New()

	prop, err := property.NewProperty(userID, "T2 Alfama", property.PropertyTypeApartment, valueobject.Address{
		Street: "Rua dos Remedios 12", City: "Lisboa", PostalCode: "1100-441", Country: "PT",
	}, decimal.NewFromInt(950), flowNow)
	require.NoError(t, err)
	require.NoError(t, s.repos.Properties.Create(ctx, prop))

	tenant, err := property.NewTenant(userID, "Ana Silva", "ana@example.pt", "123456789", flowNow)
	require.NoError(t, err)
	require.NoError(t, s.repos.Tenants.Create(ctx, tenant))

	lease, err := property.NewLease(userID, prop.ID, tenant.ID,
		flowNow.AddDate(0, -6, 0), flowNow.AddDate(0, 6, 0), decimal.NewFromInt(950), flowNow)
	require.NoError(t, err)
	require.NoError(t, s.repos.Leases.Create(ctx, lease))

	expired, err := property.NewLease(userID, prop.ID, tenant.ID,
		flowNow.AddDate(-2, 0, 0), flowNow.AddDate(-1, 0, 0), decimal.NewFromInt(900), flowNow)
	require.NoError(t, err)
	require.NoError(t, s.repos.Leases.Create(ctx, expired))

	result, err := s.invoices.GenerateBatchRentInvoices(ctx, userID, appinvoicing.BatchRentRequest{
		DueDate: time.Date(2025, 4, 8, 0, 0, 0, 0, time.UTC),
		Month:   "2025-04",
	})
	require.NoError(t, err)
	require.Len(t, result.Success, 1)
	assert.Empty(t, result.Failed)

	inv := result.Success[0]
	assert.True(t, decimal.NewFromInt(950).Equal(inv.Amount))
	assert.Equal(t, "Rent 2025-04", inv.Description)
	require.NotNil(t, inv.LeaseID)
	assert.Equal(t, lease.ID, *inv.LeaseID)
	require.Len(t, inv.LineItems, 1)
}

func TestInvoiceFlow_SAFTExport(t *testing.T) {
	s := newFlowSetup(t)
	ctx := context.Background()
	userID := uuid.New()

	tenant, err := property.NewTenant(userID, "Ana Silva", "ana@example.pt", "123456789", flowNow)
	require.NoError(t, err)
	require.NoError(t, s.repos.Tenants.Create(ctx, tenant))

	_, err = s.invoices.Create(ctx, userID, appinvoicing.CreateInvoiceRequest{
		Amount:      decimal.RequireFromString("950.00"),
		DueDate:     flowNow.AddDate(0, 0, 8),
		Description: "Rent March",
		TenantID:    &tenant.ID,
	})
	require.NoError(t, err)
	createInvoice(t, s, userID, 120, flowNow.AddDate(0, 0, 8))

	resp, err := s.saft.Export(ctx, userID, saft.ExportOptions{FiscalYear: 2025, StartMonth: 1, EndMonth: 12})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.InvoiceCount)
	assert.Equal(t, "SAFT_PT_508332745_2025_01-12.xml", resp.FileName)
	assert.True(t, strings.HasPrefix(resp.XML, "<?xml"))
	assert.Contains(t, resp.XML, "<CustomerTaxID>123456789</CustomerTaxID>")
	assert.Contains(t, resp.XML, "<TaxRegistrationNumber>508332745</TaxRegistrationNumber>")
	assert.NotEmpty(t, resp.ArchiveKey)
	assert.True(t, strings.HasPrefix(resp.DownloadURL, "memory://saft/"), resp.DownloadURL)

	empty, err := s.saft.Export(ctx, uuid.New(), saft.ExportOptions{FiscalYear: 2025, StartMonth: 1, EndMonth: 3})
	require.NoError(t, err)
	assert.Zero(t, empty.InvoiceCount)
}
