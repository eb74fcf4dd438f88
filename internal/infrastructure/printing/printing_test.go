package printing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/invoicing"
	"github.com/JIGLE/proman-sub000/internal/domain/property"
	"github.com/JIGLE/proman-sub000/internal/domain/saft"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvoice(t *testing.T) *invoicing.Invoice {
	t.Helper()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	inv, err := invoicing.NewInvoice(uuid.New(), "INV-2024-00007", decimal.NewFromInt(1000), now.AddDate(0, 0, 30), now)
	require.NoError(t, err)
	inv.Description = "Renda março"
	return inv
}

func TestFormatter(t *testing.T) {
	f := NewFormatter("pt-PT")
	assert.Equal(t, "pt-PT", f.Locale())

	money := f.Money(decimal.RequireFromString("1050.5"), "EUR")
	assert.Contains(t, money, ",50")
	assert.True(t, strings.HasSuffix(money, " €"), money)

	assert.Equal(t, "10/04/2024", f.Date(time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)))
	assert.Empty(t, f.Date(time.Time{}))

	assert.True(t, strings.HasSuffix(f.Money(decimal.NewFromInt(1), "ZZZ1"), " ZZZ1"))
	assert.Equal(t, "pt-PT", NewFormatter("not a locale!").Locale())
}

func TestInvoiceTemplate_DocumentDefaults(t *testing.T) {
	tmpl, err := NewInvoiceTemplate(DefaultLocale)
	require.NoError(t, err)

	doc := tmpl.Document(testInvoice(t), InvoiceParties{})
	assert.Equal(t, "INV-2024-00007", doc.Number)
	assert.Equal(t, "Pendente", doc.StatusLabel)
	assert.Equal(t, "Consumidor Final", doc.CustomerName)
	assert.Equal(t, "999999990", doc.CustomerTaxID)
	assert.Equal(t, "01/03/2024", doc.IssueDate)
	assert.Equal(t, "31/03/2024", doc.DueDate)
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, "Renda março", doc.Lines[0].Description)
	assert.Equal(t, "1", doc.Lines[0].Quantity)
	assert.Empty(t, doc.LateFee)
}

func TestInvoiceTemplate_DocumentWithParties(t *testing.T) {
	tmpl, err := NewInvoiceTemplate(DefaultLocale)
	require.NoError(t, err)

	inv := testInvoice(t)
	cfg := invoicing.LateFeeConfig{Enabled: true, GracePeriodDays: 5, PercentageRate: decimal.NewFromInt(5)}
	now := inv.DueDate.AddDate(0, 0, 40)
	require.NoError(t, inv.ApplyLateFee(invoicing.CalculateLateFee(inv.OriginalAmount, inv.DueDate, now, cfg), cfg, now))

	tenant := &property.Tenant{Name: "Ana Sousa", TaxID: "123456789"}
	prop := &property.Property{Name: "Rua Augusta 10"}
	doc := tmpl.Document(inv, InvoiceParties{
		Company:  saft.CompanyInfo{CompanyName: "Proman Lda"},
		Tenant:   tenant,
		Property: prop,
	})

	assert.Equal(t, "Em atraso", doc.StatusLabel)
	assert.Equal(t, "Ana Sousa", doc.CustomerName)
	assert.Equal(t, "123456789", doc.CustomerTaxID)
	assert.Equal(t, "Rua Augusta 10", doc.PropertyName)
	assert.Contains(t, doc.LateFee, ",00")
	assert.NotEqual(t, doc.Subtotal, doc.Total)
}

func TestInvoiceTemplate_RenderEscapes(t *testing.T) {
	tmpl, err := NewInvoiceTemplate(DefaultLocale)
	require.NoError(t, err)

	inv := testInvoice(t)
	inv.Metadata.Notes = `<script>alert("x")</script>`
	html, err := tmpl.Render(inv, InvoiceParties{Company: saft.CompanyInfo{CompanyName: "Proman & Filhos"}})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "INV-2024-00007")
	assert.Contains(t, html, "Proman &amp; Filhos")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, `lang="pt-PT"`)
}

func TestChromedpRenderer_ValidatesRequest(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{})
	defer r.Close()

	cases := []struct {
		name string
		req  *RenderRequest
		code string
	}{
		{"nil request", nil, ErrCodeInvalidHTML},
		{"empty html", &RenderRequest{HTML: "  ", PaperSize: PaperSizeA4}, ErrCodeInvalidHTML},
		{"bad paper", &RenderRequest{HTML: "<p>x</p>", PaperSize: "A0"}, ErrCodeInvalidPaperSize},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.Render(context.Background(), tc.req)
			var renderErr *RenderError
			require.True(t, errors.As(err, &renderErr))
			assert.Equal(t, tc.code, renderErr.Code)
		})
	}
}

func TestBuildPrintParams(t *testing.T) {
	r := &ChromedpRenderer{config: ChromedpConfig{Scale: 1}}

	p := r.buildPrintParams(&RenderRequest{PaperSize: PaperSizeA4, Margins: DefaultMargins()})
	assert.InDelta(t, mmToInches(210), p.paperWidth, 0.01)
	assert.InDelta(t, mmToInches(297), p.paperHeight, 0.01)
	assert.InDelta(t, mmToInches(15), p.marginTop, 0.01)
	assert.False(t, p.landscape)

	p = r.buildPrintParams(&RenderRequest{PaperSize: PaperSizeA5, Landscape: true, FooterHTML: "<span>1</span>"})
	assert.InDelta(t, mmToInches(148), p.paperWidth, 0.01)
	assert.True(t, p.landscape)
	assert.InDelta(t, mmToInches(10), p.marginBottom, 0.01)
}

func TestBuildCompleteHTML(t *testing.T) {
	full := "<!DOCTYPE html><html><body>x</body></html>"
	assert.Equal(t, full, buildCompleteHTML(&RenderRequest{HTML: full}))

	wrapped := buildCompleteHTML(&RenderRequest{HTML: "<p>x</p>", Title: "INV"})
	assert.True(t, strings.HasPrefix(wrapped, "<!DOCTYPE html>"))
	assert.Contains(t, wrapped, "<title>INV</title>")
	assert.Contains(t, wrapped, "<body><p>x</p></body>")
}

func TestEstimatePageCount(t *testing.T) {
	pdf := []byte("%PDF-1.4 /Type /Pages /Count 2 /Type /Page x /Type /Page y")
	assert.Equal(t, 2, estimatePageCount(pdf))
	assert.Equal(t, 1, estimatePageCount([]byte("%PDF")))
	assert.Equal(t, 0, estimatePageCount(nil))
}
