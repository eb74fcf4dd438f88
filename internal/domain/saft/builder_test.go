package saft

import (
	"strings"
	"testing"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/invoicing"
	"github.com/JIGLE/proman-sub000/internal/domain/property"
	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var owner = uuid.New()

func invoiceAt(t *testing.T, number, amount string, issued time.Time) invoicing.Invoice {
	t.Helper()
	inv, err := invoicing.NewInvoice(owner, number, decimal.RequireFromString(amount), issued.AddDate(0, 0, 8), issued)
	require.NoError(t, err)
	return *inv
}

func tenant(t *testing.T, name, nif string) property.Tenant {
	t.Helper()
	tn, err := property.NewTenant(owner, name, "", nif, refNow)
	require.NoError(t, err)
	return *tn
}

func TestGenerateSAFTPT_InvalidOptions(t *testing.T) {
	opts := validOptions()
	opts.Company.TaxRegistrationNumber = "1"

	_, err := GenerateSAFTPT(opts, ExportData{}, refNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Contains(t, err.Error(), "not a valid NIF")
}

func TestGenerateSAFTPT_EmptyPeriodHasFinalConsumer(t *testing.T) {
	res, err := GenerateSAFTPT(validOptions(), ExportData{}, refNow)
	require.NoError(t, err)

	assert.Equal(t, 0, res.InvoiceCount)
	assert.Equal(t, 1, res.CustomerCount)
	assert.Equal(t, 0, res.ProductCount)
	assert.True(t, res.TotalCredit.IsZero())
	assert.False(t, res.SignatureCompliant)
	assert.Equal(t, 1, strings.Count(res.XML, "<CustomerID>CF</CustomerID>"))
	assert.Contains(t, res.XML, "<CompanyName>Consumidor Final</CompanyName>")
	assert.Contains(t, res.XML, "<CustomerTaxID>999999990</CustomerTaxID>")
	assert.Contains(t, res.XML, "<NumberOfEntries>0</NumberOfEntries>")
}

func TestGenerateSAFTPT_Document(t *testing.T) {
	prop, err := property.NewProperty(owner, "Apartamento T2 <Baixa>", property.PropertyTypeApartment, valueobject.Address{}, decimal.NewFromInt(900), refNow)
	require.NoError(t, err)
	ana := tenant(t, "Ana Sousa", "123456789")
	rui := tenant(t, "Rui & Filhos", "")

	jan := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 5, 10, 0, 0, 0, time.UTC)

	first := invoiceAt(t, "INV-2025-00001", "900", jan)
	first.SetParties(&prop.ID, &ana.ID, nil)

	second := invoiceAt(t, "INV-2025-00002", "900", feb)
	second.SetParties(&prop.ID, &ana.ID, nil)
	require.NoError(t, second.ApplyLateFee(invoicing.LateFeeResult{LateFee: decimal.RequireFromString("45.00"), DaysOverdue: 20}, invoicing.LateFeeConfig{Enabled: true}, feb.AddDate(0, 0, 28)))

	third := invoiceAt(t, "INV-2025-00003", "300", feb.Add(time.Hour))
	third.SetParties(nil, &rui.ID, nil)
	require.NoError(t, third.Cancel(feb.Add(2*time.Hour)))

	anonymous := invoiceAt(t, "INV-2025-00004", "50", feb.Add(3*time.Hour))

	outside := invoiceAt(t, "INV-2025-00005", "700", time.Date(2025, 4, 2, 9, 0, 0, 0, time.UTC))

	data := ExportData{
		Invoices:   []invoicing.Invoice{outside, anonymous, third, second, first},
		Tenants:    []property.Tenant{ana, rui},
		Properties: []property.Property{*prop},
	}

	res, err := GenerateSAFTPT(validOptions(), data, refNow)
	require.NoError(t, err)
	xml := res.XML

	t.Run("document shell", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(xml, XMLDeclaration))
		assert.Contains(t, xml, `<AuditFile xmlns="`+Namespace+`">`)
		assert.Contains(t, xml, "<CompanyName>Gestão &amp; Filhos, Lda</CompanyName>")
		assert.Contains(t, xml, "<StartDate>2025-01-01</StartDate>")
		assert.Contains(t, xml, "<EndDate>2025-03-31</EndDate>")
		assert.Equal(t, "SAFT_PT_123456789_2025_01-03.xml", res.FileName)
	})

	t.Run("only invoices inside the period", func(t *testing.T) {
		assert.Equal(t, 4, res.InvoiceCount)
		assert.NotContains(t, xml, "FT INV2025/5")
		assert.Contains(t, xml, "<NumberOfEntries>4</NumberOfEntries>")
	})

	t.Run("ordered by issue date with batch ATCUD", func(t *testing.T) {
		i1 := strings.Index(xml, "<InvoiceNo>FT INV2025/1</InvoiceNo>")
		i2 := strings.Index(xml, "<InvoiceNo>FT INV2025/2</InvoiceNo>")
		i4 := strings.Index(xml, "<InvoiceNo>FT INV2025/4</InvoiceNo>")
		require.True(t, i1 > 0 && i2 > 0 && i4 > 0)
		assert.Less(t, i1, i2)
		assert.Less(t, i2, i4)
		assert.Contains(t, xml, "<ATCUD>A-1</ATCUD>")
		assert.Contains(t, xml, "<ATCUD>A-4</ATCUD>")
	})

	t.Run("customers deduplicated", func(t *testing.T) {
		assert.Equal(t, 3, res.CustomerCount)
		assert.Equal(t, 1, strings.Count(xml, "<CustomerTaxID>123456789</CustomerTaxID>"))
		assert.Contains(t, xml, "<CompanyName>Rui &amp; Filhos</CompanyName>")
		assert.Equal(t, 1, strings.Count(xml, "<Customer>\n      <CustomerID>CF</CustomerID>"))
	})

	t.Run("products", func(t *testing.T) {
		code := "PROP-" + strings.ToUpper(prop.ID.String()[:8])
		assert.Contains(t, xml, "<ProductCode>"+code+"</ProductCode>")
		assert.Contains(t, xml, "Apartamento T2 &lt;Baixa&gt;")
		assert.Contains(t, xml, "<ProductCode>LATE-FEE</ProductCode>")
		assert.Contains(t, xml, "<ProductCode>RENT</ProductCode>")
		assert.Equal(t, 3, res.ProductCount)
	})

	t.Run("late fee line and totals", func(t *testing.T) {
		assert.Contains(t, xml, "<CreditAmount>45.00</CreditAmount>")
		assert.Contains(t, xml, "<GrossTotal>945.00</GrossTotal>")
		assert.Contains(t, xml, "<TaxExemptionCode>M07</TaxExemptionCode>")
	})

	t.Run("cancelled invoice excluded from credit", func(t *testing.T) {
		assert.Contains(t, xml, "<InvoiceStatus>A</InvoiceStatus>")
		// 900 + 945 + 50
		assert.True(t, res.TotalCredit.Equal(decimal.RequireFromString("1895.00")), res.TotalCredit.String())
		assert.Contains(t, xml, "<TotalCredit>1895.00</TotalCredit>")
		assert.Contains(t, xml, "<TotalDebit>0.00</TotalDebit>")
	})
}

func TestGenerateSAFTPT_HashChain(t *testing.T) {
	jan := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)
	a := invoiceAt(t, "INV-2025-00001", "100", jan)
	b := invoiceAt(t, "INV-2025-00002", "200", jan.AddDate(0, 0, 1))

	res, err := GenerateSAFTPT(validOptions(), ExportData{Invoices: []invoicing.Invoice{a, b}}, refNow)
	require.NoError(t, err)

	h1 := PlaceholderHash("2025-01-05", "2025-01-05T10:00:00", "FT INV2025/1", "100.00", "")
	h2 := PlaceholderHash("2025-01-06", "2025-01-06T10:00:00", "FT INV2025/2", "200.00", h1)
	assert.Contains(t, res.XML, "<Hash>"+h1+"</Hash>")
	assert.Contains(t, res.XML, "<Hash>"+h2+"</Hash>")
	assert.Contains(t, res.XML, "<HashControl>0</HashControl>")
}

func TestGenerateSAFTPT_LineItemsFromMetadata(t *testing.T) {
	jan := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)
	inv := invoiceAt(t, "INV-2025-00001", "950", jan)
	inv.Metadata.LineItems = []invoicing.LineItem{
		{Description: "Renda Janeiro", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(900)},
		{Description: "Condomínio", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(25)},
	}

	res, err := GenerateSAFTPT(validOptions(), ExportData{Invoices: []invoicing.Invoice{inv}}, refNow)
	require.NoError(t, err)

	assert.Contains(t, res.XML, "<Description>Renda Janeiro</Description>")
	assert.Contains(t, res.XML, "<Description>Condomínio</Description>")
	assert.Contains(t, res.XML, "<Quantity>2</Quantity>")
	assert.Contains(t, res.XML, "<CreditAmount>50.00</CreditAmount>")
	assert.Contains(t, res.XML, "<NetTotal>950.00</NetTotal>")
}

func TestSaftInvoiceNo(t *testing.T) {
	assert.Equal(t, "FT INV2025/7", saftInvoiceNo("INV-2025-00007", "A", 1))
	assert.Equal(t, "FT A/3", saftInvoiceNo("legacy-1", "A", 3))
}
