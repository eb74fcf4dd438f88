package saft

import (
	"testing"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
)

var refNow = time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

func validOptions() ExportOptions {
	return ExportOptions{
		FiscalYear: 2025,
		StartMonth: 1,
		EndMonth:   3,
		Company: CompanyInfo{
			TaxRegistrationNumber: "123456789",
			CompanyName:           "Gestão & Filhos, Lda",
			Address: valueobject.Address{
				Street:     "Rua Augusta 10",
				City:       "Lisboa",
				PostalCode: "1100-053",
				Country:    "PT",
			},
		},
	}
}

func TestValidateSAFTData(t *testing.T) {
	t.Run("valid options", func(t *testing.T) {
		res := ValidateSAFTData(validOptions(), refNow)
		assert.True(t, res.Valid)
		assert.Empty(t, res.Errors)
	})

	tests := []struct {
		name   string
		mutate func(o *ExportOptions)
		want   string
	}{
		{"missing nif", func(o *ExportOptions) { o.Company.TaxRegistrationNumber = "" }, "tax registration number is required"},
		{"bad nif", func(o *ExportOptions) { o.Company.TaxRegistrationNumber = "123456780" }, "not a valid NIF"},
		{"missing name", func(o *ExportOptions) { o.Company.CompanyName = " " }, "company name is required"},
		{"bad postal code", func(o *ExportOptions) { o.Company.Address.PostalCode = "1100" }, "XXXX-XXX"},
		{"missing city", func(o *ExportOptions) { o.Company.Address.City = "" }, "city is required"},
		{"future year", func(o *ExportOptions) { o.FiscalYear = 2026 }, "fiscal year 2026"},
		{"ancient year", func(o *ExportOptions) { o.FiscalYear = 1999 }, "fiscal year 1999"},
		{"month out of range", func(o *ExportOptions) { o.EndMonth = 13 }, "end month 13"},
		{"months reversed", func(o *ExportOptions) { o.StartMonth, o.EndMonth = 5, 2 }, "must not be after"},
		{"series with slash", func(o *ExportOptions) { o.SeriesCode = "A/1" }, "series code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validOptions()
			tt.mutate(&o)
			res := ValidateSAFTData(o, refNow)
			assert.False(t, res.Valid)
			if assert.Len(t, res.Errors, 1) {
				assert.Contains(t, res.Errors[0], tt.want)
			}
		})
	}

	t.Run("collects every problem", func(t *testing.T) {
		res := ValidateSAFTData(ExportOptions{}, refNow)
		assert.False(t, res.Valid)
		assert.GreaterOrEqual(t, len(res.Errors), 6)
	})
}

func TestExportOptions_PeriodAndFileName(t *testing.T) {
	o := validOptions().Normalize()

	start, end := o.Period(time.UTC)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 31, 23, 59, 59, 999999999, time.UTC), end)
	assert.Equal(t, "SAFT_PT_123456789_2025_01-03.xml", o.FileName())
	assert.Equal(t, DefaultSeriesCode, o.SeriesCode)
	assert.Equal(t, o.Company.CompanyName, o.Company.BusinessName)
}

func TestPlaceholderHash(t *testing.T) {
	first := PlaceholderHash("2025-01-05", "2025-01-05T10:00:00", "FT INV2025/1", "100.00", "")
	again := PlaceholderHash("2025-01-05", "2025-01-05T10:00:00", "FT INV2025/1", "100.00", "")
	chained := PlaceholderHash("2025-01-05", "2025-01-05T10:00:00", "FT INV2025/1", "100.00", first)

	assert.Equal(t, first, again)
	assert.NotEqual(t, first, chained)
	assert.Len(t, first, 28)
	assert.Equal(t, "A-3", GenerateATCUD("A", 3))
}
