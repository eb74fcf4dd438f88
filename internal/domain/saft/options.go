package saft

import (
	"fmt"
	"strings"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
)

// Defaults applied by Normalize
const (
	DefaultSeriesCode     = "A"
	DefaultProductID      = "Proman/Proman"
	DefaultProductVersion = "1.0"
	DefaultSourceID       = "proman"
	MinFiscalYear         = 2000
)

// CompanyInfo identifies the taxpayer issuing the invoices
type CompanyInfo struct {
	TaxRegistrationNumber string              `json:"tax_registration_number"`
	CompanyName           string              `json:"company_name"`
	BusinessName          string              `json:"business_name,omitempty"`
	Address               valueobject.Address `json:"address"`
	Email                 string              `json:"email,omitempty"`
	Telephone             string              `json:"telephone,omitempty"`
}

// ExportOptions selects the period and header data of one export
type ExportOptions struct {
	FiscalYear     int         `json:"fiscal_year"`
	StartMonth     int         `json:"start_month"`
	EndMonth       int         `json:"end_month"`
	Company        CompanyInfo `json:"company"`
	SeriesCode     string      `json:"series_code,omitempty"`
	ProductID      string      `json:"product_id,omitempty"`
	ProductVersion string      `json:"product_version,omitempty"`
	SourceID       string      `json:"source_id,omitempty"`
	// SoftwareCertificateNumber is "0" until the software is certified by AT
	SoftwareCertificateNumber string `json:"software_certificate_number,omitempty"`
}

// Normalize fills optional fields with their defaults
func (o ExportOptions) Normalize() ExportOptions {
	if o.SeriesCode == "" {
		o.SeriesCode = DefaultSeriesCode
	}
	if o.ProductID == "" {
		o.ProductID = DefaultProductID
	}
	if o.ProductVersion == "" {
		o.ProductVersion = DefaultProductVersion
	}
	if o.SourceID == "" {
		o.SourceID = DefaultSourceID
	}
	if o.SoftwareCertificateNumber == "" {
		o.SoftwareCertificateNumber = "0"
	}
	if o.Company.BusinessName == "" {
		o.Company.BusinessName = o.Company.CompanyName
	}
	return o
}

// Period returns the first instant of StartMonth and the last instant of EndMonth
func (o ExportOptions) Period(loc *time.Location) (start, end time.Time) {
	start = time.Date(o.FiscalYear, time.Month(o.StartMonth), 1, 0, 0, 0, 0, loc)
	end = time.Date(o.FiscalYear, time.Month(o.EndMonth)+1, 1, 0, 0, 0, 0, loc).Add(-time.Nanosecond)
	return start, end
}

// FileName is the suggested download name of the export
func (o ExportOptions) FileName() string {
	return fmt.Sprintf("SAFT_PT_%s_%d_%02d-%02d.xml", o.Company.TaxRegistrationNumber, o.FiscalYear, o.StartMonth, o.EndMonth)
}

// ValidationResult collects every pre-flight problem found
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

func (r *ValidationResult) addf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// ValidateSAFTData checks export options before generation. It never fails;
// callers inspect Valid and decide whether to proceed.
func ValidateSAFTData(opts ExportOptions, now time.Time) ValidationResult {
	res := ValidationResult{Errors: []string{}}

	nif := strings.TrimSpace(opts.Company.TaxRegistrationNumber)
	switch {
	case nif == "":
		res.addf("company tax registration number is required")
	case !valueobject.IsValidNIF(nif):
		res.addf("company tax registration number %q is not a valid NIF", nif)
	}

	if strings.TrimSpace(opts.Company.CompanyName) == "" {
		res.addf("company name is required")
	}

	postal := strings.TrimSpace(opts.Company.Address.PostalCode)
	switch {
	case postal == "":
		res.addf("company postal code is required")
	case !valueobject.IsValidPostalCode(postal):
		res.addf("company postal code %q must use the format XXXX-XXX", postal)
	}
	if strings.TrimSpace(opts.Company.Address.City) == "" {
		res.addf("company city is required")
	}

	if opts.FiscalYear < MinFiscalYear || opts.FiscalYear > now.Year() {
		res.addf("fiscal year %d must be between %d and %d", opts.FiscalYear, MinFiscalYear, now.Year())
	}

	monthsOK := true
	if opts.StartMonth < 1 || opts.StartMonth > 12 {
		res.addf("start month %d must be between 1 and 12", opts.StartMonth)
		monthsOK = false
	}
	if opts.EndMonth < 1 || opts.EndMonth > 12 {
		res.addf("end month %d must be between 1 and 12", opts.EndMonth)
		monthsOK = false
	}
	if monthsOK && opts.StartMonth > opts.EndMonth {
		res.addf("start month %d must not be after end month %d", opts.StartMonth, opts.EndMonth)
	}

	if strings.ContainsAny(opts.SeriesCode, " /") {
		res.addf("series code %q must not contain spaces or slashes", opts.SeriesCode)
	}

	res.Valid = len(res.Errors) == 0
	return res
}
