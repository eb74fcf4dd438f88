package saft

import (
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/invoicing"
	"github.com/JIGLE/proman-sub000/internal/domain/property"
	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Customer master-file values used for unidentified buyers
const (
	FinalConsumerID   = "CF"
	FinalConsumerName = "Consumidor Final"
	unknownValue      = "Desconhecido"
	unknownPostalCode = "0000-000"
)

// Product codes not tied to a property
const (
	GenericRentProductCode = "RENT"
	LateFeeProductCode     = "LATE-FEE"
	lateFeeDescription     = "Penalização por atraso no pagamento"
)

// Document status values
const (
	DocumentStatusNormal    = "N"
	DocumentStatusCancelled = "A"
)

// ExportData is the persisted state an export is built from
type ExportData struct {
	Invoices   []invoicing.Invoice
	Tenants    []property.Tenant
	Properties []property.Property
}

// SAFTCustomer is a Customer master-file entry
type SAFTCustomer struct {
	CustomerID     string
	AccountID      string
	CustomerTaxID  string
	CompanyName    string
	BillingAddress valueobject.Address
}

// SAFTProduct is a Product master-file entry
type SAFTProduct struct {
	ProductType        string
	ProductCode        string
	ProductDescription string
	ProductNumberCode  string
}

// SAFTLine is one Line of a sales invoice
type SAFTLine struct {
	LineNumber         int
	ProductCode        string
	ProductDescription string
	Quantity           decimal.Decimal
	UnitPrice          decimal.Decimal
	TaxPointDate       time.Time
	Description        string
	CreditAmount       decimal.Decimal
	Tax                TaxCode
}

// SAFTInvoice is one sales invoice of the export
type SAFTInvoice struct {
	InvoiceNo       string
	SourceNumber    string // the application's own INV-YYYY-NNNNN number
	ATCUD           string
	Hash            string
	Status          string
	StatusDate      time.Time
	InvoiceDate     time.Time
	SystemEntryDate time.Time
	CustomerID      string
	Lines           []SAFTLine
	NetTotal        decimal.Decimal
	TaxPayable      decimal.Decimal
	GrossTotal      decimal.Decimal
}

// ExportResult is the output of GenerateSAFTPT
type ExportResult struct {
	XML           string          `json:"-"`
	FileName      string          `json:"file_name"`
	InvoiceCount  int             `json:"invoice_count"`
	CustomerCount int             `json:"customer_count"`
	ProductCount  int             `json:"product_count"`
	TotalDebit    decimal.Decimal `json:"total_debit"`
	TotalCredit   decimal.Decimal `json:"total_credit"`
	PeriodStart   time.Time       `json:"period_start"`
	PeriodEnd     time.Time       `json:"period_end"`
	// SignatureCompliant is always false: hashes are placeholders, see PlaceholderHash
	SignatureCompliant bool `json:"signature_compliant"`
}

func finalConsumer() SAFTCustomer {
	return SAFTCustomer{
		CustomerID:    FinalConsumerID,
		AccountID:     UnknownAccountID,
		CustomerTaxID: valueobject.FinalConsumerNIF,
		CompanyName:   FinalConsumerName,
		BillingAddress: valueobject.Address{
			Street:     unknownValue,
			City:       unknownValue,
			PostalCode: unknownPostalCode,
			Country:    valueobject.DefaultCountry,
		},
	}
}
