package saft

import "github.com/shopspring/decimal"

// TaxCode describes one VAT treatment
type TaxCode struct {
	Code        string
	Description string
	Percentage  decimal.Decimal
}

// Portuguese mainland VAT codes
var (
	TaxNormal       = TaxCode{Code: "NOR", Description: "Taxa Normal", Percentage: decimal.NewFromInt(23)}
	TaxIntermediate = TaxCode{Code: "INT", Description: "Taxa Intermédia", Percentage: decimal.NewFromInt(13)}
	TaxReduced      = TaxCode{Code: "RED", Description: "Taxa Reduzida", Percentage: decimal.NewFromInt(6)}
	TaxExempt       = TaxCode{Code: "ISE", Description: "Isento", Percentage: decimal.Zero}
)

// Residential rent is VAT exempt; every exported line carries this exemption.
const (
	ExemptionCode   = "M07"
	ExemptionReason = "Isento nos termos do artigo 9.º do CIVA"
)

// Fixed header values for SAF-T PT 1.04_01
const (
	Namespace          = "urn:OECD:StandardAuditFile-Tax:PT_1.04_01"
	AuditFileVersion   = "1.04_01"
	TaxAccountingBasis = "F" // invoicing
	TaxEntity          = "Global"
	TaxTypeVAT         = "IVA"
	TaxCountryRegion   = "PT"
	InvoiceTypeInvoice = "FT"
	SourceBilling      = "P" // produced by this application
	UnitOfMeasure      = "UN"
	ProductTypeService = "S"
	UnknownAccountID   = "Desconhecido"
)
