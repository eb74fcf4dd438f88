package printing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/JIGLE/proman-sub000/internal/domain/invoicing"
	"github.com/JIGLE/proman-sub000/internal/domain/property"
	"github.com/JIGLE/proman-sub000/internal/domain/saft"
	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
)

//go:embed templates/*.html
var templateFS embed.FS

var statusLabels = map[invoicing.InvoiceStatus]string{
	invoicing.InvoiceStatusPending:   "Pendente",
	invoicing.InvoiceStatusPaid:      "Paga",
	invoicing.InvoiceStatusOverdue:   "Em atraso",
	invoicing.InvoiceStatusCancelled: "Anulada",
}

// DocumentLine is one formatted invoice line
type DocumentLine struct {
	Description string
	Quantity    string
	UnitPrice   string
	Total       string
}

// InvoiceDocument is the view model of a printed invoice. Every amount is
// already formatted for the locale.
type InvoiceDocument struct {
	Locale           string
	Title            string
	Number           string
	StatusLabel      string
	Company          saft.CompanyInfo
	CustomerName     string
	CustomerTaxID    string
	PropertyName     string
	IssueDate        string
	DueDate          string
	PaidDate         string
	Lines            []DocumentLine
	Subtotal         string
	LateFee          string
	Total            string
	Notes            string
	PaymentMethod    string
	PaymentReference string
}

// InvoiceParties are the optional related records printed on an invoice
type InvoiceParties struct {
	Company  saft.CompanyInfo
	Tenant   *property.Tenant
	Property *property.Property
}

// InvoiceTemplate renders invoices to HTML
type InvoiceTemplate struct {
	tmpl   *template.Template
	format *Formatter
}

// NewInvoiceTemplate parses the embedded invoice template for locale
func NewInvoiceTemplate(locale string) (*InvoiceTemplate, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/invoice.html")
	if err != nil {
		return nil, fmt.Errorf("parse invoice template: %w", err)
	}
	return &InvoiceTemplate{tmpl: tmpl, format: NewFormatter(locale)}, nil
}

// Document builds the view model of inv
func (t *InvoiceTemplate) Document(inv *invoicing.Invoice, parties InvoiceParties) InvoiceDocument {
	f := t.format
	code := string(inv.Currency)
	if code == "" {
		code = string(valueobject.DefaultCurrency)
	}

	doc := InvoiceDocument{
		Locale:           f.Locale(),
		Title:            "Fatura",
		Number:           inv.Number,
		StatusLabel:      statusLabels[inv.Status],
		Company:          parties.Company,
		CustomerName:     "Consumidor Final",
		CustomerTaxID:    valueobject.FinalConsumerNIF,
		IssueDate:        f.Date(inv.CreatedAt),
		DueDate:          f.Date(inv.DueDate),
		Subtotal:         f.Money(inv.OriginalAmount, code),
		Total:            f.Money(inv.Amount, code),
		Notes:            inv.Metadata.Notes,
		PaymentMethod:    inv.Metadata.PaymentMethod,
		PaymentReference: inv.Metadata.PaymentReference,
	}
	if inv.PaidDate != nil {
		doc.PaidDate = f.Date(*inv.PaidDate)
	}
	if parties.Tenant != nil {
		doc.CustomerName = parties.Tenant.Name
		doc.CustomerTaxID = parties.Tenant.TaxIDOrFinalConsumer()
	}
	if parties.Property != nil {
		doc.PropertyName = parties.Property.Name
	}
	if fee := inv.Metadata.LateFeeAmount(); fee.IsPositive() {
		doc.LateFee = f.Money(fee, code)
	}

	description := inv.Description
	if description == "" {
		description = inv.Number
	}
	for _, item := range inv.Metadata.LineItemsOrDefault(description, inv.OriginalAmount) {
		doc.Lines = append(doc.Lines, DocumentLine{
			Description: item.Description,
			Quantity:    item.Quantity.String(),
			UnitPrice:   f.Money(item.UnitPrice, code),
			Total:       f.Money(item.Total(), code),
		})
	}
	return doc
}

// Render executes the template for inv
func (t *InvoiceTemplate) Render(inv *invoicing.Invoice, parties InvoiceParties) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, t.Document(inv, parties)); err != nil {
		return "", fmt.Errorf("render invoice %s: %w", inv.Number, err)
	}
	return buf.String(), nil
}
