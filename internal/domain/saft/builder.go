package saft

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/invoicing"
	"github.com/JIGLE/proman-sub000/internal/domain/property"
	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

// GenerateSAFTPT builds the SAF-T PT audit file for the invoices issued in
// the selected period. Options are validated first; an invalid set returns
// an INVALID_INPUT domain error listing every problem.
func GenerateSAFTPT(opts ExportOptions, data ExportData, now time.Time) (*ExportResult, error) {
	opts = opts.Normalize()
	if v := ValidateSAFTData(opts, now); !v.Valid {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "SAF-T options invalid: "+strings.Join(v.Errors, "; "))
	}

	start, end := opts.Period(now.Location())
	b := newBuilder(opts, data)
	invoices := b.buildInvoices(start, end)
	customers := b.customerList()
	products := b.productList()

	totalCredit := decimal.Zero
	for _, inv := range invoices {
		if inv.Status == DocumentStatusNormal {
			totalCredit = totalCredit.Add(inv.NetTotal)
		}
	}
	totalCredit = valueobject.RoundMoney(totalCredit)

	doc := El("AuditFile").WithAttr("xmlns", Namespace)
	doc.Add(
		headerNode(opts, start, end, now),
		masterFilesNode(customers, products),
		El("SourceDocuments", salesInvoicesNode(invoices, decimal.Zero, totalCredit, opts)),
	)

	return &ExportResult{
		XML:           Render(doc),
		FileName:      opts.FileName(),
		InvoiceCount:  len(invoices),
		CustomerCount: len(customers),
		ProductCount:  len(products),
		TotalDebit:    decimal.Zero,
		TotalCredit:   totalCredit,
		PeriodStart:   start,
		PeriodEnd:     end,
	}, nil
}

type builder struct {
	opts       ExportOptions
	data       ExportData
	tenants    map[uuid.UUID]*property.Tenant
	properties map[uuid.UUID]*property.Property

	customers     []SAFTCustomer
	customerIndex map[string]bool
	products      []SAFTProduct
	productIndex  map[string]bool
	needsFinal    bool
}

func newBuilder(opts ExportOptions, data ExportData) *builder {
	b := &builder{
		opts:          opts,
		data:          data,
		tenants:       make(map[uuid.UUID]*property.Tenant, len(data.Tenants)),
		properties:    make(map[uuid.UUID]*property.Property, len(data.Properties)),
		customerIndex: make(map[string]bool),
		productIndex:  make(map[string]bool),
	}
	for i := range data.Tenants {
		b.tenants[data.Tenants[i].ID] = &data.Tenants[i]
	}
	for i := range data.Properties {
		b.properties[data.Properties[i].ID] = &data.Properties[i]
	}
	return b
}

func (b *builder) buildInvoices(start, end time.Time) []SAFTInvoice {
	selected := make([]invoicing.Invoice, 0, len(b.data.Invoices))
	for _, inv := range b.data.Invoices {
		if inv.CreatedAt.Before(start) || inv.CreatedAt.After(end) {
			continue
		}
		selected = append(selected, inv)
	}
	sort.SliceStable(selected, func(i, j int) bool {
		if !selected[i].CreatedAt.Equal(selected[j].CreatedAt) {
			return selected[i].CreatedAt.Before(selected[j].CreatedAt)
		}
		return selected[i].Number < selected[j].Number
	})

	out := make([]SAFTInvoice, 0, len(selected))
	previousHash := ""
	for i := range selected {
		si := b.buildInvoice(&selected[i], i+1, start.Location())
		si.Hash = PlaceholderHash(
			si.InvoiceDate.Format(dateLayout),
			si.SystemEntryDate.Format(dateTimeLayout),
			si.InvoiceNo,
			si.GrossTotal.StringFixed(2),
			previousHash,
		)
		previousHash = si.Hash
		out = append(out, si)
	}
	return out
}

func (b *builder) buildInvoice(inv *invoicing.Invoice, index int, loc *time.Location) SAFTInvoice {
	issued := inv.CreatedAt.In(loc)
	si := SAFTInvoice{
		InvoiceNo:       saftInvoiceNo(inv.Number, b.opts.SeriesCode, index),
		SourceNumber:    inv.Number,
		ATCUD:           GenerateATCUD(b.opts.SeriesCode, index),
		Status:          DocumentStatusNormal,
		StatusDate:      issued,
		InvoiceDate:     issued,
		SystemEntryDate: issued,
		CustomerID:      b.customerFor(inv),
	}
	if inv.Status == invoicing.InvoiceStatusCancelled {
		si.Status = DocumentStatusCancelled
		si.StatusDate = inv.UpdatedAt.In(loc)
	}

	productCode, productDescription := b.productFor(inv)
	net := decimal.Zero
	for _, li := range inv.LineItems() {
		line := SAFTLine{
			LineNumber:         len(si.Lines) + 1,
			ProductCode:        productCode,
			ProductDescription: productDescription,
			Quantity:           li.Quantity,
			UnitPrice:          li.UnitPrice,
			TaxPointDate:       issued,
			Description:        li.Description,
			CreditAmount:       valueobject.RoundMoney(li.Total()),
			Tax:                TaxExempt,
		}
		net = net.Add(line.CreditAmount)
		si.Lines = append(si.Lines, line)
	}
	if fee := inv.LateFeeAmount(); fee.IsPositive() {
		b.addProduct(SAFTProduct{
			ProductType:        ProductTypeService,
			ProductCode:        LateFeeProductCode,
			ProductDescription: lateFeeDescription,
			ProductNumberCode:  LateFeeProductCode,
		})
		si.Lines = append(si.Lines, SAFTLine{
			LineNumber:         len(si.Lines) + 1,
			ProductCode:        LateFeeProductCode,
			ProductDescription: lateFeeDescription,
			Quantity:           decimal.NewFromInt(1),
			UnitPrice:          fee,
			TaxPointDate:       issued,
			Description:        lateFeeDescription,
			CreditAmount:       fee,
			Tax:                TaxExempt,
		})
		net = net.Add(fee)
	}

	si.NetTotal = valueobject.RoundMoney(net)
	si.TaxPayable = decimal.Zero
	si.GrossTotal = si.NetTotal.Add(si.TaxPayable)
	return si
}

// customerFor registers the invoice's tenant as a customer, deduplicated by
// tenant id. Invoices without a known tenant are billed to the final consumer.
func (b *builder) customerFor(inv *invoicing.Invoice) string {
	if inv.TenantID == nil {
		b.needsFinal = true
		return FinalConsumerID
	}
	t, ok := b.tenants[*inv.TenantID]
	if !ok {
		b.needsFinal = true
		return FinalConsumerID
	}

	id := t.ID.String()
	if b.customerIndex[id] {
		return id
	}
	b.customerIndex[id] = true

	taxID := t.TaxID
	if !valueobject.IsValidNIF(taxID) {
		taxID = valueobject.FinalConsumerNIF
	}
	addr := t.Address
	if addr.Street == "" {
		addr.Street = unknownValue
	}
	if addr.City == "" {
		addr.City = unknownValue
	}
	if addr.PostalCode == "" {
		addr.PostalCode = unknownPostalCode
	}
	addr.Country = addr.CountryOrDefault()

	b.customers = append(b.customers, SAFTCustomer{
		CustomerID:     id,
		AccountID:      UnknownAccountID,
		CustomerTaxID:  taxID,
		CompanyName:    t.Name,
		BillingAddress: addr,
	})
	return id
}

func (b *builder) customerList() []SAFTCustomer {
	out := append([]SAFTCustomer(nil), b.customers...)
	if b.needsFinal || len(out) == 0 {
		out = append(out, finalConsumer())
	}
	return out
}

func (b *builder) productFor(inv *invoicing.Invoice) (code, description string) {
	p := SAFTProduct{
		ProductType:        ProductTypeService,
		ProductCode:        GenericRentProductCode,
		ProductDescription: "Arrendamento",
		ProductNumberCode:  GenericRentProductCode,
	}
	if inv.PropertyID != nil {
		if prop, ok := b.properties[*inv.PropertyID]; ok {
			p.ProductCode = "PROP-" + strings.ToUpper(prop.ID.String()[:8])
			p.ProductDescription = "Arrendamento - " + prop.Name
			p.ProductNumberCode = p.ProductCode
		}
	}
	b.addProduct(p)
	return p.ProductCode, p.ProductDescription
}

func (b *builder) addProduct(p SAFTProduct) {
	if b.productIndex[p.ProductCode] {
		return
	}
	b.productIndex[p.ProductCode] = true
	b.products = append(b.products, p)
}

func (b *builder) productList() []SAFTProduct {
	return append([]SAFTProduct(nil), b.products...)
}

// saftInvoiceNo renders "FT <series>/<seq>". INV-2025-00007 becomes
// "FT INV2025/7"; numbers in another format use the batch series and index.
func saftInvoiceNo(number, seriesCode string, index int) string {
	if year, seq, ok := invoicing.ParseInvoiceNumber(number); ok {
		return fmt.Sprintf("%s %s%d/%d", InvoiceTypeInvoice, invoicing.NumberPrefix, year, seq)
	}
	return fmt.Sprintf("%s %s/%d", InvoiceTypeInvoice, seriesCode, index)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func addressNode(name string, a valueobject.Address) *Node {
	return El(name,
		Leaf("AddressDetail", a.Street),
		Leaf("City", a.City),
		Leaf("PostalCode", a.PostalCode),
		Leaf("Country", a.CountryOrDefault()),
	)
}

func headerNode(opts ExportOptions, start, end, now time.Time) *Node {
	h := El("Header",
		Leaf("AuditFileVersion", AuditFileVersion),
		Leaf("CompanyID", opts.Company.TaxRegistrationNumber),
		Leaf("TaxRegistrationNumber", opts.Company.TaxRegistrationNumber),
		Leaf("TaxAccountingBasis", TaxAccountingBasis),
		Leaf("CompanyName", opts.Company.CompanyName),
		Leaf("BusinessName", opts.Company.BusinessName),
		addressNode("CompanyAddress", opts.Company.Address),
		Leaf("FiscalYear", strconv.Itoa(opts.FiscalYear)),
		Leaf("StartDate", start.Format(dateLayout)),
		Leaf("EndDate", end.Format(dateLayout)),
		Leaf("CurrencyCode", string(valueobject.DefaultCurrency)),
		Leaf("DateCreated", now.Format(dateLayout)),
		Leaf("TaxEntity", TaxEntity),
		Leaf("ProductCompanyTaxID", opts.Company.TaxRegistrationNumber),
		Leaf("SoftwareCertificateNumber", opts.SoftwareCertificateNumber),
		Leaf("ProductID", opts.ProductID),
		Leaf("ProductVersion", opts.ProductVersion),
	)
	if opts.Company.Telephone != "" {
		h.Add(Leaf("Telephone", opts.Company.Telephone))
	}
	if opts.Company.Email != "" {
		h.Add(Leaf("Email", opts.Company.Email))
	}
	return h
}

func masterFilesNode(customers []SAFTCustomer, products []SAFTProduct) *Node {
	mf := El("MasterFiles")
	for _, c := range customers {
		mf.Add(El("Customer",
			Leaf("CustomerID", c.CustomerID),
			Leaf("AccountID", c.AccountID),
			Leaf("CustomerTaxID", c.CustomerTaxID),
			Leaf("CompanyName", c.CompanyName),
			addressNode("BillingAddress", c.BillingAddress),
			Leaf("SelfBillingIndicator", "0"),
		))
	}
	for _, p := range products {
		mf.Add(El("Product",
			Leaf("ProductType", p.ProductType),
			Leaf("ProductCode", p.ProductCode),
			Leaf("ProductDescription", p.ProductDescription),
			Leaf("ProductNumberCode", p.ProductNumberCode),
		))
	}
	mf.Add(El("TaxTable", El("TaxTableEntry",
		Leaf("TaxType", TaxTypeVAT),
		Leaf("TaxCountryRegion", TaxCountryRegion),
		Leaf("TaxCode", TaxExempt.Code),
		Leaf("Description", TaxExempt.Description),
		Leaf("TaxPercentage", TaxExempt.Percentage.StringFixed(2)),
	)))
	return mf
}

func salesInvoicesNode(invoices []SAFTInvoice, totalDebit, totalCredit decimal.Decimal, opts ExportOptions) *Node {
	si := El("SalesInvoices",
		Leaf("NumberOfEntries", strconv.Itoa(len(invoices))),
		Leaf("TotalDebit", money(totalDebit)),
		Leaf("TotalCredit", money(totalCredit)),
	)
	for _, inv := range invoices {
		si.Add(invoiceNode(inv, opts))
	}
	return si
}

func invoiceNode(inv SAFTInvoice, opts ExportOptions) *Node {
	n := El("Invoice",
		Leaf("InvoiceNo", inv.InvoiceNo),
		Leaf("ATCUD", inv.ATCUD),
		El("DocumentStatus",
			Leaf("InvoiceStatus", inv.Status),
			Leaf("InvoiceStatusDate", inv.StatusDate.Format(dateTimeLayout)),
			Leaf("SourceID", opts.SourceID),
			Leaf("SourceBilling", SourceBilling),
		),
		Leaf("Hash", inv.Hash),
		Leaf("HashControl", HashControlPlaceholder),
		Leaf("Period", strconv.Itoa(int(inv.InvoiceDate.Month()))),
		Leaf("InvoiceDate", inv.InvoiceDate.Format(dateLayout)),
		Leaf("InvoiceType", InvoiceTypeInvoice),
		El("SpecialRegimes",
			Leaf("SelfBillingIndicator", "0"),
			Leaf("CashVATSchemeIndicator", "0"),
			Leaf("ThirdPartiesBillingIndicator", "0"),
		),
		Leaf("SourceID", opts.SourceID),
		Leaf("SystemEntryDate", inv.SystemEntryDate.Format(dateTimeLayout)),
		Leaf("CustomerID", inv.CustomerID),
	)
	for _, l := range inv.Lines {
		n.Add(El("Line",
			Leaf("LineNumber", strconv.Itoa(l.LineNumber)),
			Leaf("ProductCode", l.ProductCode),
			Leaf("ProductDescription", l.ProductDescription),
			Leaf("Quantity", l.Quantity.String()),
			Leaf("UnitOfMeasure", UnitOfMeasure),
			Leaf("UnitPrice", money(l.UnitPrice)),
			Leaf("TaxPointDate", l.TaxPointDate.Format(dateLayout)),
			Leaf("Description", l.Description),
			Leaf("CreditAmount", money(l.CreditAmount)),
			El("Tax",
				Leaf("TaxType", TaxTypeVAT),
				Leaf("TaxCountryRegion", TaxCountryRegion),
				Leaf("TaxCode", l.Tax.Code),
				Leaf("TaxPercentage", l.Tax.Percentage.StringFixed(2)),
			),
			Leaf("TaxExemptionReason", ExemptionReason),
			Leaf("TaxExemptionCode", ExemptionCode),
			Leaf("SettlementAmount", "0.00"),
		))
	}
	n.Add(El("DocumentTotals",
		Leaf("TaxPayable", money(inv.TaxPayable)),
		Leaf("NetTotal", money(inv.NetTotal)),
		Leaf("GrossTotal", money(inv.GrossTotal)),
	))
	return n
}
