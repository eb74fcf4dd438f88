package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName scopes the business instruments
const MeterName = "proman/business"

// Metric attribute keys
var (
	AttrInvoiceSource = attribute.Key("invoice_source")
	AttrPaymentMethod = attribute.Key("payment_method")
	AttrExportStatus  = attribute.Key("export_status")
)

// InvoiceSource labels how an invoice was created
type InvoiceSource string

const (
	InvoiceSourceManual    InvoiceSource = "manual"
	InvoiceSourceBatchRent InvoiceSource = "batch_rent"
)

// ExportStatus labels the outcome of a SAF-T export
type ExportStatus string

const (
	ExportStatusSuccess ExportStatus = "success"
	ExportStatusFailed  ExportStatus = "failed"
)

// ErrMeterNil is returned when no meter is given
var ErrMeterNil = errors.New("business metrics: meter cannot be nil")

// BusinessMetrics counts invoice lifecycle events and SAF-T exports.
// A nil *BusinessMetrics records nothing, so services can hold one unset.
type BusinessMetrics struct {
	invoiceCreated *Counter
	invoicePaid    *Counter
	paidAmount     *Counter
	lateFeeApplied *Counter
	lateFeeFailed  *Counter
	lateFeeAmount  *Counter
	saftExports    *Counter
}

// NewBusinessMetrics registers the business counters on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	bm := &BusinessMetrics{}
	counters := []struct {
		target           **Counter
		name, desc, unit string
	}{
		{&bm.invoiceCreated, "proman_invoice_created_total", "Invoices created", "{invoices}"},
		{&bm.invoicePaid, "proman_invoice_paid_total", "Invoices marked as paid", "{invoices}"},
		{&bm.paidAmount, "proman_invoice_paid_amount_total", "Paid invoice amount in cents", "{cents}"},
		{&bm.lateFeeApplied, "proman_late_fee_applied_total", "Invoices charged a late fee", "{invoices}"},
		{&bm.lateFeeFailed, "proman_late_fee_failed_total", "Invoices a late-fee run could not update", "{invoices}"},
		{&bm.lateFeeAmount, "proman_late_fee_amount_total", "Late fees charged in cents", "{cents}"},
		{&bm.saftExports, "proman_saft_export_total", "SAF-T exports attempted", "{exports}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(meter, c.name, c.desc, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}
	return bm, nil
}

// RecordInvoiceCreated counts one created invoice
func (bm *BusinessMetrics) RecordInvoiceCreated(ctx context.Context, source InvoiceSource) {
	if bm == nil {
		return
	}
	bm.invoiceCreated.Inc(ctx, AttrInvoiceSource.String(string(source)))
}

// RecordInvoicePaid counts a settled invoice and its amount
func (bm *BusinessMetrics) RecordInvoicePaid(ctx context.Context, paymentMethod string, amount decimal.Decimal) {
	if bm == nil {
		return
	}
	if paymentMethod == "" {
		paymentMethod = "unspecified"
	}
	attr := AttrPaymentMethod.String(paymentMethod)
	bm.invoicePaid.Inc(ctx, attr)
	bm.paidAmount.Add(ctx, toCents(amount), attr)
}

// RecordLateFeeRun counts the outcome of one late-fee run
func (bm *BusinessMetrics) RecordLateFeeRun(ctx context.Context, applied, failed int, total decimal.Decimal) {
	if bm == nil {
		return
	}
	if applied > 0 {
		bm.lateFeeApplied.Add(ctx, int64(applied))
		bm.lateFeeAmount.Add(ctx, toCents(total))
	}
	if failed > 0 {
		bm.lateFeeFailed.Add(ctx, int64(failed))
	}
}

// RecordSAFTExport counts one export attempt
func (bm *BusinessMetrics) RecordSAFTExport(ctx context.Context, status ExportStatus) {
	if bm == nil {
		return
	}
	bm.saftExports.Inc(ctx, AttrExportStatus.String(string(status)))
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
