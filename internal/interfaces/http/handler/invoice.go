package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	appinvoicing "github.com/JIGLE/proman-sub000/internal/application/invoicing"
	"github.com/JIGLE/proman-sub000/internal/application/printing"
	"github.com/JIGLE/proman-sub000/internal/domain/invoicing"
	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceService is the part of the invoicing application service the HTTP layer uses
type InvoiceService interface {
	Create(ctx context.Context, userID uuid.UUID, req appinvoicing.CreateInvoiceRequest) (*appinvoicing.InvoiceResponse, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (*appinvoicing.InvoiceResponse, error)
	List(ctx context.Context, userID uuid.UUID, f appinvoicing.InvoiceListFilter) (*shared.Paginated[appinvoicing.InvoiceResponse], error)
	Update(ctx context.Context, userID, id uuid.UUID, req appinvoicing.UpdateInvoiceRequest) (*appinvoicing.InvoiceResponse, error)
	MarkAsPaid(ctx context.Context, userID, id uuid.UUID, req appinvoicing.MarkAsPaidRequest) (*appinvoicing.InvoiceResponse, error)
	Cancel(ctx context.Context, userID, id uuid.UUID) (*appinvoicing.InvoiceResponse, error)
	PreviewLateFees(ctx context.Context, userID uuid.UUID, cfg invoicing.LateFeeConfig) ([]appinvoicing.LateFeePreview, error)
	ApplyLateFees(ctx context.Context, userID uuid.UUID, cfg invoicing.LateFeeConfig) (*appinvoicing.LateFeeRunResult, error)
	GenerateBatchRentInvoices(ctx context.Context, userID uuid.UUID, req appinvoicing.BatchRentRequest) (*appinvoicing.BatchRentResult, error)
	GetSummary(ctx context.Context, userID uuid.UUID, start, end *time.Time) (*appinvoicing.InvoiceSummary, error)
}

// InvoicePrinter renders an invoice as PDF
type InvoicePrinter interface {
	RenderPDF(ctx context.Context, userID, id uuid.UUID) (*printing.PDFDocument, error)
}

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	BaseHandler
	service       InvoiceService
	printer       InvoicePrinter
	defaultPolicy invoicing.LateFeeConfig
	location      *time.Location
}

// NewInvoiceHandler creates a new InvoiceHandler. printer may be nil, in
// which case the PDF endpoint answers 501. loc places summary days; nil means UTC.
func NewInvoiceHandler(service InvoiceService, printer InvoicePrinter, defaultPolicy invoicing.LateFeeConfig, loc *time.Location) *InvoiceHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &InvoiceHandler{
		service:       service,
		printer:       printer,
		defaultPolicy: defaultPolicy,
		location:      loc,
	}
}

// LateFeePolicyRequest overrides parts of the configured late-fee policy
// for one run. Omitted fields keep the configured value.
// @Description Late-fee policy overrides; empty fields keep the configured policy
type LateFeePolicyRequest struct {
	Enabled         *bool            `json:"enabled"`
	GracePeriodDays *int             `json:"grace_period_days" binding:"omitempty,min=0,max=365"`
	PercentageRate  *decimal.Decimal `json:"percentage_rate"`
	FlatFee         *decimal.Decimal `json:"flat_fee"`
	MaxPercentage   *decimal.Decimal `json:"max_percentage"`
}

func (r LateFeePolicyRequest) merge(base invoicing.LateFeeConfig) invoicing.LateFeeConfig {
	if r.Enabled != nil {
		base.Enabled = *r.Enabled
	}
	if r.GracePeriodDays != nil {
		base.GracePeriodDays = *r.GracePeriodDays
	}
	if r.PercentageRate != nil {
		base.PercentageRate = *r.PercentageRate
	}
	if r.FlatFee != nil {
		base.FlatFee = r.FlatFee
	}
	if r.MaxPercentage != nil {
		base.MaxPercentage = r.MaxPercentage
	}
	return base
}

// SummaryQuery selects the issue-date window of GET /invoices/summary.
// Both bounds are optional calendar days, inclusive, in the business zone.
type SummaryQuery struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// window turns the query days into instants: from at midnight, to at the
// last nanosecond of its day
func (q SummaryQuery) window(loc *time.Location) (start, end *time.Time, err error) {
	if q.From != "" {
		t, err := time.ParseInLocation(time.DateOnly, q.From, loc)
		if err != nil {
			return nil, nil, err
		}
		start = &t
	}
	if q.To != "" {
		t, err := time.ParseInLocation(time.DateOnly, q.To, loc)
		if err != nil {
			return nil, nil, err
		}
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		end = &t
	}
	return start, end, nil
}

// Create godoc
// @Summary      Create an invoice
// @Description  Create a pending invoice with the next INV-YYYY-NNNNN number. Line items must add up to the amount.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body appinvoicing.CreateInvoiceRequest true "Invoice creation request"
// @Success      201 {object} dto.Response{data=appinvoicing.InvoiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req appinvoicing.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	inv, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// List godoc
// @Summary      List invoices
// @Description  Retrieve a paginated list of the caller's invoices with optional filtering
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        status query string false "Invoice status" Enums(pending, paid, overdue, cancelled)
// @Param        property_id query string false "Property ID" format(uuid)
// @Param        tenant_id query string false "Tenant ID" format(uuid)
// @Param        due_from query string false "Due on or after (YYYY-MM-DD)" format(date)
// @Param        due_to query string false "Due on or before (YYYY-MM-DD)" format(date)
// @Param        search query string false "Search term (number, description)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Param        order_by query string false "Order by field" Enums(created_at, due_date, number, amount) default(created_at)
// @Param        order_dir query string false "Order direction" Enums(asc, desc) default(desc)
// @Success      200 {object} dto.Response{data=[]appinvoicing.InvoiceResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var filter appinvoicing.InvoiceListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}
	page, err := h.service.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID godoc
// @Summary      Get invoice by ID
// @Description  Retrieve one of the caller's invoices
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=appinvoicing.InvoiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	inv, err := h.service.GetByID(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Update godoc
// @Summary      Update an invoice
// @Description  Replace the provided fields. Line items and notes are merged into the stored metadata; the amount can only change while pending.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body appinvoicing.UpdateInvoiceRequest true "Invoice update request"
// @Success      200 {object} dto.Response{data=appinvoicing.InvoiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req appinvoicing.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	inv, err := h.service.Update(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// MarkAsPaid godoc
// @Summary      Mark an invoice as paid
// @Description  Settle a pending or overdue invoice today. The payment details body is optional.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body appinvoicing.MarkAsPaidRequest false "Payment details"
// @Success      200 {object} dto.Response{data=appinvoicing.InvoiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/pay [post]
func (h *InvoiceHandler) MarkAsPaid(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	var req appinvoicing.MarkAsPaidRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.BindError(c, err)
		return
	}
	inv, err := h.service.MarkAsPaid(c.Request.Context(), userID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Cancel godoc
// @Summary      Cancel an invoice
// @Description  Cancel a pending or overdue invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response{data=appinvoicing.InvoiceResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	inv, err := h.service.Cancel(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// PDF godoc
// @Summary      Download invoice PDF
// @Description  Render the invoice as an A4 PDF document
// @Tags         invoices
// @Accept       json
// @Produce      application/pdf
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {file} file "Invoice PDF"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      501 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	if h.printer == nil {
		h.Error(c, http.StatusNotImplemented, "ERR_NOT_IMPLEMENTED", "PDF printing is not configured")
		return
	}
	doc, err := h.printer.RenderPDF(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, doc.Filename))
	c.Data(http.StatusOK, "application/pdf", doc.Data)
}

// PreviewLateFees godoc
// @Summary      Preview late fees
// @Description  Compute the fees a late-fee run would charge without saving anything. Body fields override the configured policy.
// @Tags         late-fees
// @Accept       json
// @Produce      json
// @Param        request body LateFeePolicyRequest false "Policy overrides"
// @Success      200 {object} dto.Response{data=[]appinvoicing.LateFeePreview}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/late-fees/preview [post]
func (h *InvoiceHandler) PreviewLateFees(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	policy, ok := h.bindPolicy(c)
	if !ok {
		return
	}
	previews, err := h.service.PreviewLateFees(c.Request.Context(), userID, policy)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, previews)
}

// ApplyLateFees godoc
// @Summary      Apply late fees
// @Description  Move pending past-due invoices to overdue and charge the policy fee. Invoices already charged are skipped.
// @Tags         late-fees
// @Accept       json
// @Produce      json
// @Param        request body LateFeePolicyRequest false "Policy overrides"
// @Success      200 {object} dto.Response{data=appinvoicing.LateFeeRunResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/late-fees/apply [post]
func (h *InvoiceHandler) ApplyLateFees(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	policy, ok := h.bindPolicy(c)
	if !ok {
		return
	}
	result, err := h.service.ApplyLateFees(c.Request.Context(), userID, policy)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// BatchRent godoc
// @Summary      Generate rent invoices
// @Description  Create one rent invoice per lease active today
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body appinvoicing.BatchRentRequest true "Batch rent request"
// @Success      201 {object} dto.Response{data=appinvoicing.BatchRentResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/batch-rent [post]
func (h *InvoiceHandler) BatchRent(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req appinvoicing.BatchRentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.service.GenerateBatchRentInvoices(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Summary godoc
// @Summary      Invoice summary
// @Description  Totals per status for invoices issued in the window. Both bounds are optional and inclusive.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        from query string false "Issued on or after (YYYY-MM-DD)" format(date)
// @Param        to query string false "Issued on or before (YYYY-MM-DD)" format(date)
// @Success      200 {object} dto.Response{data=appinvoicing.InvoiceSummary}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /invoices/summary [get]
func (h *InvoiceHandler) Summary(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var q SummaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	start, end, err := q.window(h.location)
	if err != nil {
		h.BadRequest(c, "from and to must be dates (YYYY-MM-DD)")
		return
	}
	summary, err := h.service.GetSummary(c.Request.Context(), userID, start, end)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

func (h *InvoiceHandler) bindPolicy(c *gin.Context) (invoicing.LateFeeConfig, bool) {
	var req LateFeePolicyRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		h.BindError(c, err)
		return invoicing.LateFeeConfig{}, false
	}
	return req.merge(h.defaultPolicy), true
}

// bindOptionalJSON binds a JSON body when one is present
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
