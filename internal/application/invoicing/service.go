package invoicing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/invoicing"
	"github.com/JIGLE/proman-sub000/internal/domain/property"
	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxNumberAttempts bounds retries when a concurrent create takes the same number
const maxNumberAttempts = 3

// InvoiceService manages the invoice lifecycle: numbering, updates,
// payment, late fees, batch rent billing and summaries.
type InvoiceService struct {
	invoiceRepo invoicing.InvoiceRepository
	leaseRepo   property.LeaseRepository
	clock       shared.Clock
	logger      *zap.Logger
	metrics     *telemetry.BusinessMetrics
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo invoicing.InvoiceRepository,
	leaseRepo property.LeaseRepository,
	clock shared.Clock,
	logger *zap.Logger,
) *InvoiceService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		leaseRepo:   leaseRepo,
		clock:       clock,
		logger:      logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *InvoiceService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// load fetches an owned invoice, translating repository misses
func (s *InvoiceService) load(ctx context.Context, userID, id uuid.UUID) (*invoicing.Invoice, error) {
	inv, err := s.invoiceRepo.FindByIDForUser(ctx, userID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, invoicing.ErrInvoiceNotFound
		}
		return nil, err
	}
	return inv, nil
}

// nextNumber returns the next free number for the current year
func (s *InvoiceService) nextNumber(ctx context.Context, userID uuid.UUID, year int) (string, error) {
	existing, err := s.invoiceRepo.FindNumbersWithPrefix(ctx, userID, invoicing.YearPrefix(year))
	if err != nil {
		return "", fmt.Errorf("load invoice numbers: %w", err)
	}
	return invoicing.NextInvoiceNumber(existing, year), nil
}

// NextNumber previews the number the next created invoice will receive
func (s *InvoiceService) NextNumber(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.nextNumber(ctx, userID, s.clock.Now().Year())
}

// Create creates a pending invoice with the next sequential number
func (s *InvoiceService) Create(ctx context.Context, userID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	now := s.clock.Now()

	var lastErr error
	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		number, err := s.nextNumber(ctx, userID, now.Year())
		if err != nil {
			return nil, err
		}

		inv, err := invoicing.NewInvoice(userID, number, req.Amount, req.DueDate, now)
		if err != nil {
			return nil, err
		}
		inv.Description = strings.TrimSpace(req.Description)
		inv.SetParties(req.PropertyID, req.TenantID, req.OwnerID)
		inv.LeaseID = req.LeaseID
		if err := inv.SetLineItems(toLineItems(req.LineItems)); err != nil {
			return nil, err
		}
		inv.Metadata.Notes = req.Notes

		err = s.invoiceRepo.Create(ctx, inv)
		if err == nil {
			s.logger.Info("invoice created",
				zap.String("user_id", userID.String()),
				zap.String("invoice_id", inv.ID.String()),
				zap.String("number", inv.Number),
			)
			s.metrics.RecordInvoiceCreated(ctx, telemetry.InvoiceSourceManual)
			resp := ToInvoiceResponse(inv)
			return &resp, nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, err
		}
		lastErr = err
		s.logger.Warn("invoice number taken, retrying",
			zap.String("number", number),
			zap.Int("attempt", attempt+1),
		)
	}
	return nil, lastErr
}

// GetByID returns an invoice owned by the user
func (s *InvoiceService) GetByID(ctx context.Context, userID, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Find returns the domain invoice, for callers that render it
func (s *InvoiceService) Find(ctx context.Context, userID, id uuid.UUID) (*invoicing.Invoice, error) {
	return s.load(ctx, userID, id)
}

// List returns a page of the user's invoices
func (s *InvoiceService) List(ctx context.Context, userID uuid.UUID, f InvoiceListFilter) (*shared.Paginated[InvoiceResponse], error) {
	propertyID, err := optionalID(f.PropertyID)
	if err != nil {
		return nil, err
	}
	tenantID, err := optionalID(f.TenantID)
	if err != nil {
		return nil, err
	}
	filter := invoicing.InvoiceFilter{
		Filter:     shared.DefaultFilter(),
		PropertyID: propertyID,
		TenantID:   tenantID,
		DueFrom:    f.DueFrom,
		DueTo:      f.DueTo,
	}
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = min(f.PageSize, shared.MaxPageSize)
	}
	filter.Search = f.Search
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = f.OrderDir
	}
	if f.Status != "" {
		status := invoicing.InvoiceStatus(f.Status)
		if !status.IsValid() {
			return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Unknown invoice status: "+f.Status)
		}
		filter.Status = &status
	}

	invoices, err := s.invoiceRepo.FindAllForUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.invoiceRepo.CountForUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToInvoiceResponses(invoices), total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update applies a partial update. Line items and notes are merged into the
// stored metadata; other non-nil fields replace the stored values.
func (s *InvoiceService) Update(ctx context.Context, userID, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	inv, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	update := invoicing.InvoiceUpdate{
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
		PropertyID:  req.PropertyID,
		TenantID:    req.TenantID,
		OwnerID:     req.OwnerID,
		Metadata: invoicing.MetadataPatch{
			LineItems: toLineItems(req.LineItems),
			Notes:     req.Notes,
		},
	}
	if err := inv.Update(update, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// MarkAsPaid settles an invoice today and stores the payment details
func (s *InvoiceService) MarkAsPaid(ctx context.Context, userID, id uuid.UUID, req MarkAsPaidRequest) (*InvoiceResponse, error) {
	inv, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := inv.MarkPaid(req.PaymentMethod, req.PaymentReference, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.logger.Info("invoice paid",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", inv.Number),
		zap.String("amount", inv.Amount.StringFixed(2)),
	)
	s.metrics.RecordInvoicePaid(ctx, inv.Metadata.PaymentMethod, inv.Amount)
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Cancel voids a pending or overdue invoice
func (s *InvoiceService) Cancel(ctx context.Context, userID, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := inv.Cancel(s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// pendingPastDue lists the user's pending invoices due before now. The
// repository filter narrows the scan; IsPastDue is the deciding check.
func (s *InvoiceService) pendingPastDue(ctx context.Context, userID uuid.UUID, now time.Time) ([]invoicing.Invoice, error) {
	status := invoicing.InvoiceStatusPending
	filter := invoicing.InvoiceFilter{
		Filter:    shared.Filter{OrderBy: "due_date", OrderDir: "asc"},
		Status:    &status,
		DueBefore: &now,
	}
	found, err := s.invoiceRepo.FindAllForUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	invoices := found[:0]
	for i := range found {
		if found[i].Status == invoicing.InvoiceStatusPending && found[i].IsPastDue(now) {
			invoices = append(invoices, found[i])
		}
	}
	return invoices, nil
}

// PreviewLateFees computes the fees a run would apply without saving anything
func (s *InvoiceService) PreviewLateFees(ctx context.Context, userID uuid.UUID, cfg invoicing.LateFeeConfig) ([]LateFeePreview, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	invoices, err := s.pendingPastDue(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	previews := make([]LateFeePreview, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		if inv.Metadata.LateFeeApplied() {
			continue
		}
		res := invoicing.CalculateLateFee(inv.OriginalAmount, inv.DueDate, now, cfg)
		if !res.HasFee() {
			continue
		}
		previews = append(previews, LateFeePreview{
			InvoiceID:      inv.ID,
			Number:         inv.Number,
			OriginalAmount: inv.OriginalAmount,
			LateFee:        res.LateFee,
			NewAmount:      inv.OriginalAmount.Add(res.LateFee),
			DaysOverdue:    res.DaysOverdue,
		})
	}
	return previews, nil
}

// ApplyLateFees moves the user's pending past-due invoices to overdue and
// charges the policy's fee. Invoices already carrying a fee are skipped;
// a failing invoice is recorded and the run continues.
func (s *InvoiceService) ApplyLateFees(ctx context.Context, userID uuid.UUID, cfg invoicing.LateFeeConfig) (_ *LateFeeRunResult, err error) {
	ctx, span := telemetry.StartSpan(ctx, "invoice", "apply_late_fees", telemetry.AttrUserID, userID)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	now := s.clock.Now()
	invoices, err := s.pendingPastDue(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	result := &LateFeeRunResult{
		Applied:       []InvoiceResponse{},
		Failed:        []LateFeeFailure{},
		TotalLateFees: decimal.Zero,
	}
	for i := range invoices {
		inv := &invoices[i]
		if inv.Metadata.LateFeeApplied() {
			result.Skipped++
			continue
		}

		fee := invoicing.CalculateLateFee(inv.OriginalAmount, inv.DueDate, now, cfg)
		if err := inv.ApplyLateFee(fee, cfg, now); err != nil {
			result.Failed = append(result.Failed, LateFeeFailure{InvoiceID: inv.ID, Number: inv.Number, Error: err.Error()})
			continue
		}
		if err := s.invoiceRepo.Save(ctx, inv); err != nil {
			s.logger.Warn("late fee not saved",
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(err),
			)
			result.Failed = append(result.Failed, LateFeeFailure{InvoiceID: inv.ID, Number: inv.Number, Error: err.Error()})
			continue
		}

		if fee.HasFee() {
			result.Applied = append(result.Applied, ToInvoiceResponse(inv))
			result.TotalLateFees = result.TotalLateFees.Add(fee.LateFee)
		} else {
			result.MarkedOverdue++
		}
	}

	s.metrics.RecordLateFeeRun(ctx, len(result.Applied), len(result.Failed), result.TotalLateFees)
	telemetry.SetAttributes(span,
		telemetry.AttrInvoiceCount, len(invoices),
		"proman.late_fee.applied", len(result.Applied),
		"proman.late_fee.failed", len(result.Failed),
	)
	s.logger.Info("late fee run finished",
		zap.String("user_id", userID.String()),
		zap.Int("scanned", len(invoices)),
		zap.Int("applied", len(result.Applied)),
		zap.Int("marked_overdue", result.MarkedOverdue),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

// ApplyLateFeesForAllUsers runs ApplyLateFees for every user owning pending
// past-due invoices. A failing user is logged and does not stop the others.
func (s *InvoiceService) ApplyLateFeesForAllUsers(ctx context.Context, cfg invoicing.LateFeeConfig) (map[uuid.UUID]*LateFeeRunResult, error) {
	users, err := s.invoiceRepo.FindUsersWithPendingDue(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}
	results := make(map[uuid.UUID]*LateFeeRunResult, len(users))
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.ApplyLateFees(ctx, userID, cfg)
		if err != nil {
			s.logger.Error("late fee run failed for user",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			continue
		}
		results[userID] = res
	}
	return results, nil
}

// GenerateBatchRentInvoices creates one rent invoice per lease active today.
// Each invoice bills the lease's monthly rent as a single line item.
func (s *InvoiceService) GenerateBatchRentInvoices(ctx context.Context, userID uuid.UUID, req BatchRentRequest) (*BatchRentResult, error) {
	if req.DueDate.IsZero() {
		return nil, invoicing.ErrInvalidDueDate
	}
	now := s.clock.Now()
	leases, err := s.leaseRepo.FindActiveForUser(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	existing, err := s.invoiceRepo.FindNumbersWithPrefix(ctx, userID, invoicing.YearPrefix(now.Year()))
	if err != nil {
		return nil, fmt.Errorf("load invoice numbers: %w", err)
	}

	result := &BatchRentResult{
		Success: []InvoiceResponse{},
		Failed:  []BatchRentFailure{},
	}
	description := "Rent " + strings.TrimSpace(req.Month)
	for i := range leases {
		lease := &leases[i]
		if !lease.IsActiveAt(now) {
			continue
		}

		number := invoicing.NextInvoiceNumber(existing, now.Year())
		inv, err := s.rentInvoice(userID, lease, number, description, req.DueDate, now)
		if err == nil {
			err = s.invoiceRepo.Create(ctx, inv)
		}
		if err != nil {
			s.logger.Warn("rent invoice not created",
				zap.String("lease_id", lease.ID.String()),
				zap.String("tenant_id", lease.TenantID.String()),
				zap.Error(err),
			)
			result.Failed = append(result.Failed, BatchRentFailure{LeaseID: lease.ID, TenantID: lease.TenantID, Error: err.Error()})
			continue
		}
		existing = append(existing, number)
		s.metrics.RecordInvoiceCreated(ctx, telemetry.InvoiceSourceBatchRent)
		result.Success = append(result.Success, ToInvoiceResponse(inv))
	}

	s.logger.Info("batch rent invoices generated",
		zap.String("user_id", userID.String()),
		zap.String("month", req.Month),
		zap.Int("created", len(result.Success)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func (s *InvoiceService) rentInvoice(userID uuid.UUID, lease *property.Lease, number, description string, dueDate, now time.Time) (*invoicing.Invoice, error) {
	inv, err := invoicing.NewInvoice(userID, number, lease.MonthlyRent, dueDate, now)
	if err != nil {
		return nil, err
	}
	propertyID, tenantID := lease.PropertyID, lease.TenantID
	inv.SetParties(&propertyID, &tenantID, nil)
	leaseID := lease.ID
	inv.LeaseID = &leaseID
	inv.Description = description
	inv.Metadata.LineItems = []invoicing.LineItem{{
		Description: description,
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   inv.Amount,
	}}
	return inv, nil
}

// GetSummary totals the user's invoices issued between start and end. A nil
// bound leaves that side of the window open. Amounts are summed unrounded and
// rounded once at the end.
func (s *InvoiceService) GetSummary(ctx context.Context, userID uuid.UUID, start, end *time.Time) (*InvoiceSummary, error) {
	if start != nil && end != nil && end.Before(*start) {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "Summary end date is before start date")
	}
	filter := invoicing.InvoiceFilter{
		Filter:     shared.Filter{OrderBy: "created_at", OrderDir: "asc"},
		IssuedFrom: start,
		IssuedTo:   end,
	}
	invoices, err := s.invoiceRepo.FindAllForUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	var invoiced, paid, pending, overdue, cancelled, lateFees decimal.Decimal
	counts := make(map[string]int, len(invoicing.AllInvoiceStatuses))
	for _, st := range invoicing.AllInvoiceStatuses {
		counts[st.String()] = 0
	}
	for i := range invoices {
		inv := &invoices[i]
		counts[inv.Status.String()]++
		switch inv.Status {
		case invoicing.InvoiceStatusPaid:
			paid = paid.Add(inv.Amount)
		case invoicing.InvoiceStatusPending:
			pending = pending.Add(inv.Amount)
		case invoicing.InvoiceStatusOverdue:
			overdue = overdue.Add(inv.Amount)
			lateFees = lateFees.Add(inv.LateFeeAmount())
		case invoicing.InvoiceStatusCancelled:
			cancelled = cancelled.Add(inv.Amount)
			continue
		}
		invoiced = invoiced.Add(inv.Amount)
	}

	return &InvoiceSummary{
		PeriodStart:    start,
		PeriodEnd:      end,
		InvoiceCount:   len(invoices),
		TotalInvoiced:  valueobject.RoundMoney(invoiced),
		TotalPaid:      valueobject.RoundMoney(paid),
		TotalPending:   valueobject.RoundMoney(pending),
		TotalOverdue:   valueobject.RoundMoney(overdue),
		TotalCancelled: valueobject.RoundMoney(cancelled),
		TotalLateFees:  valueobject.RoundMoney(lateFees),
		CountByStatus:  counts,
	}, nil
}
