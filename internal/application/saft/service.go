package saft

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JIGLE/proman-sub000/internal/domain/invoicing"
	"github.com/JIGLE/proman-sub000/internal/domain/property"
	"github.com/JIGLE/proman-sub000/internal/domain/saft"
	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	"github.com/JIGLE/proman-sub000/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContentType of rendered exports
const ContentType = "application/xml; charset=utf-8"

// ArchiveStorage stores rendered exports
type ArchiveStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// ExportResponse is the rendered document plus its archive location
type ExportResponse struct {
	*saft.ExportResult
	ArchiveKey  string `json:"archive_key,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
}

// ExportService loads a user's invoices and builds SAF-T PT files from them
type ExportService struct {
	invoiceRepo    invoicing.InvoiceRepository
	tenantRepo     property.TenantRepository
	propertyRepo   property.PropertyRepository
	archive        ArchiveStorage
	defaultCompany saft.CompanyInfo
	clock          shared.Clock
	logger         *zap.Logger
	metrics        *telemetry.BusinessMetrics
}

// NewExportService creates a new ExportService. archive may be nil to skip archival.
func NewExportService(
	invoiceRepo invoicing.InvoiceRepository,
	tenantRepo property.TenantRepository,
	propertyRepo property.PropertyRepository,
	archive ArchiveStorage,
	defaultCompany saft.CompanyInfo,
	clock shared.Clock,
	logger *zap.Logger,
) *ExportService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		invoiceRepo:    invoiceRepo,
		tenantRepo:     tenantRepo,
		propertyRepo:   propertyRepo,
		archive:        archive,
		defaultCompany: defaultCompany,
		clock:          clock,
		logger:         logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *ExportService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// withCompany falls back to the configured company header when the request carries none
func (s *ExportService) withCompany(opts saft.ExportOptions) saft.ExportOptions {
	if opts.Company.TaxRegistrationNumber == "" && opts.Company.CompanyName == "" {
		opts.Company = s.defaultCompany
	}
	return opts
}

// Validate runs the pre-flight checks without loading any data
func (s *ExportService) Validate(opts saft.ExportOptions) saft.ValidationResult {
	return saft.ValidateSAFTData(s.withCompany(opts).Normalize(), s.clock.Now())
}

// ArchiveKey is the object key an export is archived under
func ArchiveKey(userID uuid.UUID, opts saft.ExportOptions, at time.Time) string {
	return fmt.Sprintf("saft/%s/%d/%02d-%02d-%s.xml",
		userID, opts.FiscalYear, opts.StartMonth, opts.EndMonth, at.UTC().Format("20060102T150405Z"))
}

// Export builds the SAF-T PT file for the requested period. The file is
// archived when storage is configured; an archival failure is logged and
// the export is still returned.
func (s *ExportService) Export(ctx context.Context, userID uuid.UUID, opts saft.ExportOptions) (_ *ExportResponse, err error) {
	now := s.clock.Now()
	opts = s.withCompany(opts).Normalize()
	ctx, span := telemetry.StartSpan(ctx, "saft", "export",
		telemetry.AttrUserID, userID, telemetry.AttrFiscalYear, opts.FiscalYear)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
		status := telemetry.ExportStatusSuccess
		if err != nil {
			status = telemetry.ExportStatusFailed
		}
		s.metrics.RecordSAFTExport(ctx, status)
	}()
	if v := saft.ValidateSAFTData(opts, now); !v.Valid {
		return nil, shared.NewDomainError(shared.ErrInvalidInput.Code, "SAF-T options invalid: "+strings.Join(v.Errors, "; "))
	}

	data, err := s.loadExportData(ctx, userID, opts, now.Location())
	if err != nil {
		return nil, err
	}

	result, err := saft.GenerateSAFTPT(opts, *data, now)
	if err != nil {
		return nil, err
	}
	s.logger.Info("SAF-T export generated",
		zap.String("user_id", userID.String()),
		zap.Int("fiscal_year", opts.FiscalYear),
		zap.Int("invoices", result.InvoiceCount),
		zap.Int("customers", result.CustomerCount),
	)

	resp := &ExportResponse{ExportResult: result}
	if s.archive != nil {
		s.archiveExport(ctx, userID, opts, now, resp)
	}
	return resp, nil
}

func (s *ExportService) archiveExport(ctx context.Context, userID uuid.UUID, opts saft.ExportOptions, now time.Time, resp *ExportResponse) {
	key := ArchiveKey(userID, opts, now)
	if err := s.archive.Upload(ctx, key, []byte(resp.XML), ContentType); err != nil {
		s.logger.Warn("SAF-T archive upload failed",
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	resp.ArchiveKey = key

	url, _, err := s.archive.GenerateDownloadURL(ctx, key, 0)
	if err != nil {
		s.logger.Warn("SAF-T archive link failed", zap.String("key", key), zap.Error(err))
		return
	}
	resp.DownloadURL = url
}

func (s *ExportService) loadExportData(ctx context.Context, userID uuid.UUID, opts saft.ExportOptions, loc *time.Location) (*saft.ExportData, error) {
	start, end := opts.Period(loc)
	invoices, err := s.invoiceRepo.FindAllForUser(ctx, userID, invoicing.InvoiceFilter{
		Filter:     shared.Filter{OrderBy: "created_at", OrderDir: "asc"},
		IssuedFrom: &start,
		IssuedTo:   &end,
	})
	if err != nil {
		return nil, fmt.Errorf("load invoices: %w", err)
	}

	seen := make(map[uuid.UUID]bool)
	tenantIDs := make([]uuid.UUID, 0)
	for i := range invoices {
		if id := invoices[i].TenantID; id != nil && !seen[*id] {
			seen[*id] = true
			tenantIDs = append(tenantIDs, *id)
		}
	}

	var tenants []property.Tenant
	if len(tenantIDs) > 0 {
		tenants, err = s.tenantRepo.FindByIDsForUser(ctx, userID, tenantIDs)
		if err != nil {
			return nil, fmt.Errorf("load tenants: %w", err)
		}
	}
	properties, err := s.propertyRepo.FindAllForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load properties: %w", err)
	}

	return &saft.ExportData{Invoices: invoices, Tenants: tenants, Properties: properties}, nil
}
