// Package printing produces printable invoice documents (HTML and PDF)
package printing

import (
	"context"
	"errors"
	"fmt"

	"github.com/JIGLE/proman-sub000/internal/domain/invoicing"
	"github.com/JIGLE/proman-sub000/internal/domain/property"
	"github.com/JIGLE/proman-sub000/internal/domain/saft"
	"github.com/JIGLE/proman-sub000/internal/domain/shared"
	infra "github.com/JIGLE/proman-sub000/internal/infrastructure/printing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceFinder loads an invoice owned by a user
type InvoiceFinder interface {
	Find(ctx context.Context, userID, id uuid.UUID) (*invoicing.Invoice, error)
}

// PDFDocument is a rendered invoice
type PDFDocument struct {
	Filename string
	Data     []byte
	Pages    int
}

// InvoicePrintService renders invoices with their tenant and property
type InvoicePrintService struct {
	invoices     InvoiceFinder
	tenantRepo   property.TenantRepository
	propertyRepo property.PropertyRepository
	template     *infra.InvoiceTemplate
	renderer     infra.PDFRenderer
	company      saft.CompanyInfo
	logger       *zap.Logger
}

// NewInvoicePrintService creates a new InvoicePrintService
func NewInvoicePrintService(
	invoices InvoiceFinder,
	tenantRepo property.TenantRepository,
	propertyRepo property.PropertyRepository,
	template *infra.InvoiceTemplate,
	renderer infra.PDFRenderer,
	company saft.CompanyInfo,
	logger *zap.Logger,
) *InvoicePrintService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoicePrintService{
		invoices:     invoices,
		tenantRepo:   tenantRepo,
		propertyRepo: propertyRepo,
		template:     template,
		renderer:     renderer,
		company:      company,
		logger:       logger,
	}
}

// parties loads the tenant and property; a missing record prints without it
func (s *InvoicePrintService) parties(ctx context.Context, inv *invoicing.Invoice) (infra.InvoiceParties, error) {
	p := infra.InvoiceParties{Company: s.company}
	if inv.TenantID != nil {
		tenant, err := s.tenantRepo.FindByIDForUser(ctx, inv.UserID, *inv.TenantID)
		switch {
		case err == nil:
			p.Tenant = tenant
		case !errors.Is(err, shared.ErrNotFound):
			return p, fmt.Errorf("load tenant: %w", err)
		}
	}
	if inv.PropertyID != nil {
		prop, err := s.propertyRepo.FindByIDForUser(ctx, inv.UserID, *inv.PropertyID)
		switch {
		case err == nil:
			p.Property = prop
		case !errors.Is(err, shared.ErrNotFound):
			return p, fmt.Errorf("load property: %w", err)
		}
	}
	return p, nil
}

// RenderHTML renders the invoice page
func (s *InvoicePrintService) RenderHTML(ctx context.Context, userID, id uuid.UUID) (string, error) {
	inv, err := s.invoices.Find(ctx, userID, id)
	if err != nil {
		return "", err
	}
	parties, err := s.parties(ctx, inv)
	if err != nil {
		return "", err
	}
	return s.template.Render(inv, parties)
}

// RenderPDF renders the invoice and prints it to an A4 PDF
func (s *InvoicePrintService) RenderPDF(ctx context.Context, userID, id uuid.UUID) (*PDFDocument, error) {
	inv, err := s.invoices.Find(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	parties, err := s.parties(ctx, inv)
	if err != nil {
		return nil, err
	}
	html, err := s.template.Render(inv, parties)
	if err != nil {
		return nil, err
	}

	result, err := s.renderer.Render(ctx, &infra.RenderRequest{
		HTML:      html,
		PaperSize: infra.PaperSizeA4,
		Margins:   infra.DefaultMargins(),
		Title:     inv.Number,
		FooterHTML: `<div style="font-size:8px;width:100%;text-align:center;">` +
			`<span class="pageNumber"></span>/<span class="totalPages"></span></div>`,
	})
	if err != nil {
		s.logger.Error("invoice PDF rendering failed",
			zap.String("invoice_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return &PDFDocument{
		Filename: inv.Number + ".pdf",
		Data:     result.PDFData,
		Pages:    result.PageCount,
	}, nil
}
