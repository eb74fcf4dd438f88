package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	appsaft "github.com/JIGLE/proman-sub000/internal/application/saft"
	"github.com/JIGLE/proman-sub000/internal/domain/saft"
	"github.com/JIGLE/proman-sub000/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SAFTService builds and checks SAF-T PT exports
type SAFTService interface {
	Validate(opts saft.ExportOptions) saft.ValidationResult
	Export(ctx context.Context, userID uuid.UUID, opts saft.ExportOptions) (*appsaft.ExportResponse, error)
}

// SAFTHandler handles SAF-T PT export endpoints
type SAFTHandler struct {
	BaseHandler
	service SAFTService
}

// NewSAFTHandler creates a new SAFTHandler
func NewSAFTHandler(service SAFTService) *SAFTHandler {
	return &SAFTHandler{service: service}
}

// CompanyRequest overrides the configured company header for one export
type CompanyRequest struct {
	TaxRegistrationNumber string `json:"tax_registration_number" binding:"required,nif"`
	CompanyName           string `json:"company_name" binding:"required,max=200"`
	BusinessName          string `json:"business_name" binding:"max=200"`
	Street                string `json:"street" binding:"max=200"`
	City                  string `json:"city" binding:"max=100"`
	PostalCode            string `json:"postal_code" binding:"omitempty,pt_postal_code"`
	Country               string `json:"country" binding:"omitempty,len=2"`
	Email                 string `json:"email" binding:"omitempty,email"`
	Telephone             string `json:"telephone" binding:"max=30"`
}

// SAFTExportRequest selects the export period. Months default to the full year.
// @Description Fiscal period and header overrides of a SAF-T export
type SAFTExportRequest struct {
	FiscalYear int             `json:"fiscal_year" binding:"required,min=2000,max=2100"`
	StartMonth int             `json:"start_month" binding:"omitempty,min=1,max=12"`
	EndMonth   int             `json:"end_month" binding:"omitempty,min=1,max=12"`
	SeriesCode string          `json:"series_code" binding:"omitempty,max=20"`
	Company    *CompanyRequest `json:"company"`
}

func (r SAFTExportRequest) options() saft.ExportOptions {
	opts := saft.ExportOptions{
		FiscalYear: r.FiscalYear,
		StartMonth: r.StartMonth,
		EndMonth:   r.EndMonth,
		SeriesCode: r.SeriesCode,
	}
	if opts.StartMonth == 0 {
		opts.StartMonth = 1
	}
	if opts.EndMonth == 0 {
		opts.EndMonth = 12
	}
	if c := r.Company; c != nil {
		country := strings.ToUpper(c.Country)
		if country == "" {
			country = valueobject.DefaultCountry
		}
		opts.Company = saft.CompanyInfo{
			TaxRegistrationNumber: c.TaxRegistrationNumber,
			CompanyName:           c.CompanyName,
			BusinessName:          c.BusinessName,
			Address: valueobject.Address{
				Street:     c.Street,
				City:       c.City,
				PostalCode: c.PostalCode,
				Country:    country,
			},
			Email:     c.Email,
			Telephone: c.Telephone,
		}
	}
	return opts
}

// Validate godoc
// @Summary      Validate SAF-T export
// @Description  Check the company header and period of an export. Always answers 200; the body says whether the export would be accepted.
// @Tags         saft
// @Accept       json
// @Produce      json
// @Param        request body SAFTExportRequest true "Export period"
// @Success      200 {object} dto.Response{data=saft.ValidationResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /saft/validate [post]
func (h *SAFTHandler) Validate(c *gin.Context) {
	if _, ok := h.requireUser(c); !ok {
		return
	}
	var req SAFTExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	h.Success(c, h.service.Validate(req.options()))
}

// Export godoc
// @Summary      Export SAF-T PT
// @Description  Build the SAF-T PT 1.04_01 audit file for the period and stream it as an XML attachment
// @Tags         saft
// @Accept       json
// @Produce      xml
// @Param        request body SAFTExportRequest true "Export period"
// @Success      200 {file} file "SAF-T XML"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /saft/export [post]
func (h *SAFTHandler) Export(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req SAFTExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.service.Export(c.Request.Context(), userID, req.options())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.FileName))
	c.Header("X-Invoice-Count", fmt.Sprint(result.InvoiceCount))
	if result.ArchiveKey != "" {
		c.Header("X-Archive-Key", result.ArchiveKey)
	}
	if result.DownloadURL != "" {
		c.Header("X-Archive-URL", result.DownloadURL)
	}
	c.Data(http.StatusOK, appsaft.ContentType, []byte(result.XML))
}
