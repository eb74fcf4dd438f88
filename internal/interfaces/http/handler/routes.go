package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the invoice endpoints under rg
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/invoices")
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/summary", h.Summary)
	g.POST("/late-fees/preview", h.PreviewLateFees)
	g.POST("/late-fees/apply", h.ApplyLateFees)
	g.POST("/batch-rent", h.BatchRent)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.POST("/:id/pay", h.MarkAsPaid)
	g.POST("/:id/cancel", h.Cancel)
	g.GET("/:id/pdf", h.PDF)
}

// RegisterRoutes mounts the SAF-T endpoints under rg
func (h *SAFTHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/saft")
	g.POST("/export", h.Export)
	g.POST("/validate", h.Validate)
}

// RegisterRoutes mounts the analytics endpoints under rg
func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/analytics")
	g.GET("/dashboard", h.Dashboard)
	g.GET("/kpis", h.KPIs)
	g.GET("/revenue", h.Revenue)
	g.GET("/lease-expirations", h.LeaseExpirations)
}
