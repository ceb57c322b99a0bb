package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	handler "invoice-import-backend/internal/handlers"
	service "invoice-import-backend/internal/services/importer"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB) {
	Register(r, service.New(db))
}

func Register(r *gin.Engine, svc *service.Service) {
	h := handler.NewInvoiceHandler(svc)

	r.GET("/status", h.Status)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	invoices := api.Group("/invoices")
	{
		invoices.GET("", h.ListInvoices)
		invoices.GET("/recent", h.RecentInvoices)
		invoices.GET("/:id", h.GetInvoice)
	}

	api.GET("/customers", h.ListCustomers)

	imports := api.Group("/imports")
	{
		imports.POST("", h.CreateImport)
		imports.GET("", h.ListImports)
		imports.GET("/:id", h.GetImport)
	}
}
