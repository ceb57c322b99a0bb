package handler

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"invoice-import-backend/internal/apperrors"
	service "invoice-import-backend/internal/services/importer"
)

const maxProfileBytes = 1 << 20

type InvoiceHandler struct {
	service *service.Service
}

func NewInvoiceHandler(s *service.Service) *InvoiceHandler {
	return &InvoiceHandler{service: s}
}

// Status reports database connectivity and the invoice count.
func (h *InvoiceHandler) Status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"database":       status.Database,
		"total_invoices": status.TotalInvoices,
	})
}

func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var customerID *uint
	if raw := c.Query("customer_id"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_id"})
			return
		}
		customerID = &id
	}

	invoices, err := h.service.ListInvoices(c.Request.Context(), customerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

func (h *InvoiceHandler) RecentInvoices(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	invoices, err := h.service.RecentInvoices(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"invoices": invoices})
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice ID"})
		return
	}
	data, err := h.service.GetInvoice(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

func (h *InvoiceHandler) ListCustomers(c *gin.Context) {
	customers, err := h.service.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

// CreateImport takes a multipart upload with a "profile" JSON file, a "data"
// file named invoice-data-M-D.txt and an optional "year".
func (h *InvoiceHandler) CreateImport(c *gin.Context) {
	profileFile, profileHeader, err := c.Request.FormFile("profile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "profile file required"})
		return
	}
	defer profileFile.Close()

	dataFile, dataHeader, err := c.Request.FormFile("data")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "data file required"})
		return
	}
	defer dataFile.Close()

	year := 0
	if raw := c.PostForm("year"); raw != "" {
		year, err = strconv.Atoi(raw)
		if err != nil || year < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return
		}
	}

	profile, err := io.ReadAll(io.LimitReader(profileFile, maxProfileBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read profile file"})
		return
	}
	if len(profile) > maxProfileBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "profile file too large"})
		return
	}

	data, err := h.service.Import(c.Request.Context(), service.Request{
		ProfileName: profileHeader.Filename,
		Profile:     profile,
		DataName:    dataHeader.Filename,
		Data:        dataFile,
		Year:        year,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": fmt.Sprintf("Invoice %s imported", data.InvoiceNumber),
		"invoice": data,
	})
}

func (h *InvoiceHandler) ListImports(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	runs, err := h.service.ListRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imports": runs})
}

func (h *InvoiceHandler) GetImport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid import ID"})
		return
	}
	run, err := h.service.GetRun(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// HTTPStatus maps an error kind to a response code.
func HTTPStatus(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindProfile, apperrors.KindMetadata, apperrors.KindLineItem, apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindConstraint:
		return http.StatusConflict
	case apperrors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(HTTPStatus(err), gin.H{
		"error": err.Error(),
		"kind":  apperrors.KindOf(err),
	})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return n, nil
}
