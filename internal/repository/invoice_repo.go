package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"invoice-import-backend/internal/apperrors"
	"invoice-import-backend/internal/models"
)

// DefaultRecentLimit is how many invoices the dashboard shows.
const DefaultRecentLimit = 3

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *InvoiceRepository) WithTx(tx *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: tx}
}

// DB exposes the underlying handle so services can open transactions.
func (r *InvoiceRepository) DB() *gorm.DB {
	return r.db
}

// Create inserts the invoice row only; items are added separately.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *models.Invoice) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(invoice).Error
	if err == nil {
		return nil
	}
	err = classify(err, "create invoice")
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		appErr.WithContext("invoice_number", invoice.InvoiceNumber)
	}
	return err
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).First(&invoice, id).Error; err != nil {
		return nil, classify(err, "invoice not found")
	}
	return &invoice, nil
}

func (r *InvoiceRepository) GetByNumber(ctx context.Context, number string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).Where("invoice_number = ?", number).First(&invoice).Error
	if err != nil {
		return nil, classify(err, "invoice not found")
	}
	return &invoice, nil
}

// GetData loads an invoice with its customer, vendor and items and assembles
// the rendering aggregate. Stored rows are read raw and rebuilt through the
// model constructors, so a corrupt row surfaces as an integrity error rather
// than a half-filled invoice. Items come back in insertion order.
func (r *InvoiceRepository) GetData(ctx context.Context, id uint) (*models.InvoiceData, error) {
	row, err := rawRow(ctx, r.db, &models.Invoice{}, id)
	if err != nil {
		return nil, classify(err, "invoice not found")
	}
	invoice, err := models.InvoiceFromMap(row)
	if err != nil {
		return nil, err
	}

	row, err = rawRow(ctx, r.db, &models.Customer{}, invoice.CustomerID)
	if err != nil {
		return nil, missingReference(err, "customer", invoice)
	}
	customer, err := models.CustomerFromMap(row)
	if err != nil {
		return nil, withInvoiceNumber(err, invoice.InvoiceNumber)
	}
	invoice.Customer = *customer

	row, err = rawRow(ctx, r.db, &models.Vendor{}, invoice.VendorID)
	if err != nil {
		return nil, missingReference(err, "vendor", invoice)
	}
	vendor, err := models.VendorFromMap(row)
	if err != nil {
		return nil, withInvoiceNumber(err, invoice.InvoiceNumber)
	}
	invoice.Vendor = *vendor

	itemRows, err := rawRows(ctx, r.db, &models.InvoiceItem{}, "invoice_id = ?", invoice.ID)
	if err != nil {
		return nil, classify(err, "load invoice items")
	}
	invoice.Items = make([]models.InvoiceItem, 0, len(itemRows))
	for _, itemRow := range itemRows {
		item, err := models.InvoiceItemFromMap(itemRow)
		if err != nil {
			return nil, withInvoiceNumber(err, invoice.InvoiceNumber)
		}
		invoice.Items = append(invoice.Items, *item)
	}
	return models.NewInvoiceData(invoice), nil
}

func missingReference(err error, entity string, invoice *models.Invoice) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.Integrity("invoice references a missing "+entity, err).
			WithContext("invoice_number", invoice.InvoiceNumber)
	}
	return classify(err, "load invoice "+entity)
}

func withInvoiceNumber(err error, number string) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		appErr.WithContext("invoice_number", number)
	}
	return err
}

func (r *InvoiceRepository) summaries(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("invoices").
		Select("invoices.id, invoices.invoice_number, customers.name AS customer_name, invoices.invoice_date, invoices.total_amount").
		Joins("JOIN customers ON customers.id = invoices.customer_id").
		Order("invoices.invoice_date DESC").
		Order("invoices.id DESC")
}

// ListAll returns invoice summaries newest first, optionally for one customer.
func (r *InvoiceRepository) ListAll(ctx context.Context, customerID *uint) ([]models.InvoiceSummary, error) {
	q := r.summaries(ctx)
	if customerID != nil {
		q = q.Where("invoices.customer_id = ?", *customerID)
	}

	rows := []models.InvoiceSummary{}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, classify(err, "list invoices")
	}
	return rows, nil
}

func (r *InvoiceRepository) GetRecent(ctx context.Context, limit int) ([]models.InvoiceSummary, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	rows := []models.InvoiceSummary{}
	if err := r.summaries(ctx).Limit(limit).Scan(&rows).Error; err != nil {
		return nil, classify(err, "list recent invoices")
	}
	return rows, nil
}

func (r *InvoiceRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).Count(&n).Error
	return n, classify(err, "count invoices")
}
