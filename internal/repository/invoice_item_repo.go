package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"invoice-import-backend/internal/apperrors"
	"invoice-import-backend/internal/models"
)

type InvoiceItemRepository struct {
	db *gorm.DB
}

func NewInvoiceItemRepository(db *gorm.DB) *InvoiceItemRepository {
	return &InvoiceItemRepository{db: db}
}

func (r *InvoiceItemRepository) WithTx(tx *gorm.DB) *InvoiceItemRepository {
	return &InvoiceItemRepository{db: tx}
}

// Add inserts one line; it fails with a constraint error when the invoice
// does not exist.
func (r *InvoiceItemRepository) Add(ctx context.Context, item *models.InvoiceItem) error {
	err := r.db.WithContext(ctx).Create(item).Error
	if err == nil {
		return nil
	}
	err = classify(err, "add invoice item")
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		appErr.WithContext("invoice_id", item.InvoiceID)
	}
	return err
}

func (r *InvoiceItemRepository) ListByInvoice(ctx context.Context, invoiceID uint) ([]models.InvoiceItem, error) {
	items := []models.InvoiceItem{}
	err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, classify(err, "list invoice items")
	}
	return items, nil
}
