package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPaymentTerms is shown on invoices whose client profile names none.
const DefaultPaymentTerms = "Net 30 days"

type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"size:20;not null;uniqueIndex" json:"invoice_number"`
	CustomerID    uint            `gorm:"not null;index" json:"customer_id"`
	Customer      Customer        `gorm:"foreignKey:CustomerID" json:"-"`
	VendorID      uint            `gorm:"not null" json:"vendor_id"`
	Vendor        Vendor          `gorm:"foreignKey:VendorID" json:"-"`
	InvoiceDate   time.Time       `gorm:"type:date;not null;index" json:"invoice_date"`
	DueDate       time.Time       `gorm:"type:date;not null" json:"due_date"`
	PaymentTerms  string          `gorm:"size:255;not null" json:"payment_terms"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []InvoiceItem   `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceSummary is one row of an invoice listing.
type InvoiceSummary struct {
	ID            uint            `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerName  string          `json:"customer_name"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// InvoiceFromMap builds an Invoice from a raw row, e.g. a scanned map or decoded JSON.
func InvoiceFromMap(row map[string]interface{}) (*Invoice, error) {
	r := rowReader{row: row, entity: "invoice"}
	inv := &Invoice{
		ID:            r.uint("id"),
		InvoiceNumber: r.string("invoice_number"),
		CustomerID:    r.uint("customer_id"),
		VendorID:      r.uint("vendor_id"),
		InvoiceDate:   r.date("invoice_date"),
		DueDate:       r.date("due_date"),
		PaymentTerms:  r.optionalString("payment_terms", DefaultPaymentTerms),
		TotalAmount:   r.decimal("total_amount"),
		CreatedAt:     r.optionalTime("created_at"),
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return inv, nil
}
