package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceItem is one billed line. Amount is quantity × rate rounded to cents
// and is stored alongside its inputs for display and audit.
type InvoiceItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	InvoiceID   uint            `gorm:"not null;index" json:"invoice_id"`
	WorkDate    time.Time       `gorm:"type:date;not null" json:"work_date"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"quantity"`
	Rate        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"rate"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
}

func (InvoiceItem) TableName() string {
	return "invoice_items"
}

func InvoiceItemFromMap(row map[string]interface{}) (*InvoiceItem, error) {
	r := rowReader{row: row, entity: "invoice item"}
	item := &InvoiceItem{
		ID:          r.optionalUint("id"),
		InvoiceID:   r.uint("invoice_id"),
		WorkDate:    r.date("work_date"),
		Description: r.optionalString("description", ""),
		Quantity:    r.decimal("quantity"),
		Rate:        r.decimal("rate"),
		Amount:      r.decimal("amount"),
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return item, nil
}
