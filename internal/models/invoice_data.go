package models

import (
	"strings"

	"github.com/shopspring/decimal"

	"invoice-import-backend/internal/validators"
)

// InvoiceData is the fully assembled invoice used by rendering and by
// callers of a completed import. Dates are in display form (MM/DD/YYYY).
type InvoiceData struct {
	ID            uint            `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   string          `json:"invoice_date"`
	DueDate       string          `json:"due_date"`
	PaymentTerms  string          `json:"payment_terms"`
	Company       CompanyInfo     `json:"company"`
	Client        ClientInfo      `json:"client"`
	Items         []ItemData      `json:"items"`
	Total         decimal.Decimal `json:"total"`
}

type CompanyInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

type ItemData struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

var slugReplacer = strings.NewReplacer(" ", "-", ",", "", ".", "")

// BaseFilename is the name rendered artifacts are saved under,
// e.g. "acme-corp-invoice-04.01.2025".
func (d *InvoiceData) BaseFilename() string {
	slug := slugReplacer.Replace(strings.ToLower(strings.TrimSpace(d.Client.Name)))
	return slug + "-invoice-" + strings.ReplaceAll(d.InvoiceDate, "/", ".")
}

// NewInvoiceData assembles the aggregate from an invoice whose Customer,
// Vendor and Items are loaded. Items keep their slice order.
func NewInvoiceData(inv *Invoice) *InvoiceData {
	d := &InvoiceData{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   validators.FormatDisplay(inv.InvoiceDate),
		DueDate:       validators.FormatDisplay(inv.DueDate),
		PaymentTerms:  inv.PaymentTerms,
		Company: CompanyInfo{
			Name:    inv.Vendor.Name,
			Address: inv.Vendor.Address,
			Email:   inv.Vendor.Email,
			Phone:   inv.Vendor.Phone,
		},
		Client: ClientInfo{Name: inv.Customer.Name, Address: inv.Customer.Address},
		Items:  make([]ItemData, 0, len(inv.Items)),
		Total:  inv.TotalAmount,
	}
	if d.PaymentTerms == "" {
		d.PaymentTerms = DefaultPaymentTerms
	}
	for _, it := range inv.Items {
		d.Items = append(d.Items, ItemData{
			Date:        validators.FormatDisplay(it.WorkDate),
			Description: it.Description,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			Amount:      it.Amount,
		})
	}
	return d
}
