package metadata

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"invoice-import-backend/internal/apperrors"
	"invoice-import-backend/internal/validators"
)

// PaymentTermDays is the fixed payment window used for due dates.
const PaymentTermDays = 30

// DataFilePrefix is the conventional prefix of invoice data file names,
// e.g. invoice-data-3-31.txt.
const DataFilePrefix = "invoice-data-"

// Metadata is what an invoice data file name tells us about the invoice.
type Metadata struct {
	InvoiceNumber string
	InvoiceDate   validators.Date
	DueDate       validators.Date
}

// Derive turns an M-D token and a year into invoice metadata.
func Derive(token string, year int) (Metadata, error) {
	parts := strings.Split(strings.TrimSpace(token), "-")
	if len(parts) != 2 {
		return Metadata{}, badToken(token, nil)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return Metadata{}, badToken(token, err)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return Metadata{}, badToken(token, err)
	}

	invoiceDate, err := validators.NewDate(year, month, day)
	if err != nil {
		return Metadata{}, badToken(token, err)
	}

	return Metadata{
		InvoiceNumber: fmt.Sprintf("%04d.%02d.%02d", year, month, day),
		InvoiceDate:   invoiceDate,
		DueDate:       invoiceDate.AddDays(PaymentTermDays),
	}, nil
}

// FromFilename derives metadata from a data file path. The base name, without
// extension, must be invoice-data-M-D or a bare M-D.
func FromFilename(path string, year int) (Metadata, error) {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	token := strings.TrimPrefix(base, DataFilePrefix)

	md, err := Derive(token, year)
	if err != nil {
		return Metadata{}, apperrors.Metadata("invalid data file name, expected invoice-data-M-D.txt", err).
			WithContext("file", path)
	}
	return md, nil
}

func badToken(token string, cause error) *apperrors.Error {
	return apperrors.Metadata("invalid date token, expected M-D", cause).WithContext("token", token)
}

// CurrentYear is the implicit year for tokens that carry only month and day.
func CurrentYear(now func() time.Time) int {
	if now == nil {
		now = time.Now
	}
	return now().Year()
}
