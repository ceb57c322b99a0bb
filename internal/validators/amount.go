package validators

import (
	"strings"

	"github.com/shopspring/decimal"

	"invoice-import-backend/internal/apperrors"
)

const currencySymbol = "$"

// ParseAmount normalizes a monetary string such as " $1,250.5 " to a decimal
// with exactly two fractional digits.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, currencySymbol)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return decimal.Zero, invalidAmount(raw, "amount is empty")
	}
	if strings.HasPrefix(cleaned, "-") {
		return decimal.Zero, invalidAmount(raw, "amount cannot be negative")
	}
	if !isPlainDecimal(cleaned) {
		return decimal.Zero, invalidAmount(raw, "amount is not a number")
	}

	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, apperrors.Validation("invalid amount", err).WithContext("value", raw)
	}
	if !value.Equal(value.Round(2)) {
		return decimal.Zero, invalidAmount(raw, "amount has more than two decimal places")
	}
	return value.Round(2), nil
}

// ParseQuantity parses a billable quantity. Fractional hours are allowed;
// zero and negative quantities are not.
func ParseQuantity(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" || !isPlainDecimal(strings.TrimPrefix(cleaned, "-")) {
		return decimal.Zero, apperrors.Validation("quantity is not a number", nil).WithContext("value", raw)
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, apperrors.Validation("invalid quantity", err).WithContext("value", raw)
	}
	if !value.IsPositive() {
		return decimal.Zero, apperrors.Validation("quantity must be positive", nil).WithContext("value", raw)
	}
	return value, nil
}

// FormatMoney renders a two-decimal amount the way the rendered invoice shows it.
func FormatMoney(d decimal.Decimal) string {
	return currencySymbol + d.StringFixed(2)
}

// isPlainDecimal accepts digits with at most one decimal point. It rules out
// exponents, hex and the other forms decimal.NewFromString tolerates.
func isPlainDecimal(s string) bool {
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

func invalidAmount(raw, reason string) *apperrors.Error {
	return apperrors.Validation(reason, nil).WithContext("value", raw)
}
