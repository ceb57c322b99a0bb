package validators

import (
	"strconv"
	"strings"
	"time"

	"invoice-import-backend/internal/apperrors"
)

const (
	StorageLayout = "2006-01-02"
	DisplayLayout = "01/02/2006"
)

// Date is a validated calendar date at UTC midnight.
type Date struct {
	t time.Time
}

// NewDate builds a Date from year, month and day, rejecting combinations the
// calendar does not have (e.g. February 30) instead of normalizing them.
func NewDate(year, month, day int) (Date, error) {
	if month < 1 || month > 12 {
		return Date{}, apperrors.Validation("month out of range", nil).WithContext("month", month)
	}
	if day < 1 || day > DaysIn(year, time.Month(month)) {
		return Date{}, apperrors.Validation("day out of range", nil).
			WithContext("month", month).
			WithContext("day", day)
	}
	return Date{t: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}, nil
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts M/D/YYYY or MM/DD/YYYY. Mixed padding such as 07/4/2025
// is accepted for compatibility with existing data files.
func ParseDate(raw string) (Date, error) {
	s := strings.TrimSpace(raw)
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return Date{}, apperrors.Validation("date must be M/D/YYYY", nil).WithContext("value", raw)
	}
	month, okM := component(parts[0], 1, 2)
	day, okD := component(parts[1], 1, 2)
	year, okY := component(parts[2], 4, 4)
	if !okM || !okD || !okY {
		return Date{}, apperrors.Validation("date must be M/D/YYYY", nil).WithContext("value", raw)
	}
	d, err := NewDate(year, month, day)
	if err != nil {
		return Date{}, apperrors.Validation("invalid date", err).WithContext("value", raw)
	}
	return d, nil
}

// IsDate reports whether raw parses as a date.
func IsDate(raw string) bool {
	_, err := ParseDate(raw)
	return err == nil
}

func (d Date) Time() time.Time {
	return d.t
}

// Storage renders the date as YYYY-MM-DD.
func (d Date) Storage() string {
	return d.t.Format(StorageLayout)
}

// Display renders the date as MM/DD/YYYY.
func (d Date) Display() string {
	return d.t.Format(DisplayLayout)
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// AddDays returns the date n calendar days later.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// FormatDisplay renders t as MM/DD/YYYY.
func FormatDisplay(t time.Time) string {
	return t.UTC().Format(DisplayLayout)
}

// FormatStorage renders t as YYYY-MM-DD.
func FormatStorage(t time.Time) string {
	return t.UTC().Format(StorageLayout)
}

// DaysIn returns the number of days in month m of year.
func DaysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func component(s string, minLen, maxLen int) (int, bool) {
	if len(s) < minLen || len(s) > maxLen {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}
