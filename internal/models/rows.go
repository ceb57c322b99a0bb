package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"invoice-import-backend/internal/apperrors"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// rowReader pulls typed values out of a raw row map and remembers the first
// missing or mistyped field.
type rowReader struct {
	row    map[string]interface{}
	entity string
	first  error
}

func (r *rowReader) err() error {
	return r.first
}

func (r *rowReader) fail(key, reason string, value interface{}) {
	if r.first != nil {
		return
	}
	r.first = apperrors.Integrity(fmt.Sprintf("%s: %s", r.entity, reason), nil).
		WithContext("field", key).
		WithContext("value", fmt.Sprintf("%v", value))
}

func (r *rowReader) lookup(key string) (interface{}, bool) {
	v, ok := r.row[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (r *rowReader) string(key string) string {
	v, ok := r.lookup(key)
	if !ok {
		r.fail(key, "missing required field", nil)
		return ""
	}
	s, ok := asString(v)
	if !ok {
		r.fail(key, "expected text", v)
		return ""
	}
	if strings.TrimSpace(s) == "" {
		r.fail(key, "required field is empty", v)
	}
	return s
}

func (r *rowReader) optionalString(key, fallback string) string {
	v, ok := r.lookup(key)
	if !ok {
		return fallback
	}
	s, ok := asString(v)
	if !ok {
		r.fail(key, "expected text", v)
		return fallback
	}
	return s
}

func (r *rowReader) uint(key string) uint {
	v, ok := r.lookup(key)
	if !ok {
		r.fail(key, "missing required field", nil)
		return 0
	}
	return r.toUint(key, v)
}

func (r *rowReader) optionalUint(key string) uint {
	v, ok := r.lookup(key)
	if !ok {
		return 0
	}
	return r.toUint(key, v)
}

func (r *rowReader) toUint(key string, v interface{}) uint {
	var f float64
	switch n := v.(type) {
	case uint:
		return n
	case uint32:
		return uint(n)
	case uint64:
		return uint(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			r.fail(key, "expected a whole number", v)
			return 0
		}
		f = parsed
	default:
		r.fail(key, "expected a whole number", v)
		return 0
	}
	if f < 0 || f != math.Trunc(f) {
		r.fail(key, "expected a non-negative whole number", v)
		return 0
	}
	return uint(f)
}

func (r *rowReader) decimal(key string) decimal.Decimal {
	v, ok := r.lookup(key)
	if !ok {
		r.fail(key, "missing required field", nil)
		return decimal.Zero
	}
	switch n := v.(type) {
	case decimal.Decimal:
		return n
	case float64:
		return decimal.NewFromFloat(n)
	case float32:
		return decimal.NewFromFloat32(n)
	case int:
		return decimal.NewFromInt(int64(n))
	case int64:
		return decimal.NewFromInt(n)
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err == nil {
			return d
		}
	case string, []byte:
		s, _ := asString(n)
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err == nil {
			return d
		}
	}
	r.fail(key, "expected a decimal number", v)
	return decimal.Zero
}

func (r *rowReader) date(key string) time.Time {
	v, ok := r.lookup(key)
	if !ok {
		r.fail(key, "missing required field", nil)
		return time.Time{}
	}
	t, ok := asTime(v)
	if !ok {
		r.fail(key, "expected a date", v)
	}
	return t
}

func (r *rowReader) optionalTime(key string) time.Time {
	v, ok := r.lookup(key)
	if !ok {
		return time.Time{}
	}
	t, ok := asTime(v)
	if !ok {
		r.fail(key, "expected a timestamp", v)
	}
	return t
}

func asString(v interface{}) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

func asTime(v interface{}) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t.UTC(), true
	}
	s, ok := asString(v)
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
