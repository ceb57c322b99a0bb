package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"invoice-import-backend/internal/apperrors"
	"invoice-import-backend/internal/validators"
)

// Field names reported in LineItemError.
const (
	FieldDate        = "date"
	FieldQuantity    = "quantity"
	FieldRate        = "rate"
	FieldDescription = "description"
	FieldColumns     = "columns"
)

const (
	fieldCount     = 4
	lineTrimCutset = " \r\f\v"
	byteOrderMark  = "\ufeff"
)

// ErrNoLineItems is returned when a file holds no data rows after the
// optional header has been dropped.
var ErrNoLineItems = errors.New("no invoice line items found")

// LineItem is one validated row of billable work.
type LineItem struct {
	Line             int
	Date             validators.Date
	Quantity         decimal.Decimal
	Rate             decimal.Decimal
	Amount           decimal.Decimal
	Description      string
	EmptyDescription bool
}

// LineItemError identifies the row and field that made a data file invalid.
type LineItemError struct {
	File  string
	Line  int
	Field string
	Value string
	Err   error
}

func (e *LineItemError) Error() string {
	var b strings.Builder
	if e.File != "" {
		fmt.Fprintf(&b, "%s: ", e.File)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, "invalid %s %q: ", e.Field, e.Value)
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *LineItemError) Unwrap() error {
	return e.Err
}

func (e *LineItemError) ErrorKind() apperrors.Kind {
	return apperrors.KindLineItem
}

// IsHeader reports whether a line is a column header: its first field is not
// a valid date.
func IsHeader(line string) bool {
	first := strings.SplitN(strings.TrimSpace(line), "\t", 2)[0]
	return !validators.IsDate(first)
}

// ParseFile reads and parses a tab-separated invoice data file.
func ParseFile(path string) ([]LineItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LineItemError{File: path, Err: fmt.Errorf("open data file: %w", err)}
	}
	defer f.Close()

	items, err := Parse(f)
	if err != nil {
		var lineErr *LineItemError
		if errors.As(err, &lineErr) {
			lineErr.File = path
		}
		return nil, err
	}
	return items, nil
}

// Parse reads tab-separated rows of date, quantity, rate and description.
// A single malformed row rejects the whole input.
func Parse(r io.Reader) ([]LineItem, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var items []LineItem
	lineNum := 0
	sawFirst := false

	for scanner.Scan() {
		lineNum++
		raw := scanner.Text()
		if lineNum == 1 {
			raw = strings.TrimPrefix(raw, byteOrderMark)
		}
		if strings.TrimSpace(raw) == "" {
			continue
		}
		// Tabs are kept so a trailing empty description still counts as a field.
		line := strings.Trim(raw, lineTrimCutset)
		if !sawFirst {
			sawFirst = true
			if IsHeader(line) {
				continue
			}
		}

		item, err := parseLine(lineNum, line)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, &LineItemError{Line: lineNum, Err: fmt.Errorf("read data: %w", err)}
	}

	if len(items) == 0 {
		return nil, &LineItemError{Err: ErrNoLineItems}
	}
	return items, nil
}

func parseLine(lineNum int, line string) (LineItem, error) {
	fields := strings.Split(line, "\t")
	// Stray trailing tabs past the description are ignored.
	for len(fields) > fieldCount && strings.TrimSpace(fields[len(fields)-1]) == "" {
		fields = fields[:len(fields)-1]
	}
	if len(fields) != fieldCount {
		return LineItem{}, &LineItemError{
			Line:  lineNum,
			Field: FieldColumns,
			Value: fmt.Sprint(len(fields)),
			Err:   fmt.Errorf("expected %d tab-separated fields: date, quantity, rate, description", fieldCount),
		}
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	date, err := validators.ParseDate(fields[0])
	if err != nil {
		return LineItem{}, &LineItemError{Line: lineNum, Field: FieldDate, Value: fields[0], Err: err}
	}
	quantity, err := validators.ParseQuantity(fields[1])
	if err != nil {
		return LineItem{}, &LineItemError{Line: lineNum, Field: FieldQuantity, Value: fields[1], Err: err}
	}
	rate, err := validators.ParseAmount(fields[2])
	if err != nil {
		return LineItem{}, &LineItemError{Line: lineNum, Field: FieldRate, Value: fields[2], Err: err}
	}
	description := fields[3]

	return LineItem{
		Line:             lineNum,
		Date:             date,
		Quantity:         quantity,
		Rate:             rate,
		Amount:           LineAmount(quantity, rate),
		Description:      description,
		EmptyDescription: description == "",
	}, nil
}

// LineAmount is quantity × rate rounded to cents.
func LineAmount(quantity, rate decimal.Decimal) decimal.Decimal {
	return quantity.Mul(rate).Round(2)
}

// Total sums the line amounts.
func Total(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Amount)
	}
	return total.Round(2)
}
