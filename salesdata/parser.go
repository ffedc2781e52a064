package salesdata

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmptyFile = errors.New("CSV file is empty")
	// ErrMalformed wraps errors from the CSV reader itself, such as a stray
	// quote.
	ErrMalformed = errors.New("malformed CSV")
)

// MissingColumnsError reports a header without the required columns.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("CSV must contain columns: %s", strings.Join(RequiredColumns, ", "))
}

// RowError reports a data row that failed type coercion. Row is the 1-based
// line number in the file, header included.
type RowError struct {
	Row    int
	Column string
	Value  string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: invalid %s %q: %s", e.Row, e.Column, e.Value, e.Reason)
}

var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// Parse reads a sales CSV. Columns may appear in any order and extra
// columns are ignored.
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformed, err)
	}

	idx := columnIndex(header)
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}

	table := &Table{}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformed, line, err)
		}
		if isBlank(row) {
			continue
		}

		rec, err := parseRecord(row, idx, line)
		if err != nil {
			return nil, err
		}
		table.Records = append(table.Records, rec)
	}

	if len(table.Records) == 0 {
		return nil, ErrEmptyFile
	}
	return table, nil
}

// ParseBytes is Parse over an in-memory blob.
func ParseBytes(b []byte) (*Table, error) {
	return Parse(bytes.NewReader(b))
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return idx
}

func isBlank(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func field(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func parseRecord(row []string, idx map[string]int, line int) (Record, error) {
	rawDate := field(row, idx["date"])
	rawProduct := field(row, idx["product_id"])
	rawQty := field(row, idx["quantity"])

	if rawProduct == "" {
		return Record{}, &RowError{Row: line, Column: "product_id", Value: rawProduct, Reason: "must not be empty"}
	}

	date, err := parseDate(rawDate)
	if err != nil {
		return Record{}, &RowError{Row: line, Column: "date", Value: rawDate, Reason: "not a calendar date"}
	}

	qty, err := parseQuantity(rawQty)
	if err != nil {
		return Record{}, &RowError{Row: line, Column: "quantity", Value: rawQty, Reason: err.Error()}
	}

	return Record{Date: date, ProductID: rawProduct, Quantity: qty}, nil
}

// parseDate truncates to the calendar day in UTC.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("missing date")
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseQuantity(s string) (int, error) {
	if s == "" {
		return 0, errors.New("missing value")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, errors.New("not an integer")
		}
		if math.Abs(f) >= math.MaxInt64 {
			return 0, errors.New("out of range")
		}
		n = int(f)
	}
	if n < 0 {
		return 0, errors.New("must not be negative")
	}
	return n, nil
}
