// Package salesdata loads uploaded sales CSVs into typed tables.
package salesdata

import (
	"sort"
	"time"
)

// DateLayout is the calendar-date format used on the wire and in stored CSVs.
const DateLayout = "2006-01-02"

// RequiredColumns lists the columns every sales CSV must carry.
var RequiredColumns = []string{"date", "product_id", "quantity"}

// Record is one row of an uploaded sales table.
type Record struct {
	Date      time.Time
	ProductID string
	Quantity  int
}

// Table is an uploaded sales table in upload order.
type Table struct {
	Records []Record
}

// RecordJSON is the wire shape of a Record.
type RecordJSON struct {
	Date      string `json:"date"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// JSON returns the table as wire records.
func (t *Table) JSON() []RecordJSON {
	out := make([]RecordJSON, 0, len(t.Records))
	for _, r := range t.Records {
		out = append(out, RecordJSON{
			Date:      r.Date.Format(DateLayout),
			ProductID: r.ProductID,
			Quantity:  r.Quantity,
		})
	}
	return out
}

// MaxDate returns the latest date in the table, or the zero time for an
// empty table.
func (t *Table) MaxDate() time.Time {
	var max time.Time
	for _, r := range t.Records {
		if r.Date.After(max) {
			max = r.Date
		}
	}
	return max
}

// ProductIDs returns the distinct product ids in first-seen order.
func (t *Table) ProductIDs() []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, r := range t.Records {
		if !seen[r.ProductID] {
			seen[r.ProductID] = true
			ids = append(ids, r.ProductID)
		}
	}
	return ids
}

// Observation is one day of demand for a product.
type Observation struct {
	Date     time.Time
	Quantity float64
}

// Series returns the daily demand for productID sorted by date. Rows that
// share a date are summed.
func (t *Table) Series(productID string) []Observation {
	byDate := make(map[time.Time]float64)
	for _, r := range t.Records {
		if r.ProductID == productID {
			byDate[r.Date] += float64(r.Quantity)
		}
	}

	series := make([]Observation, 0, len(byDate))
	for d, q := range byDate {
		series = append(series, Observation{Date: d, Quantity: q})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series
}
