package forecast

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Pavangowda-dev/StockIQ/salesdata"
)

var (
	forecastHeader  = []string{"date", "predicted_quantity", "lower_bound", "upper_bound", "product_id"}
	inventoryHeader = []string{"product_id", "lead_time_demand", "safety_stock", "reorder_point"}
)

// EncodeForecastCSV writes forecast points as the forecasts/ artifact.
func EncodeForecastCSV(points []Point) ([]byte, error) {
	rows := make([][]string, 0, len(points)+1)
	rows = append(rows, forecastHeader)
	for _, p := range points {
		rows = append(rows, []string{
			p.Date.Format(salesdata.DateLayout),
			formatFloat(p.PredictedQuantity),
			formatFloat(p.LowerBound),
			formatFloat(p.UpperBound),
			p.ProductID,
		})
	}
	return writeCSV(rows)
}

// EncodeInventoryCSV writes recommendations as the inventory/ artifact.
func EncodeInventoryCSV(recs []Recommendation) ([]byte, error) {
	rows := make([][]string, 0, len(recs)+1)
	rows = append(rows, inventoryHeader)
	for _, r := range recs {
		rows = append(rows, []string{
			r.ProductID,
			fixed2(r.LeadTimeDemand),
			fixed2(r.SafetyStock),
			fixed2(r.ReorderPoint),
		})
	}
	return writeCSV(rows)
}

func writeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fixed2 renders an already rounded quantity with two decimals. It goes
// through the shortest decimal form so a sum like 0.43000000000000005 prints
// as 0.43.
func fixed2(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
