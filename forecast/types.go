// Package forecast turns a validated sales table into per-product demand
// forecasts and reorder-point recommendations.
package forecast

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Pavangowda-dev/StockIQ/salesdata"
)

const (
	DefaultHorizonDays       = 30
	DefaultLeadTimeDays      = 7
	DefaultSafetyStockFactor = 1.5

	// MinObservations is the number of distinct dates a product needs
	// before it is forecast.
	MinObservations = 2
)

// ErrNoForecastableData is returned when every product in the table was
// skipped.
var ErrNoForecastableData = errors.New("no product has enough data to forecast")

// Point is one forecast day for one product.
type Point struct {
	Date              time.Time
	PredictedQuantity float64
	LowerBound        float64
	UpperBound        float64
	ProductID         string
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date              string  `json:"date"`
		PredictedQuantity float64 `json:"predicted_quantity"`
		LowerBound        float64 `json:"lower_bound"`
		UpperBound        float64 `json:"upper_bound"`
		ProductID         string  `json:"product_id"`
	}{p.Date.Format(salesdata.DateLayout), p.PredictedQuantity, p.LowerBound, p.UpperBound, p.ProductID})
}

// Recommendation is the reorder advice for one product. All three values are
// rounded to two decimals and ReorderPoint == LeadTimeDemand + SafetyStock.
type Recommendation struct {
	ProductID      string  `json:"product_id"`
	LeadTimeDemand float64 `json:"lead_time_demand"`
	SafetyStock    float64 `json:"safety_stock"`
	ReorderPoint   float64 `json:"reorder_point"`
}

// Result is the output of one engine run.
type Result struct {
	Forecast  []Point
	Inventory []Recommendation
	Skipped   []string
}

// Warning describes skipped products, or returns "" when none were skipped.
func (r *Result) Warning() string {
	if r == nil || len(r.Skipped) == 0 {
		return ""
	}
	return fmt.Sprintf("Insufficient data to forecast products: %s", strings.Join(r.Skipped, ", "))
}

// ProductForecast returns the forecast points and recommendation for one
// product.
func (r *Result) ProductForecast(productID string) ([]Point, *Recommendation, bool) {
	var rec *Recommendation
	for i := range r.Inventory {
		if r.Inventory[i].ProductID == productID {
			rec = &r.Inventory[i]
			break
		}
	}
	if rec == nil {
		return nil, nil, false
	}
	points := make([]Point, 0, DefaultHorizonDays)
	for _, p := range r.Forecast {
		if p.ProductID == productID {
			points = append(points, p)
		}
	}
	return points, rec, true
}
