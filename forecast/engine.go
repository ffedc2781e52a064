package forecast

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Pavangowda-dev/StockIQ/salesdata"
	"go.uber.org/zap"
)

// Config controls the engine. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	HorizonDays       int
	LeadTimeDays      int
	SafetyStockFactor float64

	// AnchorLeadTimeToProduct starts the lead-time window after each
	// product's own last observation. By default the window starts after the
	// latest date in the whole table, so a product whose sales stopped early
	// has the start of its forecast excluded from lead-time demand.
	AnchorLeadTimeToProduct bool

	Model ModelConfig
}

func DefaultConfig() Config {
	return Config{
		HorizonDays:       DefaultHorizonDays,
		LeadTimeDays:      DefaultLeadTimeDays,
		SafetyStockFactor: DefaultSafetyStockFactor,
		Model:             DefaultModelConfig(),
	}
}

// Engine runs the per-product forecast loop. It holds no state between runs
// and is safe for concurrent use; each product gets its own model.
type Engine struct {
	cfg      Config
	newModel ModelFactory
	log      *zap.Logger
}

type Option func(*Engine)

// WithModelFactory replaces the default SeasonalModel.
func WithModelFactory(f ModelFactory) Option {
	return func(e *Engine) { e.newModel = f }
}

func NewEngine(cfg Config, log *zap.Logger, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{cfg: cfg, newModel: NewSeasonalModel, log: log}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run forecasts every product in table. Products with fewer than
// MinObservations distinct dates are listed in Result.Skipped. If no product
// can be forecast the error wraps ErrNoForecastableData.
func (e *Engine) Run(ctx context.Context, table *salesdata.Table) (*Result, error) {
	globalMax := table.MaxDate()
	result := &Result{
		Forecast:  make([]Point, 0),
		Inventory: make([]Recommendation, 0),
		Skipped:   make([]string, 0),
	}

	for _, productID := range table.ProductIDs() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		series := table.Series(productID)
		if len(series) < MinObservations {
			e.log.Debug("skipping product with insufficient data",
				zap.String("product_id", productID),
				zap.Int("observations", len(series)),
			)
			result.Skipped = append(result.Skipped, productID)
			continue
		}

		points, err := e.forecastProduct(productID, series)
		if err != nil {
			return nil, fmt.Errorf("forecast product %s: %w", productID, err)
		}

		anchor := globalMax
		if e.cfg.AnchorLeadTimeToProduct {
			anchor = series[len(series)-1].Date
		}
		demand := leadTimeDemand(points, anchor, e.cfg.LeadTimeDays)

		result.Forecast = append(result.Forecast, points...)
		result.Inventory = append(result.Inventory, recommend(productID, demand, e.cfg.SafetyStockFactor))
	}

	if len(result.Inventory) == 0 {
		return nil, fmt.Errorf("%w (skipped: %s)", ErrNoForecastableData, strings.Join(result.Skipped, ", "))
	}
	return result, nil
}

func (e *Engine) forecastProduct(productID string, series []salesdata.Observation) ([]Point, error) {
	model := e.newModel(e.cfg.Model)
	if err := model.Fit(series); err != nil {
		return nil, fmt.Errorf("fit: %w", err)
	}

	last := series[len(series)-1].Date
	dates := make([]time.Time, e.cfg.HorizonDays)
	for i := range dates {
		dates[i] = last.AddDate(0, 0, i+1)
	}

	preds, err := model.Predict(dates)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	points := make([]Point, 0, len(preds))
	for _, p := range preds {
		points = append(points, Point{
			Date:              p.Date,
			PredictedQuantity: p.Yhat,
			LowerBound:        p.Lower,
			UpperBound:        p.Upper,
			ProductID:         productID,
		})
	}
	return points, nil
}
