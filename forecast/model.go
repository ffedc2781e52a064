package forecast

import (
	"time"

	"github.com/Pavangowda-dev/StockIQ/salesdata"
)

const (
	SeasonalityMultiplicative = "multiplicative"
	SeasonalityAdditive       = "additive"
)

// Prediction is a model estimate for one date.
type Prediction struct {
	Date  time.Time
	Yhat  float64
	Lower float64
	Upper float64
}

// Model is a time-series model fitted on one product's daily demand.
// Implementations are used by one goroutine and discarded after the request.
type Model interface {
	Fit(series []salesdata.Observation) error
	Predict(dates []time.Time) ([]Prediction, error)
}

// ModelFactory builds a fresh, unfitted model.
type ModelFactory func(cfg ModelConfig) Model

// ModelConfig fixes the model's structure. None of it is learned.
type ModelConfig struct {
	WeeklySeasonality bool
	DailySeasonality  bool
	YearlySeasonality bool
	SeasonalityMode   string

	ChangepointPriorScale float64
	SeasonalityPriorScale float64
	HolidaysPriorScale    float64
	ChangepointRange      float64
	MaxChangepoints       int

	IntervalWidth float64
	Holidays      HolidayCalendar
}

// DefaultModelConfig is the configuration every product is fitted with.
// DailySeasonality only applies to series with timestamps off midnight.
// salesdata truncates uploaded dates to the day, so for uploaded tables it
// never takes effect and the daily term is left out of the fit.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		WeeklySeasonality:     true,
		DailySeasonality:      true,
		YearlySeasonality:     true,
		SeasonalityMode:       SeasonalityMultiplicative,
		ChangepointPriorScale: 0.05,
		SeasonalityPriorScale: 10,
		HolidaysPriorScale:    10,
		ChangepointRange:      0.8,
		MaxChangepoints:       25,
		IntervalWidth:         0.8,
		Holidays:              USHolidays{},
	}
}
