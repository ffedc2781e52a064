package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Pavangowda-dev/StockIQ/salesdata"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	weeklyPeriod = 7.0
	yearlyPeriod = 365.25
	dailyPeriod  = 1.0

	weeklyOrder = 3
	yearlyOrder = 10
	dailyOrder  = 4

	// unpenalizedRidge keeps the normal equations well-posed for columns
	// that carry no prior.
	unpenalizedRidge = 1e-9
)

var errNotFitted = errors.New("model is not fitted")

// seasonality is one Fourier component of the model.
type seasonality struct {
	period float64
	order  int
}

// SeasonalModel is a decomposable trend-plus-seasonality model:
//
//	y(t) = g(t) * (1 + s(t) + h(t))   multiplicative mode
//	y(t) = g(t) + s(t) + h(t)         additive mode
//
// g is a piecewise-linear trend whose slope may change at evenly spaced
// changepoints, s is a sum of Fourier series and h is a holiday effect.
// Coefficients are MAP estimates under Gaussian priors, i.e. ridge
// regression, so fitting is deterministic.
type SeasonalModel struct {
	cfg ModelConfig

	fitted       bool
	start        time.Time
	span         float64
	yScale       float64
	lastObserved time.Time
	n            int

	changepoints []float64
	trendCoef    []float64

	seasonalities []seasonality
	seasonalCoef  []float64

	sigma float64
}

// NewSeasonalModel is the default ModelFactory.
func NewSeasonalModel(cfg ModelConfig) Model {
	if cfg.Holidays == nil {
		cfg.Holidays = USHolidays{}
	}
	return &SeasonalModel{cfg: cfg}
}

func (m *SeasonalModel) Fit(series []salesdata.Observation) error {
	if len(series) < MinObservations {
		return fmt.Errorf("need at least %d observations, got %d", MinObservations, len(series))
	}

	m.n = len(series)
	m.start = series[0].Date
	m.lastObserved = series[len(series)-1].Date
	m.span = days(m.lastObserved.Sub(m.start))
	if m.span <= 0 {
		return fmt.Errorf("observations must span more than one date")
	}

	y := make([]float64, m.n)
	m.yScale = 0
	for i, o := range series {
		y[i] = o.Quantity
		m.yScale = math.Max(m.yScale, math.Abs(o.Quantity))
	}
	if m.yScale == 0 {
		m.yScale = 1
	}
	for i := range y {
		y[i] /= m.yScale
	}

	scaled := make([]float64, m.n)
	for i, o := range series {
		scaled[i] = m.scaledTime(o.Date)
	}

	if err := m.fitTrend(scaled, y); err != nil {
		return err
	}

	trend := make([]float64, m.n)
	for i, s := range scaled {
		trend[i] = m.trendAt(s)
	}

	m.seasonalities = m.activeSeasonalities(series)
	if err := m.fitSeasonal(series, trend, y); err != nil {
		return err
	}

	residuals := make([]float64, m.n)
	for i, o := range series {
		residuals[i] = (y[i] - m.combine(trend[i], m.seasonalAt(o.Date))) * m.yScale
	}
	m.sigma = stat.StdDev(residuals, nil)
	if math.IsNaN(m.sigma) {
		m.sigma = 0
	}

	m.fitted = true
	return nil
}

func (m *SeasonalModel) Predict(dates []time.Time) ([]Prediction, error) {
	if !m.fitted {
		return nil, errNotFitted
	}

	width := m.cfg.IntervalWidth
	if width <= 0 || width >= 1 {
		width = 0.8
	}
	z := distuv.UnitNormal.Quantile(0.5 + width/2)

	out := make([]Prediction, 0, len(dates))
	for _, d := range dates {
		yhat := m.combine(m.trendAt(m.scaledTime(d)), m.seasonalAt(d)) * m.yScale

		ahead := math.Max(0, days(d.Sub(m.lastObserved)))
		half := z * m.sigma * math.Sqrt(1+ahead/float64(m.n))

		out = append(out, Prediction{Date: d, Yhat: yhat, Lower: yhat - half, Upper: yhat + half})
	}
	return out, nil
}

func (m *SeasonalModel) combine(trend, seasonal float64) float64 {
	if m.cfg.SeasonalityMode == SeasonalityAdditive {
		return trend + seasonal
	}
	return trend * (1 + seasonal)
}

func (m *SeasonalModel) scaledTime(d time.Time) float64 {
	return days(d.Sub(m.start)) / m.span
}

// fitTrend places changepoints over the first ChangepointRange of the
// history and solves for base intercept, base slope and slope deltas.
func (m *SeasonalModel) fitTrend(s, y []float64) error {
	histSize := int(math.Floor(float64(len(s)) * m.cfg.ChangepointRange))
	nCP := m.cfg.MaxChangepoints
	if histSize-1 < nCP {
		nCP = histSize - 1
	}

	m.changepoints = m.changepoints[:0]
	if nCP > 0 {
		for k := 1; k <= nCP; k++ {
			idx := int(math.Round(float64(k) * float64(histSize-1) / float64(nCP)))
			m.changepoints = append(m.changepoints, s[idx])
		}
	}

	cols := 2 + len(m.changepoints)
	X := mat.NewDense(len(s), cols, nil)
	for i, si := range s {
		X.Set(i, 0, 1)
		X.Set(i, 1, si)
		for j, c := range m.changepoints {
			X.Set(i, 2+j, math.Max(0, si-c))
		}
	}

	penalties := make([]float64, cols)
	penalties[0], penalties[1] = unpenalizedRidge, unpenalizedRidge
	for j := range m.changepoints {
		penalties[2+j] = 1 / m.cfg.ChangepointPriorScale
	}

	coef, err := ridge(X, y, penalties)
	if err != nil {
		return fmt.Errorf("fit trend: %w", err)
	}
	m.trendCoef = coef
	return nil
}

func (m *SeasonalModel) trendAt(s float64) float64 {
	v := m.trendCoef[0] + m.trendCoef[1]*s
	for j, c := range m.changepoints {
		v += m.trendCoef[2+j] * math.Max(0, s-c)
	}
	return v
}

// activeSeasonalities keeps the enabled components the history can
// identify: a component needs at least one full period of data, and the
// daily component also needs observations off the midnight boundary.
func (m *SeasonalModel) activeSeasonalities(series []salesdata.Observation) []seasonality {
	var out []seasonality
	if m.cfg.WeeklySeasonality && m.span >= weeklyPeriod {
		out = append(out, seasonality{period: weeklyPeriod, order: weeklyOrder})
	}
	if m.cfg.YearlySeasonality && m.span >= yearlyPeriod {
		out = append(out, seasonality{period: yearlyPeriod, order: yearlyOrder})
	}
	if m.cfg.DailySeasonality && hasIntraday(series) {
		out = append(out, seasonality{period: dailyPeriod, order: dailyOrder})
	}
	return out
}

func hasIntraday(series []salesdata.Observation) bool {
	for _, o := range series {
		if !o.Date.Equal(civilDate(o.Date)) {
			return true
		}
	}
	return false
}

// features returns the Fourier terms for d followed by the holiday flag.
func (m *SeasonalModel) features(d time.Time) []float64 {
	t := days(d.Sub(time.Unix(0, 0).UTC()))
	f := make([]float64, 0, m.featureCount())
	for _, s := range m.seasonalities {
		for k := 1; k <= s.order; k++ {
			arg := 2 * math.Pi * float64(k) * t / s.period
			f = append(f, math.Sin(arg), math.Cos(arg))
		}
	}
	if m.cfg.Holidays.IsHoliday(d) {
		f = append(f, 1)
	} else {
		f = append(f, 0)
	}
	return f
}

func (m *SeasonalModel) featureCount() int {
	n := 1
	for _, s := range m.seasonalities {
		n += 2 * s.order
	}
	return n
}

// fitSeasonal regresses what the trend leaves unexplained on the seasonal
// features. In multiplicative mode each feature is scaled by the trend so
// that y - g = g * F * beta.
func (m *SeasonalModel) fitSeasonal(series []salesdata.Observation, trend, y []float64) error {
	cols := m.featureCount()
	X := mat.NewDense(len(series), cols, nil)
	target := make([]float64, len(series))
	for i, o := range series {
		scale := 1.0
		if m.cfg.SeasonalityMode != SeasonalityAdditive {
			scale = trend[i]
		}
		for j, v := range m.features(o.Date) {
			X.Set(i, j, v*scale)
		}
		target[i] = y[i] - trend[i]
	}

	penalties := make([]float64, cols)
	for j := 0; j < cols-1; j++ {
		penalties[j] = 1 / m.cfg.SeasonalityPriorScale
	}
	penalties[cols-1] = 1 / m.cfg.HolidaysPriorScale

	coef, err := ridge(X, target, penalties)
	if err != nil {
		return fmt.Errorf("fit seasonality: %w", err)
	}
	m.seasonalCoef = coef
	return nil
}

func (m *SeasonalModel) seasonalAt(d time.Time) float64 {
	var v float64
	for j, f := range m.features(d) {
		v += m.seasonalCoef[j] * f
	}
	return v
}

// ridge solves (XᵀX + diag(penalties)) β = Xᵀy.
func ridge(X *mat.Dense, y []float64, penalties []float64) ([]float64, error) {
	_, cols := X.Dims()

	var A mat.Dense
	A.Mul(X.T(), X)
	for j := 0; j < cols; j++ {
		A.Set(j, j, A.At(j, j)+penalties[j])
	}

	var b mat.VecDense
	b.MulVec(X.T(), mat.NewVecDense(len(y), y))

	var beta mat.VecDense
	if err := beta.SolveVec(&A, &b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, err
		}
	}

	out := make([]float64, cols)
	for j := range out {
		out[j] = beta.AtVec(j)
		if math.IsNaN(out[j]) || math.IsInf(out[j], 0) {
			return nil, fmt.Errorf("singular system")
		}
	}
	return out, nil
}

func days(d time.Duration) float64 {
	return d.Hours() / 24
}
