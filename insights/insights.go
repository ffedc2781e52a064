// Package insights asks a language model for a short narrative over one
// product's forecast.
package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Pavangowda-dev/StockIQ/forecast"
	"github.com/Pavangowda-dev/StockIQ/salesdata"
)

var (
	// ErrDisabled is returned when no generator is configured.
	ErrDisabled = errors.New("insights are not configured")
	// ErrBadResponse is returned when the model reply holds no usable JSON.
	ErrBadResponse = errors.New("failed to parse AI response format")
)

// historyDays caps how much recent history goes into a prompt.
const historyDays = 90

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Input is everything the analyst knows about one product.
type Input struct {
	ProductID      string
	History        []salesdata.Observation
	Forecast       []forecast.Point
	Recommendation forecast.Recommendation
}

// Analysis is the model's reading of a forecast.
type Analysis struct {
	ProductID       string   `json:"product_id"`
	Summary         string   `json:"summary"`
	PositiveFactors []string `json:"positive_factors"`
	NegativeFactors []string `json:"negative_factors"`
}

// Analyst turns forecasts into Analysis values using a Generator.
type Analyst struct {
	gen Generator
	log *zap.Logger
}

// NewAnalyst returns an Analyst. A nil generator yields an analyst that
// always returns ErrDisabled.
func NewAnalyst(gen Generator, log *zap.Logger) *Analyst {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyst{gen: gen, log: log}
}

// Enabled reports whether a generator is configured.
func (a *Analyst) Enabled() bool {
	return a != nil && a.gen != nil
}

func (a *Analyst) Analyze(ctx context.Context, in Input) (*Analysis, error) {
	if !a.Enabled() {
		return nil, ErrDisabled
	}

	reply, err := a.gen.Generate(ctx, buildPrompt(in))
	if err != nil {
		return nil, fmt.Errorf("generate analysis for %s: %w", in.ProductID, err)
	}

	jsonStr := extractJSON(reply)
	if jsonStr == "" {
		a.log.Warn("no JSON in model reply", zap.String("product_id", in.ProductID), zap.String("reply", reply))
		return nil, ErrBadResponse
	}

	var out Analysis
	if err := json.Unmarshal([]byte(jsonStr), &out); err != nil {
		a.log.Warn("invalid JSON in model reply", zap.String("product_id", in.ProductID), zap.Error(err))
		return nil, ErrBadResponse
	}
	out.ProductID = in.ProductID
	if out.PositiveFactors == nil {
		out.PositiveFactors = []string{}
	}
	if out.NegativeFactors == nil {
		out.NegativeFactors = []string{}
	}
	return &out, nil
}

func buildPrompt(in Input) string {
	var history strings.Builder
	obs := in.History
	if len(obs) > historyDays {
		obs = obs[len(obs)-historyDays:]
	}
	for _, o := range obs {
		fmt.Fprintf(&history, "On %s, %.0f units were sold.\n", o.Date.Format(salesdata.DateLayout), o.Quantity)
	}
	if history.Len() == 0 {
		history.WriteString("No sales history available.\n")
	}

	var fc strings.Builder
	for _, p := range in.Forecast {
		fmt.Fprintf(&fc, "%s: %.2f (range %.2f to %.2f)\n", p.Date.Format(salesdata.DateLayout), p.PredictedQuantity, p.LowerBound, p.UpperBound)
	}

	jsonFormat := `{"summary":"string","positive_factors":["string",...],"negative_factors":["string",...]}`

	return fmt.Sprintf(`You are an expert retail inventory analyst. Review the demand forecast below and give a brief analysis.

Product ID: %s
Lead-time demand: %.2f units
Safety stock: %.2f units
Reorder point: %.2f units

Recent sales history:
%s
Daily forecast:
%s
Reply with a single minified JSON object with exactly this structure and no markdown or text around it:
%s
`, in.ProductID, in.Recommendation.LeadTimeDemand, in.Recommendation.SafetyStock, in.Recommendation.ReorderPoint,
		history.String(), fc.String(), jsonFormat)
}

// extractJSON returns the outermost {...} span of s, or "".
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return s[start : end+1]
}
