package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pavangowda-dev/StockIQ/forecast"
	"github.com/Pavangowda-dev/StockIQ/salesdata"
)

type fakeGenerator struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func sampleInput() Input {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return Input{
		ProductID: "A",
		History:   []salesdata.Observation{{Date: day, Quantity: 10}},
		Forecast: []forecast.Point{
			{Date: day.AddDate(0, 0, 1), PredictedQuantity: 11, LowerBound: 9, UpperBound: 13, ProductID: "A"},
		},
		Recommendation: forecast.Recommendation{ProductID: "A", LeadTimeDemand: 77, SafetyStock: 115.5, ReorderPoint: 192.5},
	}
}

func TestAnalyze(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n{\"summary\":\"Stable demand\",\"positive_factors\":[\"steady\"]}\n```"}
	a := NewAnalyst(gen, nil)

	out, err := a.Analyze(context.Background(), sampleInput())
	require.NoError(t, err)
	assert.Equal(t, "A", out.ProductID)
	assert.Equal(t, "Stable demand", out.Summary)
	assert.Equal(t, []string{"steady"}, out.PositiveFactors)
	assert.Empty(t, out.NegativeFactors)
	assert.NotNil(t, out.NegativeFactors)

	assert.Contains(t, gen.prompt, "Product ID: A")
	assert.Contains(t, gen.prompt, "Reorder point: 192.50")
	assert.Contains(t, gen.prompt, "On 2024-01-01, 10 units were sold.")
	assert.Contains(t, gen.prompt, "2024-01-02: 11.00 (range 9.00 to 13.00)")
}

func TestAnalyzeErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewAnalyst(nil, nil).Analyze(ctx, sampleInput())
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = NewAnalyst(&fakeGenerator{reply: "no json here"}, nil).Analyze(ctx, sampleInput())
	assert.ErrorIs(t, err, ErrBadResponse)

	_, err = NewAnalyst(&fakeGenerator{reply: "{not json}"}, nil).Analyze(ctx, sampleInput())
	assert.ErrorIs(t, err, ErrBadResponse)

	boom := errors.New("quota exceeded")
	_, err = NewAnalyst(&fakeGenerator{err: boom}, nil).Analyze(ctx, sampleInput())
	assert.ErrorIs(t, err, boom)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":{"b":1}}`, extractJSON(`text {"a":{"b":1}} more`))
	assert.Equal(t, "", extractJSON("} {"))
	assert.Equal(t, "", extractJSON("none"))
}

func TestResponseText(t *testing.T) {
	_, err := responseText(nil)
	assert.Error(t, err)

	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"summary":`), genai.Text(`"ok"}`)}},
	}}}
	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, text)
}

func TestNewGeminiWithoutKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "gemini-2.5-flash-lite")
	assert.ErrorIs(t, err, ErrDisabled)
}
