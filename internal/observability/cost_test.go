package observability

import (
	"testing"

	"github.com/openai/openai-go/responses"
	"github.com/stretchr/testify/assert"
)

func TestCalculateCost(t *testing.T) {
	tests := []struct {
		name      string
		model     string
		input     int64
		output    int64
		reasoning int64
		want      float64
	}{
		{name: "gpt-4o", model: "gpt-4o", input: 1000, output: 1000, want: 0.02},
		{name: "unknown model priced as gpt-4o", model: "mystery", input: 1000, output: 1000, want: 0.02},
		{name: "reasoning billed at input rate", model: "gpt-5.1", input: 1000, output: 1000, reasoning: 1000, want: 0.005},
		{name: "gemini flash", model: "gemini-2.5-flash", input: 2000, output: 0, want: 0.0006},
		{name: "no tokens", model: "gpt-4o", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CalculateCost(tt.model, tt.input, tt.output, tt.reasoning), 1e-9)
		})
	}
}

func TestCalculateOpenAICost(t *testing.T) {
	usage := responses.ResponseUsage{InputTokens: 1000, OutputTokens: 1000}
	assert.InDelta(t, 0.02, CalculateOpenAICost("gpt-4o", usage), 1e-9)
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.020000", FormatCost(0.02))
	assert.Equal(t, "$0.000000", FormatCost(0))
}
