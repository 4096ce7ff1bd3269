package llm

import (
	"testing"

	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIProvider(t *testing.T) {
	provider := NewOpenAIProvider("test-api-key")
	require.NotNil(t, provider)
	assert.Equal(t, "openai", provider.Name())
	assert.NotNil(t, provider.client)
}

func TestOpenAIProvider_BuildRequestParams(t *testing.T) {
	provider := NewOpenAIProvider("test-key")

	t.Run("prompt and instructions", func(t *testing.T) {
		params := provider.buildRequestParams(&GenerationRequest{
			Model:        "gpt-4o",
			SystemPrompt: "write loops",
			Prompt:       "compose 3 loops",
		})
		assert.Equal(t, "gpt-4o", params.Model)
		assert.Equal(t, "compose 3 loops", params.Input.OfString.Value)
		assert.Equal(t, "write loops", params.Instructions.Value)
		assert.Empty(t, params.Reasoning.Effort)
	})

	t.Run("no system prompt leaves instructions unset", func(t *testing.T) {
		params := provider.buildRequestParams(&GenerationRequest{Model: "gpt-4o", Prompt: "p"})
		assert.False(t, params.Instructions.Valid())
	})

	t.Run("reasoning model gets an effort", func(t *testing.T) {
		params := provider.buildRequestParams(&GenerationRequest{
			Model:         "gpt-5-mini",
			ReasoningMode: "medium",
			Prompt:        "p",
		})
		assert.Equal(t, responses.ReasoningEffortMedium, params.Reasoning.Effort)
	})

	t.Run("reasoning model without a mode defaults to low", func(t *testing.T) {
		for _, model := range []string{"gpt-5", "gpt-5-mini", "gpt-5-nano"} {
			params := provider.buildRequestParams(&GenerationRequest{Model: model, Prompt: "p"})
			assert.Equal(t, responses.ReasoningEffortLow, params.Reasoning.Effort, model)
			assert.NotEqual(t, shared.ReasoningEffort("none"), params.Reasoning.Effort, model)
		}
	})
}

func TestReasoningEffort(t *testing.T) {
	tests := []struct {
		mode string
		want shared.ReasoningEffort
	}{
		{"low", responses.ReasoningEffortLow},
		{"MEDIUM", responses.ReasoningEffortMedium},
		{"high", responses.ReasoningEffortHigh},
		{"minimal", shared.ReasoningEffort("minimal")},
		{"", responses.ReasoningEffortLow},
		{"none", responses.ReasoningEffortLow},
		{"bogus", responses.ReasoningEffortLow},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			assert.Equal(t, tt.want, reasoningEffort(tt.mode))
		})
	}
}

func TestUsageFromOpenAI(t *testing.T) {
	usage := usageFromOpenAI("gpt-4o", responses.ResponseUsage{
		InputTokens:  1000,
		OutputTokens: 2000,
		TotalTokens:  3000,
	})
	assert.Equal(t, int64(1000), usage.InputTokens)
	assert.Equal(t, int64(2000), usage.OutputTokens)
	assert.Equal(t, int64(3000), usage.TotalTokens)
	assert.InDelta(t, 0.035, usage.CostUSD, 1e-9)
}
