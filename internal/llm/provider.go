package llm

import (
	"context"
)

// Provider streams a loop generation from an LLM.
// Deltas are handed to the callback as they arrive so the caller can write
// them out while the model is still producing.
type Provider interface {
	// GenerateStream runs the generation, calling callback for each text delta.
	// A callback error aborts the stream and is returned.
	GenerateStream(ctx context.Context, request *GenerationRequest, callback StreamCallback) (*GenerationResponse, error)

	// Name returns the provider name (e.g., "openai", "gemini")
	Name() string
}

// GenerationRequest contains all parameters needed for generation
type GenerationRequest struct {
	Model         string
	ReasoningMode string
	SystemPrompt  string
	Prompt        string
}

// GenerationResponse contains the result from the LLM
type GenerationResponse struct {
	Text  string `json:"text"`
	Usage Usage  `json:"usage"`
}

// Usage is the token accounting of one generation
type Usage struct {
	InputTokens     int64   `json:"input_tokens"`
	OutputTokens    int64   `json:"output_tokens"`
	ReasoningTokens int64   `json:"reasoning_tokens"`
	TotalTokens     int64   `json:"total_tokens"`
	CostUSD         float64 `json:"cost_usd"`
}

// StreamCallback is called for each text delta
type StreamCallback func(delta string) error
