package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/magda-loop-bridge/internal/observability"
	"github.com/getsentry/sentry-go"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const (
	providerNameOpenAI = "openai"

	reasoningMinimal = "minimal"
	reasoningLow     = "low"
	reasoningMedium  = "medium"
	reasoningHigh    = "high"

	maxLogEventCountOpenAI = 5
)

// modelsWithReasoning accept a reasoning effort; others reject the parameter
var modelsWithReasoning = map[string]bool{
	"gpt-5":        true,
	"gpt-5-mini":   true,
	"gpt-5-nano":   true,
	"gpt-5.1":      true,
	"gpt-5.1-mini": true,
	"gpt-5.2":      true,
	"gpt-5.2-mini": true,
}

// OpenAIProvider implements the Provider interface using OpenAI's Responses API
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{
		client: &client,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return providerNameOpenAI
}

func (p *OpenAIProvider) buildRequestParams(request *GenerationRequest) responses.ResponseNewParams {
	params := responses.ResponseNewParams{
		Model: request.Model,
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(request.Prompt),
		},
	}
	if request.SystemPrompt != "" {
		params.Instructions = openai.String(request.SystemPrompt)
	}

	if modelsWithReasoning[request.Model] {
		params.Reasoning = shared.ReasoningParam{
			Effort: reasoningEffort(request.ReasoningMode),
		}
	}
	return params
}

// reasoningEffort maps a reasoning mode to an effort the gpt-5 family accepts.
// Unknown or empty modes fall back to low.
func reasoningEffort(mode string) shared.ReasoningEffort {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case reasoningMinimal:
		return shared.ReasoningEffort(reasoningMinimal)
	case reasoningMedium:
		return responses.ReasoningEffortMedium
	case reasoningHigh:
		return responses.ReasoningEffortHigh
	case reasoningLow:
		return responses.ReasoningEffortLow
	default:
		return responses.ReasoningEffortLow
	}
}

// GenerateStream implements streaming generation using OpenAI's Responses API
func (p *OpenAIProvider) GenerateStream(
	ctx context.Context,
	request *GenerationRequest,
	callback StreamCallback,
) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎵 OPENAI STREAMING GENERATION STARTED (Model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "openai.generate_stream")
	defer transaction.Finish()
	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameOpenAI)

	params := p.buildRequestParams(request)

	span := transaction.StartChild("openai.api_stream")
	defer span.Finish()
	stream := p.client.Responses.NewStreaming(ctx, params)
	defer stream.Close()

	var accumulated strings.Builder
	var finalResponse *responses.Response
	eventCount := 0

	for stream.Next() {
		event := stream.Current()
		eventCount++
		if eventCount <= maxLogEventCountOpenAI {
			log.Printf("📥 Stream event #%d: type=%s", eventCount, event.Type)
		}

		switch event.Type {
		case "response.output_text.delta":
			delta := event.AsResponseOutputTextDelta().Delta
			if delta == "" {
				continue
			}
			accumulated.WriteString(delta)
			if callback != nil {
				if err := callback(delta); err != nil {
					transaction.SetTag("success", "false")
					return nil, fmt.Errorf("stream callback failed: %w", err)
				}
			}

		case "response.completed":
			completed := event.AsResponseCompleted()
			finalResponse = &completed.Response

		case "response.failed":
			failed := event.AsResponseFailed()
			transaction.SetTag("success", "false")
			return nil, fmt.Errorf("streaming failed: %s", failed.Response.Error.Message)

		case "error":
			errorEvent := event.AsError()
			transaction.SetTag("success", "false")
			return nil, fmt.Errorf("stream error: %s", errorEvent.Message)
		}
	}

	if err := stream.Err(); err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, fmt.Errorf("openai stream error: %w", err)
	}

	response := &GenerationResponse{Text: accumulated.String()}
	if finalResponse != nil {
		response.Usage = usageFromOpenAI(request.Model, finalResponse.Usage)
		log.Printf("📊 USAGE: input=%d, output=%d, reasoning=%d, total=%d",
			response.Usage.InputTokens, response.Usage.OutputTokens,
			response.Usage.ReasoningTokens, response.Usage.TotalTokens)
	}

	transaction.SetTag("success", "true")
	log.Printf("✅ OPENAI STREAMING GENERATION COMPLETED in %v (%d chars)",
		time.Since(startTime), accumulated.Len())
	return response, nil
}

func usageFromOpenAI(model string, usage responses.ResponseUsage) Usage {
	return Usage{
		InputTokens:     usage.InputTokens,
		OutputTokens:    usage.OutputTokens,
		ReasoningTokens: usage.OutputTokensDetails.ReasoningTokens,
		TotalTokens:     usage.TotalTokens,
		CostUSD:         observability.CalculateOpenAICost(model, usage),
	}
}
