package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Conceptual-Machines/magda-loop-bridge/internal/observability"
	"github.com/getsentry/sentry-go"
	"google.golang.org/genai"
)

const (
	providerNameGemini = "gemini"
	maxLogEventCount   = 5
	geminiUserRole     = "user"
)

// GeminiProvider implements the Provider interface using Google's Gemini API
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return providerNameGemini
}

func (p *GeminiProvider) buildGeminiContents(request *GenerationRequest) ([]*genai.Content, *genai.GenerateContentConfig) {
	contents := []*genai.Content{{
		Role:  geminiUserRole,
		Parts: []*genai.Part{{Text: request.Prompt}},
	}}

	config := &genai.GenerateContentConfig{}
	if request.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: request.SystemPrompt}},
		}
	}
	return contents, config
}

// GenerateStream implements streaming generation using Gemini's API
func (p *GeminiProvider) GenerateStream(
	ctx context.Context,
	request *GenerationRequest,
	callback StreamCallback,
) (*GenerationResponse, error) {
	startTime := time.Now()
	log.Printf("🎵 GEMINI STREAMING GENERATION STARTED (Model: %s)", request.Model)

	transaction := sentry.StartTransaction(ctx, "gemini.generate_stream")
	defer transaction.Finish()
	transaction.SetTag("model", request.Model)
	transaction.SetTag("provider", providerNameGemini)

	contents, config := p.buildGeminiContents(request)
	iter := p.client.Models.GenerateContentStream(ctx, request.Model, contents, config)

	response, err := p.processGeminiStream(request.Model, iter, callback)
	if err != nil {
		transaction.SetTag("success", "false")
		sentry.CaptureException(err)
		return nil, err
	}

	transaction.SetTag("success", "true")
	log.Printf("✅ GEMINI STREAMING GENERATION COMPLETED in %v (%d chars)", time.Since(startTime), len(response.Text))
	return response, nil
}

// processGeminiStream drains the stream, forwarding each chunk's text
func (p *GeminiProvider) processGeminiStream(
	model string,
	iter func(yield func(*genai.GenerateContentResponse, error) bool),
	callback StreamCallback,
) (*GenerationResponse, error) {
	var accumulated strings.Builder
	var finalUsage *genai.GenerateContentResponseUsageMetadata
	eventCount := 0

	for chunk, err := range iter {
		if err != nil {
			return nil, fmt.Errorf("gemini stream error: %w", err)
		}
		eventCount++

		text := chunkText(chunk)
		if text != "" {
			accumulated.WriteString(text)
			if eventCount <= maxLogEventCount {
				log.Printf("✅ Gemini chunk #%d: +%d chars (total: %d)", eventCount, len(text), accumulated.Len())
			}
			if callback != nil {
				if err := callback(text); err != nil {
					return nil, fmt.Errorf("stream callback failed: %w", err)
				}
			}
		}

		if chunk.UsageMetadata != nil {
			finalUsage = chunk.UsageMetadata
		}
	}

	response := &GenerationResponse{Text: accumulated.String()}
	if finalUsage != nil {
		response.Usage = Usage{
			InputTokens:     int64(finalUsage.PromptTokenCount),
			OutputTokens:    int64(finalUsage.CandidatesTokenCount),
			ReasoningTokens: int64(finalUsage.ThoughtsTokenCount),
			TotalTokens:     int64(finalUsage.TotalTokenCount),
		}
		response.Usage.CostUSD = observability.CalculateCost(model,
			response.Usage.InputTokens, response.Usage.OutputTokens, response.Usage.ReasoningTokens)
	}
	return response, nil
}

func chunkText(chunk *genai.GenerateContentResponse) string {
	if chunk == nil || len(chunk.Candidates) == 0 {
		return ""
	}
	content := chunk.Candidates[0].Content
	if content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
