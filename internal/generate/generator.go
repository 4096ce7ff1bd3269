package generate

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Conceptual-Machines/magda-loop-bridge/internal/llm"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/logger"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/observability"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/prompt"
	"github.com/google/uuid"
)

const (
	artifactFileMode = 0o644
	systemPrompt     = "You write MIDI loops as plain-text note tables. Output only the requested format."
)

// Options controls one generation run
type Options struct {
	Model         string
	ReasoningMode string // minimal, low, medium or high; reasoning models only
	Flags         []string
	Truncate      bool // start a fresh artifact instead of appending to it
}

// Generator streams an LLM generation into the artifact file, chunk by chunk,
// so the bridge observes the artifact growing while the model writes
type Generator struct {
	provider llm.Provider
	builder  *prompt.Builder
	tracer   *observability.LangfuseClient
	path     string
}

// NewGenerator creates a generator writing to path. tracer may be nil.
func NewGenerator(provider llm.Provider, builder *prompt.Builder, tracer *observability.LangfuseClient, path string) *Generator {
	return &Generator{
		provider: provider,
		builder:  builder,
		tracer:   tracer,
		path:     path,
	}
}

// Generate builds the prompt for opts.Flags and streams the completion into the artifact
func (g *Generator) Generate(ctx context.Context, opts Options) (*llm.GenerationResponse, error) {
	runID := uuid.New().String()
	fields := logger.Fields{
		"run_id":   runID,
		"artifact": g.path,
		"model":    opts.Model,
		"flags":    opts.Flags,
		"provider": g.provider.Name(),
	}

	text, err := g.builder.BuildPrompt(opts.Flags)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	file, err := g.openArtifact(opts.Truncate)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	trace := g.tracer.StartTrace(ctx, "loop.generate", map[string]interface{}{
		"run_id": runID,
		"flags":  opts.Flags,
	})
	defer trace.Finish()
	generation := trace.Generation("loop-tables", opts.Model, text)
	defer generation.Finish()

	logger.Info("🎼 Generation started", fields)
	start := time.Now()
	written := 0

	resp, err := g.provider.GenerateStream(ctx, &llm.GenerationRequest{
		Model:         opts.Model,
		ReasoningMode: opts.ReasoningMode,
		SystemPrompt:  systemPrompt,
		Prompt:        text,
	}, func(delta string) error {
		n, err := file.WriteString(delta)
		written += n
		if err != nil {
			return fmt.Errorf("failed to write artifact: %w", err)
		}
		// The bridge polls the file's modification time; make every chunk visible
		return file.Sync()
	})
	if err != nil {
		generation.SetLevel(observability.LevelError)
		logger.Error("Generation failed", err, fields.Merge(logger.Fields{"bytes_written": written}))
		return nil, err
	}

	generation.Output(resp.Text)
	generation.Usage(resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.Usage.TotalTokens, resp.Usage.CostUSD)

	logger.Info("Generation completed", fields.Merge(logger.Fields{
		"bytes_written": written,
		"duration_ms":   time.Since(start).Milliseconds(),
		"cost":          observability.FormatCost(resp.Usage.CostUSD),
	}))
	log.Printf("✅ Wrote %d bytes to %s", written, g.path)
	return resp, nil
}

func (g *Generator) openArtifact(truncate bool) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if truncate {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	file, err := os.OpenFile(g.path, flags, artifactFileMode)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact %s: %w", g.path, err)
	}
	return file, nil
}
