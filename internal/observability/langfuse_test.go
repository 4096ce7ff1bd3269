package observability

import (
	"context"
	"testing"

	"github.com/Conceptual-Machines/magda-loop-bridge/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestNewLangfuseClient_Disabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
	}{
		{name: "flag off", cfg: &config.Config{LangfuseEnabled: false, LangfuseSecretKey: "sk"}},
		{name: "no secret key", cfg: &config.Config{LangfuseEnabled: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewLangfuseClient(context.Background(), tt.cfg)
			assert.False(t, client.IsEnabled())
		})
	}
}

func TestDisabledTraceIsNoop(t *testing.T) {
	client := NewLangfuseClient(context.Background(), &config.Config{})

	trace := client.StartTrace(context.Background(), "loop.generate", map[string]interface{}{"flags": 3})
	gen := trace.Generation("loop-table", "gpt-4o", "prompt")
	assert.NotPanics(t, func() {
		gen.Output("text")
		gen.Usage(1, 2, 3, 0.1)
		gen.SetLevel(LevelError)
		gen.Finish()
		trace.Finish()
	})
}

func TestNilClientIsDisabled(t *testing.T) {
	var client *LangfuseClient
	assert.False(t, client.IsEnabled())
}
