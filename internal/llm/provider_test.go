package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockProvider is a test implementation of the Provider interface
type MockProvider struct {
	name               string
	generateStreamFunc func(ctx context.Context, request *GenerationRequest, callback StreamCallback) (*GenerationResponse, error)
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) GenerateStream(
	ctx context.Context, request *GenerationRequest, callback StreamCallback,
) (*GenerationResponse, error) {
	if m.generateStreamFunc != nil {
		return m.generateStreamFunc(ctx, request, callback)
	}
	return &GenerationResponse{}, nil
}

func TestProviderInterface(t *testing.T) {
	var provider Provider = &MockProvider{name: "mock"}
	assert.Equal(t, "mock", provider.Name())
}

func TestMockProviderStreamsDeltas(t *testing.T) {
	mock := &MockProvider{
		name: "test",
		generateStreamFunc: func(_ context.Context, request *GenerationRequest, callback StreamCallback) (*GenerationResponse, error) {
			require.Equal(t, "test-model", request.Model)
			for _, delta := range []string{"'Melody'", "\nMelody:", " 60 0 1 100"} {
				if err := callback(delta); err != nil {
					return nil, err
				}
			}
			return &GenerationResponse{Text: "'Melody'\nMelody: 60 0 1 100"}, nil
		},
	}

	var got []string
	resp, err := mock.GenerateStream(context.Background(), &GenerationRequest{Model: "test-model"}, func(delta string) error {
		got = append(got, delta)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, "'Melody'\nMelody: 60 0 1 100", resp.Text)
}

func TestStreamCallbackErrorAborts(t *testing.T) {
	boom := errors.New("disk full")
	mock := &MockProvider{
		name: "test",
		generateStreamFunc: func(_ context.Context, _ *GenerationRequest, callback StreamCallback) (*GenerationResponse, error) {
			if err := callback("x"); err != nil {
				return nil, err
			}
			return &GenerationResponse{}, nil
		},
	}

	_, err := mock.GenerateStream(context.Background(), &GenerationRequest{}, func(string) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestProviderFactory_GetProvider(t *testing.T) {
	tests := []struct {
		name      string
		openaiKey string
		geminiKey string
		model     string
		wantName  string
		wantErr   bool
	}{
		{name: "gpt model uses openai", openaiKey: "sk-test", model: "gpt-4o", wantName: "openai"},
		{name: "unknown model defaults to openai", openaiKey: "sk-test", model: "o3", wantName: "openai"},
		{name: "openai key missing", model: "gpt-4o", wantErr: true},
		{name: "gemini model uses gemini", geminiKey: "test-key", model: "gemini-2.5-flash", wantName: "gemini"},
		{name: "gemini key missing", openaiKey: "sk-test", model: "gemini-2.5-flash", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := NewProviderFactory(tt.openaiKey, tt.geminiKey)
			provider, err := factory.GetProvider(context.Background(), tt.model)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, provider.Name())
		})
	}
}
