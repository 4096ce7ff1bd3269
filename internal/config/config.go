package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	maxPort          = 65535
	defaultOSCPort   = 11000
	defaultTempoMin  = 10
	defaultTempoMax  = 120
	defaultInterval  = 3 * time.Second
	environmentProd  = "production"
	defaultLoopFlags = "Melody,Drum,Bass"
)

// Config holds the application configuration
type Config struct {
	// Environment
	Environment string

	// Artifact written by the generator and polled by the bridge
	ArtifactPath string

	// Performance engine (AbletonOSC) endpoint
	OSCHost string
	OSCPort int

	// Poll loop
	PollInterval  time.Duration
	RetryInterval time.Duration // 0 = same as PollInterval
	ReplayOnEmpty bool          // re-send every flag when the artifact changes without new ones

	// Tempo: TempoBPM wins when set, otherwise random in [TempoMin, TempoMax]
	TempoBPM int
	TempoMin int
	TempoMax int

	// Optional status server (e.g. ":8090"); empty disables it
	StatusAddr string

	// Generation (generate command)
	OpenAIAPIKey    string // OpenAI API key for GPT models
	GeminiAPIKey    string // Google Gemini API key
	GenerationModel string
	ReasoningMode   string // reasoning effort for gpt-5 models; empty = low
	LoopFlags       []string
	PromptFile      string // optional template overriding the embedded one

	// Observability
	SentryDSN         string // Sentry DSN for error tracking
	LangfusePublicKey string // Langfuse public key
	LangfuseSecretKey string // Langfuse secret key
	LangfuseHost      string // Langfuse host URL (cloud or self-hosted)
	LangfuseEnabled   bool   // Feature flag for Langfuse
}

func Load() *Config {
	return &Config{
		Environment:       getEnv("ENVIRONMENT", "development"),
		ArtifactPath:      getEnv("ARTIFACT_PATH", "./retinfo"),
		OSCHost:           getEnv("OSC_HOST", "127.0.0.1"),
		OSCPort:           getEnvInt("OSC_PORT", defaultOSCPort),
		PollInterval:      getEnvDuration("POLL_INTERVAL", defaultInterval),
		RetryInterval:     getEnvDuration("RETRY_INTERVAL", 0),
		ReplayOnEmpty:     getEnv("REPLAY_ON_EMPTY", "false") == "true",
		TempoBPM:          getEnvInt("TEMPO_BPM", 0),
		TempoMin:          getEnvInt("TEMPO_MIN", defaultTempoMin),
		TempoMax:          getEnvInt("TEMPO_MAX", defaultTempoMax),
		StatusAddr:        getEnv("STATUS_ADDR", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GenerationModel:   getEnv("GENERATION_MODEL", "gpt-4o"),
		ReasoningMode:     getEnv("REASONING_MODE", ""),
		LoopFlags:         getEnvList("LOOP_FLAGS", defaultLoopFlags),
		PromptFile:        getEnv("PROMPT_FILE", ""),
		SentryDSN:         getEnv("SENTRY_DSN", ""),
		LangfusePublicKey: getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey: getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:   getEnv("LANGFUSE_ENABLED", "false") == "true",
	}
}

// Validate checks the values the poll loop cannot run without
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ArtifactPath) == "" {
		return fmt.Errorf("artifact path is empty")
	}
	if c.OSCPort <= 0 || c.OSCPort > maxPort {
		return fmt.Errorf("osc port %d out of range", c.OSCPort)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", c.PollInterval)
	}
	if c.RetryInterval < 0 {
		return fmt.Errorf("retry interval must not be negative, got %v", c.RetryInterval)
	}
	if c.TempoBPM < 0 {
		return fmt.Errorf("tempo must not be negative, got %d", c.TempoBPM)
	}
	if c.TempoBPM == 0 && (c.TempoMin <= 0 || c.TempoMin > c.TempoMax) {
		return fmt.Errorf("invalid tempo range [%d, %d]", c.TempoMin, c.TempoMax)
	}
	return nil
}

// IsProduction returns true when running in the production environment
func (c *Config) IsProduction() bool {
	return c.Environment == environmentProd
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return n
}

// getEnvDuration accepts Go durations ("3s", "500ms") or plain seconds ("3")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	return SplitList(getEnv(key, defaultValue))
}

// SplitList splits a comma separated list, dropping blanks
func SplitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
