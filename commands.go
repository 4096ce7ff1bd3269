package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Conceptual-Machines/magda-loop-bridge/internal/api"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/config"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/generate"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/llm"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/logger"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/metrics"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/observability"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/osc"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/pipeline"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/prompt"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/reconcile"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/source"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// --- Command-line overrides ---
var (
	artifactPath string
	oscHost      string
	oscPort      int
	pollInterval time.Duration
	tempoBPM     int
	statusAddr   string
	genModel     string
	reasoning    string
	loopFlags    []string
	truncate     bool

	rootCmd = &cobra.Command{
		Use:   "magda-loop-bridge",
		Short: "Turn streamed LLM loop tables into Ableton Live clips over OSC",
		Long: `magda-loop-bridge polls a text artifact written by a language model,
reconciles the named loops it contains against what has already been sent,
and materializes each new loop as a MIDI clip through AbletonOSC.`,
		RunE: runBridge,
	}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Poll the artifact and send new loops to the performance engine (default)",
		RunE:  runBridge,
	}

	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Stream a loop generation from the configured model into the artifact",
		RunE:  runGenerate,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&artifactPath, "artifact", "", "artifact file (env ARTIFACT_PATH)")
	flags.StringVar(&oscHost, "osc-host", "", "AbletonOSC host (env OSC_HOST)")
	flags.IntVar(&oscPort, "osc-port", 0, "AbletonOSC port (env OSC_PORT)")
	flags.DurationVar(&pollInterval, "interval", 0, "poll interval (env POLL_INTERVAL)")
	flags.IntVar(&tempoBPM, "tempo", 0, "fixed tempo in BPM; random when unset (env TEMPO_BPM)")
	flags.StringVar(&statusAddr, "status-addr", "", "status server address, e.g. :8090 (env STATUS_ADDR)")
	flags.StringVar(&genModel, "model", "", "generation model (env GENERATION_MODEL)")
	flags.StringVar(&reasoning, "reasoning", "", "reasoning effort for gpt-5 models: minimal, low, medium, high (env REASONING_MODE)")
	flags.StringSliceVar(&loopFlags, "flags", nil, "loop names to generate (env LOOP_FLAGS)")

	generateCmd.Flags().BoolVar(&truncate, "truncate", false, "start a fresh artifact instead of appending")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(generateCmd)
}

// loadConfig reads the environment, then applies the flags the user actually set
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Load()

	changed := cmd.Flags().Changed
	if changed("artifact") {
		cfg.ArtifactPath = artifactPath
	}
	if changed("osc-host") {
		cfg.OSCHost = oscHost
	}
	if changed("osc-port") {
		cfg.OSCPort = oscPort
	}
	if changed("interval") {
		cfg.PollInterval = pollInterval
	}
	if changed("tempo") {
		cfg.TempoBPM = tempoBPM
	}
	if changed("status-addr") {
		cfg.StatusAddr = statusAddr
	}
	if changed("model") {
		cfg.GenerationModel = genModel
	}
	if changed("reasoning") {
		cfg.ReasoningMode = reasoning
	}
	if changed("flags") {
		cfg.LoopFlags = loopFlags
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newRecorder(ctx context.Context, cfg *config.Config) (metrics.Recorder, *metrics.Client) {
	cloudwatch, err := metrics.NewClient(ctx, cfg.Environment)
	if err != nil {
		log.Printf("⚠️  CloudWatch metrics unavailable: %v", err)
		return metrics.NewSentryMetrics(), nil
	}
	if !cloudwatch.Enabled() {
		return metrics.NewSentryMetrics(), nil
	}
	return metrics.Multi{metrics.NewSentryMetrics(), cloudwatch}, cloudwatch
}

func runBridge(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flush := initSentry(cfg)
	defer flush()

	ctx, stop := signalContext()
	defer stop()

	recorder, _ := newRecorder(ctx, cfg)
	tempo := pipeline.ChooseTempo(cfg.TempoBPM, cfg.TempoMin, cfg.TempoMax)
	board := pipeline.NewStatusBoard()

	driver := pipeline.NewDriver(
		source.NewFileSource(cfg.ArtifactPath),
		osc.NewEmitter(osc.NewClient(cfg.OSCHost, cfg.OSCPort)),
		recorder,
		board,
		pipeline.Settings{
			Reconcile: reconcile.Options{ReplayOnEmpty: cfg.ReplayOnEmpty},
			Scheduler: pipeline.NewScheduler(cfg.PollInterval, cfg.RetryInterval),
			Tempo:     tempo,
		},
	)

	if cfg.StatusAddr != "" {
		if cfg.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}
		router := api.SetupRouter(board, GetVersion())
		go func() {
			if err := api.Serve(ctx, cfg.StatusAddr, router); err != nil {
				logger.Error("Status server failed", err, logger.Fields{"addr": cfg.StatusAddr})
			}
		}()
	}

	logger.Info("🎛️  Loop bridge started", logger.Fields{
		"artifact": cfg.ArtifactPath,
		"osc":      fmt.Sprintf("%s:%d", cfg.OSCHost, cfg.OSCPort),
		"tempo":    tempo,
		"version":  GetVersion(),
	})
	return driver.Run(ctx)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flush := initSentry(cfg)
	defer flush()

	ctx, stop := signalContext()
	defer stop()

	provider, err := llm.NewProviderFactory(cfg.OpenAIAPIKey, cfg.GeminiAPIKey).GetProvider(ctx, cfg.GenerationModel)
	if err != nil {
		return err
	}

	_, cloudwatch := newRecorder(ctx, cfg)
	sentryMetrics := metrics.NewSentryMetrics()
	generator := generate.NewGenerator(
		provider,
		prompt.NewPromptBuilder(prompt.NewPromptLoader(cfg.PromptFile)),
		observability.NewLangfuseClient(ctx, cfg),
		cfg.ArtifactPath,
	)

	start := time.Now()
	resp, err := generator.Generate(ctx, generate.Options{
		Model:         cfg.GenerationModel,
		ReasoningMode: cfg.ReasoningMode,
		Flags:         cfg.LoopFlags,
		Truncate:      truncate,
	})
	sentryMetrics.RecordGenerationDuration(ctx, time.Since(start), err == nil)
	if err != nil {
		return err
	}

	if cloudwatch != nil {
		cloudwatch.RecordTokenUsage(cfg.GenerationModel, int(resp.Usage.InputTokens), int(resp.Usage.OutputTokens))
	}
	return nil
}
