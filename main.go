package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"code.cloudfoundry.org/clock"
	"github.com/microsoft/ApplicationInsights-Go/appinsights"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stuartleeks/home-dash/weather-api/appinsightsutils"
	"github.com/stuartleeks/home-dash/weather-api/config"
	"github.com/stuartleeks/home-dash/weather-api/dashboard"
	"github.com/stuartleeks/home-dash/weather-api/data"
	"github.com/stuartleeks/home-dash/weather-api/editor"
	"github.com/stuartleeks/home-dash/weather-api/llm"
	"github.com/stuartleeks/home-dash/weather-api/suggest"
	"github.com/stuartleeks/home-dash/weather-api/weather"
)

const pruneInterval = time.Minute

var (
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "weather-api",
	Short: "Weather dashboard API backed by a generative model",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		zapConfig := zap.NewProductionConfig()
		if verbose {
			zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		}
		logger, err = zapConfig.Build()
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var queryCmd = &cobra.Command{
	Use:   "query <city>",
	Short: "Query the weather for a city and print the record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		executor, err := newExecutor(cmd.Context(), nil)
		if err != nil {
			return err
		}
		record, err := executor.Fetch(cmd.Context(), args[0])
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", weather.ErrorKind(err), err)
			record = data.Fallback(args[0], executor.Variant())
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	},
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the response schema of the configured weather variant",
	RunE: func(cmd *cobra.Command, args []string) error {
		variant, err := cfg.Variant()
		if err != nil {
			return err
		}
		executor, err := weather.NewExecutor(noBackend{}, variant)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(executor.Contract().GenAI())
	},
}

// noBackend satisfies the executor for commands that never query.
type noBackend struct{}

func (noBackend) Name() string { return "none" }
func (noBackend) Generate(context.Context, llm.Request) (string, error) {
	return "", errors.New("no backend configured")
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd, queryCmd, schemaCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newTelemetryClient() appinsights.TelemetryClient {
	telemetryConfig := appinsights.NewTelemetryConfiguration(cfg.Telemetry.InstrumentationKey)
	// Configure how many items can be sent in one call to the data collector:
	telemetryConfig.MaxBatchSize = 8192
	// Configure the maximum delay before sending queued telemetry:
	telemetryConfig.MaxBatchInterval = 2 * time.Second

	client := appinsights.NewTelemetryClientFromConfig(telemetryConfig)
	client.Context().Tags.Cloud().SetRole("weather-api")
	if cfg.Telemetry.InstrumentationKey == "" {
		logger.Warn("application insights instrumentation key not set, telemetry disabled")
		client.SetIsEnabled(false)
	}
	return client
}

func newBackend(ctx context.Context, tracker llm.Tracker) (*llm.Gemini, llm.Backend, error) {
	gemini, err := llm.NewGemini(ctx, llm.GeminiConfig{
		APIKey:     cfg.Backend.APIKey,
		Model:      cfg.Backend.Model,
		ImageModel: cfg.Backend.ImageModel,
	})
	if err != nil {
		return nil, nil, err
	}
	var backend llm.Backend = gemini
	if cfg.Backend.RateLimit > 0 {
		backend = llm.NewRateLimited(backend, cfg.Backend.RateLimit, cfg.Backend.Burst)
	}
	if tracker != nil {
		backend = llm.NewTraced(backend, tracker, logger)
	}
	return gemini, backend, nil
}

func newImageBackend(backend llm.ImageBackend, tracker llm.Tracker) llm.ImageBackend {
	if cfg.Backend.RateLimit > 0 {
		backend = llm.NewRateLimitedImages(backend, cfg.Backend.RateLimit, cfg.Backend.Burst)
	}
	if tracker != nil {
		backend = llm.NewTracedImages(backend, tracker, logger)
	}
	return backend
}

func newExecutor(ctx context.Context, tracker llm.Tracker) (*weather.Executor, error) {
	_, backend, err := newBackend(ctx, tracker)
	if err != nil {
		return nil, err
	}
	return executorFor(backend, tracker)
}

func executorFor(backend llm.Backend, tracker llm.Tracker) (*weather.Executor, error) {
	variant, err := cfg.Variant()
	if err != nil {
		return nil, err
	}
	opts := []weather.Option{weather.WithLogger(logger)}
	if tracker != nil {
		opts = append(opts, weather.WithTelemetry(tracker))
	}
	if cfg.Weather.ConsistencyChecks {
		opts = append(opts, weather.WithConsistencyChecks())
	}
	return weather.NewExecutor(backend, variant, opts...)
}

func runServe(ctx context.Context) error {
	logger.Info("server starting", startupFields(cfg)...)

	telemetryClient := newTelemetryClient()
	defer func() {
		select {
		case <-telemetryClient.Channel().Close(5 * time.Second):
		case <-time.After(10 * time.Second):
		}
	}()

	gemini, backend, err := newBackend(ctx, telemetryClient)
	if err != nil {
		return err
	}
	executor, err := executorFor(backend, telemetryClient)
	if err != nil {
		return err
	}

	var imageBackend llm.ImageBackend
	if cfg.Backend.ImageGeneration {
		imageBackend = newImageBackend(gemini, telemetryClient)
	}
	summarizer := weather.NewSummarizer(backend, logger)
	images := weather.NewImages(imageBackend, logger)

	api := NewApiRouter(ApiServices{
		Executor:   executor,
		Summarizer: summarizer,
		Images:     images,
		Presets:    data.NewPresets(cfg.PresetsFile),
		Dashboards: dashboard.NewRegistry(dashboard.Services{
			Weather:    executor,
			Summaries:  summarizer,
			Background: images,
		}, cfg.Weather.DefaultCity, cfg.SessionTTL,
			dashboard.WithLogger(logger),
			dashboard.WithTelemetry(telemetryClient)),
		Sessions:  editor.NewStore(cfg.SessionTTL, nil),
		Suggester: suggest.NewSuggester(backend, logger),
	}, telemetryClient, logger, nil)
	pruneCtx, stopPruning := context.WithCancel(ctx)
	defer stopPruning()
	go pruneEvery(pruneCtx, clock.NewClock(), pruneInterval, logger, api.PruneCaches)

	err = serveAPI(ctx, cfg.Server.Address, api, telemetryClient)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

func startupFields(c config.Config) []zap.Field {
	return []zap.Field{
		zap.Int("pid", os.Getpid()),
		zap.String("address", c.Server.Address),
		zap.String("variant", c.Weather.Variant),
		zap.Any("config", c.Redacted()),
	}
}

// pruneEvery runs prune on every tick until ctx is done.
func pruneEvery(ctx context.Context, clk clock.Clock, interval time.Duration, logger *zap.Logger, prune func() int) {
	ticker := clk.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if pruned := prune(); pruned > 0 {
				logger.Debug("pruned expired entries", zap.Int("count", pruned))
			}
		}
	}
}

func serveAPI(ctx context.Context, address string, api *ApiRouter, tracker appinsightsutils.Tracker) error {
	l, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	logger.Info("listening", zap.String("address", l.Addr().String()))

	mux := appinsightsutils.NewServeMuxWithTrace(tracker, logger)
	registerHandlers(mux, api)
	server := &http.Server{
		Addr:              address,
		Handler:           mux.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	return server.Serve(l)
}
