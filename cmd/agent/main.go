// cmd/agent/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"flight-concierge/internal/agent"
	"flight-concierge/internal/amadeus"
	"flight-concierge/internal/common/config"
	"flight-concierge/internal/common/database"
	"flight-concierge/internal/common/errors"
	"flight-concierge/internal/common/logger"
	"flight-concierge/internal/common/observability"
	"flight-concierge/internal/server"
	"flight-concierge/internal/tools/clock"
	"flight-concierge/internal/tools/finalanswer"
	"flight-concierge/internal/tools/flightsearch"
	"flight-concierge/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting flight concierge agent...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment))

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Redis cache with retry (optional) ---
	var redisClient *database.RedisClient
	if cfg.Cache.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Cache.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			// Cache is an optimization, the agent runs without it.
			zapLog.Warn("redis unavailable, continuing without cache",
				zap.String("errorCode", string(errors.ErrCodeCacheUnavailable)),
				zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Init Amadeus client ---
	amadeusClient := amadeus.NewClient(
		cfg.Amadeus.BaseURL,
		cfg.Amadeus.APIKey,
		cfg.Amadeus.APISecret,
		config.GetDuration(cfg.Amadeus.Timeout),
		log,
	)

	// --- Load tool manifest ---
	manifest, err := registry.LoadRegistry(cfg.Agent.RegistryPath)
	if err != nil {
		zapLog.Warn("tool manifest not loaded, argument validation disabled",
			zap.String("path", cfg.Agent.RegistryPath),
			zap.Error(err))
		manifest = nil
	}

	// --- Register tools ---
	tools := agent.NewToolRegistry(log).WithManifest(manifest)

	if config.IsToolEnabled(cfg, flightsearch.ToolName) {
		tools.Register(flightsearch.NewHandler(
			flightsearch.LoadConfig(cfg),
			amadeusClient,
			redisClient,
			log,
		))
	}

	if config.IsToolEnabled(cfg, clock.ToolName) {
		tools.Register(clock.NewHandler(log))
	}

	// final_answer is always registered, the loop terminates on it.
	tools.Register(finalanswer.NewHandler())

	zapLog.Info("Tools registered", zap.Int("count", len(tools.List())))

	// --- Load prompts ---
	prompts, err := agent.LoadPrompts(cfg.Agent.PromptsPath)
	if err != nil {
		zapLog.Fatal("prompt templates load failed",
			zap.String("path", cfg.Agent.PromptsPath),
			zap.Error(err))
	}

	// --- Init model client and agent loop ---
	llmClient := agent.NewHTTPLLMClient(&agent.LLMConfig{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     config.GetDuration(cfg.LLM.Timeout),
		MaxRetries:  cfg.LLM.MaxRetries,
	}, log)

	runner := agent.New(llmClient, tools, prompts, cfg.Agent.MaxSteps, log,
		agent.WithObservability(obs))

	// --- HTTP server ---
	srv := server.New(cfg.Server, runner, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received, stopping server...", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Flight concierge agent stopped gracefully")
}
