package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	slacklib "github.com/slack-go/slack"

	"github.com/parleylabs/parley/internal/ai"
	"github.com/parleylabs/parley/internal/api/ws"
	"github.com/parleylabs/parley/internal/auth"
	"github.com/parleylabs/parley/internal/config"
	"github.com/parleylabs/parley/internal/live"
	"github.com/parleylabs/parley/internal/metrics"
	"github.com/parleylabs/parley/internal/notify"
	"github.com/parleylabs/parley/internal/server"
	"github.com/parleylabs/parley/internal/store/postgres"
	redisstore "github.com/parleylabs/parley/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Load .env if present; real deployments set real variables.
	_ = godotenv.Load()

	// Initialize structured logging from environment.
	logLevel := os.Getenv("PARLEY_LOG_LEVEL")
	level, parseErr := zerolog.ParseLevel(logLevel)
	if parseErr != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFormat := os.Getenv("PARLEY_LOG_FORMAT")
	if logFormat == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	ctx := context.Background()

	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	// Connect to PostgreSQL.
	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	// Connect to Redis.
	pubsub, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer pubsub.Close()

	// Create auth service.
	authSvc := auth.NewService(store.Users(), cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	m := metrics.New("parley")

	// Model providers: Anthropic generates and condenses, Gemini transcribes
	// and speaks.
	anthropicClient := ai.NewAnthropicClient(cfg.AI.AnthropicAPIKey, cfg.AI.GenerateModel, cfg.AI.CondenseModel, cfg.AI.MaxTokens)

	geminiClient, err := ai.NewGeminiClient(ctx, cfg.AI.GeminiAPIKey, cfg.AI.TranscribeModel, cfg.AI.SpeechModel)
	if err != nil {
		return fmt.Errorf("gemini client: %w", err)
	}

	// Slack digest on finalized interviews, when configured.
	var notifier live.Notifier
	if cfg.Slack.BotToken != "" && cfg.Slack.Channel != "" {
		notifier = notify.NewSlackNotifier(slacklib.New(cfg.Slack.BotToken), cfg.Slack.Channel)
		log.Info().Str("channel", cfg.Slack.Channel).Msg("slack notifications enabled")
	}

	// Live session core.
	registry := live.NewRegistry()
	cache := live.NewContextCache(anthropicClient, cfg.Live.SummarizeAfter, cfg.Live.ContextRecentTurns, cfg.Live.CacheTTL, cfg.Live.CacheSweepInterval)
	evaluator := live.NewEvaluator(anthropicClient)
	finalizer := live.NewFinalizer(
		registry,
		cache,
		evaluator,
		store.Sessions(),
		store.Summaries(),
		store.Scores(),
		pubsub,
		notifier,
		m,
	)
	liveRouter := live.NewRouter(
		registry,
		cache,
		finalizer,
		store.Turns(),
		anthropicClient,
		geminiClient,
		geminiClient,
		pubsub,
		m,
		live.Timeouts{
			Generate:   cfg.AI.GenerateTimeout,
			Transcribe: cfg.AI.TranscribeTimeout,
			Speech:     cfg.AI.SpeechTimeout,
		},
	)
	monitor := live.NewMonitor(registry, finalizer, cfg.Live.SilenceThreshold, cfg.Live.SweepInterval)

	hub := ws.NewHub(registry, liveRouter, store.Sessions(), store.Agents(), pubsub, m)

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Background reapers: idle-session monitor and context cache eviction.
	go monitor.Run(ctx)
	go cache.Run(ctx)

	// Create HTTP server with all routes wired.
	srv := server.New(ctx, cfg, store, pubsub, authSvc, hub, m)

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	// Finalize whatever is still live so summaries are not lost to the
	// restart. Sessions were owned by this process alone.
	if n := registry.Len(); n > 0 {
		log.Info().Int("sessions", n).Msg("finalizing remaining live sessions")
		for _, id := range registry.IdleSessions(time.Now(), 0) {
			finalizer.Finalize(shutdownCtx, id, live.ReasonShutdown)
		}
	}

	log.Info().Msg("stopped")
	return nil
}
