package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"learncoach/internal/api"
	"learncoach/internal/coach"
	"learncoach/internal/coach/llm"
	"learncoach/internal/config"
	"learncoach/internal/export"
	"learncoach/internal/observability"
	"learncoach/internal/session"
	"learncoach/internal/storage"
)

func main() {
	// Load .env if present; real environment variables win.
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("LEARNCOACH_CONFIG"), "path to YAML config file")
	flag.Parse()

	logCfg := observability.ConfigFromEnv()
	logger := observability.NewLogger(logCfg)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// Initialize Sentry if DSN is provided
	sentryEnabled := false
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          envOr("APP_VERSION", "dev"),
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			logger.Warn("sentry initialization failed", "error", err)
		} else {
			logger.Info("sentry initialized", "environment", cfg.Environment)
			sentryEnabled = true
		}
	}

	// Select blob storage based on build tags and env (see store_*.go).
	blobs := selectBlobStore(logger)

	ctx := context.Background()
	conversations, err := storage.NewConversationStore(ctx, blobs, logger)
	if err != nil {
		logger.Error("conversation store init failed", "error", err)
		os.Exit(1)
	}
	settings, err := storage.NewSettingsStore(ctx, blobs, logger)
	if err != nil {
		logger.Error("settings store init failed", "error", err)
		os.Exit(1)
	}

	// Initialize metrics
	metricsCfg := observability.MetricsConfigFromEnv()
	var metrics *observability.Metrics
	if metricsCfg.Enabled {
		metrics = observability.NewMetrics(metricsCfg)
		logger.Info("metrics enabled", "namespace", metricsCfg.Namespace)
	} else {
		logger.Info("metrics disabled")
	}

	// LLM provider
	llmCfg := llm.ConfigFromEnv()
	provider := llm.NewOpenAIProvider(llmCfg)
	if provider.Available() {
		logger.Info("ai coaching enabled", "model", llmCfg.Model, "endpoint", llmCfg.Endpoint)
	} else {
		logger.Info("ai coaching disabled (set LEARNCOACH_LLM_API_KEY to enable)")
	}
	coachSvc := coach.NewService(provider, coach.NewExtractor(), logger)

	// Email dispatch is optional.
	var dispatcher export.Dispatcher
	emailCfg := export.EmailConfigFromEnv()
	if emailCfg.Configured() {
		d, err := export.NewSESDispatcher(ctx, emailCfg, logger)
		if err != nil {
			logger.Warn("email dispatch init failed", "error", err)
		} else {
			dispatcher = d
			logger.Info("email dispatch enabled", "region", emailCfg.Region)
		}
	} else {
		logger.Info("email dispatch disabled (set LEARNCOACH_SES_REGION and LEARNCOACH_SES_FROM to enable)")
	}

	// Sessions with background TTL cleanup.
	sessions := session.NewManager(cfg.SessionTTL)
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go sessions.Run(cleanupCtx, cfg.SessionCleanupInterval)

	mux := http.NewServeMux()
	srv := api.NewServer(mux, conversations, settings, coachSvc, sessions, dispatcher, logger, metrics)
	srv.RegisterRoutes()

	rateCfg := api.DefaultRateLimitConfig()
	if rateCfg.Enabled() {
		logger.Info("rate limiting configured",
			"requests_per_second", rateCfg.RequestsPerSecond,
			"burst", rateCfg.Burst,
		)
	}

	// Order: request ID (outermost) -> logging -> rate limiting
	handler := api.ApplyMiddlewares(
		mux,
		api.RequestIDMiddleware(),
		api.LoggingMiddleware(logger, metrics),
		api.RateLimitMiddleware(rateCfg, logger, metrics),
	)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      2 * time.Minute, // streaming chat turns can run long
		IdleTimeout:       60 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("learncoach listening", "addr", cfg.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	}

	logger.Info("shutting down server", "timeout", cfg.ShutdownTimeout.String())
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	} else {
		logger.Info("server stopped gracefully")
	}

	cancelCleanup()

	if err := blobs.Close(); err != nil {
		logger.Error("error closing store", "error", err)
	}

	if sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
