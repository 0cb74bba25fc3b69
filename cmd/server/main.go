// Package main is the entry point for the ai-router server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/nativex/ai-router/internal/adapter"
	"github.com/nativex/ai-router/internal/config"
	"github.com/nativex/ai-router/internal/dispatch"
	"github.com/nativex/ai-router/internal/domain"
	"github.com/nativex/ai-router/internal/handler"
	"github.com/nativex/ai-router/internal/metrics"
	"github.com/nativex/ai-router/internal/persona"
	"github.com/nativex/ai-router/internal/provider"
	"github.com/nativex/ai-router/internal/security"
	"github.com/nativex/ai-router/internal/ui"
)

func main() {
	// =========================================================================
	// 1. Setup structured logger (JSON format)
	// =========================================================================
	logger := setupLogger(os.Stdout, os.Getenv("LOG_LEVEL"), "json")

	logger.Info("starting ai-router")

	// =========================================================================
	// 2. Load configuration (Singleton)
	// =========================================================================
	cfg, err := config.GetConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger = setupLogger(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run wires the service from cfg and serves until SIGINT/SIGTERM.
func run(cfg *config.Configuration, logger *slog.Logger) error {
	// =========================================================================
	// 3. Build provider registry and persona catalog
	// =========================================================================
	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	catalog, err := persona.Load(cfg.Personas.Path)
	if err != nil {
		return fmt.Errorf("load personas: %w", err)
	}

	logger.Info("configuration loaded",
		slog.String("host", cfg.Server.Host),
		slog.Int("port", cfg.Server.Port),
		slog.Any("providers", registry.Sorted()),
		slog.Int("personas", catalog.Len()),
		slog.Int("rate_limit", cfg.Router.RateLimit),
		slog.Duration("rate_window", cfg.Router.RateWindow()),
	)

	// =========================================================================
	// 4. Create dispatcher with limiter and metrics
	// =========================================================================
	promRegistry := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(promRegistry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	limiter := domain.NewRateLimiter(
		cfg.Router.RateLimit,
		cfg.Router.RateWindow(),
		domain.WithMaxKeys(cfg.Router.MaxTrackedKeys),
	)

	dispatcher := dispatch.New(registry, limiter, catalog,
		dispatch.WithDefaultProvider(cfg.Router.DefaultProvider),
		dispatch.WithDefaultModel(cfg.Router.DefaultModel),
		dispatch.WithRecorder(recorder),
		dispatch.WithLogger(logger),
	)

	// =========================================================================
	// 5. Setup Gin router with middleware
	// =========================================================================
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := newEngine(dispatcher, promRegistry, logger, cfg.Logging.Console)

	// =========================================================================
	// 6. Start HTTP server with graceful shutdown on SIGTERM/SIGINT
	// =========================================================================
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	if cfg.Logging.Console {
		ui.PrintBanner()
		ui.PrintStartupInfo(cfg.Server.Host, cfg.Server.Port, providerLines(cfg),
			cfg.Router.RateLimit, cfg.Router.RateWindow())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server starting", slog.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		if cfg.Logging.Console {
			ui.PrintShutdown()
		}

		shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("server stopped gracefully")
	if cfg.Logging.Console {
		ui.PrintGoodbye()
	}
	return nil
}

// buildRegistry registers one adapter per configured backend family, in
// domain.KnownProviders order. It fails with config.ErrNoProviders when no
// family has a key.
func buildRegistry(cfg *config.Configuration, opts ...adapter.Option) (*provider.Registry, error) {
	registry := provider.NewRegistry()

	for _, p := range cfg.ConfiguredProviders() {
		cred := cfg.Credential(p)
		adapterOpts := append([]adapter.Option{adapter.WithBaseURL(cred.BaseURL)}, opts...)

		switch p {
		case domain.ProviderOpenAI:
			registry.Register(adapter.NewOpenAIAdapter(cred.APIKey, adapterOpts...))
		case domain.ProviderAnthropic:
			registry.Register(adapter.NewAnthropicAdapter(cred.APIKey, cred.Version, adapterOpts...))
		case domain.ProviderGemini:
			registry.Register(adapter.NewGeminiAdapter(cred.APIKey, adapterOpts...))
		case domain.ProviderGrok:
			registry.Register(adapter.NewGrokAdapter(cred.APIKey, adapterOpts...))
		}
	}

	if registry.Len() == 0 {
		return nil, config.ErrNoProviders
	}
	return registry, nil
}

// newEngine mounts the command surface and /metrics on a fresh gin engine.
func newEngine(router handler.Router, promRegistry *prometheus.Registry, logger *slog.Logger, console bool) *gin.Engine {
	engine := gin.New()

	engine.Use(handler.RecoveryMiddleware(logger))
	engine.Use(handler.CORSMiddleware())
	engine.Use(handler.LoggingMiddleware(logger))
	if console {
		engine.Use(handler.ConsoleMiddleware())
	}

	handler.NewAIHandler(router, handler.WithLogger(logger)).Register(engine)
	engine.GET("/metrics", gin.WrapH(metrics.Handler(promRegistry)))

	return engine
}

// providerLines summarizes the configured backends for the startup banner.
func providerLines(cfg *config.Configuration) []ui.ProviderLine {
	var lines []ui.ProviderLine
	for _, p := range cfg.ConfiguredProviders() {
		cred := cfg.Credential(p)
		lines = append(lines, ui.ProviderLine{
			Name:    string(p),
			BaseURL: cred.BaseURL,
			Key:     cred.APIKey,
		})
	}
	return lines
}

// setupLogger creates a structured logger that redacts credentials.
func setupLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var inner slog.Handler
	if format == "text" {
		inner = slog.NewTextHandler(w, opts)
	} else {
		inner = slog.NewJSONHandler(w, opts)
	}

	logger := slog.New(security.NewRedactedHandler(inner))

	// Set as default logger
	slog.SetDefault(logger)

	return logger
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
