package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/lexesus93/safe-dialog/internal/audit"
	"github.com/lexesus93/safe-dialog/internal/catalog"
	"github.com/lexesus93/safe-dialog/internal/config"
	"github.com/lexesus93/safe-dialog/internal/mask"
	"github.com/lexesus93/safe-dialog/internal/provider"
	"github.com/lexesus93/safe-dialog/internal/server"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("Safe Dialog %s\n", Version)
		fmt.Printf("Git Commit: %s\n", GitCommit)
		fmt.Printf("Build Time: %s\n", BuildTime)
		os.Exit(0)
	}

	// Local overrides from .env, if present
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg.Logging.Level)
	log.Info().Str("version", Version).Msg("safe dialog starting")

	store, err := newStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize catalog store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close catalog store")
		}
	}()

	auditLog := audit.NewLogger(&cfg.Logging.Audit, log)
	cat := catalog.NewService(store, log)

	// The local model decides sensitivity and extracts candidates; the
	// remote model answers the actual dialog requests.
	oracle := provider.NewOllama(cfg.Ollama.BaseURL(), cfg.Ollama.Model, log)
	processor := provider.NewOpenRouter(cfg.OpenRouter.BaseURL, cfg.OpenRouter.APIKey, cfg.OpenRouter.Model, log)

	engine := mask.NewEngine(cat, oracle, auditLog, log)

	srv := server.New(server.Config{
		Listen:          cfg.Server.Listen,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		PromptPath:      cfg.Prompt.Path,
		MetricsEnabled:  cfg.Metrics.Enabled,
		MetricsEndpoint: cfg.Metrics.Endpoint,
	}, cat, engine, processor, log)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("api server failed")
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("stopped")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}

func newStore(cfg *config.Config, log zerolog.Logger) (catalog.Store, error) {
	switch cfg.Catalog.Type {
	case "", "file":
		return catalog.NewFileStore(cfg.Catalog.Path, log), nil
	case "memory":
		return catalog.NewMemoryStore(), nil
	case "redis":
		return catalog.NewRedisStore(cfg.Catalog.Redis.Address, cfg.Catalog.Redis.Password, cfg.Catalog.Redis.DB, log)
	default:
		return nil, fmt.Errorf("unknown catalog store type: %q", cfg.Catalog.Type)
	}
}
