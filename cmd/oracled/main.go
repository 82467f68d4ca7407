package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/marataitester-blip/psy-color/internal/adapters/http"
	"github.com/marataitester-blip/psy-color/internal/adapters/imagegen"
	"github.com/marataitester-blip/psy-color/internal/adapters/llm/chat"
	"github.com/marataitester-blip/psy-color/internal/app"
	"github.com/marataitester-blip/psy-color/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	secrets := config.EnvSecrets{}
	if creds := secrets.Credentials(); creds.TextAPIKey == "" || creds.ImageAPIKey == "" {
		logger.Warn("provider API keys are not set; requests will fail until they are",
			"text_key_env", config.EnvTextAPIKey, "image_key_env", config.EnvImageAPIKey)
	}

	analyzer := chat.NewClient(
		&http.Client{Timeout: cfg.TextTimeout},
		cfg.TextBaseURL,
		cfg.TextModel,
		logger,
	)
	images := imagegen.NewClient(
		&http.Client{Timeout: cfg.ImageTimeout},
		cfg.ImageBaseURL,
		cfg.ImageModel,
		logger,
		imagegen.WithAttribution(cfg.ImageReferer, cfg.ImageTitle),
	)
	fetcher := imagegen.NewFetcher(&http.Client{Timeout: cfg.ImageFetchTimeout}, cfg.ImageFetchMaxBytes)

	svc := app.NewOracleService(secrets, analyzer, images, fetcher, app.Options{
		Policy:          cfg.RemoteImagePolicy,
		DefaultLanguage: cfg.DefaultLanguage,
		Logger:          logger,
	})

	e := httpadapter.NewServer(httpadapter.NewHandler(svc, cfg.MaxInputChars), logger, cfg.CORSOrigins)

	// Graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server", "addr", cfg.HTTPAddr, "text_model", cfg.TextModel, "image_model", cfg.ImageModel)
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
