package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"waves-server/internal/config"
	"waves-server/internal/infrastructure/logger"
	_ "waves-server/internal/infrastructure/metrics" // Register Prometheus metrics
	"waves-server/internal/infrastructure/observability"
	"waves-server/internal/interfaces/httpserver"
)

type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func (a *Application) Start(ctx context.Context) error {
	if err := a.httpServer.Run(ctx); err != nil {
		return err
	}
	a.log.Info().Msg("waves server stopped")
	return nil
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	application, cleanup, err := CreateApplication(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create application")
	}
	defer cleanup()

	log.Info().
		Int("port", cfg.HTTPPort).
		Str("provider", cfg.SearchProviderURL).
		Bool("mcp", cfg.MCPEnabled).
		Msg("starting waves server")

	if err := application.Start(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
	}
}

func loadEnvFiles() {
	for _, path := range []string{".env", ".env.local"} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Overload(path)
		}
	}
}
