package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcmexdev/food-storefront/internal/devbackend"
	"github.com/jcmexdev/food-storefront/internal/pkg/config"
	"github.com/jcmexdev/food-storefront/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := telemetry.InitLogger("devbackend", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown := telemetry.ShutdownFunc(telemetry.NoopShutdown)
	if cfg.OTelEnabled {
		shutdown, err = telemetry.SetupTracer(ctx, "devbackend")
		if err != nil {
			slog.Error("failed to initialise tracer", "error", err)
			os.Exit(1)
		}
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	server := devbackend.NewServer(devbackend.Seed(), cfg.JWTSecret, logger)
	srv := &http.Server{
		Addr:              cfg.DevBackendAddr,
		Handler:           telemetry.HTTPHandler(server.Router(), "devbackend"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("development backend running", "addr", cfg.DevBackendAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
}
