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

	"github.com/jcmexdev/food-storefront/internal/pkg/cache"
	"github.com/jcmexdev/food-storefront/internal/pkg/config"
	"github.com/jcmexdev/food-storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/cart"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/checkout"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/document"
	"github.com/jcmexdev/food-storefront/internal/storefront/infra/adapters/backend"
	"github.com/jcmexdev/food-storefront/internal/storefront/infra/httpx"
	"github.com/jcmexdev/food-storefront/internal/storefront/infra/session"
	"github.com/jcmexdev/food-storefront/internal/storefront/infra/ws"
	"github.com/jcmexdev/food-storefront/internal/submissionlog"
	"github.com/jcmexdev/food-storefront/internal/submissionlog/sqlite"
)

const sweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := telemetry.InitLogger(cfg.ServiceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown := telemetry.ShutdownFunc(telemetry.NoopShutdown)
	if cfg.OTelEnabled {
		shutdown, err = telemetry.SetupTracer(ctx, cfg.ServiceName)
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

	var store cache.Cache
	if cfg.RedisAddr != "" {
		store = cache.NewRedisCache(cfg.RedisAddr, "storefront")
		if err := store.Ping(ctx); err != nil {
			slog.Warn("redis unreachable at startup", "addr", cfg.RedisAddr, "error", err)
		}
	} else {
		store = cache.NewMemoryCache("storefront")
	}

	var repo submissionlog.Repository
	if cfg.SubmissionLogPath != "" {
		sqliteRepo, err := sqlite.Open(cfg.SubmissionLogPath)
		if err != nil {
			slog.Error("failed to open submission log", "path", cfg.SubmissionLogPath, "error", err)
			os.Exit(1)
		}
		defer sqliteRepo.Close()
		repo = sqliteRepo
	}

	policy, err := cart.ParsePolicy(cfg.CartPolicy)
	if err != nil {
		slog.Error("invalid cart policy", "error", err)
		os.Exit(1)
	}

	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout)
	menu := backend.NewCachedMenu(client, store, cfg.MenuCacheTTL, logger)

	factory := func(sessionID string, c *cart.Store) *checkout.Wizard {
		opts := []checkout.Option{
			checkout.WithProfileSource(client),
			checkout.WithLogger(logger.With("session_id", sessionID)),
		}
		if repo != nil {
			opts = append(opts, checkout.WithSubmissionLog(submissionlog.NewRecorder(repo, sessionID)))
		}
		return checkout.NewWizard(c, client, opts...)
	}
	sessions := session.NewManager(store, factory,
		session.WithPolicy(policy),
		session.WithTTL(cfg.SessionTTL),
		session.WithLogger(logger),
	)

	renderer, err := document.NewRenderer()
	if err != nil {
		slog.Error("failed to parse document templates", "error", err)
		os.Exit(1)
	}

	hub := ws.NewHub(logger)
	handler := httpx.NewHandler(sessions, menu, client, hub, renderer,
		httpx.WithSellerTaxID(cfg.SellerTaxID),
		httpx.WithHealthCheck(store.Ping),
		httpx.WithLogger(logger),
	)

	go sessions.Run(ctx, sweepInterval)
	go hub.Run(ctx, cfg.TrackerRefresh, handler.TrackerSource())

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           telemetry.HTTPHandler(httpx.NewRouter(handler), "storefront"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("storefront running", "addr", cfg.HTTPAddr, "backend", cfg.BackendURL, "cart_policy", policy.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	slog.Info("storefront stopped")
}
