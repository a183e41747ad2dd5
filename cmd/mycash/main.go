package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"mycash/internal/backend"
	"mycash/internal/cache"
	"mycash/internal/cli"
	"mycash/internal/dashboard"
	apphttp "mycash/internal/http"
	applog "mycash/internal/log"
	"mycash/internal/middleware/ratelimit"
	"mycash/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(nil, applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg, applog.ComponentApp)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	res, err := backend.NewFactory(logger).CreateBackend(startCtx, backendCfg)
	cancelStart()
	if err != nil {
		logger.Error("Failed to create backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	ledgerSvc := services.NewLedgerService(res.Store, res.Publisher(), logger)
	memo := dashboard.NewMemo(cfg.SnapshotCacheSize, cfg.SnapshotCacheTTL)
	dashSvc := services.NewDashboardService(res.Store, ledgerSvc, memo, logger)

	caches := cache.NewManager(logger)
	caches.Register(memo.Cache())
	caches.StartCleanup(cfg.SnapshotCacheTTL)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Ledger:         ledgerSvc,
		Dashboard:      dashSvc,
		Store:          res,
		UpcomingLimit:  cfg.UpcomingLimit,
		RateLimit:      ratelimit.DefaultConfig(),
		TrustedProxies: cfg.TrustedProxies,
		Logger:         logger,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		caches.Stop()
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", applog.FieldError, err)
			}
		}
	})

	// Changes written by other processes reach this one through its own queue on the exchange.
	if res.Events != nil {
		go func() {
			err := res.Events.ConsumeLedgerChanged(ctx, dashSvc.HandleLedgerChanged)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Ledger change consumer stopped", applog.FieldError, err)
			}
		}()
	}

	logger.Info("Starting mycash server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"events", res.Events != nil,
		applog.FieldOperation, applog.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
