package main

import (
	"context"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"mycash/internal/backend"
	"mycash/internal/cli"
	applog "mycash/internal/log"
	"mycash/internal/services"
)

const runTimeout = time.Minute

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(nil, applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg, applog.ComponentWorker)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	// The worker only reads the ledger; it never publishes changes.
	backendCfg.AMQPURL = ""
	if !backendCfg.Type.Shared() {
		logger.Warn("Worker backend is private to this process; reminders will not see the server's ledger",
			"backend", backendCfg.Type.String(),
			"hint", "set DATA_BACKEND=sqlite in both processes")
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	res, err := backend.NewFactory(logger).CreateBackend(startCtx, backendCfg)
	cancelStart()
	if err != nil {
		logger.Error("Failed to create backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	ledgerSvc := services.NewLedgerService(res.Store, nil, logger)
	dashSvc := services.NewDashboardService(res.Store, ledgerSvc, nil, logger)
	job := services.NewReminderJob(dashSvc, cfg.UpcomingLimit, logger)

	runReminder := func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if _, err := job.Run(ctx); err != nil {
			logger.Error("Reminder job failed", applog.FieldError, err)
		}
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.ReminderSchedule, runReminder); err != nil {
		logger.Error("Failed to schedule reminder job", applog.FieldError, err, "schedule", cfg.ReminderSchedule)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		select {
		case <-scheduler.Stop().Done():
		case <-shutdownCtx.Done():
			logger.Warn("Reminder job still running at shutdown")
		}
		if res.Cleanup != nil {
			if err := res.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", applog.FieldError, err)
			}
		}
	})

	// One pass at startup so a fresh deploy reports immediately.
	runReminder()
	scheduler.Start()
	logger.Info("Reminder worker started",
		"schedule", cfg.ReminderSchedule,
		"limit", cfg.UpcomingLimit,
		applog.FieldOperation, applog.OpStartup)

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}
