package main

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"financaszen/internal/cli"
	"financaszen/internal/config"
	"financaszen/internal/log"
	"financaszen/internal/services"
	"financaszen/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	boot := cli.SetupLogger("info")
	cfg := cli.LoadAndValidateConfig(boot)
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(log.ComponentWorker)

	logger.Info("Starting zen-worker")

	store, closeStore := cli.MustOpenStore(logger, cfg)
	defer func() { _ = closeStore() }()

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	_, scheduler, err := cli.GoogleCalendar(ctx, logger, cfg, store)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Calendar", err)
	}
	if scheduler == nil {
		cli.Fatal(logger, "zen-worker needs the Google OAuth client", errors.New("GOOGLE_OAUTH_CLIENT_FILE or GOOGLE_OAUTH_CLIENT_JSON is not set"))
	}

	svc := services.New(store, services.Options{TimeZone: cfg.DefaultTimeZone, Logger: logger})
	w := worker.NewCalendarWorker(scheduler, svc.Travel, cfg.DefaultTimeZone, cfg.SyncBatchSize, logger)

	g, gctx := errgroup.WithContext(ctx)

	if client := cli.ConnectAMQP(logger, cfg); client != nil {
		defer func() { _ = client.Close() }()
		g.Go(func() error {
			return client.ConsumeCalendarSync(gctx, w.HandleCalendarSync)
		})
	} else {
		logger.Warn("Running without AMQP - only the periodic pending sweep is active")
	}

	g.Go(func() error {
		return sweepPending(gctx, logger, w, cfg)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("zen-worker shutdown complete")
}

// sweepPending runs ProcessPending at startup and every SyncInterval.
func sweepPending(ctx context.Context, logger *log.Logger, w *worker.CalendarWorker, cfg *config.Config) error {
	run := func() {
		n, err := w.ProcessPending(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Pending calendar sweep failed", log.FieldError, err)
			return
		}
		if n > 0 {
			logger.Info("Pending calendar sweep complete", "synced", n)
		}
	}

	run()
	ticker := time.NewTicker(cfg.SyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			run()
		}
	}
}
