package main

import (
	"time"

	"financaszen/internal/cli"
	"financaszen/internal/log"
	"financaszen/internal/services"
)

func main() {
	cli.LoadEnvFile()
	boot := cli.SetupLogger("info")
	cfg := cli.LoadAndValidateConfig(boot)
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(log.ComponentReminder)

	logger.Info("Starting reminder-worker")

	store, closeStore := cli.MustOpenStore(logger, cfg)
	defer func() { _ = closeStore() }()

	var publisher services.CalendarPublisher
	if client := cli.ConnectAMQP(logger, cfg); client != nil {
		defer func() { _ = client.Close() }()
		publisher = client
	}
	if cfg.CalendarUserID == "" {
		logger.Warn("CALENDAR_USER_ID not set - due maintenances will only be logged")
	}

	repos := services.NewRepos(store, logger)
	processor := services.NewReminderProcessor(repos, publisher, cfg.CalendarUserID, cfg.ReminderWindowDays, cfg.DefaultTimeZone, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Maintenance reminder processor configured",
		"interval", cfg.ReminderInterval,
		"window_days", cfg.ReminderWindowDays,
		"backend", cfg.DataBackend)

	process := func(now time.Time) {
		count, err := processor.ProcessDue(ctx, now)
		if err != nil {
			logger.Error("Reminder processing failed", log.FieldError, err)
			return
		}
		logger.Info("Reminder processing complete",
			"reminders_sent", count,
			"next_check", now.Add(cfg.ReminderInterval).Format("15:04:05"))
	}

	logger.Info("Running initial reminder processing...")
	process(time.Now())

	ticker := time.NewTicker(cfg.ReminderInterval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case now := <-ticker.C:
			process(now)
		}
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("reminder-worker shutdown complete")
}
