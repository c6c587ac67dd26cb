package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"financaszen/internal/cache"
	"financaszen/internal/cli"
	"financaszen/internal/config"
	apphttp "financaszen/internal/http"
	"financaszen/internal/log"
	"financaszen/internal/services"
	"financaszen/internal/tolls"
)

func main() {
	cli.LoadEnvFile()
	boot := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(boot)
	logger := cli.SetupLogger(cfg.LogLevel)

	store, closeStore := cli.MustOpenStore(logger, cfg)
	defer func() { _ = closeStore() }()

	estimator, err := tolls.Default()
	if err != nil {
		cli.Fatal(logger, "Failed to load toll plaza table", err)
	}

	summaries := cache.NewLRUCache[services.MonthSummary](cfg.CacheSize, cfg.CacheTTL)
	caches := cache.NewManager()
	caches.Register(summaries)
	caches.StartCleanup(cfg.CacheTTL)
	defer caches.Stop()

	opts := services.Options{
		Tolls:     estimator,
		TimeZone:  cfg.DefaultTimeZone,
		Summaries: summaries,
		Logger:    logger,
	}
	if client := cli.ConnectAMQP(logger, cfg); client != nil {
		defer func() { _ = client.Close() }()
		opts.Publisher = client
	}
	svc := services.New(store, opts)

	deps := apphttp.Deps{
		Services:  svc,
		Tolls:     estimator,
		Store:     store,
		Summaries: summaries,
		Logger:    logger,
	}
	oauthCfg, scheduler, err := cli.GoogleCalendar(context.Background(), logger, cfg, store)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Calendar", err)
	}
	if scheduler != nil {
		deps.OAuth = oauthCfg
		deps.Calendar = scheduler
	}

	srv, err := apphttp.NewServer(serverConfig(cfg), deps)
	if err != nil {
		cli.Fatal(logger, "Failed to build HTTP server", err)
	}
	if cfg.SessionSecret == "" {
		logger.Warn("SESSION_SECRET not set - sessions will not survive a restart")
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting Finanças Zen server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"google_enabled", scheduler != nil,
		"amqp_enabled", opts.Publisher != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cli.Fatal(logger, "Server error", err)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

// serverConfig maps the application config onto the HTTP server settings.
// The maintenance due list shares the reminder window.
func serverConfig(cfg *config.Config) apphttp.Config {
	return apphttp.Config{
		Addr:             ":" + cfg.Port,
		RateLimitRPM:     cfg.RateLimitRPM,
		TrustedProxies:   cfg.TrustedProxies,
		SecureCookies:    cfg.SecureCookies,
		SessionSecret:    cfg.SessionSecret,
		GoogleSuccessURL: cfg.GoogleOAuthSuccessURL,
		TimeZone:         cfg.DefaultTimeZone,
		DueWindowDays:    cfg.ReminderWindowDays,
	}
}
