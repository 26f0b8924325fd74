package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"linkbrief/internal/bot"
	"linkbrief/internal/cache"
	"linkbrief/internal/config"
	"linkbrief/internal/database"
	"linkbrief/internal/httpapi"
	"linkbrief/internal/scheduler"
	"linkbrief/internal/scraper"
	"linkbrief/internal/service"
	"linkbrief/internal/summarizer"
)

func main() {
	start := time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config",
			"error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, cfg, log); err != nil {
		log.ErrorContext(ctx, "Exiting with error",
			"error", err,
			"uptimeSeconds", time.Since(start).Seconds())
		os.Exit(1)
	}

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	c, closeCache, err := initCache(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("init cache: %w", err)
	}
	defer closeCache()
	log.InfoContext(ctx, "Cache is initialized",
		"backend", cfg.CacheBackend)

	providerClient := &http.Client{Timeout: cfg.ProviderTimeout}

	sum, err := summarizer.NewDefault(
		summarizer.Config{APIKey: cfg.AnthropicAPIKey, BaseURL: cfg.AnthropicBaseURL, HTTPClient: providerClient},
		summarizer.Config{APIKey: cfg.OpenAIAPIKey, BaseURL: cfg.OpenAIBaseURL, HTTPClient: providerClient},
		log,
	)
	if err != nil {
		return fmt.Errorf("init summarizer: %w", err)
	}
	log.InfoContext(ctx, "Summarizer is initialized",
		"anthropic", cfg.AnthropicAPIKey != "",
		"openAI", cfg.OpenAIAPIKey != "")

	svc := service.New(scraper.New(&http.Client{Timeout: cfg.FetchTimeout}, log), sum, c, log)

	if purger, ok := c.(cache.Purger); ok {
		sched := scheduler.New(ctx, purger, log)
		if err = sched.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer sched.Stop()
		log.InfoContext(ctx, "Scheduler is started",
			"spec", scheduler.HourlyPurgeSpec,
			"timezone", time.FixedZone(scheduler.Timezone, scheduler.TimezoneOffsetSeconds).String())
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	if cfg.HTTPAddr != "" {
		srv := httpapi.NewServer(cfg.HTTPAddr, svc, httpapi.RequestTimeout(cfg.FetchTimeout, cfg.ProviderTimeout), log)

		wg.Go(func() {
			if err := srv.Run(ctx); err != nil {
				errCh <- fmt.Errorf("run HTTP API: %w", err)
			}
		})
	}

	if cfg.TelegramToken != "" {
		botInst, err := bot.New(cfg.TelegramToken, svc, cfg.AllowedUsers, log)
		if err != nil {
			return fmt.Errorf("init bot: %w", err)
		}
		log.InfoContext(ctx, "Bot is initialized",
			"allowedUsersCount", len(cfg.AllowedUsers))

		wg.Go(func() {
			botInst.Start(ctx)
		})
	}

	if cfg.HTTPAddr == "" && cfg.TelegramToken == "" {
		log.WarnContext(ctx, "Neither HTTP_ADDR nor TELEGRAM_TOKEN is set, nothing to serve")
	}

	select {
	case <-ctx.Done():
		log.InfoContext(ctx, "Shutdown signal is received")
	case err = <-errCh:
		return err
	}

	wg.Wait()

	select {
	case err = <-errCh:
		return err
	default:
		return nil
	}
}

func initCache(ctx context.Context, cfg config.Config, log *slog.Logger) (cache.Cache, func(), error) {
	switch cfg.CacheBackend {
	case config.CacheBackendRedis:
		c, err := cache.NewRedisCache(ctx, cfg.RedisURL, log)
		if err != nil {
			return nil, nil, err
		}

		return c, func() {
			if err := c.Close(); err != nil {
				log.ErrorContext(ctx, "Failed to close Redis client",
					"error", err)
			}
		}, nil

	case config.CacheBackendSQLite:
		db, err := database.New(ctx, cfg.DBPath, log)
		if err != nil {
			return nil, nil, err
		}

		return db, func() {
			if err := db.Close(); err != nil {
				log.ErrorContext(ctx, "Failed to close db",
					"error", err,
					"dbPath", cfg.DBPath)
			}
		}, nil

	case config.CacheBackendMemory:
		return cache.NewMemoryCache(cfg.MemoryCacheMaxEntries), func() {}, nil

	default:
		return nil, func() {}, nil
	}
}
