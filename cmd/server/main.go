package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/roshimastsensei/log-momentum/internal/api"
	"github.com/roshimastsensei/log-momentum/internal/cache"
	"github.com/roshimastsensei/log-momentum/internal/config"
	"github.com/roshimastsensei/log-momentum/internal/db"
	"github.com/roshimastsensei/log-momentum/internal/external"
	"github.com/roshimastsensei/log-momentum/internal/httputil"
	"github.com/roshimastsensei/log-momentum/internal/logger"
	"github.com/roshimastsensei/log-momentum/internal/momentum"
	"github.com/roshimastsensei/log-momentum/internal/notifications"
	"github.com/roshimastsensei/log-momentum/internal/repository"
	"github.com/roshimastsensei/log-momentum/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config load error")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile})
	log.Info("log-momentum starting")

	if err := cfg.Validate(log); err != nil {
		log.Fatal(err)
	}
	cfg.Print(log)

	pacing, _ := momentum.PacingByName(cfg.Pacing, cfg.PacingDelay)

	// Price source
	coingecko := external.NewCoinGeckoClient(external.CoinGeckoOptions{
		BaseURL:   cfg.CoinGeckoBaseURL,
		APIKey:    cfg.CoinGeckoAPIKey,
		KeyHeader: cfg.CoinGeckoKeyHeader,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
		Retry: httputil.RetryConfig{
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			MaxDelay:    cfg.RetryMaxDelay,
		},
		Logger: log,
	})

	var source momentum.PriceSource = coingecko
	store := openCache(cfg, log)
	if store != nil {
		defer store.Close()
		source = momentum.NewCachedSource(coingecko, store, cfg.CacheTTL, log)
	}

	// History (optional)
	var history *repository.MomentumRepo
	if cfg.HasDatabase() {
		pool := openDatabase(cfg, log)
		defer func() {
			pool.Close()
			log.Info("database pool closed")
		}()
		history = repository.NewMomentumRepo(pool)
	}

	opts := momentum.Options{
		Pacing:   pacing,
		Platform: cfg.CoinGeckoPlatform,
		Logger:   log,
	}
	if cfg.ResolveContracts {
		opts.Resolver = coingecko
	}
	if history != nil {
		opts.Recorder = history
	}
	svc := momentum.NewService(source, opts)

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. API server
	apiOpts := api.Options{
		Port:         cfg.Port,
		APIKey:       cfg.APIKey,
		CORSOrigin:   cfg.CORSAllowOrigin,
		Diagnostics:  cfg.DiagnosticsEnabled,
		Pacing:       svc.Pacing().Name(),
		WriteTimeout: writeTimeout(cfg),
		Logger:       log,
	}
	if history != nil {
		apiOpts.History = history
	}
	if store != nil {
		apiOpts.Cache = store
	}
	srv := api.NewServer(svc, apiOpts)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// 2. Watchlist (optional)
	var watch *scheduler.WatchlistScheduler
	if len(cfg.Watchlist) > 0 {
		notify := notifications.NewSender(cfg.WebhookURL, cfg.BotName, log)
		watch = scheduler.NewWatchlistScheduler(svc, notify, scheduler.WatchlistConfig{
			IDs:       cfg.Watchlist,
			Interval:  cfg.WatchlistInterval,
			Threshold: cfg.AlertThreshold,
		}, log)
		watch.Start()
	} else {
		log.Info("watchlist skipped, WATCHLIST not configured")
	}

	log.Info("all services started successfully")

	<-ctx.Done()
	log.Info("shutting down gracefully...")

	if watch != nil {
		watch.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown error")
	}
	log.Info("shutdown complete")
}

func openCache(cfg *config.Config, log *logrus.Logger) cache.Store {
	if !cfg.CacheEnabled {
		return nil
	}
	if cfg.RedisAddr == "" {
		return cache.NewMemory(10 * time.Minute)
	}
	r, err := cache.NewRedis(cache.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.WithError(err).Warn("redis unavailable, falling back to in-memory cache")
		return cache.NewMemory(10 * time.Minute)
	}
	log.WithField("addr", cfg.RedisAddr).Info("redis cache connected")
	return r
}

func openDatabase(cfg *config.Config, log *logrus.Logger) *pgxpool.Pool {
	log.WithFields(logrus.Fields{"host": cfg.DBHost, "db": cfg.DBName}).Info("connecting to database")
	pool, err := db.Connect(cfg.DSN())
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		log.WithError(err).Fatal("database migration failed")
	}
	return pool
}

// writeTimeout leaves room for the slowest request: three fetches with all
// retries plus the sequential pauses between them.
func writeTimeout(cfg *config.Config) time.Duration {
	perFetch := time.Duration(cfg.RetryMaxAttempts)*cfg.FetchTimeout +
		time.Duration(cfg.RetryMaxAttempts-1)*cfg.RetryMaxDelay
	d := 3*perFetch + 10*time.Second
	if cfg.Pacing == config.PacingSequential {
		d += 2 * cfg.PacingDelay
	}
	return d
}
