package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

const (
	PacingConcurrent = "concurrent"
	PacingSequential = "sequential"
)

type Config struct {
	// API
	Port            int    `envconfig:"API_PORT" default:"3001"`
	APIKey          string `envconfig:"API_KEY"`
	CORSAllowOrigin string `envconfig:"CORS_ALLOW_ORIGIN" default:"*"`

	// CoinGecko
	CoinGeckoBaseURL   string `envconfig:"COINGECKO_BASE_URL" default:"https://api.coingecko.com/api/v3"`
	CoinGeckoAPIKey    string `envconfig:"COINGECKO_API_KEY"`
	CoinGeckoKeyHeader string `envconfig:"COINGECKO_KEY_HEADER" default:"x-cg-demo-api-key"`
	CoinGeckoPlatform  string `envconfig:"COINGECKO_PLATFORM" default:"ethereum"`
	UserAgent          string `envconfig:"USER_AGENT" default:"Mozilla/5.0 (compatible; LMR-Bot/1.0; +https://log-momentum.vercel.app)"`
	ResolveContracts   bool   `envconfig:"RESOLVE_CONTRACTS" default:"true"`

	// Fetching
	FetchTimeout       time.Duration `envconfig:"FETCH_TIMEOUT" default:"10s"`
	RetryMaxAttempts   int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	RetryBaseDelay     time.Duration `envconfig:"RETRY_BASE_DELAY" default:"2s"`
	RetryMaxDelay      time.Duration `envconfig:"RETRY_MAX_DELAY" default:"30s"`
	Pacing             string        `envconfig:"PACING" default:"concurrent"`
	PacingDelay        time.Duration `envconfig:"PACING_DELAY" default:"25s"`
	DiagnosticsEnabled bool          `envconfig:"DIAGNOSTICS_ENABLED" default:"true"`

	// Cache
	CacheEnabled  bool          `envconfig:"CACHE_ENABLED" default:"true"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"24h"`
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`

	// Database (optional, enables history)
	DatabaseURL string `envconfig:"DATABASE_URL"`
	DBHost      string `envconfig:"DB_HOST"`
	DBPort      int    `envconfig:"DB_PORT" default:"5432"`
	DBName      string `envconfig:"DB_NAME" default:"log_momentum"`
	DBUser      string `envconfig:"DB_USER"`
	DBPassword  string `envconfig:"DB_PASSWORD"`

	// Watchlist
	Watchlist         []string      `envconfig:"WATCHLIST"`
	WatchlistInterval time.Duration `envconfig:"WATCHLIST_INTERVAL" default:"1h"`
	AlertThreshold    float64       `envconfig:"ALERT_THRESHOLD" default:"0.1"`
	WebhookURL        string        `envconfig:"WEBHOOK_URL"`
	BotName           string        `envconfig:"BOT_NAME" default:"LMR-Bot"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"LOG_FILE"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	cfg.Pacing = strings.ToLower(strings.TrimSpace(cfg.Pacing))
	cfg.Watchlist = cleanList(cfg.Watchlist)
	return &cfg, nil
}

func (c *Config) Validate(log logrus.FieldLogger) error {
	var errs []string

	if c.Pacing != PacingConcurrent && c.Pacing != PacingSequential {
		errs = append(errs, fmt.Sprintf("PACING must be %q or %q, got %q", PacingConcurrent, PacingSequential, c.Pacing))
	}
	if c.PacingDelay < 0 {
		errs = append(errs, "PACING_DELAY must not be negative")
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, "FETCH_TIMEOUT must be positive")
	}
	if c.RetryMaxAttempts < 1 {
		errs = append(errs, "RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.RetryMaxDelay < c.RetryBaseDelay {
		errs = append(errs, "RETRY_MAX_DELAY must be >= RETRY_BASE_DELAY")
	}
	if c.CacheEnabled && c.CacheTTL <= 0 {
		errs = append(errs, "CACHE_TTL must be positive when the cache is enabled")
	}
	if len(c.Watchlist) > 0 && c.WatchlistInterval <= 0 {
		errs = append(errs, "WATCHLIST_INTERVAL must be positive")
	}
	if c.AlertThreshold < 0 {
		errs = append(errs, "ALERT_THRESHOLD must not be negative")
	}

	if c.APIKey == "" {
		log.Warn("API_KEY not set, REST API has no authentication")
	}
	if len(c.Watchlist) > 0 && c.WebhookURL == "" {
		log.Warn("WATCHLIST set without WEBHOOK_URL, alerts will only be logged")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print(log logrus.FieldLogger) {
	log.WithFields(logrus.Fields{
		"port":        c.Port,
		"coingecko":   c.CoinGeckoBaseURL,
		"apiKey":      boolLabel(c.CoinGeckoAPIKey != "", "configured", "none"),
		"pacing":      c.Pacing,
		"pacingDelay": c.PacingDelay,
		"timeout":     c.FetchTimeout,
		"retries":     c.RetryMaxAttempts,
		"diagnostics": c.DiagnosticsEnabled,
	}).Info("momentum service configuration")

	log.WithFields(logrus.Fields{
		"cache":     c.cacheLabel(),
		"cacheTTL":  c.CacheTTL,
		"database":  boolLabel(c.HasDatabase(), "configured", "disabled"),
		"watchlist": strings.Join(c.Watchlist, ","),
		"webhook":   boolLabel(c.WebhookURL != "", "configured", "not set"),
	}).Info("optional services")
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != "" || c.DBHost != ""
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func (c *Config) cacheLabel() string {
	switch {
	case !c.CacheEnabled:
		return "disabled"
	case c.RedisAddr != "":
		return "redis " + c.RedisAddr
	default:
		return "memory"
	}
}

// --- helpers ---

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
