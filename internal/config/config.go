package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	AppEnv      string `env:"APP_ENV" default:"development"`
	Port        string `env:"PORT" default:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`
	LogLevel    string `env:"LOG_LEVEL" default:"info"`
	LogFormat   string `env:"LOG_FORMAT" default:"text"`

	// AdminKey grants the admin capability to requests carrying it. Empty
	// disables admin operations entirely.
	AdminKey string `env:"ADMIN_KEY"`

	// Rate limiting: one tunable window, independent ceilings per action kind.
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" default:"24h"`
	PostLimit       int           `env:"POST_LIMIT" default:"10"`
	CommentLimit    int           `env:"COMMENT_LIMIT" default:"30"`
	VoteLimit       int           `env:"VOTE_LIMIT" default:"50"`

	// Hot feed only considers posts created within this trailing window.
	HotFeedWindow time.Duration `env:"HOT_FEED_WINDOW" default:"24h"`

	// Web Push (VAPID) credentials for the delivery worker.
	VAPIDPublicKey  string `env:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `env:"VAPID_PRIVATE_KEY"`
	VAPIDSubscriber string `env:"VAPID_SUBSCRIBER"`

	// Push fan-out bounds.
	PushTimeout     time.Duration `env:"PUSH_TIMEOUT" default:"5s"`
	PushConcurrency int           `env:"PUSH_CONCURRENCY" default:"8"`

	// Per-IP HTTP rate limiting (requests per second, burst).
	HTTPRateLimit float64 `env:"HTTP_RATE_LIMIT" default:"20"`
	HTTPRateBurst int     `env:"HTTP_RATE_BURST" default:"40"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL": cfg.DatabaseURL,
		"REDIS_URL":    cfg.RedisURL,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	// VAPID keys: all three must be set together; unset disables push delivery.
	if cfg.VAPIDPublicKey != "" || cfg.VAPIDPrivateKey != "" || cfg.VAPIDSubscriber != "" {
		if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" || cfg.VAPIDSubscriber == "" {
			return fmt.Errorf("VAPID_PUBLIC_KEY, VAPID_PRIVATE_KEY and VAPID_SUBSCRIBER must be set together")
		}
	}

	if cfg.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	for name, v := range map[string]int{
		"POST_LIMIT":       cfg.PostLimit,
		"COMMENT_LIMIT":    cfg.CommentLimit,
		"VOTE_LIMIT":       cfg.VoteLimit,
		"PUSH_CONCURRENCY": cfg.PushConcurrency,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	if cfg.PushTimeout <= 0 {
		return fmt.Errorf("PUSH_TIMEOUT must be positive")
	}

	return nil
}

// PushEnabled reports whether Web Push delivery is configured.
func (c *Config) PushEnabled() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}
