package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

const (
	PostSourceTwitter = "twitter"
	PostSourceFinnhub = "finnhub"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" default:"development"`
	Port      string `env:"PORT" default:"8080"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	PostSource         string        `env:"POST_SOURCE" default:"twitter"`
	TwitterBearerToken string        `env:"TWITTER_BEARER_TOKEN"`
	TwitterBaseURL     string        `env:"TWITTER_BASE_URL" default:"https://api.twitter.com"`
	FinnhubAPIKey      string        `env:"FINNHUB_API_KEY"`
	UpstreamTimeout    time.Duration `env:"UPSTREAM_TIMEOUT" default:"10s"`

	RedisURL       string        `env:"REDIS_URL"`
	PostCacheTTL   time.Duration `env:"POST_CACHE_TTL" default:"1h"`
	MemoryCacheTTL time.Duration `env:"MEMORY_CACHE_TTL" default:"1m"`

	RateLimitPerHour int `env:"RATE_LIMIT_PER_HOUR" default:"100"`
	RateLimitBurst   int `env:"RATE_LIMIT_BURST" default:"20"`

	TopicCount  int    `env:"TOPIC_COUNT" default:"5"`
	LexiconFile string `env:"LEXICON_FILE"`

	// Comma-separated symbols refreshed on WarmSchedule; empty disables warming.
	WarmWatchlist string `env:"WARM_WATCHLIST"`
	WarmSchedule  string `env:"WARM_SCHEDULE" default:"*/15 * * * *"`
}

// WarmSymbols splits WarmWatchlist into trimmed, non-empty symbols.
func (c *Config) WarmSymbols() []string {
	var out []string
	for _, s := range strings.Split(c.WarmWatchlist, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
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
	switch cfg.PostSource {
	case PostSourceTwitter:
		if cfg.TwitterBearerToken == "" {
			return errors.New("TWITTER_BEARER_TOKEN is required")
		}
	case PostSourceFinnhub:
		if cfg.FinnhubAPIKey == "" {
			return errors.New("FINNHUB_API_KEY is required")
		}
	default:
		return fmt.Errorf("POST_SOURCE must be %q or %q, got %q", PostSourceTwitter, PostSourceFinnhub, cfg.PostSource)
	}

	positive := map[string]int{
		"RATE_LIMIT_PER_HOUR": cfg.RateLimitPerHour,
		"RATE_LIMIT_BURST":    cfg.RateLimitBurst,
		"TOPIC_COUNT":         cfg.TopicCount,
	}
	for name, value := range positive {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	durations := map[string]time.Duration{
		"POST_CACHE_TTL":   cfg.PostCacheTTL,
		"MEMORY_CACHE_TTL": cfg.MemoryCacheTTL,
		"UPSTREAM_TIMEOUT": cfg.UpstreamTimeout,
	}
	for name, value := range durations {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}

	return nil
}
