package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/anuragratna/twitter-mcp-server/internal/adapter/finnhub"
	"github.com/anuragratna/twitter-mcp-server/internal/adapter/httpserver"
	"github.com/anuragratna/twitter-mcp-server/internal/adapter/metrics"
	"github.com/anuragratna/twitter-mcp-server/internal/adapter/redis"
	"github.com/anuragratna/twitter-mcp-server/internal/adapter/twitter"
	"github.com/anuragratna/twitter-mcp-server/internal/analysis"
	"github.com/anuragratna/twitter-mcp-server/internal/app"
	"github.com/anuragratna/twitter-mcp-server/internal/domain"
	"github.com/anuragratna/twitter-mcp-server/internal/platform/config"
	"github.com/anuragratna/twitter-mcp-server/internal/platform/logging"
	"github.com/anuragratna/twitter-mcp-server/internal/platform/version"
)

const (
	shutdownTimeout      = 10 * time.Second
	redisConnectTimeout  = 10 * time.Second
	cacheEvictionPeriod  = time.Minute
	redisHealthCheckName = "redis"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupAnalyzer(cfg *config.Config) *analysis.Analyzer {
	lexicon, err := analysis.LoadLexicon(cfg.LexiconFile)
	if err != nil {
		slog.Error("Failed to load lexicon", "path", cfg.LexiconFile, "error", err)
		os.Exit(1)
	}
	return analysis.NewAnalyzer(lexicon, analysis.WithTopicCount(cfg.TopicCount))
}

func setupPostSource(cfg *config.Config, finnhubClient *finnhub.Client, upstream *metrics.UpstreamMetrics) domain.PostSource {
	if cfg.PostSource == config.PostSourceFinnhub {
		slog.Info("Using Finnhub company news as post source")
		return finnhub.NewNewsSource(finnhubClient)
	}
	slog.Info("Using Twitter recent search as post source", "base_url", cfg.TwitterBaseURL)
	return twitter.NewClient(cfg.TwitterBaseURL, cfg.TwitterBearerToken, cfg.UpstreamTimeout, upstream)
}

func setupRedis(cfg *config.Config, upstream *metrics.UpstreamMetrics) *goredis.Client {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL not set, post cache is memory-only")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL, redis.NewCircuitBreakerHook(upstream.ObserveBreaker))
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func healthChecks(redisClient *goredis.Client) []httpserver.HealthCheck {
	if redisClient == nil {
		return nil
	}
	return []httpserver.HealthCheck{{
		Name: redisHealthCheckName,
		Check: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		},
	}}
}

func setupWarmer(cfg *config.Config, cache *redis.PostCache) *app.Warmer {
	symbols := cfg.WarmSymbols()
	if len(symbols) == 0 {
		return nil
	}

	warmer, err := app.NewWarmer(cache, symbols, cfg.WarmSchedule)
	if err != nil {
		slog.Error("Failed to create cache warmer", "error", err)
		os.Exit(1)
	}
	return warmer
}

func runGracefulShutdown(ctx context.Context, srv *httpserver.Server, warmer *app.Warmer) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		if warmer != nil {
			warmer.Stop()
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Version, "post_source", cfg.PostSource)

	registry := metrics.NewRegistry()
	upstreamMetrics := metrics.NewUpstreamMetrics(registry)
	cacheMetrics := metrics.NewCacheMetrics(registry)
	analysisMetrics := metrics.NewAnalysisMetrics(registry)

	analyzer := setupAnalyzer(cfg)

	var finnhubClient *finnhub.Client
	if cfg.FinnhubAPIKey != "" {
		finnhubClient = finnhub.NewClient(cfg.FinnhubAPIKey, cfg.UpstreamTimeout, upstreamMetrics)
	}

	// A nil *goredis.Client must not reach PostCache as a non-nil Cmdable.
	redisClient := setupRedis(cfg, upstreamMetrics)
	var cacheStore goredis.Cmdable
	if redisClient != nil {
		cacheStore = redisClient
		defer func() { _ = redisClient.Close() }()
	}

	postCache := redis.NewPostCache(cacheStore, setupPostSource(cfg, finnhubClient, upstreamMetrics),
		cfg.MemoryCacheTTL, cfg.PostCacheTTL, cacheMetrics, redis.WithClock(clock))
	stopEviction := postCache.StartEvictionTimer(cacheEvictionPeriod)
	defer stopEviction()

	var prices domain.PriceSource
	if finnhubClient != nil {
		prices = finnhub.NewQuoteSource(finnhubClient)
	} else {
		slog.Info("FINNHUB_API_KEY not set, price context disabled")
	}

	appSvc := app.NewService(analyzer, postCache, prices, analysisMetrics, clock)

	warmer := setupWarmer(cfg, postCache)
	if warmer != nil {
		warmer.Start()
	}

	srv, err := httpserver.NewServer(cfg, appSvc, registry, healthChecks(redisClient))
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	done := runGracefulShutdown(ctx, srv, warmer)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
	slog.Info("Server stopped")
}
