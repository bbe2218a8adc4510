package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/anuragratna/twitter-mcp-server/internal/domain"
	"github.com/anuragratna/twitter-mcp-server/internal/platform/correlation"
)

const warmTimeout = 2 * time.Minute

// Refresher re-fetches a query into the post cache.
type Refresher interface {
	Refresh(ctx context.Context, q domain.PostQuery) error
}

// Warmer refreshes the cached watchlist batch on a cron schedule so
// monitor_market requests with the default timeframe are served from cache.
type Warmer struct {
	cron      *cron.Cron
	refresher Refresher
	query     domain.PostQuery
}

// NewWarmer validates the watchlist and schedule (standard five-field cron).
func NewWarmer(refresher Refresher, watchlist []string, schedule string) (*Warmer, error) {
	q, err := NewMonitorRequest().withWatchlist(watchlist).query()
	if err != nil {
		return nil, fmt.Errorf("invalid warm watchlist: %w", err)
	}

	logger := cronLogger{}
	w := &Warmer{
		cron:      cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger))),
		refresher: refresher,
		query:     q,
	}

	if _, err := w.cron.AddFunc(schedule, w.run); err != nil {
		return nil, fmt.Errorf("invalid warm schedule %q: %w", schedule, err)
	}
	return w, nil
}

// Start runs the schedule in the background.
func (w *Warmer) Start() {
	slog.Info("Cache warmer started", "symbols", w.query.Symbols)
	w.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish.
func (w *Warmer) Stop() {
	<-w.cron.Stop().Done()
}

// Warm refreshes the watchlist batch once.
func (w *Warmer) Warm(ctx context.Context) error {
	start := time.Now()
	if err := w.refresher.Refresh(ctx, w.query); err != nil {
		return fmt.Errorf("warm refresh failed: %w", err)
	}
	slog.DebugContext(ctx, "Post cache warmed", "symbols", w.query.Symbols, "duration_ms", time.Since(start).Milliseconds())
	return nil
}

func (w *Warmer) run() {
	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	defer cancel()
	ctx = correlation.WithID(ctx, correlation.NewID())

	if err := w.Warm(ctx); err != nil {
		slog.WarnContext(ctx, "Cache warm failed", "symbols", w.query.Symbols, "error", err)
	}
}

func (r MonitorRequest) withWatchlist(watchlist []string) MonitorRequest {
	r.Watchlist = watchlist
	return r
}

// cronLogger routes cron's job lifecycle logs into slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("Cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("Cron: "+msg, append(keysAndValues, "error", err)...)
}
