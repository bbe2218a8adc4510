package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/anuragratna/twitter-mcp-server/internal/adapter/metrics"
	"github.com/anuragratna/twitter-mcp-server/internal/analysis"
	"github.com/anuragratna/twitter-mcp-server/internal/domain"
)

const (
	opSentiment = "analyze_market_sentiment"
	opTrends    = "analyze_market_trends"
	opMonitor   = "monitor_market"
	opText      = "analyze_sentiment"
	opStock     = "stock_info"
)

const (
	newsItemLimit = 10
	// closesWindowMonths is the span of daily closes behind trend and volatility.
	closesWindowMonths = 1
)

// SentimentResult is a symbol summary with the live market view attached
// when a quote is available.
type SentimentResult struct {
	domain.SymbolSummary
	NewsAnalysis []domain.NewsItem     `json:"news_analysis"`
	Market       *domain.MarketContext `json:"market,omitempty"`
}

// StockInfo is a quote plus its direction against the previous close and the
// company profile. Profile fields stay zero when the provider has none.
type StockInfo struct {
	domain.Quote
	domain.CompanyProfile
	PriceTrend domain.PriceTrend `json:"price_trend"`
}

// Service is the application layer. It is the only component that talks to
// both the upstream sources and the analysis core.
type Service struct {
	analyzer *analysis.Analyzer
	posts    domain.PostSource
	prices   domain.PriceSource
	metrics  *metrics.AnalysisMetrics
	clock    clockwork.Clock
}

// NewService creates the application layer service.
// prices may be nil if no market data provider is configured.
func NewService(analyzer *analysis.Analyzer, posts domain.PostSource, prices domain.PriceSource, m *metrics.AnalysisMetrics, clock clockwork.Clock) *Service {
	return &Service{
		analyzer: analyzer,
		posts:    posts,
		prices:   prices,
		metrics:  m,
		clock:    clock,
	}
}

// HasPriceSource reports whether quotes can be looked up.
func (s *Service) HasPriceSource() bool {
	return s.prices != nil
}

// AnalyzeMarketSentiment summarizes recent posts for one symbol. The quote is
// fetched alongside the posts; a failed quote lookup only drops the market block.
func (s *Service) AnalyzeMarketSentiment(ctx context.Context, req SentimentRequest) (result SentimentResult, err error) {
	defer s.observe(opSentiment, s.clock.Now(), &err)

	q, err := req.query()
	if err != nil {
		return SentimentResult{}, err
	}
	symbol := q.Symbols[0]

	var (
		posts    []domain.RawPost
		quote    domain.Quote
		hasQuote bool
		closes   []float64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = s.posts.FetchRecentPosts(gctx, q)
		return err
	})
	if s.prices != nil {
		g.Go(func() error {
			var err error
			quote, hasQuote, err = s.prices.Quote(gctx, symbol)
			if err != nil {
				slog.WarnContext(ctx, "Quote lookup failed, omitting market context", "symbol", symbol, "error", err)
				hasQuote = false
			}
			return nil
		})
		g.Go(func() error {
			now := s.clock.Now()
			var err error
			closes, err = s.prices.DailyCloses(gctx, symbol, now.AddDate(0, -closesWindowMonths, 0), now)
			if err != nil {
				slog.WarnContext(ctx, "Daily closes lookup failed, using previous close for trend", "symbol", symbol, "error", err)
				closes = nil
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SentimentResult{}, fmt.Errorf("failed to fetch posts for %s: %w", symbol, err)
	}

	analyzed := s.analyzer.AnalyzePosts(posts)
	summary, err := s.analyzer.Summarize(symbol, analyzed)
	if err != nil {
		return SentimentResult{}, err
	}
	s.countLabels(summary)

	result = SentimentResult{
		SymbolSummary: summary,
		NewsAnalysis:  s.analyzer.NewsAnalysis(symbol, analyzed, newsItemLimit),
	}
	if hasQuote {
		result.Market = marketContext(quote, closes, summary.SentimentScore)
	}
	return result, nil
}

// marketContext prefers the last close against the window mean for the trend
// and falls back to the previous close when there are too few closes.
func marketContext(quote domain.Quote, closes []float64, score float64) *domain.MarketContext {
	mc := &domain.MarketContext{
		CurrentPrice:  quote.Current,
		PreviousClose: quote.PreviousClose,
		PriceTrend:    quote.Trend(),
	}
	if trend, volatility, ok := analysis.PriceStats(closes); ok {
		mc.PriceTrend = trend
		mc.Volatility = &volatility
	}
	mc.OverallAssessment = analysis.Assess(score, mc.PriceTrend)
	return mc
}

// AnalyzeMarketTrends fetches one shared batch for all symbols and compares them.
func (s *Service) AnalyzeMarketTrends(ctx context.Context, req TrendsRequest) (report domain.TrendReport, err error) {
	defer s.observe(opTrends, s.clock.Now(), &err)

	q, err := req.query()
	if err != nil {
		return domain.TrendReport{}, err
	}

	posts, err := s.posts.FetchRecentPosts(ctx, q)
	if err != nil {
		return domain.TrendReport{}, fmt.Errorf("failed to fetch posts for trends: %w", err)
	}

	report, err = s.analyzer.AnalyzeTrends(q.Symbols, posts)
	if err != nil {
		return domain.TrendReport{}, err
	}
	for _, sym := range q.Symbols {
		s.countLabels(report.MarketInsights[sym])
	}
	return report, nil
}

// MonitorMarket builds the watchlist report over one shared batch.
func (s *Service) MonitorMarket(ctx context.Context, req MonitorRequest) (report domain.MonitorReport, err error) {
	defer s.observe(opMonitor, s.clock.Now(), &err)

	q, err := req.query()
	if err != nil {
		return domain.MonitorReport{}, err
	}

	posts, err := s.posts.FetchRecentPosts(ctx, q)
	if err != nil {
		return domain.MonitorReport{}, fmt.Errorf("failed to fetch posts for watchlist: %w", err)
	}

	report, err = s.analyzer.Monitor(q.Symbols, posts)
	if err != nil {
		return domain.MonitorReport{}, err
	}
	for _, summary := range report.Summaries {
		s.countLabels(summary)
	}
	return report, nil
}

// AnalyzeText classifies a caller-supplied text without touching any upstream.
func (s *Service) AnalyzeText(ctx context.Context, req TextRequest) (result domain.TextAnalysis, err error) {
	defer s.observe(opText, s.clock.Now(), &err)

	if err := req.validate(); err != nil {
		return domain.TextAnalysis{}, err
	}

	result = s.analyzer.AnalyzeText(req.Text)
	s.metrics.PostsAnalyzed.WithLabelValues(string(result.Sentiment.Label)).Inc()
	return result, nil
}

// StockInfo returns the current quote for a symbol.
func (s *Service) StockInfo(ctx context.Context, rawSymbol string) (info StockInfo, err error) {
	defer s.observe(opStock, s.clock.Now(), &err)

	symbol, err := NormalizeSymbol("symbol", rawSymbol)
	if err != nil {
		return StockInfo{}, err
	}
	if s.prices == nil {
		return StockInfo{}, domain.ErrNoPriceSource
	}

	var (
		quote   domain.Quote
		found   bool
		profile domain.CompanyProfile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		quote, found, err = s.prices.Quote(gctx, symbol)
		return err
	})
	g.Go(func() error {
		p, ok, err := s.prices.Profile(gctx, symbol)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "Company profile lookup failed", "symbol", symbol, "error", err)
		case ok:
			profile = p
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return StockInfo{}, fmt.Errorf("quote lookup for %s failed: %w", symbol, err)
	}
	if !found {
		return StockInfo{}, fmt.Errorf("%w: %s", domain.ErrQuoteNotFound, symbol)
	}
	return StockInfo{Quote: quote, CompanyProfile: profile, PriceTrend: quote.Trend()}, nil
}

func (s *Service) countLabels(summary domain.SymbolSummary) {
	s.metrics.PostsAnalyzed.WithLabelValues(string(domain.LabelBullish)).Add(float64(summary.BullishCount))
	s.metrics.PostsAnalyzed.WithLabelValues(string(domain.LabelBearish)).Add(float64(summary.BearishCount))
	s.metrics.PostsAnalyzed.WithLabelValues(string(domain.LabelNeutral)).Add(float64(summary.NeutralCount))
}

func (s *Service) observe(op string, start time.Time, errp *error) {
	s.metrics.OperationDuration.WithLabelValues(op).Observe(s.clock.Since(start).Seconds())
	s.metrics.Operations.WithLabelValues(op, resultLabel(*errp)).Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "upstream_error"
	case errors.Is(err, domain.ErrQuoteNotFound), errors.Is(err, domain.ErrNoPriceSource):
		return "not_found"
	default:
		return "error"
	}
}
