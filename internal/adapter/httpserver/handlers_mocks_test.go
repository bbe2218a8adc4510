package httpserver

import (
	"context"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/anuragratna/twitter-mcp-server/internal/app"
	"github.com/anuragratna/twitter-mcp-server/internal/domain"
	"github.com/anuragratna/twitter-mcp-server/internal/platform/config"
)

type mockAppService struct {
	sentimentFn func(ctx context.Context, req app.SentimentRequest) (app.SentimentResult, error)
	trendsFn    func(ctx context.Context, req app.TrendsRequest) (domain.TrendReport, error)
	monitorFn   func(ctx context.Context, req app.MonitorRequest) (domain.MonitorReport, error)
	textFn      func(ctx context.Context, req app.TextRequest) (domain.TextAnalysis, error)
	stockFn     func(ctx context.Context, symbol string) (app.StockInfo, error)
}

func (m *mockAppService) AnalyzeMarketSentiment(ctx context.Context, req app.SentimentRequest) (app.SentimentResult, error) {
	if m.sentimentFn != nil {
		return m.sentimentFn(ctx, req)
	}
	return app.SentimentResult{}, nil
}

func (m *mockAppService) AnalyzeMarketTrends(ctx context.Context, req app.TrendsRequest) (domain.TrendReport, error) {
	if m.trendsFn != nil {
		return m.trendsFn(ctx, req)
	}
	return domain.TrendReport{}, nil
}

func (m *mockAppService) MonitorMarket(ctx context.Context, req app.MonitorRequest) (domain.MonitorReport, error) {
	if m.monitorFn != nil {
		return m.monitorFn(ctx, req)
	}
	return domain.MonitorReport{}, nil
}

func (m *mockAppService) AnalyzeText(ctx context.Context, req app.TextRequest) (domain.TextAnalysis, error) {
	if m.textFn != nil {
		return m.textFn(ctx, req)
	}
	return domain.TextAnalysis{}, nil
}

func (m *mockAppService) StockInfo(ctx context.Context, symbol string) (app.StockInfo, error) {
	if m.stockFn != nil {
		return m.stockFn(ctx, symbol)
	}
	return app.StockInfo{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Port:             "0",
		RateLimitPerHour: 3600,
		RateLimitBurst:   100,
	}
}

func newTestServer(t *testing.T, svc appService, opts ...func(*Server)) *Server {
	t.Helper()
	return newTestServerWithConfig(t, testConfig(), svc, opts...)
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config, svc appService, opts ...func(*Server)) *Server {
	t.Helper()

	srv, err := NewServer(cfg, svc, prometheus.NewRegistry(), nil)
	require.NoError(t, err)

	for _, opt := range opts {
		opt(srv)
	}
	return srv
}

func withHealthChecks(checks ...HealthCheck) func(*Server) {
	return func(s *Server) {
		s.healthChecks = checks
	}
}

// callHandler runs h behind the error middleware, as the router would.
func callHandler(h echo.HandlerFunc, c echo.Context) error {
	return ErrorHandlingMiddleware(nil)(h)(c)
}
