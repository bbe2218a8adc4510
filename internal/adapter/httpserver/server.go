package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/anuragratna/twitter-mcp-server/internal/adapter/metrics"
	"github.com/anuragratna/twitter-mcp-server/internal/app"
	"github.com/anuragratna/twitter-mcp-server/internal/domain"
	"github.com/anuragratna/twitter-mcp-server/internal/platform/config"
)

type appService interface {
	AnalyzeMarketSentiment(ctx context.Context, req app.SentimentRequest) (app.SentimentResult, error)
	AnalyzeMarketTrends(ctx context.Context, req app.TrendsRequest) (domain.TrendReport, error)
	MonitorMarket(ctx context.Context, req app.MonitorRequest) (domain.MonitorReport, error)
	AnalyzeText(ctx context.Context, req app.TextRequest) (domain.TextAnalysis, error)
	StockInfo(ctx context.Context, symbol string) (app.StockInfo, error)
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app          appService
	capabilities capabilitiesResponse

	registry     *prometheus.Registry
	httpMetrics  *metrics.HTTPMetrics
	errorMetrics *metrics.ErrorMetrics

	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, app appService, reg *prometheus.Registry, healthChecks []HealthCheck) (*Server, error) {
	caps, err := buildCapabilities()
	if err != nil {
		return nil, fmt.Errorf("failed to build capabilities: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		capabilities: caps,
		registry:     reg,
		httpMetrics:  metrics.NewHTTPMetrics(reg),
		errorMetrics: metrics.NewErrorMetrics(reg),
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
