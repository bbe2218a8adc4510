package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/anuragratna/twitter-mcp-server/internal/adapter/metrics"
)

const (
	secondsPerHour = 3600
	maxBodySize    = "64K"
)

func (s *Server) registerRoutes() {
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(correlationMiddleware)
	s.echo.Use(ErrorHandlingMiddleware(s.errorMetrics))
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            63072000, // 2 years; only sent over HTTPS
		HSTSPreloadEnabled:    true,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "no-referrer",
	}))
	s.echo.Use(s.httpMetrics.Middleware())

	s.echo.GET("/", s.handleWelcome)
	s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler(s.registry)))

	s.registerHealthRoutes()
	s.registerMCPRoutes()
}

func (s *Server) registerMCPRoutes() {
	limiter := newRateLimiter(float64(s.config.RateLimitPerHour)/secondsPerHour, s.config.RateLimitBurst)

	bodyLimit := middleware.BodyLimit(maxBodySize)

	mcp := s.echo.Group("/mcp", limiter, bodyLimit)
	mcp.GET("/capabilities", s.handleCapabilities)
	mcp.POST("/analyze_market_sentiment", s.handleAnalyzeMarketSentiment)
	mcp.POST("/analyze_market_trends", s.handleAnalyzeMarketTrends)
	mcp.POST("/monitor_market", s.handleMonitorMarket)
	mcp.POST("/analyze_sentiment", s.handleAnalyzeSentiment)
	mcp.GET("/stock/:symbol", s.handleStockInfo)

	legacy := s.echo.Group("/_mcp", limiter, bodyLimit)
	legacy.GET("/capabilities", s.handleCapabilities)
	legacy.POST("/analyze", s.handleLegacyAnalyze)
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.InfoContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}
