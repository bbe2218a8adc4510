package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anuragratna/twitter-mcp-server/internal/app"
	apperrors "github.com/anuragratna/twitter-mcp-server/internal/platform/errors"
)

const docsURL = "/mcp/capabilities"

func (s *Server) handleWelcome(c echo.Context) error {
	return sendJSON(c, http.StatusOK, map[string]string{
		"message":  "Twitter market sentiment MCP server",
		"docs_url": docsURL,
	})
}

func (s *Server) handleCapabilities(c echo.Context) error {
	return sendJSON(c, http.StatusOK, s.capabilities)
}

func (s *Server) handleAnalyzeMarketSentiment(c echo.Context) error {
	req := app.NewSentimentRequest()
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	result, err := s.app.AnalyzeMarketSentiment(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusOK, result)
}

func (s *Server) handleAnalyzeMarketTrends(c echo.Context) error {
	req := app.NewTrendsRequest()
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	report, err := s.app.AnalyzeMarketTrends(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusOK, report)
}

func (s *Server) handleMonitorMarket(c echo.Context) error {
	req := app.NewMonitorRequest()
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	report, err := s.app.MonitorMarket(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusOK, report)
}

func (s *Server) handleAnalyzeSentiment(c echo.Context) error {
	var req app.TextRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	analysis, err := s.app.AnalyzeText(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusOK, analysis)
}

func (s *Server) handleStockInfo(c echo.Context) error {
	info, err := s.app.StockInfo(c.Request().Context(), c.Param("symbol"))
	if err != nil {
		return err
	}
	return sendJSON(c, http.StatusOK, info)
}

// bindJSON decodes a single JSON value from the request body over dst. An
// empty body leaves dst as is so request defaults survive. A body cut off by
// the size limit surfaces as echo's 413.
func bindJSON(c echo.Context, dst any) error {
	dec := json.NewDecoder(c.Request().Body)
	err := dec.Decode(dst)
	switch {
	case errors.Is(err, echo.ErrStatusRequestEntityTooLarge):
		return err
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return apperrors.ValidationError("invalid JSON body").WithField("cause", err.Error())
	}

	if dec.More() {
		return apperrors.ValidationError("invalid JSON body").WithField("cause", "unexpected data after JSON value")
	}
	return nil
}

func sendJSON(c echo.Context, status int, body any) error {
	if err := c.JSON(status, body); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
