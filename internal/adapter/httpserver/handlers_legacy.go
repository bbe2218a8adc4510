package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/anuragratna/twitter-mcp-server/internal/app"
	"github.com/anuragratna/twitter-mcp-server/internal/platform/version"
)

const (
	envelopeSuccess = "success"
	envelopeError   = "error"
)

type envelopeMetadata struct {
	Version   string `json:"version"`
	Provider  string `json:"provider"`
	RequestID string `json:"request_id"`
}

type envelope struct {
	Status   string           `json:"status"`
	Data     any              `json:"data,omitempty"`
	Error    string           `json:"error,omitempty"`
	Metadata envelopeMetadata `json:"metadata"`
}

// handleLegacyAnalyze serves the original single-endpoint contract: a symbol
// in, a sentiment summary wrapped in a status envelope out. Errors are
// rendered inside the envelope rather than by the error middleware.
func (s *Server) handleLegacyAnalyze(c echo.Context) error {
	meta := envelopeMetadata{
		Version:   version.Protocol,
		Provider:  version.Provider,
		RequestID: uuid.NewString(),
	}

	req := app.NewSentimentRequest()
	err := bindJSON(c, &req)
	var result app.SentimentResult
	if err == nil {
		result, err = s.app.AnalyzeMarketSentiment(c.Request().Context(), req)
	}
	if errors.Is(err, echo.ErrStatusRequestEntityTooLarge) {
		return err
	}
	if err != nil {
		structured := domainError(err)
		logError(c, structured.WithField("request_id", meta.RequestID))
		if s.errorMetrics != nil {
			s.errorMetrics.ErrorsTotal.WithLabelValues(string(structured.Type), statusLabel(structured.HTTPStatus())).Inc()
		}
		return sendJSON(c, structured.HTTPStatus(), envelope{Status: envelopeError, Error: structured.Message, Metadata: meta})
	}

	return sendJSON(c, http.StatusOK, envelope{Status: envelopeSuccess, Data: result, Metadata: meta})
}
